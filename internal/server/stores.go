package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sakif/imageboard/internal/config"
	"github.com/sakif/imageboard/internal/imagestore"
	"github.com/sakif/imageboard/internal/imagestore/cloudinary"
	"github.com/sakif/imageboard/internal/imagestore/disk"
	"github.com/sakif/imageboard/internal/imagestore/s3"
	"github.com/sakif/imageboard/internal/repository"
	"github.com/sakif/imageboard/internal/repository/file"
	"github.com/sakif/imageboard/internal/repository/memory"
	"github.com/sakif/imageboard/internal/repository/postgres"
	"github.com/sakif/imageboard/internal/repository/redis"
	sqliteRepo "github.com/sakif/imageboard/internal/repository/sqlite"
)

// CloseFunc releases a store's connections. Backends without connections get a no-op.
type CloseFunc func() error

func noClose() error { return nil }

// OpenDocumentStore opens the document backend selected by cfg.Backend.
// The CLI commands share it with the HTTP server.
func OpenDocumentStore(cfg config.StoreConfig) (repository.DocumentStore, CloseFunc, error) {
	switch cfg.Backend {
	case config.BackendFile:
		store, err := file.New(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		return store, noClose, nil

	case config.BackendSQLite:
		// The data directory is created if missing, like `mkdir -p`.
		if dir := filepath.Dir(cfg.SQLitePath); cfg.SQLitePath != ":memory:" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, nil, fmt.Errorf("creating database directory %s: %w", dir, err)
			}
		}
		db, err := sqliteRepo.New(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		return db, db.Close, nil

	case config.BackendRedis:
		store, err := redis.New(cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case config.BackendPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil

	case config.BackendMemory:
		return memory.New(), noClose, nil
	}

	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}

// OpenImageStore creates the image host client selected by cfg.Images.Provider.
func OpenImageStore(cfg *config.Config) (imagestore.Store, error) {
	switch cfg.Images.Provider {
	case config.ProviderCloudinary:
		c := cfg.Cloudinary
		return cloudinary.New(c.CloudName, c.APIKey, c.APISecret, c.Folder)

	case config.ProviderS3:
		c := cfg.S3
		return s3.New(s3.Config{
			Endpoint:  c.Endpoint,
			AccessKey: c.AccessKey,
			SecretKey: c.SecretKey,
			Bucket:    c.Bucket,
			Region:    c.Region,
			UseSSL:    c.UseSSL,
			PublicURL: c.PublicURL,
		})

	case config.ProviderDisk:
		return disk.New(cfg.Disk.Dir, cfg.Disk.BaseURL)
	}

	return nil, fmt.Errorf("unknown image provider %q", cfg.Images.Provider)
}
