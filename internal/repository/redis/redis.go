// Package redis implements repository.DocumentStore with one Redis string key per document.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/sakif/imageboard/internal/repository"
)

// DefaultPrefix namespaces document keys: "imageboard:threads.json".
const DefaultPrefix = "imageboard:"

var _ repository.DocumentStore = (*Store)(nil)

type Store struct {
	client *goredis.Client
	prefix string
}

// New connects to redisURL (redis://host:port/db) and verifies the connection.
func New(redisURL, prefix string) (*Store, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parsing url: %w", err)
	}

	client := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: connecting: %w", err)
	}

	return NewWithClient(client, prefix), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *goredis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{
		client: client,
		prefix: prefix,
	}
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

func (s *Store) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("redis: %s: %w", s.key(name), repository.ErrNoDocument)
	}
	if err != nil {
		return nil, fmt.Errorf("redis: reading %s: %w", s.key(name), err)
	}
	return data, nil
}

// Write stores the document without expiry.
func (s *Store) Write(ctx context.Context, name string, data []byte) error {
	if err := s.client.Set(ctx, s.key(name), data, 0).Err(); err != nil {
		return fmt.Errorf("redis: writing %s: %w", s.key(name), err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
