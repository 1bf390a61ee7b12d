// Package s3 stores images in an S3-compatible bucket (MinIO, AWS S3, R2, ...).
//
// Object keys are random UUIDs plus the original file extension; the key is the
// public id. Image URLs are PublicURL/<key>, so the bucket (or a CDN in front of
// it) must allow anonymous reads for the gallery to display them.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sakif/imageboard/internal/imagestore"
)

var _ imagestore.Store = (*Store)(nil)

// Config describes the bucket to store images in.
type Config struct {
	Endpoint  string // host[:port], no scheme
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	// PublicURL is the base URL images are served from.
	// Defaults to http(s)://Endpoint/Bucket.
	PublicURL string
}

type Store struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// New creates a Store. It does not contact the endpoint.
func New(cfg Config) (*Store, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.New("s3: endpoint and bucket are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: creating client: %w", err)
	}

	return &Store{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicURL(cfg),
	}, nil
}

func publicURL(cfg Config) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
}

// objectKey returns a fresh key keeping the lower-cased extension of filename.
func objectKey(filename string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}

func contentType(key string) string {
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// Upload streams the image into the bucket under a new key.
func (s *Store) Upload(ctx context.Context, filename string, r io.Reader) (*imagestore.Uploaded, error) {
	key := objectKey(filename)

	_, err := s.client.PutObject(ctx, s.bucket, key, r, -1, minio.PutObjectOptions{
		ContentType: contentType(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3: putting %s: %w", key, err)
	}

	return &imagestore.Uploaded{
		URL:      s.publicURL + "/" + key,
		PublicID: key,
	}, nil
}

// Destroy removes the object. RemoveObject succeeds for missing keys, so the
// object is looked up first to report ok == false for unknown ids.
func (s *Store) Destroy(ctx context.Context, publicID string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, publicID, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("s3: looking up %s: %w", publicID, err)
	}

	if err := s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		return false, fmt.Errorf("s3: removing %s: %w", publicID, err)
	}
	return true, nil
}
