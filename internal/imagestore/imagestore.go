// Package imagestore defines the hosted image service the application uploads to.
//
// Implementations live in subpackages: cloudinary (the hosted provider), s3 (any
// S3-compatible bucket such as MinIO) and disk (a local directory, for development).
package imagestore

import (
	"context"
	"io"
)

// Uploaded is what the image host returns for a stored image.
type Uploaded struct {
	URL      string
	PublicID string
}

// Store uploads and deletes images on an image host.
type Store interface {
	// Upload stores the image read from r. filename is the client's original
	// name and is only used as a hint (extension, content type).
	Upload(ctx context.Context, filename string, r io.Reader) (*Uploaded, error)
	// Destroy deletes the image with the given public id. ok is false when the
	// host had nothing to delete; err is set only when the call itself failed.
	Destroy(ctx context.Context, publicID string) (ok bool, err error)
}
