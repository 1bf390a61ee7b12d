// Package cloudinary stores images on Cloudinary.
package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/sakif/imageboard/internal/apperror"
	"github.com/sakif/imageboard/internal/imagestore"
)

var _ imagestore.Store = (*Store)(nil)

// destroyOK is the result Cloudinary reports when an asset was deleted.
const destroyOK = "ok"

const resourceImage = "image"

// ErrNotImage is returned when Cloudinary classified an upload as something
// other than an image (a video or raw file).
var ErrNotImage = apperror.ValidationFailed("image", "file is not an image")

type Store struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// New creates a Store for the given account. folder may be empty.
func New(cloudName, apiKey, apiSecret, folder string) (*Store, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errors.New("cloudinary: cloud name, api key and api secret are required")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: configuring client: %w", err)
	}
	return &Store{cld: cld, folder: folder}, nil
}

// Upload sends the file and returns its secure URL. The SDK always posts to the
// auto endpoint, so anything Cloudinary did not store as an image is deleted
// again and rejected with ErrNotImage.
// A response without a public id is returned as-is; callers decide whether it is usable.
func (s *Store) Upload(ctx context.Context, _ string, r io.Reader) (*imagestore.Uploaded, error) {
	resp, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		ResourceType: resourceImage,
		Folder:       s.folder,
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary: uploading: %w", err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary: uploading: %s", resp.Error.Message)
	}
	if resp.ResourceType != resourceImage {
		if resp.PublicID != "" {
			_, _ = s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
				PublicID:     resp.PublicID,
				ResourceType: resp.ResourceType,
			})
		}
		return nil, ErrNotImage
	}
	return &imagestore.Uploaded{
		URL:      resp.SecureURL,
		PublicID: resp.PublicID,
	}, nil
}

// Destroy deletes the image. Cloudinary answers "not found" for unknown ids,
// which is reported as ok == false.
func (s *Store) Destroy(ctx context.Context, publicID string) (bool, error) {
	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceImage,
	})
	if err != nil {
		return false, fmt.Errorf("cloudinary: destroying %s: %w", publicID, err)
	}
	if resp.Error.Message != "" {
		return false, fmt.Errorf("cloudinary: destroying %s: %s", publicID, resp.Error.Message)
	}
	return resp.Result == destroyOK, nil
}
