// Package disk stores images in a local directory that the server exposes
// under a public base URL. Public ids are xid strings plus the file extension.
package disk

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/imageboard/internal/apperror"
	"github.com/sakif/imageboard/internal/imagestore"
)

var _ imagestore.Store = (*Store)(nil)

// ErrNotImage is returned when the uploaded bytes are not a recognised image type.
// It is a validation error: the client sent the wrong file.
var ErrNotImage = apperror.ValidationFailed("image", "file is not an image")

// sniffLen is how many bytes http.DetectContentType looks at.
const sniffLen = 512

// extensions maps sniffed content types to the extension used for the stored file.
var extensions = map[string]string{
	"image/png":    ".png",
	"image/jpeg":   ".jpg",
	"image/gif":    ".gif",
	"image/webp":   ".webp",
	"image/bmp":    ".bmp",
	"image/x-icon": ".ico",
}

type Store struct {
	dir     string
	baseURL string
}

// New creates a Store writing into dir; stored images are served at baseURL/<public id>.
func New(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("disk: creating upload directory %s: %w", dir, err)
	}
	return &Store{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Upload sniffs the content type, rejects anything that is not an image and
// writes the bytes to a new file named after a fresh xid.
func (s *Store) Upload(_ context.Context, _ string, r io.Reader) (*imagestore.Uploaded, error) {
	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("disk: reading upload: %w", err)
	}
	ext, ok := extensions[http.DetectContentType(head)]
	if !ok {
		return nil, ErrNotImage
	}

	publicID := xid.New().String() + ext
	path := filepath.Join(s.dir, publicID)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, fmt.Errorf("disk: creating %s: %w", path, err)
	}
	if _, err := io.Copy(f, br); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("disk: writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("disk: closing %s: %w", path, err)
	}

	return &imagestore.Uploaded{
		URL:      s.baseURL + "/" + publicID,
		PublicID: publicID,
	}, nil
}

// Destroy removes the stored file. A missing file is ok == false.
func (s *Store) Destroy(_ context.Context, publicID string) (bool, error) {
	if publicID == "" || publicID != filepath.Base(publicID) || strings.HasPrefix(publicID, ".") {
		return false, fmt.Errorf("disk: invalid public id %q", publicID)
	}
	err := os.Remove(filepath.Join(s.dir, publicID))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("disk: removing %s: %w", publicID, err)
	}
	return true, nil
}
