package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MaxBlobSize is the upload size ceiling (10MB).
const MaxBlobSize = 10 << 20

var (
	ErrTooLarge      = errors.New("blob exceeds size limit")
	ErrBadMIMEType   = errors.New("content type not allowed")
	ErrDuplicateName = errors.New("object name already exists")
)

var allowedMIMETypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"application/pdf": ".pdf",
}

// BlobStore is the external blob-storage contract: store bytes under a path,
// get back a public URL.
type BlobStore interface {
	Upload(ctx context.Context, data []byte, contentType, path string) (string, error)
}

// LocalStore keeps blobs on the local filesystem and serves them under a
// public base URL.
type LocalStore struct {
	baseDir string
	baseURL string
}

var _ BlobStore = (*LocalStore)(nil)

func NewLocalStore(baseDir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (s *LocalStore) Upload(ctx context.Context, data []byte, contentType, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) > MaxBlobSize {
		return "", ErrTooLarge
	}
	if _, ok := allowedMIMETypes[contentType]; !ok {
		return "", fmt.Errorf("%w: %s", ErrBadMIMEType, contentType)
	}

	name := filepath.Clean(filepath.Base(path))
	target := filepath.Join(s.baseDir, name)
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}
		return "", err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		os.Remove(target)
		return "", err
	}
	return s.baseURL + "/" + name, nil
}

// ExtensionFor maps an allowed content type to its file extension.
func ExtensionFor(contentType string) string {
	return allowedMIMETypes[contentType]
}
