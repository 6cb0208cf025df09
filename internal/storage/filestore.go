// Package storage manages server-hosted image files under the upload
// directory. Stored files are addressed by their public /uploads/ URL.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"photofolio/internal/models"
)

// FileStore saves and removes uploaded image files.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory uploaded files are written to.
func (fs *FileStore) Dir() string {
	return fs.dir
}

// Save writes an uploaded file under a unique name preserving the original
// extension and returns its public URL ("/uploads/<name>").
func (fs *FileStore) Save(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	name := uuid.New().String() + filepath.Ext(fh.Filename)
	destPath := filepath.Join(fs.dir, name)

	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, src); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return models.UploadURLPrefix + name, nil
}

// Remove deletes the file behind a server-hosted image URL. It is a no-op for
// external URLs.
func (fs *FileStore) Remove(imageURL string) error {
	if !models.IsUploadedImage(imageURL) {
		return nil
	}
	name := filepath.Base(imageURL)
	return os.Remove(filepath.Join(fs.dir, name))
}
