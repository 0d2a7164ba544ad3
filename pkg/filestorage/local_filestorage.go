package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidPublicID = errors.New("invalid public id")

type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// FileStorageInterface is the object store used for profile images.
// PublicID identifies a stored object for later deletion.
type FileStorageInterface interface {
	Upload(ctx context.Context, file io.Reader, originalFileName string, prefix string) (*UploadResult, error)
	Delete(ctx context.Context, publicID string) error
}

type LocalFileStorage struct {
	basePath string
	baseURL  string
}

// NewLocalFileStorage stores objects under basePath and serves them from
// baseURL + "/uploads/".
func NewLocalFileStorage(basePath, baseURL string) (*LocalFileStorage, error) {
	if _, err := os.Stat(basePath); os.IsNotExist(err) {
		if err := os.MkdirAll(basePath, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}
	return &LocalFileStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *LocalFileStorage) Upload(ctx context.Context, file io.Reader, originalFileName string, prefix string) (*UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(originalFileName))
	uniqueFileName := fmt.Sprintf("%s-%s%s", time.Now().Format("2006-01-02"), uuid.New().String(), ext)

	datePath := time.Now().Format("2006/01/02")
	fullDirPath := filepath.Join(s.basePath, prefix, datePath)
	if err := os.MkdirAll(fullDirPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", fullDirPath, err)
	}

	fullPath := filepath.Join(fullDirPath, uniqueFileName)
	dst, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	if _, err = io.Copy(dst, file); err != nil {
		dst.Close()
		_ = os.Remove(fullPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(fullPath)
		return nil, fmt.Errorf("failed to close file: %w", err)
	}

	publicID := path.Join(prefix, datePath, uniqueFileName)
	return &UploadResult{
		URL:      s.baseURL + "/uploads/" + publicID,
		PublicID: publicID,
	}, nil
}

// Delete removes the object. Deleting a missing object is not an error.
func (s *LocalFileStorage) Delete(ctx context.Context, publicID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	relativePath := strings.TrimPrefix(publicID, "/uploads/")
	cleaned := path.Clean("/" + relativePath)
	if relativePath == "" || cleaned == "/" {
		return fmt.Errorf("%w: %q", ErrInvalidPublicID, publicID)
	}

	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleaned))
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", publicID, err)
	}
	return nil
}
