package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"expedientes-backend/config"
)

// Storage persists the original uploaded files so downloads and the PDF
// viewer survive beyond the bytes held in memory.
type Storage interface {
	// Upload stores a file under the owning case and returns the storage path
	Upload(ctx context.Context, caseID, filename string, data io.Reader) (string, error)

	// Download retrieves a file by storage path
	Download(ctx context.Context, storagePath string) (io.ReadCloser, error)

	// Delete removes a file by storage path
	Delete(ctx context.Context, storagePath string) error
}

type Type string

const (
	TypeLocal Type = "local"
	TypeS3    Type = "s3"
)

// New creates a storage backend from the loaded configuration.
func New(cfg *config.Config) (Storage, error) {
	switch Type(cfg.StorageType) {
	case TypeLocal:
		return NewLocalStorage(cfg.StorageLocalPath)
	case TypeS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("S3_BUCKET is required for s3 storage")
		}
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.StorageType)
	}
}

// generateStoragePath builds a unique per-case key, sharded by the case ID
// prefix so local directories stay shallow.
func generateStoragePath(caseID, filename string) string {
	ext := filepath.Ext(filename)
	baseName := strings.TrimSuffix(filepath.Base(filename), ext)
	baseName = strings.ReplaceAll(baseName, " ", "_")
	baseName = strings.ReplaceAll(baseName, "/", "_")
	baseName = strings.ReplaceAll(baseName, "\\", "_")

	shard := caseID
	if len(shard) > 2 {
		shard = shard[:2]
	}
	return fmt.Sprintf("%s/%s_%s%s", shard, caseID, baseName, ext)
}
