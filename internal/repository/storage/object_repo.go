package storage

import (
	"context"
	"io"
	"time"
)

// ObjectRepository defines the interface for receipt image storage.
type ObjectRepository interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	Delete(ctx context.Context, objectPath string) error
	DeleteByURL(ctx context.Context, objectURL string) error
	GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
}
