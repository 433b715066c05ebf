// Package storage keeps attachment bytes on the local disk or in a MinIO/S3 bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"taskup-backend/pkg/config"
)

// Storage drivers
const (
	DriverLocal = "local"
	DriverMinio = "minio"
)

var ErrInvalidPath = errors.New("invalid object path")

// ObjectStorage stores opaque blobs addressed by a slash separated path
type ObjectStorage interface {
	// Save stores an object. Pass -1 when size is unknown.
	Save(ctx context.Context, p string, r io.Reader, size int64, contentType string) (int64, error)
	Open(ctx context.Context, p string) (io.ReadCloser, error)
	// Delete succeeds when the object is already gone
	Delete(ctx context.Context, p string) error
}

// New builds the storage selected by STORAGE_DRIVER
func New(ctx context.Context, cfg *config.Config) (ObjectStorage, error) {
	switch strings.ToLower(cfg.StorageDriver) {
	case "", DriverLocal:
		return NewLocalStorage(cfg.StoragePath)
	case DriverMinio:
		return NewMinioStorage(ctx, MinioConfig{
			Endpoint:        cfg.MinioEndpoint,
			AccessKeyID:     cfg.MinioAccessKey,
			SecretAccessKey: cfg.MinioSecretKey,
			Bucket:          cfg.MinioBucket,
			UseSSL:          cfg.MinioUseSSL,
		})
	}
	return nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
}

// cleanPath rejects absolute paths and anything escaping the storage root
func cleanPath(p string) (string, error) {
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return cleaned, nil
}

// DeleteAll removes every path and returns the first error, continuing past failures
func DeleteAll(ctx context.Context, s ObjectStorage, paths []string) error {
	var firstErr error
	for _, p := range paths {
		if err := s.Delete(ctx, p); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("delete %s: %w", p, err)
		}
	}
	return firstErr
}
