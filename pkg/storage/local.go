package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStorage writes objects below a directory
type LocalStorage struct {
	dir    string
	tmpDir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if dir == "" {
		return nil, errors.New("local storage path is empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	tmpDir := filepath.Join(abs, ".tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStorage{dir: abs, tmpDir: tmpDir}, nil
}

func (l *LocalStorage) buildPath(p string) (string, error) {
	cleaned, err := cleanPath(p)
	if err != nil {
		return "", err
	}
	return filepath.Join(l.dir, filepath.FromSlash(cleaned)), nil
}

// Save writes into a temp file first and renames it into place
func (l *LocalStorage) Save(ctx context.Context, p string, r io.Reader, size int64, contentType string) (int64, error) {
	target, err := l.buildPath(p)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(l.tmpDir, "upload-*")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	n, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, err
	}
	if size >= 0 && n != size {
		return 0, fmt.Errorf("wrote %d bytes, expected %d", n, size)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := os.Rename(tmpName, target); err != nil {
		return 0, err
	}
	return n, nil
}

func (l *LocalStorage) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	target, err := l.buildPath(p)
	if err != nil {
		return nil, err
	}
	return os.Open(target)
}

func (l *LocalStorage) Delete(ctx context.Context, p string) error {
	target, err := l.buildPath(p)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
