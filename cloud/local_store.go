package cloud

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalObjectStore stores blobs on the local filesystem under a base
// directory. Logical keys map to relative paths.
type LocalObjectStore struct {
	baseDir string
}

// NewLocalObjectStore creates a filesystem-backed object store rooted at dir.
// The directory is created if missing.
func NewLocalObjectStore(dir string) (*LocalObjectStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("local object store requires a base directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create object dir %s: %w", dir, err)
	}
	return &LocalObjectStore{baseDir: dir}, nil
}

// BaseDir returns the store's root directory.
func (s *LocalObjectStore) BaseDir() string { return s.baseDir }

func (s *LocalObjectStore) pathFor(key string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(key))
}

// Put implements ObjectStore.
func (s *LocalObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) (WriteResult, error) {
	if err := ValidateKey(key); err != nil {
		return WriteResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return WriteResult{}, WrapStorageError(err, "put", key)
	}

	path := s.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return WriteResult{}, WrapStorageError(err, "put", key)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return WriteResult{}, WrapStorageError(err, "put", key)
	}

	return WriteResult{
		URI:          path,
		BytesWritten: int64(len(data)),
		ContentType:  contentType,
	}, nil
}

// Get implements ObjectStore.
func (s *LocalObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, WrapStorageError(err, "get", key)
	}

	data, err := os.ReadFile(s.pathFor(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewStorageError(ErrNotFound, "get", key, err)
		}
		return nil, WrapStorageError(err, "get", key)
	}
	return data, nil
}

// Exists implements ObjectStore.
func (s *LocalObjectStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, WrapStorageError(err, "exists", key)
	}

	_, err := os.Stat(s.pathFor(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, WrapStorageError(err, "exists", key)
	}
	return true, nil
}

// List implements Lister. Keys are returned relative to the base directory,
// slash-separated and sorted.
func (s *LocalObjectStore) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, WrapStorageError(err, "list", prefix)
	}

	var keys []string
	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, WrapStorageError(err, "list", prefix)
	}
	sort.Strings(keys)
	return keys, nil
}

// Verify LocalObjectStore implements the store interfaces.
var (
	_ ObjectStore = (*LocalObjectStore)(nil)
	_ Lister      = (*LocalObjectStore)(nil)
)
