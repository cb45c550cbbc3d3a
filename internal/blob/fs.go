package blob

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FSStore is a filesystem-based implementation of Store for local
// development. Objects live under basePath with a metadata sidecar per
// object carrying content type and cache policy:
//
//	deploys/
//	  sites/w1/releases/<id>/index.html
//	  sites/w1/releases/<id>/index.html.meta.json
type FSStore struct {
	basePath string
}

// NewFSStore creates a filesystem-based object store rooted at basePath.
func NewFSStore(basePath string) (*FSStore, error) {
	if err := os.MkdirAll(basePath, 0750); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FSStore{basePath: basePath}, nil
}

const metaSuffix = ".meta.json"

func (s *FSStore) Put(_ context.Context, key string, data []byte, opts PutOptions) error {
	path, err := s.objectPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create object directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write object: %w", err)
	}

	meta, err := json.Marshal(opts)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(path+metaSuffix, meta, 0600); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

func (s *FSStore) Get(_ context.Context, key string) ([]byte, error) {
	path, err := s.objectPath(key)
	if err != nil {
		return nil, err
	}
	// #nosec G304 - path is rooted and traversal-checked in objectPath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound{Key: key}
		}
		return nil, fmt.Errorf("read object: %w", err)
	}
	return data, nil
}

func (s *FSStore) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, metaSuffix) {
			return nil
		}
		rel, err := filepath.Rel(s.basePath, path)
		if err != nil {
			return nil
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk objects: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *FSStore) Close() error { return nil }

// Options returns the recorded metadata for a key.
func (s *FSStore) Options(key string) (PutOptions, error) {
	path, err := s.objectPath(key)
	if err != nil {
		return PutOptions{}, err
	}
	// #nosec G304 - path is rooted and traversal-checked in objectPath
	data, err := os.ReadFile(path + metaSuffix)
	if err != nil {
		if os.IsNotExist(err) {
			return PutOptions{}, ErrNotFound{Key: key}
		}
		return PutOptions{}, fmt.Errorf("read metadata: %w", err)
	}
	var opts PutOptions
	if err := json.Unmarshal(data, &opts); err != nil {
		return PutOptions{}, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return opts, nil
}

// objectPath maps a key to a rooted filesystem path, rejecting traversal.
func (s *FSStore) objectPath(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid object key: %q", key)
	}
	return filepath.Join(s.basePath, clean), nil
}
