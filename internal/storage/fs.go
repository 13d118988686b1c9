package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/starford/workbench/internal/apperr"
)

var namespaceRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// validNamespace rejects names that could escape the storage directory.
func validNamespace(ns string) error {
	if !namespaceRe.MatchString(ns) || ns == "." || ns == ".." {
		return fmt.Errorf("storage: invalid namespace %q", ns)
	}
	return nil
}

// FS implements Provider with one JSON file per namespace in a directory.
type FS struct {
	root string // absolute path to data directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

func (f *FS) path(ns string) (string, error) {
	if err := validNamespace(ns); err != nil {
		return "", err
	}
	return filepath.Join(f.root, ns+".json"), nil
}

// Load reads the namespace file.
func (f *FS) Load(_ context.Context, namespace string) ([]byte, error) {
	p, err := f.path(namespace)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("storage: load %s: %w", namespace, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: load %s: %w", namespace, err)
	}
	return data, nil
}

// Save atomically writes content: tmp file → fsync → rename.
func (f *FS) Save(_ context.Context, namespace string, data []byte) error {
	p, err := f.path(namespace)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.root, ".workbench-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes the namespace file.
func (f *FS) Delete(_ context.Context, namespace string) error {
	p, err := f.path(namespace)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: delete %s: %w", namespace, err)
	}
	return nil
}

// Close is a no-op for the file backend.
func (f *FS) Close() error { return nil }
