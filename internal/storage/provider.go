// Package storage persists the serialized workspace as a single named blob.
package storage

import "context"

// Provider stores one blob per namespace.
type Provider interface {
	// Load returns the blob saved under namespace. It returns an error
	// wrapping apperr.ErrNotFound when nothing has been saved yet.
	Load(ctx context.Context, namespace string) ([]byte, error)
	// Save replaces the blob under namespace.
	Save(ctx context.Context, namespace string, data []byte) error
	// Delete removes the blob. Deleting a missing namespace is not an error.
	Delete(ctx context.Context, namespace string) error
	// Close releases backend resources.
	Close() error
}
