package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/starford/workbench/internal/apperr"
)

// Memory is an in-process Provider used by tests and by the export command
// when no durable state is wanted.
type Memory struct {
	mu       sync.Mutex
	blobs    map[string][]byte
	failSave error
	saves    int
}

// NewMemory returns an empty in-memory provider.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

// Load returns a copy of the stored blob.
func (m *Memory) Load(_ context.Context, namespace string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[namespace]
	if !ok {
		return nil, fmt.Errorf("storage: load %s: %w", namespace, apperr.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

// Save stores a copy of data.
func (m *Memory) Save(_ context.Context, namespace string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave != nil {
		return m.failSave
	}
	m.saves++
	m.blobs[namespace] = append([]byte(nil), data...)
	return nil
}

// Delete removes the blob.
func (m *Memory) Delete(_ context.Context, namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, namespace)
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// Saves returns the number of successful Save calls.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// SetFailSave makes every subsequent Save return err; nil restores success.
func (m *Memory) SetFailSave(err error) {
	m.mu.Lock()
	m.failSave = err
	m.mu.Unlock()
}
