// Package testutil provides shared test helpers for setting up workspaces
// and storage backends.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/workbench/internal/storage"
	"github.com/starford/workbench/internal/workspace"
)

// Now is the fixed clock used by Store.
var Now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Store returns a loaded in-memory workspace whose clock is stopped at Now.
func Store(t *testing.T) (*workspace.Store, *storage.Memory) {
	t.Helper()
	mem := storage.NewMemory()
	store := workspace.New(mem,
		workspace.WithClock(func() time.Time { return Now }),
		workspace.WithLogger(Logger()),
	)
	store.Load(context.Background())
	return store, mem
}

// SQLite opens a provider on a database file that is removed with the test.
func SQLite(t *testing.T) *storage.SQLite {
	t.Helper()
	p, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "workbench-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

// Eventually polls cond until it holds or timeout elapses.
func Eventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out: %s", msg)
}
