package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/workbench/internal/linkmeta"
	"github.com/starford/workbench/internal/storage"
	"github.com/starford/workbench/internal/workspace"
)

// NewLogger returns the structured JSON logger used by every command.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// OpenStorage builds the provider selected by cfg.
func OpenStorage(ctx context.Context, cfg StorageConfig) (storage.Provider, error) {
	switch cfg.Driver {
	case DriverFile:
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
		return storage.NewFS(cfg.Path)
	case DriverSQLite:
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create storage dir: %w", err)
			}
		}
		return storage.OpenSQLite(cfg.Path)
	case DriverRedis:
		return storage.OpenRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Workspace is a loaded store together with its link saver and the
// provider it persists to.
type Workspace struct {
	Store *workspace.Store
	Links *workspace.LinkSaver

	provider storage.Provider
}

// OpenWorkspace loads the store from p, or from the configured provider when
// p is nil, and wires link metadata fetching.
func OpenWorkspace(ctx context.Context, cfg *Config, p storage.Provider, logger *slog.Logger) (*Workspace, error) {
	if p == nil {
		var err error
		if p, err = OpenStorage(ctx, cfg.Storage); err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
	}

	store := workspace.New(p,
		workspace.WithNamespace(cfg.Storage.Namespace),
		workspace.WithLogger(logger),
	)
	store.Load(ctx)

	var fetcher linkmeta.Fetcher
	if cfg.Metadata.Enabled {
		fetcher = linkmeta.NewHTMLFetcher(cfg.Metadata.Timeout, cfg.Metadata.UserAgent)
	}
	links := workspace.NewLinkSaver(store, fetcher, cfg.Metadata.Timeout, logger)

	return &Workspace{Store: store, Links: links, provider: p}, nil
}

// Close stops background fetches and releases the provider.
func (w *Workspace) Close() error {
	w.Links.Close()
	return w.provider.Close()
}
