package internal

import (
	"io"

	"github.com/starford/workbench/internal/storage"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	provider  storage.Provider
	logOutput io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithStorage replaces the provider selected by the storage config.
func WithStorage(p storage.Provider) Option {
	return func(a *application) {
		a.provider = p
	}
}

// WithLogOutput redirects the JSON log (stdout by default).
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}
