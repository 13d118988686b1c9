package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Storage drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config represents the application configuration. Every field can be
// overridden by the environment variable built from its env tags, e.g.
// STORAGE_REDIS_ADDR.
type Config struct {
	App      ApplicationConfig `yaml:"app" envPrefix:"APP_"`
	Storage  StorageConfig     `yaml:"storage" envPrefix:"STORAGE_"`
	Editor   EditorConfig      `yaml:"editor" envPrefix:"EDITOR_"`
	Metadata MetadataConfig    `yaml:"metadata" envPrefix:"METADATA_"`
	Inbox    InboxConfig       `yaml:"inbox" envPrefix:"INBOX_"`
	Auth     AuthConfig        `yaml:"auth" envPrefix:"AUTH_"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Editor.Validate(); err != nil {
		return err
	}
	if err := c.Metadata.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" env:"LOG_LEVEL"`
	HTTP     HTTPConfig `yaml:"http" envPrefix:"HTTP_"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" env:"PORT"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StorageConfig selects where the workspace blob is kept. Path is a
// directory for the file driver and a database file for sqlite.
type StorageConfig struct {
	Driver    string      `yaml:"driver" env:"DRIVER"`
	Namespace string      `yaml:"namespace" env:"NAMESPACE"`
	Path      string      `yaml:"path" env:"PATH"`
	Redis     RedisConfig `yaml:"redis" envPrefix:"REDIS_"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(DriverFile, DriverSQLite, DriverRedis)),
		validation.Field(&c.Namespace, validation.Required),
		validation.Field(&c.Path, validation.When(c.Driver != DriverRedis, validation.Required)),
	); err != nil {
		return err
	}
	if c.Driver == DriverRedis {
		return c.Redis.Validate()
	}
	return nil
}

// RedisConfig holds the Redis connection used by the redis driver.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
}

// Validate validates the Redis configuration.
func (c *RedisConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.DB, validation.Min(0)),
	)
}

// EditorConfig holds document editing settings. Sessions unused for
// IdleTimeout are closed; 0 keeps them until the document is deleted.
type EditorConfig struct {
	AutosaveDelay time.Duration `yaml:"autosave_delay" env:"AUTOSAVE_DELAY"`
	IdleTimeout   time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
}

// Validate validates the editor configuration.
func (c *EditorConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.AutosaveDelay, validation.Required, validation.Min(10*time.Millisecond)),
		validation.Field(&c.IdleTimeout, validation.Min(time.Duration(0))),
	)
}

// MetadataConfig controls link preview fetching.
type MetadataConfig struct {
	Enabled   bool          `yaml:"enabled" env:"ENABLED"`
	Timeout   time.Duration `yaml:"timeout" env:"TIMEOUT"`
	UserAgent string        `yaml:"user_agent" env:"USER_AGENT"`
}

// Validate validates the metadata configuration.
func (c *MetadataConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Timeout, validation.When(c.Enabled, validation.Required, validation.Min(time.Millisecond))),
	)
}

// InboxConfig holds the directory watched for Markdown imports. An empty
// path disables the watcher.
type InboxConfig struct {
	Path string `yaml:"path" env:"PATH"`
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode" env:"MODE"`
	Token string `yaml:"token" env:"TOKEN"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Storage: StorageConfig{
			Driver:    DriverFile,
			Namespace: "workspace-storage",
			Path:      "./data",
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		Editor: EditorConfig{
			AutosaveDelay: 1500 * time.Millisecond,
			IdleTimeout:   10 * time.Minute,
		},
		Metadata: MetadataConfig{
			Enabled:   true,
			Timeout:   5 * time.Second,
			UserAgent: "workbench/1.0",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
