package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/folio/internal/notestore"
	"github.com/starford/folio/internal/storage"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Storage StorageConfig     `yaml:"storage"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level  `yaml:"log_level"`
	HTTP     HTTPConfig  `yaml:"http"`
	Events   EventConfig `yaml:"events"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	return c.Events.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.ShutdownTimeout, validation.Min(time.Duration(0))),
	)
}

// EventConfig tunes the server-sent change feed.
type EventConfig struct {
	// TreeThrottle coalesces tree.updated events within this window.
	TreeThrottle time.Duration `yaml:"tree_throttle"`
	// WatchDebounce delays reload checks after external blob writes.
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// Validate validates the event configuration.
func (c *EventConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TreeThrottle, validation.Min(time.Duration(0))),
		validation.Field(&c.WatchDebounce, validation.Min(time.Duration(0))),
	)
}

// StorageConfig selects the storage backend holding the notes blob.
type StorageConfig struct {
	Driver     string `yaml:"driver"`
	Path       string `yaml:"path"`
	Key        string `yaml:"key"`
	QuotaBytes int    `yaml:"quota_bytes"`
	SyncWrites bool   `yaml:"sync_writes"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	drivers := make([]any, 0, len(storage.Drivers()))
	for _, d := range storage.Drivers() {
		drivers = append(drivers, d)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(drivers...)),
		validation.Field(&c.Path, validation.When(c.Driver != storage.DriverMemory, validation.Required)),
		validation.Field(&c.Key, validation.Required),
		validation.Field(&c.QuotaBytes, validation.Min(0)),
	)
}

// Options converts the config into storage open options.
func (c *StorageConfig) Options(logger *slog.Logger) storage.Options {
	return storage.Options{
		Driver:     c.Driver,
		Path:       c.Path,
		QuotaBytes: c.QuotaBytes,
		SyncWrites: c.SyncWrites,
		Logger:     logger,
	}
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
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
				Port:            8080,
				ShutdownTimeout: 10 * time.Second,
			},
			Events: EventConfig{
				TreeThrottle:  2 * time.Second,
				WatchDebounce: 200 * time.Millisecond,
			},
		},
		Storage: StorageConfig{
			Driver: storage.DriverFS,
			Path:   "./data",
			Key:    notestore.DefaultKey,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
