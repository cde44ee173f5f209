package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hyperengineering/showcase/internal/catalog"
	"github.com/hyperengineering/showcase/internal/contact"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
// It is read-only after Load() returns and thread-safe for concurrent reads.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Contact  ContactConfig  `yaml:"contact"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Forms    FormsConfig    `yaml:"forms"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int      `yaml:"port" env:"SHOWCASE_PORT"`
	ReadTimeout     Duration `yaml:"read_timeout" env:"SHOWCASE_READ_TIMEOUT"`
	WriteTimeout    Duration `yaml:"write_timeout" env:"SHOWCASE_WRITE_TIMEOUT"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" env:"SHOWCASE_SHUTDOWN_TIMEOUT"`
}

// DatabaseConfig contains the notification log database settings.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"SHOWCASE_DB_PATH"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level" env:"SHOWCASE_LOG_LEVEL"`
	Format string `yaml:"format" env:"SHOWCASE_LOG_FORMAT"`
}

// ContactConfig contains contact form submission settings.
type ContactConfig struct {
	SubmitDelay    Duration `yaml:"submit_delay" env:"SHOWCASE_SUBMIT_DELAY"`
	SuccessMessage string   `yaml:"success_message" env:"SHOWCASE_SUCCESS_MESSAGE"`
}

// CatalogConfig contains project catalog display settings.
type CatalogConfig struct {
	PreviewCap int `yaml:"preview_cap" env:"SHOWCASE_PREVIEW_CAP"`
}

// FormsConfig controls how long idle form instances are kept.
type FormsConfig struct {
	IdleTTL       Duration `yaml:"idle_ttl" env:"SHOWCASE_FORM_IDLE_TTL"`
	SweepInterval Duration `yaml:"sweep_interval" env:"SHOWCASE_FORM_SWEEP_INTERVAL"`
}

// MetricsConfig contains Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" env:"SHOWCASE_METRICS_ENABLED"`
}

// SnapshotConfig controls periodic copies of the notification log.
// A zero Interval disables the snapshot worker.
type SnapshotConfig struct {
	Interval Duration              `yaml:"interval" env:"SHOWCASE_SNAPSHOT_INTERVAL"`
	Path     string                `yaml:"path" env:"SHOWCASE_SNAPSHOT_PATH"`
	Storage  SnapshotStorageConfig `yaml:"storage"`
}

// SnapshotStorageConfig configures S3-compatible upload of snapshots.
// An empty Bucket keeps snapshots local.
type SnapshotStorageConfig struct {
	Bucket    string   `yaml:"bucket" env:"SHOWCASE_SNAPSHOT_BUCKET"`
	Endpoint  string   `yaml:"endpoint" env:"SHOWCASE_SNAPSHOT_ENDPOINT"`
	Region    string   `yaml:"region" env:"SHOWCASE_SNAPSHOT_REGION"`
	Prefix    string   `yaml:"prefix" env:"SHOWCASE_SNAPSHOT_PREFIX"`
	UseSSL    *bool    `yaml:"use_ssl" env:"SHOWCASE_SNAPSHOT_USE_SSL"`
	AccessKey string   `yaml:"access_key" env:"SHOWCASE_SNAPSHOT_ACCESS_KEY"`
	SecretKey string   `yaml:"secret_key" env:"SHOWCASE_SNAPSHOT_SECRET_KEY"`
	URLExpiry Duration `yaml:"url_expiry" env:"SHOWCASE_SNAPSHOT_URL_EXPIRY"`
}

// Duration is a wrapper around time.Duration that supports YAML and
// environment string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// UnmarshalText implements encoding.TextUnmarshaler for Duration.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Load loads configuration with precedence: defaults → YAML file → env vars.
// Returns an immutable Config suitable for concurrent read access.
func Load() (*Config, error) {
	cfg := newDefaults()

	configPath := getEnv("SHOWCASE_CONFIG_PATH", "config/showcase.yaml")

	// Missing file is not an error
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	return finish(cfg)
}

// LoadFromFile loads configuration from a specific path.
// Used for testing and explicit path specification.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	// Only non-empty env vars override config values
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newDefaults returns a Config with all default values.
func newDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		Database: DatabaseConfig{
			Path: "data/showcase.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Contact: ContactConfig{
			SubmitDelay:    Duration(contact.DefaultSubmitDelay),
			SuccessMessage: contact.SuccessMessage,
		},
		Catalog: CatalogConfig{
			PreviewCap: catalog.PreviewCap,
		},
		Forms: FormsConfig{
			IdleTTL:       Duration(30 * time.Minute),
			SweepInterval: Duration(1 * time.Minute),
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Snapshot: SnapshotConfig{
			Path: "data/snapshot/notifications.db",
			Storage: SnapshotStorageConfig{
				URLExpiry: Duration(15 * time.Minute),
			},
		},
	}
}

// loadYAMLFile loads configuration from a YAML file if it exists.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// validate checks that configuration values are usable.
func (c *Config) validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q must be one of: debug, info, warn, error", c.Log.Level))
	}
	if c.Contact.SubmitDelay < 0 {
		errs = append(errs, errors.New("contact.submit_delay must not be negative"))
	}
	// Waiting submit responses are written after the delay.
	if c.Server.WriteTimeout > 0 && c.Contact.SubmitDelay >= c.Server.WriteTimeout {
		errs = append(errs, fmt.Errorf("contact.submit_delay %s must be below server.write_timeout %s",
			time.Duration(c.Contact.SubmitDelay), time.Duration(c.Server.WriteTimeout)))
	}
	if c.Catalog.PreviewCap < 0 {
		errs = append(errs, errors.New("catalog.preview_cap must not be negative"))
	}
	if c.Forms.IdleTTL <= 0 {
		errs = append(errs, errors.New("forms.idle_ttl must be positive"))
	}
	if c.Forms.SweepInterval <= 0 {
		errs = append(errs, errors.New("forms.sweep_interval must be positive"))
	}
	if c.Snapshot.Interval < 0 {
		errs = append(errs, errors.New("snapshot.interval must not be negative"))
	}
	if c.Snapshot.Interval > 0 && c.Snapshot.Path == "" {
		errs = append(errs, errors.New("snapshot.path is required when snapshot.interval is set"))
	}
	if c.Snapshot.Storage.Bucket != "" {
		if c.Snapshot.Storage.Endpoint == "" {
			errs = append(errs, errors.New("snapshot.storage.endpoint is required when a bucket is set"))
		}
		if c.Snapshot.Storage.URLExpiry <= 0 {
			errs = append(errs, errors.New("snapshot.storage.url_expiry must be positive"))
		}
	}
	return errors.Join(errs...)
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
