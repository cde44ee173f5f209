package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// Helper to clear all config-related env vars
func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"SHOWCASE_CONFIG_PATH",
		"SHOWCASE_PORT",
		"SHOWCASE_READ_TIMEOUT",
		"SHOWCASE_WRITE_TIMEOUT",
		"SHOWCASE_SHUTDOWN_TIMEOUT",
		"SHOWCASE_DB_PATH",
		"SHOWCASE_LOG_LEVEL",
		"SHOWCASE_LOG_FORMAT",
		"SHOWCASE_SUBMIT_DELAY",
		"SHOWCASE_SUCCESS_MESSAGE",
		"SHOWCASE_PREVIEW_CAP",
		"SHOWCASE_FORM_IDLE_TTL",
		"SHOWCASE_FORM_SWEEP_INTERVAL",
		"SHOWCASE_METRICS_ENABLED",
		"SHOWCASE_SNAPSHOT_INTERVAL",
		"SHOWCASE_SNAPSHOT_PATH",
		"SHOWCASE_SNAPSHOT_BUCKET",
		"SHOWCASE_SNAPSHOT_ENDPOINT",
		"SHOWCASE_SNAPSHOT_REGION",
		"SHOWCASE_SNAPSHOT_PREFIX",
		"SHOWCASE_SNAPSHOT_USE_SSL",
		"SHOWCASE_SNAPSHOT_ACCESS_KEY",
		"SHOWCASE_SNAPSHOT_SECRET_KEY",
		"SHOWCASE_SNAPSHOT_URL_EXPIRY",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
	// Point at a path that never exists so a developer's local file is ignored
	t.Setenv("SHOWCASE_CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
}

// dur converts Duration to time.Duration for comparison
func dur(d Duration) time.Duration {
	return time.Duration(d)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

// Test: Default values when no config file and no env vars
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if dur(cfg.Server.ReadTimeout) != 30*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 30s", cfg.Server.ReadTimeout)
	}
	if dur(cfg.Server.ShutdownTimeout) != 15*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want 15s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Database.Path != "data/showcase.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "data/showcase.db")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if dur(cfg.Contact.SubmitDelay) != 1500*time.Millisecond {
		t.Errorf("Contact.SubmitDelay = %v, want 1.5s", cfg.Contact.SubmitDelay)
	}
	if !strings.HasPrefix(cfg.Contact.SuccessMessage, "Message sent successfully!") {
		t.Errorf("Contact.SuccessMessage = %q", cfg.Contact.SuccessMessage)
	}
	if cfg.Catalog.PreviewCap != 6 {
		t.Errorf("Catalog.PreviewCap = %d, want 6", cfg.Catalog.PreviewCap)
	}
	if dur(cfg.Forms.IdleTTL) != 30*time.Minute {
		t.Errorf("Forms.IdleTTL = %v, want 30m", cfg.Forms.IdleTTL)
	}
	if dur(cfg.Forms.SweepInterval) != time.Minute {
		t.Errorf("Forms.SweepInterval = %v, want 1m", cfg.Forms.SweepInterval)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should default to true")
	}
}

// Test: Environment variables override defaults
func TestLoad_EnvVarOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHOWCASE_PORT", "9090")
	t.Setenv("SHOWCASE_DB_PATH", "/custom/path.db")
	t.Setenv("SHOWCASE_LOG_LEVEL", "debug")
	t.Setenv("SHOWCASE_SUBMIT_DELAY", "250ms")
	t.Setenv("SHOWCASE_PREVIEW_CAP", "3")
	t.Setenv("SHOWCASE_METRICS_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
	if dur(cfg.Contact.SubmitDelay) != 250*time.Millisecond {
		t.Errorf("Contact.SubmitDelay = %v, want 250ms", cfg.Contact.SubmitDelay)
	}
	if cfg.Catalog.PreviewCap != 3 {
		t.Errorf("Catalog.PreviewCap = %d, want 3", cfg.Catalog.PreviewCap)
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = true, want false")
	}
}

// Test: Empty env var does NOT override (only non-empty values override)
func TestLoad_EmptyEnvVarDoesNotOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHOWCASE_PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080 (default)", cfg.Server.Port)
	}
}

// Test: Malformed env values are reported rather than ignored
func TestLoad_InvalidEnvDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHOWCASE_SUBMIT_DELAY", "soon")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for invalid duration, got nil")
	}
	if !strings.Contains(err.Error(), "parsing environment") {
		t.Errorf("error = %v, want parsing environment", err)
	}
}

// Test: YAML file loading
func TestLoadFromFile_ValidYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  port: 9999
  read_timeout: 60s
database:
  path: /yaml/path.db
log:
  level: warn
contact:
  submit_delay: 2s
  success_message: Thanks!
catalog:
  preview_cap: 4
forms:
  idle_ttl: 5m
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if dur(cfg.Server.ReadTimeout) != 60*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 60s", cfg.Server.ReadTimeout)
	}
	if cfg.Database.Path != "/yaml/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/yaml/path.db")
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "warn")
	}
	if dur(cfg.Contact.SubmitDelay) != 2*time.Second {
		t.Errorf("Contact.SubmitDelay = %v, want 2s", cfg.Contact.SubmitDelay)
	}
	if cfg.Contact.SuccessMessage != "Thanks!" {
		t.Errorf("Contact.SuccessMessage = %q, want %q", cfg.Contact.SuccessMessage, "Thanks!")
	}
	if cfg.Catalog.PreviewCap != 4 {
		t.Errorf("Catalog.PreviewCap = %d, want 4", cfg.Catalog.PreviewCap)
	}
	if dur(cfg.Forms.IdleTTL) != 5*time.Minute {
		t.Errorf("Forms.IdleTTL = %v, want 5m", cfg.Forms.IdleTTL)
	}
	// Unset keys keep defaults
	if dur(cfg.Forms.SweepInterval) != time.Minute {
		t.Errorf("Forms.SweepInterval = %v, want 1m", cfg.Forms.SweepInterval)
	}
}

// Test: Env vars override YAML values
func TestLoad_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  port: 7000
`)
	t.Setenv("SHOWCASE_CONFIG_PATH", path)
	t.Setenv("SHOWCASE_PORT", "7001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7001 {
		t.Errorf("Server.Port = %d, want 7001", cfg.Server.Port)
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("LoadFromFile() expected error for missing file")
	}
}

func TestLoadFromFile_InvalidDuration(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "server:\n  read_timeout: forever\n")

	_, err := LoadFromFile(path)
	if err == nil || !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("LoadFromFile() error = %v, want invalid duration", err)
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"db path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"submit delay", func(c *Config) { c.Contact.SubmitDelay = Duration(-time.Second) }, "contact.submit_delay"},
		{"submit delay at write timeout", func(c *Config) {
			c.Server.WriteTimeout = Duration(2 * time.Second)
			c.Contact.SubmitDelay = Duration(2 * time.Second)
		}, "server.write_timeout"},
		{"preview cap", func(c *Config) { c.Catalog.PreviewCap = -1 }, "catalog.preview_cap"},
		{"idle ttl", func(c *Config) { c.Forms.IdleTTL = 0 }, "forms.idle_ttl"},
		{"sweep interval", func(c *Config) { c.Forms.SweepInterval = 0 }, "forms.sweep_interval"},
		{"snapshot interval", func(c *Config) { c.Snapshot.Interval = Duration(-time.Minute) }, "snapshot.interval"},
		{"snapshot path", func(c *Config) { c.Snapshot.Interval = Duration(time.Hour); c.Snapshot.Path = "" }, "snapshot.path"},
		{"snapshot endpoint", func(c *Config) { c.Snapshot.Storage.Bucket = "b" }, "snapshot.storage.endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newDefaults()
			tt.mutate(cfg)

			err := cfg.validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("validate() = %v, want error mentioning %q", err, tt.want)
			}
		})
	}
}

func TestValidate_SubmitDelayWithoutWriteTimeout(t *testing.T) {
	cfg := newDefaults()
	cfg.Server.WriteTimeout = 0
	cfg.Contact.SubmitDelay = Duration(time.Minute)

	if err := cfg.validate(); err != nil {
		t.Errorf("validate() = %v, want nil when write timeout is disabled", err)
	}
}

func TestLoad_SnapshotDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Snapshot.Interval != 0 {
		t.Errorf("Snapshot.Interval = %v, want disabled", cfg.Snapshot.Interval)
	}
	if cfg.Snapshot.Path != "data/snapshot/notifications.db" {
		t.Errorf("Snapshot.Path = %q", cfg.Snapshot.Path)
	}
	if cfg.Snapshot.Storage.Bucket != "" || cfg.Snapshot.Storage.UseSSL != nil {
		t.Errorf("Snapshot.Storage = %+v, want unconfigured", cfg.Snapshot.Storage)
	}
	if dur(cfg.Snapshot.Storage.URLExpiry) != 15*time.Minute {
		t.Errorf("URLExpiry = %v, want 15m", cfg.Snapshot.Storage.URLExpiry)
	}
}

func TestLoad_SnapshotStorageFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHOWCASE_SNAPSHOT_INTERVAL", "1h")
	t.Setenv("SHOWCASE_SNAPSHOT_BUCKET", "showcase-backups")
	t.Setenv("SHOWCASE_SNAPSHOT_ENDPOINT", "localhost:9000")
	t.Setenv("SHOWCASE_SNAPSHOT_USE_SSL", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if dur(cfg.Snapshot.Interval) != time.Hour {
		t.Errorf("Snapshot.Interval = %v, want 1h", cfg.Snapshot.Interval)
	}
	st := cfg.Snapshot.Storage
	if st.Bucket != "showcase-backups" || st.Endpoint != "localhost:9000" {
		t.Errorf("Storage = %+v", st)
	}
	if st.UseSSL == nil || *st.UseSSL {
		t.Errorf("UseSSL = %v, want explicit false", st.UseSSL)
	}
}

func TestDuration_MarshalYAML(t *testing.T) {
	out, err := yaml.Marshal(struct {
		D Duration `yaml:"d"`
	}{D: Duration(90 * time.Second)})
	if err != nil {
		t.Fatalf("yaml.Marshal error = %v", err)
	}
	if !strings.Contains(string(out), "d: 1m30s") {
		t.Errorf("yaml = %q, want d: 1m30s", out)
	}
}
