package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// NOTE: Load creates a default config file on first run; Save writes
// atomically with 0600 permissions.

const (
	defaultListen       = "127.0.0.1:8080"
	defaultLogFile      = "appointments.csv"
	defaultLogLevel     = "info"
	defaultRemindCron   = "0 8 * * *"
	defaultEventMinutes = 30
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the HTTP API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone that defines "today" (e.g. "Europe/Berlin").
	// Empty means the host's local zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// LogFile is the CSV appointment log path.
	LogFile string `yaml:"log_file" json:"log_file"`

	// LogLevel is one of "debug", "info", "error".
	LogLevel string `yaml:"log_level" json:"log_level"`

	// RemindCron is a cron-style schedule (e.g. "0 8 * * *") for reminder
	// scans. Empty disables the scheduler in serve mode.
	RemindCron string `yaml:"remind" json:"remind"`

	// RemindAheadDays widens reminders from today to the next N days.
	RemindAheadDays int `yaml:"remind_ahead_days" json:"remind_ahead_days"`

	// EventMinutes is the duration of each exported calendar event.
	EventMinutes int `yaml:"event_minutes" json:"event_minutes"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:          defaultListen,
		Timezone:        "",
		LogFile:         defaultLogFile,
		LogLevel:        defaultLogLevel,
		RemindCron:      defaultRemindCron,
		RemindAheadDays: 0,
		EventMinutes:    defaultEventMinutes,
		BasicAuth:       nil,
	}
}

// Normalize fills in missing/zero values so that partially-filled
// configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.LogFile == "" {
		c.LogFile = defaultLogFile
	}
	switch c.LogLevel {
	case "debug", "info", "error":
	default:
		c.LogLevel = defaultLogLevel
	}
	if c.RemindAheadDays < 0 {
		c.RemindAheadDays = 0
	}
	if c.EventMinutes <= 0 {
		c.EventMinutes = defaultEventMinutes
	}
}

// Location resolves Timezone, falling back to time.Local when it is empty.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// EventDuration is EventMinutes as a time.Duration.
func (c *Config) EventDuration() time.Duration {
	return time.Duration(c.EventMinutes) * time.Minute
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, write a default config with 0600 perms
//     and return it.
//   - If the file exists, unmarshal it and normalize defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return cfg, nil
}

// Save writes cfg to path via a temp file + rename in the same directory.
// The parent directory is created 0700 and the file ends up 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".apptlog-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function:
//
//	cfg, _ := config.Load(path)
//	// ... mutate cfg ...
//	if err := cfg.Save(path); err != nil { ... }
func (c *Config) Save(path string) error {
	return Save(path, c)
}
