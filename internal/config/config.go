// Package config loads the YAML configuration for a run.
//
// Configuration is read once per invocation; there is no hot reload because
// the process lives for one daily pass (or, in serve mode, re-reads nothing
// mid-run). Secrets never live in the file: the keep credentials are pulled
// from the environment at load time.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

// Environment variables consulted at load time.
const (
	EnvToken    = "CHOREWHEEL_KEEP_TOKEN"
	EnvEmail    = "CHOREWHEEL_KEEP_EMAIL"
	EnvPassword = "CHOREWHEEL_KEEP_PASSWORD"

	// Per-person list-title override, NOTE_<PERSON> with spaces as
	// underscores, kept compatible with the household's old setup.
	envNotePrefix = "NOTE_"
)

type Config struct {
	Catalog  string `yaml:"catalog"`
	ResetDay string `yaml:"reset_day"` // weekday name; default monday
	Timezone string `yaml:"timezone"`  // IANA TZ; default local

	Logging LoggingConfig `yaml:"logging"`
	Keep    KeepConfig    `yaml:"keep"`
	Journal JournalConfig `yaml:"journal"`
	Serve   ServeConfig   `yaml:"serve"`

	// People maps a person identifier to the title of their remote list.
	// A person with no mapping is skipped during sync, never fatal.
	People map[string]string `yaml:"people"`
}

type LoggingConfig struct {
	Level   string      `yaml:"level"`
	Console *bool       `yaml:"console"`
	File    LoggingFile `yaml:"file"`
}

type LoggingFile struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type KeepConfig struct {
	BaseURL    string `yaml:"base_url"`
	RatePerSec int    `yaml:"rate_per_sec"`
	// Timeout is a Go duration string (e.g. "30s").
	Timeout string `yaml:"timeout"`
	// ParallelSync bounds how many people's lists sync concurrently.
	ParallelSync int `yaml:"parallel_sync"`

	// Filled from the environment, never from the file.
	Token    string `yaml:"-"`
	Email    string `yaml:"-"`
	Password string `yaml:"-"`
}

type JournalConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	// BusyTimeout is a Go duration string (sqlite only).
	BusyTimeout string `yaml:"busy_timeout"`
}

// ServeConfig controls the optional long-running mode.
type ServeConfig struct {
	// At is the local time of the daily trigger, "HH:MM". Default "06:00".
	At string `yaml:"at"`
}

// Load reads, strictly decodes and validates the config file, then applies
// defaults and environment credentials.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Catalog) == "" {
		c.Catalog = "./cleaning-schedule.csv"
	}
	if strings.TrimSpace(c.ResetDay) == "" {
		c.ResetDay = "monday"
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Console == nil {
		v := true
		c.Logging.Console = &v
	}
	if c.Keep.RatePerSec <= 0 {
		c.Keep.RatePerSec = 5
	}
	if c.Keep.ParallelSync <= 0 {
		c.Keep.ParallelSync = 2
	}
	if strings.TrimSpace(c.Serve.At) == "" {
		c.Serve.At = "06:00"
	}
}

func (c *Config) applyEnv() {
	c.Keep.Token = os.Getenv(EnvToken)
	c.Keep.Email = os.Getenv(EnvEmail)
	c.Keep.Password = os.Getenv(EnvPassword)
}

func (c *Config) validate() error {
	if _, err := c.ResetWeekday(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Keep.BaseURL) == "" {
		return fmt.Errorf("keep.base_url is required")
	}
	if _, err := c.KeepTimeout(); err != nil {
		return err
	}
	if _, err := c.JournalBusyTimeout(); err != nil {
		return err
	}
	return nil
}

// ResetWeekday parses the configured reset day name.
func (c *Config) ResetWeekday() (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(c.ResetDay))
	days := map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}
	d, ok := days[name]
	if !ok {
		return 0, fmt.Errorf("invalid reset_day %q", c.ResetDay)
	}
	return d, nil
}

// Location resolves the configured timezone, defaulting to the system's.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

func (c *Config) KeepTimeout() (time.Duration, error) {
	return parseDuration(c.Keep.Timeout, "keep.timeout")
}

func (c *Config) JournalBusyTimeout() (time.Duration, error) {
	return parseDuration(c.Journal.BusyTimeout, "journal.busy_timeout")
}

func parseDuration(raw, field string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, raw, err)
	}
	return d, nil
}

// ListTitle resolves a person's remote list title. The NOTE_<PERSON>
// environment variable wins over the people map. ok is false when neither
// names a list.
func (c *Config) ListTitle(person string) (title string, ok bool) {
	key := envNotePrefix + strings.ToUpper(strings.ReplaceAll(person, " ", "_"))
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v, true
	}
	v, ok := c.People[person]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}
