package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"oee-analyzer-go/internal/deadhours"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultPort        = 8080
	DefaultMaxUploadMB = 32
	DefaultHistoryPath = "history.jsonl"
	DefaultTimezone    = "UTC"
)

// Config is the service configuration. Fields map 1:1 to config.yaml.
type Config struct {
	Server   ServerConfig  `yaml:"server"`
	History  HistoryConfig `yaml:"history"`
	Timezone string        `yaml:"timezone"`
	Shifts   []ShiftConfig `yaml:"shifts"`

	loc    *time.Location
	starts map[string]deadhours.ShiftStart
}

type ServerConfig struct {
	Port int `yaml:"port"`

	// MaxUploadMB caps the multipart body of one /analyze request.
	MaxUploadMB int64 `yaml:"max_upload_mb"`
}

type HistoryConfig struct {
	// Path of the JSON lines file runs are appended to.
	Path string `yaml:"path"`
}

// ShiftConfig places one shift's first hour on the wall clock.
type ShiftConfig struct {
	Name string `yaml:"name"`

	// Start is "HH:MM" on the shift's date.
	Start string `yaml:"start"`

	// DayOffset shifts the date the start is measured from, e.g. -1 for a
	// night shift booked on the day it ends.
	DayOffset int `yaml:"day_offset"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that an empty path or a missing file yields
// the defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Default is the validated default configuration.
func Default() *Config {
	cfg := defaults()
	if err := validate(cfg); err != nil {
		panic(err)
	}
	return cfg
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        DefaultPort,
			MaxUploadMB: DefaultMaxUploadMB,
		},
		History:  HistoryConfig{Path: DefaultHistoryPath},
		Timezone: DefaultTimezone,
		Shifts: []ShiftConfig{
			{Name: "1st", Start: "07:00"},
			{Name: "2nd", Start: "15:00"},
			{Name: "3rd", Start: "23:00"},
		},
	}
}

// validate checks constraints and resolves the timezone and shift starts.
func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", cfg.Server.Port)
	}
	if cfg.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive")
	}
	if cfg.History.Path == "" {
		return fmt.Errorf("history.path is required")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
	}

	if len(cfg.Shifts) == 0 {
		return fmt.Errorf("at least one shift is required")
	}
	starts := make(map[string]deadhours.ShiftStart, len(cfg.Shifts))
	for i, s := range cfg.Shifts {
		key := deadhours.CanonicalShift(s.Name)
		if key == "" {
			return fmt.Errorf("shifts[%d]: name is required", i)
		}
		if _, dup := starts[key]; dup {
			return fmt.Errorf("shifts[%d] %q: duplicate shift", i, s.Name)
		}
		tod, err := parseClock(s.Start)
		if err != nil {
			return fmt.Errorf("shifts[%d] %q: %w", i, s.Name, err)
		}
		starts[key] = deadhours.ShiftStart{TimeOfDay: tod, DayOffset: s.DayOffset}
	}

	cfg.loc = loc
	cfg.starts = starts
	return nil
}

// parseClock reads "HH:MM" as an offset from midnight.
func parseClock(s string) (time.Duration, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("start %q: want HH:MM", s)
	}
	h, err1 := strconv.Atoi(hh)
	m, err2 := strconv.Atoi(mm)
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("start %q: want HH:MM", s)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}

// ApplyEnv overrides file values with PORT and HISTORY_PATH when set.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("config: PORT %q is not a valid port", v)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("HISTORY_PATH"); v != "" {
		c.History.Path = v
	}
	return nil
}

// Location is the zone event timestamps and shift hours are read in.
func (c *Config) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// Clock builds the shift clock for dead-hour correlation.
func (c *Config) Clock() deadhours.ShiftClock {
	if c.starts == nil {
		return deadhours.NewShiftClock(deadhours.DefaultShiftStarts, c.Location())
	}
	return deadhours.NewShiftClock(c.starts, c.Location())
}

// MaxUploadBytes is the request body limit for /analyze.
func (c *Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB << 20
}
