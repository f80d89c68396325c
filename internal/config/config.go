package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Publishing contains configuration for the publishing platform API.
type Publishing struct {
	AppID     string `toml:"app_id"`
	Secret    string `toml:"secret"`
	BaseURL   string `toml:"base_url"`
	ChannelID string `toml:"channel_id"`
}

// VideoCatalog contains configuration for the video catalog API.
type VideoCatalog struct {
	APIKey           string `toml:"api_key"`
	BaseURL          string `toml:"base_url"`
	ChannelID        string `toml:"channel_id"`
	MarkerPhrase     string `toml:"marker_phrase"`
	LivePollSeconds  int    `toml:"live_poll_seconds"`
	LivePollAttempts int    `toml:"live_poll_attempts"`
}

// Schedule contains the weekly service cadence.
type Schedule struct {
	Weekday    string `toml:"weekday"`
	AnchorDate string `toml:"anchor_date"`
	StartTime  string `toml:"start_time"`
}

// Pacing contains the inter-request delays used during backfill.
type Pacing struct {
	LookupDelayMS int `toml:"lookup_delay_ms"`
	SearchDelayMS int `toml:"search_delay_ms"`
	CreateDelayMS int `toml:"create_delay_ms"`
}

// Healthcheck contains the optional success-ping endpoint.
type Healthcheck struct {
	PingURL string `toml:"ping_url"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Steeple.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - Publishing: publishing platform credentials and channel
//   - VideoCatalog: video catalog key, channel, and matching knobs
//   - Schedule: weekly cadence anchor and service start time
//   - Pacing: backfill inter-request delays
//   - Healthcheck: success ping endpoint
//   - Logging: log format and level
type Config struct {
	Paths        Paths        `toml:"paths"`
	Publishing   Publishing   `toml:"publishing"`
	VideoCatalog VideoCatalog `toml:"videocatalog"`
	Schedule     Schedule     `toml:"schedule"`
	Pacing       Pacing       `toml:"pacing"`
	Healthcheck  Healthcheck  `toml:"healthcheck"`
	Logging      Logging      `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/steeple/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/steeple/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("steeple.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ServiceWeekday returns the configured weekday of the recurring service.
func (c *Config) ServiceWeekday() (time.Weekday, error) {
	return parseWeekday(c.Schedule.Weekday)
}

// AnchorDate returns the first service date of the backfill window as a UTC date.
func (c *Config) AnchorDate() (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(c.Schedule.AnchorDate))
	if err != nil {
		return time.Time{}, fmt.Errorf("schedule.anchor_date: %w", err)
	}
	return parsed.UTC(), nil
}

// ServiceStart returns the service start time of day as hour and minute.
func (c *Config) ServiceStart() (hour, minute int, err error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(c.Schedule.StartTime))
	if err != nil {
		return 0, 0, fmt.Errorf("schedule.start_time: %w", err)
	}
	return parsed.Hour(), parsed.Minute(), nil
}

// LivePollInterval returns the delay between live-broadcast polls.
func (c *Config) LivePollInterval() time.Duration {
	return time.Duration(c.VideoCatalog.LivePollSeconds) * time.Second
}

// LookupDelay returns the pause between episode lookups during backfill.
func (c *Config) LookupDelay() time.Duration {
	return time.Duration(c.Pacing.LookupDelayMS) * time.Millisecond
}

// SearchDelay returns the pause between catalog searches during backfill.
func (c *Config) SearchDelay() time.Duration {
	return time.Duration(c.Pacing.SearchDelayMS) * time.Millisecond
}

// CreateDelay returns the pause between episode creations during backfill.
func (c *Config) CreateDelay() time.Duration {
	return time.Duration(c.Pacing.CreateDelayMS) * time.Millisecond
}

func parseWeekday(value string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	default:
		return time.Sunday, fmt.Errorf("schedule.weekday: unknown weekday %q", value)
	}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
