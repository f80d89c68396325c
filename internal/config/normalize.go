package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePublishing()
	c.normalizeVideoCatalog()
	c.normalizeSchedule()
	c.normalizeHealthcheck()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePublishing() {
	c.Publishing.AppID = strings.TrimSpace(c.Publishing.AppID)
	if c.Publishing.AppID == "" {
		if value, ok := os.LookupEnv("PUBLISHING_APP_ID"); ok {
			c.Publishing.AppID = strings.TrimSpace(value)
		}
	}
	c.Publishing.Secret = strings.TrimSpace(c.Publishing.Secret)
	if c.Publishing.Secret == "" {
		if value, ok := os.LookupEnv("PUBLISHING_SECRET"); ok {
			c.Publishing.Secret = strings.TrimSpace(value)
		}
	}
	c.Publishing.BaseURL = strings.TrimSpace(c.Publishing.BaseURL)
	if c.Publishing.BaseURL == "" {
		c.Publishing.BaseURL = defaultPublishingBaseURL
	}
	c.Publishing.ChannelID = strings.TrimSpace(c.Publishing.ChannelID)
}

func (c *Config) normalizeVideoCatalog() {
	c.VideoCatalog.APIKey = strings.TrimSpace(c.VideoCatalog.APIKey)
	if c.VideoCatalog.APIKey == "" {
		if value, ok := os.LookupEnv("VIDEO_API_KEY"); ok {
			c.VideoCatalog.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("YTKEY"); ok {
			// Legacy name used by earlier deployments of this job.
			c.VideoCatalog.APIKey = strings.TrimSpace(value)
		}
	}
	c.VideoCatalog.BaseURL = strings.TrimSpace(c.VideoCatalog.BaseURL)
	if c.VideoCatalog.BaseURL == "" {
		c.VideoCatalog.BaseURL = defaultCatalogBaseURL
	}
	c.VideoCatalog.ChannelID = strings.TrimSpace(c.VideoCatalog.ChannelID)
	c.VideoCatalog.MarkerPhrase = strings.TrimSpace(c.VideoCatalog.MarkerPhrase)
	if c.VideoCatalog.MarkerPhrase == "" {
		c.VideoCatalog.MarkerPhrase = defaultMarkerPhrase
	}
	if c.VideoCatalog.LivePollSeconds <= 0 {
		c.VideoCatalog.LivePollSeconds = defaultLivePollSeconds
	}
	if c.VideoCatalog.LivePollAttempts <= 0 {
		c.VideoCatalog.LivePollAttempts = defaultLivePollAttempts
	}
}

func (c *Config) normalizeSchedule() {
	c.Schedule.Weekday = strings.TrimSpace(c.Schedule.Weekday)
	if c.Schedule.Weekday == "" {
		c.Schedule.Weekday = defaultScheduleWeekday
	}
	c.Schedule.AnchorDate = strings.TrimSpace(c.Schedule.AnchorDate)
	if c.Schedule.AnchorDate == "" {
		c.Schedule.AnchorDate = defaultScheduleAnchorDate
	}
	c.Schedule.StartTime = strings.TrimSpace(c.Schedule.StartTime)
	if c.Schedule.StartTime == "" {
		c.Schedule.StartTime = defaultScheduleStartTime
	}
	if c.Pacing.LookupDelayMS < 0 {
		c.Pacing.LookupDelayMS = 0
	}
	if c.Pacing.SearchDelayMS < 0 {
		c.Pacing.SearchDelayMS = 0
	}
	if c.Pacing.CreateDelayMS < 0 {
		c.Pacing.CreateDelayMS = 0
	}
}

func (c *Config) normalizeHealthcheck() {
	c.Healthcheck.PingURL = strings.TrimSpace(c.Healthcheck.PingURL)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
