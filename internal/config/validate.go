package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePublishing(); err != nil {
		return err
	}
	if err := c.validateVideoCatalog(); err != nil {
		return err
	}
	if err := c.validateSchedule(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePublishing() error {
	if c.Publishing.AppID == "" || c.Publishing.Secret == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/steeple/config.toml"
		}
		return fmt.Errorf("publishing.app_id and publishing.secret are required. Set PUBLISHING_APP_ID/PUBLISHING_SECRET env vars or edit %s (create with 'steeple config init')", defaultPath)
	}
	if c.Publishing.ChannelID == "" {
		return errors.New("publishing.channel_id must be set")
	}
	return nil
}

func (c *Config) validateVideoCatalog() error {
	if c.VideoCatalog.APIKey == "" {
		return errors.New("videocatalog.api_key is required. Set VIDEO_API_KEY env var or edit the config file")
	}
	if c.VideoCatalog.ChannelID == "" {
		return errors.New("videocatalog.channel_id must be set")
	}
	if err := ensurePositiveMap(map[string]int{
		"videocatalog.live_poll_seconds":  c.VideoCatalog.LivePollSeconds,
		"videocatalog.live_poll_attempts": c.VideoCatalog.LivePollAttempts,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSchedule() error {
	weekday, err := c.ServiceWeekday()
	if err != nil {
		return err
	}
	anchor, err := c.AnchorDate()
	if err != nil {
		return err
	}
	if anchor.Weekday() != weekday {
		return fmt.Errorf("schedule.anchor_date %s falls on %s, expected %s", c.Schedule.AnchorDate, anchor.Weekday(), weekday)
	}
	if _, _, err := c.ServiceStart(); err != nil {
		return err
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be greater than zero", key)
		}
	}
	return nil
}
