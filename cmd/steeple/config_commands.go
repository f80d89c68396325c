package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"steeple/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand())
	configCmd.AddCommand(newConfigPathCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set the publishing credentials and video API key (or export PUBLISHING_APP_ID, PUBLISHING_SECRET, and VIDEO_API_KEY) before running steeple.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration with secrets redacted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, _, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration file: %s\n\n", path)
			rows := [][]string{
				{"paths.data_dir", cfg.Paths.DataDir},
				{"paths.log_dir", cfg.Paths.LogDir},
				{"publishing.base_url", cfg.Publishing.BaseURL},
				{"publishing.channel_id", cfg.Publishing.ChannelID},
				{"publishing.app_id", redact(cfg.Publishing.AppID)},
				{"publishing.secret", redact(cfg.Publishing.Secret)},
				{"videocatalog.base_url", cfg.VideoCatalog.BaseURL},
				{"videocatalog.channel_id", cfg.VideoCatalog.ChannelID},
				{"videocatalog.api_key", redact(cfg.VideoCatalog.APIKey)},
				{"videocatalog.marker_phrase", cfg.VideoCatalog.MarkerPhrase},
				{"videocatalog.live_poll_seconds", fmt.Sprintf("%d", cfg.VideoCatalog.LivePollSeconds)},
				{"videocatalog.live_poll_attempts", fmt.Sprintf("%d", cfg.VideoCatalog.LivePollAttempts)},
				{"schedule.weekday", cfg.Schedule.Weekday},
				{"schedule.anchor_date", cfg.Schedule.AnchorDate},
				{"schedule.start_time", cfg.Schedule.StartTime},
				{"healthcheck.ping_url", cfg.Healthcheck.PingURL},
				{"logging.format", cfg.Logging.Format},
				{"logging.level", cfg.Logging.Level},
			}
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows, nil))
			return nil
		},
	}
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print the configuration file path that would be used",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, path, _, err := config.Load(""); err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			}
			// The config may be missing or invalid; the default location is
			// still the useful answer.
			defaultPath, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), defaultPath)
			return nil
		},
	}
}

func redact(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(unset)"
	}
	return "(set)"
}
