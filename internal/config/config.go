// Package config loads bot configuration from the environment, with an
// optional YAML file overriding the built-in defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultVoskModelPath = "models/vosk-model-small-en-us-0.15"
	defaultFFmpegPath    = "ffmpeg"
)

// Config holds everything the bot needs to start. Credentials may be empty:
// the process still starts and the affected integration fails at call time.
type Config struct {
	TelegramToken string

	NotionToken      string
	NotionDatabaseID string

	GoogleCredentialsFile string
	GoogleCalendarID      string

	VoskModelPath string
	FFmpegPath    string
}

// fileSettings is the shape of the optional YAML settings file pointed at by
// BOT_CONFIG_FILE. Only non-credential defaults live here.
type fileSettings struct {
	VoskModelPath string `yaml:"vosk_model_path"`
	FFmpegPath    string `yaml:"ffmpeg_path"`
}

// Load reads configuration from the environment. If BOT_CONFIG_FILE is set,
// the YAML file is applied between the defaults and the environment, so env
// vars always win.
func Load() (*Config, error) {
	cfg := &Config{
		TelegramToken:         os.Getenv("TELEGRAM_TOKEN"),
		NotionToken:           os.Getenv("NOTION_API_KEY"),
		NotionDatabaseID:      os.Getenv("NOTION_DATABASE_ID"),
		GoogleCredentialsFile: os.Getenv("GOOGLE_CALENDAR_CREDENTIALS_FILE"),
		GoogleCalendarID:      os.Getenv("GOOGLE_CALENDAR_ID"),
		VoskModelPath:         defaultVoskModelPath,
		FFmpegPath:            defaultFFmpegPath,
	}

	if path := os.Getenv("BOT_CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		var fs fileSettings
		if err := yaml.Unmarshal(data, &fs); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		if fs.VoskModelPath != "" {
			cfg.VoskModelPath = fs.VoskModelPath
		}
		if fs.FFmpegPath != "" {
			cfg.FFmpegPath = fs.FFmpegPath
		}
	}

	if v := os.Getenv("VOSK_MODEL_PATH"); v != "" {
		cfg.VoskModelPath = v
	}
	if v := os.Getenv("FFMPEG_PATH"); v != "" {
		cfg.FFmpegPath = v
	}

	return cfg, nil
}

// MissingCredentials returns the names of required credential variables that
// are unset. The Telegram token is not included: without it the bot cannot
// run at all and the caller treats it as fatal.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.NotionToken == "" {
		missing = append(missing, "NOTION_API_KEY")
	}
	if c.NotionDatabaseID == "" {
		missing = append(missing, "NOTION_DATABASE_ID")
	}
	if c.GoogleCredentialsFile == "" {
		missing = append(missing, "GOOGLE_CALENDAR_CREDENTIALS_FILE")
	}
	if c.GoogleCalendarID == "" {
		missing = append(missing, "GOOGLE_CALENDAR_ID")
	}
	return missing
}

// NotionConfigured reports whether the Notion integration can be used.
func (c *Config) NotionConfigured() bool {
	return c.NotionToken != "" && c.NotionDatabaseID != ""
}

// CalendarConfigured reports whether the Google Calendar integration can be used.
func (c *Config) CalendarConfigured() bool {
	return c.GoogleCredentialsFile != "" && c.GoogleCalendarID != ""
}
