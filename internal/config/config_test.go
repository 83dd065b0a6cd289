package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, v := range []string{"TELEGRAM_TOKEN", "NOTION_API_KEY", "NOTION_DATABASE_ID",
		"GOOGLE_CALENDAR_CREDENTIALS_FILE", "GOOGLE_CALENDAR_ID",
		"VOSK_MODEL_PATH", "FFMPEG_PATH", "BOT_CONFIG_FILE"} {
		t.Setenv(v, "")
		os.Unsetenv(v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.VoskModelPath != defaultVoskModelPath {
		t.Errorf("Expected default model path, got %q", cfg.VoskModelPath)
	}
	if cfg.FFmpegPath != defaultFFmpegPath {
		t.Errorf("Expected default ffmpeg path, got %q", cfg.FFmpegPath)
	}
	if cfg.NotionConfigured() || cfg.CalendarConfigured() {
		t.Error("Integrations should not be configured with empty env")
	}

	missing := cfg.MissingCredentials()
	if len(missing) != 4 {
		t.Errorf("Expected 4 missing credentials, got %d: %v", len(missing), missing)
	}
}

func TestLoadYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bot.yaml")
	data := "vosk_model_path: /opt/models/en\nffmpeg_path: /usr/local/bin/ffmpeg\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("BOT_CONFIG_FILE", path)
	t.Setenv("VOSK_MODEL_PATH", "")
	os.Unsetenv("VOSK_MODEL_PATH")
	t.Setenv("FFMPEG_PATH", "")
	os.Unsetenv("FFMPEG_PATH")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.VoskModelPath != "/opt/models/en" {
		t.Errorf("Expected YAML model path, got %q", cfg.VoskModelPath)
	}
	if cfg.FFmpegPath != "/usr/local/bin/ffmpeg" {
		t.Errorf("Expected YAML ffmpeg path, got %q", cfg.FFmpegPath)
	}
}

func TestEnvWinsOverYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bot.yaml")
	if err := os.WriteFile(path, []byte("ffmpeg_path: /from/yaml\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("BOT_CONFIG_FILE", path)
	t.Setenv("FFMPEG_PATH", "/from/env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.FFmpegPath != "/from/env" {
		t.Errorf("Expected env to win, got %q", cfg.FFmpegPath)
	}
}

func TestLoadBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bot.yaml")
	if err := os.WriteFile(path, []byte(":\n\t- not yaml"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("BOT_CONFIG_FILE", path)
	if _, err := Load(); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}
