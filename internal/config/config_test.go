package config

import (
	"errors"
	"testing"
)

func TestLoadRequiresTelegramToken(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TELEGRAM_API_TOKEN", "")
	t.Setenv("TELEGRAM_TOKEN", "")

	_, err := Load()
	if !errors.Is(err, ErrMissingEnvironmentVariables) {
		t.Fatalf("expected ErrMissingEnvironmentVariables, got %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TELEGRAM_API_TOKEN", "")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("BASE_URL", "https://cdn.example.com/lessons/")
	t.Setenv("LESSONS_PER_LEVEL", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.TelegramAPIToken != "123:abc" {
		t.Fatalf("token = %q", cfg.TelegramAPIToken)
	}
	if cfg.Lessons.PerLevel != 25 {
		t.Fatalf("lessons per level = %d, want 25", cfg.Lessons.PerLevel)
	}
	if cfg.Lessons.PassThreshold != 0.75 {
		t.Fatalf("pass threshold = %v, want 0.75", cfg.Lessons.PassThreshold)
	}
	if cfg.Content.BaseURL != "https://cdn.example.com/lessons" {
		t.Fatalf("base url = %q, trailing slash must be trimmed", cfg.Content.BaseURL)
	}
	if cfg.Content.Source != SourceHTTP {
		t.Fatalf("content source = %q", cfg.Content.Source)
	}
	if cfg.Transcription.Enabled() {
		t.Fatal("transcription must be disabled without a key")
	}
	if _, err := cfg.DB.DSN(); !errors.Is(err, ErrMissingEnvironmentVariables) {
		t.Fatalf("expected missing DSN, got %v", err)
	}
}

func TestLoadLessonsPerLevelFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("LESSONS_PER_LEVEL", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Lessons.PerLevel != 10 {
		t.Fatalf("lessons per level = %d, want 10", cfg.Lessons.PerLevel)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Lessons:       Lessons{PerLevel: 25, PassThreshold: 0.75},
		Content:       Content{Source: SourceHTTP},
		Transcription: Transcription{Provider: ProviderOpenAI},
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{name: "valid", mutate: func(c *Config) {}, ok: true},
		{name: "zero lessons", mutate: func(c *Config) { c.Lessons.PerLevel = 0 }},
		{name: "threshold above one", mutate: func(c *Config) { c.Lessons.PassThreshold = 1.5 }},
		{name: "zero threshold", mutate: func(c *Config) { c.Lessons.PassThreshold = 0 }},
		{name: "unknown source", mutate: func(c *Config) { c.Content.Source = "ftp" }},
		{name: "s3 source", mutate: func(c *Config) { c.Content.Source = SourceS3 }, ok: true},
		{name: "unknown provider", mutate: func(c *Config) { c.Transcription.Provider = "vosk" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestTranscriptionEnabled(t *testing.T) {
	if !(Transcription{Provider: ProviderOpenAI, OpenAIAPIKey: "sk"}).Enabled() {
		t.Fatal("openai with key must be enabled")
	}
	if (Transcription{Provider: ProviderGoogle, OpenAIAPIKey: "sk"}).Enabled() {
		t.Fatal("google without credentials must be disabled")
	}
	if !(Transcription{Provider: ProviderGoogle, GoogleCredentials: "/sa.json"}).Enabled() {
		t.Fatal("google with credentials must be enabled")
	}
}
