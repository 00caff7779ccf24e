package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aliskhannn/talaffuz-bot/internal/config"
)

func TestNewWritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	cfg := &config.Config{
		Env: "production",
		Log: config.Log{File: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1},
	}

	log, err := New(cfg)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	log.Info("lesson issued")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"lesson issued"`) {
		t.Fatalf("log file content = %s", data)
	}
}

func TestNewWithoutFile(t *testing.T) {
	log, err := New(&config.Config{Env: "local"})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if log == nil {
		t.Fatal("logger is nil")
	}
}
