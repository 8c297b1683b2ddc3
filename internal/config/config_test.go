package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("server.addr: got %q", cfg.Server.Addr)
	}
	if cfg.OCR.Language != "jpn+eng" {
		t.Errorf("ocr.language: got %q", cfg.OCR.Language)
	}
	if cfg.OCR.CacheTTL != 10*time.Minute {
		t.Errorf("ocr.cache_ttl: got %v", cfg.OCR.CacheTTL)
	}
	if cfg.OCR.Timeout != 30*time.Second {
		t.Errorf("ocr.timeout: got %v", cfg.OCR.Timeout)
	}
	if cfg.Parser.PrioritizeDiscounts || cfg.Parser.Trace {
		t.Error("parser flags should default to false")
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("log: got %+v", cfg.Log)
	}
	if cfg.Batch.Workers != 4 {
		t.Errorf("batch.workers: got %d", cfg.Batch.Workers)
	}
}

func TestInit_ConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "server:\n  addr: \":9090\"\nocr:\n  cache_ttl: 1m\nparser:\n  trace: true\nbatch:\n  workers: 0\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("RECEIPT_LOG_LEVEL", "debug")
	t.Setenv("RECEIPT_PARSER_PRIORITIZE_DISCOUNTS", "true")

	v := viper.New()
	used, err := Init(v, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if used != path {
		t.Errorf("config file used: got %q, want %q", used, path)
	}

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("server.addr: got %q", cfg.Server.Addr)
	}
	if cfg.OCR.CacheTTL != time.Minute {
		t.Errorf("ocr.cache_ttl: got %v", cfg.OCR.CacheTTL)
	}
	if !cfg.Parser.Trace {
		t.Error("parser.trace: expected true from file")
	}
	if !cfg.Parser.PrioritizeDiscounts {
		t.Error("parser.prioritize_discounts: expected true from env")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level: got %q, want debug from env", cfg.Log.Level)
	}
	if cfg.Batch.Workers != 1 {
		t.Errorf("batch.workers: got %d, want 1", cfg.Batch.Workers)
	}
}

func TestInit_MissingExplicitFile(t *testing.T) {
	v := viper.New()
	if _, err := Init(v, filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing explicit config file")
	}
}

func TestInit_NoDefaultFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	v := viper.New()
	used, err := Init(v, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if used != "" {
		t.Errorf("expected no config file, got %q", used)
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		cfg       LogConfig
		wantDebug bool
		prefix    string
	}{
		{"json info", LogConfig{Level: "info", Format: "json"}, false, "{"},
		{"text debug", LogConfig{Level: "debug", Format: "text"}, true, "time="},
		{"bad level", LogConfig{Level: "loud"}, false, "{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := tt.cfg.NewLogger(&buf)

			if got := logger.Enabled(context.Background(), slog.LevelDebug); got != tt.wantDebug {
				t.Errorf("debug enabled: got %v, want %v", got, tt.wantDebug)
			}
			logger.Info("parse.done", "items", 2)
			if !strings.HasPrefix(buf.String(), tt.prefix) {
				t.Errorf("output %q does not start with %q", buf.String(), tt.prefix)
			}
		})
	}
}
