// Package config loads layered settings: flags, RECEIPT_* environment
// variables (also read from a .env file), a YAML config file, then defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. RECEIPT_SERVER_ADDR.
const EnvPrefix = "RECEIPT"

// Config is the effective configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	OCR    OCRConfig    `mapstructure:"ocr" yaml:"ocr"`
	Parser ParserConfig `mapstructure:"parser" yaml:"parser"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Batch  BatchConfig  `mapstructure:"batch" yaml:"batch"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

type OCRConfig struct {
	Language string        `mapstructure:"language" yaml:"language"`
	CacheTTL time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// RateLimit is recognitions per second across all requests; 0 disables it.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst" yaml:"rate_burst"`
}

type ParserConfig struct {
	VocabularyFile      string `mapstructure:"vocabulary_file" yaml:"vocabulary_file"`
	PrioritizeDiscounts bool   `mapstructure:"prioritize_discounts" yaml:"prioritize_discounts"`
	Trace               bool   `mapstructure:"trace" yaml:"trace"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type BatchConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("ocr.language", "jpn+eng")
	v.SetDefault("ocr.cache_ttl", 10*time.Minute)
	v.SetDefault("ocr.timeout", 30*time.Second)
	v.SetDefault("ocr.rate_limit", 0.0)
	v.SetDefault("ocr.rate_burst", 2)
	v.SetDefault("parser.vocabulary_file", "")
	v.SetDefault("parser.prioritize_discounts", false)
	v.SetDefault("parser.trace", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("batch.workers", 4)
}

// Init prepares v: defaults, environment binding and the config file. An
// explicit cfgFile must exist; the default $HOME/.receipt-savings/config.yaml
// is optional. It returns the config file used, if any.
func Init(v *viper.Viper, cfgFile string) (string, error) {
	loadDotEnv()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", nil
		}
		v.AddConfigPath(filepath.Join(home, ".receipt-savings"))
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("read config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// loadDotEnv loads ./.env if present. Variables already set win.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
}

// Load decodes v into a Config.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Batch.Workers <= 0 {
		cfg.Batch.Workers = 1
	}
	return &cfg, nil
}

// NewLogger builds the slog logger described by c, writing to w.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(c.Level)}
	if strings.EqualFold(c.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
