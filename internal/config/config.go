package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

type AppConfig struct {
	ListenAddr string `yaml:"listen_addr"`

	RedisURL    string `yaml:"redis_url"`
	DatabaseURL string `yaml:"database_url"`

	GameTTLSec  int    `yaml:"game_ttl_sec"`
	SquareSize  int    `yaml:"square_size"`
	MessagesDir string `yaml:"messages_dir"`

	Log LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	Console bool   `yaml:"console"`
	File    string `yaml:"file"`
	Caller  bool   `yaml:"caller"`
}

func defaults() *AppConfig {
	return &AppConfig{
		ListenAddr: ":8080",
		GameTTLSec: 86400,
		SquareSize: 100,
		Log: LogConfig{
			Level:   "info",
			Format:  "legacy",
			Console: true,
			File:    "logs/checkers.log",
		},
	}
}

// Load reads defaults, then the YAML file named by CHECKERS_CONFIG (if any), then environment overrides.
func Load() (*AppConfig, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CHECKERS_CONFIG")); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.SquareSize < 16 {
		return nil, fmt.Errorf("square size %d too small", cfg.SquareSize)
	}
	return cfg, nil
}

func (c *AppConfig) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *AppConfig) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		c.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		c.RedisURL = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		c.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("GAME_TTL_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.GameTTLSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("SQUARE_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.SquareSize = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("MESSAGES_DIR")); v != "" {
		c.MessagesDir = v
	}

	// Logging
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		c.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_FORMAT")); v != "" {
		c.Log.Format = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_FILE")); v != "" {
		c.Log.File = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_TO_FILE")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && !b {
			c.Log.File = ""
		}
	}
	if v := strings.TrimSpace(os.Getenv("LOG_TO_CONSOLE")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Log.Console = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("LOG_CALLER")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Log.Caller = b
		}
	}
}
