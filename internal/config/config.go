// internal/config/config.go
//
// Runtime configuration for the Mastermind binary.
//
// Load order (later wins):
//  1. Built-in defaults.
//  2. .env in the working directory (godotenv, missing file is fine).
//  3. Optional YAML file named by MASTERMIND_CONFIG.
//  4. Environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Port           string `yaml:"port"`
	LogLevel       string `yaml:"log_level"`
	DatabasePath   string `yaml:"database_path"`
	JWTSecret      string `yaml:"jwt_secret"`
	JWTExpiresDays int    `yaml:"jwt_expires_days"`
	CookieName     string `yaml:"cookie_name"`
	ClientOrigin   string `yaml:"client_origin"`
	DailySalt      string `yaml:"daily_salt"`
	Environment    string `yaml:"environment"` // "development" or "production"
	NoColor        bool   `yaml:"no_color"`
}

// Default returns the development defaults.
func Default() Config {
	return Config{
		Port:           "5175",
		LogLevel:       "info",
		DatabasePath:   "./data/mastermind.db",
		JWTSecret:      "dev_secret_change_me",
		JWTExpiresDays: 14,
		CookieName:     "mastermind_token",
		ClientOrigin:   "http://localhost:5173",
		DailySalt:      "local_dev_salt",
		Environment:    "development",
	}
}

// Load builds a Config from defaults, .env, the optional YAML file and env.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("MASTERMIND_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.mergeEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Production reports whether secure cookie settings should apply.
func (c Config) Production() bool { return c.Environment == "production" }

func (c *Config) mergeFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv() error {
	setStr(&c.Port, "PORT")
	setStr(&c.LogLevel, "LOG_LEVEL")
	setStr(&c.DatabasePath, "DATABASE_PATH")
	setStr(&c.JWTSecret, "JWT_SECRET")
	setStr(&c.CookieName, "COOKIE_NAME")
	setStr(&c.ClientOrigin, "CLIENT_ORIGIN")
	setStr(&c.DailySalt, "DAILY_SALT")
	setStr(&c.Environment, "APP_ENV")

	if v := os.Getenv("JWT_EXPIRES_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("JWT_EXPIRES_DAYS must be a positive integer, got %q", v)
		}
		c.JWTExpiresDays = n
	}
	// NO_COLOR follows the no-color.org convention: any value disables colour.
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		c.NoColor = true
	}
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	return nil
}

// setStr overwrites *dst with env var k when it is set and non-empty.
func setStr(dst *string, k string) {
	if v := os.Getenv(k); v != "" {
		*dst = v
	}
}
