// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Port          string
	TelegramToken string
	WebhookSecret string
	QueryRowLimit int
	Yandex        YandexConfig
	DB            DatabaseConfig
}

// YandexConfig identifies the Yandex Foundation Models folder, key and model.
type YandexConfig struct {
	FolderID string
	APIKey   string
	Model    string
}

// DatabaseConfig holds Postgres connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		TelegramToken: getEnv("TELEGRAM_TOKEN", ""),
		WebhookSecret: getEnv("WEBHOOK_SECRET", ""),
		QueryRowLimit: getEnvInt("QUERY_ROW_LIMIT", 1000),
		Yandex: YandexConfig{
			FolderID: getEnv("YC_FOLDER_ID", ""),
			APIKey:   getEnv("YC_API_KEY", ""),
			Model:    getEnv("YC_MODEL", "yandexgpt"),
		},
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnvInt("DB_PORT", 5432),
			Name:     getEnv("DB_NAME", ""),
			User:     getEnv("DB_USER", ""),
			Password: getEnv("DB_PASSWORD", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN cannot be empty")
	}
	if c.WebhookSecret == "" {
		return fmt.Errorf("WEBHOOK_SECRET cannot be empty")
	}
	if c.QueryRowLimit <= 0 {
		return fmt.Errorf("QUERY_ROW_LIMIT must be > 0")
	}
	if c.Yandex.FolderID == "" {
		return fmt.Errorf("YC_FOLDER_ID cannot be empty")
	}
	if c.Yandex.APIKey == "" {
		return fmt.Errorf("YC_API_KEY cannot be empty")
	}
	if c.DB.Host == "" || c.DB.Name == "" || c.DB.User == "" || c.DB.Password == "" {
		return fmt.Errorf("DB_HOST, DB_NAME, DB_USER and DB_PASSWORD must all be set")
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// DSN returns a lib/pq connection string. SSL is always required since the
// database is a managed external instance.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=require",
		d.Host, d.Port, d.Name, d.User, d.Password,
	)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
