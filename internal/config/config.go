// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Telegram TelegramConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	Dialogs  DialogsConfig
	Locale   LocaleConfig
	HTTP     HTTPConfig
	NATS     NATSConfig
	Log      LogConfig
}

type TelegramConfig struct {
	Token string
	// WebhookURL switches from long polling to webhook delivery.
	WebhookURL string
	// WebhookSecret must match the secret token header of webhook calls.
	WebhookSecret string
	Workers       int
}

type DatabaseConfig struct {
	Driver string // postgres or sqlite
	DSN    string
}

// RedisConfig is optional; an empty Addr keeps sessions in memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SessionConfig struct {
	TTL time.Duration
	// Key is a base64 AES-256 key; when set, session values are encrypted.
	Key string
	// OldKeys still decrypt values written before a key rotation.
	OldKeys []string
}

type DialogsConfig struct {
	Dir string
}

type LocaleConfig struct {
	File string // empty uses the embedded catalog
	Lang string
}

type HTTPConfig struct {
	Addr string
}

// NATSConfig is optional; an empty URL disables event publishing.
type NATSConfig struct {
	URL string
}

type LogConfig struct {
	Level string
	File  string
}

// Load reads envFile (when present) and then the process environment.
// A missing env file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	redisDB, err := getEnvAsInt("ARBOR_REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	workers, err := getEnvAsInt("ARBOR_WORKERS", 4)
	if err != nil {
		return nil, err
	}
	ttl, err := getEnvAsDuration("ARBOR_SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	return &Config{
		Telegram: TelegramConfig{
			Token:         getEnv("ARBOR_TELEGRAM_TOKEN", ""),
			WebhookURL:    getEnv("ARBOR_WEBHOOK_URL", ""),
			WebhookSecret: getEnv("ARBOR_WEBHOOK_SECRET", ""),
			Workers:       workers,
		},
		Database: DatabaseConfig{
			Driver: getEnv("ARBOR_DB_DRIVER", "sqlite"),
			DSN:    getEnv("ARBOR_DB_DSN", "arbor.db"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("ARBOR_REDIS_ADDR", ""),
			Password: getEnv("ARBOR_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Session: SessionConfig{
			TTL:     ttl,
			Key:     getEnv("ARBOR_SESSION_KEY", ""),
			OldKeys: getEnvAsList("ARBOR_SESSION_OLD_KEYS"),
		},
		Dialogs: DialogsConfig{Dir: getEnv("ARBOR_DIALOGS_DIR", "dialogs")},
		Locale: LocaleConfig{
			File: getEnv("ARBOR_LOCALE_FILE", ""),
			Lang: getEnv("ARBOR_LANG", "en"),
		},
		HTTP: HTTPConfig{Addr: getEnv("ARBOR_HTTP_ADDR", ":8080")},
		NATS: NATSConfig{URL: getEnv("ARBOR_NATS_URL", "")},
		Log: LogConfig{
			Level: getEnv("ARBOR_LOG_LEVEL", "info"),
			File:  getEnv("ARBOR_LOG_FILE", ""),
		},
	}, nil
}

// Validate checks the settings the bot cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Telegram.Token == "" {
		errs = append(errs, errors.New("ARBOR_TELEGRAM_TOKEN is required"))
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("ARBOR_DB_DRIVER must be postgres or sqlite, got %q", c.Database.Driver))
	}
	if c.Telegram.Workers < 1 {
		errs = append(errs, errors.New("ARBOR_WORKERS must be at least 1"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsList(key string) []string {
	var out []string
	for _, v := range strings.Split(getEnv(key, ""), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvAsInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
