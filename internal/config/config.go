package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string
	APIBaseURL    string
	APITimeout    time.Duration
	DBDSN         string
	Environment   string
	LogLevel      string // debug, info, warn, error; пусто = по окружению

	RedisAddr     string // пусто = состояние диалогов в памяти
	RedisPassword string
	RedisDB       int

	MetricsAddr   string // пусто = метрики не публикуются
	MigrationsDir string // пусто = встроенные миграции
	Location      *time.Location
	DigestHour    int
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		APIBaseURL:    os.Getenv("API_BASE_URL"),
		DBDSN:         os.Getenv("DB_DSN"),
		Environment:   getenv("ENV", "development"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		MetricsAddr:   getenv("METRICS_ADDR", ":9090"),
		MigrationsDir: os.Getenv("MIGRATIONS_DIR"),
	}

	// METRICS_ADDR= (пустая строка) отключает метрики
	if v, ok := os.LookupEnv("METRICS_ADDR"); ok {
		cfg.MetricsAddr = v
	}

	var err error
	if cfg.RedisDB, err = getenvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.DigestHour, err = getenvInt("DIGEST_HOUR", 7); err != nil {
		return nil, err
	}
	if cfg.DigestHour < 0 || cfg.DigestHour > 23 {
		return nil, fmt.Errorf("DIGEST_HOUR must be in 0..23, got %d", cfg.DigestHour)
	}

	timeout, err := time.ParseDuration(getenv("API_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("parse API_TIMEOUT: %w", err)
	}
	cfg.APITimeout = timeout

	cfg.Location = time.Local
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("load TIMEZONE %q: %w", tz, err)
		}
		cfg.Location = loc
	}

	// Проверяем обязательные поля
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required but not set")
	}
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is required but not set")
	}
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	return cfg, nil
}

// IsProduction проверяет, запущен ли бот в проде
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}
