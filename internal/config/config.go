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

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	StoreDriver    string
	DatabaseURL    string
	DBMaxConns     int
	SQLitePath     string
	MigrationsPath string
	HTTPPort       string
	LogLevel       string

	// Redis Config
	RedisAddr string
	RedisPass string
	RedisDB   int

	// Alarm webhook Config
	AlarmWebhookURL     string
	AlarmWebhookSecret  string
	AlarmWebhookTimeout time.Duration
	AlarmMaxRetries     int

	// Auth
	JWTSecret   string
	APIKeys     []string
	CORSOrigins []string

	// Synchronizer
	MarkerWindow     time.Duration
	RedeliveryWindow time.Duration

	// путь к файлу конфигурации сервиса оценки маршрутов, пусто - оценка отключена
	SafetyConfigPath string
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		StoreDriver:         strings.ToLower(getEnv("STORE_DRIVER", DriverPostgres)),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		DBMaxConns:          getEnvAsInt("DB_MAX_CONNS", 10),
		SQLitePath:          getEnv("SQLITE_PATH", "guardian.db"),
		MigrationsPath:      getEnv("MIGRATIONS_PATH", "file://migrations"),
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:           os.Getenv("REDIS_PASSWORD"),
		RedisDB:             getEnvAsInt("REDIS_DB", 0),
		AlarmWebhookURL:     os.Getenv("ALARM_WEBHOOK_URL"),
		AlarmWebhookSecret:  os.Getenv("ALARM_WEBHOOK_SECRET"),
		AlarmWebhookTimeout: getEnvAsDuration("ALARM_WEBHOOK_TIMEOUT", 5*time.Second),
		AlarmMaxRetries:     getEnvAsInt("ALARM_WEBHOOK_MAX_RETRIES", 3),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		APIKeys:             getEnvAsList("API_KEYS"),
		CORSOrigins:         getEnvAsList("CORS_ORIGINS"),
		MarkerWindow:        getEnvAsDuration("MARKER_WINDOW", 5*time.Second),
		RedeliveryWindow:    getEnvAsDuration("REDELIVERY_WINDOW", 10*time.Minute),
		SafetyConfigPath:    os.Getenv("SAFETY_CONFIG"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL environment variable is required for postgres driver"))
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH environment variable is required for sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET environment variable is required"))
	}
	if c.MarkerWindow < 0 || c.RedeliveryWindow < 0 {
		errs = append(errs, errors.New("MARKER_WINDOW and REDELIVERY_WINDOW must not be negative"))
	}
	return errors.Join(errs...)
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}

// getEnvAsList разбирает список через запятую, пустые элементы отбрасываются
func getEnvAsList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
