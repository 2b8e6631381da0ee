package app

import (
	"os"
	"strconv"
	"time"
)

// StorageDriver выбирает реализацию хранилища.
type StorageDriver string

const (
	// StorageDriverMemory — in-memory хранилище для разработки и тестов.
	StorageDriverMemory StorageDriver = "memory"
	// StorageDriverPostgres — PostgreSQL через database/sql + pgx.
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr    string
	MetricsAddr string

	StorageDriver       StorageDriver
	PostgresDSN         string
	PostgresAutoMigrate bool

	KafkaBrokers string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration

	IdempotencyCleanupInterval  time.Duration
	IdempotencyCleanupBatchSize int
}

// DefaultConfig возвращает рабочие значения по умолчанию.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:                    ":8080",
		MetricsAddr:                 ":9090",
		StorageDriver:               StorageDriverMemory,
		PostgresAutoMigrate:         true,
		OutboxPollInterval:          time.Second,
		OutboxBatchSize:             100,
		OutboxMaxAttempts:           3,
		OutboxRetryDelay:            50 * time.Millisecond,
		IdempotencyCleanupInterval:  10 * time.Minute,
		IdempotencyCleanupBatchSize: 500,
	}
}

// ConfigFromEnv собирает конфигурацию из переменных окружения поверх
// значений по умолчанию. Наличие DATABASE_URL переключает хранилище
// на PostgreSQL.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("LAUNDRY_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("LAUNDRY_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.StorageDriver = StorageDriverPostgres
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("LAUNDRY_POSTGRES_AUTO_MIGRATE"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			cfg.PostgresAutoMigrate = parsed
		}
	}
	cfg.KafkaBrokers = os.Getenv("KAFKA_BROKERS")

	if v := envDuration("LAUNDRY_OUTBOX_POLL_INTERVAL"); v > 0 {
		cfg.OutboxPollInterval = v
	}
	if v := envInt("LAUNDRY_OUTBOX_BATCH_SIZE"); v > 0 {
		cfg.OutboxBatchSize = v
	}
	if v := envInt("LAUNDRY_OUTBOX_MAX_ATTEMPTS"); v > 0 {
		cfg.OutboxMaxAttempts = v
	}
	if v := envDuration("LAUNDRY_OUTBOX_RETRY_DELAY"); v > 0 {
		cfg.OutboxRetryDelay = v
	}
	if v := envDuration("LAUNDRY_IDEMPOTENCY_CLEANUP_INTERVAL"); v > 0 {
		cfg.IdempotencyCleanupInterval = v
	}
	if v := envInt("LAUNDRY_IDEMPOTENCY_CLEANUP_BATCH_SIZE"); v > 0 {
		cfg.IdempotencyCleanupBatchSize = v
	}

	return cfg
}

func envDuration(name string) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func envInt(name string) int {
	v := os.Getenv(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
