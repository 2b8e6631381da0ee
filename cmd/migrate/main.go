package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/laundryos/internal/storage/postgres"
)

const (
	defaultTimeout = 30 * time.Second

	directionUp     = "up"
	directionDown   = "down"
	directionStatus = "status"
)

type config struct {
	direction string
	steps     int
	dsn       string
}

func main() {
	cfg, err := readConfig()
	if err != nil {
		fail("%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	store, err := postgres.Open(ctx, cfg.dsn)
	if err != nil {
		fail("open postgres store: %v", err)
	}
	defer store.Close()

	if err := run(ctx, cfg, store); err != nil {
		fail("%v", err)
	}
}

func readConfig() (config, error) {
	var cfg config

	flag.StringVar(&cfg.direction, "direction", directionUp, "migration direction: up|down|status")
	flag.IntVar(&cfg.steps, "steps", 0, "number of migrations to apply/rollback (0=all for up, 1 for down)")
	flag.StringVar(&cfg.dsn, "dsn", "", "PostgreSQL DSN (fallback: LAUNDRY_POSTGRES_DSN)")
	flag.Parse()

	if strings.TrimSpace(cfg.dsn) == "" {
		cfg.dsn = strings.TrimSpace(os.Getenv("LAUNDRY_POSTGRES_DSN"))
	}
	if cfg.dsn == "" {
		return config{}, fmt.Errorf("LAUNDRY_POSTGRES_DSN (or -dsn) is required")
	}

	cfg.direction = strings.ToLower(strings.TrimSpace(cfg.direction))
	switch cfg.direction {
	case directionUp, directionStatus:
	case directionDown:
		if cfg.steps <= 0 {
			cfg.steps = 1
		}
	default:
		return config{}, fmt.Errorf("unsupported direction: %s (use up|down|status)", cfg.direction)
	}
	if cfg.steps < 0 {
		return config{}, fmt.Errorf("steps must be >= 0")
	}

	return cfg, nil
}

type migrator interface {
	MigrateUp(ctx context.Context, steps int) error
	MigrateDown(ctx context.Context, steps int) error
	MigrationStatus(ctx context.Context) (int64, int, error)
}

func run(ctx context.Context, cfg config, store migrator) error {
	switch cfg.direction {
	case directionUp:
		if err := store.MigrateUp(ctx, cfg.steps); err != nil {
			return fmt.Errorf("migrate up failed: %w", err)
		}
	case directionDown:
		if err := store.MigrateDown(ctx, cfg.steps); err != nil {
			return fmt.Errorf("migrate down failed: %w", err)
		}
	}

	version, count, err := store.MigrationStatus(ctx)
	if err != nil {
		return fmt.Errorf("migration status failed: %w", err)
	}
	fmt.Printf("migrate %s ok: version=%d applied=%d\n", cfg.direction, version, count)

	return nil
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
