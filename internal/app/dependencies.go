package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
	"github.com/vladislavdragonenkov/laundryos/internal/storage/memory"
	"github.com/vladislavdragonenkov/laundryos/internal/storage/postgres"
)

// Dependencies содержит все хранилища приложения.
type Dependencies struct {
	Orders      domain.OrderRepository
	Payments    domain.PaymentRepository
	Customers   domain.CustomerRepository
	Services    domain.ServiceRepository
	Outbox      domain.OutboxRepository
	Timeline    domain.TimelineRepository
	Idempotency domain.IdempotencyRepository
	Logger      *log.Entry

	store *postgres.Store
}

// NewDependencies создаёт хранилища согласно выбранному драйверу.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		return newPostgresDependencies(ctx, cfg, logger)
	case StorageDriverMemory, "":
		return newMemoryDependencies(logger), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.StorageDriver)
	}
}

func newMemoryDependencies(logger *log.Entry) *Dependencies {
	logger.Info("используем in-memory хранилище")
	return &Dependencies{
		Orders:      memory.NewOrderRepository(),
		Payments:    memory.NewPaymentRepository(),
		Customers:   memory.NewCustomerRepository(),
		Services:    memory.NewServiceRepository(),
		Outbox:      memory.NewOutboxRepository(),
		Timeline:    memory.NewTimelineRepository(),
		Idempotency: memory.NewIdempotencyRepository(),
		Logger:      logger,
	}
}

func newPostgresDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if cfg.PostgresAutoMigrate {
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("миграции PostgreSQL применены")
	}

	logger.Info("используем PostgreSQL хранилище")
	return &Dependencies{
		Orders:      postgres.NewOrderRepository(store),
		Payments:    postgres.NewPaymentRepository(store),
		Customers:   postgres.NewCustomerRepository(store),
		Services:    postgres.NewServiceRepository(store),
		Outbox:      postgres.NewOutboxRepository(store),
		Timeline:    postgres.NewTimelineRepository(store),
		Idempotency: postgres.NewIdempotencyRepository(store),
		Logger:      logger,
		store:       store,
	}, nil
}

// Store возвращает нижележащий postgres store или nil для in-memory.
func (d *Dependencies) Store() *postgres.Store {
	return d.store
}

// Close освобождает ресурсы хранилища.
func (d *Dependencies) Close() error {
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}
