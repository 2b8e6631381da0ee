package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/laundryos/internal/health"
	"github.com/vladislavdragonenkov/laundryos/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/laundryos/internal/service/idempotency"
	"github.com/vladislavdragonenkov/laundryos/internal/service/orders"
	"github.com/vladislavdragonenkov/laundryos/internal/service/outbox"
	"github.com/vladislavdragonenkov/laundryos/internal/transport/httpapi"
	"github.com/vladislavdragonenkov/laundryos/internal/version"
)

// Run собирает зависимости и держит процесс до отмены ctx.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := deps.Close(); closeErr != nil {
			logger.WithError(closeErr).Warn("failed to close storage")
		}
	}()

	// Kafka опционален: без брокеров события копятся в outbox.
	kafkaProducer := connectEventBus(cfg.KafkaBrokers, logger)

	ordersService := orders.NewService(
		deps.Orders,
		deps.Payments,
		deps.Customers,
		deps.Outbox,
		deps.Timeline,
		logger.WithField("layer", "service"),
	)

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Orders:      httpapi.NewOrderHandler(ordersService, logger.WithField("layer", "http")),
		Catalog:     httpapi.NewCatalogHandler(deps.Customers, deps.Services, ordersService, logger.WithField("layer", "http")),
		Idempotency: deps.Idempotency,
		Logger:      logger.WithField("layer", "http"),
	})

	if kafkaProducer != nil {
		publisher := kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicOrderEvents, kafka.TopicPaymentEvents)
		deadLetters := kafka.NewDeadLetterPublisher(kafkaProducer, kafka.TopicDeadLetterQueue)
		worker := outbox.NewWorker(
			deps.Outbox,
			publisher,
			outbox.WithLogger(logger.WithField("component", "outbox-worker")),
			outbox.WithDeadLetterSink(deadLetters),
			outbox.WithPollInterval(cfg.OutboxPollInterval),
			outbox.WithBatchSize(cfg.OutboxBatchSize),
			outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
			outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
		)
		go worker.Run(ctx)
	} else {
		logger.Info("kafka не настроен, outbox worker не запущен")
	}

	cleanupWorker := idempotency.NewCleanupWorker(
		deps.Idempotency,
		idempotency.WithLogger(logger.WithField("component", "idempotency-cleanup-worker")),
		idempotency.WithInterval(cfg.IdempotencyCleanupInterval),
		idempotency.WithBatchSize(cfg.IdempotencyCleanupBatchSize),
	)
	go cleanupWorker.Run(ctx)

	monitor := health.NewMonitor(version.GetVersion())
	if store := deps.Store(); store != nil {
		monitor.Register(health.NewPingProbe("postgres", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return store.Ping(pingCtx)
		}))
	}
	monitor.Register(health.NewOutboxBacklogProbe(deps.Outbox, 0))

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, monitor)

	apiSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		disconnectEventBus(kafkaProducer, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		disconnectEventBus(kafkaProducer, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, monitor *health.Monitor) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", monitor)
	mux.HandleFunc("/livez", health.Liveness)
	mux.HandleFunc("/readyz", monitor.Readiness)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
