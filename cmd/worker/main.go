package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kirillkom/emotion-tutor/internal/config"
	"github.com/kirillkom/emotion-tutor/internal/core/domain"
	"github.com/kirillkom/emotion-tutor/internal/infrastructure/queue/nats"
	"github.com/kirillkom/emotion-tutor/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/emotion-tutor/internal/infrastructure/resilience"
	"github.com/kirillkom/emotion-tutor/internal/observability/logging"
	"github.com/kirillkom/emotion-tutor/internal/observability/metrics"
)

// The audit worker moves records published by the API from NATS into Postgres.
func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()

	logger := logging.NewJSONLogger("tutor-audit-worker", cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("worker_failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AuditNATSURL == "" {
		return errors.New("AUDIT_NATS_URL is required for the audit worker")
	}
	dsn, err := cfg.AuditDSN()
	if err != nil {
		return err
	}
	if dsn == "" {
		return errors.New("no audit postgres dsn: set AUDIT_POSTGRES_DSN or provide " + cfg.AuditCredPath)
	}

	db, err := postgres.OpenDB(dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := postgres.NewAuditRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	queue, err := nats.NewWithOptions(cfg.AuditNATSURL, cfg.AuditNATSSubjectPrefix, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.PublishPolicy()),
	})
	if err != nil {
		return err
	}
	defer queue.Close()

	workerMetrics := metrics.NewWorkerMetrics("tutor-audit-worker")
	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("worker_metrics_listening", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker_subscribed",
		"documents_subject", nats.Subject(cfg.AuditNATSSubjectPrefix, domain.AuditKindDocument),
		"questions_subject", nats.Subject(cfg.AuditNATSSubjectPrefix, domain.AuditKindQuestion),
	)
	return queue.SubscribeAudit(ctx, func(handlerCtx context.Context, record domain.AuditRecord) error {
		writeCtx, cancel := context.WithTimeout(handlerCtx, cfg.AuditTimeout)
		defer cancel()

		workerMetrics.StartRecord(record)
		start := time.Now()
		err := repo.Write(writeCtx, record)
		workerMetrics.FinishRecord(record.Kind, time.Since(start), err)
		return err
	})
}
