package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sony/gobreaker/v2"

	httpadapter "github.com/kirillkom/emotion-tutor/internal/adapters/http"
	"github.com/kirillkom/emotion-tutor/internal/config"
	"github.com/kirillkom/emotion-tutor/internal/core/ports"
	"github.com/kirillkom/emotion-tutor/internal/core/usecase"
	"github.com/kirillkom/emotion-tutor/internal/infrastructure/audit"
	corpusmemory "github.com/kirillkom/emotion-tutor/internal/infrastructure/corpus/memory"
	"github.com/kirillkom/emotion-tutor/internal/infrastructure/extractor/pdftext"
	"github.com/kirillkom/emotion-tutor/internal/infrastructure/imaging"
	"github.com/kirillkom/emotion-tutor/internal/infrastructure/llm/groq"
	"github.com/kirillkom/emotion-tutor/internal/infrastructure/queue/nats"
	"github.com/kirillkom/emotion-tutor/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/emotion-tutor/internal/infrastructure/resilience"
	"github.com/kirillkom/emotion-tutor/internal/infrastructure/storage/tempfs"
	"github.com/kirillkom/emotion-tutor/internal/infrastructure/vision/ollama"
	"github.com/kirillkom/emotion-tutor/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Metrics *metrics.HTTPServerMetrics

	IngestUC   ports.DocumentIngestor
	DetectorUC ports.EmotionDetector
	TutorUC    ports.TutorService

	Audit *audit.Dispatcher

	handler http.Handler
	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	httpMetrics := metrics.NewHTTPServerMetrics("tutor-api")
	observeBreaker := func(operation string, _, to gobreaker.State) {
		httpMetrics.SetBreakerOpen(operation, to != gobreaker.StateClosed)
	}

	storage, err := tempfs.New(cfg.TempDir, cfg.UploadMaxBytes)
	if err != nil {
		return nil, fmt.Errorf("init upload storage: %w", err)
	}

	dispatcher, closeAudit, err := newAuditDispatcher(ctx, cfg, httpMetrics, observeBreaker)
	if err != nil {
		return nil, err
	}

	llmExecutor := resilience.NewExecutor(resilience.ChatPolicy(cfg.LLMBreakerEnabled))
	llmExecutor.Observe(observeBreaker)
	completer := groq.New(groq.Options{
		BaseURL:  cfg.GroqBaseURL,
		APIKey:   cfg.GroqAPIKey,
		Model:    cfg.GroqModel,
		Timeout:  cfg.GroqTimeout,
		Executor: llmExecutor,
	})

	visionExecutor := resilience.NewExecutor(resilience.VisionPolicy())
	visionExecutor.Observe(observeBreaker)
	visionClient := ollama.New(cfg.VisionURL, cfg.VisionModel, 0, visionExecutor)

	corpus := corpusmemory.NewStore()
	httpMetrics.TrackCorpus(corpus)

	ingestUC := usecase.NewIngestPDFUseCase(storage, pdftext.NewExtractor(), corpus, dispatcher)
	detectorUC := usecase.NewDetectEmotionUseCase(
		imaging.NewDecoder(cfg.VisionMaxImageSide),
		ollama.NewFaceClassifier(visionClient),
	)
	tutorUC := usecase.NewTutorUseCase(corpus, httpMetrics.InstrumentCompleter(completer), dispatcher)

	openAPIDoc, err := httpadapter.LoadOpenAPI(ctx)
	if err != nil {
		closeAudit()
		return nil, err
	}
	handler := httpadapter.NewRouter(cfg, ingestUC, detectorUC, tutorUC).
		WithMetrics(httpMetrics).
		WithOpenAPI(openAPIDoc).
		Handler()

	slog.Info("bootstrap_ready",
		"llm_model", completer.Model(),
		"llm_breaker", cfg.LLMBreakerEnabled,
		"vision_model", cfg.VisionModel,
		"audit_sink", dispatcher.Name(),
	)

	return &App{
		Config:     cfg,
		Metrics:    httpMetrics,
		IngestUC:   ingestUC,
		DetectorUC: detectorUC,
		TutorUC:    tutorUC,
		Audit:      dispatcher,
		handler:    handler,
		closeFn:    closeAudit,
	}, nil
}

// newAuditDispatcher picks the audit sink: NATS when a URL is configured,
// Postgres when a DSN is available, otherwise auditing is off.
func newAuditDispatcher(
	ctx context.Context,
	cfg config.Config,
	httpMetrics *metrics.HTTPServerMetrics,
	observeBreaker resilience.StateObserver,
) (*audit.Dispatcher, func(), error) {
	if cfg.AuditNATSURL != "" {
		executor := resilience.NewExecutor(resilience.PublishPolicy())
		executor.Observe(observeBreaker)
		queue, err := nats.NewWithOptions(cfg.AuditNATSURL, cfg.AuditNATSSubjectPrefix, nats.Options{
			ResilienceExecutor: executor,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("init audit queue: %w", err)
		}
		return audit.NewDispatcher("nats", queue, cfg.AuditTimeout, httpMetrics.RecordAuditWrite), queue.Close, nil
	}

	dsn, err := cfg.AuditDSN()
	if errors.Is(err, config.ErrCredentialsNotDSN) {
		slog.Warn("audit_disabled", "credentials_path", cfg.AuditCredPath, "reason", "credentials file is not a postgres dsn")
		return audit.Disabled(), func() {}, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if dsn == "" {
		slog.Info("audit_disabled", "credentials_path", cfg.AuditCredPath)
		return audit.Disabled(), func() {}, nil
	}

	db, err := postgres.OpenDB(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open audit postgres: %w", err)
	}
	repo := postgres.NewAuditRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		closeDB(db)
		return nil, nil, fmt.Errorf("ensure audit schema: %w", err)
	}
	return audit.NewDispatcher("postgres", repo, cfg.AuditTimeout, httpMetrics.RecordAuditWrite), func() { closeDB(db) }, nil
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		slog.Warn("audit_db_close_failed", "error", err)
	}
}

func (a *App) Handler() http.Handler {
	return a.handler
}

// Close waits for pending audit writes, bounded by ctx, then releases sinks.
func (a *App) Close(ctx context.Context) {
	if a.Audit != nil {
		if err := a.Audit.Close(ctx); err != nil {
			slog.Warn("audit_drain_incomplete", "error", err)
		}
	}
	if a.closeFn != nil {
		a.closeFn()
	}
}
