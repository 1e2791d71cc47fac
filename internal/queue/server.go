package queue

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
	_ "github.com/joho/godotenv/autoload"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tusharelectronics/storefront/internal/config"
	"github.com/tusharelectronics/storefront/internal/queue/handlers"
)

// Worker represents a worker application with all its dependencies
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	deps   deps
	logger *slog.Logger
}

// NewWorker creates a fully configured worker with all dependencies
func NewWorker(logger *slog.Logger) (*Worker, error) {
	logger.Info("initializing worker dependencies")

	d, err := newDeps(context.Background(), logger)
	if err != nil {
		return nil, err
	}

	concurrency := config.EnvInt(config.ENV_KEY_WORKER_CONCURRENCY, 10)
	if concurrency <= 0 {
		concurrency = 10
	}

	server := asynq.NewServer(
		redisOpt(),
		asynq.Config{
			Concurrency: concurrency,
			Queues:      queuePriorities,
			Logger:      asynqLogger{l: logger},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logger.ErrorContext(ctx, "err_task_failed",
					slog.String("type", task.Type()),
					slog.Int("retried", retried),
					slog.Int("max_retry", maxRetry),
					slog.String("err", err.Error()))
			}),
		},
	)

	h := handlers.NewHandlers(d.uc, logger)

	mux := asynq.NewServeMux()
	mux.Use(traceTask)
	mux.HandleFunc(handlers.TypeInquiryNotification, h.HandleInquiryNotification)
	mux.HandleFunc(handlers.TypeAssetReconcile, h.HandleAssetReconcile)

	logger.Info("worker registered handlers",
		slog.Any("types", []string{handlers.TypeInquiryNotification, handlers.TypeAssetReconcile}))

	return &Worker{
		server: server,
		mux:    mux,
		deps:   d,
		logger: logger,
	}, nil
}

// Start starts the worker server
func (w *Worker) Start() error {
	w.logger.Info("worker started", slog.Int("concurrency", config.EnvInt(config.ENV_KEY_WORKER_CONCURRENCY, 10)))
	return w.server.Start(w.mux)
}

// Stop waits for in-flight tasks and releases the database and mailer.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker")
	w.server.Shutdown()
	w.deps.closer()
}

func traceTask(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
		ctx, span := otel.Tracer("storefront/queue").Start(ctx, task.Type(),
			trace.WithSpanKind(trace.SpanKindConsumer))
		defer span.End()

		if id, ok := asynq.GetTaskID(ctx); ok {
			span.SetAttributes(attribute.String("messaging.message.id", id))
		}

		err := next.ProcessTask(ctx, task)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	})
}
