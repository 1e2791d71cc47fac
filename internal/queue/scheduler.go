package queue

import (
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/tusharelectronics/storefront/internal/config"
	"github.com/tusharelectronics/storefront/internal/queue/handlers"
	"github.com/tusharelectronics/storefront/internal/usecase"
)

// Scheduler enqueues the periodic asset sweep.
type Scheduler struct {
	scheduler *asynq.Scheduler
	logger    *slog.Logger
}

func NewScheduler(logger *slog.Logger) (*Scheduler, error) {
	scheduler := asynq.NewScheduler(redisOpt(), &asynq.SchedulerOpts{
		Location: time.UTC,
		Logger:   asynqLogger{l: logger},
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				logger.Error("err_scheduler_enqueue", slog.String("err", err.Error()))
				return
			}
			logger.Info("scheduled_task_enqueued",
				slog.String("type", info.Type),
				slog.String("id", info.ID))
		},
	})

	task, err := handlers.NewAssetReconcileTask(usecase.ReconcileOption{
		GracePeriod: config.EnvDuration(config.ENV_KEY_RECONCILE_GRACE_PERIOD, config.DEFAULT_RECONCILE_GRACE_PERIOD),
	})
	if err != nil {
		return nil, err
	}

	cronspec := config.Env(config.ENV_KEY_RECONCILE_CRON, config.DEFAULT_RECONCILE_CRON)
	entryID, err := scheduler.Register(cronspec, task,
		asynq.Queue(QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(15*time.Minute),
		asynq.Unique(time.Hour),
	)
	if err != nil {
		return nil, err
	}
	logger.Info("scheduler registered task",
		slog.String("type", handlers.TypeAssetReconcile),
		slog.String("cron", cronspec),
		slog.String("entry_id", entryID))

	return &Scheduler{scheduler: scheduler, logger: logger}, nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.scheduler.Shutdown()
}
