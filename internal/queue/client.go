package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/tusharelectronics/storefront/internal/queue/handlers"
	"github.com/tusharelectronics/storefront/internal/usecase"
)

var _ usecase.Dispatcher = (*Client)(nil)

// Client wraps asynq.Client for enqueuing tasks
type Client struct {
	client *asynq.Client
	logger *slog.Logger
}

func NewClient(redisAddr string, redisPassword string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: redisPassword,
		}),
		logger: logger,
	}
}

// NewClientFromEnv connects to the redis instance named by REDIS_HOST and
// REDIS_PORT.
func NewClientFromEnv(logger *slog.Logger) *Client {
	opt := redisOpt()
	return NewClient(opt.Addr, opt.Password, logger)
}

func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueInquiryNotification queues the inquiry emails. Delivery is attempted
// once; a failed send is not retried so the customer never gets duplicates.
func (c *Client) EnqueueInquiryNotification(ctx context.Context, inquiryID uuid.UUID) error {
	task, err := handlers.NewInquiryNotificationTask(inquiryID,
		asynq.Queue(QueueCritical),
		asynq.MaxRetry(0),
		asynq.Timeout(time.Minute),
	)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task)
}

func (c *Client) EnqueueAssetReconcile(ctx context.Context, opt usecase.ReconcileOption) error {
	task, err := handlers.NewAssetReconcileTask(opt,
		asynq.Queue(QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(15*time.Minute),
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task)
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task) error {
	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	c.logger.InfoContext(ctx, "task_enqueued",
		slog.String("type", task.Type()),
		slog.String("id", info.ID),
		slog.String("queue", info.Queue))
	return nil
}
