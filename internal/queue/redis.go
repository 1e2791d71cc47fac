package queue

import (
	"net"
	"os"

	"github.com/hibiken/asynq"

	"github.com/tusharelectronics/storefront/internal/config"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

var queuePriorities = map[string]int{
	QueueCritical: 6,
	QueueDefault:  3,
	QueueLow:      1,
}

func redisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr: net.JoinHostPort(
			config.Env(config.ENV_KEY_REDIS_HOST, "localhost"),
			config.Env(config.ENV_KEY_REDIS_PORT, "6379"),
		),
		Password: os.Getenv(config.ENV_KEY_REDIS_PASSWORD),
	}
}
