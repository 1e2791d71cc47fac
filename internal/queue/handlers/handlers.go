package handlers

import (
	"log/slog"

	"github.com/tusharelectronics/storefront/internal/usecase"
)

// Handlers are thin asynq adapters; the work itself lives in the usecase.
type Handlers struct {
	usecase usecase.Usecase
	logger  *slog.Logger
}

func NewHandlers(uc usecase.Usecase, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		usecase: uc,
		logger:  logger,
	}
}
