package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/tusharelectronics/storefront/internal/config"
	"github.com/tusharelectronics/storefront/internal/database"
	"github.com/tusharelectronics/storefront/internal/email"
	"github.com/tusharelectronics/storefront/internal/filestorage"
	"github.com/tusharelectronics/storefront/internal/usecase"
)

// deps are the resources a worker process owns.
type deps struct {
	uc     usecase.Usecase
	closer func()
}

// newDeps wires the usecase without a dispatcher; the worker runs tasks, it
// does not enqueue them.
func newDeps(ctx context.Context, logger *slog.Logger) (deps, error) {
	repo, err := database.New(logger)
	if err != nil {
		return deps{}, fmt.Errorf("failed to create repository: %w", err)
	}

	store, err := filestorage.NewFromEnv(ctx)
	if err != nil {
		repo.Close()
		return deps{}, fmt.Errorf("failed to create file storage: %w", err)
	}

	var (
		mailer usecase.Mailer
		ep     *email.EmailProvider
	)
	ep, err = email.NewEmailProvider(
		os.Getenv(config.ENV_KEY_SMTP_HOST),
		os.Getenv(config.ENV_KEY_SMTP_USERNAME),
		os.Getenv(config.ENV_KEY_SMTP_PASSWORD),
		os.Getenv(config.ENV_KEY_SMTP_PORT),
		logger,
	)
	if err != nil {
		logger.Warn("email disabled", slog.String("err", err.Error()))
	} else {
		mailer = ep
	}

	uc := usecase.New(repo, store, mailer, nil, usecase.SettingsFromEnv(), logger)

	return deps{
		uc: uc,
		closer: func() {
			var errs []error
			if ep != nil {
				errs = append(errs, ep.Close())
			}
			errs = append(errs, uc.Close())
			if err := errors.Join(errs...); err != nil {
				logger.Error("err_deps_close", slog.String("err", err.Error()))
			}
		},
	}, nil
}

// RunReconcile performs one asset sweep in-process, without redis.
func RunReconcile(ctx context.Context, logger *slog.Logger, opt usecase.ReconcileOption) (usecase.ReconcileReport, error) {
	d, err := newDeps(ctx, logger)
	if err != nil {
		return usecase.ReconcileReport{}, err
	}
	defer d.closer()

	return d.uc.ReconcileAssets(ctx, opt)
}
