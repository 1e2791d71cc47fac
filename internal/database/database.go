package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/joho/godotenv/autoload"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tusharelectronics/storefront/internal/config"
	"github.com/tusharelectronics/storefront/internal/usecase"
)

var _ usecase.Repository = (*service)(nil)

// implements usecase.Repository
type service struct {
	db     *gorm.DB
	name   string
	logger *slog.Logger
}

func dsn() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		config.Env(config.ENV_KEY_DB_USER, "postgres"),
		config.Env(config.ENV_KEY_DB_PASSWORD, ""),
		config.Env(config.ENV_KEY_DB_HOST, "localhost"),
		config.Env(config.ENV_KEY_DB_PORT, "5432"),
		config.Env(config.ENV_KEY_DB_DATABASE, "storefront"),
		config.Env(config.ENV_KEY_DB_SSLMODE, "disable"),
	)
}

// New connects to Postgres through the pgx driver and migrates the schema.
func New(l *slog.Logger) (*service, error) {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		DriverName: "pgx",
		DSN:        dsn(),
	}), &gorm.Config{
		Logger:         NewSlogGormLogger(l),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := gormDB.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}

	db, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	if m := config.EnvInt(config.ENV_KEY_DB_MAX_OPEN_CONNECTIONS, 0); m > 0 {
		db.SetMaxOpenConns(m)
	}

	if err := migrate(gormDB); err != nil {
		return nil, err
	}

	return &service{
		db:     gormDB,
		name:   config.Env(config.ENV_KEY_DB_DATABASE, "storefront"),
		logger: l,
	}, nil
}

func migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		Category{},
		Product{},
		Article{},
		Banner{},
		Testimonial{},
		Inquiry{},
		Subscriber{},
	)
	if err != nil {
		return err
	}

	for _, stmt := range []string{
		`CREATE INDEX IF NOT EXISTS idx_products_search
		ON products USING GIN (to_tsvector('simple', name || ' ' || coalesce(description, '') || ' ' || coalesce(sku, '')))`,
		`CREATE INDEX IF NOT EXISTS idx_articles_search
		ON articles USING GIN (to_tsvector('simple', title || ' ' || coalesce(content, '')))`,
	} {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// Health checks the health of the database connection by pinging the database.
// It returns a map with keys indicating various health statistics.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	db, err := s.db.DB()
	if err == nil {
		err = db.PingContext(ctx)
	}
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		s.logger.ErrorContext(ctx, "db_down", slog.String("err", err.Error()))
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()
	stats["max_idle_closed"] = strconv.FormatInt(dbStats.MaxIdleClosed, 10)
	stats["max_lifetime_closed"] = strconv.FormatInt(dbStats.MaxLifetimeClosed, 10)

	if dbStats.OpenConnections > 40 {
		stats["message"] = "The database is experiencing heavy load."
	}
	if dbStats.WaitCount > 1000 {
		stats["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	}

	return stats
}

// Close closes the database connection.
func (s *service) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	s.logger.Info("db_disconnected", slog.String("database", s.name))
	return db.Close()
}

// translate maps gorm errors onto the usecase error types.
func translate(err error, id uuid.UUID, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return usecase.ErrNotFound{
			ID:      id,
			Code:    strings.ToUpper(what) + "_NOT_FOUND",
			Message: what + " not found",
		}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return usecase.ErrConflict{
			Code:    "SLUG_TAKEN",
			Message: "another " + what + " already uses this name",
		}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return usecase.ErrConflict{
			Code:    "REFERENCED",
			Message: what + " is still referenced by other records",
		}
	default:
		return err
	}
}
