package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tusharelectronics/storefront/internal/config"
)

const slowQueryThreshold = 200 * time.Millisecond

// SlogGormLogger sends gorm's query log through slog so SQL lines carry the
// request trace ids.
type SlogGormLogger struct {
	Logger        *slog.Logger
	LogLevel      logger.LogLevel
	SlowThreshold time.Duration
}

func NewSlogGormLogger(l *slog.Logger) *SlogGormLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogGormLogger{
		Logger:        l,
		LogLevel:      gormLevel(config.Env(config.ENV_KEY_LOG_LEVEL, "INFO")),
		SlowThreshold: slowQueryThreshold,
	}
}

// gormLevel maps LOG_LEVEL onto gorm's levels. DEBUG logs every statement,
// INFO and WARN only slow ones, ERROR only failures.
func gormLevel(lvl string) logger.LogLevel {
	switch strings.ToUpper(lvl) {
	case "DEBUG":
		return logger.Info
	case "ERROR":
		return logger.Error
	case "SILENT":
		return logger.Silent
	default:
		return logger.Warn
	}
}

func (l *SlogGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *SlogGormLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.LogLevel >= logger.Info {
		l.Logger.InfoContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *SlogGormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.LogLevel >= logger.Warn {
		l.Logger.WarnContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *SlogGormLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.LogLevel >= logger.Error {
		l.Logger.ErrorContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *SlogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	attrs := []any{
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("latency", elapsed),
	}

	switch {
	case err != nil && l.LogLevel >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		attrs = append(attrs, slog.String("source", caller()), slog.String("err", err.Error()))
		l.Logger.ErrorContext(ctx, "sql_error", attrs...)
	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold && l.LogLevel >= logger.Warn:
		attrs = append(attrs, slog.String("source", caller()), slog.Duration("slow_threshold", l.SlowThreshold))
		l.Logger.WarnContext(ctx, "sql_slow", attrs...)
	case l.LogLevel == logger.Info:
		l.Logger.DebugContext(ctx, "sql", attrs...)
	}
}

// caller returns the first frame outside gorm and this file.
func caller() string {
	for i := 2; i < 15; i++ {
		_, file, line, ok := runtime.Caller(i)
		if ok && !strings.Contains(file, "gorm.io") && !strings.HasSuffix(file, "internal/database/logger.go") {
			return file + ":" + strconv.Itoa(line)
		}
	}
	return ""
}
