package config

import (
	"os"
	"strconv"
	"time"
)

// Header constants.
const (
	HEADER_KEY_X_REQUEST_ID = "X-Request-Id"
)

const (
	ENV_KEY_APP_ENV   = "APP_ENV"
	ENV_KEY_PORT      = "PORT"
	ENV_KEY_LOG_LEVEL = "LOG_LEVEL"

	ENV_KEY_DB_HOST                 = "DB_HOST"
	ENV_KEY_DB_PORT                 = "DB_PORT"
	ENV_KEY_DB_USER                 = "DB_USER"
	ENV_KEY_DB_PASSWORD             = "DB_PASSWORD"
	ENV_KEY_DB_DATABASE             = "DB_DATABASE"
	ENV_KEY_DB_MAX_OPEN_CONNECTIONS = "DB_MAX_OPEN_CONNECTIONS"
	ENV_KEY_DB_SSLMODE              = "DB_SSLMODE"

	ENV_KEY_STORAGE_DRIVER       = "STORAGE_DRIVER"
	ENV_KEY_UPLOADS_ROOT         = "UPLOADS_ROOT"
	ENV_KEY_UPLOAD_MAX_FILE_SIZE = "UPLOAD_MAX_FILE_SIZE"

	ENV_KEY_MINIO_ENDPOINT   = "MINIO_ENDPOINT"
	ENV_KEY_MINIO_ACCESS_KEY = "MINIO_ACCESS_KEY"
	ENV_KEY_MINIO_SECRET_KEY = "MINIO_SECRET_KEY"
	ENV_KEY_MINIO_BUCKET     = "MINIO_BUCKET"
	ENV_KEY_MINIO_SECURE     = "MINIO_SECURE"

	ENV_KEY_S3_BUCKET = "S3_BUCKET"

	ENV_KEY_SMTP_HOST     = "SMTP_HOST"
	ENV_KEY_SMTP_PORT     = "SMTP_PORT"
	ENV_KEY_SMTP_USERNAME = "SMTP_USERNAME"
	ENV_KEY_SMTP_PASSWORD = "SMTP_PASSWORD"
	ENV_KEY_EMAIL_FROM    = "EMAIL_FROM"
	ENV_KEY_EMAIL_ADMIN   = "EMAIL_ADMIN"

	ENV_KEY_SITE_NAME  = "SITE_NAME"
	ENV_KEY_SITE_URL   = "SITE_URL"
	ENV_KEY_SITE_PHONE = "SITE_PHONE"

	ENV_KEY_REDIS_HOST         = "REDIS_HOST"
	ENV_KEY_REDIS_PORT         = "REDIS_PORT"
	ENV_KEY_REDIS_PASSWORD     = "REDIS_PASSWORD"
	ENV_KEY_WORKER_CONCURRENCY = "WORKER_CONCURRENCY"

	ENV_KEY_RECONCILE_CRON         = "RECONCILE_CRON"
	ENV_KEY_RECONCILE_GRACE_PERIOD = "RECONCILE_GRACE_PERIOD"

	ENV_KEY_ADMIN_USERNAME      = "ADMIN_USERNAME"
	ENV_KEY_ADMIN_PASSWORD_HASH = "ADMIN_PASSWORD_HASH"

	ENV_KEY_RATE_LIMIT_PER_SECOND = "RATE_LIMIT_PER_SECOND"

	ENV_KEY_OTEL_EXPORTER_OTLP_ENDPOINT = "OTEL_EXPORTER_OTLP_ENDPOINT"
	ENV_KEY_OTEL_SERVICE_NAME           = "OTEL_SERVICE_NAME"
)

// Storage drivers selectable through ENV_KEY_STORAGE_DRIVER.
const (
	STORAGE_DRIVER_LOCAL = "local"
	STORAGE_DRIVER_MINIO = "minio"
	STORAGE_DRIVER_S3    = "s3"
)

const (
	DEFAULT_UPLOAD_MAX_FILE_SIZE   int64 = 5 << 20
	DEFAULT_UPLOADS_ROOT                 = "public/uploads"
	DEFAULT_RECONCILE_CRON               = "0 * * * *"
	DEFAULT_RECONCILE_GRACE_PERIOD       = time.Hour
	PRESIGN_URL_EXPIRE_MINUTES           = 15
)

// Page sizes.
const (
	PAGE_SIZE_ADMIN_PRODUCTS      = 10
	PAGE_SIZE_ADMIN_ARTICLES      = 10
	PAGE_SIZE_STOREFRONT_PRODUCTS = 12
	PAGE_SIZE_CATEGORY_PRODUCTS   = 12
	PAGE_SIZE_INQUIRIES           = 20
	PAGE_SIZE_BLOG                = 9
)

type ContextKey uint

const (
	_ ContextKey = iota
	CTX_KEY_ADMIN_USERNAME
)

// Env returns the value of key or fallback when unset.
func Env(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func EnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func EnvInt64(key string, fallback int64) int64 {
	if v, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil {
		return v
	}
	return fallback
}

func EnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

// IsDebug reports whether internal error details may be exposed to clients.
func IsDebug() bool {
	switch os.Getenv(ENV_KEY_APP_ENV) {
	case "local", "development":
		return true
	}
	return false
}
