package filestorage

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/tusharelectronics/storefront/internal/config"
	"github.com/tusharelectronics/storefront/internal/usecase"
)

// Store is an asset store as the rest of the application sees it.
type Store interface {
	usecase.AssetStore
}

// Presigner is implemented by stores whose files are not served from the
// local disk.
type Presigner interface {
	GetPresignedURL(context.Context, usecase.ImageRef) (string, error)
}

// NewFromEnv builds the store selected by STORAGE_DRIVER, local by default.
func NewFromEnv(ctx context.Context) (Store, error) {
	maxSize := config.EnvInt64(config.ENV_KEY_UPLOAD_MAX_FILE_SIZE, config.DEFAULT_UPLOAD_MAX_FILE_SIZE)

	switch driver := config.Env(config.ENV_KEY_STORAGE_DRIVER, config.STORAGE_DRIVER_LOCAL); driver {
	case config.STORAGE_DRIVER_LOCAL:
		root := config.Env(config.ENV_KEY_UPLOADS_ROOT, config.DEFAULT_UPLOADS_ROOT)
		return NewLocalStorage(root, maxSize), nil

	case config.STORAGE_DRIVER_MINIO:
		secure, _ := strconv.ParseBool(config.Env(config.ENV_KEY_MINIO_SECURE, "true"))
		return NewMinIOStorage(
			os.Getenv(config.ENV_KEY_MINIO_BUCKET),
			os.Getenv(config.ENV_KEY_MINIO_ENDPOINT),
			os.Getenv(config.ENV_KEY_MINIO_ACCESS_KEY),
			os.Getenv(config.ENV_KEY_MINIO_SECRET_KEY),
			secure,
			maxSize,
		)

	case config.STORAGE_DRIVER_S3:
		return NewS3Storage(ctx, os.Getenv(config.ENV_KEY_S3_BUCKET), maxSize)

	default:
		return nil, fmt.Errorf("filestorage: unknown storage driver %q", driver)
	}
}
