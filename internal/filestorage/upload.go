package filestorage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/tusharelectronics/storefront/internal/config"
	"github.com/tusharelectronics/storefront/internal/usecase"
)

const (
	defaultMaxSize = config.DEFAULT_UPLOAD_MAX_FILE_SIZE
	objectPrefix   = "uploads"
)

var errInvalidRef = errors.New("invalid image reference")

func tooLarge(up usecase.Upload, limit int64) error {
	return usecase.ErrValidation{
		Field:   up.Field,
		Code:    usecase.CodePayloadTooLarge,
		Message: fmt.Sprintf("file %q exceeds the %d byte limit", up.Filename, limit),
	}
}

// readUpload buffers an upload for object stores that need the length up
// front. The declared size is not trusted.
func readUpload(up usecase.Upload, limit int64) ([]byte, error) {
	src, err := up.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(src, limit+1))
	if err != nil {
		return nil, err
	}
	if n > limit {
		return nil, tooLarge(up, limit)
	}
	return buf.Bytes(), nil
}

// objectKey maps a ref to "uploads/<category>/<filename>".
func objectKey(ref usecase.ImageRef) (string, error) {
	if !ref.Valid() {
		return "", errInvalidRef
	}
	return path.Join(objectPrefix, string(ref.Category()), ref.Filename()), nil
}

func categoryPrefix(cat usecase.AssetCategory) string {
	return path.Join(objectPrefix, string(cat)) + "/"
}
