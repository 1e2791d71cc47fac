package filestorage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	consts "github.com/tusharelectronics/storefront/internal/config"
	"github.com/tusharelectronics/storefront/internal/usecase"
)

var _ usecase.AssetStore = (*MinIOStorage)(nil)

func NewMinIOStorage(bucket, endpoint, accessKeyID, secretAccessKey string, secure bool, maxSize int64) (*MinIOStorage, error) {
	m, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, err
	}
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}
	return &MinIOStorage{
		client:  m,
		bucket:  bucket,
		maxSize: maxSize,
		now:     time.Now,
	}, nil
}

type MinIOStorage struct {
	client  *minio.Client
	bucket  string
	maxSize int64
	now     func() time.Time
}

func (f *MinIOStorage) Save(ctx context.Context, cat usecase.AssetCategory, up usecase.Upload) (usecase.ImageRef, error) {
	if !cat.Valid() {
		return "", usecase.ErrStorage{Op: "save", Err: fmt.Errorf("unknown asset category %q", cat)}
	}
	if err := usecase.CheckUpload(up, f.maxSize); err != nil {
		return "", err
	}
	data, err := readUpload(up, f.maxSize)
	if err != nil {
		var ve usecase.ErrValidation
		if errors.As(err, &ve) {
			return "", err
		}
		return "", usecase.ErrStorage{Op: "save", Err: err}
	}

	ref := usecase.NewImageRef(cat, usecase.NewAssetFilename(up.Field, up.Filename, f.now()))
	key, _ := objectKey(ref)
	_, err = f.client.PutObject(ctx, f.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: up.ContentType,
	})
	if err != nil {
		return "", usecase.ErrStorage{Op: "save", Ref: ref, Err: err}
	}
	return ref, nil
}

// Delete is idempotent, RemoveObject does not fail for a missing key.
func (f *MinIOStorage) Delete(ctx context.Context, ref usecase.ImageRef) error {
	key, err := objectKey(ref)
	if err != nil {
		return usecase.ErrStorage{Op: "delete", Ref: ref, Err: err}
	}
	if err := f.client.RemoveObject(ctx, f.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return usecase.ErrStorage{Op: "delete", Ref: ref, Err: err}
	}
	return nil
}

func (f *MinIOStorage) Exists(ctx context.Context, ref usecase.ImageRef) (bool, error) {
	key, err := objectKey(ref)
	if err != nil {
		return false, nil
	}
	_, err = f.client.StatObject(ctx, f.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, usecase.ErrStorage{Op: "exists", Ref: ref, Err: err}
	}
	return true, nil
}

func (f *MinIOStorage) List(ctx context.Context, cat usecase.AssetCategory) ([]usecase.StoredAsset, error) {
	prefix := categoryPrefix(cat)
	assets := []usecase.StoredAsset{}
	for obj := range f.client.ListObjects(ctx, f.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, usecase.ErrStorage{Op: "list", Err: obj.Err}
		}
		ref := usecase.NewImageRef(cat, strings.TrimPrefix(obj.Key, prefix))
		if !ref.Valid() {
			continue
		}
		assets = append(assets, usecase.StoredAsset{
			Ref:     ref,
			Size:    obj.Size,
			ModTime: obj.LastModified,
		})
	}
	return assets, nil
}

func (f *MinIOStorage) Open(ctx context.Context, ref usecase.ImageRef) (io.ReadCloser, error) {
	key, err := objectKey(ref)
	if err != nil {
		return nil, usecase.ErrStorage{Op: "open", Ref: ref, Err: err}
	}
	obj, err := f.client.GetObject(ctx, f.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, usecase.ErrStorage{Op: "open", Ref: ref, Err: err}
	}
	return obj, nil
}

func (f *MinIOStorage) GetPresignedURL(ctx context.Context, ref usecase.ImageRef) (string, error) {
	key, err := objectKey(ref)
	if err != nil {
		return "", err
	}
	u, err := f.client.PresignedGetObject(ctx, f.bucket, key, time.Minute*consts.PRESIGN_URL_EXPIRE_MINUTES, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
