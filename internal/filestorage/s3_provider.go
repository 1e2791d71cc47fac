package filestorage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	consts "github.com/tusharelectronics/storefront/internal/config"
	"github.com/tusharelectronics/storefront/internal/usecase"
)

var _ usecase.AssetStore = (*S3Storage)(nil)

type S3Storage struct {
	client  *s3.Client
	bucket  string
	maxSize int64
	now     func() time.Time
}

// NewS3Storage reads credentials and region from the default AWS chain.
func NewS3Storage(ctx context.Context, bucket string, maxSize int64) (*S3Storage, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}
	return &S3Storage{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		maxSize: maxSize,
		now:     time.Now,
	}, nil
}

func (f *S3Storage) Save(ctx context.Context, cat usecase.AssetCategory, up usecase.Upload) (usecase.ImageRef, error) {
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
	_, err = f.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &f.bucket,
		Key:           &key,
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(up.ContentType),
	})
	if err != nil {
		return "", usecase.ErrStorage{Op: "save", Ref: ref, Err: err}
	}
	return ref, nil
}

// Delete is idempotent, S3 reports success for a missing key.
func (f *S3Storage) Delete(ctx context.Context, ref usecase.ImageRef) error {
	key, err := objectKey(ref)
	if err != nil {
		return usecase.ErrStorage{Op: "delete", Ref: ref, Err: err}
	}
	if _, err := f.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &f.bucket,
		Key:    &key,
	}); err != nil {
		return usecase.ErrStorage{Op: "delete", Ref: ref, Err: err}
	}
	return nil
}

func (f *S3Storage) Exists(ctx context.Context, ref usecase.ImageRef) (bool, error) {
	key, err := objectKey(ref)
	if err != nil {
		return false, nil
	}
	_, err = f.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &f.bucket,
		Key:    &key,
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, usecase.ErrStorage{Op: "exists", Ref: ref, Err: err}
	}
	return true, nil
}

func (f *S3Storage) List(ctx context.Context, cat usecase.AssetCategory) ([]usecase.StoredAsset, error) {
	prefix := categoryPrefix(cat)
	assets := []usecase.StoredAsset{}

	p := s3.NewListObjectsV2Paginator(f.client, &s3.ListObjectsV2Input{
		Bucket: &f.bucket,
		Prefix: &prefix,
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, usecase.ErrStorage{Op: "list", Err: err}
		}
		for _, obj := range page.Contents {
			ref := usecase.NewImageRef(cat, strings.TrimPrefix(aws.ToString(obj.Key), prefix))
			if !ref.Valid() {
				continue
			}
			assets = append(assets, usecase.StoredAsset{
				Ref:     ref,
				Size:    aws.ToInt64(obj.Size),
				ModTime: aws.ToTime(obj.LastModified),
			})
		}
	}
	return assets, nil
}

func (f *S3Storage) Open(ctx context.Context, ref usecase.ImageRef) (io.ReadCloser, error) {
	key, err := objectKey(ref)
	if err != nil {
		return nil, usecase.ErrStorage{Op: "open", Ref: ref, Err: err}
	}
	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &f.bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, usecase.ErrStorage{Op: "open", Ref: ref, Err: err}
	}
	return out.Body, nil
}

func (f *S3Storage) GetPresignedURL(ctx context.Context, ref usecase.ImageRef) (string, error) {
	key, err := objectKey(ref)
	if err != nil {
		return "", err
	}
	presignClient := s3.NewPresignClient(f.client)
	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &f.bucket,
		Key:    &key,
	}, func(po *s3.PresignOptions) {
		po.Expires = time.Minute * consts.PRESIGN_URL_EXPIRE_MINUTES
	})
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
