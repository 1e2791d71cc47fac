package filestorage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tusharelectronics/storefront/internal/usecase"
)

func upload(field, name, contentType string, data []byte) usecase.Upload {
	return usecase.Upload{
		Field:       field,
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func TestLocalStorage_SaveThenExists(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewLocalStorage(root, 1<<20)

	ref, err := s.Save(ctx, usecase.AssetProducts, upload("images", "Photo.JPG", "image/jpeg", []byte("jpeg-bytes")))
	require.NoError(t, err)

	assert.Equal(t, usecase.AssetProducts, ref.Category())
	assert.True(t, strings.HasPrefix(string(ref), "/uploads/products/images-"))
	assert.True(t, strings.HasSuffix(string(ref), ".jpg"))

	ok, err := s.Exists(ctx, ref)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := os.ReadFile(filepath.Join(root, "products", ref.Filename()))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(got))
}

func TestLocalStorage_DirectoriesCreatedLazily(t *testing.T) {
	root := filepath.Join(t.TempDir(), "uploads")
	s := NewLocalStorage(root, 1<<20)

	_, err := os.Stat(root)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, err = s.Save(context.Background(), usecase.AssetBanners, upload("image", "b.webp", "image/webp", []byte("x")))
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(root, "banners"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLocalStorage_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStorage(t.TempDir(), 1<<20)

	ref, err := s.Save(ctx, usecase.AssetCategories, upload("image", "c.png", "image/png", []byte("png")))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, ref))
	require.NoError(t, s.Delete(ctx, ref))

	ok, err := s.Exists(ctx, ref)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Delete(ctx, usecase.NewImageRef(usecase.AssetArticles, "never-existed.gif")))
}

func TestLocalStorage_RejectsNonImage(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewLocalStorage(root, 1<<20)

	_, err := s.Save(ctx, usecase.AssetProducts, upload("images", "malware.jpg", "application/x-msdownload", []byte("MZ")))

	var ve usecase.ErrValidation
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, usecase.CodeUnsupportedMediaType, ve.Code)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStorage_EnforcesSizeOnActualBytes(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewLocalStorage(root, 8)

	up := upload("image", "big.png", "image/png", []byte("0123456789"))
	up.Size = 4 // a lying client

	_, err := s.Save(ctx, usecase.AssetTestimonials, up)
	var ve usecase.ErrValidation
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, usecase.CodePayloadTooLarge, ve.Code)

	list, err := s.List(ctx, usecase.AssetTestimonials)
	require.NoError(t, err)
	assert.Empty(t, list)

	tmp, err := os.ReadDir(filepath.Join(root, ".tmp"))
	require.NoError(t, err)
	assert.Empty(t, tmp)
}

func TestLocalStorage_List(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStorage(t.TempDir(), 1<<20)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }

	a, err := s.Save(ctx, usecase.AssetArticles, upload("image", "a.jpg", "image/jpeg", []byte("a")))
	require.NoError(t, err)
	b, err := s.Save(ctx, usecase.AssetArticles, upload("image", "b.gif", "image/gif", []byte("bb")))
	require.NoError(t, err)

	list, err := s.List(ctx, usecase.AssetArticles)
	require.NoError(t, err)

	refs := make([]usecase.ImageRef, 0, len(list))
	for _, sa := range list {
		refs = append(refs, sa.Ref)
	}
	assert.ElementsMatch(t, []usecase.ImageRef{a, b}, refs)

	empty, err := s.List(ctx, usecase.AssetBanners)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestLocalStorage_RefusesTraversal(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	outside := filepath.Join(filepath.Dir(root), "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep"), 0o644))
	t.Cleanup(func() { os.Remove(outside) })

	err := newStore(root).Delete(ctx, usecase.ImageRef("/uploads/products/../../keep.txt"))
	assert.Error(t, err)

	_, statErr := os.Stat(outside)
	assert.NoError(t, statErr)
}

func newStore(root string) *LocalStorage {
	return NewLocalStorage(root, 1<<20)
}

func TestLocalStorage_UnwritableRoot(t *testing.T) {
	ctx := context.Background()
	img := upload("image", "a.jpg", "image/jpeg", []byte("jpeg-bytes"))

	t.Run("root is a file", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "uploads")
		require.NoError(t, os.WriteFile(root, []byte("not a directory"), 0o644))

		_, err := NewLocalStorage(root, 1<<20).Save(ctx, usecase.AssetCategories, img)
		var se usecase.ErrStorage
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "save", se.Op)
	})

	t.Run("read-only root", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("permission bits do not apply to root")
		}
		root := t.TempDir()
		require.NoError(t, os.Chmod(root, 0o500))
		t.Cleanup(func() { os.Chmod(root, 0o755) })

		_, err := NewLocalStorage(root, 1<<20).Save(ctx, usecase.AssetCategories, img)
		var se usecase.ErrStorage
		require.ErrorAs(t, err, &se)

		_, statErr := os.Stat(filepath.Join(root, string(usecase.AssetCategories)))
		assert.True(t, errors.Is(statErr, os.ErrNotExist))
	})
}
