package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/tusharelectronics/storefront/internal/usecase"
)

var _ usecase.AssetStore = (*LocalStorage)(nil)

// NewLocalStorage stores images under root/<category>. Directories are
// created on first write.
func NewLocalStorage(root string, maxSize int64) *LocalStorage {
	dirs := make(map[usecase.AssetCategory]string)
	for _, cat := range usecase.AllAssetCategories() {
		dirs[cat] = filepath.Join(root, string(cat))
	}
	return &LocalStorage{
		root:    root,
		tmpDir:  filepath.Join(root, ".tmp"),
		dirs:    dirs,
		maxSize: maxSize,
		now:     time.Now,
	}
}

type LocalStorage struct {
	root    string
	tmpDir  string
	dirs    map[usecase.AssetCategory]string
	maxSize int64
	now     func() time.Time
}

// Root is the directory served under /uploads.
func (s *LocalStorage) Root() string {
	return s.root
}

// Save writes the upload to a temp file first and renames it into the
// category directory once it is complete and within the size limit.
func (s *LocalStorage) Save(ctx context.Context, cat usecase.AssetCategory, up usecase.Upload) (usecase.ImageRef, error) {
	dir, ok := s.dirs[cat]
	if !ok {
		return "", usecase.ErrStorage{Op: "save", Err: fmt.Errorf("unknown asset category %q", cat)}
	}
	if err := usecase.CheckUpload(up, s.maxSize); err != nil {
		return "", err
	}

	for _, d := range []string{s.tmpDir, dir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return "", usecase.ErrStorage{Op: "save", Err: err}
		}
	}

	src, err := up.Open()
	if err != nil {
		return "", usecase.ErrStorage{Op: "save", Err: err}
	}
	defer src.Close()

	tmp, err := os.CreateTemp(s.tmpDir, "upload-*")
	if err != nil {
		return "", usecase.ErrStorage{Op: "save", Err: err}
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(src, s.limit()+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", usecase.ErrStorage{Op: "save", Err: err}
	}
	if n > s.limit() {
		return "", tooLarge(up, s.limit())
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := usecase.NewAssetFilename(up.Field, up.Filename, s.now())
	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		return "", usecase.ErrStorage{Op: "save", Err: err}
	}
	return usecase.NewImageRef(cat, name), nil
}

// Delete removes the file behind ref. A missing file is not an error.
func (s *LocalStorage) Delete(_ context.Context, ref usecase.ImageRef) error {
	p, err := s.path(ref)
	if err != nil {
		return usecase.ErrStorage{Op: "delete", Ref: ref, Err: err}
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return usecase.ErrStorage{Op: "delete", Ref: ref, Err: err}
	}
	return nil
}

func (s *LocalStorage) Exists(_ context.Context, ref usecase.ImageRef) (bool, error) {
	p, err := s.path(ref)
	if err != nil {
		return false, nil
	}
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, usecase.ErrStorage{Op: "exists", Ref: ref, Err: err}
	}
	return info.Mode().IsRegular(), nil
}

func (s *LocalStorage) List(_ context.Context, cat usecase.AssetCategory) ([]usecase.StoredAsset, error) {
	dir, ok := s.dirs[cat]
	if !ok {
		return nil, usecase.ErrStorage{Op: "list", Err: fmt.Errorf("unknown asset category %q", cat)}
	}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []usecase.StoredAsset{}, nil
	}
	if err != nil {
		return nil, usecase.ErrStorage{Op: "list", Err: err}
	}

	assets := make([]usecase.StoredAsset, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		ref := usecase.NewImageRef(cat, e.Name())
		if !ref.Valid() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		assets = append(assets, usecase.StoredAsset{
			Ref:     ref,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return assets, nil
}

func (s *LocalStorage) Open(_ context.Context, ref usecase.ImageRef) (io.ReadCloser, error) {
	p, err := s.path(ref)
	if err != nil {
		return nil, usecase.ErrStorage{Op: "open", Ref: ref, Err: err}
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, usecase.ErrStorage{Op: "open", Ref: ref, Err: err}
	}
	return f, nil
}

func (s *LocalStorage) path(ref usecase.ImageRef) (string, error) {
	if !ref.Valid() {
		return "", errInvalidRef
	}
	return filepath.Join(s.dirs[ref.Category()], ref.Filename()), nil
}

func (s *LocalStorage) limit() int64 {
	if s.maxSize > 0 {
		return s.maxSize
	}
	return defaultMaxSize
}
