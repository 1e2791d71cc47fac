package usecase

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"mime"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// AssetCategory names the directory an entity type stores its images in.
type AssetCategory string

const (
	AssetProducts     AssetCategory = "products"
	AssetCategories   AssetCategory = "categories"
	AssetArticles     AssetCategory = "articles"
	AssetBanners      AssetCategory = "banners"
	AssetTestimonials AssetCategory = "testimonials"
)

// AllAssetCategories returns every category in a fixed order.
func AllAssetCategories() []AssetCategory {
	return []AssetCategory{
		AssetProducts,
		AssetCategories,
		AssetArticles,
		AssetBanners,
		AssetTestimonials,
	}
}

func (c AssetCategory) Valid() bool {
	return slices.Contains(AllAssetCategories(), c)
}

const UploadsPrefix = "/uploads/"

// ImageRef is the public path of a stored image: /uploads/<category>/<filename>.
type ImageRef string

func NewImageRef(cat AssetCategory, filename string) ImageRef {
	return ImageRef(UploadsPrefix + string(cat) + "/" + filename)
}

// ParseImageRef accepts only well-formed refs of a known category.
func ParseImageRef(s string) (ImageRef, error) {
	ref := ImageRef(strings.TrimSpace(s))
	if !ref.Valid() {
		return "", ErrValidation{
			Field:   "image",
			Code:    CodeInvalid,
			Message: fmt.Sprintf("invalid image reference %q", s),
		}
	}
	return ref, nil
}

func (r ImageRef) split() (AssetCategory, string, bool) {
	rest, ok := strings.CutPrefix(string(r), UploadsPrefix)
	if !ok {
		return "", "", false
	}
	cat, name, ok := strings.Cut(rest, "/")
	if !ok {
		return "", "", false
	}
	return AssetCategory(cat), name, true
}

func (r ImageRef) Category() AssetCategory {
	cat, _, _ := r.split()
	return cat
}

func (r ImageRef) Filename() string {
	_, name, _ := r.split()
	return name
}

// Valid reports whether r points at a single file directly under a known
// category directory.
func (r ImageRef) Valid() bool {
	cat, name, ok := r.split()
	if !ok || !cat.Valid() {
		return false
	}
	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "\x00")
}

func (r ImageRef) String() string {
	return string(r)
}

// Upload is a single file received from a client, not yet stored.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

type StoredAsset struct {
	Ref     ImageRef
	Size    int64
	ModTime time.Time
}

// AssetStore places uploaded images under their category directory.
// Delete must succeed when the file is already gone.
type AssetStore interface {
	Save(context.Context, AssetCategory, Upload) (ImageRef, error)
	Delete(context.Context, ImageRef) error
	Exists(context.Context, ImageRef) (bool, error)
	List(context.Context, AssetCategory) ([]StoredAsset, error)
	Open(context.Context, ImageRef) (io.ReadCloser, error)
}

var (
	allowedImageExtensions = []string{".jpeg", ".jpg", ".png", ".gif", ".webp"}
	allowedImageTypes      = []string{"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp"}
)

// CheckUpload rejects files whose extension or declared content type is not
// an accepted image format, and files larger than maxSize.
func CheckUpload(up Upload, maxSize int64) error {
	ext := strings.ToLower(filepath.Ext(up.Filename))
	if !slices.Contains(allowedImageExtensions, ext) {
		return ErrValidation{
			Field:   up.Field,
			Code:    CodeUnsupportedMediaType,
			Message: fmt.Sprintf("file %q: only image files (jpeg, jpg, png, gif, webp) are allowed", up.Filename),
		}
	}

	mediaType, _, err := mime.ParseMediaType(up.ContentType)
	if err != nil || !slices.Contains(allowedImageTypes, strings.ToLower(mediaType)) {
		return ErrValidation{
			Field:   up.Field,
			Code:    CodeUnsupportedMediaType,
			Message: fmt.Sprintf("file %q: content type %q is not an accepted image type", up.Filename, up.ContentType),
		}
	}

	if maxSize > 0 && up.Size > maxSize {
		return ErrValidation{
			Field:   up.Field,
			Code:    CodePayloadTooLarge,
			Message: fmt.Sprintf("file %q exceeds the %d byte limit", up.Filename, maxSize),
		}
	}
	return nil
}

// NewAssetFilename builds "<field>-<unix ms>-<random><ext>".
func NewAssetFilename(field, original string, now time.Time) string {
	if field == "" {
		field = "image"
	}
	ext := strings.ToLower(path.Ext(filepath.Base(original)))
	return fmt.Sprintf("%s-%d-%d%s", field, now.UnixMilli(), rand.IntN(1e9), ext)
}
