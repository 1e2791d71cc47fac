package server

import (
	"io"
	"mime/multipart"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tusharelectronics/storefront/internal/usecase"
)

// formData is a parsed urlencoded or multipart body. Admin forms are sent
// as multipart so files and fields arrive together.
type formData struct {
	values url.Values
	files  map[string][]*multipart.FileHeader
}

func readForm(ctx echo.Context) (formData, error) {
	values, err := ctx.FormParams()
	if err != nil {
		return formData{}, usecase.ErrValidation{
			Field:   "body",
			Code:    usecase.CodeInvalid,
			Message: "request body must be a form: " + err.Error(),
		}
	}
	fd := formData{values: values}
	if mf := ctx.Request().MultipartForm; mf != nil {
		fd.files = mf.File
	}
	return fd, nil
}

func (f formData) get(key string) string {
	return strings.TrimSpace(f.values.Get(key))
}

// optional tells an absent field (nil) apart from one sent empty.
func (f formData) optional(key string) *string {
	v, ok := f.values[key]
	if !ok {
		return nil
	}
	s := ""
	if len(v) > 0 {
		s = strings.TrimSpace(v[0])
	}
	return &s
}

func (f formData) has(key string) bool {
	_, ok := f.values[key]
	return ok
}

func (f formData) float(key string) (float64, error) {
	s := f.get(key)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, usecase.ErrValidation{Field: key, Code: usecase.CodeInvalid, Message: key + " must be a number"}
	}
	return n, nil
}

func (f formData) int(key string) (int, error) {
	s := f.get(key)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, usecase.ErrValidation{Field: key, Code: usecase.CodeInvalid, Message: key + " must be a whole number"}
	}
	return n, nil
}

// bool accepts checkbox values as well as true/false.
func (f formData) bool(key string) bool {
	switch strings.ToLower(f.get(key)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func (f formData) uuid(key string) (uuid.UUID, error) {
	s := f.get(key)
	if s == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, usecase.ErrValidation{Field: key, Code: usecase.CodeInvalid, Message: key + " is not a valid id"}
	}
	return id, nil
}

// uploads returns every non-empty file sent under field. The count limit is
// enforced by the usecase.
func (f formData) uploads(field string) []usecase.Upload {
	var ups []usecase.Upload
	for _, fh := range f.files[field] {
		if fh.Filename == "" && fh.Size == 0 {
			continue
		}
		ups = append(ups, newUpload(field, fh))
	}
	return ups
}

// upload returns the single file sent under field, or nil.
func (f formData) upload(field string) (*usecase.Upload, error) {
	ups := f.uploads(field)
	switch len(ups) {
	case 0:
		return nil, nil
	case 1:
		return &ups[0], nil
	}
	return nil, usecase.ErrValidation{
		Field:   field,
		Code:    usecase.CodeTooManyFiles,
		Message: "only one image may be uploaded",
	}
}

// submitted is the form without its files, echoed back on failure.
func (f formData) submitted() map[string]string {
	out := make(map[string]string, len(f.values))
	for k := range f.values {
		out[k] = f.values.Get(k)
	}
	return out
}

func newUpload(field string, fh *multipart.FileHeader) usecase.Upload {
	return usecase.Upload{
		Field:       field,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func pathID(ctx echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return uuid.Nil, usecase.ErrValidation{Field: "id", Code: usecase.CodeInvalid, Message: "id is not a valid id"}
	}
	return id, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
