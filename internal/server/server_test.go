package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tusharelectronics/storefront/internal/usecase"
)

// fakeService records calls. Methods a test does not set up fall through
// to the nil embedded interface and panic.
type fakeService struct {
	Service

	mu sync.Mutex

	createProductErr error
	createdUploads   []usecase.Upload

	deleteImageErr error
	deletedImage   usecase.ImageRef

	inquiryID  uuid.UUID
	dispatched []uuid.UUID

	sitemap []usecase.SitemapEntry
	health  map[string]string
	exists  bool
}

func (f *fakeService) Health() map[string]string {
	return f.health
}

func (f *fakeService) CreateProduct(_ context.Context, p usecase.Product, ups []usecase.Upload) (usecase.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdUploads = ups
	if f.createProductErr != nil {
		return usecase.Product{}, f.createProductErr
	}
	p.ID = uuid.New()
	p.Slug = usecase.GenerateSlug(p.Name)
	return p, nil
}

func (f *fakeService) DeleteProductImage(_ context.Context, _ uuid.UUID, ref usecase.ImageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedImage = ref
	return f.deleteImageErr
}

func (f *fakeService) CreateInquiry(_ context.Context, in usecase.Inquiry) (usecase.Inquiry, error) {
	in.ID = f.inquiryID
	in.Status = "new"
	in.CreatedAt = time.Now()
	return in, nil
}

func (f *fakeService) DispatchInquiryNotification(_ context.Context, id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatched = append(f.dispatched, id)
}

func (f *fakeService) GetDashboard(context.Context) (usecase.Dashboard, error) {
	return usecase.Dashboard{Counts: usecase.DashboardCounts{Products: 3}}, nil
}

func (f *fakeService) GetSitemap(context.Context) ([]usecase.SitemapEntry, error) {
	return f.sitemap, nil
}

func (f *fakeService) ImageExists(context.Context, usecase.ImageRef) (bool, error) {
	return f.exists, nil
}

type fakePresigner struct{}

func (fakePresigner) GetPresignedURL(_ context.Context, ref usecase.ImageRef) (string, error) {
	return "https://bucket.example.com" + string(ref) + "?sig=abc", nil
}

const (
	testAdmin    = "owner"
	testPassword = "correct horse"
)

func newTestServer(t *testing.T, svc Service, opt Options) http.Handler {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	opt.AdminUsername = testAdmin
	opt.AdminPasswordHash = string(hash)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(svc, logger, opt).RegisterRoutes()
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", usecase.ErrValidation{Code: usecase.CodeRequired}, http.StatusUnprocessableEntity, usecase.CodeRequired},
		{"media type", usecase.ErrValidation{Code: usecase.CodeUnsupportedMediaType}, http.StatusUnsupportedMediaType, usecase.CodeUnsupportedMediaType},
		{"too large", usecase.ErrValidation{Code: usecase.CodePayloadTooLarge}, http.StatusRequestEntityTooLarge, usecase.CodePayloadTooLarge},
		{"not found", usecase.ErrNotFound{Code: "PRODUCT_NOT_FOUND"}, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
		{"conflict", usecase.ErrConflict{Code: "CATEGORY_HAS_PRODUCTS"}, http.StatusConflict, "CATEGORY_HAS_PRODUCTS"},
		{"wrapped conflict", errors.Join(errors.New("ctx"), usecase.ErrConflict{Code: "SLUG_TAKEN"}), http.StatusConflict, "SLUG_TAKEN"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := errorStatus(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestPageMeta(t *testing.T) {
	m := pageMeta(15, 2, 10)
	assert.Equal(t, &Meta{Total: 15, Skip: 10, Limit: 10, Page: 2, TotalPages: 2}, m)

	m = pageMeta(0, 0, 12)
	assert.Equal(t, 1, m.Page)
	assert.Equal(t, 0, m.TotalPages)
}

func TestFormOptional(t *testing.T) {
	f := formData{values: url.Values{"name": {"  Fan  "}, "sku": {""}}}

	assert.Nil(t, f.optional("description"))
	require.NotNil(t, f.optional("sku"))
	assert.Equal(t, "", *f.optional("sku"))
	assert.Equal(t, "Fan", *f.optional("name"))
	assert.True(t, f.has("sku"))
	assert.False(t, f.bool("sku"))
}

func TestFormNumbers(t *testing.T) {
	f := formData{values: url.Values{"price": {"12.5"}, "order": {"x"}, "discount_enabled": {"on"}}}

	price, err := f.float("price")
	require.NoError(t, err)
	assert.Equal(t, 12.5, price)

	_, err = f.int("order")
	var ve usecase.ErrValidation
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "order", ve.Field)

	assert.True(t, f.bool("discount_enabled"))
}

func TestAdminAuth(t *testing.T) {
	h := newTestServer(t, &fakeService{}, Options{})

	t.Run("no credentials", func(t *testing.T) {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
		req.SetBasicAuth(testAdmin, "wrong")
		assert.Equal(t, http.StatusUnauthorized, serve(h, req).Code)
	})

	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
		req.SetBasicAuth(testAdmin, testPassword)
		rec := serve(h, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"products":3`)
	})
}

func TestAdminAuthWithoutHash(t *testing.T) {
	s := NewServer(&fakeService{}, slog.New(slog.NewTextHandler(io.Discard, nil)), Options{AdminUsername: testAdmin})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
	req.SetBasicAuth(testAdmin, "")
	assert.Equal(t, http.StatusUnauthorized, serve(s.RegisterRoutes(), req).Code)
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for name, content := range files {
		fw, err := w.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestCreateProduct(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &fakeService{}
		h := newTestServer(t, svc, Options{})

		body, ct := multipartBody(t,
			map[string]string{"name": "Ceiling Fan", "price": "1999", "category_id": uuid.NewString()},
			map[string]string{"fan.jpg": "jpeg bytes"},
		)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", body)
		req.Header.Set("Content-Type", ct)
		req.SetBasicAuth(testAdmin, testPassword)

		rec := serve(h, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var res struct {
			Data Product `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, "ceiling-fan", res.Data.Slug)
		assert.Equal(t, 1999.0, res.Data.FinalPrice)
		require.Len(t, svc.createdUploads, 1)
		assert.Equal(t, "fan.jpg", svc.createdUploads[0].Filename)
	})

	t.Run("validation echoes the form", func(t *testing.T) {
		svc := &fakeService{createProductErr: usecase.ErrValidation{Field: "name", Code: usecase.CodeRequired, Message: "name is required"}}
		h := newTestServer(t, svc, Options{})

		body, ct := multipartBody(t, map[string]string{"name": "", "price": "10"}, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", body)
		req.Header.Set("Content-Type", ct)
		req.SetBasicAuth(testAdmin, testPassword)

		rec := serve(h, req)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var res struct {
			Data  map[string]string `json:"data"`
			Error string            `json:"error"`
			Field string            `json:"field"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, usecase.CodeRequired, res.Error)
		assert.Equal(t, "name", res.Field)
		assert.Equal(t, "10", res.Data["price"])
	})

	t.Run("bad price", func(t *testing.T) {
		h := newTestServer(t, &fakeService{}, Options{})

		body, ct := multipartBody(t, map[string]string{"name": "Fan", "price": "cheap"}, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", body)
		req.Header.Set("Content-Type", ct)
		req.SetBasicAuth(testAdmin, testPassword)

		rec := serve(h, req)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), `"field":"price"`)
	})
}

func TestDeleteProductImage(t *testing.T) {
	id := uuid.New()
	target := "/api/v1/admin/products/" + id.String() + "/images?image=" + url.QueryEscape("/uploads/products/a.jpg")

	t.Run("success", func(t *testing.T) {
		svc := &fakeService{}
		h := newTestServer(t, svc, Options{})

		req := httptest.NewRequest(http.MethodDelete, target, nil)
		req.SetBasicAuth(testAdmin, testPassword)
		rec := serve(h, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true}`, rec.Body.String())
		assert.Equal(t, usecase.ImageRef("/uploads/products/a.jpg"), svc.deletedImage)
	})

	t.Run("failure still answers 200", func(t *testing.T) {
		svc := &fakeService{deleteImageErr: usecase.ErrNotFound{Code: "PRODUCT_NOT_FOUND", Message: "product not found"}}
		h := newTestServer(t, svc, Options{})

		req := httptest.NewRequest(http.MethodDelete, target, nil)
		req.SetBasicAuth(testAdmin, testPassword)
		rec := serve(h, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":false,"error":"product not found"}`, rec.Body.String())
	})

	t.Run("missing image", func(t *testing.T) {
		h := newTestServer(t, &fakeService{}, Options{})

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/products/"+id.String()+"/images", nil)
		req.SetBasicAuth(testAdmin, testPassword)
		rec := serve(h, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"success":false`)
	})
}

func TestCreateInquiryDispatchesAfterResponse(t *testing.T) {
	svc := &fakeService{inquiryID: uuid.New()}
	h := newTestServer(t, svc, Options{})

	productID := uuid.New()
	payload := `{"name":"Asha","email":"asha@example.com","message":"Need 20 fans","product_ids":["` + productID.String() + `","bogus"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inquiries", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rec := serve(h, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res struct {
		Data Inquiry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, []string{productID.String()}, res.Data.ProductIDs)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	require.NotEmpty(t, svc.dispatched)
	assert.Equal(t, svc.inquiryID, svc.dispatched[0])
}

func TestSitemap(t *testing.T) {
	svc := &fakeService{sitemap: []usecase.SitemapEntry{
		{Path: "/", ChangeFreq: "daily", Priority: "1.0"},
		{Path: "/products/ceiling-fan", ChangeFreq: "weekly", Priority: "0.8", LastMod: time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)},
	}}
	h := newTestServer(t, svc, Options{SiteURL: "https://shop.example.com/"})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/xml")

	body := rec.Body.String()
	assert.Contains(t, body, `xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"`)
	assert.Contains(t, body, "<loc>https://shop.example.com/</loc>")
	assert.Contains(t, body, "<loc>https://shop.example.com/products/ceiling-fan</loc>")
	assert.Contains(t, body, "<lastmod>2026-01-02</lastmod>")
	assert.Equal(t, 1, strings.Count(body, "<lastmod>"))
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, &fakeService{health: map[string]string{"status": "down"}}, Options{})
	assert.Equal(t, http.StatusServiceUnavailable, serve(h, httptest.NewRequest(http.MethodGet, "/api/health", nil)).Code)

	h = newTestServer(t, &fakeService{health: map[string]string{"status": "up"}}, Options{})
	assert.Equal(t, http.StatusOK, serve(h, httptest.NewRequest(http.MethodGet, "/api/health", nil)).Code)
}

func TestServeUpload(t *testing.T) {
	t.Run("redirects to the store", func(t *testing.T) {
		h := newTestServer(t, &fakeService{exists: true}, Options{Presigner: fakePresigner{}})
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/uploads/banners/hero.webp", nil))

		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "https://bucket.example.com/uploads/banners/hero.webp?sig=abc", rec.Header().Get("Location"))
	})

	t.Run("missing file", func(t *testing.T) {
		h := newTestServer(t, &fakeService{}, Options{Presigner: fakePresigner{}})
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/uploads/banners/gone.webp", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown category", func(t *testing.T) {
		h := newTestServer(t, &fakeService{exists: true}, Options{Presigner: fakePresigner{}})
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/uploads/secrets/key.pem", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	s := NewServer(&fakeService{health: map[string]string{"status": "up"}}, slog.New(slog.NewJSONHandler(&buf, nil)), Options{
		AdminUsername:     testAdmin,
		AdminPasswordHash: string(hash),
		Presigner:         fakePresigner{},
	})
	h := s.RegisterRoutes()

	serve(h, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	serve(h, httptest.NewRequest(http.MethodGet, "/uploads/banners/gone.webp", nil))
	assert.Empty(t, buf.String())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
	req.SetBasicAuth(testAdmin, testPassword)
	serve(h, req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "http_request", entry["msg"])
	assert.Equal(t, "admin", entry["area"])
	assert.Equal(t, "/api/v1/admin/dashboard", entry["route"])
	assert.Equal(t, testAdmin, entry["admin"])

	buf.Reset()
	serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "http_request_rejected", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.EqualValues(t, http.StatusUnauthorized, entry["status"])
}
