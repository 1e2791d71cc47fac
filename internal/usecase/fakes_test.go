package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tusharelectronics/storefront/internal/usecase"
)

var errPersist = errors.New("database unavailable")

// memRepo keeps records in maps. Methods a test does not need fall through
// to the nil embedded interface and panic.
type memRepo struct {
	usecase.Repository

	mu          sync.Mutex
	products    map[uuid.UUID]usecase.Product
	categories  map[uuid.UUID]usecase.Category
	articles    map[uuid.UUID]usecase.Article
	banners     map[uuid.UUID]usecase.Banner
	inquiries   map[uuid.UUID]usecase.Inquiry
	subscribers map[string]usecase.Subscriber

	failWrites bool
	refs       map[usecase.AssetCategory][]usecase.ImageRef
}

func newMemRepo() *memRepo {
	return &memRepo{
		products:    map[uuid.UUID]usecase.Product{},
		categories:  map[uuid.UUID]usecase.Category{},
		articles:    map[uuid.UUID]usecase.Article{},
		banners:     map[uuid.UUID]usecase.Banner{},
		inquiries:   map[uuid.UUID]usecase.Inquiry{},
		subscribers: map[string]usecase.Subscriber{},
		refs:        map[usecase.AssetCategory][]usecase.ImageRef{},
	}
}

func notFound(id uuid.UUID) error {
	return usecase.ErrNotFound{ID: id, Code: "NOT_FOUND", Message: "not found"}
}

func (r *memRepo) ListProducts(_ context.Context, opt usecase.ListProductsOption) ([]usecase.Product, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var list []usecase.Product
	for _, p := range r.products {
		if opt.CategoryID != uuid.Nil && p.CategoryID != opt.CategoryID {
			continue
		}
		if opt.Status != "" && p.Status != opt.Status {
			continue
		}
		if len(opt.IDs) > 0 && !slices.Contains(opt.IDs, p.ID) {
			continue
		}
		if p.ID == opt.ExcludeID {
			continue
		}
		list = append(list, p)
	}
	slices.SortFunc(list, func(a, b usecase.Product) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	total := len(list)
	if opt.Skip > 0 {
		list = list[min(opt.Skip, len(list)):]
	}
	if opt.Limit > 0 && len(list) > opt.Limit {
		list = list[:opt.Limit]
	}
	return list, total, nil
}

func (r *memRepo) GetProductByID(_ context.Context, id uuid.UUID) (usecase.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return usecase.Product{}, notFound(id)
	}
	p.Images = slices.Clone(p.Images)
	return p, nil
}

func (r *memRepo) CreateProduct(_ context.Context, p usecase.Product) (usecase.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrites {
		return usecase.Product{}, errPersist
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now().Add(time.Duration(len(r.products)) * time.Millisecond)
	p.UpdatedAt = p.CreatedAt
	r.products[p.ID] = p
	return p, nil
}

func (r *memRepo) UpdateProduct(_ context.Context, p usecase.Product) (usecase.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrites {
		return usecase.Product{}, errPersist
	}
	if _, ok := r.products[p.ID]; !ok {
		return usecase.Product{}, notFound(p.ID)
	}
	p.UpdatedAt = time.Now()
	r.products[p.ID] = p
	return p, nil
}

func (r *memRepo) DeleteProduct(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return notFound(id)
	}
	delete(r.products, id)
	return nil
}

func (r *memRepo) CountProductsByCategory(_ context.Context, id uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.products {
		if p.CategoryID == id {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) ProductCategoryStats(_ context.Context, status string, limit int) ([]usecase.CategoryStat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := map[uuid.UUID]int{}
	for _, p := range r.products {
		if status != "" && p.Status != status {
			continue
		}
		counts[p.CategoryID]++
	}

	stats := []usecase.CategoryStat{}
	for id, n := range counts {
		stats = append(stats, usecase.CategoryStat{CategoryID: id, Name: r.categories[id].Name, Count: n})
	}
	slices.SortFunc(stats, func(a, b usecase.CategoryStat) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Name, b.Name)
	})
	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}

func (r *memRepo) GetDashboardCounts(context.Context) (usecase.DashboardCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return usecase.DashboardCounts{
		Products:   len(r.products),
		Categories: len(r.categories),
		Inquiries:  len(r.inquiries),
	}, nil
}

func (r *memRepo) ListInquiries(_ context.Context, opt usecase.ListInquiriesOption) ([]usecase.Inquiry, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := []usecase.Inquiry{}
	for _, in := range r.inquiries {
		list = append(list, in)
	}
	total := len(list)
	if opt.Limit > 0 && len(list) > opt.Limit {
		list = list[:opt.Limit]
	}
	return list, total, nil
}

// deleteFailStore refuses to delete one ref and passes everything else
// through.
type deleteFailStore struct {
	usecase.AssetStore
	failRef usecase.ImageRef
}

func (s deleteFailStore) Delete(ctx context.Context, ref usecase.ImageRef) error {
	if ref == s.failRef {
		return usecase.ErrStorage{Op: "delete", Ref: ref, Err: errors.New("permission denied")}
	}
	return s.AssetStore.Delete(ctx, ref)
}

func (r *memRepo) GetCategoryByID(_ context.Context, id uuid.UUID) (usecase.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return usecase.Category{}, notFound(id)
	}
	return c, nil
}

func (r *memRepo) GetCategoryBySlug(_ context.Context, slug string) (usecase.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return usecase.Category{}, notFound(uuid.Nil)
}

func (r *memRepo) CreateCategory(_ context.Context, c usecase.Category) (usecase.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrites {
		return usecase.Category{}, errPersist
	}
	c.ID = uuid.New()
	r.categories[c.ID] = c
	return c, nil
}

func (r *memRepo) UpdateCategory(_ context.Context, c usecase.Category) (usecase.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrites {
		return usecase.Category{}, errPersist
	}
	r.categories[c.ID] = c
	return c, nil
}

func (r *memRepo) DeleteCategory(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.categories, id)
	return nil
}

func (r *memRepo) GetArticleByID(_ context.Context, id uuid.UUID) (usecase.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.articles[id]
	if !ok {
		return usecase.Article{}, notFound(id)
	}
	return a, nil
}

func (r *memRepo) CreateArticle(_ context.Context, a usecase.Article) (usecase.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = uuid.New()
	r.articles[a.ID] = a
	return a, nil
}

func (r *memRepo) UpdateArticle(_ context.Context, a usecase.Article) (usecase.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrites {
		return usecase.Article{}, errPersist
	}
	r.articles[a.ID] = a
	return a, nil
}

func (r *memRepo) GetBannerByID(_ context.Context, id uuid.UUID) (usecase.Banner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.banners[id]
	if !ok {
		return usecase.Banner{}, notFound(id)
	}
	return b, nil
}

func (r *memRepo) CreateBanner(_ context.Context, b usecase.Banner) (usecase.Banner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = uuid.New()
	r.banners[b.ID] = b
	return b, nil
}

func (r *memRepo) DeleteBanner(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.banners, id)
	return nil
}

func (r *memRepo) ListBanners(_ context.Context, _ usecase.ListBannersOption) ([]usecase.Banner, int, error) {
	return nil, 0, errPersist
}

func (r *memRepo) ListCategories(_ context.Context, _ usecase.ListCategoriesOption) ([]usecase.Category, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []usecase.Category
	for _, c := range r.categories {
		list = append(list, c)
	}
	return list, len(list), nil
}

func (r *memRepo) ListArticles(_ context.Context, _ usecase.ListArticlesOption) ([]usecase.Article, int, error) {
	return []usecase.Article{}, 0, nil
}

func (r *memRepo) ListTestimonials(_ context.Context, _ usecase.ListTestimonialsOption) ([]usecase.Testimonial, int, error) {
	return []usecase.Testimonial{}, 0, nil
}

func (r *memRepo) CreateInquiry(_ context.Context, in usecase.Inquiry) (usecase.Inquiry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in.ID = uuid.New()
	in.CreatedAt = time.Now()
	r.inquiries[in.ID] = in
	return in, nil
}

func (r *memRepo) GetInquiryByID(_ context.Context, id uuid.UUID) (usecase.Inquiry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in, ok := r.inquiries[id]
	if !ok {
		return usecase.Inquiry{}, notFound(id)
	}
	return in, nil
}

func (r *memRepo) GetSubscriberByEmail(_ context.Context, email string) (usecase.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subscribers[email]
	if !ok {
		return usecase.Subscriber{}, notFound(uuid.Nil)
	}
	return s, nil
}

func (r *memRepo) CreateSubscriber(_ context.Context, s usecase.Subscriber) (usecase.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = uuid.New()
	r.subscribers[s.Email] = s
	return s, nil
}

func (r *memRepo) ListImageRefs(_ context.Context, cat usecase.AssetCategory) ([]usecase.ImageRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var refs []usecase.ImageRef
	for _, p := range r.products {
		if cat == usecase.AssetProducts {
			refs = append(refs, p.Images...)
		}
	}
	return append(refs, r.refs[cat]...), nil
}

// failingStore fails every Save after the first n.
type failingStore struct {
	usecase.AssetStore
	okSaves int
	saves   int
}

func (s *failingStore) Save(ctx context.Context, cat usecase.AssetCategory, up usecase.Upload) (usecase.ImageRef, error) {
	s.saves++
	if s.saves > s.okSaves {
		return "", usecase.ErrStorage{Op: "save", Err: errors.New("disk full")}
	}
	return s.AssetStore.Save(ctx, cat, up)
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []usecase.Email
	err  error
}

func (m *recordingMailer) SendEmail(_ context.Context, e usecase.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, e)
	return m.err
}

func imageUpload(field, name, contentType string, data []byte) usecase.Upload {
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

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// gatedDispatcher blocks every enqueue until release is closed.
type gatedDispatcher struct {
	release  chan struct{}
	enqueued chan uuid.UUID
}

func (d *gatedDispatcher) EnqueueInquiryNotification(_ context.Context, id uuid.UUID) error {
	<-d.release
	d.enqueued <- id
	return nil
}

func (d *gatedDispatcher) EnqueueAssetReconcile(context.Context, usecase.ReconcileOption) error {
	return nil
}
