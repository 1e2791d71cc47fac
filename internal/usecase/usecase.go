package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tusharelectronics/storefront/internal/config"
)

// Settings holds the values the usecase layer reads from the environment.
type Settings struct {
	MaxUploadSize int64
	SiteName      string
	SiteURL       string
	SitePhone     string
	EmailFrom     string
	AdminEmail    string
}

// SettingsFromEnv reads Settings from the process environment.
func SettingsFromEnv() Settings {
	return Settings{
		MaxUploadSize: config.EnvInt64(config.ENV_KEY_UPLOAD_MAX_FILE_SIZE, config.DEFAULT_UPLOAD_MAX_FILE_SIZE),
		SiteName:      config.Env(config.ENV_KEY_SITE_NAME, "Storefront"),
		SiteURL:       config.Env(config.ENV_KEY_SITE_URL, "http://localhost:8080"),
		SitePhone:     config.Env(config.ENV_KEY_SITE_PHONE, ""),
		EmailFrom:     config.Env(config.ENV_KEY_EMAIL_FROM, ""),
		AdminEmail:    config.Env(config.ENV_KEY_EMAIL_ADMIN, ""),
	}
}

func New(
	repo Repository,
	assets AssetStore,
	mailer Mailer,
	dispatcher Dispatcher,
	settings Settings,
	logger *slog.Logger,
) Usecase {
	if logger == nil {
		logger = slog.Default()
	}
	return Usecase{
		repo:       repo,
		assets:     assets,
		mailer:     mailer,
		dispatcher: dispatcher,
		settings:   settings,
		logger:     logger,
	}
}

type Repository interface {
	Health() map[string]string
	Close() error

	ListProducts(context.Context, ListProductsOption) ([]Product, int, error)
	GetProductByID(context.Context, uuid.UUID) (Product, error)
	GetProductBySlug(context.Context, string) (Product, error)
	CreateProduct(context.Context, Product) (Product, error)
	UpdateProduct(context.Context, Product) (Product, error)
	DeleteProduct(context.Context, uuid.UUID) error
	CountProductsByCategory(context.Context, uuid.UUID) (int, error)
	ProductCategoryStats(context.Context, string, int) ([]CategoryStat, error)

	ListCategories(context.Context, ListCategoriesOption) ([]Category, int, error)
	GetCategoryByID(context.Context, uuid.UUID) (Category, error)
	GetCategoryBySlug(context.Context, string) (Category, error)
	CreateCategory(context.Context, Category) (Category, error)
	UpdateCategory(context.Context, Category) (Category, error)
	DeleteCategory(context.Context, uuid.UUID) error

	ListArticles(context.Context, ListArticlesOption) ([]Article, int, error)
	ListArticleCategories(context.Context) ([]string, error)
	GetArticleByID(context.Context, uuid.UUID) (Article, error)
	GetArticleBySlug(context.Context, string) (Article, error)
	CreateArticle(context.Context, Article) (Article, error)
	UpdateArticle(context.Context, Article) (Article, error)
	DeleteArticle(context.Context, uuid.UUID) error
	IncrementArticleViews(context.Context, uuid.UUID) error

	ListBanners(context.Context, ListBannersOption) ([]Banner, int, error)
	GetBannerByID(context.Context, uuid.UUID) (Banner, error)
	CreateBanner(context.Context, Banner) (Banner, error)
	UpdateBanner(context.Context, Banner) (Banner, error)
	DeleteBanner(context.Context, uuid.UUID) error

	ListTestimonials(context.Context, ListTestimonialsOption) ([]Testimonial, int, error)
	GetTestimonialByID(context.Context, uuid.UUID) (Testimonial, error)
	CreateTestimonial(context.Context, Testimonial) (Testimonial, error)
	UpdateTestimonial(context.Context, Testimonial) (Testimonial, error)
	DeleteTestimonial(context.Context, uuid.UUID) error

	ListInquiries(context.Context, ListInquiriesOption) ([]Inquiry, int, error)
	GetInquiryByID(context.Context, uuid.UUID) (Inquiry, error)
	CreateInquiry(context.Context, Inquiry) (Inquiry, error)
	UpdateInquiryStatus(context.Context, uuid.UUID, string) (Inquiry, error)
	DeleteInquiry(context.Context, uuid.UUID) error
	CountInquiriesByStatus(context.Context) (map[string]int, error)

	CreateSubscriber(context.Context, Subscriber) (Subscriber, error)
	GetSubscriberByEmail(context.Context, string) (Subscriber, error)

	GetDashboardCounts(context.Context) (DashboardCounts, error)

	// ListImageRefs returns every image reference persisted for cat.
	ListImageRefs(context.Context, AssetCategory) ([]ImageRef, error)
}

type Mailer interface {
	SendEmail(context.Context, Email) error
}

// Dispatcher hands work to the background queue.
type Dispatcher interface {
	EnqueueInquiryNotification(context.Context, uuid.UUID) error
	EnqueueAssetReconcile(context.Context, ReconcileOption) error
}

type Usecase struct {
	repo       Repository
	assets     AssetStore
	mailer     Mailer
	dispatcher Dispatcher
	settings   Settings
	logger     *slog.Logger
}

func (u Usecase) Health() map[string]string {
	return u.repo.Health()
}

func (u Usecase) Close() error {
	return u.repo.Close()
}
