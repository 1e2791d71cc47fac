package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"

	"github.com/tusharelectronics/storefront/internal/config"
	"github.com/tusharelectronics/storefront/internal/database"
	"github.com/tusharelectronics/storefront/internal/email"
	"github.com/tusharelectronics/storefront/internal/filestorage"
	"github.com/tusharelectronics/storefront/internal/queue"
	"github.com/tusharelectronics/storefront/internal/telemetry"
	"github.com/tusharelectronics/storefront/internal/usecase"
)

var _ Service = usecase.Usecase{}

// Service is the usecase surface the HTTP layer depends on.
type Service interface {
	// Health returns a map of health status information.
	Health() map[string]string

	ListProducts(context.Context, usecase.AdminProductsOption) ([]usecase.Product, int, error)
	ListStorefrontProducts(context.Context, usecase.StorefrontProductsOption) ([]usecase.Product, int, error)
	GetProductByID(context.Context, uuid.UUID) (usecase.Product, error)
	GetProductDetail(context.Context, string) (usecase.Product, []usecase.Product, error)
	CreateProduct(context.Context, usecase.Product, []usecase.Upload) (usecase.Product, error)
	UpdateProduct(context.Context, uuid.UUID, usecase.UpdateProductRequest) (usecase.Product, error)
	DeleteProduct(context.Context, uuid.UUID) error
	DeleteProductImage(context.Context, uuid.UUID, usecase.ImageRef) error

	ListCategories(context.Context, usecase.ListCategoriesOption) ([]usecase.Category, int, error)
	GetCategoryByID(context.Context, uuid.UUID) (usecase.Category, error)
	GetCategoryPage(context.Context, string, int) (usecase.Category, []usecase.Product, int, error)
	CreateCategory(context.Context, usecase.Category, *usecase.Upload) (usecase.Category, error)
	UpdateCategory(context.Context, uuid.UUID, usecase.UpdateCategoryRequest) (usecase.Category, error)
	DeleteCategory(context.Context, uuid.UUID) error

	ListArticles(context.Context, usecase.AdminArticlesOption) ([]usecase.Article, int, error)
	ListBlog(context.Context, int, string) (usecase.Blog, error)
	GetArticleByID(context.Context, uuid.UUID) (usecase.Article, error)
	ViewArticle(context.Context, string) (usecase.Article, []usecase.Article, error)
	CreateArticle(context.Context, usecase.Article, *usecase.Upload) (usecase.Article, error)
	UpdateArticle(context.Context, uuid.UUID, usecase.UpdateArticleRequest) (usecase.Article, error)
	DeleteArticle(context.Context, uuid.UUID) error

	ListBanners(context.Context, usecase.ListBannersOption) ([]usecase.Banner, int, error)
	GetBannerByID(context.Context, uuid.UUID) (usecase.Banner, error)
	CreateBanner(context.Context, usecase.Banner, *usecase.Upload) (usecase.Banner, error)
	UpdateBanner(context.Context, uuid.UUID, usecase.UpdateBannerRequest) (usecase.Banner, error)
	DeleteBanner(context.Context, uuid.UUID) error

	ListTestimonials(context.Context, usecase.ListTestimonialsOption) ([]usecase.Testimonial, int, error)
	GetTestimonialByID(context.Context, uuid.UUID) (usecase.Testimonial, error)
	CreateTestimonial(context.Context, usecase.Testimonial, *usecase.Upload) (usecase.Testimonial, error)
	UpdateTestimonial(context.Context, uuid.UUID, usecase.UpdateTestimonialRequest) (usecase.Testimonial, error)
	DeleteTestimonial(context.Context, uuid.UUID) error

	ListInquiries(context.Context, int, string) (usecase.InquiryList, error)
	GetInquiryByID(context.Context, uuid.UUID) (usecase.Inquiry, error)
	CreateInquiry(context.Context, usecase.Inquiry) (usecase.Inquiry, error)
	UpdateInquiryStatus(context.Context, uuid.UUID, string) (usecase.Inquiry, error)
	DeleteInquiry(context.Context, uuid.UUID) error
	DispatchInquiryNotification(context.Context, uuid.UUID)

	Subscribe(context.Context, string) (usecase.Subscriber, error)

	GetHome(context.Context) usecase.Home
	GetSearchSuggestions(context.Context, string) (usecase.SearchSuggestions, error)
	GetSitemap(context.Context) ([]usecase.SitemapEntry, error)
	GetDashboard(context.Context) (usecase.Dashboard, error)

	ReconcileAssets(context.Context, usecase.ReconcileOption) (usecase.ReconcileReport, error)
	ScheduleAssetReconcile(context.Context, usecase.ReconcileOption) error
	ImageExists(context.Context, usecase.ImageRef) (bool, error)
}

type Server struct {
	server    Service
	validator *validator.Validate
	logger    *slog.Logger

	// uploadsRoot is served directly when files live on local disk,
	// otherwise presigner redirects to the object store.
	uploadsRoot string
	presigner   filestorage.Presigner

	adminUsername     string
	adminPasswordHash []byte
	rateLimit         float64
	maxUploadSize     int64
	siteURL           string
}

type Options struct {
	UploadsRoot       string
	Presigner         filestorage.Presigner
	AdminUsername     string
	AdminPasswordHash string
	RateLimit         float64
	MaxUploadSize     int64
	SiteURL           string
}

func NewServer(svc Service, logger *slog.Logger, opt Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opt.MaxUploadSize <= 0 {
		opt.MaxUploadSize = config.DEFAULT_UPLOAD_MAX_FILE_SIZE
	}
	return &Server{
		server:            svc,
		validator:         validator.New(),
		logger:            logger,
		uploadsRoot:       opt.UploadsRoot,
		presigner:         opt.Presigner,
		adminUsername:     opt.AdminUsername,
		adminPasswordHash: []byte(opt.AdminPasswordHash),
		rateLimit:         opt.RateLimit,
		maxUploadSize:     opt.MaxUploadSize,
		siteURL:           opt.SiteURL,
	}
}

// App owns the HTTP server and everything it was built from.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	closers  []func() error
	shutdown telemetry.ShutdownFunc
}

func NewApp() (*App, error) {
	ctx := context.Background()
	logger := telemetry.NewLogger(config.Env(config.ENV_KEY_LOG_LEVEL, "INFO"))

	shutdown, err := telemetry.Setup(ctx, "storefront-api")
	if err != nil {
		logger.Warn("telemetry disabled", slog.String("err", err.Error()))
	}

	repo, err := database.New(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create repository: %w", err)
	}

	store, err := filestorage.NewFromEnv(ctx)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to create file storage: %w", err)
	}

	var closers []func() error

	var mailer usecase.Mailer
	ep, err := email.NewEmailProvider(
		os.Getenv(config.ENV_KEY_SMTP_HOST),
		os.Getenv(config.ENV_KEY_SMTP_USERNAME),
		os.Getenv(config.ENV_KEY_SMTP_PASSWORD),
		os.Getenv(config.ENV_KEY_SMTP_PORT),
		logger,
	)
	if err != nil {
		logger.Warn("email disabled", slog.String("err", err.Error()))
	} else {
		mailer = ep
		closers = append(closers, ep.Close)
	}

	// Without redis, notifications are sent from the API process.
	var dispatcher usecase.Dispatcher
	if os.Getenv(config.ENV_KEY_REDIS_HOST) != "" {
		qc := queue.NewClientFromEnv(logger)
		dispatcher = qc
		closers = append(closers, qc.Close)
	}

	settings := usecase.SettingsFromEnv()
	uc := usecase.New(repo, store, mailer, dispatcher, settings, logger)
	closers = append(closers, uc.Close)

	opt := Options{
		AdminUsername:     config.Env(config.ENV_KEY_ADMIN_USERNAME, "admin"),
		AdminPasswordHash: os.Getenv(config.ENV_KEY_ADMIN_PASSWORD_HASH),
		RateLimit:         float64(config.EnvInt(config.ENV_KEY_RATE_LIMIT_PER_SECOND, 5)),
		MaxUploadSize:     settings.MaxUploadSize,
		SiteURL:           settings.SiteURL,
	}
	if p, ok := store.(filestorage.Presigner); ok {
		opt.Presigner = p
	} else {
		opt.UploadsRoot = config.Env(config.ENV_KEY_UPLOADS_ROOT, config.DEFAULT_UPLOADS_ROOT)
	}

	s := NewServer(uc, logger, opt)

	port := config.Env(config.ENV_KEY_PORT, "8080")
	return &App{
		server: &http.Server{
			Addr:         net.JoinHostPort("", port),
			Handler:      s.RegisterRoutes(),
			IdleTimeout:  time.Minute,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		logger:   logger,
		closers:  closers,
		shutdown: shutdown,
	}, nil
}

func (a *App) Addr() string {
	return a.server.Addr
}

func (a *App) Logger() *slog.Logger {
	return a.logger
}

func (a *App) ListenAndServe() error {
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then closes the queue client, the
// mailer and the database in that order.
func (a *App) Shutdown(ctx context.Context) error {
	errs := []error{a.server.Shutdown(ctx)}
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	if a.shutdown != nil {
		errs = append(errs, a.shutdown(ctx))
	}
	return errors.Join(errs...)
}
