package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/tusharelectronics/storefront/internal/config"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		TargetHeader: config.HEADER_KEY_X_REQUEST_ID,
	}))
	e.Use(otelecho.Middleware("storefront-api", otelecho.WithSkipper(skipper)))
	e.Use(NewEchoLogger(s.logger))
	e.Use(middleware.Secure())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.GET("/api/health", s.healthHandler)
	e.GET("/sitemap.xml", s.Sitemap)

	switch {
	case s.presigner != nil:
		e.GET("/uploads/:category/:filename", s.ServeUpload)
	case s.uploadsRoot != "":
		e.Static("/uploads", s.uploadsRoot)
	}

	var v1 = e.Group("/api/v1")
	v1.GET("/home", s.GetHome)
	v1.GET("/products", s.ListStorefrontProducts)
	v1.GET("/products/:slug", s.GetProductDetail)
	v1.GET("/categories", s.ListActiveCategories)
	v1.GET("/categories/:slug", s.GetCategoryPage)
	v1.GET("/blog", s.ListBlog)
	v1.GET("/blog/:slug", s.ViewArticle)
	v1.GET("/search/suggestions", s.GetSearchSuggestions)
	v1.POST("/inquiries", s.CreateInquiry, s.RateLimit())
	v1.POST("/newsletter", s.Subscribe, s.RateLimit())

	var admin = v1.Group("/admin", s.AdminAuth(), s.UploadBodyLimit())
	admin.GET("/dashboard", s.GetDashboard)
	admin.POST("/assets/reconcile", s.ReconcileAssets)

	var productGroup = admin.Group("/products")
	productGroup.GET("", s.ListProducts)
	productGroup.POST("", s.CreateProduct)
	productGroup.GET("/:id", s.GetProductByID)
	productGroup.PUT("/:id", s.UpdateProduct)
	productGroup.DELETE("/:id", s.DeleteProduct)
	productGroup.DELETE("/:id/images", s.DeleteProductImage)

	var categoryGroup = admin.Group("/categories")
	categoryGroup.GET("", s.ListCategories)
	categoryGroup.POST("", s.CreateCategory)
	categoryGroup.GET("/:id", s.GetCategoryByID)
	categoryGroup.PUT("/:id", s.UpdateCategory)
	categoryGroup.DELETE("/:id", s.DeleteCategory)

	var articleGroup = admin.Group("/articles")
	articleGroup.GET("", s.ListArticles)
	articleGroup.POST("", s.CreateArticle)
	articleGroup.GET("/:id", s.GetArticleByID)
	articleGroup.PUT("/:id", s.UpdateArticle)
	articleGroup.DELETE("/:id", s.DeleteArticle)

	var bannerGroup = admin.Group("/banners")
	bannerGroup.GET("", s.ListBanners)
	bannerGroup.POST("", s.CreateBanner)
	bannerGroup.GET("/:id", s.GetBannerByID)
	bannerGroup.PUT("/:id", s.UpdateBanner)
	bannerGroup.DELETE("/:id", s.DeleteBanner)

	var testimonialGroup = admin.Group("/testimonials")
	testimonialGroup.GET("", s.ListTestimonials)
	testimonialGroup.POST("", s.CreateTestimonial)
	testimonialGroup.GET("/:id", s.GetTestimonialByID)
	testimonialGroup.PUT("/:id", s.UpdateTestimonial)
	testimonialGroup.DELETE("/:id", s.DeleteTestimonial)

	var inquiryGroup = admin.Group("/inquiries")
	inquiryGroup.GET("", s.ListInquiries)
	inquiryGroup.GET("/:id", s.GetInquiryByID)
	inquiryGroup.PATCH("/:id/status", s.UpdateInquiryStatus)
	inquiryGroup.DELETE("/:id", s.DeleteInquiry)

	return e
}
