package server

import (
	"encoding/xml"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tusharelectronics/storefront/internal/config"
	"github.com/tusharelectronics/storefront/internal/usecase"
)

type Home struct {
	Banners      []Banner      `json:"banners"`
	Categories   []Category    `json:"categories"`
	Products     []Product     `json:"products"`
	Articles     []Article     `json:"articles"`
	Testimonials []Testimonial `json:"testimonials"`
}

func (s *Server) GetHome(ctx echo.Context) error {
	h := s.server.GetHome(ctx.Request().Context())
	return ctx.JSON(http.StatusOK, Res{Data: Home{
		Banners:      newBannerList(h.Banners),
		Categories:   newCategoryList(h.Categories),
		Products:     newProductList(h.Products),
		Articles:     newArticleList(h.Articles),
		Testimonials: newTestimonialList(h.Testimonials),
	}})
}

type ListStorefrontProductsRequest struct {
	Page     int    `query:"page" validate:"omitempty,min=1"`
	Search   string `query:"search" validate:"max=200"`
	Category string `query:"category" validate:"max=255"`
}

func (s *Server) ListStorefrontProducts(ctx echo.Context) error {
	var req ListStorefrontProductsRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}

	products, total, err := s.server.ListStorefrontProducts(ctx.Request().Context(), usecase.StorefrontProductsOption{
		Page:         req.Page,
		Search:       req.Search,
		CategorySlug: req.Category,
	})
	if err != nil {
		return s.errorResponse(ctx, "ListStorefrontProducts", err, nil)
	}
	return ctx.JSON(http.StatusOK, Res{
		Data: newProductList(products),
		Meta: pageMeta(total, req.Page, config.PAGE_SIZE_STOREFRONT_PRODUCTS),
	})
}

type ProductDetail struct {
	Product Product   `json:"product"`
	Related []Product `json:"related"`
}

func (s *Server) GetProductDetail(ctx echo.Context) error {
	p, related, err := s.server.GetProductDetail(ctx.Request().Context(), ctx.Param("slug"))
	if err != nil {
		return s.errorResponse(ctx, "GetProductDetail", err, nil)
	}
	return ctx.JSON(http.StatusOK, Res{Data: ProductDetail{
		Product: newProductRes(p),
		Related: newProductList(related),
	}})
}

type CategoryPage struct {
	Category Category  `json:"category"`
	Products []Product `json:"products"`
}

type GetCategoryPageRequest struct {
	Slug string `param:"slug" validate:"required"`
	Page int    `query:"page" validate:"omitempty,min=1"`
}

func (s *Server) GetCategoryPage(ctx echo.Context) error {
	var req GetCategoryPageRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}

	c, products, total, err := s.server.GetCategoryPage(ctx.Request().Context(), req.Slug, req.Page)
	if err != nil {
		return s.errorResponse(ctx, "GetCategoryPage", err, nil)
	}
	return ctx.JSON(http.StatusOK, Res{
		Data: CategoryPage{
			Category: newCategoryRes(c),
			Products: newProductList(products),
		},
		Meta: pageMeta(total, req.Page, config.PAGE_SIZE_CATEGORY_PRODUCTS),
	})
}

type Blog struct {
	Articles   []Article `json:"articles"`
	Categories []string  `json:"categories"`
}

type ListBlogRequest struct {
	Page     int    `query:"page" validate:"omitempty,min=1"`
	Category string `query:"category" validate:"max=100"`
}

func (s *Server) ListBlog(ctx echo.Context) error {
	var req ListBlogRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}

	blog, err := s.server.ListBlog(ctx.Request().Context(), req.Page, req.Category)
	if err != nil {
		return s.errorResponse(ctx, "ListBlog", err, nil)
	}

	categories := blog.Categories
	if categories == nil {
		categories = []string{}
	}
	return ctx.JSON(http.StatusOK, Res{
		Data: Blog{
			Articles:   newArticleList(blog.Articles),
			Categories: categories,
		},
		Meta: pageMeta(blog.Total, req.Page, config.PAGE_SIZE_BLOG),
	})
}

type ArticleDetail struct {
	Article Article   `json:"article"`
	Related []Article `json:"related"`
}

func (s *Server) ViewArticle(ctx echo.Context) error {
	a, related, err := s.server.ViewArticle(ctx.Request().Context(), ctx.Param("slug"))
	if err != nil {
		return s.errorResponse(ctx, "ViewArticle", err, nil)
	}
	return ctx.JSON(http.StatusOK, Res{Data: ArticleDetail{
		Article: newArticleRes(a),
		Related: newArticleList(related),
	}})
}

type SearchSuggestions struct {
	Products   []Product  `json:"products"`
	Categories []Category `json:"categories"`
}

func (s *Server) GetSearchSuggestions(ctx echo.Context) error {
	res, err := s.server.GetSearchSuggestions(ctx.Request().Context(), ctx.QueryParam("q"))
	if err != nil {
		return s.errorResponse(ctx, "GetSearchSuggestions", err, nil)
	}
	return ctx.JSON(http.StatusOK, Res{Data: SearchSuggestions{
		Products:   newProductList(res.Products),
		Categories: newCategoryList(res.Categories),
	}})
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

func (s *Server) Sitemap(ctx echo.Context) error {
	entries, err := s.server.GetSitemap(ctx.Request().Context())
	if err != nil {
		s.logger.ErrorContext(ctx.Request().Context(), "err_Sitemap_GetSitemap", slog.String("err", err.Error()))
		return ctx.String(http.StatusInternalServerError, "Error generating sitemap")
	}

	base := strings.TrimRight(s.siteURL, "/")
	set := sitemapURLSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]sitemapURL, 0, len(entries)),
	}
	for _, e := range entries {
		u := sitemapURL{
			Loc:        base + e.Path,
			ChangeFreq: e.ChangeFreq,
			Priority:   e.Priority,
		}
		if !e.LastMod.IsZero() {
			u.LastMod = e.LastMod.UTC().Format("2006-01-02")
		}
		set.URLs = append(set.URLs, u)
	}
	return ctx.XML(http.StatusOK, set)
}
