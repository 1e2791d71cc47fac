package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

type Home struct {
	Banners      []Banner
	Categories   []Category
	Products     []Product
	Articles     []Article
	Testimonials []Testimonial
}

// GetHome loads every home page section concurrently. A section that fails
// to load is logged and rendered empty.
func (u Usecase) GetHome(ctx context.Context) Home {
	h := Home{
		Banners:      []Banner{},
		Categories:   []Category{},
		Products:     []Product{},
		Articles:     []Article{},
		Testimonials: []Testimonial{},
	}

	var g errgroup.Group
	g.Go(func() error {
		list, _, err := u.repo.ListBanners(ctx, ListBannersOption{Status: StatusActive, Limit: 10})
		if u.logSectionErr(ctx, "banners", err) {
			h.Banners = list
		}
		return nil
	})
	g.Go(func() error {
		list, _, err := u.repo.ListCategories(ctx, ListCategoriesOption{Status: StatusActive, Limit: 8})
		if u.logSectionErr(ctx, "categories", err) {
			h.Categories = list
		}
		return nil
	})
	g.Go(func() error {
		list, _, err := u.repo.ListProducts(ctx, ListProductsOption{Status: StatusActive, Limit: 8, IncludeCategory: true})
		if u.logSectionErr(ctx, "products", err) {
			h.Products = list
		}
		return nil
	})
	g.Go(func() error {
		list, _, err := u.repo.ListArticles(ctx, ListArticlesOption{Status: ArticlePublished, Limit: 3})
		if u.logSectionErr(ctx, "articles", err) {
			h.Articles = list
		}
		return nil
	})
	g.Go(func() error {
		list, _, err := u.repo.ListTestimonials(ctx, ListTestimonialsOption{Status: StatusActive, Limit: 6})
		if u.logSectionErr(ctx, "testimonials", err) {
			h.Testimonials = list
		}
		return nil
	})
	_ = g.Wait()

	return h
}

func (u Usecase) logSectionErr(ctx context.Context, section string, err error) bool {
	if err != nil {
		u.logger.WarnContext(ctx, "err_GetHome_section",
			slog.String("section", section),
			slog.String("err", err.Error()))
		return false
	}
	return true
}

type SearchSuggestions struct {
	Products   []Product
	Categories []Category
}

const minSuggestionQuery = 2

// GetSearchSuggestions matches active products and categories whose name
// contains q, case-insensitively. Queries shorter than two characters
// return nothing.
func (u Usecase) GetSearchSuggestions(ctx context.Context, q string) (SearchSuggestions, error) {
	s := SearchSuggestions{Products: []Product{}, Categories: []Category{}}
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < minSuggestionQuery {
		return s, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, _, err := u.repo.ListProducts(gctx, ListProductsOption{
			Status:          StatusActive,
			NameContains:    q,
			Limit:           5,
			IncludeCategory: true,
		})
		if err == nil {
			s.Products = list
		}
		return err
	})
	g.Go(func() error {
		list, _, err := u.repo.ListCategories(gctx, ListCategoriesOption{
			Status:       StatusActive,
			NameContains: q,
			Limit:        5,
		})
		if err == nil {
			s.Categories = list
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return SearchSuggestions{}, err
	}
	return s, nil
}

type SitemapEntry struct {
	Path       string
	ChangeFreq string
	Priority   string
	LastMod    time.Time
}

// GetSitemap lists the storefront pages and every active product, category
// and published article.
func (u Usecase) GetSitemap(ctx context.Context) ([]SitemapEntry, error) {
	var (
		products   []Product
		categories []Category
		articles   []Article
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, _, err = u.repo.ListProducts(gctx, ListProductsOption{Status: StatusActive})
		return err
	})
	g.Go(func() (err error) {
		categories, _, err = u.repo.ListCategories(gctx, ListCategoriesOption{Status: StatusActive})
		return err
	})
	g.Go(func() (err error) {
		articles, _, err = u.repo.ListArticles(gctx, ListArticlesOption{Status: ArticlePublished})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := []SitemapEntry{
		{Path: "/", ChangeFreq: "daily", Priority: "1.0"},
		{Path: "/products", ChangeFreq: "daily", Priority: "0.9"},
		{Path: "/blog", ChangeFreq: "weekly", Priority: "0.8"},
		{Path: "/about", ChangeFreq: "monthly", Priority: "0.7"},
		{Path: "/contact", ChangeFreq: "monthly", Priority: "0.7"},
	}
	for _, p := range products {
		entries = append(entries, SitemapEntry{Path: "/product/" + p.Slug, ChangeFreq: "weekly", Priority: "0.8", LastMod: p.UpdatedAt})
	}
	for _, c := range categories {
		entries = append(entries, SitemapEntry{Path: "/category/" + c.Slug, ChangeFreq: "weekly", Priority: "0.8", LastMod: c.UpdatedAt})
	}
	for _, a := range articles {
		entries = append(entries, SitemapEntry{Path: "/article/" + a.Slug, ChangeFreq: "monthly", Priority: "0.7", LastMod: a.UpdatedAt})
	}
	return entries, nil
}
