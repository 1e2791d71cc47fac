package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tusharelectronics/storefront/internal/config"
)

const (
	ArticlePublished = "published"
	ArticleDraft     = "draft"

	defaultArticleCategory = "general"
	excerptLength          = 150
)

type Article struct {
	ID        uuid.UUID
	Title     string
	Slug      string
	Content   string
	Excerpt   string
	Image     ImageRef
	Tags      []string
	Category  string
	Status    string
	Views     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ListArticlesOption struct {
	Skip     int
	Limit    int
	Search   string
	Status   string
	Category string
	// RelatedCategory and RelatedTags match articles sharing the category
	// or any of the tags.
	RelatedCategory string
	RelatedTags     []string
	ExcludeID       uuid.UUID
	SortBy          string
	SortIn          string
}

type AdminArticlesOption struct {
	Page   int
	Search string
	Status string
}

func (u Usecase) ListArticles(ctx context.Context, opt AdminArticlesOption) ([]Article, int, error) {
	skip, limit := Paginate(opt.Page, config.PAGE_SIZE_ADMIN_ARTICLES)
	return u.repo.ListArticles(ctx, ListArticlesOption{
		Skip:   skip,
		Limit:  limit,
		Search: strings.TrimSpace(opt.Search),
		Status: opt.Status,
	})
}

type Blog struct {
	Articles   []Article
	Total      int
	Categories []string
}

// ListBlog pages through published articles. An empty category or "all"
// disables the filter.
func (u Usecase) ListBlog(ctx context.Context, page int, category string) (Blog, error) {
	if category == "all" {
		category = ""
	}
	skip, limit := Paginate(page, config.PAGE_SIZE_BLOG)

	var blog Blog
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, total, err := u.repo.ListArticles(gctx, ListArticlesOption{
			Skip:     skip,
			Limit:    limit,
			Status:   ArticlePublished,
			Category: category,
		})
		blog.Articles, blog.Total = list, total
		return err
	})
	g.Go(func() error {
		cats, err := u.repo.ListArticleCategories(gctx)
		blog.Categories = cats
		return err
	})
	if err := g.Wait(); err != nil {
		return Blog{}, err
	}
	return blog, nil
}

func (u Usecase) GetArticleByID(ctx context.Context, id uuid.UUID) (Article, error) {
	return u.repo.GetArticleByID(ctx, id)
}

// ViewArticle counts a view of a published article and returns the three
// most viewed related articles.
func (u Usecase) ViewArticle(ctx context.Context, slug string) (Article, []Article, error) {
	a, err := u.repo.GetArticleBySlug(ctx, slug)
	if err != nil {
		return Article{}, nil, err
	}
	if a.Status != ArticlePublished {
		return Article{}, nil, ErrNotFound{ID: a.ID, Code: "ARTICLE_NOT_FOUND", Message: "article not found"}
	}

	if err := u.repo.IncrementArticleViews(ctx, a.ID); err != nil {
		u.logger.WarnContext(ctx, "err_ViewArticle_repo.IncrementArticleViews", slog.String("err", err.Error()))
	} else {
		a.Views++
	}

	related, _, err := u.repo.ListArticles(ctx, ListArticlesOption{
		Limit:           3,
		Status:          ArticlePublished,
		RelatedCategory: a.Category,
		RelatedTags:     a.Tags,
		ExcludeID:       a.ID,
		SortBy:          "views",
		SortIn:          "desc",
	})
	if err != nil {
		u.logger.WarnContext(ctx, "err_ViewArticle_repo.ListArticles", slog.String("err", err.Error()))
		related = []Article{}
	}
	return a, related, nil
}

func normalizeArticle(a *Article) error {
	a.Title = strings.TrimSpace(a.Title)
	a.Slug = GenerateSlug(a.Title)
	a.Category = strings.TrimSpace(a.Category)
	if a.Category == "" {
		a.Category = defaultArticleCategory
	}
	if strings.TrimSpace(a.Excerpt) == "" {
		a.Excerpt = Truncate(a.Content, excerptLength)
	}
	if a.Status == "" {
		a.Status = ArticleDraft
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}

	switch {
	case a.Title == "":
		return ErrValidation{Field: "title", Code: CodeRequired, Message: "title is required"}
	case a.Slug == "":
		return ErrValidation{Field: "title", Code: CodeInvalid, Message: "title must contain at least one letter or digit"}
	case strings.TrimSpace(a.Content) == "":
		return ErrValidation{Field: "content", Code: CodeRequired, Message: "content is required"}
	case a.Status != ArticlePublished && a.Status != ArticleDraft:
		return ErrValidation{Field: "status", Code: CodeInvalid, Message: "status must be published or draft"}
	}
	return nil
}

func (u Usecase) CreateArticle(ctx context.Context, a Article, image *Upload) (Article, error) {
	if err := normalizeArticle(&a); err != nil {
		return Article{}, err
	}

	ref, err := u.storeUpload(ctx, AssetArticles, image)
	if err != nil {
		return Article{}, err
	}
	a.Image = ref

	created, err := u.repo.CreateArticle(ctx, a)
	if err != nil {
		u.logger.ErrorContext(ctx, "err_CreateArticle_repo.CreateArticle", slog.String("err", err.Error()))
		u.removeImages(ctx, []ImageRef{ref})
		return Article{}, err
	}
	return created, nil
}

type UpdateArticleRequest struct {
	Title    *string
	Content  *string
	Excerpt  *string
	Tags     *[]string
	Category *string
	Status   *string
	Image    *Upload
}

func (u Usecase) UpdateArticle(ctx context.Context, id uuid.UUID, req UpdateArticleRequest) (Article, error) {
	a, err := u.repo.GetArticleByID(ctx, id)
	if err != nil {
		return Article{}, err
	}

	if req.Title != nil {
		a.Title = *req.Title
	}
	if req.Content != nil {
		a.Content = *req.Content
	}
	if req.Excerpt != nil {
		// an emptied excerpt is derived from the content again
		a.Excerpt = *req.Excerpt
	}
	if req.Tags != nil {
		a.Tags = *req.Tags
	}
	if req.Category != nil {
		a.Category = *req.Category
	}
	if req.Status != nil {
		a.Status = *req.Status
	}
	if err := normalizeArticle(&a); err != nil {
		return Article{}, err
	}

	ref, err := u.storeUpload(ctx, AssetArticles, req.Image)
	if err != nil {
		return Article{}, err
	}
	prior := a.Image
	if ref != "" {
		a.Image = ref
	}

	updated, err := u.repo.UpdateArticle(ctx, a)
	if err != nil {
		u.logger.ErrorContext(ctx, "err_UpdateArticle_repo.UpdateArticle",
			slog.String("id", id.String()),
			slog.String("err", err.Error()))
		u.removeImages(ctx, []ImageRef{ref})
		return Article{}, err
	}

	u.removeImages(ctx, replacedImage(prior, ref))
	return updated, nil
}

func (u Usecase) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	a, err := u.repo.GetArticleByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}

	u.removeImages(ctx, []ImageRef{a.Image})

	if err := u.repo.DeleteArticle(ctx, id); err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	return nil
}
