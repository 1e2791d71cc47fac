package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tusharelectronics/storefront/internal/config"
	"github.com/tusharelectronics/storefront/internal/usecase"
)

type Article struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Slug      string   `json:"slug"`
	Content   string   `json:"content,omitempty"`
	Excerpt   string   `json:"excerpt"`
	Image     string   `json:"image,omitempty"`
	Tags      []string `json:"tags"`
	Category  string   `json:"category"`
	Status    string   `json:"status"`
	Views     int      `json:"views"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

func newArticleRes(a usecase.Article) Article {
	res := Article{
		ID:        a.ID.String(),
		Title:     a.Title,
		Slug:      a.Slug,
		Content:   a.Content,
		Excerpt:   a.Excerpt,
		Image:     string(a.Image),
		Tags:      a.Tags,
		Category:  a.Category,
		Status:    a.Status,
		Views:     a.Views,
		CreatedAt: formatTime(a.CreatedAt),
		UpdatedAt: formatTime(a.UpdatedAt),
	}
	if res.Tags == nil {
		res.Tags = []string{}
	}
	return res
}

// newArticleList drops the body; listings only show the excerpt.
func newArticleList(list []usecase.Article) []Article {
	out := make([]Article, 0, len(list))
	for _, a := range list {
		res := newArticleRes(a)
		res.Content = ""
		out = append(out, res)
	}
	return out
}

type ListArticlesRequest struct {
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Search string `query:"search"`
	Status string `query:"status" validate:"omitempty,oneof=published draft"`
}

func (s *Server) ListArticles(ctx echo.Context) error {
	var req ListArticlesRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}

	articles, total, err := s.server.ListArticles(ctx.Request().Context(), usecase.AdminArticlesOption{
		Page:   req.Page,
		Search: req.Search,
		Status: req.Status,
	})
	if err != nil {
		return s.errorResponse(ctx, "ListArticles", err, nil)
	}

	return ctx.JSON(http.StatusOK, Res{
		Data: newArticleList(articles),
		Meta: pageMeta(total, req.Page, config.PAGE_SIZE_ADMIN_ARTICLES),
	})
}

func (s *Server) GetArticleByID(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return s.errorResponse(ctx, "GetArticleByID", err, nil)
	}

	a, err := s.server.GetArticleByID(ctx.Request().Context(), id)
	if err != nil {
		return s.errorResponse(ctx, "GetArticleByID", err, nil)
	}
	return ctx.JSON(http.StatusOK, Res{Data: newArticleRes(a)})
}

func (s *Server) CreateArticle(ctx echo.Context) error {
	f, err := readForm(ctx)
	if err != nil {
		return s.errorResponse(ctx, "CreateArticle", err, nil)
	}
	image, err := f.upload("image")
	if err != nil {
		return s.errorResponse(ctx, "CreateArticle", err, f.submitted())
	}

	a, err := s.server.CreateArticle(ctx.Request().Context(), usecase.Article{
		Title:    f.get("title"),
		Content:  f.values.Get("content"),
		Excerpt:  f.get("excerpt"),
		Tags:     usecase.ParseTags(f.get("tags")),
		Category: f.get("category"),
		Status:   f.get("status"),
	}, image)
	if err != nil {
		return s.errorResponse(ctx, "CreateArticle", err, f.submitted())
	}
	return ctx.JSON(http.StatusCreated, Res{Data: newArticleRes(a), Message: "Article created successfully"})
}

func (s *Server) UpdateArticle(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return s.errorResponse(ctx, "UpdateArticle", err, nil)
	}
	f, err := readForm(ctx)
	if err != nil {
		return s.errorResponse(ctx, "UpdateArticle", err, nil)
	}
	image, err := f.upload("image")
	if err != nil {
		return s.errorResponse(ctx, "UpdateArticle", err, f.submitted())
	}

	req := usecase.UpdateArticleRequest{
		Title:    f.optional("title"),
		Content:  f.optional("content"),
		Excerpt:  f.optional("excerpt"),
		Category: f.optional("category"),
		Status:   f.optional("status"),
		Image:    image,
	}
	if f.has("tags") {
		tags := usecase.ParseTags(f.get("tags"))
		req.Tags = &tags
	}

	a, err := s.server.UpdateArticle(ctx.Request().Context(), id, req)
	if err != nil {
		return s.errorResponse(ctx, "UpdateArticle", err, f.submitted())
	}
	return ctx.JSON(http.StatusOK, Res{Data: newArticleRes(a), Message: "Article updated successfully"})
}

func (s *Server) DeleteArticle(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return s.errorResponse(ctx, "DeleteArticle", err, nil)
	}
	if err := s.server.DeleteArticle(ctx.Request().Context(), id); err != nil {
		return s.errorResponse(ctx, "DeleteArticle", err, nil)
	}
	return ctx.JSON(http.StatusOK, Res{Message: "Article deleted successfully"})
}
