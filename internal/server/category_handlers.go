package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tusharelectronics/storefront/internal/usecase"
)

type Category struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description"`
	Image        string `json:"image,omitempty"`
	Status       string `json:"status"`
	ProductCount int    `json:"product_count"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func newCategoryRes(c usecase.Category) Category {
	return Category{
		ID:           c.ID.String(),
		Name:         c.Name,
		Slug:         c.Slug,
		Description:  c.Description,
		Image:        string(c.Image),
		Status:       c.Status,
		ProductCount: c.ProductCount,
		CreatedAt:    formatTime(c.CreatedAt),
		UpdatedAt:    formatTime(c.UpdatedAt),
	}
}

func newCategoryList(list []usecase.Category) []Category {
	out := make([]Category, 0, len(list))
	for _, c := range list {
		out = append(out, newCategoryRes(c))
	}
	return out
}

type ListCategoriesRequest struct {
	Skip   int    `query:"skip" validate:"omitempty,min=0"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Name   string `query:"name"`
	Status string `query:"status" validate:"omitempty,oneof=active inactive"`
}

func (s *Server) ListCategories(ctx echo.Context) error {
	var req ListCategoriesRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}

	categories, total, err := s.server.ListCategories(ctx.Request().Context(), usecase.ListCategoriesOption{
		Skip:         req.Skip,
		Limit:        req.Limit,
		Status:       req.Status,
		NameContains: req.Name,
	})
	if err != nil {
		return s.errorResponse(ctx, "ListCategories", err, nil)
	}

	return ctx.JSON(http.StatusOK, Res{
		Data: newCategoryList(categories),
		Meta: &Meta{Total: total, Skip: req.Skip, Limit: req.Limit},
	})
}

// ListActiveCategories is the storefront navigation list.
func (s *Server) ListActiveCategories(ctx echo.Context) error {
	categories, total, err := s.server.ListCategories(ctx.Request().Context(), usecase.ListCategoriesOption{
		Status: usecase.StatusActive,
	})
	if err != nil {
		return s.errorResponse(ctx, "ListActiveCategories", err, nil)
	}
	return ctx.JSON(http.StatusOK, Res{Data: newCategoryList(categories), Meta: &Meta{Total: total}})
}

func (s *Server) GetCategoryByID(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return s.errorResponse(ctx, "GetCategoryByID", err, nil)
	}

	c, err := s.server.GetCategoryByID(ctx.Request().Context(), id)
	if err != nil {
		return s.errorResponse(ctx, "GetCategoryByID", err, nil)
	}
	return ctx.JSON(http.StatusOK, Res{Data: newCategoryRes(c)})
}

func (s *Server) CreateCategory(ctx echo.Context) error {
	f, err := readForm(ctx)
	if err != nil {
		return s.errorResponse(ctx, "CreateCategory", err, nil)
	}
	image, err := f.upload("image")
	if err != nil {
		return s.errorResponse(ctx, "CreateCategory", err, f.submitted())
	}

	c, err := s.server.CreateCategory(ctx.Request().Context(), usecase.Category{
		Name:        f.get("name"),
		Description: f.get("description"),
		Status:      f.get("status"),
	}, image)
	if err != nil {
		return s.errorResponse(ctx, "CreateCategory", err, f.submitted())
	}
	return ctx.JSON(http.StatusCreated, Res{Data: newCategoryRes(c), Message: "Category created successfully"})
}

func (s *Server) UpdateCategory(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return s.errorResponse(ctx, "UpdateCategory", err, nil)
	}
	f, err := readForm(ctx)
	if err != nil {
		return s.errorResponse(ctx, "UpdateCategory", err, nil)
	}
	image, err := f.upload("image")
	if err != nil {
		return s.errorResponse(ctx, "UpdateCategory", err, f.submitted())
	}

	c, err := s.server.UpdateCategory(ctx.Request().Context(), id, usecase.UpdateCategoryRequest{
		Name:        f.optional("name"),
		Description: f.optional("description"),
		Status:      f.optional("status"),
		Image:       image,
	})
	if err != nil {
		return s.errorResponse(ctx, "UpdateCategory", err, f.submitted())
	}
	return ctx.JSON(http.StatusOK, Res{Data: newCategoryRes(c), Message: "Category updated successfully"})
}

func (s *Server) DeleteCategory(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return s.errorResponse(ctx, "DeleteCategory", err, nil)
	}
	if err := s.server.DeleteCategory(ctx.Request().Context(), id); err != nil {
		return s.errorResponse(ctx, "DeleteCategory", err, nil)
	}
	return ctx.JSON(http.StatusOK, Res{Message: "Category deleted successfully"})
}
