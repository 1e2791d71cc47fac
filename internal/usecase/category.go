package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tusharelectronics/storefront/internal/config"
)

type Category struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Description string
	Image       ImageRef
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	ProductCount int
}

type ListCategoriesOption struct {
	Skip         int
	Limit        int
	Status       string
	NameContains string
}

func (u Usecase) ListCategories(ctx context.Context, opt ListCategoriesOption) ([]Category, int, error) {
	return u.repo.ListCategories(ctx, opt)
}

func (u Usecase) GetCategoryByID(ctx context.Context, id uuid.UUID) (Category, error) {
	return u.repo.GetCategoryByID(ctx, id)
}

// GetCategoryPage returns an active category by slug along with one page of
// its active products.
func (u Usecase) GetCategoryPage(ctx context.Context, slug string, page int) (Category, []Product, int, error) {
	c, err := u.repo.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return Category{}, nil, 0, err
	}
	if c.Status != StatusActive {
		return Category{}, nil, 0, ErrNotFound{ID: c.ID, Code: "CATEGORY_NOT_FOUND", Message: "category not found"}
	}

	skip, limit := Paginate(page, config.PAGE_SIZE_CATEGORY_PRODUCTS)
	products, total, err := u.repo.ListProducts(ctx, ListProductsOption{
		Skip:       skip,
		Limit:      limit,
		CategoryID: c.ID,
		Status:     StatusActive,
	})
	if err != nil {
		return Category{}, nil, 0, err
	}
	return c, products, total, nil
}

func validateCategory(c Category) error {
	if c.Name == "" {
		return ErrValidation{Field: "name", Code: CodeRequired, Message: "name is required"}
	}
	if c.Slug == "" {
		return ErrValidation{Field: "name", Code: CodeInvalid, Message: "name must contain at least one letter or digit"}
	}
	if c.Status != StatusActive && c.Status != StatusInactive {
		return ErrValidation{Field: "status", Code: CodeInvalid, Message: "status must be active or inactive"}
	}
	return nil
}

func (u Usecase) CreateCategory(ctx context.Context, c Category, image *Upload) (Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Slug = GenerateSlug(c.Name)
	if c.Status == "" {
		c.Status = StatusActive
	}
	if err := validateCategory(c); err != nil {
		return Category{}, err
	}

	ref, err := u.storeUpload(ctx, AssetCategories, image)
	if err != nil {
		return Category{}, err
	}
	c.Image = ref

	created, err := u.repo.CreateCategory(ctx, c)
	if err != nil {
		u.logger.ErrorContext(ctx, "err_CreateCategory_repo.CreateCategory", slog.String("err", err.Error()))
		u.removeImages(ctx, []ImageRef{ref})
		return Category{}, err
	}
	return created, nil
}

type UpdateCategoryRequest struct {
	Name        *string
	Description *string
	Status      *string
	Image       *Upload
}

// UpdateCategory persists the new image ref before the replaced file is
// removed, so a failed write never leaves the record pointing at nothing.
func (u Usecase) UpdateCategory(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (Category, error) {
	c, err := u.repo.GetCategoryByID(ctx, id)
	if err != nil {
		return Category{}, err
	}

	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
		c.Slug = GenerateSlug(c.Name)
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Status != nil {
		c.Status = *req.Status
	}
	if err := validateCategory(c); err != nil {
		return Category{}, err
	}

	ref, err := u.storeUpload(ctx, AssetCategories, req.Image)
	if err != nil {
		return Category{}, err
	}
	prior := c.Image
	if ref != "" {
		c.Image = ref
	}

	updated, err := u.repo.UpdateCategory(ctx, c)
	if err != nil {
		u.logger.ErrorContext(ctx, "err_UpdateCategory_repo.UpdateCategory",
			slog.String("id", id.String()),
			slog.String("err", err.Error()))
		u.removeImages(ctx, []ImageRef{ref})
		return Category{}, err
	}

	u.removeImages(ctx, replacedImage(prior, ref))
	return updated, nil
}

// DeleteCategory refuses while any product still belongs to the category.
func (u Usecase) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	c, err := u.repo.GetCategoryByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}

	n, err := u.repo.CountProductsByCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict{
			Code:    "CATEGORY_HAS_PRODUCTS",
			Message: fmt.Sprintf("cannot delete category with existing products (%d)", n),
		}
	}

	u.removeImages(ctx, []ImageRef{c.Image})

	if err := u.repo.DeleteCategory(ctx, id); err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	return nil
}
