package usecase

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tusharelectronics/storefront/internal/config"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Discount struct {
	Enabled    bool
	Percentage float64
}

type Product struct {
	ID             uuid.UUID
	CategoryID     uuid.UUID
	Name           string
	Slug           string
	Description    string
	Price          float64
	Images         []ImageRef
	Tags           []string
	SKU            string
	Status         string
	Discount       Discount
	Specifications Specifications
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Category *Category
}

// FinalPrice applies an enabled discount, rounded to two decimals.
func (p Product) FinalPrice() float64 {
	if !p.Discount.Enabled || p.Discount.Percentage <= 0 {
		return p.Price
	}
	return math.Round(p.Price*(100-p.Discount.Percentage)) / 100
}

type ListProductsOption struct {
	Skip  int
	Limit int
	// Search is a full text query, results are ranked by relevance.
	Search string
	// NameContains is a case-insensitive substring match on name.
	NameContains    string
	CategoryID      uuid.UUID
	Status          string
	IDs             uuid.UUIDs
	ExcludeID       uuid.UUID
	SortBy          string
	SortIn          string
	IncludeCategory bool
}

type AdminProductsOption struct {
	Page       int
	Search     string
	CategoryID uuid.UUID
	Status     string
}

// ListProducts is the admin listing, newest first.
func (u Usecase) ListProducts(ctx context.Context, opt AdminProductsOption) ([]Product, int, error) {
	skip, limit := Paginate(opt.Page, config.PAGE_SIZE_ADMIN_PRODUCTS)
	return u.repo.ListProducts(ctx, ListProductsOption{
		Skip:            skip,
		Limit:           limit,
		Search:          opt.Search,
		CategoryID:      opt.CategoryID,
		Status:          opt.Status,
		IncludeCategory: true,
	})
}

type StorefrontProductsOption struct {
	Page         int
	Search       string
	CategorySlug string
}

// ListStorefrontProducts lists active products. An unknown category slug
// yields an empty result rather than an error.
func (u Usecase) ListStorefrontProducts(ctx context.Context, opt StorefrontProductsOption) ([]Product, int, error) {
	skip, limit := Paginate(opt.Page, config.PAGE_SIZE_STOREFRONT_PRODUCTS)
	lopt := ListProductsOption{
		Skip:            skip,
		Limit:           limit,
		Search:          strings.TrimSpace(opt.Search),
		Status:          StatusActive,
		IncludeCategory: true,
	}

	if opt.CategorySlug != "" {
		c, err := u.repo.GetCategoryBySlug(ctx, opt.CategorySlug)
		if err != nil {
			if isNotFound(err) {
				return []Product{}, 0, nil
			}
			return nil, 0, err
		}
		lopt.CategoryID = c.ID
	}

	return u.repo.ListProducts(ctx, lopt)
}

func (u Usecase) GetProductByID(ctx context.Context, id uuid.UUID) (Product, error) {
	return u.repo.GetProductByID(ctx, id)
}

// GetProductDetail returns an active product by slug with up to four active
// products from the same category.
func (u Usecase) GetProductDetail(ctx context.Context, slug string) (Product, []Product, error) {
	p, err := u.repo.GetProductBySlug(ctx, slug)
	if err != nil {
		return Product{}, nil, err
	}
	if p.Status != StatusActive {
		return Product{}, nil, ErrNotFound{ID: p.ID, Code: "PRODUCT_NOT_FOUND", Message: "product not found"}
	}

	related, _, err := u.repo.ListProducts(ctx, ListProductsOption{
		Limit:      4,
		CategoryID: p.CategoryID,
		Status:     StatusActive,
		ExcludeID:  p.ID,
	})
	if err != nil {
		u.logger.WarnContext(ctx, "err_GetProductDetail_repo.ListProducts", slog.String("err", err.Error()))
		related = []Product{}
	}
	return p, related, nil
}

func (u Usecase) validateProduct(ctx context.Context, p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrValidation{Field: "name", Code: CodeRequired, Message: "name is required"}
	}
	if p.Slug == "" {
		return ErrValidation{Field: "name", Code: CodeInvalid, Message: "name must contain at least one letter or digit"}
	}
	if p.Price < 0 {
		return ErrValidation{Field: "price", Code: CodeInvalid, Message: "price must not be negative"}
	}
	if p.Status != StatusActive && p.Status != StatusInactive {
		return ErrValidation{Field: "status", Code: CodeInvalid, Message: "status must be active or inactive"}
	}
	if p.CategoryID == uuid.Nil {
		return ErrValidation{Field: "category_id", Code: CodeRequired, Message: "category is required"}
	}
	if _, err := u.repo.GetCategoryByID(ctx, p.CategoryID); err != nil {
		if isNotFound(err) {
			return ErrValidation{Field: "category_id", Code: CodeInvalid, Message: "category does not exist"}
		}
		return err
	}
	return nil
}

func clampDiscount(d Discount) Discount {
	d.Percentage = max(0, min(100, d.Percentage))
	return d
}

// CreateProduct stores the images, then the record. If the record cannot be
// persisted the stored images are removed again.
func (u Usecase) CreateProduct(ctx context.Context, p Product, images []Upload) (Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Slug = GenerateSlug(p.Name)
	if p.Status == "" {
		p.Status = StatusActive
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.Discount = clampDiscount(p.Discount)

	if err := u.validateProduct(ctx, p); err != nil {
		return Product{}, err
	}

	refs, err := u.storeUploads(ctx, AssetProducts, images, maxProductImages)
	if err != nil {
		return Product{}, err
	}
	p.Images = refs

	created, err := u.repo.CreateProduct(ctx, p)
	if err != nil {
		u.logger.ErrorContext(ctx, "err_CreateProduct_repo.CreateProduct", slog.String("err", err.Error()))
		u.removeImages(ctx, refs)
		return Product{}, err
	}
	return created, nil
}

// UpdateProductRequest carries a partial update. A nil field keeps the
// stored value, a non-nil empty value clears it.
type UpdateProductRequest struct {
	Name           *string
	CategoryID     *uuid.UUID
	Description    *string
	Price          *float64
	SKU            *string
	Tags           *[]string
	Status         *string
	Discount       *Discount
	Specifications *string
	// Images are appended to the existing list.
	Images []Upload
}

func (u Usecase) UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (Product, error) {
	p, err := u.repo.GetProductByID(ctx, id)
	if err != nil {
		return Product{}, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
		p.Slug = GenerateSlug(p.Name)
	}
	if req.CategoryID != nil {
		p.CategoryID = *req.CategoryID
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.SKU != nil {
		p.SKU = strings.TrimSpace(*req.SKU)
	}
	if req.Tags != nil {
		p.Tags = *req.Tags
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.Discount != nil {
		p.Discount = clampDiscount(*req.Discount)
	}
	if req.Specifications != nil {
		p.Specifications = ParseSpecifications(*req.Specifications)
	}

	if err := u.validateProduct(ctx, p); err != nil {
		return Product{}, err
	}

	added, err := u.storeUploads(ctx, AssetProducts, req.Images, maxProductImages)
	if err != nil {
		return Product{}, err
	}
	p.Images = appendImages(p.Images, added)

	updated, err := u.repo.UpdateProduct(ctx, p)
	if err != nil {
		u.logger.ErrorContext(ctx, "err_UpdateProduct_repo.UpdateProduct",
			slog.String("id", id.String()),
			slog.String("err", err.Error()))
		u.removeImages(ctx, added)
		return Product{}, err
	}
	return updated, nil
}

// DeleteProduct removes the product images and then the record. Deleting a
// product that does not exist succeeds.
func (u Usecase) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	p, err := u.repo.GetProductByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}

	u.removeImages(ctx, p.Images)

	if err := u.repo.DeleteProduct(ctx, id); err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	return nil
}

// DeleteProductImage drops ref from the product, persists, and only then
// removes the file. A ref the product does not hold is a no-op.
func (u Usecase) DeleteProductImage(ctx context.Context, id uuid.UUID, ref ImageRef) error {
	p, err := u.repo.GetProductByID(ctx, id)
	if err != nil {
		return err
	}

	i := slices.Index(p.Images, ref)
	if i < 0 {
		return nil
	}
	p.Images = slices.Delete(slices.Clone(p.Images), i, i+1)

	if _, err := u.repo.UpdateProduct(ctx, p); err != nil {
		return err
	}

	u.removeImages(ctx, []ImageRef{ref})
	return nil
}
