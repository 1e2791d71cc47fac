package server

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tusharelectronics/storefront/internal/config"
	"github.com/tusharelectronics/storefront/internal/usecase"
)

type Specification struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Discount struct {
	Enabled    bool    `json:"enabled"`
	Percentage float64 `json:"percentage"`
}

type Product struct {
	ID                 string          `json:"id"`
	CategoryID         string          `json:"category_id"`
	Name               string          `json:"name"`
	Slug               string          `json:"slug"`
	Description        string          `json:"description"`
	Price              float64         `json:"price"`
	FinalPrice         float64         `json:"final_price"`
	Images             []string        `json:"images"`
	Tags               []string        `json:"tags"`
	SKU                string          `json:"sku,omitempty"`
	Status             string          `json:"status"`
	Discount           Discount        `json:"discount"`
	Specifications     []Specification `json:"specifications"`
	SpecificationsText string          `json:"specifications_text"`
	CreatedAt          string          `json:"created_at"`
	UpdatedAt          string          `json:"updated_at"`
	Category           *Category       `json:"category,omitempty"`
}

func newProductRes(p usecase.Product) Product {
	res := Product{
		ID:                 p.ID.String(),
		CategoryID:         p.CategoryID.String(),
		Name:               p.Name,
		Slug:               p.Slug,
		Description:        p.Description,
		Price:              p.Price,
		FinalPrice:         p.FinalPrice(),
		Images:             make([]string, 0, len(p.Images)),
		Tags:               p.Tags,
		SKU:                p.SKU,
		Status:             p.Status,
		Discount:           Discount(p.Discount),
		Specifications:     make([]Specification, 0, len(p.Specifications)),
		SpecificationsText: p.Specifications.Text(),
		CreatedAt:          formatTime(p.CreatedAt),
		UpdatedAt:          formatTime(p.UpdatedAt),
	}
	if res.Tags == nil {
		res.Tags = []string{}
	}
	for _, img := range p.Images {
		res.Images = append(res.Images, string(img))
	}
	for _, sp := range p.Specifications {
		res.Specifications = append(res.Specifications, Specification(sp))
	}
	if p.Category != nil {
		c := newCategoryRes(*p.Category)
		res.Category = &c
	}
	return res
}

func newProductList(list []usecase.Product) []Product {
	out := make([]Product, 0, len(list))
	for _, p := range list {
		out = append(out, newProductRes(p))
	}
	return out
}

type ListProductsRequest struct {
	Page       int    `query:"page" validate:"omitempty,min=1"`
	Search     string `query:"search"`
	CategoryID string `query:"category_id" validate:"omitempty,uuid"`
	Status     string `query:"status" validate:"omitempty,oneof=active inactive"`
}

func (s *Server) ListProducts(ctx echo.Context) error {
	var req ListProductsRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}

	opt := usecase.AdminProductsOption{
		Page:   req.Page,
		Search: req.Search,
		Status: req.Status,
	}
	if req.CategoryID != "" {
		opt.CategoryID, _ = uuid.Parse(req.CategoryID)
	}

	products, total, err := s.server.ListProducts(ctx.Request().Context(), opt)
	if err != nil {
		return s.errorResponse(ctx, "ListProducts", err, nil)
	}

	return ctx.JSON(http.StatusOK, Res{
		Data: newProductList(products),
		Meta: pageMeta(total, req.Page, config.PAGE_SIZE_ADMIN_PRODUCTS),
	})
}

func (s *Server) GetProductByID(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return s.errorResponse(ctx, "GetProductByID", err, nil)
	}

	p, err := s.server.GetProductByID(ctx.Request().Context(), id)
	if err != nil {
		return s.errorResponse(ctx, "GetProductByID", err, nil)
	}
	return ctx.JSON(http.StatusOK, Res{Data: newProductRes(p)})
}

func productFromForm(f formData) (usecase.Product, error) {
	categoryID, err := f.uuid("category_id")
	if err != nil {
		return usecase.Product{}, err
	}
	price, err := f.float("price")
	if err != nil {
		return usecase.Product{}, err
	}
	pct, err := f.float("discount_percentage")
	if err != nil {
		return usecase.Product{}, err
	}

	return usecase.Product{
		CategoryID:     categoryID,
		Name:           f.get("name"),
		Description:    f.get("description"),
		Price:          price,
		SKU:            f.get("sku"),
		Tags:           usecase.ParseTags(f.get("tags")),
		Status:         f.get("status"),
		Discount:       usecase.Discount{Enabled: f.bool("discount_enabled"), Percentage: pct},
		Specifications: usecase.ParseSpecifications(f.values.Get("specifications")),
	}, nil
}

// CreateProduct takes a multipart form with up to ten files under "images".
func (s *Server) CreateProduct(ctx echo.Context) error {
	f, err := readForm(ctx)
	if err != nil {
		return s.errorResponse(ctx, "CreateProduct", err, nil)
	}

	p, err := productFromForm(f)
	if err != nil {
		return s.errorResponse(ctx, "CreateProduct", err, f.submitted())
	}

	created, err := s.server.CreateProduct(ctx.Request().Context(), p, f.uploads("images"))
	if err != nil {
		return s.errorResponse(ctx, "CreateProduct", err, f.submitted())
	}
	return ctx.JSON(http.StatusCreated, Res{Data: newProductRes(created), Message: "Product created successfully"})
}

func productUpdateFromForm(f formData) (usecase.UpdateProductRequest, error) {
	req := usecase.UpdateProductRequest{
		Name:           f.optional("name"),
		Description:    f.optional("description"),
		SKU:            f.optional("sku"),
		Status:         f.optional("status"),
		Specifications: f.optional("specifications"),
		Images:         f.uploads("images"),
	}

	if f.has("category_id") {
		id, err := f.uuid("category_id")
		if err != nil {
			return req, err
		}
		req.CategoryID = &id
	}
	if f.has("price") {
		price, err := f.float("price")
		if err != nil {
			return req, err
		}
		req.Price = &price
	}
	if f.has("tags") {
		tags := usecase.ParseTags(f.get("tags"))
		req.Tags = &tags
	}
	// The checkbox is omitted when unticked, so the percentage field marks
	// that the discount section was submitted.
	if f.has("discount_percentage") || f.has("discount_enabled") {
		pct, err := f.float("discount_percentage")
		if err != nil {
			return req, err
		}
		req.Discount = &usecase.Discount{Enabled: f.bool("discount_enabled"), Percentage: pct}
	}
	return req, nil
}

// UpdateProduct applies the fields present in the form; new files under
// "images" are appended to the existing ones.
func (s *Server) UpdateProduct(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return s.errorResponse(ctx, "UpdateProduct", err, nil)
	}
	f, err := readForm(ctx)
	if err != nil {
		return s.errorResponse(ctx, "UpdateProduct", err, nil)
	}

	req, err := productUpdateFromForm(f)
	if err != nil {
		return s.errorResponse(ctx, "UpdateProduct", err, f.submitted())
	}

	p, err := s.server.UpdateProduct(ctx.Request().Context(), id, req)
	if err != nil {
		return s.errorResponse(ctx, "UpdateProduct", err, f.submitted())
	}
	return ctx.JSON(http.StatusOK, Res{Data: newProductRes(p), Message: "Product updated successfully"})
}

func (s *Server) DeleteProduct(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return s.errorResponse(ctx, "DeleteProduct", err, nil)
	}
	if err := s.server.DeleteProduct(ctx.Request().Context(), id); err != nil {
		return s.errorResponse(ctx, "DeleteProduct", err, nil)
	}
	return ctx.JSON(http.StatusOK, Res{Message: "Product deleted successfully"})
}

type DeleteProductImageRequest struct {
	ID    string `param:"id" validate:"required,uuid"`
	Image string `json:"image" query:"image" form:"image" validate:"required"`
}

type DeleteProductImageRes struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// DeleteProductImage always answers with a success flag so the admin page
// can update in place.
func (s *Server) DeleteProductImage(ctx echo.Context) error {
	var req DeleteProductImageRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusOK, DeleteProductImageRes{Error: err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(http.StatusOK, DeleteProductImageRes{Error: err.Error()})
	}

	id, _ := uuid.Parse(req.ID)
	if err := s.server.DeleteProductImage(ctx.Request().Context(), id, usecase.ImageRef(req.Image)); err != nil {
		status, _ := errorStatus(err)
		msg := err.Error()
		if status == http.StatusInternalServerError {
			s.logger.ErrorContext(ctx.Request().Context(), "err_DeleteProductImage", slog.String("err", err.Error()))
			if !config.IsDebug() {
				msg = genericErrorMessage
			}
		}
		return ctx.JSON(http.StatusOK, DeleteProductImageRes{Error: msg})
	}
	return ctx.JSON(http.StatusOK, DeleteProductImageRes{Success: true})
}
