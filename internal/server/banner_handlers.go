package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tusharelectronics/storefront/internal/usecase"
)

type Banner struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle,omitempty"`
	Image     string `json:"image"`
	Color     string `json:"color,omitempty"`
	Link      string `json:"link,omitempty"`
	Status    string `json:"status"`
	Order     int    `json:"order"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func newBannerRes(b usecase.Banner) Banner {
	return Banner{
		ID:        b.ID.String(),
		Title:     b.Title,
		Subtitle:  b.Subtitle,
		Image:     string(b.Image),
		Color:     b.Color,
		Link:      b.Link,
		Status:    b.Status,
		Order:     b.Order,
		CreatedAt: formatTime(b.CreatedAt),
		UpdatedAt: formatTime(b.UpdatedAt),
	}
}

func newBannerList(list []usecase.Banner) []Banner {
	out := make([]Banner, 0, len(list))
	for _, b := range list {
		out = append(out, newBannerRes(b))
	}
	return out
}

type ListBannersRequest struct {
	Skip   int    `query:"skip" validate:"omitempty,min=0"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Status string `query:"status" validate:"omitempty,oneof=active inactive"`
}

func (s *Server) ListBanners(ctx echo.Context) error {
	var req ListBannersRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}

	banners, total, err := s.server.ListBanners(ctx.Request().Context(), usecase.ListBannersOption{
		Skip:   req.Skip,
		Limit:  req.Limit,
		Status: req.Status,
	})
	if err != nil {
		return s.errorResponse(ctx, "ListBanners", err, nil)
	}
	return ctx.JSON(http.StatusOK, Res{
		Data: newBannerList(banners),
		Meta: &Meta{Total: total, Skip: req.Skip, Limit: req.Limit},
	})
}

func (s *Server) GetBannerByID(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return s.errorResponse(ctx, "GetBannerByID", err, nil)
	}

	b, err := s.server.GetBannerByID(ctx.Request().Context(), id)
	if err != nil {
		return s.errorResponse(ctx, "GetBannerByID", err, nil)
	}
	return ctx.JSON(http.StatusOK, Res{Data: newBannerRes(b)})
}

func (s *Server) CreateBanner(ctx echo.Context) error {
	f, err := readForm(ctx)
	if err != nil {
		return s.errorResponse(ctx, "CreateBanner", err, nil)
	}
	image, err := f.upload("image")
	if err != nil {
		return s.errorResponse(ctx, "CreateBanner", err, f.submitted())
	}
	order, err := f.int("order")
	if err != nil {
		return s.errorResponse(ctx, "CreateBanner", err, f.submitted())
	}

	b, err := s.server.CreateBanner(ctx.Request().Context(), usecase.Banner{
		Title:    f.get("title"),
		Subtitle: f.get("subtitle"),
		Link:     f.get("link"),
		Status:   f.get("status"),
		Order:    order,
	}, image)
	if err != nil {
		return s.errorResponse(ctx, "CreateBanner", err, f.submitted())
	}
	return ctx.JSON(http.StatusCreated, Res{Data: newBannerRes(b), Message: "Banner created successfully"})
}

func (s *Server) UpdateBanner(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return s.errorResponse(ctx, "UpdateBanner", err, nil)
	}
	f, err := readForm(ctx)
	if err != nil {
		return s.errorResponse(ctx, "UpdateBanner", err, nil)
	}
	image, err := f.upload("image")
	if err != nil {
		return s.errorResponse(ctx, "UpdateBanner", err, f.submitted())
	}

	req := usecase.UpdateBannerRequest{
		Title:    f.optional("title"),
		Subtitle: f.optional("subtitle"),
		Link:     f.optional("link"),
		Status:   f.optional("status"),
		Image:    image,
	}
	if f.has("order") {
		order, err := f.int("order")
		if err != nil {
			return s.errorResponse(ctx, "UpdateBanner", err, f.submitted())
		}
		req.Order = &order
	}

	b, err := s.server.UpdateBanner(ctx.Request().Context(), id, req)
	if err != nil {
		return s.errorResponse(ctx, "UpdateBanner", err, f.submitted())
	}
	return ctx.JSON(http.StatusOK, Res{Data: newBannerRes(b), Message: "Banner updated successfully"})
}

func (s *Server) DeleteBanner(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return s.errorResponse(ctx, "DeleteBanner", err, nil)
	}
	if err := s.server.DeleteBanner(ctx.Request().Context(), id); err != nil {
		return s.errorResponse(ctx, "DeleteBanner", err, nil)
	}
	return ctx.JSON(http.StatusOK, Res{Message: "Banner deleted successfully"})
}
