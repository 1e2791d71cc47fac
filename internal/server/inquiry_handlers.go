package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tusharelectronics/storefront/internal/config"
	"github.com/tusharelectronics/storefront/internal/usecase"
)

type InquiryProduct struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Inquiry struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Email      string           `json:"email"`
	Phone      string           `json:"phone"`
	Message    string           `json:"message"`
	Status     string           `json:"status"`
	ProductIDs []string         `json:"product_ids"`
	Products   []InquiryProduct `json:"products,omitempty"`
	CreatedAt  string           `json:"created_at"`
}

func newInquiryRes(in usecase.Inquiry) Inquiry {
	res := Inquiry{
		ID:         in.ID.String(),
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Message:    in.Message,
		Status:     in.Status,
		ProductIDs: in.ProductIDs.Strings(),
		CreatedAt:  formatTime(in.CreatedAt),
	}
	if res.ProductIDs == nil {
		res.ProductIDs = []string{}
	}
	for _, p := range in.Products {
		res.Products = append(res.Products, InquiryProduct{ID: p.ID.String(), Name: p.Name, Slug: p.Slug})
	}
	return res
}

type CreateInquiryRequest struct {
	Name       string   `json:"name" form:"name" validate:"max=255"`
	Email      string   `json:"email" form:"email" validate:"max=255"`
	Phone      string   `json:"phone" form:"phone" validate:"max=50"`
	Message    string   `json:"message" form:"message" validate:"max=5000"`
	ProductIDs []string `json:"product_ids" form:"product_ids" validate:"max=50"`
}

// CreateInquiry stores a customer inquiry. The notification is handed off
// once the response has been written and runs in the background.
func (s *Server) CreateInquiry(ctx echo.Context) error {
	var req CreateInquiryRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, Res{Data: req, Error: usecase.CodeInvalid, Message: err.Error()})
	}

	// Unknown or malformed product ids are dropped, not rejected.
	var ids uuid.UUIDs
	for _, raw := range req.ProductIDs {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}

	created, err := s.server.CreateInquiry(ctx.Request().Context(), usecase.Inquiry{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Message:    req.Message,
		ProductIDs: ids,
	})
	if err != nil {
		return s.errorResponse(ctx, "CreateInquiry", err, req)
	}

	reqCtx := ctx.Request().Context()
	ctx.Response().After(func() {
		s.server.DispatchInquiryNotification(reqCtx, created.ID)
	})

	return ctx.JSON(http.StatusCreated, Res{
		Data:    newInquiryRes(created),
		Message: "Thank you for your inquiry. We will get back to you soon.",
	})
}

type ListInquiriesRequest struct {
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Status string `query:"status" validate:"omitempty,oneof=new contacted closed"`
}

type InquiryListRes struct {
	Inquiries []Inquiry      `json:"inquiries"`
	Stats     map[string]int `json:"stats"`
}

func (s *Server) ListInquiries(ctx echo.Context) error {
	var req ListInquiriesRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}

	list, err := s.server.ListInquiries(ctx.Request().Context(), req.Page, req.Status)
	if err != nil {
		return s.errorResponse(ctx, "ListInquiries", err, nil)
	}

	data := InquiryListRes{
		Inquiries: make([]Inquiry, 0, len(list.Inquiries)),
		Stats:     list.Stats,
	}
	for _, in := range list.Inquiries {
		data.Inquiries = append(data.Inquiries, newInquiryRes(in))
	}
	return ctx.JSON(http.StatusOK, Res{
		Data: data,
		Meta: pageMeta(list.Total, req.Page, config.PAGE_SIZE_INQUIRIES),
	})
}

func (s *Server) GetInquiryByID(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return s.errorResponse(ctx, "GetInquiryByID", err, nil)
	}

	in, err := s.server.GetInquiryByID(ctx.Request().Context(), id)
	if err != nil {
		return s.errorResponse(ctx, "GetInquiryByID", err, nil)
	}
	return ctx.JSON(http.StatusOK, Res{Data: newInquiryRes(in)})
}

type UpdateInquiryStatusRequest struct {
	ID     string `param:"id" validate:"required,uuid"`
	Status string `json:"status" form:"status" validate:"required,oneof=new contacted closed"`
}

func (s *Server) UpdateInquiryStatus(ctx echo.Context) error {
	var req UpdateInquiryStatusRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}

	id, _ := uuid.Parse(req.ID)
	in, err := s.server.UpdateInquiryStatus(ctx.Request().Context(), id, req.Status)
	if err != nil {
		return s.errorResponse(ctx, "UpdateInquiryStatus", err, nil)
	}
	return ctx.JSON(http.StatusOK, Res{Data: newInquiryRes(in), Message: "Inquiry updated successfully"})
}

func (s *Server) DeleteInquiry(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return s.errorResponse(ctx, "DeleteInquiry", err, nil)
	}
	if err := s.server.DeleteInquiry(ctx.Request().Context(), id); err != nil {
		return s.errorResponse(ctx, "DeleteInquiry", err, nil)
	}
	return ctx.JSON(http.StatusOK, Res{Message: "Inquiry deleted successfully"})
}

type SubscribeRequest struct {
	Email string `json:"email" form:"email" validate:"required,max=255"`
}

func (s *Server) Subscribe(ctx echo.Context) error {
	var req SubscribeRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, Res{Data: req, Error: usecase.CodeInvalid, Message: err.Error()})
	}

	if _, err := s.server.Subscribe(ctx.Request().Context(), req.Email); err != nil {
		return s.errorResponse(ctx, "Subscribe", err, req)
	}
	return ctx.JSON(http.StatusCreated, Res{Message: "Thank you for subscribing!"})
}
