package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tusharelectronics/storefront/internal/usecase"
)

type Testimonial struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Feedback  string `json:"feedback"`
	Rating    int    `json:"rating"`
	Image     string `json:"image,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func newTestimonialRes(t usecase.Testimonial) Testimonial {
	return Testimonial{
		ID:        t.ID.String(),
		Name:      t.Name,
		Feedback:  t.Feedback,
		Rating:    t.Rating,
		Image:     string(t.Image),
		Status:    t.Status,
		CreatedAt: formatTime(t.CreatedAt),
		UpdatedAt: formatTime(t.UpdatedAt),
	}
}

func newTestimonialList(list []usecase.Testimonial) []Testimonial {
	out := make([]Testimonial, 0, len(list))
	for _, t := range list {
		out = append(out, newTestimonialRes(t))
	}
	return out
}

type ListTestimonialsRequest struct {
	Skip   int    `query:"skip" validate:"omitempty,min=0"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Status string `query:"status" validate:"omitempty,oneof=active inactive"`
}

func (s *Server) ListTestimonials(ctx echo.Context) error {
	var req ListTestimonialsRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}

	list, total, err := s.server.ListTestimonials(ctx.Request().Context(), usecase.ListTestimonialsOption{
		Skip:   req.Skip,
		Limit:  req.Limit,
		Status: req.Status,
	})
	if err != nil {
		return s.errorResponse(ctx, "ListTestimonials", err, nil)
	}
	return ctx.JSON(http.StatusOK, Res{
		Data: newTestimonialList(list),
		Meta: &Meta{Total: total, Skip: req.Skip, Limit: req.Limit},
	})
}

func (s *Server) GetTestimonialByID(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return s.errorResponse(ctx, "GetTestimonialByID", err, nil)
	}

	t, err := s.server.GetTestimonialByID(ctx.Request().Context(), id)
	if err != nil {
		return s.errorResponse(ctx, "GetTestimonialByID", err, nil)
	}
	return ctx.JSON(http.StatusOK, Res{Data: newTestimonialRes(t)})
}

func (s *Server) CreateTestimonial(ctx echo.Context) error {
	f, err := readForm(ctx)
	if err != nil {
		return s.errorResponse(ctx, "CreateTestimonial", err, nil)
	}
	image, err := f.upload("image")
	if err != nil {
		return s.errorResponse(ctx, "CreateTestimonial", err, f.submitted())
	}
	rating, err := f.int("rating")
	if err != nil {
		return s.errorResponse(ctx, "CreateTestimonial", err, f.submitted())
	}

	t, err := s.server.CreateTestimonial(ctx.Request().Context(), usecase.Testimonial{
		Name:     f.get("name"),
		Feedback: f.get("feedback"),
		Rating:   rating,
		Status:   f.get("status"),
	}, image)
	if err != nil {
		return s.errorResponse(ctx, "CreateTestimonial", err, f.submitted())
	}
	return ctx.JSON(http.StatusCreated, Res{Data: newTestimonialRes(t), Message: "Testimonial created successfully"})
}

func (s *Server) UpdateTestimonial(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return s.errorResponse(ctx, "UpdateTestimonial", err, nil)
	}
	f, err := readForm(ctx)
	if err != nil {
		return s.errorResponse(ctx, "UpdateTestimonial", err, nil)
	}
	image, err := f.upload("image")
	if err != nil {
		return s.errorResponse(ctx, "UpdateTestimonial", err, f.submitted())
	}

	req := usecase.UpdateTestimonialRequest{
		Name:     f.optional("name"),
		Feedback: f.optional("feedback"),
		Status:   f.optional("status"),
		Image:    image,
	}
	if f.has("rating") {
		rating, err := f.int("rating")
		if err != nil {
			return s.errorResponse(ctx, "UpdateTestimonial", err, f.submitted())
		}
		req.Rating = &rating
	}

	t, err := s.server.UpdateTestimonial(ctx.Request().Context(), id, req)
	if err != nil {
		return s.errorResponse(ctx, "UpdateTestimonial", err, f.submitted())
	}
	return ctx.JSON(http.StatusOK, Res{Data: newTestimonialRes(t), Message: "Testimonial updated successfully"})
}

func (s *Server) DeleteTestimonial(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return s.errorResponse(ctx, "DeleteTestimonial", err, nil)
	}
	if err := s.server.DeleteTestimonial(ctx.Request().Context(), id); err != nil {
		return s.errorResponse(ctx, "DeleteTestimonial", err, nil)
	}
	return ctx.JSON(http.StatusOK, Res{Message: "Testimonial deleted successfully"})
}
