package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Testimonial struct {
	ID        uuid.UUID
	Name      string
	Feedback  string
	Rating    int
	Image     ImageRef
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ListTestimonialsOption struct {
	Skip   int
	Limit  int
	Status string
}

func (u Usecase) ListTestimonials(ctx context.Context, opt ListTestimonialsOption) ([]Testimonial, int, error) {
	return u.repo.ListTestimonials(ctx, opt)
}

func (u Usecase) GetTestimonialByID(ctx context.Context, id uuid.UUID) (Testimonial, error) {
	return u.repo.GetTestimonialByID(ctx, id)
}

func normalizeTestimonial(t *Testimonial) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Status == "" {
		t.Status = StatusActive
	}
	switch {
	case t.Name == "":
		return ErrValidation{Field: "name", Code: CodeRequired, Message: "name is required"}
	case strings.TrimSpace(t.Feedback) == "":
		return ErrValidation{Field: "feedback", Code: CodeRequired, Message: "feedback is required"}
	case t.Rating < 1 || t.Rating > 5:
		return ErrValidation{Field: "rating", Code: CodeInvalid, Message: "rating must be between 1 and 5"}
	case t.Status != StatusActive && t.Status != StatusInactive:
		return ErrValidation{Field: "status", Code: CodeInvalid, Message: "status must be active or inactive"}
	}
	return nil
}

func (u Usecase) CreateTestimonial(ctx context.Context, t Testimonial, image *Upload) (Testimonial, error) {
	if err := normalizeTestimonial(&t); err != nil {
		return Testimonial{}, err
	}

	ref, err := u.storeUpload(ctx, AssetTestimonials, image)
	if err != nil {
		return Testimonial{}, err
	}
	t.Image = ref

	created, err := u.repo.CreateTestimonial(ctx, t)
	if err != nil {
		u.logger.ErrorContext(ctx, "err_CreateTestimonial_repo.CreateTestimonial", slog.String("err", err.Error()))
		u.removeImages(ctx, []ImageRef{ref})
		return Testimonial{}, err
	}
	return created, nil
}

type UpdateTestimonialRequest struct {
	Name     *string
	Feedback *string
	Rating   *int
	Status   *string
	Image    *Upload
}

func (u Usecase) UpdateTestimonial(ctx context.Context, id uuid.UUID, req UpdateTestimonialRequest) (Testimonial, error) {
	t, err := u.repo.GetTestimonialByID(ctx, id)
	if err != nil {
		return Testimonial{}, err
	}

	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Feedback != nil {
		t.Feedback = *req.Feedback
	}
	if req.Rating != nil {
		t.Rating = *req.Rating
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	if err := normalizeTestimonial(&t); err != nil {
		return Testimonial{}, err
	}

	ref, err := u.storeUpload(ctx, AssetTestimonials, req.Image)
	if err != nil {
		return Testimonial{}, err
	}
	prior := t.Image
	if ref != "" {
		t.Image = ref
	}

	updated, err := u.repo.UpdateTestimonial(ctx, t)
	if err != nil {
		u.logger.ErrorContext(ctx, "err_UpdateTestimonial_repo.UpdateTestimonial",
			slog.String("id", id.String()),
			slog.String("err", err.Error()))
		u.removeImages(ctx, []ImageRef{ref})
		return Testimonial{}, err
	}

	u.removeImages(ctx, replacedImage(prior, ref))
	return updated, nil
}

func (u Usecase) DeleteTestimonial(ctx context.Context, id uuid.UUID) error {
	t, err := u.repo.GetTestimonialByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}

	u.removeImages(ctx, []ImageRef{t.Image})

	if err := u.repo.DeleteTestimonial(ctx, id); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}
