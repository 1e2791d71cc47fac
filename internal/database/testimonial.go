package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tusharelectronics/storefront/internal/usecase"
)

type Testimonial struct {
	ID        uuid.UUID `gorm:"column:id;primaryKey;type:uuid;default:gen_random_uuid()"`
	Name      string    `gorm:"column:name;type:varchar(255);not null"`
	Feedback  string    `gorm:"column:feedback;type:text;not null"`
	Rating    int       `gorm:"column:rating;not null;default:5;check:rating BETWEEN 1 AND 5"`
	Image     string    `gorm:"column:image;type:varchar(512)"`
	Status    string    `gorm:"column:status;type:varchar(20);not null;default:active;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Testimonial) TableName() string {
	return "testimonials"
}

func (s *service) ListTestimonials(ctx context.Context, opt usecase.ListTestimonialsOption) ([]usecase.Testimonial, int, error) {
	var (
		testimonials  []Testimonial
		utestimonials = []usecase.Testimonial{}
		count         int64
	)

	db := s.db.Model([]Testimonial{}).WithContext(ctx)

	if opt.Status != "" {
		db = db.Where("status = ?", opt.Status)
	}

	if err := db.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := paginate(db, opt.Skip, opt.Limit).
		Order("created_at DESC").
		Find(&testimonials).
		Error; err != nil {
		return nil, 0, err
	}

	for _, t := range testimonials {
		utestimonials = append(utestimonials, t.ConvertToUsecase())
	}

	return utestimonials, int(count), nil
}

func (s *service) GetTestimonialByID(ctx context.Context, id uuid.UUID) (usecase.Testimonial, error) {
	var t Testimonial
	if err := s.db.
		WithContext(ctx).
		First(&t, "id = ?", id).Error; err != nil {
		return usecase.Testimonial{}, translate(err, id, "testimonial")
	}
	return t.ConvertToUsecase(), nil
}

func (s *service) CreateTestimonial(ctx context.Context, testimonial usecase.Testimonial) (usecase.Testimonial, error) {
	t := newTestimonial(testimonial)
	if err := s.db.
		WithContext(ctx).
		Clauses(clause.Returning{}).
		Create(&t).Error; err != nil {
		return usecase.Testimonial{}, err
	}
	return t.ConvertToUsecase(), nil
}

func (s *service) UpdateTestimonial(ctx context.Context, testimonial usecase.Testimonial) (usecase.Testimonial, error) {
	t := newTestimonial(testimonial)
	res := s.db.
		WithContext(ctx).
		Model(&t).
		Clauses(clause.Returning{}).
		Select("*").
		Omit("id", "created_at").
		Updates(&t)
	if res.Error != nil {
		return usecase.Testimonial{}, res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.Testimonial{}, translate(gorm.ErrRecordNotFound, testimonial.ID, "testimonial")
	}
	return t.ConvertToUsecase(), nil
}

func (s *service) DeleteTestimonial(ctx context.Context, id uuid.UUID) error {
	res := s.db.
		WithContext(ctx).
		Delete(&Testimonial{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, id, "testimonial")
	}
	return nil
}

func newTestimonial(t usecase.Testimonial) Testimonial {
	return Testimonial{
		ID:       t.ID,
		Name:     t.Name,
		Feedback: t.Feedback,
		Rating:   t.Rating,
		Image:    string(t.Image),
		Status:   t.Status,
	}
}

// Convert core model to Usecase
func (t Testimonial) ConvertToUsecase() usecase.Testimonial {
	return usecase.Testimonial{
		ID:        t.ID,
		Name:      t.Name,
		Feedback:  t.Feedback,
		Rating:    t.Rating,
		Image:     usecase.ImageRef(t.Image),
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
