package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tusharelectronics/storefront/internal/usecase"
)

type Banner struct {
	ID        uuid.UUID `gorm:"column:id;primaryKey;type:uuid;default:gen_random_uuid()"`
	Title     string    `gorm:"column:title;type:varchar(255)"`
	Subtitle  string    `gorm:"column:subtitle;type:varchar(255)"`
	Image     string    `gorm:"column:image;type:varchar(512);not null"`
	Color     string    `gorm:"column:color;type:varchar(7)"`
	Link      string    `gorm:"column:link;type:varchar(512)"`
	Status    string    `gorm:"column:status;type:varchar(20);not null;default:active;index"`
	Order     int       `gorm:"column:sort_order;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Banner) TableName() string {
	return "banners"
}

// ListBanners orders by the configured position, then newest first.
func (s *service) ListBanners(ctx context.Context, opt usecase.ListBannersOption) ([]usecase.Banner, int, error) {
	var (
		banners  []Banner
		ubanners = []usecase.Banner{}
		count    int64
	)

	db := s.db.Model([]Banner{}).WithContext(ctx)

	if opt.Status != "" {
		db = db.Where("status = ?", opt.Status)
	}

	if err := db.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := paginate(db, opt.Skip, opt.Limit).
		Order("sort_order ASC, created_at DESC").
		Find(&banners).
		Error; err != nil {
		return nil, 0, err
	}

	for _, b := range banners {
		ubanners = append(ubanners, b.ConvertToUsecase())
	}

	return ubanners, int(count), nil
}

func (s *service) GetBannerByID(ctx context.Context, id uuid.UUID) (usecase.Banner, error) {
	var b Banner
	if err := s.db.
		WithContext(ctx).
		First(&b, "id = ?", id).Error; err != nil {
		return usecase.Banner{}, translate(err, id, "banner")
	}
	return b.ConvertToUsecase(), nil
}

func (s *service) CreateBanner(ctx context.Context, banner usecase.Banner) (usecase.Banner, error) {
	b := newBanner(banner)
	if err := s.db.
		WithContext(ctx).
		Clauses(clause.Returning{}).
		Create(&b).Error; err != nil {
		return usecase.Banner{}, translate(err, uuid.Nil, "banner")
	}
	return b.ConvertToUsecase(), nil
}

func (s *service) UpdateBanner(ctx context.Context, banner usecase.Banner) (usecase.Banner, error) {
	b := newBanner(banner)
	res := s.db.
		WithContext(ctx).
		Model(&b).
		Clauses(clause.Returning{}).
		Select("*").
		Omit("id", "created_at").
		Updates(&b)
	if res.Error != nil {
		return usecase.Banner{}, res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.Banner{}, translate(gorm.ErrRecordNotFound, banner.ID, "banner")
	}
	return b.ConvertToUsecase(), nil
}

func (s *service) DeleteBanner(ctx context.Context, id uuid.UUID) error {
	res := s.db.
		WithContext(ctx).
		Delete(&Banner{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, id, "banner")
	}
	return nil
}

func newBanner(b usecase.Banner) Banner {
	return Banner{
		ID:       b.ID,
		Title:    b.Title,
		Subtitle: b.Subtitle,
		Image:    string(b.Image),
		Color:    b.Color,
		Link:     b.Link,
		Status:   b.Status,
		Order:    b.Order,
	}
}

// Convert core model to Usecase
func (b Banner) ConvertToUsecase() usecase.Banner {
	return usecase.Banner{
		ID:        b.ID,
		Title:     b.Title,
		Subtitle:  b.Subtitle,
		Image:     usecase.ImageRef(b.Image),
		Color:     b.Color,
		Link:      b.Link,
		Status:    b.Status,
		Order:     b.Order,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}
