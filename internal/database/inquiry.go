package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tusharelectronics/storefront/internal/usecase"
)

type Inquiry struct {
	ID        uuid.UUID `gorm:"column:id;primaryKey;type:uuid;default:gen_random_uuid()"`
	Name      string    `gorm:"column:name;type:varchar(255);not null"`
	Email     string    `gorm:"column:email;type:varchar(255);not null"`
	Phone     string    `gorm:"column:phone;type:varchar(50);not null"`
	Message   string    `gorm:"column:message;type:text;not null"`
	Status    string    `gorm:"column:status;type:varchar(20);not null;default:new;index"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`

	Products []Product `gorm:"many2many:inquiry_products;constraint:OnDelete:CASCADE"`
}

func (Inquiry) TableName() string {
	return "inquiries"
}

func (s *service) ListInquiries(ctx context.Context, opt usecase.ListInquiriesOption) ([]usecase.Inquiry, int, error) {
	var (
		inquiries  []Inquiry
		uinquiries = []usecase.Inquiry{}
		count      int64
	)

	db := s.db.Model([]Inquiry{}).WithContext(ctx)

	if opt.Status != "" {
		db = db.Where("status = ?", opt.Status)
	}

	if err := db.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := paginate(db, opt.Skip, opt.Limit).
		Preload("Products").
		Order("created_at DESC").
		Find(&inquiries).
		Error; err != nil {
		return nil, 0, err
	}

	for _, in := range inquiries {
		uinquiries = append(uinquiries, in.ConvertToUsecase())
	}

	return uinquiries, int(count), nil
}

func (s *service) GetInquiryByID(ctx context.Context, id uuid.UUID) (usecase.Inquiry, error) {
	var in Inquiry
	if err := s.db.
		WithContext(ctx).
		Preload("Products").
		First(&in, "id = ?", id).Error; err != nil {
		return usecase.Inquiry{}, translate(err, id, "inquiry")
	}
	return in.ConvertToUsecase(), nil
}

// CreateInquiry links the inquiry to existing products only, the products
// themselves are never written.
func (s *service) CreateInquiry(ctx context.Context, inquiry usecase.Inquiry) (usecase.Inquiry, error) {
	in := Inquiry{
		Name:    inquiry.Name,
		Email:   inquiry.Email,
		Phone:   inquiry.Phone,
		Message: inquiry.Message,
		Status:  inquiry.Status,
	}
	for _, id := range inquiry.ProductIDs {
		in.Products = append(in.Products, Product{ID: id})
	}

	if err := s.db.
		WithContext(ctx).
		Omit("Products.*").
		Clauses(clause.Returning{}).
		Create(&in).Error; err != nil {
		return usecase.Inquiry{}, err
	}

	created := in.ConvertToUsecase()
	created.ProductIDs = append(uuid.UUIDs{}, inquiry.ProductIDs...)
	created.Products = inquiry.Products
	return created, nil
}

func (s *service) UpdateInquiryStatus(ctx context.Context, id uuid.UUID, status string) (usecase.Inquiry, error) {
	res := s.db.
		WithContext(ctx).
		Model(&Inquiry{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return usecase.Inquiry{}, res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.Inquiry{}, translate(gorm.ErrRecordNotFound, id, "inquiry")
	}
	return s.GetInquiryByID(ctx, id)
}

// DeleteInquiry removes the inquiry, its product links cascade.
func (s *service) DeleteInquiry(ctx context.Context, id uuid.UUID) error {
	res := s.db.
		WithContext(ctx).
		Delete(&Inquiry{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, id, "inquiry")
	}
	return nil
}

// CountInquiriesByStatus returns the number of inquiries per status.
func (s *service) CountInquiriesByStatus(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Status string
		Count  int
	}
	if err := s.db.
		WithContext(ctx).
		Model(&Inquiry{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	stats := make(map[string]int, len(rows))
	for _, r := range rows {
		stats[r.Status] = r.Count
	}
	return stats, nil
}

// Convert core model to Usecase
func (in Inquiry) ConvertToUsecase() usecase.Inquiry {
	ui := usecase.Inquiry{
		ID:         in.ID,
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Message:    in.Message,
		Status:     in.Status,
		CreatedAt:  in.CreatedAt,
		ProductIDs: uuid.UUIDs{},
		Products:   []usecase.Product{},
	}
	for _, p := range in.Products {
		ui.ProductIDs = append(ui.ProductIDs, p.ID)
		ui.Products = append(ui.Products, p.ConvertToUsecase())
	}
	return ui
}
