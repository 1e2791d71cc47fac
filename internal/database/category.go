package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tusharelectronics/storefront/internal/usecase"
)

type Category struct {
	ID          uuid.UUID `gorm:"column:id;primaryKey;type:uuid;default:gen_random_uuid()"`
	Name        string    `gorm:"column:name;type:varchar(255);not null"`
	Slug        string    `gorm:"column:slug;type:varchar(255);not null;uniqueIndex"`
	Description string    `gorm:"column:description;type:text"`
	Image       string    `gorm:"column:image;type:varchar(512)"`
	Status      string    `gorm:"column:status;type:varchar(20);not null;default:active;index"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`

	ProductCount int `gorm:"->;-:migration"`
}

func (Category) TableName() string {
	return "categories"
}

const categoryProductCount = `*,
	(SELECT COUNT(*) FROM products WHERE products.category_id = categories.id) AS product_count`

func (s *service) ListCategories(ctx context.Context, opt usecase.ListCategoriesOption) ([]usecase.Category, int, error) {
	var (
		categories  []Category
		ucategories = []usecase.Category{}
		count       int64
	)

	db := s.db.Model([]Category{}).WithContext(ctx)

	if opt.Status != "" {
		db = db.Where("status = ?", opt.Status)
	}
	if opt.NameContains != "" {
		db = db.Where("name ILIKE ?", containsPattern(opt.NameContains))
	}

	if err := db.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := paginate(db, opt.Skip, opt.Limit).
		Select(categoryProductCount).
		Order("name ASC").
		Find(&categories).
		Error; err != nil {
		return nil, 0, err
	}

	for _, c := range categories {
		ucategories = append(ucategories, c.ConvertToUsecase())
	}

	return ucategories, int(count), nil
}

func (s *service) GetCategoryByID(ctx context.Context, id uuid.UUID) (usecase.Category, error) {
	var c Category
	if err := s.db.
		WithContext(ctx).
		Select(categoryProductCount).
		First(&c, "id = ?", id).Error; err != nil {
		return usecase.Category{}, translate(err, id, "category")
	}
	return c.ConvertToUsecase(), nil
}

func (s *service) GetCategoryBySlug(ctx context.Context, slug string) (usecase.Category, error) {
	var c Category
	if err := s.db.
		WithContext(ctx).
		Select(categoryProductCount).
		First(&c, "slug = ?", slug).Error; err != nil {
		return usecase.Category{}, translate(err, uuid.Nil, "category")
	}
	return c.ConvertToUsecase(), nil
}

func (s *service) CreateCategory(ctx context.Context, category usecase.Category) (usecase.Category, error) {
	c := newCategory(category)
	if err := s.db.
		WithContext(ctx).
		Clauses(clause.Returning{}).
		Create(&c).Error; err != nil {
		return usecase.Category{}, translate(err, uuid.Nil, "category")
	}
	return c.ConvertToUsecase(), nil
}

func (s *service) UpdateCategory(ctx context.Context, category usecase.Category) (usecase.Category, error) {
	c := newCategory(category)
	res := s.db.
		WithContext(ctx).
		Model(&c).
		Clauses(clause.Returning{}).
		Select("*").
		Omit("id", "created_at").
		Updates(&c)
	if res.Error != nil {
		return usecase.Category{}, translate(res.Error, category.ID, "category")
	}
	if res.RowsAffected == 0 {
		return usecase.Category{}, translate(gorm.ErrRecordNotFound, category.ID, "category")
	}
	uc := c.ConvertToUsecase()
	uc.ProductCount = category.ProductCount
	return uc, nil
}

// DeleteCategory relies on the RESTRICT foreign key from products, a product
// added after the usecase check surfaces as a conflict.
func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	res := s.db.
		WithContext(ctx).
		Delete(&Category{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, id, "category")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, id, "category")
	}
	return nil
}

func newCategory(c usecase.Category) Category {
	return Category{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Image:       string(c.Image),
		Status:      c.Status,
	}
}

// Convert core model to Usecase
func (c Category) ConvertToUsecase() usecase.Category {
	return usecase.Category{
		ID:           c.ID,
		Name:         c.Name,
		Slug:         c.Slug,
		Description:  c.Description,
		Image:        usecase.ImageRef(c.Image),
		Status:       c.Status,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		ProductCount: c.ProductCount,
	}
}
