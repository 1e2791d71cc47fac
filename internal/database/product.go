package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tusharelectronics/storefront/internal/usecase"
)

type Product struct {
	ID                 uuid.UUID                          `gorm:"column:id;primaryKey;type:uuid;default:gen_random_uuid()"`
	CategoryID         uuid.UUID                          `gorm:"column:category_id;type:uuid;not null;index"`
	Name               string                             `gorm:"column:name;type:varchar(255);not null"`
	Slug               string                             `gorm:"column:slug;type:varchar(255);not null;uniqueIndex"`
	Description        string                             `gorm:"column:description;type:text"`
	Price              float64                            `gorm:"column:price;type:numeric(12,2);not null;default:0"`
	Images             datatypes.JSONSlice[string]        `gorm:"column:images;type:jsonb;not null;default:'[]'"`
	Tags               datatypes.JSONSlice[string]        `gorm:"column:tags;type:jsonb;not null;default:'[]'"`
	SKU                string                             `gorm:"column:sku;type:varchar(100)"`
	Status             string                             `gorm:"column:status;type:varchar(20);not null;default:active;index"`
	DiscountEnabled    bool                               `gorm:"column:discount_enabled;not null;default:false"`
	DiscountPercentage float64                            `gorm:"column:discount_percentage;type:numeric(5,2);not null;default:0"`
	Specifications     datatypes.JSONSlice[Specification] `gorm:"column:specifications;type:jsonb;not null;default:'[]'"`
	CreatedAt          time.Time                          `gorm:"column:created_at"`
	UpdatedAt          time.Time                          `gorm:"column:updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID;references:ID;constraint:OnDelete:RESTRICT"`
}

func (Product) TableName() string {
	return "products"
}

// Specification keeps the key order of the form input in the jsonb array.
type Specification struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

var productSortable = []string{"created_at", "updated_at", "name", "price"}

func (s *service) ListProducts(ctx context.Context, opt usecase.ListProductsOption) ([]usecase.Product, int, error) {
	var (
		products  []Product
		uproducts = []usecase.Product{}
		count     int64
	)

	db := s.db.Model([]Product{}).WithContext(ctx)

	if opt.CategoryID != uuid.Nil {
		db = db.Where("category_id = ?", opt.CategoryID)
	}
	if opt.Status != "" {
		db = db.Where("status = ?", opt.Status)
	}
	if len(opt.IDs) > 0 {
		db = db.Where("id IN ?", []uuid.UUID(opt.IDs))
	}
	if opt.ExcludeID != uuid.Nil {
		db = db.Where("id <> ?", opt.ExcludeID)
	}
	if opt.NameContains != "" {
		db = db.Where("name ILIKE ?", containsPattern(opt.NameContains))
	}

	const doc = "to_tsvector('simple', name || ' ' || coalesce(description, '') || ' ' || coalesce(sku, ''))"
	if opt.Search != "" {
		db = db.Where(doc+" @@ plainto_tsquery('simple', ?)", opt.Search)
	}

	if err := db.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if opt.IncludeCategory {
		db = db.Preload("Category")
	}

	if opt.Search != "" && opt.SortBy == "" {
		db = db.Clauses(clause.OrderBy{
			Expression: clause.Expr{
				SQL:                "ts_rank(" + doc + ", plainto_tsquery('simple', ?)) DESC, created_at DESC",
				Vars:               []any{opt.Search},
				WithoutParentheses: true,
			},
		})
	} else {
		db = db.Order(orderBy(opt.SortBy, opt.SortIn, productSortable, "created_at DESC"))
	}

	if err := paginate(db, opt.Skip, opt.Limit).
		Find(&products).
		Error; err != nil {
		return nil, 0, err
	}

	for _, p := range products {
		uproducts = append(uproducts, p.ConvertToUsecase())
	}

	return uproducts, int(count), nil
}

func (s *service) GetProductByID(ctx context.Context, id uuid.UUID) (usecase.Product, error) {
	var p Product
	if err := s.db.
		WithContext(ctx).
		Preload("Category").
		First(&p, "id = ?", id).Error; err != nil {
		return usecase.Product{}, translate(err, id, "product")
	}
	return p.ConvertToUsecase(), nil
}

func (s *service) GetProductBySlug(ctx context.Context, slug string) (usecase.Product, error) {
	var p Product
	if err := s.db.
		WithContext(ctx).
		Preload("Category").
		First(&p, "slug = ?", slug).Error; err != nil {
		return usecase.Product{}, translate(err, uuid.Nil, "product")
	}
	return p.ConvertToUsecase(), nil
}

func (s *service) CreateProduct(ctx context.Context, product usecase.Product) (usecase.Product, error) {
	p := newProduct(product)
	if err := s.db.
		WithContext(ctx).
		Clauses(clause.Returning{}).
		Create(&p).Error; err != nil {
		return usecase.Product{}, translate(err, uuid.Nil, "product")
	}
	return p.ConvertToUsecase(), nil
}

// UpdateProduct writes every column, so cleared fields are stored as empty.
func (s *service) UpdateProduct(ctx context.Context, product usecase.Product) (usecase.Product, error) {
	p := newProduct(product)
	res := s.db.
		WithContext(ctx).
		Model(&p).
		Clauses(clause.Returning{}).
		Select("*").
		Omit("id", "created_at", "Category").
		Updates(&p)
	if res.Error != nil {
		return usecase.Product{}, translate(res.Error, product.ID, "product")
	}
	if res.RowsAffected == 0 {
		return usecase.Product{}, translate(gorm.ErrRecordNotFound, product.ID, "product")
	}
	return p.ConvertToUsecase(), nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res := s.db.
		WithContext(ctx).
		Delete(&Product{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, id, "product")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, id, "product")
	}
	return nil
}

func (s *service) CountProductsByCategory(ctx context.Context, id uuid.UUID) (int, error) {
	var count int64
	err := s.db.
		WithContext(ctx).
		Model(&Product{}).
		Where("category_id = ?", id).
		Count(&count).Error
	return int(count), err
}

// ProductCategoryStats counts products per category, largest first. An
// empty status counts every product.
func (s *service) ProductCategoryStats(ctx context.Context, status string, limit int) ([]usecase.CategoryStat, error) {
	var rows []struct {
		CategoryID uuid.UUID
		Name       string
		Count      int
	}

	db := s.db.
		WithContext(ctx).
		Table("products p").
		Select("c.id AS category_id, c.name AS name, COUNT(p.id) AS count").
		Joins("JOIN categories c ON c.id = p.category_id").
		Group("c.id, c.name").
		Order("count DESC, c.name ASC")
	if status != "" {
		db = db.Where("p.status = ?", status)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Scan(&rows).Error; err != nil {
		return nil, err
	}

	stats := make([]usecase.CategoryStat, 0, len(rows))
	for _, r := range rows {
		stats = append(stats, usecase.CategoryStat{
			CategoryID: r.CategoryID,
			Name:       r.Name,
			Count:      r.Count,
		})
	}
	return stats, nil
}

func newProduct(p usecase.Product) Product {
	specs := make(datatypes.JSONSlice[Specification], 0, len(p.Specifications))
	for _, sp := range p.Specifications {
		specs = append(specs, Specification{Key: sp.Key, Value: sp.Value})
	}
	return Product{
		ID:                 p.ID,
		CategoryID:         p.CategoryID,
		Name:               p.Name,
		Slug:               p.Slug,
		Description:        p.Description,
		Price:              p.Price,
		Images:             refStrings(p.Images),
		Tags:               jsonStrings(p.Tags),
		SKU:                p.SKU,
		Status:             p.Status,
		DiscountEnabled:    p.Discount.Enabled,
		DiscountPercentage: p.Discount.Percentage,
		Specifications:     specs,
	}
}

// Convert core model to Usecase
func (p Product) ConvertToUsecase() usecase.Product {
	specs := make(usecase.Specifications, 0, len(p.Specifications))
	for _, sp := range p.Specifications {
		specs = append(specs, usecase.Specification{Key: sp.Key, Value: sp.Value})
	}
	up := usecase.Product{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		Images:      toRefs(p.Images),
		Tags:        append([]string{}, p.Tags...),
		SKU:         p.SKU,
		Status:      p.Status,
		Discount: usecase.Discount{
			Enabled:    p.DiscountEnabled,
			Percentage: p.DiscountPercentage,
		},
		Specifications: specs,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.Category != nil {
		c := p.Category.ConvertToUsecase()
		up.Category = &c
	}
	return up
}
