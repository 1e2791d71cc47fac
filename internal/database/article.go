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

type Article struct {
	ID        uuid.UUID                   `gorm:"column:id;primaryKey;type:uuid;default:gen_random_uuid()"`
	Title     string                      `gorm:"column:title;type:varchar(255);not null"`
	Slug      string                      `gorm:"column:slug;type:varchar(255);not null;uniqueIndex"`
	Content   string                      `gorm:"column:content;type:text;not null"`
	Excerpt   string                      `gorm:"column:excerpt;type:text"`
	Image     string                      `gorm:"column:image;type:varchar(512)"`
	Tags      datatypes.JSONSlice[string] `gorm:"column:tags;type:jsonb;not null;default:'[]'"`
	Category  string                      `gorm:"column:category;type:varchar(100);not null;default:general;index"`
	Status    string                      `gorm:"column:status;type:varchar(20);not null;default:draft;index"`
	Views     int                         `gorm:"column:views;not null;default:0"`
	CreatedAt time.Time                   `gorm:"column:created_at"`
	UpdatedAt time.Time                   `gorm:"column:updated_at"`
}

func (Article) TableName() string {
	return "articles"
}

var articleSortable = []string{"created_at", "updated_at", "title", "views"}

func (s *service) ListArticles(ctx context.Context, opt usecase.ListArticlesOption) ([]usecase.Article, int, error) {
	var (
		articles  []Article
		uarticles = []usecase.Article{}
		count     int64
	)

	db := s.db.Model([]Article{}).WithContext(ctx)

	if opt.Status != "" {
		db = db.Where("status = ?", opt.Status)
	}
	if opt.Category != "" {
		db = db.Where("category = ?", opt.Category)
	}
	if opt.ExcludeID != uuid.Nil {
		db = db.Where("id <> ?", opt.ExcludeID)
	}
	if opt.Search != "" {
		db = db.Where("to_tsvector('simple', title || ' ' || coalesce(content, '')) @@ plainto_tsquery('simple', ?)", opt.Search)
	}
	if opt.RelatedCategory != "" || len(opt.RelatedTags) > 0 {
		related := s.db.Where("category = ?", opt.RelatedCategory)
		if len(opt.RelatedTags) > 0 {
			related = related.Or("EXISTS (SELECT 1 FROM jsonb_array_elements_text(tags) AS t(tag) WHERE t.tag IN ?)", opt.RelatedTags)
		}
		db = db.Where(related)
	}

	if err := db.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := paginate(db, opt.Skip, opt.Limit).
		Order(orderBy(opt.SortBy, opt.SortIn, articleSortable, "created_at DESC")).
		Find(&articles).
		Error; err != nil {
		return nil, 0, err
	}

	for _, a := range articles {
		uarticles = append(uarticles, a.ConvertToUsecase())
	}

	return uarticles, int(count), nil
}

// ListArticleCategories returns the distinct categories of published articles.
func (s *service) ListArticleCategories(ctx context.Context) ([]string, error) {
	categories := []string{}
	err := s.db.
		WithContext(ctx).
		Model(&Article{}).
		Where("status = ?", usecase.ArticlePublished).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

func (s *service) GetArticleByID(ctx context.Context, id uuid.UUID) (usecase.Article, error) {
	var a Article
	if err := s.db.
		WithContext(ctx).
		First(&a, "id = ?", id).Error; err != nil {
		return usecase.Article{}, translate(err, id, "article")
	}
	return a.ConvertToUsecase(), nil
}

func (s *service) GetArticleBySlug(ctx context.Context, slug string) (usecase.Article, error) {
	var a Article
	if err := s.db.
		WithContext(ctx).
		First(&a, "slug = ?", slug).Error; err != nil {
		return usecase.Article{}, translate(err, uuid.Nil, "article")
	}
	return a.ConvertToUsecase(), nil
}

func (s *service) CreateArticle(ctx context.Context, article usecase.Article) (usecase.Article, error) {
	a := newArticle(article)
	if err := s.db.
		WithContext(ctx).
		Clauses(clause.Returning{}).
		Create(&a).Error; err != nil {
		return usecase.Article{}, translate(err, uuid.Nil, "article")
	}
	return a.ConvertToUsecase(), nil
}

// UpdateArticle leaves the view counter alone, views are only ever
// incremented.
func (s *service) UpdateArticle(ctx context.Context, article usecase.Article) (usecase.Article, error) {
	a := newArticle(article)
	res := s.db.
		WithContext(ctx).
		Model(&a).
		Clauses(clause.Returning{}).
		Select("*").
		Omit("id", "created_at", "views").
		Updates(&a)
	if res.Error != nil {
		return usecase.Article{}, translate(res.Error, article.ID, "article")
	}
	if res.RowsAffected == 0 {
		return usecase.Article{}, translate(gorm.ErrRecordNotFound, article.ID, "article")
	}
	return a.ConvertToUsecase(), nil
}

func (s *service) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	res := s.db.
		WithContext(ctx).
		Delete(&Article{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, id, "article")
	}
	return nil
}

func (s *service) IncrementArticleViews(ctx context.Context, id uuid.UUID) error {
	return s.db.
		WithContext(ctx).
		Model(&Article{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func newArticle(a usecase.Article) Article {
	return Article{
		ID:       a.ID,
		Title:    a.Title,
		Slug:     a.Slug,
		Content:  a.Content,
		Excerpt:  a.Excerpt,
		Image:    string(a.Image),
		Tags:     jsonStrings(a.Tags),
		Category: a.Category,
		Status:   a.Status,
		Views:    a.Views,
	}
}

// Convert core model to Usecase
func (a Article) ConvertToUsecase() usecase.Article {
	return usecase.Article{
		ID:        a.ID,
		Title:     a.Title,
		Slug:      a.Slug,
		Content:   a.Content,
		Excerpt:   a.Excerpt,
		Image:     usecase.ImageRef(a.Image),
		Tags:      append([]string{}, a.Tags...),
		Category:  a.Category,
		Status:    a.Status,
		Views:     a.Views,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
