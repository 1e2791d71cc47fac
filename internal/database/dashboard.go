package database

import (
	"context"
	"fmt"

	"github.com/tusharelectronics/storefront/internal/usecase"
)

func (s *service) GetDashboardCounts(ctx context.Context) (usecase.DashboardCounts, error) {
	var counts usecase.DashboardCounts
	err := s.db.
		WithContext(ctx).
		Raw(`SELECT
			(SELECT COUNT(*) FROM products) AS products,
			(SELECT COUNT(*) FROM products WHERE status = ?) AS active_products,
			(SELECT COUNT(*) FROM categories) AS categories,
			(SELECT COUNT(*) FROM articles) AS articles,
			(SELECT COUNT(*) FROM inquiries) AS inquiries,
			(SELECT COUNT(*) FROM inquiries WHERE status = ?) AS new_inquiries,
			(SELECT COUNT(*) FROM subscribers) AS subscribers`,
			usecase.StatusActive, usecase.InquiryNew).
		Scan(&counts).Error
	return counts, err
}

// ListImageRefs returns the image references stored on the records of the
// entity type that owns cat.
func (s *service) ListImageRefs(ctx context.Context, cat usecase.AssetCategory) ([]usecase.ImageRef, error) {
	var (
		refs []string
		q    string
	)
	switch cat {
	case usecase.AssetProducts:
		q = "SELECT jsonb_array_elements_text(images) FROM products"
	case usecase.AssetCategories:
		q = "SELECT image FROM categories WHERE image <> ''"
	case usecase.AssetArticles:
		q = "SELECT image FROM articles WHERE image <> ''"
	case usecase.AssetBanners:
		q = "SELECT image FROM banners WHERE image <> ''"
	case usecase.AssetTestimonials:
		q = "SELECT image FROM testimonials WHERE image <> ''"
	default:
		return nil, fmt.Errorf("unknown asset category %q", cat)
	}

	if err := s.db.WithContext(ctx).Raw(q).Scan(&refs).Error; err != nil {
		return nil, err
	}
	return toRefs(refs), nil
}
