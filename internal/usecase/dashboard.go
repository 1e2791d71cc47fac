package usecase

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type DashboardCounts struct {
	Products       int
	ActiveProducts int
	Categories     int
	Articles       int
	Inquiries      int
	NewInquiries   int
	Subscribers    int
}

// CategoryStat is the number of active products in a category.
type CategoryStat struct {
	CategoryID uuid.UUID
	Name       string
	Count      int
}

type Dashboard struct {
	Counts          DashboardCounts
	RecentInquiries []Inquiry
	TopCategories   []CategoryStat
}

const topCategoriesLimit = 5

func (u Usecase) GetDashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Counts, err = u.repo.GetDashboardCounts(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.RecentInquiries, _, err = u.repo.ListInquiries(gctx, ListInquiriesOption{Limit: 5})
		return err
	})
	g.Go(func() (err error) {
		d.TopCategories, err = u.repo.ProductCategoryStats(gctx, StatusActive, topCategoriesLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}
