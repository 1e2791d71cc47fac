package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tusharelectronics/storefront/internal/usecase"
)

func TestGetDashboard_TopCategoriesCountActiveProducts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	lighting := f.category(t)
	fans, err := f.uc.CreateCategory(ctx, usecase.Category{Name: "Fans"}, nil)
	require.NoError(t, err)

	for _, name := range []string{"Lamp A", "Lamp B", "Lamp C"} {
		_, err := f.uc.CreateProduct(ctx, usecase.Product{
			Name:       name,
			CategoryID: lighting.ID,
			Status:     usecase.StatusInactive,
		}, nil)
		require.NoError(t, err)
	}
	_, err = f.uc.CreateProduct(ctx, usecase.Product{Name: "Ceiling Fan", CategoryID: fans.ID}, nil)
	require.NoError(t, err)

	d, err := f.uc.GetDashboard(ctx)
	require.NoError(t, err)

	require.Len(t, d.TopCategories, 1)
	assert.Equal(t, fans.ID, d.TopCategories[0].CategoryID)
	assert.Equal(t, "Fans", d.TopCategories[0].Name)
	assert.Equal(t, 1, d.TopCategories[0].Count)
	assert.Equal(t, 4, d.Counts.Products)
}
