package usecase_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tusharelectronics/storefront/internal/filestorage"
	"github.com/tusharelectronics/storefront/internal/usecase"
)

type fixture struct {
	uc    usecase.Usecase
	repo  *memRepo
	store *filestorage.LocalStorage
	root  string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	repo := newMemRepo()
	store := filestorage.NewLocalStorage(root, 1<<20)
	uc := usecase.New(repo, store, nil, nil, usecase.Settings{MaxUploadSize: 1 << 20}, discardLogger())
	return fixture{uc: uc, repo: repo, store: store, root: root}
}

func (f fixture) files(t *testing.T, cat usecase.AssetCategory) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(f.root, string(cat)))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func (f fixture) exists(t *testing.T, ref usecase.ImageRef) bool {
	t.Helper()
	ok, err := f.store.Exists(context.Background(), ref)
	require.NoError(t, err)
	return ok
}

func (f fixture) category(t *testing.T) usecase.Category {
	t.Helper()
	c, err := f.uc.CreateCategory(context.Background(), usecase.Category{Name: "Lighting"}, nil)
	require.NoError(t, err)
	return c
}

func jpeg(name string) usecase.Upload {
	return imageUpload("images", name, "image/jpeg", []byte("jpeg:"+name))
}

func TestCreateProduct_StoresImages(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.category(t)

	p, err := f.uc.CreateProduct(ctx, usecase.Product{
		Name:       "Test Widget",
		CategoryID: c.ID,
		Price:      499,
	}, []usecase.Upload{jpeg("a.jpg"), jpeg("b.jpg")})
	require.NoError(t, err)

	assert.Equal(t, "test-widget", p.Slug)
	assert.Equal(t, usecase.StatusActive, p.Status)
	require.Len(t, p.Images, 2)
	for _, ref := range p.Images {
		assert.Equal(t, usecase.AssetProducts, ref.Category())
		assert.True(t, f.exists(t, ref))
	}
	assert.Len(t, f.files(t, usecase.AssetProducts), 2)
}

func TestCreateProduct_RejectsNonImage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.category(t)

	_, err := f.uc.CreateProduct(ctx, usecase.Product{Name: "Bad", CategoryID: c.ID}, []usecase.Upload{
		jpeg("ok.jpg"),
		imageUpload("images", "setup.exe", "application/x-msdownload", []byte("MZ")),
	})

	var ve usecase.ErrValidation
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, usecase.CodeUnsupportedMediaType, ve.Code)
	assert.Empty(t, f.files(t, usecase.AssetProducts))
	assert.Empty(t, f.repo.products)
}

func TestCreateProduct_TooManyImages(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.category(t)

	ups := make([]usecase.Upload, 11)
	for i := range ups {
		ups[i] = jpeg("x.jpg")
	}
	_, err := f.uc.CreateProduct(ctx, usecase.Product{Name: "Many", CategoryID: c.ID}, ups)

	var ve usecase.ErrValidation
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, usecase.CodeTooManyFiles, ve.Code)
	assert.Empty(t, f.files(t, usecase.AssetProducts))
}

func TestCreateProduct_UnknownCategory(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.CreateProduct(context.Background(), usecase.Product{
		Name:       "Orphan",
		CategoryID: uuid.New(),
	}, []usecase.Upload{jpeg("a.jpg")})

	var ve usecase.ErrValidation
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "category_id", ve.Field)
	assert.Empty(t, f.files(t, usecase.AssetProducts))
}

func TestCreateProduct_PersistFailureRemovesImages(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.category(t)
	f.repo.failWrites = true

	_, err := f.uc.CreateProduct(ctx, usecase.Product{Name: "Lamp", CategoryID: c.ID},
		[]usecase.Upload{jpeg("a.jpg"), jpeg("b.jpg")})
	require.ErrorIs(t, err, errPersist)

	assert.Empty(t, f.files(t, usecase.AssetProducts))
}

func TestCreateProduct_StorageFailureRemovesEarlierImages(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.category(t)

	store := &failingStore{AssetStore: f.store, okSaves: 1}
	uc := usecase.New(f.repo, store, nil, nil, usecase.Settings{MaxUploadSize: 1 << 20}, discardLogger())

	_, err := uc.CreateProduct(ctx, usecase.Product{Name: "Lamp", CategoryID: c.ID},
		[]usecase.Upload{jpeg("a.jpg"), jpeg("b.jpg")})

	var se usecase.ErrStorage
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, store.saves)
	assert.Empty(t, f.files(t, usecase.AssetProducts))
	assert.Empty(t, f.repo.products)
}

func TestUpdateProduct_AppendsImages(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.category(t)

	p, err := f.uc.CreateProduct(ctx, usecase.Product{Name: "Fan", CategoryID: c.ID},
		[]usecase.Upload{jpeg("a.jpg"), jpeg("b.jpg")})
	require.NoError(t, err)

	updated, err := f.uc.UpdateProduct(ctx, p.ID, usecase.UpdateProductRequest{
		Images: []usecase.Upload{jpeg("c.jpg")},
	})
	require.NoError(t, err)

	require.Len(t, updated.Images, 3)
	assert.Equal(t, p.Images, updated.Images[:2])
	assert.True(t, f.exists(t, updated.Images[2]))
}

func TestUpdateProduct_PartialFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.category(t)

	p, err := f.uc.CreateProduct(ctx, usecase.Product{
		Name:        "Fan",
		CategoryID:  c.ID,
		Description: "Ceiling fan",
		Tags:        []string{"fan"},
	}, nil)
	require.NoError(t, err)

	price := 1200.0
	updated, err := f.uc.UpdateProduct(ctx, p.ID, usecase.UpdateProductRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Ceiling fan", updated.Description)
	assert.Equal(t, []string{"fan"}, updated.Tags)
	assert.Equal(t, 1200.0, updated.Price)

	empty := ""
	specs := "Sweep: 1200mm\nSpeed: 350rpm"
	updated, err = f.uc.UpdateProduct(ctx, p.ID, usecase.UpdateProductRequest{
		Description:    &empty,
		Specifications: &specs,
	})
	require.NoError(t, err)
	assert.Empty(t, updated.Description)
	assert.Equal(t, map[string]string{"Sweep": "1200mm", "Speed": "350rpm"}, updated.Specifications.Map())
}

func TestUpdateProduct_AppendsBeyondOneRequestLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.category(t)

	ups := make([]usecase.Upload, 10)
	for i := range ups {
		ups[i] = jpeg("x.jpg")
	}
	p, err := f.uc.CreateProduct(ctx, usecase.Product{Name: "Full", CategoryID: c.ID}, ups)
	require.NoError(t, err)
	require.Len(t, p.Images, 10)

	updated, err := f.uc.UpdateProduct(ctx, p.ID, usecase.UpdateProductRequest{
		Images: []usecase.Upload{jpeg("y.jpg")},
	})
	require.NoError(t, err)
	require.Len(t, updated.Images, 11)
	assert.Equal(t, p.Images, updated.Images[:10])
	assert.Len(t, f.files(t, usecase.AssetProducts), 11)
}

func TestUpdateProduct_RejectsMoreThanTenUploadsAtOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.category(t)

	p, err := f.uc.CreateProduct(ctx, usecase.Product{Name: "Fan", CategoryID: c.ID}, nil)
	require.NoError(t, err)

	ups := make([]usecase.Upload, 11)
	for i := range ups {
		ups[i] = jpeg("x.jpg")
	}
	_, err = f.uc.UpdateProduct(ctx, p.ID, usecase.UpdateProductRequest{Images: ups})
	var ve usecase.ErrValidation
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, usecase.CodeTooManyFiles, ve.Code)
	assert.Empty(t, f.files(t, usecase.AssetProducts))
}

func TestUpdateProduct_PersistFailureRemovesNewImagesOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.category(t)

	p, err := f.uc.CreateProduct(ctx, usecase.Product{Name: "Fan", CategoryID: c.ID},
		[]usecase.Upload{jpeg("a.jpg")})
	require.NoError(t, err)

	f.repo.failWrites = true
	_, err = f.uc.UpdateProduct(ctx, p.ID, usecase.UpdateProductRequest{
		Images: []usecase.Upload{jpeg("b.jpg")},
	})
	require.ErrorIs(t, err, errPersist)

	assert.Equal(t, []string{p.Images[0].Filename()}, f.files(t, usecase.AssetProducts))
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.category(t)

	p, err := f.uc.CreateProduct(ctx, usecase.Product{Name: "Fan", CategoryID: c.ID},
		[]usecase.Upload{jpeg("a.jpg"), jpeg("b.jpg")})
	require.NoError(t, err)

	require.NoError(t, f.uc.DeleteProduct(ctx, p.ID))
	assert.Empty(t, f.files(t, usecase.AssetProducts))
	assert.Empty(t, f.repo.products)

	require.NoError(t, f.uc.DeleteProduct(ctx, p.ID))
	require.NoError(t, f.uc.DeleteProduct(ctx, uuid.New()))
}

func TestDeleteProduct_OneFailedFileDoesNotBlockTheRest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.category(t)

	p, err := f.uc.CreateProduct(ctx, usecase.Product{Name: "Fan", CategoryID: c.ID},
		[]usecase.Upload{jpeg("a.jpg"), jpeg("b.jpg"), jpeg("c.jpg")})
	require.NoError(t, err)
	require.Len(t, p.Images, 3)

	stuck := p.Images[1]
	uc := usecase.New(f.repo, deleteFailStore{AssetStore: f.store, failRef: stuck}, nil, nil,
		usecase.Settings{MaxUploadSize: 1 << 20}, discardLogger())

	require.NoError(t, uc.DeleteProduct(ctx, p.ID))

	assert.False(t, f.exists(t, p.Images[0]))
	assert.False(t, f.exists(t, p.Images[2]))
	assert.True(t, f.exists(t, stuck))
	assert.Empty(t, f.repo.products)
}

func TestDeleteProductImage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.category(t)

	p, err := f.uc.CreateProduct(ctx, usecase.Product{Name: "Fan", CategoryID: c.ID},
		[]usecase.Upload{jpeg("a.jpg"), jpeg("b.jpg")})
	require.NoError(t, err)
	a, b := p.Images[0], p.Images[1]

	require.NoError(t, f.uc.DeleteProductImage(ctx, p.ID, a))

	got, err := f.uc.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []usecase.ImageRef{b}, got.Images)
	assert.False(t, f.exists(t, a))
	assert.True(t, f.exists(t, b))

	require.NoError(t, f.uc.DeleteProductImage(ctx, p.ID, a))
	assert.True(t, f.exists(t, b))
}

func TestDeleteProductImage_KeepsFileWhenPersistFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.category(t)

	p, err := f.uc.CreateProduct(ctx, usecase.Product{Name: "Fan", CategoryID: c.ID},
		[]usecase.Upload{jpeg("a.jpg")})
	require.NoError(t, err)

	f.repo.failWrites = true
	require.ErrorIs(t, f.uc.DeleteProductImage(ctx, p.ID, p.Images[0]), errPersist)
	assert.True(t, f.exists(t, p.Images[0]))
}

func TestListStorefrontProducts_UnknownCategory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.category(t)

	_, err := f.uc.CreateProduct(ctx, usecase.Product{Name: "Fan", CategoryID: c.ID}, nil)
	require.NoError(t, err)
	_, err = f.uc.CreateProduct(ctx, usecase.Product{Name: "Hidden", CategoryID: c.ID, Status: usecase.StatusInactive}, nil)
	require.NoError(t, err)

	list, total, err := f.uc.ListStorefrontProducts(ctx, usecase.StorefrontProductsOption{CategorySlug: "lighting"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Fan", list[0].Name)

	list, total, err = f.uc.ListStorefrontProducts(ctx, usecase.StorefrontProductsOption{CategorySlug: "no-such-category"})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}
