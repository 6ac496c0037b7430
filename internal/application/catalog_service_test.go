package application

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
)

type mockIndex struct{ mock.Mock }

func (m *mockIndex) Index(ctx context.Context, p *entity.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockIndex) Remove(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockIndex) Search(ctx context.Context, q string, limit int) ([]string, error) {
	args := m.Called(ctx, q, limit)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

type memImages struct {
	uploaded map[string]string
	deleted  []string
}

func (m *memImages) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if m.uploaded == nil {
		m.uploaded = map[string]string{}
	}
	m.uploaded[objectPath] = string(b)
	return "https://cdn.example.com/" + objectPath, nil
}

func (m *memImages) Delete(_ context.Context, url string) error {
	m.deleted = append(m.deleted, url)
	return nil
}

func TestCreateProduct_CategoryByIDOrName(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	c, err := e.cat.CreateCategory(ctx, "Kitchen", "pots and pans")
	require.NoError(t, err)

	byName, err := e.cat.CreateProduct(ctx, ProductInput{Name: "Pan", Price: 20, Stock: 3, Category: "kitchen"})
	require.NoError(t, err)
	assert.Equal(t, c.ID, byName.CategoryID)

	byID, err := e.cat.CreateProduct(ctx, ProductInput{Name: "Pot", Price: 25, Stock: 3, Category: c.ID})
	require.NoError(t, err)
	assert.Equal(t, c.ID, byID.CategoryID)

	_, err = e.cat.CreateProduct(ctx, ProductInput{Name: "Spoon", Price: 1, Category: "garden"})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	_, err = e.cat.CreateProduct(ctx, ProductInput{Name: "Bad", Price: 1, Stock: -1})
	assert.Equal(t, 400, statusOf(err))

	list, err := e.cat.ListProducts(ctx, "Kitchen")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Pot", list[0].Name)

	none, err := e.cat.ListProducts(ctx, "garden")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCreateCategory_Duplicate(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	_, err := e.cat.CreateCategory(ctx, "Books", "")
	require.NoError(t, err)
	_, err = e.cat.CreateCategory(ctx, "Books", "")
	assert.ErrorIs(t, err, ErrCategoryExists)
	assert.Equal(t, 409, statusOf(err))
}

func TestSearchProducts(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	red := e.product("Red Mug", 5, 1)
	blue := e.product("Blue Mug", 5, 1)

	idx := &mockIndex{}
	e.cat.Index = idx
	idx.On("Search", mock.Anything, "mug", defaultSearchLimit).Return([]string{blue.ID, "stale", red.ID}, nil).Once()

	got, err := e.cat.SearchProducts(ctx, " mug ", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, blue.ID, got[0].ID)
	assert.Equal(t, red.ID, got[1].ID)

	idx.On("Search", mock.Anything, "red", 5).Return(nil, errBoom).Once()
	got, err = e.cat.SearchProducts(ctx, "red", 5)
	require.NoError(t, err, "falls back to the database")
	require.Len(t, got, 1)
	assert.Equal(t, red.ID, got[0].ID)
	idx.AssertExpectations(t)

	_, err = e.cat.SearchProducts(ctx, "  ", 5)
	assert.Equal(t, 400, statusOf(err))
}

func TestProductIndexing(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	idx := &mockIndex{}
	e.cat.Index = idx

	idx.On("Index", mock.Anything, mock.AnythingOfType("*entity.Product")).Return(errBoom).Once()
	p, err := e.cat.CreateProduct(ctx, ProductInput{Name: "Desk", Price: 100, Stock: 1})
	require.NoError(t, err, "indexing failures are not fatal")

	idx.On("Remove", mock.Anything, p.ID).Return(nil).Once()
	require.NoError(t, e.cat.DeleteProduct(ctx, p.ID))
	idx.AssertExpectations(t)

	assert.ErrorIs(t, e.cat.DeleteProduct(ctx, p.ID), ErrProductNotFound)
}

func TestUploadProductImage(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	p := e.product("Chair", 50, 2)

	_, err := e.cat.UploadProductImage(ctx, p.ID, "a.png", "image/png", strings.NewReader("png"))
	assert.ErrorIs(t, err, ErrImageStoreUnavailable)

	images := &memImages{}
	e.cat.Images = images

	_, err = e.cat.UploadProductImage(ctx, p.ID, "a.txt", "text/plain", strings.NewReader("x"))
	assert.Equal(t, 400, statusOf(err))

	first, err := e.cat.UploadProductImage(ctx, p.ID, "Photo.PNG", "image/png", strings.NewReader("one"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.Image, "https://cdn.example.com/products/"+p.ID+"/"))
	assert.True(t, strings.HasSuffix(first.Image, ".png"))

	second, err := e.cat.UploadProductImage(ctx, p.ID, "b.jpg", "image/jpeg", strings.NewReader("two"))
	require.NoError(t, err)
	assert.Equal(t, []string{first.Image}, images.deleted)

	stored, err := e.cat.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, second.Image, stored.Image)
}

func TestBanners(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	off := false

	late, err := e.cat.CreateBanner(ctx, BannerInput{Title: "Late", Image: "l.png", Order: 2})
	require.NoError(t, err)
	assert.Equal(t, "Featured", late.Badge)
	assert.Equal(t, "Shop Now", late.CTAText)
	assert.Equal(t, "/products", late.CTALink)
	assert.True(t, late.Active)

	_, err = e.cat.CreateBanner(ctx, BannerInput{Title: "Hidden", Image: "h.png", Active: &off})
	require.NoError(t, err)
	older, err := e.cat.CreateBanner(ctx, BannerInput{Title: "Older", Image: "o.png", Order: 1})
	require.NoError(t, err)
	newer, err := e.cat.CreateBanner(ctx, BannerInput{Title: "Newer", Image: "n.png", Order: 1, Badge: "Sale"})
	require.NoError(t, err)

	list, err := e.cat.ListBanners(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{newer.ID, older.ID, late.ID}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, "Sale", list[0].Badge)

	_, err = e.cat.CreateBanner(ctx, BannerInput{Title: "No image"})
	assert.Equal(t, 400, statusOf(err))

	require.NoError(t, e.cat.DeleteBanner(ctx, late.ID))
	assert.ErrorIs(t, e.cat.DeleteBanner(ctx, late.ID), ErrBannerNotFound)
}
