package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/eshop/internal/events"
	"github.com/Skotchmaster/eshop/internal/models"
	"github.com/Skotchmaster/eshop/internal/repo"
	"github.com/Skotchmaster/eshop/internal/testutil"
	"github.com/Skotchmaster/eshop/internal/transport"
)

type catalogFixture struct {
	svc    *CatalogService
	store  *repo.GormRepo
	pub    *fakePublisher
	images *fakeImages
	index  *fakeIndex
	cache  *fakeCache
}

func newCatalog(t *testing.T) *catalogFixture {
	t.Helper()
	f := &catalogFixture{
		store:  &repo.GormRepo{DB: testutil.NewDB(t)},
		pub:    &fakePublisher{},
		images: newFakeImages(),
		index:  newFakeIndex(),
		cache:  newFakeCache(),
	}
	f.svc = &CatalogService{
		Store:  f.store,
		Images: f.images,
		Events: f.pub,
		Search: f.index,
		Cache:  f.cache,
		Now:    func() time.Time { return time.UnixMilli(1700000000000) },
	}
	return f
}

func pngUpload(name string) Upload {
	return Upload{Filename: name, ContentType: "image/png", Body: strings.NewReader("png")}
}

func productRequest(category string) transport.CreateProductRequest {
	return transport.CreateProductRequest{
		Name:        "Phone",
		Description: "A phone",
		Price:       decimal.RequireFromString("199.5"),
		Category:    category,
	}
}

func TestCreateProduct(t *testing.T) {
	t.Parallel()
	f := newCatalog(t)
	ctx := context.Background()

	cat, err := f.svc.CreateCategory(ctx, transport.CategoryRequest{Name: "Phones"})
	require.NoError(t, err)

	prod, err := f.svc.CreateProduct(ctx, productRequest(cat.ID.String()), pngUpload("my phone.png"), "http://shop.local")
	require.NoError(t, err)
	require.Equal(t, "http://shop.local/public/uploads/my-phone.png-1700000000000.png", prod.Image)
	require.Equal(t, "Phones", prod.Category.Name)
	require.Contains(t, f.images.saved, "my-phone.png-1700000000000.png")
	require.Equal(t, "Phone", f.index.indexed[prod.ID])
	require.Equal(t, []string{"category_created", "product_created"}, f.pub.types())
	require.Equal(t, events.TopicProducts, f.pub.events[1].topic)

	f.svc.PublicBaseURL = "https://cdn.example.com/"
	prod, err = f.svc.CreateProduct(ctx, productRequest(cat.ID.String()), pngUpload("b.png"), "http://shop.local")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(prod.Image, "https://cdn.example.com/public/uploads/"), prod.Image)
}

func TestCreateProductUnknownCategoryWritesNothing(t *testing.T) {
	t.Parallel()
	f := newCatalog(t)
	ctx := context.Background()

	_, err := f.svc.CreateProduct(ctx, productRequest(uuid.NewString()), pngUpload("a.png"), "http://x")
	require.ErrorIs(t, err, ErrInvalidReference)
	require.Empty(t, f.images.saved)

	n, err := f.svc.CountProducts(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Empty(t, f.pub.types())
}

func TestCreateProductRejectsBadInput(t *testing.T) {
	t.Parallel()
	f := newCatalog(t)
	ctx := context.Background()

	cat, err := f.svc.CreateCategory(ctx, transport.CategoryRequest{Name: "Phones"})
	require.NoError(t, err)

	gif := Upload{Filename: "a.gif", ContentType: "image/gif", Body: strings.NewReader("gif")}
	_, err = f.svc.CreateProduct(ctx, productRequest(cat.ID.String()), gif, "http://x")
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorContains(t, err, "invalid image type")

	_, err = f.svc.CreateProduct(ctx, productRequest(cat.ID.String()), Upload{}, "http://x")
	require.ErrorIs(t, err, ErrValidation)

	req := productRequest(cat.ID.String())
	req.Price = decimal.NewFromInt(-1)
	_, err = f.svc.CreateProduct(ctx, req, pngUpload("a.png"), "http://x")
	require.ErrorIs(t, err, ErrValidation)

	require.Empty(t, f.images.saved)
}

func TestGetProductUsesCache(t *testing.T) {
	t.Parallel()
	f := newCatalog(t)
	ctx := context.Background()

	cat, err := f.svc.CreateCategory(ctx, transport.CategoryRequest{Name: "Phones"})
	require.NoError(t, err)
	prod, err := f.svc.CreateProduct(ctx, productRequest(cat.ID.String()), pngUpload("a.png"), "http://x")
	require.NoError(t, err)

	got, err := f.svc.GetProduct(ctx, prod.ID)
	require.NoError(t, err)
	require.Equal(t, prod.ID, got.ID)
	require.Contains(t, f.cache.items, prod.ID)

	name := "Renamed"
	_, err = f.svc.PatchProduct(ctx, prod.ID, transport.PatchProductRequest{Name: &name})
	require.NoError(t, err)
	require.NotContains(t, f.cache.items, prod.ID)
	require.Equal(t, "Renamed", f.index.indexed[prod.ID])

	got, err = f.svc.GetProduct(ctx, prod.ID)
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.Name)

	_, err = f.svc.GetProduct(ctx, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCategoryChangeRefreshesProducts(t *testing.T) {
	t.Parallel()
	f := newCatalog(t)
	ctx := context.Background()

	phones, err := f.svc.CreateCategory(ctx, transport.CategoryRequest{Name: "Phones"})
	require.NoError(t, err)
	other, err := f.svc.CreateCategory(ctx, transport.CategoryRequest{Name: "Other"})
	require.NoError(t, err)
	prod, err := f.svc.CreateProduct(ctx, productRequest(phones.ID.String()), pngUpload("a.png"), "http://x")
	require.NoError(t, err)
	unrelated, err := f.svc.CreateProduct(ctx, productRequest(other.ID.String()), pngUpload("b.png"), "http://x")
	require.NoError(t, err)

	_, err = f.svc.GetProduct(ctx, prod.ID)
	require.NoError(t, err)
	_, err = f.svc.GetProduct(ctx, unrelated.ID)
	require.NoError(t, err)

	name := "Mobiles"
	_, err = f.svc.PatchCategory(ctx, phones.ID, transport.PatchCategoryRequest{Name: &name})
	require.NoError(t, err)
	require.NotContains(t, f.cache.items, prod.ID)
	require.Contains(t, f.cache.items, unrelated.ID)
	require.Equal(t, "Mobiles", f.index.categories[prod.ID])

	got, err := f.svc.GetProduct(ctx, prod.ID)
	require.NoError(t, err)
	require.Equal(t, "Mobiles", got.Category.Name)

	require.NoError(t, f.svc.DeleteCategory(ctx, phones.ID))
	require.NotContains(t, f.cache.items, prod.ID)
	require.Empty(t, f.index.categories[prod.ID])

	got, err = f.svc.GetProduct(ctx, prod.ID)
	require.NoError(t, err)
	require.Nil(t, got.Category)
}

func TestReplaceImage(t *testing.T) {
	t.Parallel()
	f := newCatalog(t)
	ctx := context.Background()

	cat, err := f.svc.CreateCategory(ctx, transport.CategoryRequest{Name: "Phones"})
	require.NoError(t, err)
	prod, err := f.svc.CreateProduct(ctx, productRequest(cat.ID.String()), pngUpload("old.png"), "http://x")
	require.NoError(t, err)

	f.svc.Now = func() time.Time { return time.UnixMilli(1700000000999) }
	updated, err := f.svc.ReplaceImage(ctx, prod.ID, pngUpload("new.png"), "http://x")
	require.NoError(t, err)
	require.Equal(t, "http://x/public/uploads/new.png-1700000000999.png", updated.Image)
	require.Equal(t, []string{"old.png-1700000000000.png"}, f.images.deleted)

	_, err = f.svc.ReplaceImage(ctx, uuid.New(), pngUpload("new.png"), "http://x")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteProduct(t *testing.T) {
	t.Parallel()
	f := newCatalog(t)
	ctx := context.Background()

	cat, err := f.svc.CreateCategory(ctx, transport.CategoryRequest{Name: "Phones"})
	require.NoError(t, err)
	prod, err := f.svc.CreateProduct(ctx, productRequest(cat.ID.String()), pngUpload("a.png"), "http://x")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteProduct(ctx, prod.ID))
	require.NotContains(t, f.index.indexed, prod.ID)
	require.ErrorIs(t, f.svc.DeleteProduct(ctx, prod.ID), ErrNotFound)
}

func TestSearchProducts(t *testing.T) {
	t.Parallel()
	f := newCatalog(t)
	ctx := context.Background()

	cat, err := f.svc.CreateCategory(ctx, transport.CategoryRequest{Name: "Phones"})
	require.NoError(t, err)
	prod, err := f.svc.CreateProduct(ctx, productRequest(cat.ID.String()), pngUpload("a.png"), "http://x")
	require.NoError(t, err)

	f.index.hits = []uuid.UUID{prod.ID, uuid.New()}
	total, prods, err := f.svc.SearchProducts(ctx, "phone", 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, prods, 1)
	require.Equal(t, prod.ID, prods[0].ID)

	_, _, err = f.svc.SearchProducts(ctx, "  ", 1, 10)
	require.ErrorIs(t, err, ErrValidation)

	f.svc.Search = nil
	_, _, err = f.svc.SearchProducts(ctx, "phone", 1, 10)
	require.ErrorIs(t, err, ErrSearchDisabled)
}

func TestReindex(t *testing.T) {
	t.Parallel()
	f := newCatalog(t)
	ctx := context.Background()

	cat, err := f.svc.CreateCategory(ctx, transport.CategoryRequest{Name: "Phones"})
	require.NoError(t, err)
	require.NoError(t, f.store.CreateProduct(ctx, &models.Product{Name: "A", Description: "d", CategoryID: cat.ID}))
	require.NoError(t, f.store.CreateProduct(ctx, &models.Product{Name: "B", Description: "d", CategoryID: cat.ID}))

	n, err := f.svc.Reindex(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Len(t, f.index.indexed, 2)
}

func TestIndexFailureDoesNotFailWrite(t *testing.T) {
	t.Parallel()
	f := newCatalog(t)
	ctx := context.Background()
	f.index.err = errBoom
	f.pub.err = errBoom

	cat, err := f.svc.CreateCategory(ctx, transport.CategoryRequest{Name: "Phones"})
	require.NoError(t, err)
	_, err = f.svc.CreateProduct(ctx, productRequest(cat.ID.String()), pngUpload("a.png"), "http://x")
	require.NoError(t, err)
}

func TestFeaturedProducts(t *testing.T) {
	t.Parallel()
	f := newCatalog(t)
	ctx := context.Background()

	cat, err := f.svc.CreateCategory(ctx, transport.CategoryRequest{Name: "Phones"})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		req := productRequest(cat.ID.String())
		req.IsFeatured = i > 0
		_, err := f.svc.CreateProduct(ctx, req, pngUpload("p.png"), "http://x")
		require.NoError(t, err)
		f.svc.Now = func() time.Time { return time.UnixMilli(int64(1700000000001 + i)) }
	}

	all, err := f.svc.FeaturedProducts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)

	one, err := f.svc.FeaturedProducts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, one, 1)

	_, err = f.svc.FeaturedProducts(ctx, -1)
	require.ErrorIs(t, err, ErrValidation)
}
