package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductUC(e *env) *usecase.ProductUsecase {
	return usecase.NewProductUsecase(e.products, e.tx, usecase.UUIDGenerator{}, fixedClock{testNow})
}

func TestAdminCreateProduct_SlugCollisionGetsSuffix(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	uc := newProductUC(e)

	in := usecase.AdminCreateProductInput{
		Name:          "Country Chicken",
		Category:      "chicken",
		Price:         decimal.NewFromInt(450),
		StockQuantity: 5,
	}
	first, err := uc.AdminCreateProduct(ctx, adminActor, in)
	require.NoError(t, err)
	second, err := uc.AdminCreateProduct(ctx, adminActor, in)
	require.NoError(t, err)

	assert.Equal(t, "country-chicken", first.Slug)
	assert.Equal(t, "country-chicken-2", second.Slug)
	assert.Equal(t, model.PricingPerBird, first.PricingModel)
	assert.True(t, first.IsAvailable)
	assert.Equal(t, int64(1), first.MinOrderQuantity)
	assert.Equal(t, int64(2), e.count(t, &model.AuditLog{}))

	//削除済みの slug も再利用しない
	require.NoError(t, uc.AdminDeleteProduct(ctx, adminActor, second.ID))
	third, err := uc.AdminCreateProduct(ctx, adminActor, in)
	require.NoError(t, err)
	assert.Equal(t, "country-chicken-3", third.Slug)
}

func TestAdminCreateProduct_Validation(t *testing.T) {
	e := newEnv(t)
	uc := newProductUC(e)
	ctx := context.Background()
	ok := usecase.AdminCreateProductInput{Name: "Desi Eggs", Category: "eggs", Price: decimal.NewFromInt(120)}

	_, err := uc.AdminCreateProduct(ctx, "", ok)
	requireHTTPError(t, err, http.StatusUnauthorized)

	bad := ok
	bad.Name = "  "
	_, err = uc.AdminCreateProduct(ctx, adminActor, bad)
	requireHTTPError(t, err, http.StatusBadRequest)

	bad = ok
	bad.Price = decimal.NewFromInt(-1)
	_, err = uc.AdminCreateProduct(ctx, adminActor, bad)
	requireHTTPError(t, err, http.StatusBadRequest)

	bad = ok
	bad.PricingModel = "per_dozen"
	_, err = uc.AdminCreateProduct(ctx, adminActor, bad)
	requireHTTPError(t, err, http.StatusBadRequest)

	bad = ok
	bad.Name = "!!!"
	_, err = uc.AdminCreateProduct(ctx, adminActor, bad)
	requireHTTPError(t, err, http.StatusBadRequest)
}

func TestAdminUpdateInventory_TracksAvailability(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	uc := newProductUC(e)
	p := e.seedProduct(t, "Kadaknath Chicken", 850, 4)

	require.NoError(t, uc.AdminUpdateInventory(ctx, adminActor, p.ID, 0, "sold at farm"))
	got, err := e.products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.StockQuantity)
	assert.False(t, got.IsAvailable)

	var adj model.InventoryAdjustment
	require.NoError(t, e.db.Where("product_id = ?", p.ID).First(&adj).Error)
	assert.Equal(t, int64(-4), adj.Delta)

	require.NoError(t, uc.AdminUpdateInventory(ctx, adminActor, p.ID, 7, "new batch"))
	got, err = e.products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAvailable)

	requireHTTPError(t, uc.AdminUpdateInventory(ctx, adminActor, p.ID, -1, "x"), http.StatusBadRequest)
	requireHTTPError(t, uc.AdminUpdateInventory(ctx, adminActor, p.ID, 1, ""), http.StatusBadRequest)
	requireHTTPError(t, uc.AdminUpdateInventory(ctx, adminActor, "missing", 1, "x"), http.StatusNotFound)
}

func TestListPublicProducts_HidesOutOfStock(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	uc := newProductUC(e)
	e.seedProduct(t, "Country Chicken", 450, 3)
	e.seedProduct(t, "Broiler Chicken", 280, 0)

	pub, err := uc.ListPublicProducts(ctx, usecase.ListProductsInput{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), pub.Total)

	all, err := uc.AdminListProducts(ctx, usecase.ListProductsInput{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	_, err = uc.ListPublicProducts(ctx, usecase.ListProductsInput{Page: 0, Limit: 20})
	requireHTTPError(t, err, http.StatusBadRequest)
}

func TestGetProductBySlug(t *testing.T) {
	e := newEnv(t)
	uc := newProductUC(e)
	p := e.seedProduct(t, "Giriraja Chicken", 380, 3)

	got, err := uc.GetProductBySlug(context.Background(), p.Slug)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = uc.GetProductBySlug(context.Background(), "nope")
	requireHTTPError(t, err, http.StatusNotFound)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Country Chicken":         "country-chicken",
		"  Desi Eggs (30 pack) ":  "desi-eggs-30-pack",
		"Kadaknath -- Premium!!":  "kadaknath-premium",
		"నాటు కోడి":               "",
	}
	for in, want := range tests {
		assert.Equal(t, want, usecase.Slugify(in), in)
	}
}
