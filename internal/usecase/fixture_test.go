package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/pricing"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// =====================
// Mocks
// =====================

type GatewayMock struct{ mock.Mock }

func (m *GatewayMock) CreateOrder(ctx context.Context, amountMinor int64, currency string, receipt string) (string, error) {
	args := m.Called(ctx, amountMinor, currency, receipt)
	return args.String(0), args.Error(1)
}

func (m *GatewayMock) VerifyPaymentSignature(orderID, paymentID, signature string) (bool, error) {
	args := m.Called(orderID, paymentID, signature)
	return args.Bool(0), args.Error(1)
}

func (m *GatewayMock) KeyID() string { return "rzp_test_key" }

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

// 受け取ったイベントを記録するだけ
type eventRecorder struct {
	mu     sync.Mutex
	events []model.OrderEvent
}

func (r *eventRecorder) Publish(_ context.Context, ev model.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *eventRecorder) Types() []model.OrderEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.OrderEventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type env struct {
	db       *gorm.DB
	products *infraRepo.ProductGormRepository
	tx       *infraRepo.TxManagerGorm
	gateway  *GatewayMock
	events   *eventRecorder
	checkout *usecase.CheckoutUsecase
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gdb := db.NewTestDB(t)
	e := &env{
		db:       gdb,
		products: infraRepo.NewProductGormRepository(gdb),
		tx:       infraRepo.NewTxManagerGorm(gdb),
		gateway:  &GatewayMock{},
		events:   &eventRecorder{},
	}
	e.checkout = usecase.NewCheckoutUsecase(
		e.tx, e.gateway, e.events, usecase.UUIDGenerator{}, fixedClock{testNow}, pricing.DefaultRules(), "INR",
	)
	return e
}

func (e *env) seedProduct(t *testing.T, name string, price int64, stock int64) model.Product {
	t.Helper()
	p := model.Product{
		ID:               uuid.NewString(),
		Name:             name,
		Slug:             usecase.Slugify(name) + "-" + uuid.NewString()[:6],
		Category:         "chicken",
		Price:            decimal.NewFromInt(price),
		PricingModel:     model.PricingPerBird,
		StockQuantity:    stock,
		IsAvailable:      stock > 0,
		MinOrderQuantity: 1,
	}
	require.NoError(t, e.db.Create(&p).Error)
	return p
}

func (e *env) stockOf(t *testing.T, productID string) int64 {
	t.Helper()
	p, err := e.products.FindByID(context.Background(), productID)
	require.NoError(t, err)
	return p.StockQuantity
}

func (e *env) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(m).Count(&n).Error)
	return n
}

func pickupCOD(items ...usecase.CheckoutItemInput) usecase.PlaceOrderInput {
	return usecase.PlaceOrderInput{
		Items:         items,
		Customer:      usecase.CustomerInput{Name: "Ravi Kumar", Phone: "9876543210"},
		PaymentMethod: "cod",
		DeliveryType:  "farm_pickup",
	}
}

func line(p model.Product, qty int64) usecase.CheckoutItemInput {
	return usecase.CheckoutItemInput{
		ProductID: p.ID,
		Name:      p.Name,
		Quantity:  qty,
		UnitPrice: p.Price,
	}
}

func requireHTTPError(t *testing.T, err error, status int) *usecase.HTTPError {
	t.Helper()
	require.Error(t, err)
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "expected HTTPError, got %v", err)
	require.Equal(t, status, he.Status, he.Message)
	return he
}
