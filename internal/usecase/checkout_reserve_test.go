package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/pricing"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 本物の tx の上で在庫の条件付き減算だけ差し替える
type racingTx struct {
	inner repo.TransactionManager
	inv   *racingInventory
}

func (m racingTx) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return m.inner.WithinTx(ctx, func(r repo.TxRepos) error {
		return fn(racingRepos{TxRepos: r, inv: m.inv})
	})
}

type racingRepos struct {
	repo.TxRepos
	inv *racingInventory
}

func (r racingRepos) Inventory() repo.InventoryRepository {
	r.inv.InventoryRepository = r.TxRepos.Inventory()
	return r.inv
}

// lose 回まで減算に負ける。drainTo >= 0 なら負けたときに在庫をその値にする（他の購入者を再現）
type racingInventory struct {
	repo.InventoryRepository
	lose    int
	drainTo int64
	calls   int
}

func (i *racingInventory) DecreaseStockIfEnough(ctx context.Context, productID string, qty int64) (bool, error) {
	i.calls++
	if i.calls <= i.lose {
		if i.drainTo >= 0 {
			if err := i.InventoryRepository.SetStock(ctx, productID, i.drainTo); err != nil {
				return false, err
			}
		}
		return false, nil
	}
	return i.InventoryRepository.DecreaseStockIfEnough(ctx, productID, qty)
}

func newRacingCheckout(e *env, inv *racingInventory) *usecase.CheckoutUsecase {
	return usecase.NewCheckoutUsecase(
		racingTx{inner: e.tx, inv: inv}, e.gateway, e.events, usecase.UUIDGenerator{}, fixedClock{testNow}, pricing.DefaultRules(), "INR",
	)
}

func TestPlaceOrder_RetriesAfterLosingStockRace(t *testing.T) {
	e := newEnv(t)
	p := e.seedProduct(t, "Country Chicken", 450, 10)
	inv := &racingInventory{lose: 1, drainTo: -1}

	out, err := newRacingCheckout(e, inv).PlaceOrder(context.Background(), pickupCOD(line(p, 2)))
	require.NoError(t, err)

	assert.Equal(t, 2, inv.calls)
	assert.NotEmpty(t, out.OrderID)
	assert.Equal(t, int64(8), e.stockOf(t, p.ID))
	assert.Equal(t, int64(1), e.count(t, &model.Order{}))
	assert.Equal(t, int64(1), e.count(t, &model.OrderItem{}))
}

func TestPlaceOrder_StockDrainedDuringRaceWritesNothing(t *testing.T) {
	e := newEnv(t)
	p := e.seedProduct(t, "Giriraja Chicken", 380, 5)
	inv := &racingInventory{lose: 1, drainTo: 1}

	_, err := newRacingCheckout(e, inv).PlaceOrder(context.Background(), pickupCOD(line(p, 3)))
	he := requireHTTPError(t, err, http.StatusBadRequest)
	assert.Contains(t, he.Message, "only 1 available")

	var ise *usecase.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, int64(1), ise.Available)

	assert.Equal(t, 1, inv.calls)
	assert.Equal(t, int64(5), e.stockOf(t, p.ID))
	assert.Zero(t, e.count(t, &model.Order{}))
	assert.Zero(t, e.count(t, &model.OrderItem{}))
	assert.Empty(t, e.events.Types())
}

func TestPlaceOrder_StockConflictAfterRetries(t *testing.T) {
	e := newEnv(t)
	p := e.seedProduct(t, "Broiler Chicken", 280, 10)
	inv := &racingInventory{lose: 100, drainTo: -1}

	_, err := newRacingCheckout(e, inv).PlaceOrder(context.Background(), pickupCOD(line(p, 1)))
	he := requireHTTPError(t, err, http.StatusInternalServerError)
	assert.Equal(t, "stock update conflict, please retry", he.Message)

	assert.Equal(t, 3, inv.calls)
	assert.Equal(t, int64(10), e.stockOf(t, p.ID))
	assert.Zero(t, e.count(t, &model.Order{}))
}
