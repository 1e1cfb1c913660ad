package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrder(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	uc := usecase.NewOrderUsecase(e.tx)
	p := e.seedProduct(t, "Country Chicken", 450, 10)
	placed := e.placeCOD(t, p, 2)

	out, err := uc.GetOrder(ctx, placed.OrderID)
	require.NoError(t, err)
	assert.Equal(t, placed.OrderNumber, out.OrderNumber)
	assert.Equal(t, "Ravi Kumar", out.CustomerName)
	require.Len(t, out.Items, 1)
	assert.Equal(t, p.ID, out.Items[0].ProductID)
	assert.Equal(t, int64(2), out.Items[0].Quantity)

	_, err = uc.GetOrder(ctx, "missing")
	requireHTTPError(t, err, http.StatusNotFound)
	_, err = uc.GetOrder(ctx, " ")
	requireHTTPError(t, err, http.StatusBadRequest)
}
