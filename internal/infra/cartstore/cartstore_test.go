package cartstore

import (
	"context"
	"os"
	"testing"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ repo.CartSnapshotRepository = (*MemoryStore)(nil)
	_ repo.CartSnapshotRepository = (*RedisStore)(nil)
)

func sampleSnapshot() model.CartSnapshot {
	return model.CartSnapshot{Items: []model.CartItem{
		{ProductID: "p1", Name: "Country Chicken", UnitPrice: decimal.NewFromInt(450), Quantity: 2},
		{ProductID: "p2", Name: "Eggs", WeightOption: "tray", UnitPrice: decimal.RequireFromString("6.50"), Quantity: 30},
	}}
}

func exerciseStore(t *testing.T, s repo.CartSnapshotRepository) {
	t.Helper()
	ctx := context.Background()
	session := uuid.NewString()

	empty, err := s.Load(ctx, session)
	require.NoError(t, err)
	assert.NotNil(t, empty.Items)
	assert.Len(t, empty.Items, 0)

	require.NoError(t, s.Save(ctx, session, sampleSnapshot()))

	got, err := s.Load(ctx, session)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "p1", got.Items[0].ProductID)
	assert.True(t, got.Items[1].UnitPrice.Equal(decimal.RequireFromString("6.5")))
	assert.Equal(t, int64(30), got.Items[1].Quantity)

	require.NoError(t, s.Delete(ctx, session))
	got, err = s.Load(ctx, session)
	require.NoError(t, err)
	assert.Len(t, got.Items, 0)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Save(ctx, "a", sampleSnapshot()))

	got, _ := s.Load(ctx, "a")
	got.Items[0].Quantity = 99

	again, _ := s.Load(ctx, "a")
	assert.Equal(t, int64(2), again.Items[0].Quantity)
}

// REDIS_URL があるときだけ実Redisで確認
func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	client, err := NewRedisClient(context.Background(), url)
	require.NoError(t, err)
	defer client.Close()

	exerciseStore(t, NewRedisStore(client, time.Minute))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "laxmi-farms-cart:abc", Key("abc"))
}
