package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix + ":" + セッションID に {items} をJSONで置く
const KeyPrefix = "laxmi-farms-cart"

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// NewRedisClient は REDIS_URL から作って疎通確認する
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func Key(sessionID string) string {
	return KeyPrefix + ":" + sessionID
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (model.CartSnapshot, error) {
	raw, err := s.client.Get(ctx, Key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.CartSnapshot{Items: []model.CartItem{}}, nil
	}
	if err != nil {
		return model.CartSnapshot{}, err
	}

	var snap model.CartSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		//壊れたスナップショットは空として扱う
		return model.CartSnapshot{Items: []model.CartItem{}}, nil
	}
	if snap.Items == nil {
		snap.Items = []model.CartItem{}
	}
	return snap, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, snap model.CartSnapshot) error {
	if snap.Items == nil {
		snap.Items = []model.CartItem{}
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, Key(sessionID), raw, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, Key(sessionID)).Err()
}
