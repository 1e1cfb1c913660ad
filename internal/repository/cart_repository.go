package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// カートのスナップショット {items} をセッション単位で保存する約束
// 無いときは空のスナップショットを返す（ErrNotFoundにしない）
type CartSnapshotRepository interface {
	Load(ctx context.Context, sessionID string) (model.CartSnapshot, error)
	Save(ctx context.Context, sessionID string, snap model.CartSnapshot) error
	Delete(ctx context.Context, sessionID string) error
}
