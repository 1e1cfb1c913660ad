package repository

import (
	"context"

	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

// 同じ *gorm.DB（tx）を共有するリポジトリの束
type gormRepos struct {
	db *gorm.DB
}

func (r gormRepos) Orders() repo.OrderRepository         { return NewOrderGormRepository(r.db) }
func (r gormRepos) OrderItems() repo.OrderItemRepository { return NewOrderItemGormRepository(r.db) }
func (r gormRepos) Inventory() repo.InventoryRepository  { return NewInventoryGormRepository(r.db) }
func (r gormRepos) Products() repo.ProductRepository     { return NewProductGormRepository(r.db) }
func (r gormRepos) AuditLogs() repo.AuditLogRepository   { return NewAuditLogGormRepository(r.db) }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

// fn がエラーかpanicならロールバック
func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(gormRepos{db: tx})
	})
}
