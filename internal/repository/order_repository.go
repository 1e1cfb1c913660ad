package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

type AdminOrderListFilter struct {
	Page          int
	Limit         int
	Status        string
	PaymentStatus string
	Q             string // 注文番号・氏名・電話
	From          *time.Time
	To            *time.Time
}

// ダッシュボード集計
type OrderStats struct {
	Revenue         decimal.Decimal
	OrderCount      int64
	UniqueCustomers int64
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (model.Order, error)
	ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error)
	Create(ctx context.Context, order model.Order) error
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error
	UpdatePayment(ctx context.Context, orderID string, status model.PaymentStatus, gatewayPaymentID *string) error

	//管理者用の注文一覧（新しい順）
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
	Stats(ctx context.Context) (OrderStats, error)
}
