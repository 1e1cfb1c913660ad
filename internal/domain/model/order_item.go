package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文時点の商品名・価格を保存する（商品削除後も残る）
type OrderItem struct {
	ID           string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderID      string          `gorm:"type:varchar(36);not null;index" json:"order_id"`
	LineNo       int             `gorm:"not null;default:0" json:"line_no"`
	ProductID    string          `gorm:"type:varchar(36);not null;index" json:"product_id"`
	ProductName  string          `gorm:"type:varchar(255);not null" json:"product_name"`
	WeightOption string          `gorm:"type:varchar(50)" json:"weight_option,omitempty"`
	Quantity     int64           `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	TotalPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	CreatedAt    time.Time       `gorm:"not null" json:"created_at"`
}
