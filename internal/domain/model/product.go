package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PricingModel string

const (
	PricingPerBird PricingModel = "per_bird"
	PricingPerKg   PricingModel = "per_kg"
	PricingFixed   PricingModel = "fixed"
)

func (p PricingModel) Valid() bool {
	switch p {
	case PricingPerBird, PricingPerKg, PricingFixed:
		return true
	}
	return false
}

// is_available は stock_quantity > 0 と常に一致させる
type Product struct {
	ID               string           `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name             string           `gorm:"type:varchar(255);not null" json:"name"`
	Slug             string           `gorm:"type:varchar(255);not null;uniqueIndex" json:"slug"`
	Category         string           `gorm:"type:varchar(100);not null;index" json:"category"`
	Description      string           `gorm:"type:text" json:"description"`
	Price            decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"price"`
	ComparePrice     *decimal.Decimal `gorm:"type:numeric(12,2)" json:"compare_price,omitempty"`
	PricingModel     PricingModel     `gorm:"type:varchar(20);not null" json:"pricing_model"`
	StockQuantity    int64            `gorm:"not null;default:0" json:"stock_quantity"`
	IsAvailable      bool             `gorm:"not null;default:false;index" json:"is_available"`
	IsFeatured       bool             `gorm:"not null;default:false" json:"is_featured"`
	MinOrderQuantity int64            `gorm:"not null;default:1" json:"min_order_quantity"`
	ImageURL         string           `gorm:"type:text" json:"image_url"`
	CreatedAt        time.Time        `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt   `gorm:"index" json:"-"`
}
