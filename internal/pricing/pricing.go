package pricing

import (
	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 送料ルール
type Rules struct {
	FreeDeliveryThreshold decimal.Decimal
	BaseDeliveryCharge    decimal.Decimal
}

// 1000以上で送料無料、未満は50
func DefaultRules() Rules {
	return Rules{
		FreeDeliveryThreshold: decimal.NewFromInt(1000),
		BaseDeliveryCharge:    decimal.NewFromInt(50),
	}
}

type Quote struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryCharge decimal.Decimal `json:"delivery_charge"`
	Discount       decimal.Decimal `json:"discount"`
	Total          decimal.Decimal `json:"total"`
}

// ComputeTotal returns subtotal + delivery charge - discount for the given
// delivery type. Pickup never pays delivery. Home delivery is free at or
// above the threshold.
func ComputeTotal(subtotal decimal.Decimal, deliveryType model.DeliveryType, rules Rules) Quote {
	charge := decimal.Zero
	if deliveryType == model.DeliveryTypeHome && subtotal.LessThan(rules.FreeDeliveryThreshold) {
		charge = rules.BaseDeliveryCharge
	}
	discount := decimal.Zero

	return Quote{
		Subtotal:       subtotal,
		DeliveryCharge: charge,
		Discount:       discount,
		Total:          subtotal.Add(charge).Sub(discount),
	}
}

// MinorUnits は paise などの最小単位（四捨五入）
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
