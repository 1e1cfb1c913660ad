package model

import "github.com/shopspring/decimal"

// カートの明細
// 追加時点の価格を必ず保存。
type CartItem struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug,omitempty"`
	WeightOption string          `json:"weight_option,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int64           `json:"quantity"`
}

// LineTotal = unit_price × quantity
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}

// 永続化するときの形 {items: [...]}
type CartSnapshot struct {
	Items []CartItem `json:"items"`
}
