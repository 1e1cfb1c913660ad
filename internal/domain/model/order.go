package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusProcessing     OrderStatus = "processing"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// 終端（これ以上変えられない）
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentMethodManualTransfer PaymentMethod = "manual_transfer"
	PaymentMethodGateway        PaymentMethod = "gateway"
)

type DeliveryType string

const (
	DeliveryTypeHome   DeliveryType = "home_delivery"
	DeliveryTypePickup DeliveryType = "farm_pickup"
)

// 配送先（home_delivery のときだけ入る）
type DeliveryAddress struct {
	Street   string `json:"street"`
	City     string `json:"city"`
	District string `json:"district,omitempty"`
	State    string `json:"state,omitempty"`
	Pincode  string `json:"pincode"`
	Landmark string `json:"landmark,omitempty"`
}

// total = subtotal + delivery_charge - discount
type Order struct {
	ID               string           `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderNumber      string           `gorm:"type:varchar(40);not null;uniqueIndex" json:"order_number"`
	CustomerName     string           `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerPhone    string           `gorm:"type:varchar(20);not null;index" json:"customer_phone"`
	CustomerEmail    string           `gorm:"type:varchar(255)" json:"customer_email,omitempty"`
	DeliveryType     DeliveryType     `gorm:"type:varchar(20);not null" json:"delivery_type"`
	DeliveryAddress  *DeliveryAddress `gorm:"type:text;serializer:json" json:"delivery_address"`
	Subtotal         decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	DeliveryCharge   decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"delivery_charge"`
	Discount         decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"discount"`
	Total            decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"total"`
	PaymentMethod    PaymentMethod    `gorm:"type:varchar(30);not null" json:"payment_method"`
	PaymentStatus    PaymentStatus    `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	OrderStatus      OrderStatus      `gorm:"type:varchar(30);not null;index" json:"order_status"`
	GatewayOrderID   *string          `gorm:"type:varchar(64);index" json:"gateway_order_id,omitempty"`
	GatewayPaymentID *string          `gorm:"type:varchar(64)" json:"gateway_payment_id,omitempty"`
	Notes            string           `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt        time.Time        `gorm:"not null;index" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"not null" json:"updated_at"`
}
