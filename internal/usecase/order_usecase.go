package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

type OrderUsecase struct {
	tx repo.TransactionManager
}

func NewOrderUsecase(tx repo.TransactionManager) *OrderUsecase {
	return &OrderUsecase{tx: tx}
}

type OrderItemOutput struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	WeightOption string          `json:"weight_option,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int64           `json:"quantity"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

type OrderOutput struct {
	ID              string                 `json:"id"`
	OrderNumber     string                 `json:"order_number"`
	CustomerName    string                 `json:"customer_name"`
	CustomerPhone   string                 `json:"customer_phone"`
	CustomerEmail   string                 `json:"customer_email,omitempty"`
	DeliveryType    model.DeliveryType     `json:"delivery_type"`
	DeliveryAddress *model.DeliveryAddress `json:"delivery_address"`
	Subtotal        decimal.Decimal        `json:"subtotal"`
	DeliveryCharge  decimal.Decimal        `json:"delivery_charge"`
	Discount        decimal.Decimal        `json:"discount"`
	Total           decimal.Decimal        `json:"total"`
	PaymentMethod   model.PaymentMethod    `json:"payment_method"`
	PaymentStatus   model.PaymentStatus    `json:"payment_status"`
	OrderStatus     model.OrderStatus      `json:"order_status"`
	Notes           string                 `json:"notes,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	Items           []OrderItemOutput      `json:"items"`
}

// 注文確認画面（注文IDを知っている人だけ見られる）
func (u *OrderUsecase) GetOrder(ctx context.Context, orderID string) (OrderOutput, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, items, err := loadOrderWithItems(ctx, r, orderID)
		if err != nil {
			return err
		}
		out = toOrderOutput(o, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func loadOrderWithItems(ctx context.Context, r repo.TxRepos, orderID string) (model.Order, []model.OrderItem, error) {
	o, err := r.Orders().FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, nil, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return model.Order{}, nil, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
	if err != nil {
		return model.Order{}, nil, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	return o, items, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID:    it.ProductID,
			Name:         it.ProductName,
			WeightOption: it.WeightOption,
			UnitPrice:    it.UnitPrice,
			Quantity:     it.Quantity,
			TotalPrice:   it.TotalPrice,
		})
	}
	return OrderOutput{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		CustomerEmail:   o.CustomerEmail,
		DeliveryType:    o.DeliveryType,
		DeliveryAddress: o.DeliveryAddress,
		Subtotal:        o.Subtotal,
		DeliveryCharge:  o.DeliveryCharge,
		Discount:        o.Discount,
		Total:           o.Total,
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   o.PaymentStatus,
		OrderStatus:     o.OrderStatus,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		Items:           outItems,
	}
}
