package handler

import (
	"context"
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/logging"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// 注文確定後にカートを空にする
type CartClearer interface {
	Clear(ctx context.Context, session string) error
}

type PaymentHandler struct {
	uc    *usecase.CheckoutUsecase
	carts CartClearer
}

func NewPaymentHandler(uc *usecase.CheckoutUsecase, carts CartClearer) *PaymentHandler {
	return &PaymentHandler{uc: uc, carts: carts}
}

type PaymentItemRequest struct {
	ProductID    string           `json:"product_id"`
	Name         string           `json:"name"`
	Quantity     int64            `json:"quantity"`
	UnitPrice    decimal.Decimal  `json:"unit_price"`
	TotalPrice   *decimal.Decimal `json:"total_price"`
	WeightOption string           `json:"weight_option"`
}

type AddressRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Street   string `json:"street"`
	City     string `json:"city"`
	District string `json:"district"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
	Landmark string `json:"landmark"`
	Notes    string `json:"notes"`
}

func (a AddressRequest) toInput() usecase.CustomerInput {
	return usecase.CustomerInput{
		Name:     a.Name,
		Phone:    a.Phone,
		Email:    a.Email,
		Street:   a.Street,
		City:     a.City,
		District: a.District,
		State:    a.State,
		Pincode:  a.Pincode,
		Landmark: a.Landmark,
		Notes:    a.Notes,
	}
}

type PaymentRequest struct {
	Amount        decimal.Decimal      `json:"amount"`
	Products      []PaymentItemRequest `json:"products"`
	Address       AddressRequest       `json:"address"`
	PaymentMethod string               `json:"paymentMethod"`
	DeliveryType  string               `json:"deliveryType"`
}

// id はゲートウェイ注文ID（ゲートウェイ以外は null）
type PaymentResponse struct {
	ID          *string `json:"id"`
	DBOrderID   string  `json:"dbOrderId"`
	OrderNumber string  `json:"orderNumber"`
	Amount      float64 `json:"amount"`
	AmountMinor int64   `json:"amountMinor"`
	Currency    string  `json:"currency"`
	Key         string  `json:"key,omitempty"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

type VerifyPaymentResponse struct {
	Success       bool                `json:"success"`
	OrderID       string              `json:"orderId"`
	OrderNumber   string              `json:"orderNumber"`
	PaymentStatus model.PaymentStatus `json:"paymentStatus"`
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/payments", h.create)
	e.POST("/payments/verify", h.verify)
}

func (h *PaymentHandler) create(c echo.Context) error {
	var req PaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	items := make([]usecase.CheckoutItemInput, 0, len(req.Products))
	for _, p := range req.Products {
		items = append(items, usecase.CheckoutItemInput{
			ProductID:    p.ProductID,
			Name:         p.Name,
			WeightOption: p.WeightOption,
			Quantity:     p.Quantity,
			UnitPrice:    p.UnitPrice,
			TotalPrice:   p.TotalPrice,
		})
	}

	ctx := c.Request().Context()
	out, err := h.uc.PlaceOrder(ctx, usecase.PlaceOrderInput{
		Amount:        req.Amount,
		Items:         items,
		Customer:      req.Address.toInput(),
		PaymentMethod: req.PaymentMethod,
		DeliveryType:  req.DeliveryType,
	})
	if err != nil {
		return writeError(c, err)
	}

	if out.PaymentMethod != model.PaymentMethodGateway {
		h.clearCart(c)
	}
	return c.JSON(http.StatusOK, toPaymentResponse(out))
}

func (h *PaymentHandler) verify(c echo.Context) error {
	var req VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.VerifyPayment(c.Request().Context(), usecase.VerifyPaymentInput{
		GatewayOrderID:   req.OrderID,
		GatewayPaymentID: req.PaymentID,
		Signature:        req.Signature,
	})
	if err != nil {
		return writeError(c, err)
	}

	h.clearCart(c)
	return c.JSON(http.StatusOK, VerifyPaymentResponse{
		Success:       true,
		OrderID:       out.OrderID,
		OrderNumber:   out.OrderNumber,
		PaymentStatus: out.PaymentStatus,
	})
}

// 注文は確定しているのでカート削除の失敗はログだけ
func (h *PaymentHandler) clearCart(c echo.Context) {
	session := cartSessionFrom(c)
	if session == "" || h.carts == nil {
		return
	}
	ctx := c.Request().Context()
	if err := h.carts.Clear(ctx, session); err != nil {
		logging.FromContext(ctx).Warn("cart_clear_failed", "error", err)
	}
}

func toPaymentResponse(out usecase.PlaceOrderOutput) PaymentResponse {
	return PaymentResponse{
		ID:          out.GatewayOrderID,
		DBOrderID:   out.OrderID,
		OrderNumber: out.OrderNumber,
		Amount:      out.Quote.Total.InexactFloat64(),
		AmountMinor: out.AmountMinor,
		Currency:    out.Currency,
		Key:         out.KeyID,
	}
}
