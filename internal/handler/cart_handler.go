package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /cartのHTTP（ログイン不要、セッションIDで区別）
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartRequest struct {
	ProductID    string `json:"product_id"`
	WeightOption string `json:"weight_option"`
	Quantity     int64  `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

type CartCheckoutRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Address       AddressRequest  `json:"address"`
	PaymentMethod string          `json:"paymentMethod"`
	DeliveryType  string          `json:"deliveryType"`
}

func (h *CartHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/cart")

	g.GET("", h.getCart)
	g.DELETE("", h.clear)
	g.POST("/items", h.addItem)
	g.PUT("/items/:product_id", h.updateItem)
	g.DELETE("/items/:product_id", h.deleteItem)
	g.POST("/checkout", h.checkout)
}

func (h *CartHandler) getCart(c echo.Context) error {
	session := ensureCartSession(c)

	out, err := h.uc.Get(c.Request().Context(), session)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addItem(c echo.Context) error {
	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	session := ensureCartSession(c)

	out, err := h.uc.AddItem(c.Request().Context(), session, usecase.AddCartInput{
		ProductID:    req.ProductID,
		WeightOption: req.WeightOption,
		Quantity:     req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) updateItem(c echo.Context) error {
	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	session := ensureCartSession(c)

	out, err := h.uc.UpdateQuantity(c.Request().Context(), session, c.Param("product_id"), req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	session := ensureCartSession(c)

	out, err := h.uc.Remove(c.Request().Context(), session, c.Param("product_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) clear(c echo.Context) error {
	session := ensureCartSession(c)

	if err := h.uc.Clear(c.Request().Context(), session); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "cleared"})
}

// /payments と同じ形で返す
func (h *CartHandler) checkout(c echo.Context) error {
	var req CartCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	session := cartSessionFrom(c)
	if session == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cart is empty"})
	}

	out, err := h.uc.Checkout(c.Request().Context(), session, usecase.CartCheckoutInput{
		Amount:        req.Amount,
		Customer:      req.Address.toInput(),
		PaymentMethod: req.PaymentMethod,
		DeliveryType:  req.DeliveryType,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPaymentResponse(out))
}
