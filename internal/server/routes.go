package server

import (
	"storefront/internal/handler"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Products      *handler.ProductHandler
	Cart          *handler.CartHandler
	Payments      *handler.PaymentHandler
	Orders        *handler.OrderHandler
	Chat          *handler.ChatHandler
	AdminAuth     *handler.AdminAuthHandler
	AdminProducts *handler.AdminProductHandler
	AdminOrders   *handler.AdminOrderHandler
}

func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret string) {
	//公開
	h.Products.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e)
	h.Payments.RegisterRoutes(e)
	h.Orders.RegisterRoutes(e)
	h.Chat.RegisterRoutes(e)

	//管理者
	h.AdminAuth.RegisterRoutes(e)
	h.AdminProducts.RegisterRoutes(e, jwtSecret)
	h.AdminOrders.RegisterRoutes(e, jwtSecret)
}
