package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ProductCreateRequest struct {
	Name             string           `json:"name"`
	Category         string           `json:"category"`
	Description      string           `json:"description"`
	Price            decimal.Decimal  `json:"price"`
	ComparePrice     *decimal.Decimal `json:"compare_price"`
	PricingModel     string           `json:"pricing_model"`
	StockQuantity    int64            `json:"stock_quantity"`
	IsFeatured       bool             `json:"is_featured"`
	MinOrderQuantity int64            `json:"min_order_quantity"`
	ImageURL         string           `json:"image_url"`
}

// InventoryUpdateRequest は在庫更新の入力です。
type InventoryUpdateRequest struct {
	Stock  *int64 `json:"stock"`
	Reason string `json:"reason"`
}

// /admin/products と /admin/inventory をまとめる
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// 管理者だけ
func adminGroup(e *echo.Echo, jwtSecret string) *echo.Group {
	admin := e.Group("/admin")
	admin.Use(middleware.AuthJWT(jwtSecret))
	admin.Use(middleware.AdminRoleGuard())
	return admin
}

func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, jwtSecret string) {
	admin := adminGroup(e, jwtSecret)

	admin.GET("/products", h.listProducts)
	admin.POST("/products", h.createProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
	admin.PUT("/inventory/:product_id", h.updateInventory)
}

func (h *AdminProductHandler) listProducts(c echo.Context) error {
	in, err := parseProductListQuery(c, 50)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.AdminListProducts(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	p, err := h.uc.AdminCreateProduct(c.Request().Context(), middleware.Actor(c), usecase.AdminCreateProductInput{
		Name:             req.Name,
		Category:         req.Category,
		Description:      req.Description,
		Price:            req.Price,
		ComparePrice:     req.ComparePrice,
		PricingModel:     req.PricingModel,
		StockQuantity:    req.StockQuantity,
		IsFeatured:       req.IsFeatured,
		MinOrderQuantity: req.MinOrderQuantity,
		ImageURL:         req.ImageURL,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	if err := h.uc.AdminDeleteProduct(c.Request().Context(), middleware.Actor(c), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *AdminProductHandler) updateInventory(c echo.Context) error {
	var req InventoryUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.Stock == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "stock required"})
	}

	if err := h.uc.AdminUpdateInventory(
		c.Request().Context(),
		middleware.Actor(c),
		c.Param("product_id"),
		*req.Stock,
		req.Reason,
	); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}
