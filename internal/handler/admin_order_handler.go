package handler

import (
	"bytes"
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/infra/export"
	"storefront/internal/logging"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 管理画面のライブフィード（websocket）
type LiveFeed interface {
	ServeWS(w http.ResponseWriter, r *http.Request) error
}

type AdminOrderHandler struct {
	uc   *usecase.AdminOrderUsecase
	live LiveFeed
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase, live LiveFeed) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc, live: live}
}

type OrderStatusUpdateRequest struct {
	Status string `json:"status"`
}

type PaymentStatusUpdateRequest struct {
	PaymentStatus string `json:"payment_status"`
}

func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, jwtSecret string) {
	admin := adminGroup(e, jwtSecret)

	admin.GET("/dashboard", h.dashboard)
	admin.GET("/orders", h.list)
	admin.GET("/orders/export", h.export)
	admin.GET("/orders/live", h.liveFeed)
	admin.GET("/orders/:id", h.detail)
	admin.PUT("/orders/:id/status", h.updateStatus)
	admin.PUT("/orders/:id/payment-status", h.updatePaymentStatus)
	admin.GET("/audit-logs", h.auditLogs)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	f, err := parseAdminOrderFilter(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) detail(c echo.Context) error {
	out, err := h.uc.Detail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	var req OrderStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	//操作した管理者（監査ログ用）
	if err := h.uc.UpdateStatus(c.Request().Context(), middleware.Actor(c), c.Param("id"), req.Status); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *AdminOrderHandler) updatePaymentStatus(c echo.Context) error {
	var req PaymentStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.UpdatePaymentStatus(c.Request().Context(), middleware.Actor(c), c.Param("id"), req.PaymentStatus); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *AdminOrderHandler) dashboard(c echo.Context) error {
	out, err := h.uc.Dashboard(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 一覧と同じ絞り込みでxlsxを返す
func (h *AdminOrderHandler) export(c echo.Context) error {
	f, err := parseAdminOrderFilter(c)
	if err != nil {
		return writeError(c, err)
	}

	var buf bytes.Buffer
	if err := h.uc.ExportOrders(c.Request().Context(), &buf, f); err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=orders.xlsx")
	return c.Blob(http.StatusOK, export.ContentType, buf.Bytes())
}

func (h *AdminOrderHandler) liveFeed(c echo.Context) error {
	if h.live == nil {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "live feed unavailable"})
	}
	if err := h.live.ServeWS(c.Response(), c.Request()); err != nil {
		logging.FromContext(c.Request().Context()).Warn("ws_upgrade_failed", "error", err)
	}
	return nil
}

func (h *AdminOrderHandler) auditLogs(c echo.Context) error {
	limit, err := intQuery(c, "limit", 50)
	if err != nil {
		return writeError(c, err)
	}
	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		return writeError(c, err)
	}

	f := repository.AuditLogFilter{Limit: limit, Offset: offset}
	if v := c.QueryParam("actor"); v != "" {
		f.Actor = &v
	}
	if v := c.QueryParam("action"); v != "" {
		a := model.AuditAction(v)
		f.Action = &a
	}
	if v := c.QueryParam("resource_type"); v != "" {
		rt := model.AuditResourceType(v)
		f.ResourceType = &rt
	}
	if v := c.QueryParam("resource_id"); v != "" {
		f.ResourceID = &v
	}

	logs, err := h.uc.ListAuditLogs(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

func parseAdminOrderFilter(c echo.Context) (repository.AdminOrderListFilter, error) {
	page, err := intQuery(c, "page", 1)
	if err != nil {
		return repository.AdminOrderListFilter{}, err
	}
	limit, err := intQuery(c, "limit", 50)
	if err != nil {
		return repository.AdminOrderListFilter{}, err
	}
	from, err := usecase.ParseTimeParam(c.QueryParam("from"))
	if err != nil {
		return repository.AdminOrderListFilter{}, err
	}
	to, err := usecase.ParseTimeParam(c.QueryParam("to"))
	if err != nil {
		return repository.AdminOrderListFilter{}, err
	}

	return repository.AdminOrderListFilter{
		Page:          page,
		Limit:         limit,
		Status:        c.QueryParam("status"),
		PaymentStatus: c.QueryParam("payment_status"),
		Q:             c.QueryParam("q"),
		From:          from,
		To:            to,
	}, nil
}
