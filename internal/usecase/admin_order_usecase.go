package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/logging"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	dashboardRecentOrders = 5
	exportMaxOrders       = 5000
)

type AdminOrderUsecase struct {
	tx     repo.TransactionManager
	events EventPublisher
	sheets OrderSheetWriter
	clock  Clock
}

func NewAdminOrderUsecase(
	tx repo.TransactionManager,
	events EventPublisher,
	sheets OrderSheetWriter,
	clock Clock,
) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, events: events, sheets: sheets, clock: clock}
}

type AdminOrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// 注文一覧（新しい順）
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) (AdminOrderListOutput, error) {
	if err := validateAdminOrderFilter(f); err != nil {
		return AdminOrderListOutput{}, err
	}

	out := AdminOrderListOutput{Page: f.Page, Limit: f.Limit}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}

		out.Total = total
		out.Items = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return WrapHTTPError(http.StatusInternalServerError, "db error", err)
			}
			out.Items = append(out.Items, toOrderOutput(o, items))
		}
		return nil
	})
	if err != nil {
		return AdminOrderListOutput{}, err
	}
	return out, nil
}

func (u *AdminOrderUsecase) Detail(ctx context.Context, orderID string) (OrderOutput, error) {
	if strings.TrimSpace(orderID) == "" {
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

// ステータス更新（cancelled なら在庫戻し）
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actor string, orderID string, status string) error {
	if strings.TrimSpace(actor) == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(orderID) == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	newStatus := model.OrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if !newStatus.Valid() {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var updated model.Order
	changed := false
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}

		// すでに同じなら何もしない（200）
		if o.OrderStatus == newStatus {
			return nil
		}
		// 終端ガード
		if o.OrderStatus.Terminal() {
			return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("cannot change %s order", o.OrderStatus))
		}

		if newStatus == model.OrderStatusCancelled {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return WrapHTTPError(http.StatusInternalServerError, "db error", err)
			}
			for _, it := range items {
				err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity)
				// 商品が削除済みなら戻す先がない
				if errors.Is(err, repo.ErrNotFound) {
					continue
				}
				if err != nil {
					return WrapHTTPError(http.StatusInternalServerError, "db error", err)
				}
			}
		}

		if err := r.Orders().UpdateStatus(ctx, o.ID, newStatus); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			Actor:        actor,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   o.ID,
			BeforeJSON:   `{"order_status":"` + string(o.OrderStatus) + `"}`,
			AfterJSON:    `{"order_status":"` + string(newStatus) + `"}`,
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}

		o.OrderStatus = newStatus
		updated = o
		changed = true
		return nil
	})
	if err != nil {
		return err
	}

	if changed {
		u.publish(ctx, model.NewOrderEvent(model.OrderEventStatusChanged, updated, u.clock.Now().UTC()))
	}
	return nil
}

func (u *AdminOrderUsecase) UpdatePaymentStatus(ctx context.Context, actor string, orderID string, status string) error {
	if strings.TrimSpace(actor) == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(orderID) == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	newStatus := model.PaymentStatus(strings.ToLower(strings.TrimSpace(status)))
	if !newStatus.Valid() {
		return NewHTTPError(http.StatusBadRequest, "invalid payment status")
	}

	var updated model.Order
	changed := false
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}
		if o.PaymentStatus == newStatus {
			return nil
		}

		if err := r.Orders().UpdatePayment(ctx, o.ID, newStatus, nil); err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			Actor:        actor,
			Action:       model.AuditActionUpdatePaymentStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   o.ID,
			BeforeJSON:   `{"payment_status":"` + string(o.PaymentStatus) + `"}`,
			AfterJSON:    `{"payment_status":"` + string(newStatus) + `"}`,
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}

		o.PaymentStatus = newStatus
		updated = o
		changed = true
		return nil
	})
	if err != nil {
		return err
	}

	if changed {
		u.publish(ctx, model.NewOrderEvent(model.OrderEventPaymentStatusChanged, updated, u.clock.Now().UTC()))
	}
	return nil
}

type DashboardOutput struct {
	Revenue         decimal.Decimal `json:"revenue"`
	OrderCount      int64           `json:"order_count"`
	ProductCount    int64           `json:"product_count"`
	UniqueCustomers int64           `json:"unique_customers"`
	RecentOrders    []OrderOutput   `json:"recent_orders"`
}

func (u *AdminOrderUsecase) Dashboard(ctx context.Context) (DashboardOutput, error) {
	var out DashboardOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		stats, err := r.Orders().Stats(ctx)
		if err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}
		products, err := r.Products().Count(ctx)
		if err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}
		recent, _, err := r.Orders().ListAdmin(ctx, repo.AdminOrderListFilter{Page: 1, Limit: dashboardRecentOrders})
		if err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}

		out = DashboardOutput{
			Revenue:         stats.Revenue,
			OrderCount:      stats.OrderCount,
			ProductCount:    products,
			UniqueCustomers: stats.UniqueCustomers,
			RecentOrders:    make([]OrderOutput, 0, len(recent)),
		}
		for _, o := range recent {
			out.RecentOrders = append(out.RecentOrders, toOrderOutput(o, nil))
		}
		return nil
	})
	if err != nil {
		return DashboardOutput{}, err
	}
	return out, nil
}

// 絞り込み条件に合う注文を明細付きで書き出す
func (u *AdminOrderUsecase) ExportOrders(ctx context.Context, w io.Writer, f repo.AdminOrderListFilter) error {
	if u.sheets == nil {
		return NewHTTPError(http.StatusInternalServerError, "export not configured")
	}
	f.Page = 1
	f.Limit = exportMaxOrders

	var orders []model.Order
	items := map[string][]model.OrderItem{}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		list, _, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}
		for _, o := range list {
			its, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return WrapHTTPError(http.StatusInternalServerError, "db error", err)
			}
			items[o.ID] = its
		}
		orders = list
		return nil
	})
	if err != nil {
		return err
	}

	if err := u.sheets.WriteOrders(w, orders, items); err != nil {
		return WrapHTTPError(http.StatusInternalServerError, "export failed", err)
	}
	return nil
}

// 監査ログ一覧
func (u *AdminOrderUsecase) ListAuditLogs(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	if f.Limit < 0 || f.Limit > 200 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Offset < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid offset")
	}

	var logs []model.AuditLog
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		logs, err = r.AuditLogs().List(ctx, f)
		if err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func validateAdminOrderFilter(f repo.AdminOrderListFilter) error {
	if f.Page < 1 {
		return NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Status != "" && !model.OrderStatus(f.Status).Valid() {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	if f.PaymentStatus != "" && !model.PaymentStatus(f.PaymentStatus).Valid() {
		return NewHTTPError(http.StatusBadRequest, "invalid payment status")
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return NewHTTPError(http.StatusBadRequest, "from must be before to")
	}
	return nil
}

// 一覧の期間指定（RFC3339）
func ParseTimeParam(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid time: "+s)
	}
	return &t, nil
}

func (u *AdminOrderUsecase) publish(ctx context.Context, ev model.OrderEvent) {
	if u.events == nil {
		return
	}
	if err := u.events.Publish(ctx, ev); err != nil {
		logging.FromContext(ctx).Warn("publish_order_event_failed", "type", string(ev.Type), "order_id", ev.OrderID, "error", err)
	}
}
