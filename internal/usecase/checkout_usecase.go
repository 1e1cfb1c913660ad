package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/logging"
	"storefront/internal/pricing"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	orderNumberPrefix   = "LF-"
	orderNumberAttempts = 5
	reserveAttempts     = 3
)

type CheckoutUsecase struct {
	tx       repo.TransactionManager
	gateway  PaymentGateway
	events   EventPublisher
	ids      IDGenerator
	clock    Clock
	rules    pricing.Rules
	currency string
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	gateway PaymentGateway,
	events EventPublisher,
	ids IDGenerator,
	clock Clock,
	rules pricing.Rules,
	currency string,
) *CheckoutUsecase {
	if currency == "" {
		currency = "INR"
	}
	return &CheckoutUsecase{
		tx:       tx,
		gateway:  gateway,
		events:   events,
		ids:      ids,
		clock:    clock,
		rules:    rules,
		currency: currency,
	}
}

type CheckoutItemInput struct {
	ProductID    string
	Name         string
	WeightOption string
	Quantity     int64
	UnitPrice    decimal.Decimal
	TotalPrice   *decimal.Decimal // 送られてきたら検算する
}

type CustomerInput struct {
	Name     string
	Phone    string
	Email    string
	Street   string
	City     string
	District string
	State    string
	Pincode  string
	Landmark string
	Notes    string
}

type PlaceOrderInput struct {
	Amount        decimal.Decimal // 0ならチェックしない
	Items         []CheckoutItemInput
	Customer      CustomerInput
	PaymentMethod string
	DeliveryType  string
}

type PlaceOrderOutput struct {
	GatewayOrderID *string
	OrderID        string
	OrderNumber    string
	PaymentMethod  model.PaymentMethod
	Quote          pricing.Quote
	AmountMinor    int64
	Currency       string
	KeyID          string
}

// 画面の値（cod/upi/razorpay）も受け付ける
func ParsePaymentMethod(s string) (model.PaymentMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cod", "cash_on_delivery":
		return model.PaymentMethodCashOnDelivery, true
	case "upi", "manual_upi", "manual_transfer":
		return model.PaymentMethodManualTransfer, true
	case "razorpay", "gateway":
		return model.PaymentMethodGateway, true
	}
	return "", false
}

func ParseDeliveryType(s string) (model.DeliveryType, bool) {
	switch model.DeliveryType(strings.ToLower(strings.TrimSpace(s))) {
	case model.DeliveryTypeHome:
		return model.DeliveryTypeHome, true
	case model.DeliveryTypePickup:
		return model.DeliveryTypePickup, true
	}
	return "", false
}

// PlaceOrder verifies stock for every line, computes the total, creates the
// gateway intent when needed and then writes the order, its items and the
// stock decrement in one transaction.
func (u *CheckoutUsecase) PlaceOrder(ctx context.Context, in PlaceOrderInput) (PlaceOrderOutput, error) {
	method, deliveryType, err := validatePlaceOrder(in)
	if err != nil {
		return PlaceOrderOutput{}, err
	}

	lines, subtotal := buildOrderLines(in.Items)
	quote := pricing.ComputeTotal(subtotal, deliveryType, u.rules)
	if in.Amount.IsPositive() && !sameMoney(in.Amount, quote.Total) {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusBadRequest, "amount does not match order total")
	}

	l := logging.FromContext(ctx).With("usecase", "checkout.place_order")
	now := u.clock.Now().UTC()

	//在庫確認（書き込みなし）と注文番号の採番
	var orderNumber string
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := verifyStock(ctx, r.Products(), in.Items); err != nil {
			return err
		}
		n, err := u.allocateOrderNumber(ctx, r.Orders(), now)
		if err != nil {
			return err
		}
		orderNumber = n
		return nil
	})
	if err != nil {
		return PlaceOrderOutput{}, err
	}

	amountMinor := pricing.MinorUnits(quote.Total)

	//ゲートウェイの注文はDBに書く前に作る（失敗したら何も書かない）
	var gatewayOrderID *string
	if method == model.PaymentMethodGateway {
		if u.gateway == nil {
			return PlaceOrderOutput{}, WrapHTTPError(http.StatusInternalServerError, "payment gateway not configured", ErrGatewayNotConfigured)
		}
		id, err := u.gateway.CreateOrder(ctx, amountMinor, u.currency, orderNumber)
		if err != nil {
			l.Error("gateway_create_order_failed", "order_number", orderNumber, "error", err)
			return PlaceOrderOutput{}, WrapHTTPError(http.StatusInternalServerError, "failed to create payment order", err)
		}
		gatewayOrderID = &id
	}

	order := model.Order{
		ID:             u.ids.NewID(),
		OrderNumber:    orderNumber,
		CustomerName:   strings.TrimSpace(in.Customer.Name),
		CustomerPhone:  strings.TrimSpace(in.Customer.Phone),
		CustomerEmail:  strings.TrimSpace(in.Customer.Email),
		DeliveryType:   deliveryType,
		Subtotal:       quote.Subtotal,
		DeliveryCharge: quote.DeliveryCharge,
		Discount:       quote.Discount,
		Total:          quote.Total,
		PaymentMethod:  method,
		PaymentStatus:  model.PaymentStatusPending,
		OrderStatus:    model.OrderStatusPending,
		GatewayOrderID: gatewayOrderID,
		Notes:          strings.TrimSpace(in.Customer.Notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if deliveryType == model.DeliveryTypeHome {
		order.DeliveryAddress = &model.DeliveryAddress{
			Street:   strings.TrimSpace(in.Customer.Street),
			City:     strings.TrimSpace(in.Customer.City),
			District: strings.TrimSpace(in.Customer.District),
			State:    strings.TrimSpace(in.Customer.State),
			Pincode:  strings.TrimSpace(in.Customer.Pincode),
			Landmark: strings.TrimSpace(in.Customer.Landmark),
		}
	}
	for i := range lines {
		lines[i].ID = u.ids.NewID()
		lines[i].CreatedAt = now
	}

	//注文・明細・在庫減算は1トランザクション
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Orders().Create(ctx, order); err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "failed to create order", err)
		}
		if err := r.OrderItems().CreateBulk(ctx, order.ID, lines); err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "failed to create order items", err)
		}
		for _, it := range lines {
			if err := reserveStock(ctx, r, it.ProductID, it.ProductName, it.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if he, ok := AsHTTPError(err); ok && he.Status >= http.StatusInternalServerError {
			l.Error("place_order_failed", "order_number", orderNumber, "error", err)
		}
		return PlaceOrderOutput{}, err
	}

	l.Info("order_placed",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"payment_method", string(method),
		"total", order.Total.String(),
	)
	u.publish(ctx, model.NewOrderEvent(model.OrderEventPlaced, order, now))

	out := PlaceOrderOutput{
		GatewayOrderID: gatewayOrderID,
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		PaymentMethod:  method,
		Quote:          quote,
		AmountMinor:    amountMinor,
		Currency:       u.currency,
	}
	if method == model.PaymentMethodGateway {
		out.KeyID = u.gateway.KeyID()
	}
	return out, nil
}

type VerifyPaymentInput struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

type VerifyPaymentOutput struct {
	OrderID       string              `json:"order_id"`
	OrderNumber   string              `json:"order_number"`
	PaymentStatus model.PaymentStatus `json:"payment_status"`
}

// 署名が正しければ paid、違えば failed にして 400
func (u *CheckoutUsecase) VerifyPayment(ctx context.Context, in VerifyPaymentInput) (VerifyPaymentOutput, error) {
	in.GatewayOrderID = strings.TrimSpace(in.GatewayOrderID)
	in.GatewayPaymentID = strings.TrimSpace(in.GatewayPaymentID)
	in.Signature = strings.TrimSpace(in.Signature)
	if in.GatewayOrderID == "" || in.GatewayPaymentID == "" || in.Signature == "" {
		return VerifyPaymentOutput{}, NewHTTPError(http.StatusBadRequest, "order id, payment id and signature are required")
	}
	if u.gateway == nil {
		return VerifyPaymentOutput{}, WrapHTTPError(http.StatusInternalServerError, "payment gateway not configured", ErrGatewayNotConfigured)
	}

	valid, err := u.gateway.VerifyPaymentSignature(in.GatewayOrderID, in.GatewayPaymentID, in.Signature)
	if err != nil {
		return VerifyPaymentOutput{}, WrapHTTPError(http.StatusInternalServerError, "payment verification unavailable", err)
	}

	var order model.Order
	changed := false
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByGatewayOrderID(ctx, in.GatewayOrderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}

		//支払い済みなら何もしない
		if o.PaymentStatus == model.PaymentStatusPaid {
			order = o
			return nil
		}

		next := model.PaymentStatusFailed
		var paymentID *string
		if valid {
			next = model.PaymentStatusPaid
			paymentID = &in.GatewayPaymentID
		}
		if err := r.Orders().UpdatePayment(ctx, o.ID, next, paymentID); err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}
		o.PaymentStatus = next
		if paymentID != nil {
			o.GatewayPaymentID = paymentID
		}
		order = o
		changed = true
		return nil
	})
	if err != nil {
		return VerifyPaymentOutput{}, err
	}

	if changed {
		u.publish(ctx, model.NewOrderEvent(model.OrderEventPaymentStatusChanged, order, u.clock.Now().UTC()))
	}

	out := VerifyPaymentOutput{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		PaymentStatus: order.PaymentStatus,
	}
	if order.PaymentStatus != model.PaymentStatusPaid {
		return out, NewHTTPError(http.StatusBadRequest, "invalid payment signature")
	}
	return out, nil
}

func validatePlaceOrder(in PlaceOrderInput) (model.PaymentMethod, model.DeliveryType, error) {
	if len(in.Items) == 0 {
		return "", "", NewHTTPError(http.StatusBadRequest, "cart is empty")
	}
	method, ok := ParsePaymentMethod(in.PaymentMethod)
	if !ok {
		return "", "", NewHTTPError(http.StatusBadRequest, "invalid payment method")
	}
	deliveryType, ok := ParseDeliveryType(in.DeliveryType)
	if !ok {
		return "", "", NewHTTPError(http.StatusBadRequest, "invalid delivery type")
	}
	if in.Amount.IsNegative() {
		return "", "", NewHTTPError(http.StatusBadRequest, "invalid amount")
	}

	c := in.Customer
	if strings.TrimSpace(c.Name) == "" {
		return "", "", NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if strings.TrimSpace(c.Phone) == "" {
		return "", "", NewHTTPError(http.StatusBadRequest, "phone is required")
	}
	if deliveryType == model.DeliveryTypeHome {
		if strings.TrimSpace(c.Street) == "" || strings.TrimSpace(c.City) == "" || strings.TrimSpace(c.Pincode) == "" {
			return "", "", NewHTTPError(http.StatusBadRequest, "street, city and pincode are required for home delivery")
		}
	}

	for _, it := range in.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			return "", "", NewHTTPError(http.StatusBadRequest, "invalid product_id")
		}
		if it.Quantity < 1 {
			return "", "", NewHTTPError(http.StatusBadRequest, "invalid quantity")
		}
		if it.UnitPrice.IsNegative() {
			return "", "", NewHTTPError(http.StatusBadRequest, "invalid unit_price")
		}
		if it.TotalPrice != nil && !sameMoney(*it.TotalPrice, it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity))) {
			return "", "", NewHTTPError(http.StatusBadRequest, "total_price does not match unit_price x quantity")
		}
	}
	return method, deliveryType, nil
}

// クライアントは浮動小数で計算してくるので2桁に丸めて比べる
func sameMoney(a, b decimal.Decimal) bool {
	return a.Round(2).Equal(b.Round(2))
}

// 明細のスナップショットと小計
func buildOrderLines(items []CheckoutItemInput) ([]model.OrderItem, decimal.Decimal) {
	lines := make([]model.OrderItem, 0, len(items))
	subtotal := decimal.Zero
	for _, it := range items {
		lineTotal := it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity))
		lines = append(lines, model.OrderItem{
			ProductID:    strings.TrimSpace(it.ProductID),
			ProductName:  strings.TrimSpace(it.Name),
			WeightOption: it.WeightOption,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			TotalPrice:   lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}
	return lines, subtotal
}

// 全行を確認してから書く。同じ商品の行は数量を合算して見る
func verifyStock(ctx context.Context, products repo.ProductRepository, items []CheckoutItemInput) error {
	order := make([]string, 0, len(items))
	requested := map[string]int64{}
	names := map[string]string{}
	for _, it := range items {
		id := strings.TrimSpace(it.ProductID)
		if _, ok := requested[id]; !ok {
			order = append(order, id)
			names[id] = strings.TrimSpace(it.Name)
		}
		requested[id] += it.Quantity
	}

	for _, id := range order {
		p, err := products.FindByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			label := names[id]
			if label == "" {
				label = id
			}
			return WrapHTTPError(http.StatusBadRequest, "product not found: "+label, ErrProductNotFound)
		}
		if err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}
		if p.StockQuantity < requested[id] {
			ise := &InsufficientStockError{ProductID: p.ID, Name: p.Name, Available: p.StockQuantity}
			return WrapHTTPError(http.StatusBadRequest, ise.Error(), ise)
		}
	}
	return nil
}

// 条件付き減算。負けたら在庫を読み直して、足りていれば再試行
func reserveStock(ctx context.Context, r repo.TxRepos, productID, name string, qty int64) error {
	for attempt := 0; attempt < reserveAttempts; attempt++ {
		ok, err := r.Inventory().DecreaseStockIfEnough(ctx, productID, qty)
		if err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "failed to update stock", err)
		}
		if ok {
			return nil
		}

		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			if name == "" {
				name = productID
			}
			return WrapHTTPError(http.StatusBadRequest, "product not found: "+name, ErrProductNotFound)
		}
		if err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}
		if p.StockQuantity < qty {
			ise := &InsufficientStockError{ProductID: p.ID, Name: p.Name, Available: p.StockQuantity}
			return WrapHTTPError(http.StatusBadRequest, ise.Error(), ise)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "stock update conflict, please retry")
}

// LF-YYYYMMDDHHMMSS-XXXXXX（既存と被ったら作り直す）
func (u *CheckoutUsecase) allocateOrderNumber(ctx context.Context, orders repo.OrderRepository, now time.Time) (string, error) {
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		n := FormatOrderNumber(now, u.ids.NewID())
		exists, err := orders.ExistsByOrderNumber(ctx, n)
		if err != nil {
			return "", WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}
		if !exists {
			return n, nil
		}
	}
	return "", NewHTTPError(http.StatusInternalServerError, "could not allocate order number")
}

func FormatOrderNumber(now time.Time, random string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(random, "-", ""))
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return orderNumberPrefix + now.Format("20060102150405") + "-" + suffix
}

// イベントは失敗してもリクエストは失敗させない
func (u *CheckoutUsecase) publish(ctx context.Context, ev model.OrderEvent) {
	if u.events == nil {
		return
	}
	if err := u.events.Publish(ctx, ev); err != nil {
		logging.FromContext(ctx).Warn("publish_order_event_failed", "type", string(ev.Type), "order_id", ev.OrderID, "error", err)
	}
}
