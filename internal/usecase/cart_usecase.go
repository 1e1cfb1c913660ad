package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"storefront/internal/cart"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジック。
// カートはセッションIDごとのスナップショットとして保存する。
type CartUsecase struct {
	carts    repo.CartSnapshotRepository
	products repo.ProductRepository
	checkout *CheckoutUsecase
}

func NewCartUsecase(
	carts repo.CartSnapshotRepository,
	products repo.ProductRepository,
	checkout *CheckoutUsecase,
) *CartUsecase {
	return &CartUsecase{
		carts:    carts,
		products: products,
		checkout: checkout,
	}
}

type CartOutput struct {
	Items      []model.CartItem `json:"items"`
	Subtotal   decimal.Decimal  `json:"subtotal"`
	TotalItems int64            `json:"total_items"`
}

type AddCartInput struct {
	ProductID    string
	WeightOption string
	Quantity     int64
}

type CartCheckoutInput struct {
	Amount        decimal.Decimal
	Customer      CustomerInput
	PaymentMethod string
	DeliveryType  string
}

func (u *CartUsecase) Get(ctx context.Context, session string) (CartOutput, error) {
	st, err := u.load(ctx, session)
	if err != nil {
		return CartOutput{}, err
	}
	return toCartOutput(st), nil
}

// 追加時点のカタログ価格を保存する（同じ商品・重さなら数量加算）
func (u *CartUsecase) AddItem(ctx context.Context, session string, in AddCartInput) (CartOutput, error) {
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	st, err := u.load(ctx, session)
	if err != nil {
		return CartOutput{}, err
	}

	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartOutput{}, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	if !p.IsAvailable {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "product is out of stock")
	}
	if p.MinOrderQuantity > 1 && in.Quantity < p.MinOrderQuantity {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("minimum order quantity for %s is %d", p.Name, p.MinOrderQuantity))
	}

	//カート内の同じ商品と合わせて在庫を見る
	inCart := int64(0)
	for _, it := range st.Items() {
		if it.ProductID == p.ID {
			inCart += it.Quantity
		}
	}
	if inCart+in.Quantity > p.StockQuantity {
		ise := &InsufficientStockError{ProductID: p.ID, Name: p.Name, Available: p.StockQuantity}
		return CartOutput{}, WrapHTTPError(http.StatusBadRequest, ise.Error(), ise)
	}

	st.Add(model.CartItem{
		ProductID:    p.ID,
		Name:         p.Name,
		Slug:         p.Slug,
		WeightOption: strings.TrimSpace(in.WeightOption),
		UnitPrice:    p.Price,
		Quantity:     in.Quantity,
	})
	return u.save(ctx, session, st)
}

// 0以下なら削除
func (u *CartUsecase) UpdateQuantity(ctx context.Context, session string, productID string, quantity int64) (CartOutput, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	st, err := u.load(ctx, session)
	if err != nil {
		return CartOutput{}, err
	}
	st.UpdateQuantity(productID, quantity)
	return u.save(ctx, session, st)
}

func (u *CartUsecase) Remove(ctx context.Context, session string, productID string) (CartOutput, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	st, err := u.load(ctx, session)
	if err != nil {
		return CartOutput{}, err
	}
	st.Remove(productID)
	return u.save(ctx, session, st)
}

func (u *CartUsecase) Clear(ctx context.Context, session string) error {
	if strings.TrimSpace(session) == "" {
		return NewHTTPError(http.StatusBadRequest, "missing cart session")
	}
	if err := u.carts.Delete(ctx, session); err != nil {
		return WrapHTTPError(http.StatusInternalServerError, "cart store error", err)
	}
	return nil
}

// セッションのカートから注文する。ゲートウェイ以外は成功時にカートを空にする
func (u *CartUsecase) Checkout(ctx context.Context, session string, in CartCheckoutInput) (PlaceOrderOutput, error) {
	st, err := u.load(ctx, session)
	if err != nil {
		return PlaceOrderOutput{}, err
	}
	if st.Len() == 0 {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusBadRequest, "cart is empty")
	}

	items := make([]CheckoutItemInput, 0, st.Len())
	for _, it := range st.Items() {
		items = append(items, CheckoutItemInput{
			ProductID:    it.ProductID,
			Name:         it.Name,
			WeightOption: it.WeightOption,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
		})
	}

	out, err := u.checkout.PlaceOrder(ctx, PlaceOrderInput{
		Amount:        in.Amount,
		Items:         items,
		Customer:      in.Customer,
		PaymentMethod: in.PaymentMethod,
		DeliveryType:  in.DeliveryType,
	})
	if err != nil {
		return PlaceOrderOutput{}, err
	}

	if out.PaymentMethod != model.PaymentMethodGateway {
		if err := u.Clear(ctx, session); err != nil {
			return PlaceOrderOutput{}, err
		}
	}
	return out, nil
}

func (u *CartUsecase) load(ctx context.Context, session string) (*cart.Store, error) {
	if strings.TrimSpace(session) == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "missing cart session")
	}
	snap, err := u.carts.Load(ctx, session)
	if err != nil {
		return nil, WrapHTTPError(http.StatusInternalServerError, "cart store error", err)
	}
	return cart.FromSnapshot(snap), nil
}

func (u *CartUsecase) save(ctx context.Context, session string, st *cart.Store) (CartOutput, error) {
	if err := u.carts.Save(ctx, session, st.Snapshot()); err != nil {
		return CartOutput{}, WrapHTTPError(http.StatusInternalServerError, "cart store error", err)
	}
	return toCartOutput(st), nil
}

func toCartOutput(st *cart.Store) CartOutput {
	return CartOutput{
		Items:      st.Items(),
		Subtotal:   st.Subtotal(),
		TotalItems: st.TotalItems(),
	}
}
