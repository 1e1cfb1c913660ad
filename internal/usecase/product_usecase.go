package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
	tx          repo.TransactionManager
	ids         IDGenerator
	clock       Clock
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	tx repo.TransactionManager,
	ids IDGenerator,
	clock Clock,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		tx:          tx,
		ids:         ids,
		clock:       clock,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page     int
	Limit    int
	Q        string
	Category string
	Featured *bool
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// 在庫のある商品だけ
func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	return u.list(ctx, in, true)
}

// 管理画面用（在庫切れも含む）
func (u *ProductUsecase) AdminListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	return u.list(ctx, in, false)
}

func (u *ProductUsecase) list(ctx context.Context, in ListProductsInput, onlyAvailable bool) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}

	items, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Page:          in.Page,
		Limit:         in.Limit,
		Q:             strings.TrimSpace(in.Q),
		Category:      strings.TrimSpace(in.Category),
		Featured:      in.Featured,
		OnlyAvailable: onlyAvailable,
	})
	if err != nil {
		return ProductListOutput{}, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ProductUsecase) GetProductBySlug(ctx context.Context, slug string) (model.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid slug")
	}

	p, err := u.productRepo.FindBySlug(ctx, slug)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	return p, nil
}

type AdminCreateProductInput struct {
	Name             string
	Category         string
	Description      string
	Price            decimal.Decimal
	ComparePrice     *decimal.Decimal
	PricingModel     string
	StockQuantity    int64
	IsFeatured       bool
	MinOrderQuantity int64
	ImageURL         string
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, actor string, in AdminCreateProductInput) (model.Product, error) {
	if strings.TrimSpace(actor) == "" {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "category required")
	}
	if in.Price.IsNegative() {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.ComparePrice != nil && in.ComparePrice.IsNegative() {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "compare_price must be >= 0")
	}
	if in.StockQuantity < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	pm := model.PricingModel(strings.TrimSpace(in.PricingModel))
	if pm == "" {
		pm = model.PricingPerBird
	}
	if !pm.Valid() {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid pricing_model")
	}
	if in.MinOrderQuantity <= 0 {
		in.MinOrderQuantity = 1
	}
	base := Slugify(name)
	if base == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "name must contain letters or digits")
	}

	var created model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		slug, err := uniqueSlug(ctx, r.Products(), base)
		if err != nil {
			return err
		}

		p, err := r.Products().Create(ctx, model.Product{
			ID:               u.ids.NewID(),
			Name:             name,
			Slug:             slug,
			Category:         strings.TrimSpace(in.Category),
			Description:      in.Description,
			Price:            in.Price,
			ComparePrice:     in.ComparePrice,
			PricingModel:     pm,
			StockQuantity:    in.StockQuantity,
			IsAvailable:      in.StockQuantity > 0,
			IsFeatured:       in.IsFeatured,
			MinOrderQuantity: in.MinOrderQuantity,
			ImageURL:         strings.TrimSpace(in.ImageURL),
		})
		if err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			Actor:        actor,
			Action:       model.AuditActionCreateProduct,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   p.ID,
			AfterJSON:    fmt.Sprintf(`{"slug":%q,"stock":%d}`, p.Slug, p.StockQuantity),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}

		created = p
		return nil
	})
	if err != nil {
		return model.Product{}, err
	}
	return created, nil
}

func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, actor string, productID string) error {
	if strings.TrimSpace(actor) == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(productID) == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.Products().SoftDelete(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			Actor:        actor,
			Action:       model.AuditActionDeleteProduct,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}
		return nil
	})
}

func (u *ProductUsecase) AdminUpdateInventory(ctx context.Context, actor string, productID string, newStock int64, reason string) error {
	if strings.TrimSpace(actor) == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(productID) == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if newStock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	if strings.TrimSpace(reason) == "" {
		return NewHTTPError(http.StatusBadRequest, "reason required")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//変更前の在庫（before）
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}

		//在庫の現在値を更新
		if err := r.Inventory().SetStock(ctx, productID, newStock); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}

		//履歴を作成（差分）
		now := u.clock.Now()
		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			ProductID: productID,
			Actor:     actor,
			Delta:     newStock - p.StockQuantity,
			Reason:    strings.TrimSpace(reason),
			CreatedAt: now,
		}); err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}

		//「誰が」「何を」「どの対象に」「どう変えたか」を残す
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			Actor:        actor,
			Action:       model.AuditActionUpdateStock,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   fmt.Sprintf(`{"stock":%d}`, p.StockQuantity),
			AfterJSON:    fmt.Sprintf(`{"stock":%d}`, newStock),
			CreatedAt:    now,
		}); err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}
		return nil
	})
}

// 小文字にして英数字以外を "-" にまとめる
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// 被ったら -2, -3 ... を付ける（削除済みの slug も使わない）
func uniqueSlug(ctx context.Context, products repo.ProductRepository, base string) (string, error) {
	slug := base
	for i := 2; i < 100; i++ {
		exists, err := products.SlugExists(ctx, slug)
		if err != nil {
			return "", WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
	return "", NewHTTPError(http.StatusConflict, "slug already taken")
}
