// Package cart holds the shopper's cart as an explicit state container.
// Persistence lives behind repository.CartSnapshotRepository; the Store
// itself never touches storage.
package cart

import (
	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

type Store struct {
	items []model.CartItem
}

func New() *Store {
	return &Store{items: []model.CartItem{}}
}

// スナップショットから復元（数量0以下の行は捨てる）
func FromSnapshot(s model.CartSnapshot) *Store {
	st := New()
	for _, it := range s.Items {
		st.Add(it)
	}
	return st
}

func (s *Store) Snapshot() model.CartSnapshot {
	return model.CartSnapshot{Items: s.Items()}
}

// Itemsはコピーを返す
func (s *Store) Items() []model.CartItem {
	out := make([]model.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// Add merges into an existing line with the same product and weight option,
// otherwise appends a new line. Non-positive quantities are ignored.
func (s *Store) Add(item model.CartItem) {
	if item.Quantity <= 0 {
		return
	}
	for i := range s.items {
		if s.items[i].ProductID == item.ProductID && s.items[i].WeightOption == item.WeightOption {
			s.items[i].Quantity += item.Quantity
			return
		}
	}
	s.items = append(s.items, item)
}

// 同じ商品IDの行をすべて消す
func (s *Store) Remove(productID string) {
	kept := s.items[:0]
	for _, it := range s.items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	s.items = kept
}

// 0以下ならRemoveと同じ
func (s *Store) UpdateQuantity(productID string, quantity int64) {
	if quantity <= 0 {
		s.Remove(productID)
		return
	}
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity = quantity
		}
	}
}

func (s *Store) Clear() {
	s.items = []model.CartItem{}
}

// 毎回明細から計算する
func (s *Store) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func (s *Store) TotalItems() int64 {
	var n int64
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *Store) Len() int {
	return len(s.items)
}
