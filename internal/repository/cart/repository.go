package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"camisfut-storefront/internal/domain"
)

// Repository persists whole carts as one document per cart key.
type Repository interface {
	Get(ctx context.Context, key string) (*domain.Cart, error)
	Save(ctx context.Context, cart domain.Cart) error
	Delete(ctx context.Context, key string) error
}

// storedItem shadows productoId so rows written before the field existed
// can be told apart from product id zero.
type storedItem struct {
	domain.CartItem
	ProductID *int `json:"productoId"`
}

// DecodeItems reads a stored item list. A missing productoId falls back to
// the line id, then to 1.
func DecodeItems(data []byte) ([]domain.CartItem, error) {
	if len(data) == 0 {
		return []domain.CartItem{}, nil
	}
	var stored []storedItem
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decode cart items: %w", err)
	}
	items := make([]domain.CartItem, 0, len(stored))
	for _, s := range stored {
		it := s.CartItem
		switch {
		case s.ProductID != nil && *s.ProductID != 0:
			it.ProductID = *s.ProductID
		case it.ID != 0:
			it.ProductID = it.ID
		default:
			it.ProductID = 1
		}
		items = append(items, it)
	}
	return items, nil
}
