package cart

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"camisfut-storefront/internal/domain"
	"camisfut-storefront/internal/logging"
	"camisfut-storefront/internal/pubsub"
)

// Snapshot is the cart state handed to subscribers and HTTP clients.
type Snapshot struct {
	Key    string            `json:"key"`
	Items  []domain.CartItem `json:"items"`
	Totals Totals            `json:"totals"`
}

// AddInput describes a product/size selection. Price, Name, Club and Image
// are snapshotted onto the line.
type AddInput struct {
	ProductID int     `json:"productoId"`
	Size      string  `json:"talla"`
	Quantity  int     `json:"cantidad"`
	Price     float64 `json:"precio"`
	Name      string  `json:"nombre"`
	Club      string  `json:"club"`
	Image     string  `json:"imagen"`
}

// Engine owns the lines of one cart. Every mutation is written through to
// the store and then broadcast; a failed write is logged and the in-memory
// state stays authoritative.
type Engine struct {
	mu      sync.Mutex
	key     string
	items   []domain.CartItem
	store   cartStore
	pricing Pricing
	broker  *pubsub.Broker[Snapshot]
	now     func() time.Time
}

func newEngine(key string, items []domain.CartItem, store cartStore, pricing Pricing) *Engine {
	if items == nil {
		items = []domain.CartItem{}
	}
	return &Engine{
		key:     key,
		items:   items,
		store:   store,
		pricing: pricing,
		broker:  pubsub.New[Snapshot](),
		now:     time.Now,
	}
}

func (e *Engine) Key() string { return e.key }

// Add upserts a line by (product, size), summing quantities on conflict.
func (e *Engine) Add(ctx context.Context, in AddInput) (domain.CartItem, error) {
	size := strings.TrimSpace(in.Size)
	if size == "" {
		return domain.CartItem{}, fmt.Errorf("%w: size required", domain.ErrValidation)
	}
	if in.ProductID <= 0 {
		return domain.CartItem{}, fmt.Errorf("%w: productId required", domain.ErrValidation)
	}
	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return domain.CartItem{}, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.items {
		if e.items[i].ProductID == in.ProductID && e.items[i].Size == size {
			e.items[i].Quantity += qty
			line := e.items[i]
			e.commit(ctx)
			return line, nil
		}
	}

	image := in.Image
	if image == "" {
		image = domain.DefaultImage
	}
	line := domain.CartItem{
		ID:        e.nextID(),
		ProductID: in.ProductID,
		Name:      in.Name,
		Club:      in.Club,
		Price:     in.Price,
		Size:      size,
		Image:     image,
		Quantity:  qty,
		AddedAt:   e.now().UTC(),
	}
	e.items = append(e.items, line)
	e.commit(ctx)
	return line, nil
}

// Remove deletes a line and reports whether it existed.
func (e *Engine) Remove(ctx context.Context, lineID int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexOf(lineID)
	if idx < 0 {
		return false
	}
	e.items = slices.Delete(e.items, idx, idx+1)
	e.commit(ctx)
	return true
}

// SetQuantity changes a line's quantity; below one removes the line.
func (e *Engine) SetQuantity(ctx context.Context, lineID, qty int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexOf(lineID)
	if idx < 0 {
		return false
	}
	if qty < 1 {
		e.items = slices.Delete(e.items, idx, idx+1)
	} else {
		e.items[idx].Quantity = qty
	}
	e.commit(ctx)
	return true
}

func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.items = []domain.CartItem{}
	e.commit(ctx)
}

// RemoveSubmitted takes the given lines out of the cart. A line matches by
// id, product and size; quantity added to it since the lines were read
// stays in the cart, and lines added meanwhile are kept untouched.
func (e *Engine) RemoveSubmitted(ctx context.Context, submitted []domain.CartItem) {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := make([]domain.CartItem, 0, len(e.items))
	for _, it := range e.items {
		idx := slices.IndexFunc(submitted, func(s domain.CartItem) bool {
			return s.ID == it.ID && s.ProductID == it.ProductID && s.Size == it.Size
		})
		if idx < 0 {
			kept = append(kept, it)
			continue
		}
		if extra := it.Quantity - submitted[idx].Quantity; extra > 0 {
			it.Quantity = extra
			kept = append(kept, it)
		}
	}
	e.items = kept
	e.commit(ctx)
}

// Items returns a copy of the lines.
func (e *Engine) Items() []domain.CartItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.items)
}

func (e *Engine) IsEmpty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.items) == 0
}

func (e *Engine) QuantityOf(productID int, size string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, it := range e.items {
		if it.ProductID == productID && it.Size == size {
			return it.Quantity
		}
	}
	return 0
}

func (e *Engine) Totals() Totals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pricing.Compute(e.items)
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Subscribe streams snapshots after every mutation until cancel is called.
func (e *Engine) Subscribe() (<-chan Snapshot, func()) {
	return e.broker.Subscribe()
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{Key: e.key, Items: slices.Clone(e.items), Totals: e.pricing.Compute(e.items)}
}

func (e *Engine) indexOf(lineID int) int {
	return slices.IndexFunc(e.items, func(it domain.CartItem) bool { return it.ID == lineID })
}

func (e *Engine) nextID() int {
	maxID := 0
	for _, it := range e.items {
		maxID = max(maxID, it.ID)
	}
	return maxID + 1
}

// commit persists and broadcasts the current state. Callers hold e.mu.
func (e *Engine) commit(ctx context.Context) {
	err := e.store.Save(ctx, domain.Cart{Key: e.key, Items: slices.Clone(e.items), UpdatedAt: e.now().UTC()})
	if err != nil {
		logging.FromContext(ctx).Error("cart persist failed", "cart_key", e.key, "error", err)
	}
	e.broker.Publish(e.snapshotLocked())
}
