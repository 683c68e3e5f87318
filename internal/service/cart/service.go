package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"camisfut-storefront/internal/domain"
	"camisfut-storefront/internal/events"
	"camisfut-storefront/internal/logging"
	"camisfut-storefront/internal/upstream"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultMaxEngines = 10000
	DefaultEngineTTL  = 30 * time.Minute
)

// Service keeps one Engine per recently used cart key, loading carts lazily
// from the store, and submits carts as upstream orders. Engines idle for
// longer than the TTL, or beyond the size cap, are dropped; their state is
// already in the store and is reloaded on next use.
type Service struct {
	mu      sync.Mutex
	engines *expirable.LRU[string, *Engine]

	repo      cartStore
	orders    orderCreator
	publisher events.Publisher
	topic     string
	pricing   Pricing
}

type cartStore interface {
	Get(ctx context.Context, key string) (*domain.Cart, error)
	Save(ctx context.Context, cart domain.Cart) error
}

type orderCreator interface {
	CreateOrder(ctx context.Context, in domain.NewOrder) (domain.Order, error)
}

type Options struct {
	Pricing    Pricing
	Publisher  events.Publisher
	OrderTopic string
	MaxEngines int
	EngineTTL  time.Duration
}

func New(repo cartStore, orders orderCreator, opts Options) *Service {
	if opts.Pricing.TaxRate.IsZero() && opts.Pricing.ShippingFee.IsZero() && opts.Pricing.FreeShippingThreshold.IsZero() {
		opts.Pricing = DefaultPricing()
	}
	if opts.MaxEngines <= 0 {
		opts.MaxEngines = DefaultMaxEngines
	}
	if opts.EngineTTL <= 0 {
		opts.EngineTTL = DefaultEngineTTL
	}
	// Subscribers of an evicted engine see their channel closed and
	// resubscribe against the reloaded one.
	onEvict := func(_ string, e *Engine) { e.broker.Close() }
	return &Service{
		engines:   expirable.NewLRU(opts.MaxEngines, onEvict, opts.EngineTTL),
		repo:      repo,
		orders:    orders,
		publisher: opts.Publisher,
		topic:     opts.OrderTopic,
		pricing:   opts.Pricing,
	}
}

// Engine returns the engine for key, loading the stored cart on first use.
func (s *Service) Engine(ctx context.Context, key string) (*Engine, error) {
	if key == "" {
		return nil, errors.New("cart key required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.engines.Get(key); ok {
		s.engines.Add(key, e) // restart the idle clock
		return e, nil
	}
	var items []domain.CartItem
	stored, err := s.repo.Get(ctx, key)
	switch {
	case err == nil:
		items = stored.Items
	case errors.Is(err, domain.ErrNotFound):
	default:
		return nil, fmt.Errorf("load cart %s: %w", key, err)
	}
	e := newEngine(key, items, s.repo, s.pricing)
	s.engines.Add(key, e)
	return e, nil
}

// Cached reports how many engines are held in memory.
func (s *Service) Cached() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engines.Len()
}

// Merge moves every line of the from cart into the to cart and empties the
// source. Used when a visitor logs in.
func (s *Service) Merge(ctx context.Context, fromKey, toKey string) error {
	if fromKey == "" || fromKey == toKey {
		return nil
	}
	from, err := s.Engine(ctx, fromKey)
	if err != nil {
		return err
	}
	lines := from.Items()
	if len(lines) == 0 {
		return nil
	}
	to, err := s.Engine(ctx, toKey)
	if err != nil {
		return err
	}
	for _, it := range lines {
		_, err := to.Add(ctx, AddInput{
			ProductID: it.ProductID,
			Size:      it.Size,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Name:      it.Name,
			Club:      it.Club,
			Image:     it.Image,
		})
		if err != nil {
			logging.FromContext(ctx).Warn("cart merge skipped line", "cart_key", fromKey, "line_id", it.ID, "error", err)
		}
	}
	from.Clear(ctx)
	return nil
}

// Checkout submits the cart as a pending order. Anonymous callers are
// rejected before anything is sent upstream. On success the submitted
// lines leave the cart, while anything added during submission stays; on
// failure the cart is left as it was.
func (s *Service) Checkout(ctx context.Context, sess *domain.Session, key string) (domain.Order, error) {
	if !sess.IsLoggedIn() {
		return domain.Order{}, domain.ErrUnauthenticated
	}
	userID, ok := sess.UserIDNumber()
	if !ok || !sess.HasUsableToken() {
		return domain.Order{}, fmt.Errorf("%w: session has no upstream account", domain.ErrUnauthenticated)
	}

	e, err := s.Engine(ctx, key)
	if err != nil {
		return domain.Order{}, err
	}
	items := e.Items()
	if len(items) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}

	order := BuildOrder(userID, items, s.pricing)
	created, err := s.orders.CreateOrder(upstream.WithToken(ctx, sess.UpstreamToken), order)
	if err != nil {
		return domain.Order{}, fmt.Errorf("submit order: %w", err)
	}

	e.RemoveSubmitted(ctx, items)
	logger := logging.FromContext(ctx)
	logger.Info("order submitted", "order_id", created.ID, "user_id", userID, "lines", len(items))

	if s.publisher != nil {
		ev := events.NewEvent(events.TypeOrderCreated, created)
		if err := s.publisher.PublishEvent(ctx, s.topic, fmt.Sprint(userID), ev); err != nil {
			logger.Warn("order event not published", "order_id", created.ID, "error", err)
		}
	}
	return created, nil
}

// BuildOrder maps cart lines to the upstream order payload. The order
// total is the cart subtotal.
func BuildOrder(userID int, items []domain.CartItem, pricing Pricing) domain.NewOrder {
	details := make([]domain.OrderDetail, 0, len(items))
	for _, it := range items {
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		line := it
		line.Quantity = qty
		details = append(details, domain.OrderDetail{
			ProductID: it.ProductID,
			Quantity:  qty,
			Subtotal:  LineTotal(line).InexactFloat64(),
		})
	}
	return domain.NewOrder{
		UserID:  userID,
		Total:   pricing.Compute(items).Subtotal.InexactFloat64(),
		Status:  domain.OrderPending,
		Details: details,
	}
}
