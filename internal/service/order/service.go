package order

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"camisfut-storefront/internal/cache"
	"camisfut-storefront/internal/catalog"
	"camisfut-storefront/internal/domain"
	"camisfut-storefront/internal/logging"
	"camisfut-storefront/internal/upstream"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const DefaultConcurrency = 8

// Service lists a user's orders with every line joined to its product.
type Service struct {
	orders      orderLister
	products    productGetter
	overlay     overlayLister
	hidden      hiddenStore
	cache       cache.ProductCache
	concurrency int

	flight singleflight.Group
}

type orderLister interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
}

type productGetter interface {
	GetProduct(ctx context.Context, id int) (domain.Product, error)
}

type overlayLister interface {
	List(ctx context.Context) ([]domain.OverlayEntry, error)
}

type hiddenStore interface {
	Hide(ctx context.Context, userID, orderID int) error
	List(ctx context.Context, userID int) ([]int, error)
	Clear(ctx context.Context, userID int) error
}

type Options struct {
	Cache       cache.ProductCache
	Concurrency int
}

func New(orders orderLister, products productGetter, overlay overlayLister, hidden hiddenStore, opts Options) *Service {
	if opts.Cache == nil {
		opts.Cache = cache.NewLRU(cache.DefaultSize, cache.DefaultTTL)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Service{
		orders:      orders,
		products:    products,
		overlay:     overlay,
		hidden:      hidden,
		cache:       opts.Cache,
		concurrency: opts.Concurrency,
	}
}

// List returns the session user's visible orders, enriched. Sessions
// without an upstream account get an empty list.
func (s *Service) List(ctx context.Context, sess *domain.Session) ([]domain.Order, error) {
	userID, ok := sess.UserIDNumber()
	if !ok || !sess.HasUsableToken() {
		return []domain.Order{}, nil
	}

	all, err := s.orders.ListOrders(upstream.WithToken(ctx, sess.UpstreamToken))
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	hidden, err := s.hidden.List(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Warn("hidden orders unavailable", "user_id", userID, "error", err)
	}

	mine := make([]domain.Order, 0, len(all))
	for _, o := range all {
		if o.UserID != userID || slices.Contains(hidden, o.ID) {
			continue
		}
		mine = append(mine, o)
	}
	return s.Enrich(ctx, mine), nil
}

// Enrich joins products onto every order line. Lines whose product could
// not be fetched get a fallback name; when the pass is cancelled every
// order degrades to basic lines built from the details.
func (s *Service) Enrich(ctx context.Context, orders []domain.Order) []domain.Order {
	logger := logging.FromContext(ctx)

	products, err := s.fetchAll(ctx, productIDs(orders))
	if err != nil {
		logger.Warn("order enrichment degraded to basic items", "orders", len(orders), "error", err)
		out := make([]domain.Order, len(orders))
		for i, o := range orders {
			out[i] = basicItems(o)
		}
		return out
	}

	out := make([]domain.Order, len(orders))
	for i, o := range orders {
		if len(o.Details) == 0 {
			out[i] = basicItems(o)
			continue
		}
		items := make([]domain.OrderItem, 0, len(o.Details))
		for _, d := range o.Details {
			if p, ok := products[d.ProductID]; ok && d.ProductID > 0 {
				items = append(items, resolvedItem(d, p))
				continue
			}
			items = append(items, basicItem(d, o.Total))
		}
		o.Items = items
		out[i] = o
	}
	return out
}

// fetchAll resolves each id once, concurrently, and waits for all of them.
// An id that cannot be fetched is absent from the result and only its own
// lines fall back; the pass as a whole fails only when ctx is done.
func (s *Service) fetchAll(ctx context.Context, ids []int) (map[int]domain.Product, error) {
	found := make(map[int]domain.Product, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	logger := logging.FromContext(ctx)
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			p, ok, err := s.product(gctx, id)
			if err != nil {
				if cerr := gctx.Err(); cerr != nil {
					return cerr
				}
				logger.Warn("order line product unavailable", "product_id", id, "error", err)
				return nil
			}
			if ok {
				mu.Lock()
				found[id] = p
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := s.overlay.List(ctx)
	if err != nil {
		logging.FromContext(ctx).Warn("overlay unavailable for order enrichment", "error", err)
		return found, nil
	}
	for id, p := range found {
		if merged, ok := catalog.ApplyOne(ctx, p, entries); ok {
			found[id] = merged
		}
	}
	return found, nil
}

func (s *Service) product(ctx context.Context, id int) (domain.Product, bool, error) {
	logger := logging.FromContext(ctx)

	p, ok, err := s.cache.Get(ctx, id)
	if err != nil {
		logger.Warn("product cache read failed", "product_id", id, "error", err)
	}
	if ok {
		return p, true, nil
	}

	v, err, _ := s.flight.Do(strconv.Itoa(id), func() (any, error) {
		return s.products.GetProduct(ctx, id)
	})
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Product{}, false, nil
	}
	if err != nil {
		return domain.Product{}, false, fmt.Errorf("fetch product %d: %w", id, err)
	}

	p = v.(domain.Product)
	if err := s.cache.Set(ctx, p); err != nil {
		logger.Warn("product cache write failed", "product_id", id, "error", err)
	}
	return p, true, nil
}

// Hide removes an order from the user's history. Only pending or
// cancelled orders may be hidden.
func (s *Service) Hide(ctx context.Context, sess *domain.Session, orderID int) error {
	userID, ok := sess.UserIDNumber()
	if !ok || !sess.HasUsableToken() {
		return domain.ErrUnauthenticated
	}

	all, err := s.orders.ListOrders(upstream.WithToken(ctx, sess.UpstreamToken))
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}
	idx := slices.IndexFunc(all, func(o domain.Order) bool { return o.ID == orderID && o.UserID == userID })
	if idx < 0 {
		return domain.ErrNotFound
	}
	switch all[idx].Status {
	case domain.OrderPending, domain.OrderCancelled:
	default:
		return fmt.Errorf("%w: order %d is %s", domain.ErrValidation, orderID, all[idx].Status)
	}
	return s.hidden.Hide(ctx, userID, orderID)
}

// RestoreHidden brings back every hidden order of the user.
func (s *Service) RestoreHidden(ctx context.Context, sess *domain.Session) error {
	userID, ok := sess.UserIDNumber()
	if !ok {
		return domain.ErrUnauthenticated
	}
	return s.hidden.Clear(ctx, userID)
}

// ClearCache drops every cached product.
func (s *Service) ClearCache(ctx context.Context) error {
	return s.cache.Purge(ctx)
}

func productIDs(orders []domain.Order) []int {
	seen := make(map[int]bool)
	var ids []int
	for _, o := range orders {
		for _, d := range o.Details {
			if d.ProductID > 0 && !seen[d.ProductID] {
				seen[d.ProductID] = true
				ids = append(ids, d.ProductID)
			}
		}
	}
	return ids
}

func quantity(d domain.OrderDetail) int {
	if d.Quantity < 1 {
		return 1
	}
	return d.Quantity
}

func resolvedItem(d domain.OrderDetail, p domain.Product) domain.OrderItem {
	qty := quantity(d)
	desc := p.Description
	if desc == "" {
		desc = defaultDescription
	}
	club := p.Club
	if club == "" {
		club = defaultClub
	}
	size := d.Size
	if size == "" {
		size = defaultSize
	}
	name := p.Name
	if name == "" {
		name = fallbackName(nameHint{ProductID: p.ID, Club: p.Club, Type: p.Type}, 0)
	}
	return domain.OrderItem{
		ID:          d.ID,
		ProductID:   d.ProductID,
		Name:        name,
		Description: desc,
		Club:        club,
		Type:        p.Type,
		Category:    p.Category,
		Season:      season(p.Name),
		League:      p.League,
		Quantity:    qty,
		Price:       d.Subtotal / float64(qty),
		Subtotal:    d.Subtotal,
		Size:        size,
		Image:       p.FirstImage(),
		Retro:       p.Retro,
		Resolved:    true,
	}
}

func basicItem(d domain.OrderDetail, orderTotal float64) domain.OrderItem {
	qty := quantity(d)
	club := d.Club
	if club == "" {
		club = defaultClub
	}
	size := d.Size
	if size == "" {
		size = defaultSize
	}
	return domain.OrderItem{
		ID:        d.ID,
		ProductID: d.ProductID,
		Name:      fallbackName(nameHint{ProductID: d.ProductID, Name: d.Name, Club: d.Club}, orderTotal),
		Club:      club,
		Season:    season(d.Name),
		Quantity:  qty,
		Price:     d.Subtotal / float64(qty),
		Subtotal:  d.Subtotal,
		Size:      size,
		Image:     domain.DefaultImage,
	}
}

// basicItems builds display lines from the order details alone.
func basicItems(o domain.Order) domain.Order {
	items := make([]domain.OrderItem, 0, len(o.Details))
	for _, d := range o.Details {
		items = append(items, basicItem(d, o.Total))
	}
	if len(items) == 0 && o.Total > 0 {
		items = append(items, domain.OrderItem{
			Name:     fmt.Sprintf("Pedido %d", o.ID),
			Club:     defaultClub,
			Quantity: 1,
			Price:    o.Total,
			Subtotal: o.Total,
			Size:     defaultSize,
			Image:    domain.DefaultImage,
		})
	}
	o.Items = items
	return o
}
