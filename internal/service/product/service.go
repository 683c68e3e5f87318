package product

import (
	"context"
	"errors"
	"fmt"

	"camisfut-storefront/internal/catalog"
	"camisfut-storefront/internal/domain"
	"camisfut-storefront/internal/logging"
)

// Service serves product views with the admin overlay applied. When the
// upstream catalog is unreachable it falls back to overlay data alone.
type Service struct {
	upstream upstreamProducts
	overlay  overlayLister
}

type upstreamProducts interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int) (domain.Product, error)
	ProductsByCategory(ctx context.Context, category string) ([]domain.Product, error)
	FeaturedProducts(ctx context.Context) ([]domain.Product, error)
	SearchProducts(ctx context.Context, term string) ([]domain.Product, error)
}

type overlayLister interface {
	List(ctx context.Context) ([]domain.OverlayEntry, error)
}

func New(upstream upstreamProducts, overlay overlayLister) *Service {
	return &Service{upstream: upstream, overlay: overlay}
}

// sources fetches backend products and overlay entries. It fails only when
// both are unavailable.
func (s *Service) sources(ctx context.Context) (backend []domain.Product, overlay []domain.OverlayEntry, backendOK bool, err error) {
	logger := logging.FromContext(ctx)

	backend, backendErr := s.upstream.ListProducts(ctx)
	overlay, overlayErr := s.overlay.List(ctx)
	switch {
	case backendErr != nil && overlayErr != nil:
		return nil, nil, false, fmt.Errorf("load catalog: %w", errors.Join(backendErr, overlayErr))
	case backendErr != nil:
		logger.Warn("upstream catalog unavailable, serving overlay only", "error", backendErr)
		return nil, overlay, false, nil
	case overlayErr != nil:
		logger.Warn("overlay store unavailable, serving upstream catalog", "error", overlayErr)
		return backend, nil, true, nil
	}
	return backend, overlay, true, nil
}

// Catalog is the customer-facing product list filtered by f.
func (s *Service) Catalog(ctx context.Context, f catalog.Filter) ([]domain.Product, error) {
	backend, overlay, _, err := s.sources(ctx)
	if err != nil {
		return []domain.Product{}, err
	}
	return catalog.Apply(catalog.CatalogView(ctx, backend, overlay), f), nil
}

// AdminProducts is the admin dashboard list, soft-deleted records included.
func (s *Service) AdminProducts(ctx context.Context) ([]domain.Product, error) {
	backend, overlay, _, err := s.sources(ctx)
	if err != nil {
		return []domain.Product{}, err
	}
	return catalog.AdminView(ctx, backend, overlay), nil
}

// Collection applies a named collection filter. The bool is false for an
// unknown name, in which case the unfiltered catalog is returned.
func (s *Service) Collection(ctx context.Context, name string) ([]domain.Product, bool, error) {
	f, ok := catalog.FromCollection(name)
	products, err := s.Catalog(ctx, f)
	return products, ok, err
}

// Product returns one catalog product. Local additions are served from the
// overlay; deleted products are not found.
func (s *Service) Product(ctx context.Context, id int) (domain.Product, error) {
	overlay, overlayErr := s.overlay.List(ctx)
	if overlayErr != nil {
		logging.FromContext(ctx).Warn("overlay store unavailable", "product_id", id, "error", overlayErr)
	}

	base, err := s.upstream.GetProduct(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrUpstreamUnavailable) {
			return domain.Product{}, err
		}
		for _, p := range catalog.OverlayOnly(ctx, overlay) {
			if p.ID == id {
				return p, nil
			}
		}
		return domain.Product{}, err
	}

	p, ok := catalog.ApplyOne(ctx, base, overlay)
	if !ok {
		return domain.Product{}, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

// Featured lists highlighted products.
func (s *Service) Featured(ctx context.Context) ([]domain.Product, error) {
	return s.subset(ctx, s.upstream.FeaturedProducts, func(p domain.Product) bool { return p.Featured })
}

// ByCategory lists products of one category.
func (s *Service) ByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return s.subset(ctx, func(ctx context.Context) ([]domain.Product, error) {
		return s.upstream.ProductsByCategory(ctx, category)
	}, func(p domain.Product) bool { return p.Category == category })
}

// Search runs the upstream search, falling back to a term filter over the
// merged catalog.
func (s *Service) Search(ctx context.Context, term string) ([]domain.Product, error) {
	f := catalog.NewFilter()
	f.MaxPrice = 0
	f.Term = term
	return s.subset(ctx, func(ctx context.Context) ([]domain.Product, error) {
		return s.upstream.SearchProducts(ctx, term)
	}, f.Match)
}

// subset applies the overlay to an upstream sub-list. When the upstream
// call fails the full catalog is filtered locally with keep instead.
func (s *Service) subset(ctx context.Context, fetch func(context.Context) ([]domain.Product, error), keep func(domain.Product) bool) ([]domain.Product, error) {
	backend, err := fetch(ctx)
	if err != nil {
		logging.FromContext(ctx).Warn("upstream listing failed, filtering merged catalog", "error", err)
		all, catErr := s.Catalog(ctx, catalog.Filter{})
		if catErr != nil {
			return all, catErr
		}
		out := make([]domain.Product, 0, len(all))
		for _, p := range all {
			if keep(p) {
				out = append(out, p)
			}
		}
		return out, nil
	}

	overlay, err := s.overlay.List(ctx)
	if err != nil {
		logging.FromContext(ctx).Warn("overlay store unavailable", "error", err)
	}
	out := make([]domain.Product, 0, len(backend))
	for _, p := range backend {
		if merged, ok := catalog.ApplyOne(ctx, p, overlay); ok {
			out = append(out, merged)
		}
	}
	return out, nil
}
