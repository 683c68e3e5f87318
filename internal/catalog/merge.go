// Package catalog merges the admin overlay onto upstream products and
// evaluates storefront filters. Everything here is pure and safe to call
// concurrently.
package catalog

import (
	"context"
	"sort"

	"camisfut-storefront/internal/domain"
	"camisfut-storefront/internal/logging"
)

// AdminView merges overlay entries onto backend records for the admin
// dashboard. Records keep backend order followed by new ids in overlay
// order. Soft-deleted records stay in the output with Deleted set and
// stock zeroed.
func AdminView(ctx context.Context, backend []domain.Product, overlay []domain.OverlayEntry) []domain.Product {
	return merge(ctx, backend, overlay)
}

// CatalogView is the customer-facing merge: soft-deleted ids are removed,
// admin flags stripped and the result sorted by id.
func CatalogView(ctx context.Context, backend []domain.Product, overlay []domain.OverlayEntry) []domain.Product {
	merged := merge(ctx, backend, overlay)
	out := make([]domain.Product, 0, len(merged))
	for _, p := range merged {
		if p.Deleted {
			continue
		}
		out = append(out, withTags(p.StripAdminFlags()))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// OverlayOnly is the catalog view of the overlay alone, used when the
// upstream catalog cannot be fetched.
func OverlayOnly(ctx context.Context, overlay []domain.OverlayEntry) []domain.Product {
	return CatalogView(ctx, nil, overlay)
}

// ApplyOne merges the overlay onto a single product. The second result is
// false when the overlay deletes it.
func ApplyOne(ctx context.Context, base domain.Product, overlay []domain.OverlayEntry) (domain.Product, bool) {
	var mine []domain.OverlayEntry
	for _, e := range overlay {
		if e.ProductID == base.ID {
			mine = append(mine, e)
		}
	}
	if len(mine) == 0 {
		return withTags(base), true
	}
	view := CatalogView(ctx, []domain.Product{base}, mine)
	if len(view) == 0 {
		return domain.Product{}, false
	}
	return view[0], true
}

// Dedupe keeps the last entry for every id, ordered by that entry's
// position.
func Dedupe(overlay []domain.OverlayEntry) []domain.OverlayEntry {
	last := make(map[int]int, len(overlay))
	for i, e := range overlay {
		last[e.ProductID] = i
	}
	out := make([]domain.OverlayEntry, 0, len(last))
	for i, e := range overlay {
		if last[e.ProductID] == i {
			out = append(out, e)
		}
	}
	return out
}

func merge(ctx context.Context, backend []domain.Product, overlay []domain.OverlayEntry) []domain.Product {
	logger := logging.FromContext(ctx)

	out := make([]domain.Product, 0, len(backend)+len(overlay))
	index := make(map[int]int, len(backend)+len(overlay))
	for _, p := range backend {
		p = p.Clone()
		p.Modified = false
		p.Deleted = false
		if i, ok := index[p.ID]; ok {
			out[i] = p
			continue
		}
		index[p.ID] = len(out)
		out = append(out, p)
	}

	for _, e := range Dedupe(overlay) {
		i, exists := index[e.ProductID]
		var base domain.Product
		if exists {
			base = out[i]
		}
		p, err := e.ApplyTo(base)
		if err != nil {
			logger.Warn("skipping malformed overlay entry", "product_id", e.ProductID, "error", err)
			continue
		}
		p.Modified = true
		if e.Deleted || p.Deleted {
			p.Deleted = true
			p.Stock = 0
		}
		if exists {
			out[i] = p
			continue
		}
		index[p.ID] = len(out)
		out = append(out, p)
	}
	return out
}

func withTags(p domain.Product) domain.Product {
	if len(p.CategoryIDs) == 0 {
		p.CategoryIDs = domain.DeriveTags(p)
	}
	return p
}
