// Package cache holds the bounded product cache used by order enrichment.
package cache

import (
	"context"

	"camisfut-storefront/internal/domain"
)

// ProductCache stores upstream products by id. A miss is reported with
// ok=false and a nil error.
type ProductCache interface {
	Get(ctx context.Context, id int) (p domain.Product, ok bool, err error)
	Set(ctx context.Context, p domain.Product) error
	Purge(ctx context.Context) error
}
