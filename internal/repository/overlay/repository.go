package overlay

import (
	"context"

	"camisfut-storefront/internal/domain"
)

// Repository stores admin overlay entries, at most one per product id,
// remembering the order in which ids were first written.
type Repository interface {
	List(ctx context.Context) ([]domain.OverlayEntry, error)
	Get(ctx context.Context, productID int) (domain.OverlayEntry, error)
	// Upsert replaces the document for the entry's id and keeps its position.
	Upsert(ctx context.Context, entry domain.OverlayEntry) error
	Delete(ctx context.Context, productID int) error
	// ReplaceAll swaps the whole overlay atomically.
	ReplaceAll(ctx context.Context, entries []domain.OverlayEntry) error
	Clear(ctx context.Context) error
}
