package seed

import (
	"context"
	"fmt"

	"camisfut-storefront/internal/domain"
)

type overlayWriter interface {
	Upsert(ctx context.Context, entry domain.OverlayEntry) error
}

type jerseySeed struct {
	ID       int
	Name     string
	Club     string
	Price    float64
	Type     string
	Category string
	League   string
	Featured bool
}

// Jerseys are local additions used for manual testing. Their ids sit far
// above the upstream range so they never shadow a real product.
var Jerseys = []jerseySeed{
	{ID: 9001, Name: "Camiseta Real Madrid 24/25", Club: "Real Madrid", Price: 89.99, Type: domain.TypeNew, Category: domain.CategoryClubs, League: "laLiga", Featured: true},
	{ID: 9002, Name: "Camiseta AC Milan 94/95", Club: "AC Milan", Price: 119.9, Type: domain.TypeVintage, Category: domain.CategoryClubs, League: "serieA"},
	{ID: 9003, Name: "Camiseta Argentina 2022", Club: "Argentina", Price: 95, Type: domain.TypeFanVersion, Category: domain.CategoryNational},
}

// Apply writes the demo jerseys into the admin overlay. Upserts keep it
// idempotent.
func Apply(ctx context.Context, overlay overlayWriter) (int, error) {
	for _, j := range Jerseys {
		p := domain.Product{
			ID:          j.ID,
			Name:        j.Name,
			Description: "Camiseta oficial",
			Price:       j.Price,
			Club:        j.Club,
			Type:        j.Type,
			Category:    j.Category,
			League:      j.League,
			Retro:       j.Type == domain.TypeVintage,
			Featured:    j.Featured,
			Stock:       10,
			Images:      []string{domain.DefaultImage},
			Sizes:       append([]string(nil), domain.DefaultSizes...),
			Modified:    true,
		}
		p.CategoryIDs = domain.DeriveTags(p)

		entry, err := domain.NewOverlayEntry(p)
		if err != nil {
			return 0, err
		}
		if err := overlay.Upsert(ctx, entry); err != nil {
			return 0, fmt.Errorf("upsert jersey %d: %w", j.ID, err)
		}
	}
	return len(Jerseys), nil
}
