package catalog

import (
	"context"
	"encoding/json"
	"testing"

	"camisfut-storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backendFixture() []domain.Product {
	return []domain.Product{
		{ID: 3, Name: "Camiseta Barcelona 24/25", Club: "FC Barcelona", Price: 89.99, Stock: 10, CategoryIDs: []int{1, 4, 9}},
		{ID: 1, Name: "Camiseta Real Madrid 24/25", Club: "Real Madrid", Price: 89.99, Stock: 5, CategoryIDs: []int{1, 4, 9}},
		{ID: 2, Name: "Camiseta Milan 1994", Club: "AC Milan", Price: 120, Stock: 2, CategoryIDs: []int{2, 6, 9}},
	}
}

func entry(t *testing.T, doc string) domain.OverlayEntry {
	t.Helper()
	e, err := domain.OverlayEntryFromDoc(json.RawMessage(doc))
	require.NoError(t, err)
	return e
}

func ids(ps []domain.Product) []int {
	out := make([]int, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestAdminViewOrdering(t *testing.T) {
	overlay := []domain.OverlayEntry{
		entry(t, `{"id":12,"nombre":"Camiseta local"}`),
		entry(t, `{"id":2,"precio":99.5}`),
		entry(t, `{"id":11,"nombre":"Otra"}`),
	}
	got := AdminView(context.Background(), backendFixture(), overlay)

	assert.Equal(t, []int{3, 1, 2, 12, 11}, ids(got))
	assert.False(t, got[0].Modified)
	assert.True(t, got[2].Modified)
	assert.Equal(t, 99.5, got[2].Price)
	assert.Equal(t, "AC Milan", got[2].Club, "absent fields keep the backend value")
}

func TestCatalogViewSortsAndStrips(t *testing.T) {
	overlay := []domain.OverlayEntry{entry(t, `{"id":2,"precio":99.5,"esModificado":true}`)}
	got := CatalogView(context.Background(), backendFixture(), overlay)

	assert.Equal(t, []int{1, 2, 3}, ids(got))
	for _, p := range got {
		assert.False(t, p.Modified)
		assert.False(t, p.Deleted)
	}
}

func TestMergeIdempotent(t *testing.T) {
	ctx := context.Background()
	overlay := []domain.OverlayEntry{
		entry(t, `{"id":1,"nombre":"Editada"}`),
		entry(t, `{"id":2,"eliminado":true}`),
		entry(t, `{"id":40,"nombre":"Nueva"}`),
	}
	once := CatalogView(ctx, backendFixture(), overlay)
	twice := CatalogView(ctx, once, overlay)
	assert.Equal(t, once, twice)

	adminOnce := AdminView(ctx, backendFixture(), overlay)
	adminTwice := AdminView(ctx, adminOnce, overlay)
	assert.Equal(t, adminOnce, adminTwice)
}

func TestOverlayPrecedence(t *testing.T) {
	override := domain.Product{
		ID:          1,
		Name:        "Camiseta Real Madrid Edición",
		Description: "",
		Price:       70,
		Club:        "Real Madrid CF",
		Type:        domain.TypeVintage,
		Category:    domain.CategoryClubs,
		League:      "laLiga",
		Stock:       0,
		Images:      []string{"rm-retro.jpg"},
		Sizes:       []string{"M"},
		CategoryIDs: []int{2, 4, 9},
	}
	e, err := domain.NewOverlayEntry(override)
	require.NoError(t, err)

	got := AdminView(context.Background(), backendFixture(), []domain.OverlayEntry{e})
	merged := got[1]
	merged.Modified = false
	assert.Equal(t, override, merged)
}

func TestSoftDeletionViewsDiverge(t *testing.T) {
	ctx := context.Background()
	overlay := []domain.OverlayEntry{entry(t, `{"id":3,"eliminado":true}`)}

	catalog := CatalogView(ctx, backendFixture(), overlay)
	assert.NotContains(t, ids(catalog), 3)

	admin := AdminView(ctx, backendFixture(), overlay)
	require.Equal(t, 3, admin[0].ID)
	assert.True(t, admin[0].Deleted)
	assert.Zero(t, admin[0].Stock)
	assert.Equal(t, "FC Barcelona", admin[0].Club)
}

func TestDuplicateEntriesLastWins(t *testing.T) {
	overlay := []domain.OverlayEntry{
		entry(t, `{"id":1,"nombre":"Primera","club":"X"}`),
		entry(t, `{"id":1,"nombre":"Segunda"}`),
	}
	got := AdminView(context.Background(), backendFixture(), overlay)
	assert.Equal(t, "Segunda", got[1].Name)
	assert.Equal(t, "Real Madrid", got[1].Club)
}

func TestMalformedEntrySkipped(t *testing.T) {
	overlay := []domain.OverlayEntry{
		{ProductID: 1, Doc: json.RawMessage(`{"precio":"caro"}`)},
		entry(t, `{"id":2,"precio":10}`),
	}
	got := CatalogView(context.Background(), backendFixture(), overlay)
	require.Len(t, got, 3)
	assert.Equal(t, 89.99, got[0].Price)
	assert.Equal(t, float64(10), got[1].Price)
}

func TestCatalogViewDerivesTags(t *testing.T) {
	overlay := []domain.OverlayEntry{entry(t, `{"id":50,"nombre":"Retro","tipo":"vintage","liga":"premier","categoria":"clubes"}`)}
	got := OverlayOnly(context.Background(), overlay)
	require.Len(t, got, 1)
	assert.ElementsMatch(t, []int{2, 5, 9}, got[0].CategoryIDs)
}

func TestApplyOne(t *testing.T) {
	ctx := context.Background()
	base := backendFixture()[1]

	p, ok := ApplyOne(ctx, base, []domain.OverlayEntry{entry(t, `{"id":1,"nombre":"Editada"}`), entry(t, `{"id":3,"eliminado":true}`)})
	require.True(t, ok)
	assert.Equal(t, "Editada", p.Name)

	_, ok = ApplyOne(ctx, base, []domain.OverlayEntry{entry(t, `{"id":1,"eliminado":true}`)})
	assert.False(t, ok)
}
