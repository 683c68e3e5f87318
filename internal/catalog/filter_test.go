package catalog

import (
	"net/url"
	"testing"

	"camisfut-storefront/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestFilterGroups(t *testing.T) {
	p := domain.Product{ID: 1, Name: "Camiseta", Price: 80, CategoryIDs: []int{1, 4, 9}}

	tests := []struct {
		name string
		edit func(*Filter)
		want bool
	}{
		{"no selection", func(*Filter) {}, true},
		{"type vintage only", func(f *Filter) { f.Type["vintage"] = true }, false},
		{"type nuevas", func(f *Filter) { f.Type["nuevas"] = true }, true},
		{"or within group", func(f *Filter) { f.Type["vintage"] = true; f.Type["nuevas"] = true }, true},
		{"and across groups", func(f *Filter) { f.Type["nuevas"] = true; f.League["premier"] = true }, false},
		{"all groups pass", func(f *Filter) {
			f.Type["nuevas"] = true
			f.League["laLiga"] = true
			f.Category["clubes"] = true
		}, true},
		{"champions requires tag 11", func(f *Filter) { f.Category["champions"] = true }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFilter()
			tt.edit(&f)
			assert.Equal(t, tt.want, f.Match(p))
		})
	}
}

func TestFilterPriceAndTerm(t *testing.T) {
	products := []domain.Product{
		{ID: 1, Name: "Camiseta Real Madrid", Club: "Real Madrid", Price: 90},
		{ID: 2, Name: "Camiseta Retro", Club: "AC Milan", Description: "Edición 1994", Price: 160},
		{ID: 3, Name: "Camiseta Seleccion", Club: "España", Description: "Mundial", Price: 75},
	}

	f := NewFilter()
	assert.Equal(t, []int{1, 3}, ids(Apply(products, f)))

	f.MaxPrice = 0
	assert.Len(t, Apply(products, f), 3)

	f.Term = "MILAN"
	assert.Equal(t, []int{2}, ids(Apply(products, f)))

	f.Term = "mundial"
	assert.Equal(t, []int{3}, ids(Apply(products, f)))

	f.Term = "nada"
	assert.Empty(t, Apply(products, f))
}

func TestParseFilter(t *testing.T) {
	q := url.Values{
		"maxPrice": {"100"},
		"q":        {" milan "},
		"type":     {"vintage,fanVersion"},
		"league":   {"seriea", "bogus"},
		"category": {"clubes"},
	}
	f := ParseFilter(q)

	assert.Equal(t, float64(100), f.MaxPrice)
	assert.Equal(t, "milan", f.Term)
	assert.Equal(t, Group{"vintage": true, "fanVersion": true}, f.Type)
	assert.Equal(t, Group{"serieA": true}, f.League)
	assert.Equal(t, Group{"clubes": true}, f.Category)

	assert.Equal(t, float64(DefaultMaxPrice), ParseFilter(url.Values{"maxPrice": {"abc"}}).MaxPrice)
}

func TestFromCollection(t *testing.T) {
	f, ok := FromCollection("Premier League")
	assert.True(t, ok)
	assert.Equal(t, Group{"premier": true}, f.League)
	assert.Empty(t, f.Type)
	assert.Equal(t, float64(DefaultMaxPrice), f.MaxPrice)

	f, ok = FromCollection("retro")
	assert.True(t, ok)
	assert.Equal(t, Group{"vintage": true}, f.Type)

	f, ok = FromCollection("mundial")
	assert.False(t, ok)
	assert.Empty(t, f.Type)
	assert.Empty(t, f.League)
	assert.Empty(t, f.Category)
}
