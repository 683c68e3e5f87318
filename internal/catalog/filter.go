package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"camisfut-storefront/internal/domain"
)

// DefaultMaxPrice is the price ceiling of a cleared filter.
const DefaultMaxPrice = 150

type Option struct {
	Key string
	Tag int
}

var (
	TypeOptions = []Option{
		{"nuevas", domain.TagNew},
		{"vintage", domain.TagVintage},
		{"fanVersion", domain.TagFanVersion},
	}
	LeagueOptions = []Option{
		{"laLiga", domain.TagLaLiga},
		{"premier", domain.TagPremier},
		{"serieA", domain.TagSerieA},
		{"bundesliga", domain.TagBundesliga},
		{"ligue1", domain.TagLigue1},
	}
	CategoryOptions = []Option{
		{"clubes", domain.TagClubs},
		{"selecciones", domain.TagNational},
		{"champions", domain.TagChampions},
	}
)

// Group is a set of selected option keys. Options within a group are
// alternatives.
type Group map[string]bool

func (g Group) tags(options []Option) []int {
	var ids []int
	for _, o := range options {
		if g[o.Key] {
			ids = append(ids, o.Tag)
		}
	}
	return ids
}

// Filter describes the catalog page controls. A zero MaxPrice disables the
// price ceiling.
type Filter struct {
	MaxPrice float64
	Term     string
	Type     Group
	League   Group
	Category Group
}

// NewFilter returns a cleared filter.
func NewFilter() Filter {
	return Filter{
		MaxPrice: DefaultMaxPrice,
		Type:     Group{},
		League:   Group{},
		Category: Group{},
	}
}

// Match reports whether p passes the filter. Checks run as price ceiling,
// then search term, then each group; a group with nothing selected never
// excludes.
func (f Filter) Match(p domain.Product) bool {
	if f.MaxPrice > 0 && p.Price > f.MaxPrice {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(f.Term)); term != "" {
		if !strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Club), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			return false
		}
	}
	return matchAny(p, f.Type.tags(TypeOptions)) &&
		matchAny(p, f.League.tags(LeagueOptions)) &&
		matchAny(p, f.Category.tags(CategoryOptions))
}

func matchAny(p domain.Product, tags []int) bool {
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if p.HasTag(t) {
			return true
		}
	}
	return false
}

// Apply returns the products that pass f, in input order.
func Apply(products []domain.Product, f Filter) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// ParseFilter reads maxPrice, q, type, league and category from a query
// string. Group values may be repeated or comma separated; unknown keys
// are ignored.
func ParseFilter(q url.Values) Filter {
	f := NewFilter()
	if v := strings.TrimSpace(q.Get("maxPrice")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n >= 0 {
			f.MaxPrice = n
		}
	}
	f.Term = strings.TrimSpace(q.Get("q"))
	fill(f.Type, TypeOptions, q["type"])
	fill(f.League, LeagueOptions, q["league"])
	fill(f.Category, CategoryOptions, q["category"])
	return f
}

func fill(g Group, options []Option, values []string) {
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			for _, o := range options {
				if strings.EqualFold(o.Key, part) {
					g[o.Key] = true
				}
			}
		}
	}
}
