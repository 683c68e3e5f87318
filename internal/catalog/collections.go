package catalog

import "strings"

var collections = map[string]struct {
	group string
	key   string
}{
	"champions":      {"category", "champions"},
	"selecciones":    {"category", "selecciones"},
	"clubes":         {"category", "clubes"},
	"vintage":        {"type", "vintage"},
	"retro":          {"type", "vintage"},
	"nuevas":         {"type", "nuevas"},
	"fanversion":     {"type", "fanVersion"},
	"fan":            {"type", "fanVersion"},
	"premier":        {"league", "premier"},
	"premier league": {"league", "premier"},
	"laliga":         {"league", "laLiga"},
	"la liga":        {"league", "laLiga"},
	"seriea":         {"league", "serieA"},
	"serie a":        {"league", "serieA"},
	"bundesliga":     {"league", "bundesliga"},
	"ligue1":         {"league", "ligue1"},
	"ligue 1":        {"league", "ligue1"},
}

// FromCollection maps a collection name to a cleared filter with a single
// option selected. Unknown names yield a cleared filter and false.
func FromCollection(name string) (Filter, bool) {
	f := NewFilter()
	c, ok := collections[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return f, false
	}
	switch c.group {
	case "type":
		f.Type[c.key] = true
	case "league":
		f.League[c.key] = true
	case "category":
		f.Category[c.key] = true
	}
	return f, true
}
