package order

import (
	"fmt"
	"regexp"
	"strings"

	"camisfut-storefront/internal/domain"
)

const (
	defaultDescription = "Camiseta oficial"
	defaultClub        = "Sin club"
	defaultSize        = "M"
	genericName        = "Camiseta de fútbol"
)

var seasonPattern = regexp.MustCompile(`\d{2}/\d{2}`)

// season returns the first "yy/yy" token in name.
func season(name string) string {
	return seasonPattern.FindString(name)
}

var placeholderNames = map[string]bool{
	"Producto no disponible": true,
	"Producto desconocido":   true,
	"Producto genérico":      true,
}

// usableName reports whether an upstream name hint can be shown as is.
func usableName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "null") {
		return false
	}
	return !placeholderNames[name]
}

type nameHint struct {
	ProductID int
	Name      string
	Club      string
	Type      string
}

// fallbackName names a line whose product could not be resolved.
func fallbackName(h nameHint, orderTotal float64) string {
	if usableName(h.Name) {
		return h.Name
	}
	club := strings.TrimSpace(h.Club)
	switch {
	case club != "" && club != defaultClub:
		name := "Camiseta " + club
		if s := season(h.Name); s != "" {
			name += " " + s
		}
		switch h.Type {
		case domain.TypeVintage:
			name += " Vintage"
		case domain.TypeNew:
			name += " Nueva"
		case domain.TypeFanVersion:
			name += " Fan Version"
		}
		return name
	case h.ProductID > 0:
		return fmt.Sprintf("Camiseta #%d", h.ProductID)
	case orderTotal > 100:
		return "Camiseta premium"
	case orderTotal > 50:
		return "Camiseta estándar"
	case orderTotal > 0:
		return "Camiseta básica"
	default:
		return genericName
	}
}
