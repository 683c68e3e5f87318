package domain

import (
	"slices"
	"time"
)

// Product is a jersey as the storefront sees it. JSON names follow the
// upstream API so overlay exports stay interchangeable with it.
type Product struct {
	ID          int        `json:"id"`
	Name        string     `json:"nombre"`
	Description string     `json:"descripcion"`
	Price       float64    `json:"precio"`
	Club        string     `json:"club"`
	Team        string     `json:"equipo,omitempty"`
	Type        string     `json:"tipo"`
	Category    string     `json:"categoria"`
	League      string     `json:"liga"`
	Retro       bool       `json:"retro"`
	Featured    bool       `json:"destacado"`
	Stock       int        `json:"stock"`
	Images      []string   `json:"imagenes"`
	Sizes       []string   `json:"tallasDisponibles"`
	CreatedAt   *time.Time `json:"fechaCreacion,omitempty"`
	UpdatedAt   *time.Time `json:"fechaActualizacion,omitempty"`
	CategoryIDs []int      `json:"categoriasIds"`
	Deleted     bool       `json:"eliminado,omitempty"`
	Modified    bool       `json:"esModificado,omitempty"`
}

const (
	TypeNew        = "nuevas"
	TypeVintage    = "vintage"
	TypeFanVersion = "fanVersion"

	CategoryClubs    = "clubes"
	CategoryNational = "selecciones"

	DefaultImage = "default.jpg"
)

// DefaultSizes are offered when a product does not list its own.
var DefaultSizes = []string{"S", "M", "L", "XL"}

// HasTag reports whether the product carries the given tag id.
func (p Product) HasTag(id int) bool {
	return slices.Contains(p.CategoryIDs, id)
}

// FirstImage returns the first image or the shared placeholder.
func (p Product) FirstImage() string {
	if len(p.Images) > 0 && p.Images[0] != "" {
		return p.Images[0]
	}
	return DefaultImage
}

// Clone returns a copy that shares no slices with p.
func (p Product) Clone() Product {
	out := p
	out.Images = slices.Clone(p.Images)
	out.Sizes = slices.Clone(p.Sizes)
	out.CategoryIDs = slices.Clone(p.CategoryIDs)
	return out
}

// StripAdminFlags clears the overlay-only markers before catalog use.
func (p Product) StripAdminFlags() Product {
	p.Deleted = false
	p.Modified = false
	return p
}
