package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"camisfut-storefront/internal/domain"
)

// wireProduct is a product record as sent upstream. Go's JSON decoder
// matches keys case-insensitively, so `nombre` also accepts `Nombre`.
type wireProduct struct {
	ID                 flexInt   `json:"id"`
	Nombre             string    `json:"nombre"`
	Descripcion        string    `json:"descripcion"`
	Precio             flexFloat `json:"precio"`
	Club               string    `json:"club"`
	Equipo             string    `json:"equipo"`
	Tipo               string    `json:"tipo"`
	Categoria          string    `json:"categoria"`
	Liga               string    `json:"liga"`
	Retro              bool      `json:"retro"`
	Destacado          bool      `json:"destacado"`
	Stock              flexInt   `json:"stock"`
	Imagenes           []string  `json:"imagenes"`
	Imagen             string    `json:"imagen"`
	ImagenURL          string    `json:"imagen_url"`
	TallasDisponibles  []string  `json:"tallasDisponibles"`
	Tallas             []string  `json:"tallas"`
	FechaCreacion      FlexTime  `json:"fechaCreacion"`
	FechaActualizacion FlexTime  `json:"fechaActualizacion"`
	CategoriasIDs      []flexInt `json:"categoriasIds"`
}

func (w wireProduct) toDomain() domain.Product {
	tags := make([]int, 0, len(w.CategoriasIDs))
	for _, id := range w.CategoriasIDs {
		tags = append(tags, int(id))
	}

	p := domain.Product{
		ID:          int(w.ID),
		Name:        w.Nombre,
		Description: w.Descripcion,
		Price:       float64(w.Precio),
		Club:        w.Club,
		Team:        w.Equipo,
		Type:        w.Tipo,
		Category:    w.Categoria,
		League:      w.Liga,
		Retro:       w.Retro,
		Featured:    w.Destacado,
		Stock:       int(w.Stock),
		CreatedAt:   w.FechaCreacion.Ptr(),
		UpdatedAt:   w.FechaActualizacion.Ptr(),
		CategoryIDs: tags,
	}
	if p.Description == "" {
		p.Description = "Camiseta oficial " + p.Name
	}
	if p.Club == "" {
		p.Club = w.Equipo
	}
	if p.Type == "" {
		p.Type = domain.TypeFromTags(tags)
	}
	if p.Category == "" {
		p.Category = domain.CategoryFromTags(tags)
	}
	if p.League == "" {
		p.League = domain.LeagueFromTags(tags)
	}
	if !p.Retro && domain.TypeFromTags(tags) == domain.TypeVintage {
		p.Retro = true
	}
	if !p.Featured && p.HasTag(domain.TagChampions) {
		p.Featured = true
	}

	switch {
	case w.Imagenes != nil:
		p.Images = w.Imagenes
	case w.Imagen != "":
		p.Images = []string{w.Imagen}
	case w.ImagenURL != "":
		p.Images = []string{w.ImagenURL}
	default:
		p.Images = []string{}
	}

	switch {
	case len(w.TallasDisponibles) > 0:
		p.Sizes = w.TallasDisponibles
	case len(w.Tallas) > 0:
		p.Sizes = w.Tallas
	default:
		p.Sizes = append([]string(nil), domain.DefaultSizes...)
	}
	return p
}

// decodeProductList accepts a bare array or a {productos: [...]} envelope.
func decodeProductList(raw json.RawMessage) ([]domain.Product, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, ErrUnexpectedShape
	}
	var items []wireProduct
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
	case '{':
		var env struct {
			Productos *[]wireProduct `json:"productos"`
		}
		if err := json.Unmarshal(raw, &env); err != nil || env.Productos == nil {
			return nil, ErrUnexpectedShape
		}
		items = *env.Productos
	default:
		return nil, ErrUnexpectedShape
	}
	out := make([]domain.Product, 0, len(items))
	for _, it := range items {
		out = append(out, it.toDomain())
	}
	return out, nil
}

func (c *Client) listProducts(ctx context.Context, path string) ([]domain.Product, error) {
	var raw json.RawMessage
	if err := c.get(ctx, path, &raw); err != nil {
		return nil, err
	}
	products, err := decodeProductList(raw)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	return products, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return c.listProducts(ctx, "/productos/all")
}

func (c *Client) ProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return c.listProducts(ctx, "/productos/all/categoria/"+url.PathEscape(category))
}

func (c *Client) FeaturedProducts(ctx context.Context) ([]domain.Product, error) {
	return c.listProducts(ctx, "/productos/all/destacados")
}

func (c *Client) SearchProducts(ctx context.Context, term string) ([]domain.Product, error) {
	return c.listProducts(ctx, "/productos/all/buscar?q="+url.QueryEscape(term))
}

func (c *Client) GetProduct(ctx context.Context, id int) (domain.Product, error) {
	var w wireProduct
	if err := c.get(ctx, "/productos/"+strconv.Itoa(id), &w); err != nil {
		return domain.Product{}, err
	}
	p := w.toDomain()
	if p.ID == 0 {
		p.ID = id
	}
	return p, nil
}
