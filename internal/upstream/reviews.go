package upstream

import (
	"context"
	"net/http"
	"strconv"

	"camisfut-storefront/internal/domain"
)

type wireReview struct {
	ID            flexInt      `json:"id"`
	IDProducto    flexInt      `json:"idProducto"`
	IDUsuario     flexInt      `json:"idUsuario"`
	Puntuacion    flexInt      `json:"puntuacion"`
	Comentario    string       `json:"comentario"`
	Usuario       *wireUser    `json:"usuario"`
	Producto      *wireProduct `json:"producto"`
	FechaCreacion FlexTime     `json:"fechaCreacion"`
}

func (w wireReview) toDomain() domain.Review {
	r := domain.Review{
		ID:        int(w.ID),
		ProductID: int(w.IDProducto),
		UserID:    int(w.IDUsuario),
		Rating:    int(w.Puntuacion),
		Comment:   w.Comentario,
		CreatedAt: w.FechaCreacion.Ptr(),
	}
	if w.Usuario != nil {
		id, _ := strconv.Atoi(string(w.Usuario.ID))
		r.User = &domain.ReviewUser{ID: id, Name: w.Usuario.Nombre, Email: w.Usuario.Email}
		if r.UserID == 0 {
			r.UserID = id
		}
	}
	if w.Producto != nil {
		r.Product = &domain.ReviewProduct{ID: int(w.Producto.ID), Name: w.Producto.Nombre}
		if r.ProductID == 0 {
			r.ProductID = int(w.Producto.ID)
		}
	}
	return r
}

// ReviewInput is the payload for creating or updating a review.
type ReviewInput struct {
	ProductID int    `json:"idProducto,omitempty"`
	UserID    int    `json:"idUsuario,omitempty"`
	Rating    int    `json:"puntuacion,omitempty"`
	Comment   string `json:"comentario,omitempty"`
}

func (c *Client) ListReviews(ctx context.Context) ([]domain.Review, error) {
	var raw []wireReview
	if err := c.get(ctx, "/valoraciones", &raw); err != nil {
		return nil, err
	}
	out := make([]domain.Review, 0, len(raw))
	for _, w := range raw {
		out = append(out, w.toDomain())
	}
	return out, nil
}

func (c *Client) CreateReview(ctx context.Context, in ReviewInput) (domain.Review, error) {
	var w wireReview
	if err := c.do(ctx, http.MethodPost, "/valoraciones", in, &w); err != nil {
		return domain.Review{}, err
	}
	return w.orInput(in), nil
}

func (c *Client) UpdateReview(ctx context.Context, id int, in ReviewInput) (domain.Review, error) {
	var w wireReview
	if err := c.do(ctx, http.MethodPut, "/valoraciones/"+strconv.Itoa(id), in, &w); err != nil {
		return domain.Review{}, err
	}
	r := w.orInput(in)
	if r.ID == 0 {
		r.ID = id
	}
	return r, nil
}

func (c *Client) DeleteReview(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/valoraciones/"+strconv.Itoa(id), nil, nil)
}

// orInput fills fields the upstream left out of its echo.
func (w wireReview) orInput(in ReviewInput) domain.Review {
	r := w.toDomain()
	if r.ProductID == 0 {
		r.ProductID = in.ProductID
	}
	if r.UserID == 0 {
		r.UserID = in.UserID
	}
	if r.Rating == 0 {
		r.Rating = in.Rating
	}
	if r.Comment == "" {
		r.Comment = in.Comment
	}
	return r
}
