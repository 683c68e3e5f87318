package domain

import "time"

type ReviewUser struct {
	ID    int    `json:"id,omitempty"`
	Name  string `json:"nombre,omitempty"`
	Email string `json:"email,omitempty"`
}

type ReviewProduct struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"nombre,omitempty"`
}

type Review struct {
	ID        int            `json:"id,omitempty"`
	ProductID int            `json:"idProducto,omitempty"`
	UserID    int            `json:"idUsuario,omitempty"`
	Rating    int            `json:"puntuacion"`
	Comment   string         `json:"comentario"`
	User      *ReviewUser    `json:"usuario,omitempty"`
	Product   *ReviewProduct `json:"producto,omitempty"`
	CreatedAt *time.Time     `json:"fechaCreacion,omitempty"`
}
