package domain

import "time"

// CartItem is one cart line. ID is cart-scoped and unrelated to ProductID;
// (ProductID, Size) is unique within a cart.
type CartItem struct {
	ID        int       `json:"id"`
	ProductID int       `json:"productoId"`
	Name      string    `json:"nombre"`
	Club      string    `json:"club"`
	Price     float64   `json:"precio"`
	Size      string    `json:"talla"`
	Image     string    `json:"imagen"`
	Quantity  int       `json:"cantidad"`
	AddedAt   time.Time `json:"fechaAgregado"`
}

// Cart is the persisted state of one cart key.
type Cart struct {
	Key       string     `json:"key"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
