package domain

import "time"

type OrderStatus string

const (
	OrderPending    OrderStatus = "pendiente"
	OrderProcessing OrderStatus = "procesando"
	OrderShipped    OrderStatus = "enviado"
	OrderDelivered  OrderStatus = "entregado"
	OrderCancelled  OrderStatus = "cancelado"
)

// ParseOrderStatus maps an upstream status onto the known set. Missing or
// unknown values are treated as pending.
func ParseOrderStatus(s string) OrderStatus {
	switch OrderStatus(s) {
	case OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return OrderStatus(s)
	default:
		return OrderPending
	}
}

// OrderDetail is an order line as the upstream returns it: a product
// reference and a precomputed subtotal.
type OrderDetail struct {
	ID        int     `json:"id,omitempty"`
	ProductID int     `json:"idProducto"`
	Quantity  int     `json:"cantidad"`
	Subtotal  float64 `json:"subtotal"`
	Size      string  `json:"talla,omitempty"`
	Club      string  `json:"club,omitempty"`
	Name      string  `json:"nombre,omitempty"`
}

// OrderItem is a display-ready line produced by enrichment.
type OrderItem struct {
	ID          int     `json:"id"`
	ProductID   int     `json:"productoId"`
	Name        string  `json:"nombre"`
	Description string  `json:"descripcion,omitempty"`
	Club        string  `json:"club"`
	Type        string  `json:"tipo,omitempty"`
	Category    string  `json:"categoria,omitempty"`
	Season      string  `json:"temporada,omitempty"`
	League      string  `json:"liga,omitempty"`
	Quantity    int     `json:"cantidad"`
	Price       float64 `json:"precio"`
	Subtotal    float64 `json:"subtotal"`
	Size        string  `json:"talla"`
	Image       string  `json:"imagen"`
	Retro       bool    `json:"retro"`
	Resolved    bool    `json:"-"`
}

type Address struct {
	Street     string `json:"calle,omitempty"`
	City       string `json:"ciudad,omitempty"`
	PostalCode string `json:"codigoPostal,omitempty"`
	Country    string `json:"pais,omitempty"`
}

type Order struct {
	ID            int           `json:"id"`
	UserID        int           `json:"idUsuario"`
	Date          time.Time     `json:"fecha"`
	Status        OrderStatus   `json:"estado"`
	Total         float64       `json:"total"`
	Address       Address       `json:"direccion"`
	PaymentMethod string        `json:"metodoPago"`
	Details       []OrderDetail `json:"detalles"`
	Items         []OrderItem   `json:"items"`
}

// NewOrder is the payload submitted on checkout.
type NewOrder struct {
	UserID  int           `json:"idUsuario"`
	Total   float64       `json:"total"`
	Status  OrderStatus   `json:"estado"`
	Details []OrderDetail `json:"detalles"`
}
