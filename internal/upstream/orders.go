package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"camisfut-storefront/internal/domain"
)

// productIDKeys lists the spellings the upstream has used for an order
// line's product reference, in priority order.
var productIDKeys = []string{
	"idProducto",
	"productoId",
	"id_producto",
	"producto_id",
	"productId",
	"product_id",
	"idProduct",
	"producto",
}

// wireDetail decodes one order line into the single schema used by the
// rest of the service.
type wireDetail struct {
	domain.OrderDetail
}

func (d *wireDetail) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	var out domain.OrderDetail
	for _, key := range productIDKeys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if id := productRef(raw); id > 0 {
			out.ProductID = id
			break
		}
	}
	out.ID = intField(fields, "id")
	out.Quantity = intField(fields, "cantidad")
	out.Subtotal = floatField(fields, "subtotal")
	out.Size = stringField(fields, "talla")
	out.Club = stringField(fields, "club")
	out.Name = stringField(fields, "nombre")
	d.OrderDetail = out
	return nil
}

// productRef reads a product id given as a number, a numeric string or a
// nested {id} object.
func productRef(raw json.RawMessage) int {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "{") {
		var nested struct {
			ID flexInt `json:"id"`
		}
		if err := json.Unmarshal(raw, &nested); err != nil {
			return 0
		}
		return int(nested.ID)
	}
	var n flexInt
	_ = n.UnmarshalJSON(raw)
	return int(n)
}

func intField(fields map[string]json.RawMessage, key string) int {
	var n flexInt
	if raw, ok := fields[key]; ok {
		_ = n.UnmarshalJSON(raw)
	}
	return int(n)
}

func floatField(fields map[string]json.RawMessage, key string) float64 {
	var f flexFloat
	if raw, ok := fields[key]; ok {
		_ = f.UnmarshalJSON(raw)
	}
	return float64(f)
}

func stringField(fields map[string]json.RawMessage, key string) string {
	var s flexString
	if raw, ok := fields[key]; ok {
		_ = s.UnmarshalJSON(raw)
	}
	return string(s)
}

type wireAddress struct {
	Calle        string `json:"calle"`
	Ciudad       string `json:"ciudad"`
	CodigoPostal string `json:"codigoPostal"`
	Pais         string `json:"pais"`
}

type wireOrder struct {
	ID         flexInt      `json:"id"`
	IDUsuario  flexInt      `json:"idUsuario"`
	Fecha      FlexTime     `json:"fecha"`
	Estado     string       `json:"estado"`
	Total      flexFloat    `json:"total"`
	Direccion  *wireAddress `json:"direccion"`
	MetodoPago string       `json:"metodoPago"`
	Detalles   []wireDetail `json:"detalles"`
}

func (w wireOrder) toDomain() domain.Order {
	o := domain.Order{
		ID:            int(w.ID),
		UserID:        int(w.IDUsuario),
		Date:          w.Fecha.OrNow(),
		Status:        domain.ParseOrderStatus(w.Estado),
		Total:         float64(w.Total),
		PaymentMethod: w.MetodoPago,
		Details:       make([]domain.OrderDetail, 0, len(w.Detalles)),
		Items:         []domain.OrderItem{},
	}
	if o.PaymentMethod == "" {
		o.PaymentMethod = "No especificado"
	}
	if w.Direccion != nil {
		o.Address = domain.Address{
			Street:     w.Direccion.Calle,
			City:       w.Direccion.Ciudad,
			PostalCode: w.Direccion.CodigoPostal,
			Country:    w.Direccion.Pais,
		}
	}
	if o.Address.City == "" {
		o.Address.City = "No especificada"
	}
	for _, d := range w.Detalles {
		o.Details = append(o.Details, d.OrderDetail)
	}
	return o
}

// ListOrders returns every order visible to the bearer token in ctx.
func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var raw []wireOrder
	if err := c.get(ctx, "/pedidos", &raw); err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(raw))
	for _, w := range raw {
		out = append(out, w.toDomain())
	}
	return out, nil
}

// CreateOrder submits a new order. The upstream echoes the stored order,
// which is returned when present.
func (c *Client) CreateOrder(ctx context.Context, in domain.NewOrder) (domain.Order, error) {
	var w wireOrder
	if err := c.do(ctx, http.MethodPost, "/pedidos", in, &w); err != nil {
		return domain.Order{}, err
	}
	o := w.toDomain()
	if o.UserID == 0 {
		o.UserID = in.UserID
	}
	if o.Total == 0 {
		o.Total = in.Total
	}
	if len(o.Details) == 0 {
		o.Details = in.Details
	}
	return o, nil
}
