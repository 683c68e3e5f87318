package cart

import (
	"fmt"

	"camisfut-storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// Pricing holds the checkout rates. Amounts are exact decimals so that
// 21% of 49.99 is 10.4979 and not a float approximation.
type Pricing struct {
	TaxRate               decimal.Decimal
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

func DefaultPricing() Pricing {
	return Pricing{
		TaxRate:               decimal.RequireFromString("0.21"),
		ShippingFee:           decimal.RequireFromString("5.99"),
		FreeShippingThreshold: decimal.NewFromInt(50),
	}
}

// ParsePricing reads the three rates from their string form.
func ParsePricing(taxRate, shippingFee, threshold string) (Pricing, error) {
	var (
		p   Pricing
		err error
	)
	if p.TaxRate, err = decimal.NewFromString(taxRate); err != nil {
		return Pricing{}, fmt.Errorf("tax rate %q: %w", taxRate, err)
	}
	if p.ShippingFee, err = decimal.NewFromString(shippingFee); err != nil {
		return Pricing{}, fmt.Errorf("shipping fee %q: %w", shippingFee, err)
	}
	if p.FreeShippingThreshold, err = decimal.NewFromString(threshold); err != nil {
		return Pricing{}, fmt.Errorf("free shipping threshold %q: %w", threshold, err)
	}
	return p, nil
}

type Totals struct {
	ItemCount int             `json:"cantidadTotal"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"impuestos"`
	Shipping  decimal.Decimal `json:"envio"`
	Total     decimal.Decimal `json:"total"`
}

// Compute derives cart aggregates. Shipping is charged below the free
// threshold; an empty cart has no shipping.
func (p Pricing) Compute(items []domain.CartItem) Totals {
	var t Totals
	t.Subtotal = decimal.Zero
	for _, it := range items {
		t.ItemCount += it.Quantity
		t.Subtotal = t.Subtotal.Add(LineTotal(it))
	}
	t.Tax = t.Subtotal.Mul(p.TaxRate)
	t.Shipping = decimal.Zero
	if t.ItemCount > 0 && t.Subtotal.LessThan(p.FreeShippingThreshold) {
		t.Shipping = p.ShippingFee
	}
	t.Total = t.Subtotal.Add(t.Tax).Add(t.Shipping)
	return t
}

// LineTotal is price times quantity for one line.
func LineTotal(it domain.CartItem) decimal.Decimal {
	return decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
}
