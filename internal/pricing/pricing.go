// Package pricing computes cart and order totals. Both the cart summary
// and order creation go through this package so the displayed and charged
// amounts always agree.
package pricing

import "github.com/shopspring/decimal"

var (
	// ShippingCost is charged on every non-empty cart below the free
	// shipping threshold.
	ShippingCost = decimal.NewFromInt(49)

	// FreeShippingThreshold is the subtotal at or above which shipping
	// is free.
	FreeShippingThreshold = decimal.NewFromInt(599)
)

// Line is a (quantity, unit price) pair.
type Line struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

type Totals struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	Discount     decimal.Decimal `json:"discount"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
}

func Subtotal(lines []Line) decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return subtotal
}

// ShippingFor returns 49 when 0 < subtotal < 599 and 0 otherwise.
// An empty cart is never charged shipping.
func ShippingFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.IsPositive() && subtotal.LessThan(FreeShippingThreshold) {
		return ShippingCost
	}
	return decimal.Zero
}

// Compute returns the full totals breakdown:
// grand total = subtotal + shipping + tax - discount.
// The discount is clamped to the pre-discount total, so the grand total
// never goes negative and the recorded discount always equals what was
// actually taken off.
func Compute(lines []Line, tax, discount decimal.Decimal) Totals {
	subtotal := Subtotal(lines)
	shipping := ShippingFor(subtotal)

	preDiscount := subtotal.Add(shipping).Add(tax)
	if discount.GreaterThan(preDiscount) {
		discount = preDiscount
	}

	return Totals{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		TaxAmount:    tax,
		Discount:     discount,
		GrandTotal:   preDiscount.Sub(discount),
	}
}
