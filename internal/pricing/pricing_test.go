package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestSubtotal(t *testing.T) {
	lines := []Line{
		{Quantity: 2, UnitPrice: d(100)},
		{Quantity: 3, UnitPrice: d(50)},
	}
	assert.True(t, Subtotal(lines).Equal(d(350)))
}

func TestSubtotalEmpty(t *testing.T) {
	assert.True(t, Subtotal(nil).Equal(decimal.Zero))
}

func TestShippingFor(t *testing.T) {
	tests := []struct {
		name     string
		subtotal decimal.Decimal
		want     decimal.Decimal
	}{
		{"empty cart", d(0), d(0)},
		{"just above zero", decimal.NewFromFloat(0.01), d(49)},
		{"below threshold", d(300), d(49)},
		{"just below threshold", d(598), d(49)},
		{"at threshold", d(599), d(0)},
		{"above threshold", d(700), d(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, ShippingFor(tt.subtotal).Equal(tt.want),
				"subtotal %s: got %s, want %s", tt.subtotal, ShippingFor(tt.subtotal), tt.want)
		})
	}
}

func TestComputeBelowThreshold(t *testing.T) {
	totals := Compute([]Line{{Quantity: 1, UnitPrice: d(300)}}, d(0), d(0))

	assert.True(t, totals.Subtotal.Equal(d(300)))
	assert.True(t, totals.ShippingCost.Equal(d(49)))
	assert.True(t, totals.GrandTotal.Equal(d(349)))
}

func TestComputeFreeShipping(t *testing.T) {
	totals := Compute([]Line{{Quantity: 1, UnitPrice: d(700)}}, d(0), d(0))

	assert.True(t, totals.Subtotal.Equal(d(700)))
	assert.True(t, totals.ShippingCost.Equal(d(0)))
	assert.True(t, totals.GrandTotal.Equal(d(700)))
}

func TestComputeEmptyCart(t *testing.T) {
	totals := Compute(nil, d(0), d(0))

	assert.True(t, totals.Subtotal.Equal(d(0)))
	assert.True(t, totals.ShippingCost.Equal(d(0)))
	assert.True(t, totals.GrandTotal.Equal(d(0)))
}

func TestComputeTaxAndDiscount(t *testing.T) {
	totals := Compute([]Line{{Quantity: 2, UnitPrice: d(400)}}, d(40), d(100))

	// 800 + 0 shipping + 40 tax - 100 discount
	assert.True(t, totals.Subtotal.Equal(d(800)))
	assert.True(t, totals.ShippingCost.Equal(d(0)))
	assert.True(t, totals.GrandTotal.Equal(d(740)))
}

func TestComputeClampsExcessiveDiscount(t *testing.T) {
	// 300 + 49 shipping; a discount above that is clamped, never a
	// negative grand total.
	totals := Compute([]Line{{Quantity: 1, UnitPrice: d(300)}}, d(0), d(1000000))

	assert.True(t, totals.Discount.Equal(d(349)))
	assert.True(t, totals.GrandTotal.Equal(d(0)))

	// A discount exactly at the pre-discount total zeroes it out.
	exact := Compute([]Line{{Quantity: 1, UnitPrice: d(300)}}, d(0), d(349))
	assert.True(t, exact.GrandTotal.Equal(d(0)))

	// Discounts within bounds are untouched.
	partial := Compute([]Line{{Quantity: 1, UnitPrice: d(300)}}, d(0), d(50))
	assert.True(t, partial.Discount.Equal(d(50)))
	assert.True(t, partial.GrandTotal.Equal(d(299)))
}

func TestComputeIsDeterministic(t *testing.T) {
	lines := []Line{
		{Quantity: 3, UnitPrice: decimal.NewFromFloat(99.99)},
		{Quantity: 1, UnitPrice: decimal.NewFromFloat(0.01)},
	}

	first := Compute(lines, d(15), d(5))
	for i := 0; i < 10; i++ {
		again := Compute(lines, d(15), d(5))
		assert.True(t, first.GrandTotal.Equal(again.GrandTotal))
		assert.True(t, first.ShippingCost.Equal(again.ShippingCost))
	}
}
