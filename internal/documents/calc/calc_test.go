package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name     string
		qty      float64
		price    float64
		discount float64
		want     float64
	}{
		{"no discount", 3, 100, 0, 300},
		{"ten percent off", 3, 100, 10, 270},
		{"full discount", 7, 42.5, 100, 0},
		{"zero quantity", 0, 99.99, 5, 0},
		{"zero price", 12, 0, 5, 0},
		{"rounds to cents", 1, 10.006, 0, 10.01},
		{"fractional quantity", 2.5, 19.98, 0, 49.95},
		{"negative quantity clamped", -3, 100, 0, 0},
		{"negative price clamped", 3, -100, 0, 0},
		{"discount above hundred clamped", 3, 100, 250, 0},
		{"negative discount clamped", 3, 100, -10, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, LineTotal(tt.qty, tt.price, tt.discount), 1e-9)
		})
	}
}

func TestParseAmount(t *testing.T) {
	assert.Equal(t, 12.5, ParseAmount("12.5"))
	assert.Equal(t, 12.5, ParseAmount("  12.5  "))
	assert.Equal(t, 0.0, ParseAmount(""))
	assert.Equal(t, 0.0, ParseAmount("abc"))
	assert.Equal(t, 0.0, ParseAmount("-4"))
	assert.Equal(t, 0.0, ParseAmount("NaN"))
	assert.Equal(t, 0.0, ParseAmount("+Inf"))
}

func TestApplyItem(t *testing.T) {
	item := Item{
		ID:                7,
		Unit:              "pcs",
		SalesUnitPrice:    99.99,
		PurchaseUnitPrice: 60,
		Description:       "Widget, blue",
	}

	t.Run("sales price with quantity already set", func(t *testing.T) {
		line := Line{Quantity: 5}
		got := ApplyItem(line, item, SalesPrice, ApplyOptions{})
		assert.Equal(t, int64(7), got.ItemID)
		assert.Equal(t, "pcs", got.Unit)
		assert.Equal(t, 99.99, got.UnitPrice)
		assert.Equal(t, "Widget, blue", got.Description)
		assert.InDelta(t, 499.95, got.Total, 1e-9)
	})

	t.Run("purchase price", func(t *testing.T) {
		got := ApplyItem(Line{Quantity: 2}, item, PurchasePrice, ApplyOptions{})
		assert.Equal(t, 60.0, got.UnitPrice)
		assert.InDelta(t, 120, got.Total, 1e-9)
	})

	t.Run("keeps user description by default", func(t *testing.T) {
		got := ApplyItem(Line{Description: "custom engraving"}, item, SalesPrice, ApplyOptions{})
		assert.Equal(t, "custom engraving", got.Description)
	})

	t.Run("overwrite flag replaces description", func(t *testing.T) {
		got := ApplyItem(Line{Description: "custom engraving"}, item, SalesPrice, ApplyOptions{OverwriteDescription: true})
		assert.Equal(t, "Widget, blue", got.Description)
	})

	t.Run("keeps existing discount", func(t *testing.T) {
		got := ApplyItem(Line{Quantity: 10, DiscountPercent: 50}, item, PurchasePrice, ApplyOptions{})
		assert.InDelta(t, 300, got.Total, 1e-9)
	})
}

func TestCompute(t *testing.T) {
	lines := []Line{
		{Quantity: 3, UnitPrice: 100, DiscountPercent: 10},
		{Quantity: 1, UnitPrice: 250},
	}

	t.Run("invoice with tax and shipping", func(t *testing.T) {
		got := Compute(lines, 20, 30, true)
		assert.InDelta(t, 520, got.Subtotal, 1e-9)
		assert.InDelta(t, 570, got.GrandTotal, 1e-9)
		assert.InDelta(t, 570, got.Balance, 1e-9)
	})

	t.Run("adjustments ignored for other kinds", func(t *testing.T) {
		got := Compute(lines, 20, 30, false)
		assert.InDelta(t, 520, got.Subtotal, 1e-9)
		assert.InDelta(t, 520, got.GrandTotal, 1e-9)
		assert.Zero(t, got.TaxAmount)
		assert.Zero(t, got.ShippingCharges)
	})

	t.Run("empty collection", func(t *testing.T) {
		got := Compute(nil, 0, 0, true)
		assert.Zero(t, got.Subtotal)
		assert.Zero(t, got.GrandTotal)
		assert.Zero(t, got.Balance)
	})

	t.Run("idempotent over unchanged lines", func(t *testing.T) {
		first := Compute(lines, 20, 30, true)
		second := Compute(lines, 20, 30, true)
		require.Equal(t, first, second)
	})

	t.Run("always recomputed from full collection", func(t *testing.T) {
		// Stale Total values on lines must not leak into the subtotal.
		stale := []Line{{Quantity: 2, UnitPrice: 10, Total: 9999}}
		got := Compute(stale, 0, 0, false)
		assert.InDelta(t, 20, got.Subtotal, 1e-9)
	})

	t.Run("grand total invariant holds for invoices", func(t *testing.T) {
		got := Compute(lines, 12.34, 5.66, true)
		assert.InDelta(t, got.Subtotal+got.TaxAmount+got.ShippingCharges, got.GrandTotal, 1e-9)
	})
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 2.35, Round2(2.346))
	assert.Equal(t, -2.35, Round2(-2.346))
	assert.Equal(t, 100.0, Round2(99.999))
	assert.Equal(t, 0.5, Round2(0.5))
}
