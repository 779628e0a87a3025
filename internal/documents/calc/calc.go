// Package calc implements the line-item and document totals engine shared by
// every billing document kind. All amounts are derived on every change from
// the full line collection, never patched incrementally.
package calc

import (
	"math"
	"strconv"
	"strings"
)

// PriceSource selects which catalog price populates a line.
type PriceSource int

const (
	// SalesPrice is used by client-facing documents.
	SalesPrice PriceSource = iota
	// PurchasePrice is used by vendor-facing documents.
	PurchasePrice
)

// Line is one row of a billing document.
type Line struct {
	ItemID          int64
	Unit            string
	Quantity        float64
	UnitPrice       float64
	DiscountPercent float64
	Total           float64
	Description     string
}

// Item is the catalog view the engine needs for the lookup merge.
type Item struct {
	ID                int64
	Unit              string
	SalesUnitPrice    float64
	PurchaseUnitPrice float64
	Description       string
}

// ApplyOptions controls the catalog lookup merge behaviour.
type ApplyOptions struct {
	// OverwriteDescription replaces an existing line description with the
	// catalog description. When false the description is only set if blank.
	OverwriteDescription bool
}

// Totals aggregates document-level derived amounts.
type Totals struct {
	Subtotal        float64
	TaxAmount       float64
	ShippingCharges float64
	GrandTotal      float64
	Balance         float64
}

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ParseAmount converts user-editable text to a non-negative number.
// Empty or invalid input is 0, never an error.
func ParseAmount(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// LineTotal computes quantity * unitPrice * (1 - discountPercent/100),
// rounded to 2 decimals. Inputs are clamped so the result is never negative.
func LineTotal(quantity, unitPrice, discountPercent float64) float64 {
	quantity = clampNonNegative(quantity)
	unitPrice = clampNonNegative(unitPrice)
	discountPercent = clampPercent(discountPercent)
	return Round2(quantity * unitPrice * (1 - discountPercent/100))
}

// Recalc returns the line with its total re-derived from the current inputs.
func Recalc(l Line) Line {
	l.Total = LineTotal(l.Quantity, l.UnitPrice, l.DiscountPercent)
	return l
}

// ApplyItem merges a selected catalog item onto a line: unit and unit price
// are always copied, description per ApplyOptions. The line total is
// re-derived with the existing quantity and discount.
func ApplyItem(l Line, it Item, src PriceSource, opts ApplyOptions) Line {
	l.ItemID = it.ID
	l.Unit = it.Unit
	if src == PurchasePrice {
		l.UnitPrice = it.PurchaseUnitPrice
	} else {
		l.UnitPrice = it.SalesUnitPrice
	}
	if opts.OverwriteDescription || strings.TrimSpace(l.Description) == "" {
		l.Description = it.Description
	}
	return Recalc(l)
}

// Compute derives document totals from the full line collection. Tax and
// shipping only contribute when the document kind carries those fields;
// otherwise the grand total equals the subtotal. Balance is the initial
// outstanding amount of a newly created document.
func Compute(lines []Line, taxAmount, shippingCharges float64, withAdjustments bool) Totals {
	var sum float64
	for _, l := range lines {
		sum += LineTotal(l.Quantity, l.UnitPrice, l.DiscountPercent)
	}
	t := Totals{Subtotal: Round2(sum)}
	if withAdjustments {
		t.TaxAmount = clampNonNegative(taxAmount)
		t.ShippingCharges = clampNonNegative(shippingCharges)
		t.GrandTotal = Round2(t.Subtotal + t.TaxAmount + t.ShippingCharges)
	} else {
		t.GrandTotal = t.Subtotal
	}
	t.Balance = t.GrandTotal
	return t
}

func clampNonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
