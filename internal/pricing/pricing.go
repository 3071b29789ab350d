// Package pricing computes line and order totals for catalog variants.
package pricing

import (
	"github.com/shopspring/decimal"
)

// Mode tells callers which quantity input a variant takes.
type Mode string

const (
	ModeArea           Mode = "area"
	ModeUnit           Mode = "unit"
	ModePriceOnRequest Mode = "price_on_request"
)

// Pricing is how a variant is priced. Exactly one of AreaPriced, UnitPriced
// or PriceOnRequest.
type Pricing interface {
	Mode() Mode
	isPricing()
}

// AreaPriced variants are sold per square foot.
type AreaPriced struct {
	PerArea decimal.Decimal
}

// UnitPriced variants are sold per piece.
type UnitPriced struct {
	PerUnit decimal.Decimal
}

// PriceOnRequest variants have no list price and must be quoted by staff.
type PriceOnRequest struct{}

func (AreaPriced) Mode() Mode     { return ModeArea }
func (UnitPriced) Mode() Mode     { return ModeUnit }
func (PriceOnRequest) Mode() Mode { return ModePriceOnRequest }

func (AreaPriced) isPricing()     {}
func (UnitPriced) isPricing()     {}
func (PriceOnRequest) isPricing() {}

// FromColumns builds a Pricing from the two nullable catalog columns. Area
// pricing wins when both are set.
func FromColumns(perSqft, perPiece decimal.NullDecimal) Pricing {
	switch {
	case perSqft.Valid:
		return AreaPriced{PerArea: perSqft.Decimal}
	case perPiece.Valid:
		return UnitPriced{PerUnit: perPiece.Decimal}
	default:
		return PriceOnRequest{}
	}
}

// UnitPrice returns the list price of one sqft or one piece.
func UnitPrice(p Pricing) (decimal.Decimal, bool) {
	switch v := p.(type) {
	case AreaPriced:
		return v.PerArea, true
	case UnitPriced:
		return v.PerUnit, true
	default:
		return decimal.Zero, false
	}
}

// Request is the customer's requested amount. Area is read for area-priced
// variants and Quantity for unit-priced ones.
type Request struct {
	Area     decimal.Decimal
	Quantity int
}

// Line pairs a variant's pricing with the requested amount.
type Line struct {
	Pricing Pricing
	Request Request
}

// LineTotal returns the total for one line. priced is false when the variant
// is price on request. Inputs are not clamped; callers reject non-positive
// amounts beforehand.
func LineTotal(p Pricing, req Request) (total decimal.Decimal, priced bool) {
	switch v := p.(type) {
	case AreaPriced:
		return v.PerArea.Mul(req.Area), true
	case UnitPriced:
		return v.PerUnit.Mul(decimal.NewFromInt(int64(req.Quantity))), true
	default:
		return decimal.Zero, false
	}
}

// OrderTotal sums LineTotal over lines. Price-on-request lines add nothing.
func OrderTotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		if t, ok := LineTotal(l.Pricing, l.Request); ok {
			total = total.Add(t)
		}
	}
	return total
}

// TotalArea sums the requested area of area-priced lines.
func TotalArea(lines []Line) decimal.Decimal {
	area := decimal.Zero
	for _, l := range lines {
		if l.Pricing.Mode() == ModeArea {
			area = area.Add(l.Request.Area)
		}
	}
	return area
}
