package pricing_test

import (
	"testing"

	"marmomart/internal/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLineTotal_AreaPriced(t *testing.T) {
	p := pricing.AreaPriced{PerArea: decimal.NewFromInt(450)}

	total, priced := pricing.LineTotal(p, pricing.Request{Area: decimal.NewFromInt(50)})
	assert.True(t, priced)
	assert.True(t, total.Equal(decimal.NewFromInt(22500)), "got %s", total)

	// Quantity is ignored for area-priced variants.
	total, _ = pricing.LineTotal(p, pricing.Request{Area: decimal.RequireFromString("12.5"), Quantity: 99})
	assert.Equal(t, "5625", total.String())
}

func TestLineTotal_UnitPriced(t *testing.T) {
	p := pricing.UnitPriced{PerUnit: decimal.NewFromInt(42)}

	total, priced := pricing.LineTotal(p, pricing.Request{Quantity: 10})
	assert.True(t, priced)
	assert.True(t, total.Equal(decimal.NewFromInt(420)), "got %s", total)
}

func TestLineTotal_PriceOnRequest(t *testing.T) {
	total, priced := pricing.LineTotal(pricing.PriceOnRequest{}, pricing.Request{Quantity: 3})
	assert.False(t, priced)
	assert.True(t, total.IsZero())
}

func TestFromColumns(t *testing.T) {
	sqft := decimal.NewNullDecimal(decimal.NewFromInt(450))
	piece := decimal.NewNullDecimal(decimal.NewFromInt(42))
	none := decimal.NullDecimal{}

	assert.Equal(t, pricing.AreaPriced{PerArea: decimal.NewFromInt(450)}, pricing.FromColumns(sqft, none))
	assert.Equal(t, pricing.UnitPriced{PerUnit: decimal.NewFromInt(42)}, pricing.FromColumns(none, piece))
	assert.Equal(t, pricing.PriceOnRequest{}, pricing.FromColumns(none, none))
	assert.Equal(t, pricing.ModeArea, pricing.FromColumns(sqft, piece).Mode())
}

func TestOrderTotal(t *testing.T) {
	assert.True(t, pricing.OrderTotal(nil).IsZero())

	lines := []pricing.Line{
		{Pricing: pricing.AreaPriced{PerArea: decimal.NewFromInt(450)}, Request: pricing.Request{Area: decimal.NewFromInt(50)}},
		{Pricing: pricing.UnitPriced{PerUnit: decimal.NewFromInt(42)}, Request: pricing.Request{Quantity: 10}},
		{Pricing: pricing.PriceOnRequest{}, Request: pricing.Request{Quantity: 1}},
	}
	reversed := []pricing.Line{lines[2], lines[1], lines[0]}

	assert.Equal(t, "22920", pricing.OrderTotal(lines).String())
	assert.True(t, pricing.OrderTotal(lines).Equal(pricing.OrderTotal(reversed)))
}

func TestTotalArea(t *testing.T) {
	lines := []pricing.Line{
		{Pricing: pricing.AreaPriced{PerArea: decimal.NewFromInt(450)}, Request: pricing.Request{Area: decimal.NewFromInt(50)}},
		{Pricing: pricing.AreaPriced{PerArea: decimal.NewFromInt(300)}, Request: pricing.Request{Area: decimal.RequireFromString("20.5")}},
		{Pricing: pricing.UnitPriced{PerUnit: decimal.NewFromInt(42)}, Request: pricing.Request{Quantity: 10, Area: decimal.NewFromInt(7)}},
	}
	assert.Equal(t, "70.5", pricing.TotalArea(lines).String())
}
