package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v decimal.Decimal) *decimal.Decimal {
	return &v
}

func tiers() []ShippingThreshold {
	return []ShippingThreshold{
		{MinSubtotal: d("0"), Price: d("49")},
		{MinSubtotal: d("300"), Price: d("29")},
		{MinSubtotal: d("500"), Price: d("0")},
	}
}

func TestCalculateShippingCost(t *testing.T) {
	t.Run("free shipping threshold", func(t *testing.T) {
		region := ShippingRegion{Code: "SE", BasePrice: d("49"), FreeShippingThreshold: ptr(d("500"))}

		assert.True(t, CalculateShippingCost(region, d("600")).IsZero())
		assert.True(t, CalculateShippingCost(region, d("500")).IsZero())
		assert.True(t, CalculateShippingCost(region, d("100")).Equal(d("49")))
	})

	t.Run("tiered pricing", func(t *testing.T) {
		region := ShippingRegion{Code: "NO", BasePrice: d("99"), ShippingThresholds: tiers()}

		assert.True(t, CalculateShippingCost(region, d("350")).Equal(d("29")))
		assert.True(t, CalculateShippingCost(region, d("0")).Equal(d("49")))
		assert.True(t, CalculateShippingCost(region, d("299.99")).Equal(d("49")))
		assert.True(t, CalculateShippingCost(region, d("750")).IsZero())
	})

	t.Run("tiers out of order still pick the highest qualifying", func(t *testing.T) {
		th := tiers()
		th[0], th[2] = th[2], th[0]
		region := ShippingRegion{BasePrice: d("99"), ShippingThresholds: th}

		assert.True(t, CalculateShippingCost(region, d("350")).Equal(d("29")))
	})

	t.Run("no tier qualifies falls back to base price", func(t *testing.T) {
		region := ShippingRegion{
			BasePrice:          d("79"),
			ShippingThresholds: []ShippingThreshold{{MinSubtotal: d("200"), Price: d("39")}},
		}

		assert.True(t, CalculateShippingCost(region, d("150")).Equal(d("79")))
	})

	t.Run("free threshold wins over tiers", func(t *testing.T) {
		region := ShippingRegion{
			BasePrice:             d("79"),
			FreeShippingThreshold: ptr(d("400")),
			ShippingThresholds:    []ShippingThreshold{{MinSubtotal: d("0"), Price: d("59")}},
		}

		assert.True(t, CalculateShippingCost(region, d("400")).IsZero())
		assert.True(t, CalculateShippingCost(region, d("10")).Equal(d("59")))
	})

	t.Run("base price only", func(t *testing.T) {
		region := ShippingRegion{BasePrice: d("49")}
		assert.True(t, CalculateShippingCost(region, d("10000")).Equal(d("49")))
	})
}

func TestRemainingForFreeShipping(t *testing.T) {
	region := ShippingRegion{BasePrice: d("49"), FreeShippingThreshold: ptr(d("500"))}

	remaining, ok := RemainingForFreeShipping(region, d("420"))
	require.True(t, ok)
	assert.True(t, remaining.Equal(d("80")))

	remaining, ok = RemainingForFreeShipping(region, d("800"))
	require.True(t, ok)
	assert.True(t, remaining.IsZero())

	_, ok = RemainingForFreeShipping(ShippingRegion{BasePrice: d("49")}, d("10"))
	assert.False(t, ok)
}

func TestSortThresholds(t *testing.T) {
	th := []ShippingThreshold{
		{MinSubtotal: d("500"), Price: d("0")},
		{MinSubtotal: d("0"), Price: d("49")},
		{MinSubtotal: d("300"), Price: d("29")},
	}
	SortThresholds(th)

	assert.True(t, th[0].MinSubtotal.Equal(d("0")))
	assert.True(t, th[1].MinSubtotal.Equal(d("300")))
	assert.True(t, th[2].MinSubtotal.Equal(d("500")))
}

func TestResolveRegion(t *testing.T) {
	regions := []ShippingRegion{
		{Code: "EU", Countries: []string{"DE", "FR", "FI"}, BasePrice: d("129"), Active: true},
		{Code: "SE", BasePrice: d("49"), Active: true},
		{Code: "NO", BasePrice: d("99"), Active: false},
		{Code: "NORDIC", Countries: []string{"NO", "DK"}, BasePrice: d("89"), Active: true},
	}

	r, ok := ResolveRegion(regions, "se")
	require.True(t, ok)
	assert.Equal(t, "SE", r.Code)

	r, ok = ResolveRegion(regions, "FI")
	require.True(t, ok)
	assert.Equal(t, "EU", r.Code)

	r, ok = ResolveRegion(regions, "NO")
	require.True(t, ok)
	assert.Equal(t, "NORDIC", r.Code)

	_, ok = ResolveRegion(regions, "US")
	assert.False(t, ok)

	_, ok = ResolveRegion(regions, " ")
	assert.False(t, ok)
}
