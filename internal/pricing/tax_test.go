package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTaxFromInclusivePrice(t *testing.T) {
	t.Run("zero rate gives zero tax", func(t *testing.T) {
		for _, p := range []string{"0", "1", "99.99", "12500"} {
			assert.True(t, TaxFromInclusivePrice(d(p), decimal.Zero).IsZero(), p)
		}
	})

	t.Run("negative rate gives zero tax", func(t *testing.T) {
		assert.True(t, TaxFromInclusivePrice(d("100"), d("-0.1")).IsZero())
	})

	t.Run("25 percent vat", func(t *testing.T) {
		assert.True(t, TaxFromInclusivePrice(d("125"), d("0.25")).Equal(d("25")))
	})

	t.Run("12 percent vat", func(t *testing.T) {
		got := TaxFromInclusivePrice(d("112"), d("0.12"))
		assert.True(t, got.Sub(d("12")).Abs().LessThan(d("0.000001")), got.String())
	})
}

func TestPriceExcludingTax(t *testing.T) {
	assert.True(t, PriceExcludingTax(d("125"), d("0.25")).Equal(d("100")))
	assert.True(t, PriceExcludingTax(d("49.90"), decimal.Zero).Equal(d("49.90")))
}

func TestTaxDecompositionSumsToInclusivePrice(t *testing.T) {
	tolerance := d("0.000000001")
	prices := []string{"0", "0.01", "1", "19.99", "49", "129.50", "999.95", "100000"}
	rates := []string{"0", "0.06", "0.12", "0.15", "0.25", "0.255"}

	for _, p := range prices {
		for _, r := range rates {
			sum := PriceExcludingTax(d(p), d(r)).Add(TaxFromInclusivePrice(d(p), d(r)))
			assert.True(t, sum.Sub(d(p)).Abs().LessThan(tolerance), "price=%s rate=%s sum=%s", p, r, sum)
		}
	}
}

func TestDefaultTaxRate(t *testing.T) {
	assert.True(t, DefaultTaxRate().Equal(d("0.25")))
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(4990), ToMinorUnits(d("49.90")))
	assert.Equal(t, int64(1), ToMinorUnits(d("0.005")))
	assert.Equal(t, int64(0), ToMinorUnits(decimal.Zero))
}

func TestBreakdown(t *testing.T) {
	totals := Breakdown(d("350"), d("29"), d("0.25"))

	assert.True(t, totals.Total.Equal(d("379")))
	assert.True(t, totals.Tax.Equal(d("75.8")))
	assert.True(t, totals.TotalExclTax.Equal(d("303.2")))
	assert.True(t, totals.Tax.Add(totals.TotalExclTax).Equal(totals.Total))
}
