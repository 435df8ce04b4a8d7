package pricing

import "github.com/shopspring/decimal"

// defaultTaxRate est appliqué quand aucun paramètre boutique n'existe (TVA 25 %).
var defaultTaxRate = decimal.RequireFromString("0.25")

// DefaultTaxRate retourne le taux de TVA de repli.
func DefaultTaxRate() decimal.Decimal {
	return defaultTaxRate
}

// TaxFromInclusivePrice extrait le montant de TVA contenu dans un prix TTC.
func TaxFromInclusivePrice(priceInclusive, taxRate decimal.Decimal) decimal.Decimal {
	if taxRate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return priceInclusive.Mul(taxRate.Div(decimal.NewFromInt(1).Add(taxRate)))
}

// PriceExcludingTax retourne le prix HT correspondant à un prix TTC.
func PriceExcludingTax(priceInclusive, taxRate decimal.Decimal) decimal.Decimal {
	if taxRate.LessThanOrEqual(decimal.Zero) {
		return priceInclusive
	}
	return priceInclusive.Div(decimal.NewFromInt(1).Add(taxRate))
}

// RoundMoney arrondit un montant à deux décimales.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ToMinorUnits convertit un montant en centimes (öre, cents...) pour les prestataires de paiement.
func ToMinorUnits(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// Totals est la décomposition d'un montant de commande TTC.
type Totals struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	Shipping     decimal.Decimal `json:"shipping"`
	Total        decimal.Decimal `json:"total"`
	Tax          decimal.Decimal `json:"tax"`
	TotalExclTax decimal.Decimal `json:"total_excl_tax"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
}

// Breakdown calcule les totaux d'une commande. Les frais de port sont TTC
// et soumis au même taux que les articles.
func Breakdown(subtotal, shipping, taxRate decimal.Decimal) Totals {
	total := subtotal.Add(shipping)
	return Totals{
		Subtotal:     RoundMoney(subtotal),
		Shipping:     RoundMoney(shipping),
		Total:        RoundMoney(total),
		Tax:          RoundMoney(TaxFromInclusivePrice(total, taxRate)),
		TotalExclTax: RoundMoney(PriceExcludingTax(total, taxRate)),
		TaxRate:      taxRate,
	}
}
