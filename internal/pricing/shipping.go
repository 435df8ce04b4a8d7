package pricing

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ShippingThreshold est un palier de frais de port.
type ShippingThreshold struct {
	MinSubtotal decimal.Decimal `json:"min_subtotal"`
	Price       decimal.Decimal `json:"price"`
}

// ShippingRegion décrit la tarification d'un pays ou d'une zone.
type ShippingRegion struct {
	Code                  string              `json:"code"`
	Name                  string              `json:"name"`
	Countries             []string            `json:"countries,omitempty"`
	BasePrice             decimal.Decimal     `json:"base_price"`
	FreeShippingThreshold *decimal.Decimal    `json:"free_shipping_threshold"`
	ShippingThresholds    []ShippingThreshold `json:"shipping_thresholds"`
	Active                bool                `json:"active"`
}

// CalculateShippingCost calcule les frais de port d'une commande pour une région déjà résolue.
func CalculateShippingCost(region ShippingRegion, subtotal decimal.Decimal) decimal.Decimal {
	if region.FreeShippingThreshold != nil && subtotal.GreaterThanOrEqual(*region.FreeShippingThreshold) {
		return decimal.Zero
	}

	if len(region.ShippingThresholds) > 0 {
		var best *ShippingThreshold
		for i := range region.ShippingThresholds {
			t := &region.ShippingThresholds[i]
			if t.MinSubtotal.GreaterThan(subtotal) {
				continue
			}
			if best == nil || t.MinSubtotal.GreaterThanOrEqual(best.MinSubtotal) {
				best = t
			}
		}
		if best != nil {
			return best.Price
		}
	}

	return region.BasePrice
}

// RemainingForFreeShipping retourne le montant manquant pour obtenir la livraison gratuite.
// Le booléen est faux si la région n'a pas de seuil.
func RemainingForFreeShipping(region ShippingRegion, subtotal decimal.Decimal) (decimal.Decimal, bool) {
	if region.FreeShippingThreshold == nil {
		return decimal.Zero, false
	}
	remaining := region.FreeShippingThreshold.Sub(subtotal)
	if remaining.IsNegative() {
		return decimal.Zero, true
	}
	return remaining, true
}

// SortThresholds trie les paliers par sous-total minimum croissant.
func SortThresholds(thresholds []ShippingThreshold) {
	sort.SliceStable(thresholds, func(i, j int) bool {
		return thresholds[i].MinSubtotal.LessThan(thresholds[j].MinSubtotal)
	})
}

// ResolveRegion trouve la région active d'un pays: code exact d'abord, puis zone
// qui liste le pays.
func ResolveRegion(regions []ShippingRegion, country string) (ShippingRegion, bool) {
	country = strings.ToUpper(strings.TrimSpace(country))
	if country == "" {
		return ShippingRegion{}, false
	}

	for _, r := range regions {
		if r.Active && strings.EqualFold(r.Code, country) {
			return r, true
		}
	}
	for _, r := range regions {
		if !r.Active {
			continue
		}
		for _, c := range r.Countries {
			if strings.EqualFold(c, country) {
				return r, true
			}
		}
	}
	return ShippingRegion{}, false
}
