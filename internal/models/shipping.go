package models

import "github.com/shopspring/decimal"

// ShippingQuote est la réponse de l'estimation des frais de port.
type ShippingQuote struct {
	Country               string           `json:"country"`
	RegionCode            string           `json:"region_code"`
	RegionName            string           `json:"region_name"`
	Subtotal              decimal.Decimal  `json:"subtotal"`
	Cost                  decimal.Decimal  `json:"cost"`
	IsFree                bool             `json:"is_free"`
	FreeShippingThreshold *decimal.Decimal `json:"free_shipping_threshold"`
	RemainingForFree      *decimal.Decimal `json:"remaining_for_free,omitempty"`
	Currency              string           `json:"currency"`
}
