package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SiteSettings contient les paramètres globaux de la boutique (une seule ligne en base).
type SiteSettings struct {
	StoreName       string           `json:"store_name"`
	TaxRate         *decimal.Decimal `json:"tax_rate"`
	Currency        string           `json:"currency"`
	DefaultLocale   string           `json:"default_locale"`
	ContactEmail    string           `json:"contact_email"`
	MaintenanceMode bool             `json:"maintenance_mode"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// PublicSettings est le sous-ensemble exposé aux visiteurs.
type PublicSettings struct {
	StoreName        string          `json:"store_name"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	Currency         string          `json:"currency"`
	DefaultLocale    string          `json:"default_locale"`
	SupportedLocales []string        `json:"supported_locales"`
	ContactEmail     string          `json:"contact_email"`
	MaintenanceMode  bool            `json:"maintenance_mode"`
}
