package models

import (
	"time"

	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"
)

// Product est un article du catalogue. Le prix est TTC.
type Product struct {
	ID           gocql.UUID        `json:"id"`
	Slug         string            `json:"slug"`
	SKU          string            `json:"sku"`
	Names        map[string]string `json:"names"`
	Descriptions map[string]string `json:"descriptions"`
	Price        decimal.Decimal   `json:"price"`
	Stock        int               `json:"stock"`
	ImageKeys    []string          `json:"image_keys"`
	Tags         []string          `json:"tags"`
	IsActive     bool              `json:"is_active"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// ProductView est la représentation publique d'un produit, dans une langue donnée.
type ProductView struct {
	ID           string          `json:"id"`
	Slug         string          `json:"slug"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	PriceExclTax decimal.Decimal `json:"price_excl_tax"`
	Tax          decimal.Decimal `json:"tax"`
	InStock      bool            `json:"in_stock"`
	Stock        int             `json:"stock"`
	Images       []string        `json:"images"`
	Tags         []string        `json:"tags"`
	Locale       string          `json:"locale"`
}
