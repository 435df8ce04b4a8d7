package models

// Address est l'adresse de livraison saisie au checkout.
type Address struct {
	Name       string `json:"name" binding:"required"`
	Street     string `json:"street" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
	Country    string `json:"country" binding:"required,iso3166_1_alpha2"`
	Phone      string `json:"phone,omitempty"`
}
