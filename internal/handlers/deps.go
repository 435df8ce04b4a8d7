package handlers

import (
	"context"
	"mime/multipart"

	"github.com/shopspring/decimal"

	"storefront_back_end/internal/cache"
	"storefront_back_end/internal/locale"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/services"
	"storefront_back_end/internal/store"
	"storefront_back_end/internal/utils"
)

// Images stocke les fichiers image (MinIO).
type Images interface {
	Upload(ctx context.Context, prefix string, file *multipart.FileHeader) (string, error)
	PresignedURL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Search est l'index de recherche produits (Elasticsearch).
type Search interface {
	IndexProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]string, error)
}

// Payments crée les paiements et décode les webhooks (Stripe).
type Payments interface {
	CreatePaymentIntent(order models.Order) (services.PaymentIntent, error)
	ParseWebhook(payload []byte, signature string) (services.WebhookEvent, error)
}

// Mailer envoie les e-mails de commande.
type Mailer interface {
	SendOrderConfirmation(order models.Order, storeName string, invoicePDF []byte) error
	SendOrderStatus(order models.Order, storeName string) error
}

// Invoices génère la facture PDF d'une commande.
type Invoices interface {
	RenderPDF(ctx context.Context, order models.Order) ([]byte, error)
}

// Deps regroupe les dépendances partagées par tous les handlers.
// Images, Search, Payments, Mailer et Invoices peuvent être nil si non configurés.
type Deps struct {
	Products  store.ProductStore
	Orders    store.OrderStore
	Regions   store.RegionStore
	Settings  store.SettingsStore
	Heroes    store.HeroStore
	Wishlists store.WishlistStore
	Users     store.UserStore
	Carts     store.CartStore

	Cache    *cache.Cache
	Images   Images
	Search   Search
	Payments Payments
	Mailer   Mailer
	Invoices Invoices

	Tokens      *utils.TokenManager
	Locales     *locale.Resolver
	Currency    string
	AdminEmails []string

	// StoreName est utilisé si les paramètres boutique n'en définissent pas.
	StoreName string
}

// TaxRate retourne le taux de TVA en vigueur.
func (d *Deps) TaxRate(ctx context.Context) decimal.Decimal {
	return store.TaxRate(ctx, d.Settings)
}

// SiteSettings retourne les paramètres boutique complétés par les valeurs de configuration.
func (d *Deps) SiteSettings(ctx context.Context) models.SiteSettings {
	s, err := d.Settings.GetSettings(ctx)
	if err != nil {
		s = models.SiteSettings{}
	}
	if s.StoreName == "" {
		s.StoreName = d.StoreName
	}
	if s.Currency == "" {
		s.Currency = d.Currency
	}
	if s.DefaultLocale == "" && d.Locales != nil {
		s.DefaultLocale = d.Locales.Default().String()
	}
	return s
}
