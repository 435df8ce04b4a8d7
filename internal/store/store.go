package store

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"storefront_back_end/internal/models"
	"storefront_back_end/internal/pricing"
)

// ErrNotFound est retourné quand l'enregistrement demandé n'existe pas.
var ErrNotFound = errors.New("introuvable")

// ErrInsufficientStock est retourné quand le stock ne couvre pas la quantité demandée.
var ErrInsufficientStock = errors.New("stock insuffisant")

type ProductStore interface {
	ListProducts(ctx context.Context, activeOnly bool) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
	SaveProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	DecrementStock(ctx context.Context, id string, quantity int) error
}

type OrderStore interface {
	CreateOrder(ctx context.Context, o models.Order) error
	GetOrder(ctx context.Context, id string) (models.Order, error)
	GetOrderByPaymentIntent(ctx context.Context, paymentIntentID string) (models.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListOrders(ctx context.Context, limit int) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id, status string) error
	TransitionOrderStatus(ctx context.Context, id, from, to string) (bool, error)
	SetPaymentIntent(ctx context.Context, id, paymentIntentID string) error
}

type RegionStore interface {
	ListRegions(ctx context.Context) ([]pricing.ShippingRegion, error)
	GetRegion(ctx context.Context, code string) (pricing.ShippingRegion, error)
	SaveRegion(ctx context.Context, r pricing.ShippingRegion) error
	DeleteRegion(ctx context.Context, code string) error
}

type SettingsStore interface {
	GetSettings(ctx context.Context) (models.SiteSettings, error)
	SaveSettings(ctx context.Context, s models.SiteSettings) error
}

type HeroStore interface {
	ListHeroImages(ctx context.Context) ([]models.HeroImage, error)
	GetHeroImage(ctx context.Context, id string) (models.HeroImage, error)
	SaveHeroImage(ctx context.Context, h models.HeroImage) error
	DeleteHeroImage(ctx context.Context, id string) error
}

type WishlistStore interface {
	ListWishlist(ctx context.Context, userID string) ([]models.WishlistItem, error)
	AddToWishlist(ctx context.Context, userID, productID string) error
	RemoveFromWishlist(ctx context.Context, userID, productID string) error
}

type UserStore interface {
	CreateUser(ctx context.Context, u models.User) error
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

type CartStore interface {
	GetCart(ctx context.Context, userID string) (models.Cart, error)
	SaveCart(ctx context.Context, cart models.Cart) error
	ClearCart(ctx context.Context, userID string) error
	// Subscribe retourne les notifications de modification du panier ("updated", "cleared").
	Subscribe(ctx context.Context, userID string) (<-chan string, func() error)
}

// ResolveRegionForCountry charge les régions et applique pricing.ResolveRegion.
func ResolveRegionForCountry(ctx context.Context, regions RegionStore, country string) (pricing.ShippingRegion, error) {
	all, err := regions.ListRegions(ctx)
	if err != nil {
		return pricing.ShippingRegion{}, err
	}
	region, ok := pricing.ResolveRegion(all, country)
	if !ok {
		return pricing.ShippingRegion{}, ErrNotFound
	}
	return region, nil
}

// TaxRate retourne le taux de TVA configuré, ou le taux par défaut si aucun paramètre n'existe.
func TaxRate(ctx context.Context, settings SettingsStore) decimal.Decimal {
	s, err := settings.GetSettings(ctx)
	if err != nil || s.TaxRate == nil {
		return pricing.DefaultTaxRate()
	}
	return *s.TaxRate
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func decimalOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
