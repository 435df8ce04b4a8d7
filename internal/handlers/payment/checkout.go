package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"storefront_back_end/internal/handlers"
	"storefront_back_end/internal/locale"
	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/pricing"
	"storefront_back_end/internal/store"
)

// ErrEmptyCart est retourné quand le panier ne contient aucun article.
var ErrEmptyCart = errors.New("panier vide")

// errNoShipping est retourné quand aucune région active ne dessert le pays.
var errNoShipping = errors.New("pas de livraison vers ce pays")

// unavailableError signale un article du panier qui ne peut plus être commandé.
type unavailableError struct {
	ProductID string
	Available int
}

func (e *unavailableError) Error() string {
	return fmt.Sprintf("produit %s indisponible (stock %d)", e.ProductID, e.Available)
}

// Summary est le récapitulatif d'une commande avant paiement.
type Summary struct {
	Items                 []models.OrderItem `json:"items"`
	Country               string             `json:"country"`
	RegionCode            string             `json:"region_code"`
	RegionName            string             `json:"region_name"`
	FreeShippingThreshold *decimal.Decimal   `json:"free_shipping_threshold"`
	RemainingForFree      *decimal.Decimal   `json:"remaining_for_free,omitempty"`
	Currency              string             `json:"currency"`
	pricing.Totals
}

// priceCart relit prix et stock en base. Le prix stocké dans le panier n'est pas utilisé.
func (h *Handler) priceCart(ctx context.Context, cart models.Cart, tag, fallback language.Tag) ([]models.OrderItem, decimal.Decimal, error) {
	if len(cart.Items) == 0 {
		return nil, decimal.Zero, ErrEmptyCart
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	subtotal := decimal.Zero
	for _, ci := range cart.Items {
		p, err := h.Products.GetProduct(ctx, ci.ProductID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && !p.IsActive) {
			return nil, decimal.Zero, &unavailableError{ProductID: ci.ProductID}
		}
		if err != nil {
			return nil, decimal.Zero, err
		}
		if p.Stock < ci.Quantity {
			return nil, decimal.Zero, &unavailableError{ProductID: ci.ProductID, Available: p.Stock}
		}

		item := models.OrderItem{
			ProductID: ci.ProductID,
			Name:      locale.Localized(p.Names, tag, fallback),
			Price:     p.Price,
			Quantity:  ci.Quantity,
		}
		items = append(items, item)
		subtotal = subtotal.Add(item.LineTotal())
	}
	return items, subtotal, nil
}

// summarize calcule le récapitulatif complet du panier pour un pays de livraison.
func (h *Handler) summarize(c *gin.Context, userID, country string) (Summary, error) {
	ctx := c.Request.Context()
	tag, fallback := h.Locale(c)

	cart, err := h.Carts.GetCart(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	items, subtotal, err := h.priceCart(ctx, cart, tag, fallback)
	if err != nil {
		return Summary{}, err
	}

	region, err := store.ResolveRegionForCountry(ctx, h.Deps.Regions, country)
	if errors.Is(err, store.ErrNotFound) {
		return Summary{}, errNoShipping
	}
	if err != nil {
		return Summary{}, err
	}

	shipping := pricing.CalculateShippingCost(region, subtotal)
	s := Summary{
		Items:                 items,
		Country:               strings.ToUpper(country),
		RegionCode:            region.Code,
		RegionName:            region.Name,
		FreeShippingThreshold: region.FreeShippingThreshold,
		Currency:              h.SiteSettings(ctx).Currency,
		Totals:                pricing.Breakdown(subtotal, shipping, h.TaxRate(ctx)),
	}
	if remaining, ok := pricing.RemainingForFreeShipping(region, subtotal); ok {
		s.RemainingForFree = &remaining
	}
	return s, nil
}

func respondCheckoutError(c *gin.Context, err error) {
	var unavailable *unavailableError
	switch {
	case errors.Is(err, ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Panier vide"})
	case errors.Is(err, errNoShipping):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Pas de livraison vers ce pays"})
	case errors.As(err, &unavailable):
		c.JSON(http.StatusConflict, gin.H{
			"error":      "Produit indisponible ou stock insuffisant",
			"product_id": unavailable.ProductID,
			"available":  unavailable.Available,
		})
	default:
		handlers.RespondError(c, err, "Erreur checkout")
	}
}

// 🧾 POST /api/checkout/summary
func (h *Handler) CheckoutSummary(c *gin.Context) {
	var req struct {
		Country string `json:"country" binding:"required,iso3166_1_alpha2"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Pays invalide", "details": err.Error()})
		return
	}

	summary, err := h.summarize(c, c.GetString("user_id"), req.Country)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// 💳 POST /api/checkout
// Crée une commande "pending" au prix courant puis le PaymentIntent Stripe.
// La commande passe à "paid" à la réception du webhook.
func (h *Handler) Checkout(c *gin.Context) {
	var req struct {
		Address models.Address `json:"address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Adresse invalide", "details": err.Error()})
		return
	}

	if h.Payments == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Paiement indisponible"})
		return
	}

	userID := c.GetString("user_id")
	summary, err := h.summarize(c, userID, req.Address.Country)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	ctx := c.Request.Context()
	tag, _ := h.Locale(c)
	req.Address.Country = strings.ToUpper(req.Address.Country)
	now := time.Now()

	order := models.Order{
		ID:           gocql.TimeUUID(),
		UserID:       userID,
		Email:        c.GetString("email"),
		Status:       models.OrderStatusPending,
		Items:        summary.Items,
		Address:      req.Address,
		RegionCode:   summary.RegionCode,
		Subtotal:     summary.Subtotal,
		Shipping:     summary.Shipping,
		Total:        summary.Total,
		Tax:          summary.Tax,
		TotalExclTax: summary.TotalExclTax,
		TaxRate:      summary.TaxRate,
		Currency:     summary.Currency,
		Locale:       tag.String(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Orders.CreateOrder(ctx, order); err != nil {
		handlers.RespondError(c, err, "Erreur création commande")
		return
	}

	intent, err := h.Payments.CreatePaymentIntent(order)
	if err != nil {
		logger.L().Errorf("❌ Erreur Stripe pour la commande %s: %v", order.ID, err)
		if _, err := h.Orders.TransitionOrderStatus(ctx, order.ID.String(), models.OrderStatusPending, models.OrderStatusCancelled); err != nil {
			logger.L().Errorf("❌ Annulation commande %s: %v", order.ID, err)
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Erreur création du paiement"})
		return
	}

	if err := h.Orders.SetPaymentIntent(ctx, order.ID.String(), intent.ID); err != nil {
		handlers.RespondError(c, err, "Erreur enregistrement paiement")
		return
	}

	logger.L().Infof("🛒 Commande %s créée pour %s (%s %s)", order.ID, order.Email, order.Total.StringFixed(2), order.Currency)

	c.JSON(http.StatusCreated, gin.H{
		"order_id":      order.ID.String(),
		"client_secret": intent.ClientSecret,
		"payment_id":    intent.ID,
		"summary":       summary,
	})
}
