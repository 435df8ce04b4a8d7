package payment

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront_back_end/internal/handlers"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/pricing"
	"storefront_back_end/internal/store"
)

// Handler regroupe livraison, checkout et webhooks de paiement.
type Handler struct {
	*handlers.Deps
}

func New(d *handlers.Deps) *Handler {
	return &Handler{Deps: d}
}

// 🚚 GET /api/shipping/regions
func (h *Handler) Regions(c *gin.Context) {
	all, err := h.Deps.Regions.ListRegions(c.Request.Context())
	if err != nil {
		handlers.RespondError(c, err, "Erreur lecture régions")
		return
	}

	active := make([]pricing.ShippingRegion, 0, len(all))
	for _, r := range all {
		if r.Active {
			active = append(active, r)
		}
	}
	c.JSON(http.StatusOK, gin.H{"regions": active})
}

// Quote calcule l'estimation de livraison pour une région déjà résolue.
func Quote(region pricing.ShippingRegion, country string, subtotal decimal.Decimal, currency string) models.ShippingQuote {
	cost := pricing.CalculateShippingCost(region, subtotal)
	q := models.ShippingQuote{
		Country:               strings.ToUpper(country),
		RegionCode:            region.Code,
		RegionName:            region.Name,
		Subtotal:              subtotal,
		Cost:                  cost,
		IsFree:                cost.IsZero(),
		FreeShippingThreshold: region.FreeShippingThreshold,
		Currency:              currency,
	}
	if remaining, ok := pricing.RemainingForFreeShipping(region, subtotal); ok {
		q.RemainingForFree = &remaining
	}
	return q
}

// 🚚 GET /api/shipping/quote?country=SE&subtotal=350
func (h *Handler) ShippingQuote(c *gin.Context) {
	country := strings.TrimSpace(c.Query("country"))
	if country == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre 'country' requis"})
		return
	}

	subtotal, ok := handlers.ParseMoney(c.DefaultQuery("subtotal", "0"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Sous-total invalide"})
		return
	}

	ctx := c.Request.Context()
	region, err := store.ResolveRegionForCountry(ctx, h.Deps.Regions, country)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Pas de livraison vers ce pays", "country": strings.ToUpper(country)})
			return
		}
		handlers.RespondError(c, err, "Erreur lecture régions")
		return
	}

	c.JSON(http.StatusOK, Quote(region, country, subtotal, h.SiteSettings(ctx).Currency))
}
