package admin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront_back_end/internal/handlers"
	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/pricing"
)

type regionInput struct {
	Name                  string                      `json:"name" binding:"required"`
	Countries             []string                    `json:"countries"`
	BasePrice             *decimal.Decimal            `json:"base_price" binding:"required"`
	FreeShippingThreshold *decimal.Decimal            `json:"free_shipping_threshold"`
	ShippingThresholds    []pricing.ShippingThreshold `json:"shipping_thresholds"`
	Active                *bool                       `json:"active"`
}

// toRegion normalise et contrôle une région. Retourne un message d'erreur si invalide.
func (in regionInput) toRegion(code string) (pricing.ShippingRegion, string) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := validate.Var(code, "required,alphanum,max=16"); err != nil {
		return pricing.ShippingRegion{}, "Code de région invalide"
	}

	countries := make([]string, 0, len(in.Countries))
	for _, c := range in.Countries {
		c = strings.ToUpper(strings.TrimSpace(c))
		if err := validate.Var(c, "iso3166_1_alpha2"); err != nil {
			return pricing.ShippingRegion{}, "Code pays invalide: " + c
		}
		countries = append(countries, c)
	}
	if len(countries) == 0 && validate.Var(code, "iso3166_1_alpha2") != nil {
		return pricing.ShippingRegion{}, "Une zone doit lister ses pays"
	}

	if in.BasePrice.IsNegative() {
		return pricing.ShippingRegion{}, "Tarif négatif"
	}
	if in.FreeShippingThreshold != nil && in.FreeShippingThreshold.IsNegative() {
		return pricing.ShippingRegion{}, "Seuil de gratuité négatif"
	}
	thresholds := make([]pricing.ShippingThreshold, 0, len(in.ShippingThresholds))
	for _, t := range in.ShippingThresholds {
		if t.MinSubtotal.IsNegative() || t.Price.IsNegative() {
			return pricing.ShippingRegion{}, "Palier négatif"
		}
		thresholds = append(thresholds, pricing.ShippingThreshold{
			MinSubtotal: pricing.RoundMoney(t.MinSubtotal),
			Price:       pricing.RoundMoney(t.Price),
		})
	}
	pricing.SortThresholds(thresholds)

	region := pricing.ShippingRegion{
		Code:               code,
		Name:               strings.TrimSpace(in.Name),
		Countries:          countries,
		BasePrice:          pricing.RoundMoney(*in.BasePrice),
		ShippingThresholds: thresholds,
		Active:             in.Active == nil || *in.Active,
	}
	if in.FreeShippingThreshold != nil {
		free := pricing.RoundMoney(*in.FreeShippingThreshold)
		region.FreeShippingThreshold = &free
	}
	return region, ""
}

// 🚚 GET /api/admin/shipping/regions
func (h *Handler) ListRegions(c *gin.Context) {
	regions, err := h.Regions.ListRegions(c.Request.Context())
	if err != nil {
		handlers.RespondError(c, err, "Erreur lecture régions")
		return
	}
	if regions == nil {
		regions = []pricing.ShippingRegion{}
	}
	c.JSON(http.StatusOK, gin.H{"regions": regions})
}

// 🟡 PUT /api/admin/shipping/regions/:code (création ou remplacement)
func (h *Handler) SaveRegion(c *gin.Context) {
	var input regionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	region, msg := input.toRegion(c.Param("code"))
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	if err := h.Regions.SaveRegion(c.Request.Context(), region); err != nil {
		handlers.RespondError(c, err, "Erreur enregistrement région")
		return
	}

	logger.L().Infof("🚚 Région de livraison enregistrée: %s", region.Code)
	c.JSON(http.StatusOK, region)
}

// 🔴 DELETE /api/admin/shipping/regions/:code
func (h *Handler) DeleteRegion(c *gin.Context) {
	code := strings.ToUpper(c.Param("code"))
	ctx := c.Request.Context()
	if _, err := h.Regions.GetRegion(ctx, code); err != nil {
		handlers.RespondError(c, err, "Erreur lecture région")
		return
	}
	if err := h.Regions.DeleteRegion(ctx, code); err != nil {
		handlers.RespondError(c, err, "Erreur suppression région")
		return
	}
	c.Status(http.StatusNoContent)
}
