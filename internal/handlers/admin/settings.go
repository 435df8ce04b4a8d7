package admin

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront_back_end/internal/handlers"
	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/pricing"
)

// ⚙️ GET /api/admin/settings
func (h *Handler) GetSettings(c *gin.Context) {
	ctx := c.Request.Context()
	s := h.SiteSettings(ctx)
	if s.TaxRate == nil {
		rate := pricing.DefaultTaxRate()
		s.TaxRate = &rate
	}
	c.JSON(http.StatusOK, s)
}

// 🟡 PUT /api/admin/settings (mise à jour partielle)
func (h *Handler) UpdateSettings(c *gin.Context) {
	var input struct {
		StoreName       *string          `json:"store_name"`
		TaxRate         *decimal.Decimal `json:"tax_rate"`
		Currency        *string          `json:"currency"`
		DefaultLocale   *string          `json:"default_locale"`
		ContactEmail    *string          `json:"contact_email"`
		MaintenanceMode *bool            `json:"maintenance_mode"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	ctx := c.Request.Context()
	s := h.SiteSettings(ctx)

	if input.StoreName != nil {
		name := strings.TrimSpace(*input.StoreName)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Nom de boutique requis"})
			return
		}
		s.StoreName = name
	}
	if input.TaxRate != nil {
		if input.TaxRate.IsNegative() || input.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Le taux de TVA doit être compris entre 0 et 1 (exclu)"})
			return
		}
		rate := *input.TaxRate
		s.TaxRate = &rate
	}
	if input.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*input.Currency))
		if err := validate.Var(currency, "iso4217"); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Devise invalide"})
			return
		}
		s.Currency = currency
	}
	if input.DefaultLocale != nil {
		tag, ok := h.Locales.Parse(*input.DefaultLocale)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Langue non supportée"})
			return
		}
		s.DefaultLocale = tag.String()
	}
	if input.ContactEmail != nil {
		email := strings.TrimSpace(*input.ContactEmail)
		if err := validate.Var(email, "omitempty,email"); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "E-mail de contact invalide"})
			return
		}
		s.ContactEmail = email
	}
	if input.MaintenanceMode != nil {
		s.MaintenanceMode = *input.MaintenanceMode
	}
	s.UpdatedAt = time.Now()

	if err := h.Settings.SaveSettings(ctx, s); err != nil {
		handlers.RespondError(c, err, "Erreur enregistrement paramètres")
		return
	}

	logger.L().Info("⚙️ Paramètres boutique mis à jour")
	c.JSON(http.StatusOK, s)
}
