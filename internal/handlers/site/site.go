package site

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront_back_end/internal/handlers"
	"storefront_back_end/internal/models"
)

// Handler expose les contenus publics de la boutique (bannières, paramètres).
type Handler struct {
	*handlers.Deps
}

func New(d *handlers.Deps) *Handler {
	return &Handler{Deps: d}
}

// 🟢 GET /api/hero
func (h *Handler) Hero(c *gin.Context) {
	ctx := c.Request.Context()
	images, err := h.Heroes.ListHeroImages(ctx)
	if err != nil {
		handlers.RespondError(c, err, "Erreur lecture bannières")
		return
	}

	tag, fallback := h.Locale(c)
	views := make([]models.HeroView, 0, len(images))
	for _, img := range images {
		if !img.Active {
			continue
		}
		views = append(views, h.HeroView(ctx, img, tag, fallback))
	}
	c.JSON(http.StatusOK, gin.H{"images": views})
}

// 🟢 GET /api/settings
func (h *Handler) Settings(c *gin.Context) {
	ctx := c.Request.Context()
	s := h.SiteSettings(ctx)

	supported := []string{}
	if h.Locales != nil {
		for _, t := range h.Locales.Supported() {
			supported = append(supported, t.String())
		}
	}

	c.JSON(http.StatusOK, models.PublicSettings{
		StoreName:        s.StoreName,
		TaxRate:          h.TaxRate(ctx),
		Currency:         s.Currency,
		DefaultLocale:    s.DefaultLocale,
		SupportedLocales: supported,
		ContactEmail:     s.ContactEmail,
		MaintenanceMode:  s.MaintenanceMode,
	})
}
