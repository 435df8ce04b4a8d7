package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"storefront_back_end/internal/locale"
	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/middleware"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/pricing"
	"storefront_back_end/internal/store"
)

// Locale retourne la langue résolue de la requête et la langue par défaut.
func (d *Deps) Locale(c *gin.Context) (language.Tag, language.Tag) {
	fallback := language.Und
	if d.Locales != nil {
		fallback = d.Locales.Default()
	}
	return middleware.LocaleFrom(c, fallback), fallback
}

// ImageURL retourne une URL signée pour la clé, ou la clé elle-même sans stockage configuré.
func (d *Deps) ImageURL(ctx context.Context, key string) string {
	if d.Images == nil || key == "" {
		return key
	}
	u, err := d.Images.PresignedURL(ctx, key)
	if err != nil {
		logger.L().Warnf("⚠️ URL signée impossible pour %s: %v", key, err)
		return ""
	}
	return u
}

// ProductView prépare un produit pour l'affichage dans une langue, avec le détail TVA.
func (d *Deps) ProductView(ctx context.Context, p models.Product, tag, fallback language.Tag, taxRate decimal.Decimal) models.ProductView {
	images := make([]string, 0, len(p.ImageKeys))
	for _, key := range p.ImageKeys {
		if u := d.ImageURL(ctx, key); u != "" {
			images = append(images, u)
		}
	}

	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	return models.ProductView{
		ID:           p.ID.String(),
		Slug:         p.Slug,
		Name:         locale.Localized(p.Names, tag, fallback),
		Description:  locale.Localized(p.Descriptions, tag, fallback),
		Price:        p.Price,
		PriceExclTax: pricing.RoundMoney(pricing.PriceExcludingTax(p.Price, taxRate)),
		Tax:          pricing.RoundMoney(pricing.TaxFromInclusivePrice(p.Price, taxRate)),
		InStock:      p.Stock > 0,
		Stock:        p.Stock,
		Images:       images,
		Tags:         tags,
		Locale:       tag.String(),
	}
}

// HeroView prépare une image de bannière pour l'affichage.
func (d *Deps) HeroView(ctx context.Context, h models.HeroImage, tag, fallback language.Tag) models.HeroView {
	return models.HeroView{
		ID:       h.ID.String(),
		ImageURL: d.ImageURL(ctx, h.ObjectKey),
		Title:    locale.Localized(h.Titles, tag, fallback),
		Subtitle: locale.Localized(h.Subtitles, tag, fallback),
		LinkURL:  h.LinkURL,
		Position: h.Position,
	}
}

// RespondError traduit une erreur de store en réponse HTTP.
func RespondError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Introuvable"})
	case errors.Is(err, store.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": "Stock insuffisant"})
	default:
		logger.L().Errorf("❌ %s: %v", msg, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

// ParseMoney lit un montant décimal positif ou nul.
func ParseMoney(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}
