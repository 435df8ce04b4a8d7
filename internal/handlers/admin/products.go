package admin

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"

	"storefront_back_end/internal/handlers"
	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/pricing"
	"storefront_back_end/internal/services"
)

type productInput struct {
	Slug         string            `json:"slug" binding:"required"`
	SKU          string            `json:"sku"`
	Names        map[string]string `json:"names" binding:"required"`
	Descriptions map[string]string `json:"descriptions"`
	Price        *decimal.Decimal  `json:"price" binding:"required"`
	Stock        *int              `json:"stock" binding:"required,min=0"`
	Tags         []string          `json:"tags"`
	IsActive     *bool             `json:"is_active"`
}

// check contrôle les champs que le binding ne couvre pas. Retourne le message d'erreur.
func (in productInput) check(h *Handler) string {
	if in.Price.IsNegative() {
		return "Le prix doit être positif"
	}
	named := false
	for code, name := range in.Names {
		if h.Locales != nil {
			if _, ok := h.Locales.Parse(code); !ok {
				return "Langue non supportée: " + code
			}
		}
		if strings.TrimSpace(name) != "" {
			named = true
		}
	}
	if !named {
		return "Au moins un nom est requis"
	}
	return ""
}

func (in productInput) apply(p *models.Product) {
	p.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	p.SKU = strings.TrimSpace(in.SKU)
	p.Names = in.Names
	p.Descriptions = in.Descriptions
	p.Price = pricing.RoundMoney(*in.Price)
	p.Stock = *in.Stock
	p.Tags = normalizeTags(in.Tags)
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.UpdatedAt = time.Now()
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// index met à jour l'index de recherche. Un échec n'empêche pas l'écriture en base.
func (h *Handler) index(c *gin.Context, p models.Product) {
	if h.Search == nil {
		return
	}
	if err := h.Search.IndexProduct(c.Request.Context(), p); err != nil {
		logger.L().Warnf("⚠️ Indexation produit %s: %v", p.ID, err)
	}
}

// 📋 GET /api/admin/products
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.Products.ListProducts(c.Request.Context(), false)
	if err != nil {
		handlers.RespondError(c, err, "Erreur lecture produits")
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "total": len(products)})
}

// 🟢 POST /api/admin/products
func (h *Handler) CreateProduct(c *gin.Context) {
	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}
	if msg := input.check(h); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	p := models.Product{ID: gocql.TimeUUID(), IsActive: true, CreatedAt: time.Now()}
	input.apply(&p)

	if err := h.Products.SaveProduct(c.Request.Context(), p); err != nil {
		handlers.RespondError(c, err, "Erreur création produit")
		return
	}
	h.index(c, p)
	c.Set("audit_resource_id", p.ID.String())

	logger.L().Infof("✅ Produit créé: %s (%s)", p.Slug, p.ID)
	c.JSON(http.StatusCreated, p)
}

// 🟡 PUT /api/admin/products/:id
func (h *Handler) UpdateProduct(c *gin.Context) {
	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}
	if msg := input.check(h); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	ctx := c.Request.Context()
	p, err := h.Products.GetProduct(ctx, c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err, "Erreur lecture produit")
		return
	}
	input.apply(&p)

	if err := h.Products.SaveProduct(ctx, p); err != nil {
		handlers.RespondError(c, err, "Erreur mise à jour produit")
		return
	}
	h.index(c, p)
	c.JSON(http.StatusOK, p)
}

// 🔴 DELETE /api/admin/products/:id
func (h *Handler) DeleteProduct(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.Products.GetProduct(ctx, c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err, "Erreur lecture produit")
		return
	}

	if err := h.Products.DeleteProduct(ctx, p.ID.String()); err != nil {
		handlers.RespondError(c, err, "Erreur suppression produit")
		return
	}
	if h.Search != nil {
		if err := h.Search.DeleteProduct(ctx, p.ID.String()); err != nil {
			logger.L().Warnf("⚠️ Désindexation produit %s: %v", p.ID, err)
		}
	}
	if h.Images != nil {
		for _, key := range p.ImageKeys {
			if err := h.Images.Delete(ctx, key); err != nil {
				logger.L().Warnf("⚠️ Suppression image %s: %v", key, err)
			}
		}
	}

	logger.L().Infof("🗑️ Produit supprimé: %s", p.ID)
	c.Status(http.StatusNoContent)
}

// 📤 POST /api/admin/products/:id/images (multipart, champ "image")
func (h *Handler) UploadProductImage(c *gin.Context) {
	if h.Images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Stockage d'images non configuré"})
		return
	}

	ctx := c.Request.Context()
	p, err := h.Products.GetProduct(ctx, c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err, "Erreur lecture produit")
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier image manquant"})
		return
	}

	key, err := h.Images.Upload(ctx, "products/"+p.ID.String(), file)
	if err != nil {
		if errors.Is(err, services.ErrNotImage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		handlers.RespondError(c, err, "Erreur upload image")
		return
	}

	p.ImageKeys = append(p.ImageKeys, key)
	p.UpdatedAt = time.Now()
	if err := h.Products.SaveProduct(ctx, p); err != nil {
		_ = h.Images.Delete(ctx, key)
		handlers.RespondError(c, err, "Erreur mise à jour produit")
		return
	}
	h.index(c, p)

	c.JSON(http.StatusCreated, gin.H{"key": key, "url": h.ImageURL(ctx, key), "image_keys": p.ImageKeys})
}

// 🔴 DELETE /api/admin/products/:id/images?key=...
func (h *Handler) DeleteProductImage(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre key requis"})
		return
	}

	ctx := c.Request.Context()
	p, err := h.Products.GetProduct(ctx, c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err, "Erreur lecture produit")
		return
	}

	kept := make([]string, 0, len(p.ImageKeys))
	for _, k := range p.ImageKeys {
		if k != key {
			kept = append(kept, k)
		}
	}
	if len(kept) == len(p.ImageKeys) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image introuvable"})
		return
	}

	p.ImageKeys = kept
	p.UpdatedAt = time.Now()
	if err := h.Products.SaveProduct(ctx, p); err != nil {
		handlers.RespondError(c, err, "Erreur mise à jour produit")
		return
	}
	if h.Images != nil {
		if err := h.Images.Delete(ctx, key); err != nil {
			logger.L().Warnf("⚠️ Suppression image %s: %v", key, err)
		}
	}
	h.index(c, p)
	c.JSON(http.StatusOK, gin.H{"image_keys": p.ImageKeys})
}
