package product

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/models"
)

const maxSearchResults = 50

// 🔍 GET /api/products/search?q=
func (h *Handler) SearchProducts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre 'q' requis"})
		return
	}

	ctx := c.Request.Context()
	products, err := h.searchIndexed(ctx, query)
	if err != nil {
		logger.L().Warnf("⚠️ Recherche Elastic indisponible, repli sur le catalogue: %v", err)
		products, err = h.searchCatalog(ctx, query)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur recherche"})
		return
	}

	tag, fallback := h.Locale(c)
	rate := h.TaxRate(ctx)
	views := make([]models.ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, h.ProductView(ctx, p, tag, fallback, rate))
	}
	c.JSON(http.StatusOK, gin.H{"query": query, "products": views, "total": len(views)})
}

func (h *Handler) searchIndexed(ctx context.Context, query string) ([]models.Product, error) {
	if h.Search == nil {
		return h.searchCatalog(ctx, query)
	}

	ids, err := h.Search.Search(ctx, query, maxSearchResults)
	if err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		p, err := h.Products.GetProduct(ctx, id)
		if err != nil || !p.IsActive {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// searchCatalog filtre le catalogue en mémoire quand l'index n'est pas disponible.
func (h *Handler) searchCatalog(ctx context.Context, query string) ([]models.Product, error) {
	all, err := h.Products.ListProducts(ctx, true)
	if err != nil {
		return nil, err
	}

	var out []models.Product
	for _, p := range all {
		if p.IsActive && matchesQuery(p, query) {
			out = append(out, p)
			if len(out) == maxSearchResults {
				break
			}
		}
	}
	return out, nil
}

func matchesQuery(p models.Product, query string) bool {
	q := strings.ToLower(query)
	for _, texts := range []map[string]string{p.Names, p.Descriptions} {
		for _, v := range texts {
			if strings.Contains(strings.ToLower(v), q) {
				return true
			}
		}
	}
	for _, t := range p.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(p.Slug), q)
}
