package product

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront_back_end/internal/handlers"
	"storefront_back_end/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Handler expose le catalogue public.
type Handler struct {
	*handlers.Deps
}

func New(d *handlers.Deps) *Handler {
	return &Handler{Deps: d}
}

// listQuery regroupe les filtres de GET /api/products.
type listQuery struct {
	Tag      string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
	Page     int
	Limit    int
}

func parseListQuery(c *gin.Context) (listQuery, bool) {
	q := listQuery{
		Tag:  strings.ToLower(strings.TrimSpace(c.Query("tag"))),
		Sort: c.DefaultQuery("sort", "newest"),
	}

	if v := c.Query("min_price"); v != "" {
		d, ok := handlers.ParseMoney(v)
		if !ok {
			return q, false
		}
		q.MinPrice = &d
	}
	if v := c.Query("max_price"); v != "" {
		d, ok := handlers.ParseMoney(v)
		if !ok {
			return q, false
		}
		q.MaxPrice = &d
	}

	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if q.Page < 1 {
		q.Page = 1
	}
	q.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if q.Limit < 1 || q.Limit > maxPageSize {
		q.Limit = defaultPageSize
	}
	return q, true
}

func (q listQuery) match(p models.Product) bool {
	if q.MinPrice != nil && p.Price.LessThan(*q.MinPrice) {
		return false
	}
	if q.MaxPrice != nil && p.Price.GreaterThan(*q.MaxPrice) {
		return false
	}
	if q.Tag != "" {
		for _, t := range p.Tags {
			if strings.EqualFold(t, q.Tag) {
				return true
			}
		}
		return false
	}
	return true
}

func sortProducts(products []models.Product, by string) {
	switch by {
	case "price_asc":
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price.LessThan(products[j].Price) })
	case "price_desc":
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price.GreaterThan(products[j].Price) })
	default:
		sort.SliceStable(products, func(i, j int) bool { return products[i].CreatedAt.After(products[j].CreatedAt) })
	}
}

// 🟢 GET /api/products
func (h *Handler) List(c *gin.Context) {
	q, ok := parseListQuery(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Filtre de prix invalide"})
		return
	}

	ctx := c.Request.Context()
	all, err := h.Products.ListProducts(ctx, true)
	if err != nil {
		handlers.RespondError(c, err, "Erreur lecture produits")
		return
	}

	filtered := make([]models.Product, 0, len(all))
	for _, p := range all {
		if p.IsActive && q.match(p) {
			filtered = append(filtered, p)
		}
	}
	sortProducts(filtered, q.Sort)

	total := len(filtered)
	start := (q.Page - 1) * q.Limit
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}

	tag, fallback := h.Locale(c)
	rate := h.TaxRate(ctx)
	views := make([]models.ProductView, 0, end-start)
	for _, p := range filtered[start:end] {
		views = append(views, h.ProductView(ctx, p, tag, fallback, rate))
	}

	c.JSON(http.StatusOK, gin.H{
		"products": views,
		"total":    total,
		"page":     q.Page,
		"limit":    q.Limit,
	})
}

// 🟢 GET /api/products/:id
func (h *Handler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.Products.GetProduct(ctx, c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err, "Erreur lecture produit")
		return
	}
	if !p.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "Introuvable"})
		return
	}

	tag, fallback := h.Locale(c)
	c.JSON(http.StatusOK, h.ProductView(ctx, p, tag, fallback, h.TaxRate(ctx)))
}
