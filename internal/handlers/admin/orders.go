package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"storefront_back_end/internal/handlers"
	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/models"
)

const (
	defaultOrderLimit = 100
	maxOrderLimit     = 500
)

// 📦 GET /api/admin/orders?status=&limit=
func (h *Handler) ListOrders(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultOrderLimit)))
	if err != nil || limit <= 0 {
		limit = defaultOrderLimit
	}
	if limit > maxOrderLimit {
		limit = maxOrderLimit
	}

	// Avec un filtre de statut, la limite s'applique après le filtrage.
	status := c.Query("status")
	fetch := limit
	if status != "" {
		fetch = 0
	}

	orders, err := h.Orders.ListOrders(c.Request.Context(), fetch)
	if err != nil {
		handlers.RespondError(c, err, "Erreur lecture commandes")
		return
	}

	out := make([]models.Order, 0, min(len(orders), limit))
	for _, o := range orders {
		if len(out) == limit {
			break
		}
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	c.JSON(http.StatusOK, gin.H{"orders": out, "total": len(out)})
}

// 🟡 PUT /api/admin/orders/:id/status
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required,oneof=pending paid shipped delivered cancelled"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut invalide"})
		return
	}

	ctx := c.Request.Context()
	order, err := h.Orders.GetOrder(ctx, c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err, "Erreur lecture commande")
		return
	}

	// Seul le webhook Stripe marque une commande payée.
	if input.Status == models.OrderStatusPaid {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Le paiement est confirmé uniquement par Stripe",
			"from":  order.Status,
			"to":    input.Status,
		})
		return
	}

	if !models.CanTransition(order.Status, input.Status) {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Transition de statut interdite",
			"from":   order.Status,
			"to":     input.Status,
		})
		return
	}

	ok, err := h.Orders.TransitionOrderStatus(ctx, order.ID.String(), order.Status, input.Status)
	if err != nil {
		handlers.RespondError(c, err, "Erreur mise à jour commande")
		return
	}
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "La commande a été modifiée entre-temps"})
		return
	}

	previous := order.Status
	order.Status = input.Status
	order.UpdatedAt = time.Now()
	logger.L().Infof("📦 Commande %s: %s → %s", order.ID, previous, order.Status)

	if h.Mailer != nil && order.Email != "" {
		if err := h.Mailer.SendOrderStatus(order, h.SiteSettings(ctx).StoreName); err != nil {
			logger.L().Warnf("⚠️ E-mail de statut non envoyé pour %s: %v", order.ID, err)
		}
	}

	c.JSON(http.StatusOK, order)
}
