package user

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront_back_end/internal/handlers"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/utils"
)

// 📦 GET /api/orders
func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.Orders.ListOrdersByUser(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		handlers.RespondError(c, err, "Erreur lecture commandes")
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// ownOrder charge la commande si elle appartient à l'utilisateur (404 sinon).
func (h *Handler) ownOrder(c *gin.Context) (models.Order, bool) {
	order, err := h.Orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err, "Erreur lecture commande")
		return models.Order{}, false
	}
	if order.UserID != c.GetString("user_id") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Introuvable"})
		return models.Order{}, false
	}
	return order, true
}

// 📦 GET /api/orders/:id
func (h *Handler) GetOrder(c *gin.Context) {
	if order, ok := h.ownOrder(c); ok {
		c.JSON(http.StatusOK, order)
	}
}

// 🧾 GET /api/orders/:id/invoice
func (h *Handler) Invoice(c *gin.Context) {
	order, ok := h.ownOrder(c)
	if !ok {
		return
	}
	if order.Status == models.OrderStatusPending || order.Status == models.OrderStatusCancelled {
		c.JSON(http.StatusConflict, gin.H{"error": "Facture disponible après paiement"})
		return
	}
	if h.Invoices == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Génération de facture indisponible"})
		return
	}

	pdf, err := h.Invoices.RenderPDF(c.Request.Context(), order)
	if err != nil {
		handlers.RespondError(c, err, "Erreur génération facture")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice-%s.pdf"`, utils.ShortOrderID(order)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
