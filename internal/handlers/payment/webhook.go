package payment

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/services"
	"storefront_back_end/internal/store"
)

const maxWebhookBytes = int64(65536)

// 📥 POST /api/webhooks/stripe
func (h *Handler) StripeWebhook(c *gin.Context) {
	if h.Payments == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Paiement indisponible"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes)
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Échec lecture body"})
		return
	}

	event, err := h.Payments.ParseWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		logger.L().Warnf("❌ Webhook Stripe refusé: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature ou contenu invalide"})
		return
	}

	logger.L().Infof("📥 Événement Stripe reçu : %s", event.Type)

	switch event.Type {
	case services.EventPaymentSucceeded:
		err = h.FulfillOrder(c.Request.Context(), event)
	case services.EventPaymentFailed:
		err = h.failOrder(c.Request.Context(), event)
	default:
		logger.L().Debugf("ℹ️ Événement ignoré : %s", event.Type)
	}

	if err != nil && !errors.Is(err, store.ErrNotFound) {
		// Stripe réessaie tant que la réponse n'est pas 2xx.
		logger.L().Errorf("❌ Traitement webhook %s: %v", event.Type, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur traitement"})
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) orderForEvent(ctx context.Context, event services.WebhookEvent) (models.Order, error) {
	if event.PaymentIntentID != "" {
		order, err := h.Orders.GetOrderByPaymentIntent(ctx, event.PaymentIntentID)
		if err == nil || !errors.Is(err, store.ErrNotFound) || event.OrderID == "" {
			return order, err
		}
	}
	if event.OrderID == "" {
		return models.Order{}, store.ErrNotFound
	}
	return h.Orders.GetOrder(ctx, event.OrderID)
}

// FulfillOrder passe la commande à "paid", décrémente le stock, vide le panier
// et envoie la confirmation. Un événement déjà traité est ignoré.
func (h *Handler) FulfillOrder(ctx context.Context, event services.WebhookEvent) error {
	order, err := h.orderForEvent(ctx, event)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.L().Warnf("⚠️ Aucune commande pour le PaymentIntent %s", event.PaymentIntentID)
		}
		return err
	}

	applied, err := h.Orders.TransitionOrderStatus(ctx, order.ID.String(), models.OrderStatusPending, models.OrderStatusPaid)
	if err != nil {
		return err
	}
	if !applied {
		logger.L().Infof("ℹ️ Commande %s déjà traitée (%s)", order.ID, order.Status)
		return nil
	}
	order.Status = models.OrderStatusPaid

	for _, item := range order.Items {
		if err := h.Products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			// Paiement déjà encaissé, la rupture est seulement journalisée.
			logger.L().Errorf("❌ Stock non décrémenté pour %s (commande %s): %v", item.ProductID, order.ID, err)
		}
	}

	if order.UserID != "" {
		if err := h.Carts.ClearCart(ctx, order.UserID); err != nil {
			logger.L().Warnf("⚠️ Panier non vidé pour %s: %v", order.UserID, err)
		}
	}

	h.sendConfirmation(ctx, order)
	logger.L().Infof("✅ Commande %s payée", order.ID)
	return nil
}

func (h *Handler) sendConfirmation(ctx context.Context, order models.Order) {
	if h.Mailer == nil {
		return
	}

	var pdf []byte
	if h.Invoices != nil {
		var err error
		if pdf, err = h.Invoices.RenderPDF(ctx, order); err != nil {
			logger.L().Warnf("⚠️ Facture PDF non générée pour %s: %v", order.ID, err)
		}
	}

	if err := h.Mailer.SendOrderConfirmation(order, h.SiteSettings(ctx).StoreName, pdf); err != nil {
		logger.L().Errorf("❌ E-mail de confirmation non envoyé pour %s: %v", order.ID, err)
	}
}

func (h *Handler) failOrder(ctx context.Context, event services.WebhookEvent) error {
	order, err := h.orderForEvent(ctx, event)
	if err != nil {
		return err
	}
	logger.L().Warnf("⚠️ Paiement échoué pour la commande %s", order.ID)
	return nil
}
