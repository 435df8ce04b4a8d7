package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/webhook"

	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/pricing"
)

const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// ErrInvalidSignature est retourné quand la signature du webhook ne correspond pas.
var ErrInvalidSignature = errors.New("signature stripe invalide")

// PaymentIntent est le résultat de la création d'un paiement.
type PaymentIntent struct {
	ID           string `json:"payment_id"`
	ClientSecret string `json:"client_secret"`
}

// WebhookEvent est la partie d'un événement Stripe utile au traitement des commandes.
type WebhookEvent struct {
	Type            string
	PaymentIntentID string
	OrderID         string
}

// StripePayments crée les PaymentIntent et vérifie les webhooks.
type StripePayments struct {
	webhookSecret string
	allowUnsigned bool
}

// NewStripePayments configure la clé API globale du SDK.
// Sans secret de webhook, les événements non signés ne sont acceptés que si allowUnsigned est vrai.
func NewStripePayments(secretKey, webhookSecret string, allowUnsigned bool) *StripePayments {
	stripe.Key = secretKey
	if webhookSecret == "" {
		if allowUnsigned {
			logger.L().Warn("⚠️ Pas de STRIPE_WEBHOOK_SECRET : webhooks acceptés sans signature")
		} else {
			logger.L().Error("❌ Pas de STRIPE_WEBHOOK_SECRET : tous les webhooks seront refusés")
		}
	}
	return &StripePayments{webhookSecret: webhookSecret, allowUnsigned: allowUnsigned}
}

// IntentParams construit les paramètres Stripe pour une commande (montant en unités mineures).
func IntentParams(order models.Order) *stripe.PaymentIntentParams {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(pricing.ToMinorUnits(order.Total)),
		Currency: stripe.String(strings.ToLower(order.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		ReceiptEmail: stripe.String(order.Email),
		Metadata: map[string]string{
			"order_id": order.ID.String(),
			"user_id":  order.UserID,
		},
	}
	params.SetIdempotencyKey("order-" + order.ID.String())
	return params
}

func (p *StripePayments) CreatePaymentIntent(order models.Order) (PaymentIntent, error) {
	intent, err := paymentintent.New(IntentParams(order))
	if err != nil {
		return PaymentIntent{}, fmt.Errorf("stripe: %w", err)
	}

	logger.L().Infof("💳 PaymentIntent créé : %s (%s %s) pour la commande %s",
		intent.ID, pricing.RoundMoney(order.Total).StringFixed(2), order.Currency, order.ID)
	return PaymentIntent{ID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

// ParseWebhook vérifie la signature (si un secret est configuré) et décode l'événement.
func (p *StripePayments) ParseWebhook(payload []byte, signature string) (WebhookEvent, error) {
	var event stripe.Event

	if p.webhookSecret == "" {
		if !p.allowUnsigned {
			return WebhookEvent{}, fmt.Errorf("%w: aucun secret de webhook configuré", ErrInvalidSignature)
		}
		if err := json.Unmarshal(payload, &event); err != nil {
			return WebhookEvent{}, fmt.Errorf("json invalide: %w", err)
		}
	} else {
		var err error
		event, err = webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret,
			webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
		if err != nil {
			return WebhookEvent{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
	}

	out := WebhookEvent{Type: string(event.Type)}
	if !strings.HasPrefix(out.Type, "payment_intent.") || event.Data == nil {
		return out, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return WebhookEvent{}, fmt.Errorf("décodage PaymentIntent: %w", err)
	}
	out.PaymentIntentID = pi.ID
	out.OrderID = pi.Metadata["order_id"]
	return out, nil
}
