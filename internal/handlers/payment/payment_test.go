package payment

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront_back_end/internal/handlers/handlertest"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/pricing"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func setup(t *testing.T) (*handlertest.Env, *gin.Engine) {
	t.Helper()
	env := handlertest.New()
	ctx := t.Context()

	require.NoError(t, env.Regions.SaveRegion(ctx, pricing.ShippingRegion{
		Code: "SE", Name: "Sverige", BasePrice: dec("49"), FreeShippingThreshold: decPtr("500"), Active: true,
	}))
	require.NoError(t, env.Regions.SaveRegion(ctx, pricing.ShippingRegion{
		Code: "NORDIC", Name: "Norden", Countries: []string{"NO", "DK", "FI"}, BasePrice: dec("99"), Active: true,
		ShippingThresholds: []pricing.ShippingThreshold{
			{MinSubtotal: dec("500"), Price: dec("0")},
			{MinSubtotal: dec("0"), Price: dec("49")},
			{MinSubtotal: dec("300"), Price: dec("29")},
		},
	}))
	require.NoError(t, env.Regions.SaveRegion(ctx, pricing.ShippingRegion{
		Code: "DE", Name: "Deutschland", BasePrice: dec("149"), Active: false,
	}))

	h := New(env.Deps)
	r := env.Router()
	r.GET("/api/shipping/regions", h.Regions)
	r.GET("/api/shipping/quote", h.ShippingQuote)
	r.POST("/api/checkout/summary", env.Auth(), h.CheckoutSummary)
	r.POST("/api/checkout", env.Auth(), h.Checkout)
	r.POST("/api/webhooks/stripe", h.StripeWebhook)
	return env, r
}

func TestRegionsListsActiveOnly(t *testing.T) {
	_, r := setup(t)
	w := handlertest.Do(r, http.MethodGet, "/api/shipping/regions", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"SE"`)
	assert.Contains(t, w.Body.String(), `"code":"NORDIC"`)
	assert.NotContains(t, w.Body.String(), `"code":"DE"`)
}

func TestShippingQuote(t *testing.T) {
	_, r := setup(t)

	cases := []struct {
		query     string
		cost      string
		free      bool
		remaining string
	}{
		{"country=SE&subtotal=600", "0", true, "0"},
		{"country=se&subtotal=100", "49", false, "400"},
		{"country=NO&subtotal=350", "29", false, ""},
		{"country=DK&subtotal=50", "49", false, ""},
		{"country=FI&subtotal=500", "0", true, ""},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			w := handlertest.Do(r, http.MethodGet, "/api/shipping/quote?"+tc.query, nil, "")
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var q models.ShippingQuote
			require.NoError(t, handlertest.Decode(w, &q))
			assert.True(t, q.Cost.Equal(dec(tc.cost)), "cost %s", q.Cost)
			assert.Equal(t, tc.free, q.IsFree)
			assert.Equal(t, "SEK", q.Currency)
			if tc.remaining == "" {
				assert.Nil(t, q.RemainingForFree)
			} else {
				require.NotNil(t, q.RemainingForFree)
				assert.True(t, q.RemainingForFree.Equal(dec(tc.remaining)))
			}
		})
	}
}

func TestShippingQuoteErrors(t *testing.T) {
	_, r := setup(t)
	assert.Equal(t, http.StatusBadRequest, handlertest.Do(r, http.MethodGet, "/api/shipping/quote?subtotal=10", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, handlertest.Do(r, http.MethodGet, "/api/shipping/quote?country=SE&subtotal=-1", nil, "").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, handlertest.Do(r, http.MethodGet, "/api/shipping/quote?country=DE&subtotal=10", nil, "").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, handlertest.Do(r, http.MethodGet, "/api/shipping/quote?country=US&subtotal=10", nil, "").Code)
}

func fillCart(t *testing.T, env *handlertest.Env, userID string, items ...models.CartItem) {
	t.Helper()
	require.NoError(t, env.Carts.SaveCart(t.Context(), models.Cart{UserID: userID, Items: items}))
}

func TestCheckoutSummaryUsesDatabasePrices(t *testing.T) {
	env, r := setup(t)
	cup := env.AddProduct("kopp", "125", 10)
	// Prix du panier périmé: c'est le prix en base qui compte.
	fillCart(t, env, "u1", models.CartItem{ProductID: cup.ID.String(), Price: dec("1"), Quantity: 2})

	w := handlertest.Do(r, http.MethodPost, "/api/checkout/summary", gin.H{"country": "SE"}, env.Token("u1", models.RoleCustomer))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var s Summary
	require.NoError(t, handlertest.Decode(w, &s))
	assert.True(t, s.Subtotal.Equal(dec("250")))
	assert.True(t, s.Shipping.Equal(dec("49")))
	assert.True(t, s.Total.Equal(dec("299")))
	assert.True(t, s.Tax.Equal(dec("59.8")))
	assert.True(t, s.TotalExclTax.Equal(dec("239.2")))
	assert.True(t, s.Tax.Add(s.TotalExclTax).Equal(s.Total))
	assert.Equal(t, "SE", s.RegionCode)
	require.NotNil(t, s.RemainingForFree)
	assert.True(t, s.RemainingForFree.Equal(dec("250")))
}

func TestCheckoutSummaryErrors(t *testing.T) {
	env, r := setup(t)
	token := env.Token("u1", models.RoleCustomer)

	w := handlertest.Do(r, http.MethodPost, "/api/checkout/summary", gin.H{"country": "SE"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	cup := env.AddProduct("kopp", "125", 1)
	fillCart(t, env, "u1", models.CartItem{ProductID: cup.ID.String(), Quantity: 3})
	w = handlertest.Do(r, http.MethodPost, "/api/checkout/summary", gin.H{"country": "SE"}, token)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"available":1`)

	w = handlertest.Do(r, http.MethodPost, "/api/checkout/summary", gin.H{"country": "XX"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusUnauthorized, handlertest.Do(r, http.MethodPost, "/api/checkout/summary", gin.H{"country": "SE"}, "").Code)
}

var address = models.Address{Name: "Kim", Street: "Storgatan 1", City: "Malmö", PostalCode: "21122", Country: "SE"}

func TestCheckoutCreatesPendingOrder(t *testing.T) {
	env, r := setup(t)
	cup := env.AddProduct("kopp", "125", 10)
	fillCart(t, env, "u1", models.CartItem{ProductID: cup.ID.String(), Quantity: 4})

	w := handlertest.Do(r, http.MethodPost, "/api/checkout", gin.H{"address": address}, env.Token("u1", models.RoleCustomer))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body struct {
		OrderID      string `json:"order_id"`
		ClientSecret string `json:"client_secret"`
		PaymentID    string `json:"payment_id"`
	}
	require.NoError(t, handlertest.Decode(w, &body))
	assert.NotEmpty(t, body.ClientSecret)

	order, err := env.Orders.GetOrder(t.Context(), body.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, body.PaymentID, order.PaymentIntentID)
	assert.True(t, order.Subtotal.Equal(dec("500")))
	assert.True(t, order.Shipping.IsZero())
	assert.True(t, order.Tax.Equal(dec("100")))
	assert.Equal(t, "SE", order.Address.Country)
	assert.Equal(t, "u1@example.com", order.Email)

	// Le stock n'est décrémenté qu'au paiement.
	p, _ := env.Products.GetProduct(t.Context(), cup.ID.String())
	assert.Equal(t, 10, p.Stock)
}

func TestCheckoutPaymentFailureCancelsOrder(t *testing.T) {
	env, r := setup(t)
	env.Payments.Fail = true
	cup := env.AddProduct("kopp", "125", 10)
	fillCart(t, env, "u1", models.CartItem{ProductID: cup.ID.String(), Quantity: 1})

	w := handlertest.Do(r, http.MethodPost, "/api/checkout", gin.H{"address": address}, env.Token("u1", models.RoleCustomer))
	assert.Equal(t, http.StatusBadGateway, w.Code)

	orders, _ := env.Orders.ListOrdersByUser(t.Context(), "u1")
	require.Len(t, orders, 1)
	assert.Equal(t, models.OrderStatusCancelled, orders[0].Status)
}

func TestCheckoutRejectsInvalidAddress(t *testing.T) {
	env, r := setup(t)
	bad := address
	bad.Country = "Sweden"
	w := handlertest.Do(r, http.MethodPost, "/api/checkout", gin.H{"address": bad}, env.Token("u1", models.RoleCustomer))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookFulfillsOrderOnce(t *testing.T) {
	env, r := setup(t)
	cup := env.AddProduct("kopp", "125", 10)
	fillCart(t, env, "u1", models.CartItem{ProductID: cup.ID.String(), Quantity: 3})

	w := handlertest.Do(r, http.MethodPost, "/api/checkout", gin.H{"address": address}, env.Token("u1", models.RoleCustomer))
	require.Equal(t, http.StatusCreated, w.Code)
	var body struct {
		OrderID   string `json:"order_id"`
		PaymentID string `json:"payment_id"`
	}
	require.NoError(t, handlertest.Decode(w, &body))

	event := fmt.Sprintf(`{"type":"payment_intent.succeeded","payment_intent_id":%q}`, body.PaymentID)
	for i := 0; i < 2; i++ {
		w = handlertest.Do(r, http.MethodPost, "/api/webhooks/stripe", event, "")
		require.Equal(t, http.StatusOK, w.Code)
	}

	order, err := env.Orders.GetOrder(t.Context(), body.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, order.Status)

	p, _ := env.Products.GetProduct(t.Context(), cup.ID.String())
	assert.Equal(t, 7, p.Stock)

	cart, _ := env.Carts.GetCart(t.Context(), "u1")
	assert.Empty(t, cart.Items)

	confirmations, _ := env.Mailer.Count()
	assert.Equal(t, 1, confirmations)
}

func TestWebhookSignatureAndUnknownOrder(t *testing.T) {
	_, r := setup(t)
	req := `{"type":"payment_intent.succeeded","payment_intent_id":"pi_x"}`

	rec := handlertest.Do(r, http.MethodPost, "/api/webhooks/stripe", req, "")
	assert.Equal(t, http.StatusOK, rec.Code, "unknown order is acknowledged")

	w := handlertest.Do(withSignature(r, "bad"), http.MethodPost, "/api/webhooks/stripe", req, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type signed struct {
	next      http.Handler
	signature string
}

func (s signed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Header.Set("Stripe-Signature", s.signature)
	s.next.ServeHTTP(w, r)
}

func withSignature(h http.Handler, signature string) http.Handler {
	return signed{next: h, signature: signature}
}
