package services

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v83/webhook"

	"storefront_back_end/internal/models"
)

func TestObjectKey(t *testing.T) {
	key := ObjectKey("/hero/", "Banner.JPG")
	assert.True(t, strings.HasPrefix(key, "hero/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.Len(t, key, len("hero/")+36+len(".jpg"))
	assert.NotEqual(t, key, ObjectKey("hero", "Banner.JPG"))
}

func TestCheckImage(t *testing.T) {
	assert.NoError(t, CheckImage("image/png", "a.png"))
	assert.NoError(t, CheckImage("IMAGE/JPEG", "a.JPEG"))
	assert.ErrorIs(t, CheckImage("application/pdf", "a.png"), ErrNotImage)
	assert.ErrorIs(t, CheckImage("image/png", "a.exe"), ErrNotImage)
}

func TestBuildSearchQuery(t *testing.T) {
	raw, err := json.Marshal(buildSearchQuery("kopp", 20))
	require.NoError(t, err)

	s := string(raw)
	assert.Contains(t, s, `"query":"kopp"`)
	assert.Contains(t, s, `"names.*^3"`)
	assert.Contains(t, s, `"is_active":true`)
	assert.Contains(t, s, `"size":20`)
}

func TestDecodeSearchIDs(t *testing.T) {
	body := `{"hits":{"hits":[{"_source":{"id":"a"}},{"_source":{}},{"_source":{"id":"b"}}]}}`
	ids, err := decodeSearchIDs(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	_, err = decodeSearchIDs(strings.NewReader("{"))
	assert.Error(t, err)
}

func TestIntentParams(t *testing.T) {
	id := gocql.TimeUUID()
	params := IntentParams(models.Order{
		ID:       id,
		UserID:   "u1",
		Email:    "kund@example.com",
		Total:    decimal.RequireFromString("299.495"),
		Currency: "SEK",
	})

	assert.Equal(t, int64(29950), *params.Amount)
	assert.Equal(t, "sek", *params.Currency)
	assert.Equal(t, id.String(), params.Metadata["order_id"])
	assert.Equal(t, "order-"+id.String(), *params.IdempotencyKey)
}

const succeededEvent = `{
	"id": "evt_1",
	"object": "event",
	"type": "payment_intent.succeeded",
	"data": {"object": {"id": "pi_123", "object": "payment_intent", "metadata": {"order_id": "o-1"}}}
}`

func TestParseWebhookUnsigned(t *testing.T) {
	p := &StripePayments{allowUnsigned: true}
	ev, err := p.ParseWebhook([]byte(succeededEvent), "")
	require.NoError(t, err)

	assert.Equal(t, EventPaymentSucceeded, ev.Type)
	assert.Equal(t, "pi_123", ev.PaymentIntentID)
	assert.Equal(t, "o-1", ev.OrderID)

	_, err = p.ParseWebhook([]byte("not json"), "")
	assert.Error(t, err)
}

func TestParseWebhookSigned(t *testing.T) {
	p := &StripePayments{webhookSecret: "whsec_test"}

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(succeededEvent),
		Secret:    "whsec_test",
		Timestamp: time.Now(),
	})
	ev, err := p.ParseWebhook(signed.Payload, signed.Header)
	require.NoError(t, err)
	assert.Equal(t, "pi_123", ev.PaymentIntentID)

	_, err = p.ParseWebhook([]byte(succeededEvent), "t=1,v1=bad")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestParseWebhookRejectsUnsignedWithoutSecret(t *testing.T) {
	p := NewStripePayments("sk_test_x", "", false)

	_, err := p.ParseWebhook([]byte(succeededEvent), "")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = p.ParseWebhook([]byte(succeededEvent), "t=1,v1=forged")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestParseWebhookIgnoresOtherObjects(t *testing.T) {
	p := &StripePayments{allowUnsigned: true}
	ev, err := p.ParseWebhook([]byte(`{"id":"evt_2","type":"customer.created","data":{"object":{"id":"cus_1"}}}`), "")
	require.NoError(t, err)
	assert.Equal(t, "customer.created", ev.Type)
	assert.Empty(t, ev.PaymentIntentID)
}
