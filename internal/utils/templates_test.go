package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront_back_end/internal/models"
)

func sampleOrder() models.Order {
	id, _ := gocql.ParseUUID("3f0b7c2e-8a1d-4e55-9c3b-1f2e3d4c5b6a")
	return models.Order{
		ID:     id,
		Email:  "kund@example.com",
		Status: models.OrderStatusPaid,
		Items: []models.OrderItem{
			{Name: "Tea cup", Price: decimal.RequireFromString("125"), Quantity: 2},
		},
		Address:      models.Address{Name: "Kim", Street: "Storgatan 1", City: "Malmö", PostalCode: "211 22", Country: "SE"},
		Subtotal:     decimal.RequireFromString("250"),
		Shipping:     decimal.RequireFromString("49"),
		Total:        decimal.RequireFromString("299"),
		Tax:          decimal.RequireFromString("59.80"),
		TotalExclTax: decimal.RequireFromString("239.20"),
		TaxRate:      decimal.RequireFromString("0.25"),
		Currency:     "SEK",
		Locale:       "sv",
		CreatedAt:    time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
}

func TestShortOrderID(t *testing.T) {
	assert.Equal(t, "3F0B7C2E", ShortOrderID(sampleOrder()))
}

func TestRenderOrderConfirmation(t *testing.T) {
	html, err := RenderOrderConfirmation(sampleOrder(), "Butiken")
	require.NoError(t, err)

	assert.Contains(t, html, "#3F0B7C2E")
	assert.Contains(t, html, "250.00 SEK")
	assert.Contains(t, html, "299.00 SEK")
	assert.Contains(t, html, "VAT (25 %): 59.80 SEK")
	assert.Contains(t, html, "2026-03-14")
	assert.Contains(t, html, "Malmö")
}

func TestRenderOrderStatus(t *testing.T) {
	order := sampleOrder()
	order.Status = models.OrderStatusShipped

	html, err := RenderOrderStatus(order, "Butiken")
	require.NoError(t, err)
	assert.Contains(t, html, "<strong>shipped</strong>")
}

func TestInvoiceRenderHTML(t *testing.T) {
	r := &InvoiceRenderer{StoreName: "Butiken"}
	html, err := r.RenderHTML(sampleOrder())
	require.NoError(t, err)

	// 125 TTC à 25 % → 100 HT
	assert.Contains(t, html, "100.00 SEK")
	assert.Contains(t, html, "200.00 SEK")
	assert.Contains(t, html, "239.20 SEK")
	assert.False(t, strings.Contains(html, "data:image/png"))

	r.IBAN, r.BIC = "SE4550000000058398257466", "ESSESESS"
	html, err = r.RenderHTML(sampleOrder())
	require.NoError(t, err)
	assert.Contains(t, html, "data:image/png;base64,")
}

func TestMailerBuildMessage(t *testing.T) {
	m := &Mailer{from: "shop@example.com"}
	msg, err := m.BuildMessage("kund@example.com", "Hej", "<p>hej</p>", Attachment{Name: "a.pdf", Data: []byte("%PDF")}, Attachment{Name: "empty.pdf"})
	require.NoError(t, err)
	assert.Len(t, msg.GetAttachments(), 1)

	_, err = m.BuildMessage("not-an-email", "Hej", "<p>hej</p>")
	assert.Error(t, err)
}

func TestNilMailerIsNoop(t *testing.T) {
	var m *Mailer
	assert.NoError(t, m.Send("kund@example.com", "x", "y"))
	assert.NoError(t, m.SendOrderConfirmation(sampleOrder(), "Butiken", nil))
}
