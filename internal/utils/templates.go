package utils

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/shopspring/decimal"

	"storefront_back_end/internal/models"
)

var templateFuncs = template.FuncMap{
	"money": func(d decimal.Decimal, currency string) string {
		return d.StringFixed(2) + " " + currency
	},
	"percent": func(d decimal.Decimal) string {
		return d.Shift(2).StringFixed(0) + " %"
	},
	"date": func(o models.Order) string {
		return o.CreatedAt.Format("2006-01-02")
	},
}

var orderConfirmationTmpl = template.Must(template.New("confirmation").Funcs(templateFuncs).Parse(`<!DOCTYPE html>
<html lang="{{.Order.Locale}}">
<head><meta charset="UTF-8"><title>{{.StoreName}}</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Thank you for your order</h2>
		<p>Order <strong>#{{.ShortID}}</strong> placed on {{date .Order}}.</p>
		<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 8px; text-align: left;">Product</th>
					<th style="padding: 8px; text-align: right;">Qty</th>
					<th style="padding: 8px; text-align: right;">Price</th>
					<th style="padding: 8px; text-align: right;">Total</th>
				</tr>
			</thead>
			<tbody>
			{{- range .Order.Items}}
				<tr>
					<td style="padding: 8px;">{{.Name}}</td>
					<td style="padding: 8px; text-align: right;">{{.Quantity}}</td>
					<td style="padding: 8px; text-align: right;">{{money .Price $.Order.Currency}}</td>
					<td style="padding: 8px; text-align: right;">{{money .LineTotal $.Order.Currency}}</td>
				</tr>
			{{- end}}
			</tbody>
		</table>
		<p>Subtotal: {{money .Order.Subtotal .Order.Currency}}</p>
		<p>Shipping: {{money .Order.Shipping .Order.Currency}}</p>
		<p><strong>Total: {{money .Order.Total .Order.Currency}}</strong></p>
		<p style="color: #777;">of which VAT ({{percent .Order.TaxRate}}): {{money .Order.Tax .Order.Currency}}</p>
		<h3>Delivery address</h3>
		<p>{{.Order.Address.Name}}<br>{{.Order.Address.Street}}<br>{{.Order.Address.PostalCode}} {{.Order.Address.City}}<br>{{.Order.Address.Country}}</p>
	</div>
</body>
</html>`))

var orderStatusTmpl = template.Must(template.New("status").Funcs(templateFuncs).Parse(`<!DOCTYPE html>
<html lang="{{.Order.Locale}}">
<head><meta charset="UTF-8"><title>{{.StoreName}}</title></head>
<body style="font-family: Arial, sans-serif; padding: 20px;">
	<h2>{{.StoreName}}</h2>
	<p>Your order <strong>#{{.ShortID}}</strong> is now <strong>{{.Order.Status}}</strong>.</p>
	<p>Total: {{money .Order.Total .Order.Currency}}</p>
</body>
</html>`))

type orderTemplateData struct {
	Order     models.Order
	StoreName string
	ShortID   string
	QRCode    template.URL
	IBAN      string
	BIC       string
}

// ShortOrderID retourne les 8 premiers caractères de l'identifiant, en majuscules.
func ShortOrderID(order models.Order) string {
	id := order.ID.String()
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

func RenderOrderConfirmation(order models.Order, storeName string) (string, error) {
	var buf bytes.Buffer
	err := orderConfirmationTmpl.Execute(&buf, orderTemplateData{Order: order, StoreName: storeName, ShortID: ShortOrderID(order)})
	return buf.String(), err
}

func RenderOrderStatus(order models.Order, storeName string) (string, error) {
	var buf bytes.Buffer
	err := orderStatusTmpl.Execute(&buf, orderTemplateData{Order: order, StoreName: storeName, ShortID: ShortOrderID(order)})
	return buf.String(), err
}
