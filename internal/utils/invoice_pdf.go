package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"net/url"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"

	"storefront_back_end/internal/models"
	"storefront_back_end/internal/pricing"
)

var invoiceTmpl = template.Must(template.New("invoice").Funcs(templateFuncs).Funcs(template.FuncMap{
	"excl": func(price, rate decimal.Decimal) decimal.Decimal {
		return pricing.RoundMoney(pricing.PriceExcludingTax(price, rate))
	},
	"lineExcl": func(item models.OrderItem, rate decimal.Decimal) decimal.Decimal {
		return pricing.RoundMoney(pricing.PriceExcludingTax(item.LineTotal(), rate))
	},
}).Parse(`<!DOCTYPE html>
<html lang="{{.Order.Locale}}">
<head>
<meta charset="UTF-8">
<style>
	body { font-family: Arial, sans-serif; font-size: 12px; margin: 32px; }
	table { width: 100%; border-collapse: collapse; }
	th, td { padding: 6px; border-bottom: 1px solid #ddd; text-align: right; }
	th:first-child, td:first-child { text-align: left; }
	.totals td { border: none; }
</style>
</head>
<body>
	<h1>{{.StoreName}}</h1>
	<p>Invoice #{{.ShortID}}, {{date .Order}}</p>
	<p>{{.Order.Address.Name}}<br>{{.Order.Address.Street}}<br>{{.Order.Address.PostalCode}} {{.Order.Address.City}}<br>{{.Order.Address.Country}}</p>
	<table>
		<thead><tr><th>Product</th><th>Qty</th><th>Unit excl. VAT</th><th>Total excl. VAT</th><th>Total incl. VAT</th></tr></thead>
		<tbody>
		{{- range .Order.Items}}
			<tr>
				<td>{{.Name}}</td>
				<td>{{.Quantity}}</td>
				<td>{{money (excl .Price $.Order.TaxRate) $.Order.Currency}}</td>
				<td>{{money (lineExcl . $.Order.TaxRate) $.Order.Currency}}</td>
				<td>{{money .LineTotal $.Order.Currency}}</td>
			</tr>
		{{- end}}
		</tbody>
	</table>
	<table class="totals">
		<tr><td>Shipping</td><td>{{money .Order.Shipping .Order.Currency}}</td></tr>
		<tr><td>Total excl. VAT</td><td>{{money .Order.TotalExclTax .Order.Currency}}</td></tr>
		<tr><td>VAT {{percent .Order.TaxRate}}</td><td>{{money .Order.Tax .Order.Currency}}</td></tr>
		<tr><td><strong>Total</strong></td><td><strong>{{money .Order.Total .Order.Currency}}</strong></td></tr>
	</table>
	{{- if .QRCode}}
	<p>Bank transfer: {{.IBAN}} / {{.BIC}}</p>
	<img src="{{.QRCode}}" width="128" height="128" alt="QR">
	{{- end}}
</body>
</html>`))

// InvoiceRenderer produit la facture PDF d'une commande avec Chrome headless.
type InvoiceRenderer struct {
	StoreName string
	IBAN      string
	BIC       string
	Timeout   time.Duration
}

// GenerateSepaQR génère un QR SEPA (EPC) en data URL PNG.
func GenerateSepaQR(iban, bic, name, ref string, amount decimal.Decimal, currency string) (string, error) {
	sepa := fmt.Sprintf("BCD\n002\n1\nSCT\n%s\n%s\n%s\n%s%s\n\n%s", bic, name, iban, currency, amount.StringFixed(2), ref)

	png, err := qrcode.Encode(sepa, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// RenderHTML retourne le HTML de la facture.
func (r *InvoiceRenderer) RenderHTML(order models.Order) (string, error) {
	data := orderTemplateData{Order: order, StoreName: r.StoreName, ShortID: ShortOrderID(order), IBAN: r.IBAN, BIC: r.BIC}

	if r.IBAN != "" {
		qr, err := GenerateSepaQR(r.IBAN, r.BIC, r.StoreName, ShortOrderID(order), order.Total, order.Currency)
		if err != nil {
			return "", err
		}
		data.QRCode = template.URL(qr)
	}

	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderPDF imprime la facture en PDF.
func (r *InvoiceRenderer) RenderPDF(ctx context.Context, order models.Order) ([]byte, error) {
	html, err := r.RenderHTML(order)
	if err != nil {
		return nil, err
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()
	ctx, cancel = context.WithTimeout(ctx, timeout)
	defer cancel()

	var pdf []byte
	err = chromedp.Run(ctx,
		chromedp.Navigate("data:text/html;charset=utf-8,"+url.PathEscape(html)),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("génération PDF: %w", err)
	}
	return pdf, nil
}
