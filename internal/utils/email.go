package utils

import (
	"bytes"
	"fmt"

	"github.com/wneessen/go-mail"

	"storefront_back_end/internal/config"
	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/models"
)

// Mailer envoie les e-mails transactionnels via SMTP.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewMailer retourne nil si SMTP_HOST n'est pas configuré.
func NewMailer(cfg *config.Config) *Mailer {
	if cfg.SMTPHost == "" {
		logger.L().Warn("⚠️ SMTP_HOST absent — e-mails désactivés")
		return nil
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.MailFrom,
	}
}

// Attachment est une pièce jointe en mémoire.
type Attachment struct {
	Name string
	Data []byte
}

// BuildMessage prépare le message sans l'envoyer.
func (m *Mailer) BuildMessage(to, subject, htmlBody string, attachments ...Attachment) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, err
	}
	if err := msg.To(to); err != nil {
		return nil, err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	for _, a := range attachments {
		if len(a.Data) == 0 {
			continue
		}
		if err := msg.AttachReader(a.Name, bytes.NewReader(a.Data)); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

// Send envoie un e-mail HTML.
func (m *Mailer) Send(to, subject, htmlBody string, attachments ...Attachment) error {
	if m == nil {
		return nil
	}

	msg, err := m.BuildMessage(to, subject, htmlBody, attachments...)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(m.username),
		mail.WithPassword(m.password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	logger.L().Infof("📤 Envoi de l'e-mail à %s", to)
	return client.DialAndSend(msg)
}

// SendOrderConfirmation envoie la confirmation de commande, facture PDF jointe si disponible.
func (m *Mailer) SendOrderConfirmation(order models.Order, storeName string, invoicePDF []byte) error {
	if m == nil {
		return nil
	}
	html, err := RenderOrderConfirmation(order, storeName)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("%s — order confirmation #%s", storeName, ShortOrderID(order))
	return m.Send(order.Email, subject, html, Attachment{Name: "invoice-" + ShortOrderID(order) + ".pdf", Data: invoicePDF})
}

// SendOrderStatus prévient le client d'un changement de statut.
func (m *Mailer) SendOrderStatus(order models.Order, storeName string) error {
	if m == nil {
		return nil
	}
	html, err := RenderOrderStatus(order, storeName)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("%s — order #%s is %s", storeName, ShortOrderID(order), order.Status)
	return m.Send(order.Email, subject, html)
}
