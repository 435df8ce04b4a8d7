package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"

	"storefront_back_end/internal/models"
)

const settingsRowID = "default"

// SettingsRepository lit et écrit l'unique ligne de paramètres boutique.
type SettingsRepository struct {
	session *gocql.Session
}

func NewSettingsRepository(session *gocql.Session) *SettingsRepository {
	return &SettingsRepository{session: session}
}

func (r *SettingsRepository) GetSettings(ctx context.Context) (models.SiteSettings, error) {
	var (
		s       models.SiteSettings
		taxRate string
	)
	err := r.session.Query(`SELECT store_name, tax_rate, currency, default_locale, contact_email, maintenance_mode, updated_at
		FROM site_settings WHERE id = ?`, settingsRowID).WithContext(ctx).
		Scan(&s.StoreName, &taxRate, &s.Currency, &s.DefaultLocale, &s.ContactEmail, &s.MaintenanceMode, &s.UpdatedAt)
	if errors.Is(err, gocql.ErrNotFound) {
		return models.SiteSettings{}, ErrNotFound
	}
	if err != nil {
		return models.SiteSettings{}, fmt.Errorf("lecture paramètres: %w", err)
	}

	if taxRate != "" {
		if d, err := decimal.NewFromString(taxRate); err == nil {
			s.TaxRate = &d
		}
	}
	return s, nil
}

func (r *SettingsRepository) SaveSettings(ctx context.Context, s models.SiteSettings) error {
	taxRate := ""
	if s.TaxRate != nil {
		taxRate = s.TaxRate.String()
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now()
	}
	err := r.session.Query(`INSERT INTO site_settings (id, store_name, tax_rate, currency, default_locale, contact_email, maintenance_mode, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		settingsRowID, s.StoreName, taxRate, s.Currency, s.DefaultLocale, s.ContactEmail, s.MaintenanceMode, s.UpdatedAt).
		WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("enregistrement paramètres: %w", err)
	}
	return nil
}
