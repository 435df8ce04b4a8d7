package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"

	"storefront_back_end/internal/pricing"
)

// RegionRepository stocke les régions de livraison dans ScyllaDB.
type RegionRepository struct {
	session *gocql.Session
}

func NewRegionRepository(session *gocql.Session) *RegionRepository {
	return &RegionRepository{session: session}
}

const regionColumns = `code, name, countries, base_price, free_shipping_threshold, shipping_thresholds, active`

func decodeRegion(r pricing.ShippingRegion, basePrice, freeThreshold, thresholds string) (pricing.ShippingRegion, error) {
	r.BasePrice = decimalOrZero(basePrice)
	if freeThreshold != "" {
		if d, err := decimal.NewFromString(freeThreshold); err == nil {
			r.FreeShippingThreshold = &d
		}
	}
	if thresholds != "" {
		if err := json.Unmarshal([]byte(thresholds), &r.ShippingThresholds); err != nil {
			return r, fmt.Errorf("décodage paliers région %s: %w", r.Code, err)
		}
		pricing.SortThresholds(r.ShippingThresholds)
	}
	return r, nil
}

func (repo *RegionRepository) ListRegions(ctx context.Context) ([]pricing.ShippingRegion, error) {
	iter := repo.session.Query(`SELECT ` + regionColumns + ` FROM shipping_regions`).WithContext(ctx).Iter()

	var regions []pricing.ShippingRegion
	for {
		var (
			r                                   pricing.ShippingRegion
			basePrice, freeThreshold, thresholds string
		)
		if !iter.Scan(&r.Code, &r.Name, &r.Countries, &basePrice, &freeThreshold, &thresholds, &r.Active) {
			break
		}
		decoded, err := decodeRegion(r, basePrice, freeThreshold, thresholds)
		if err != nil {
			continue
		}
		regions = append(regions, decoded)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture régions: %w", err)
	}

	sort.Slice(regions, func(i, j int) bool { return regions[i].Code < regions[j].Code })
	return regions, nil
}

func (repo *RegionRepository) GetRegion(ctx context.Context, code string) (pricing.ShippingRegion, error) {
	var (
		r                                    pricing.ShippingRegion
		basePrice, freeThreshold, thresholds string
	)
	err := repo.session.Query(`SELECT `+regionColumns+` FROM shipping_regions WHERE code = ?`, strings.ToUpper(code)).
		WithContext(ctx).Scan(&r.Code, &r.Name, &r.Countries, &basePrice, &freeThreshold, &thresholds, &r.Active)
	if errors.Is(err, gocql.ErrNotFound) {
		return pricing.ShippingRegion{}, ErrNotFound
	}
	if err != nil {
		return pricing.ShippingRegion{}, err
	}
	return decodeRegion(r, basePrice, freeThreshold, thresholds)
}

// SaveRegion enregistre une région; les paliers sont triés avant écriture.
func (repo *RegionRepository) SaveRegion(ctx context.Context, r pricing.ShippingRegion) error {
	pricing.SortThresholds(r.ShippingThresholds)

	thresholds := ""
	if len(r.ShippingThresholds) > 0 {
		data, err := json.Marshal(r.ShippingThresholds)
		if err != nil {
			return err
		}
		thresholds = string(data)
	}
	freeThreshold := ""
	if r.FreeShippingThreshold != nil {
		freeThreshold = r.FreeShippingThreshold.String()
	}

	countries := make([]string, 0, len(r.Countries))
	for _, c := range r.Countries {
		countries = append(countries, strings.ToUpper(strings.TrimSpace(c)))
	}

	err := repo.session.Query(`INSERT INTO shipping_regions (`+regionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		strings.ToUpper(r.Code), r.Name, countries, r.BasePrice.String(), freeThreshold, thresholds, r.Active).
		WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("enregistrement région %s: %w", r.Code, err)
	}
	return nil
}

func (repo *RegionRepository) DeleteRegion(ctx context.Context, code string) error {
	return repo.session.Query(`DELETE FROM shipping_regions WHERE code = ?`, strings.ToUpper(code)).
		WithContext(ctx).Exec()
}
