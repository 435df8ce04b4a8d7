package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront_back_end/internal/models"
	"storefront_back_end/internal/pricing"
	"storefront_back_end/internal/store"
	"storefront_back_end/internal/store/storetest"
)

func TestResolveRegionForCountry(t *testing.T) {
	ctx := context.Background()
	regions := storetest.NewRegions(
		pricing.ShippingRegion{Code: "SE", BasePrice: decimal.NewFromInt(49), Active: true},
		pricing.ShippingRegion{Code: "EU", Countries: []string{"DE"}, BasePrice: decimal.NewFromInt(129), Active: true},
	)

	r, err := store.ResolveRegionForCountry(ctx, regions, "de")
	require.NoError(t, err)
	assert.Equal(t, "EU", r.Code)

	_, err = store.ResolveRegionForCountry(ctx, regions, "US")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTaxRateFallsBackToDefault(t *testing.T) {
	ctx := context.Background()

	assert.True(t, store.TaxRate(ctx, storetest.NewSettings(nil)).Equal(pricing.DefaultTaxRate()))
	assert.True(t, store.TaxRate(ctx, storetest.NewSettings(&models.SiteSettings{StoreName: "x"})).Equal(pricing.DefaultTaxRate()))

	rate := decimal.RequireFromString("0.12")
	assert.True(t, store.TaxRate(ctx, storetest.NewSettings(&models.SiteSettings{TaxRate: &rate})).Equal(rate))
}

func TestSortHeroImages(t *testing.T) {
	now := time.Now()
	images := []models.HeroImage{
		{ID: gocql.TimeUUID(), Position: 2, CreatedAt: now},
		{ID: gocql.TimeUUID(), Position: 1, CreatedAt: now.Add(time.Minute)},
		{ID: gocql.TimeUUID(), Position: 1, CreatedAt: now},
	}
	first, second := images[2].ID, images[1].ID

	store.SortHeroImages(images)

	assert.Equal(t, first, images[0].ID)
	assert.Equal(t, second, images[1].ID)
	assert.Equal(t, 2, images[2].Position)
}
