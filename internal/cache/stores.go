package cache

import (
	"context"

	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/store"
)

const settingsKey = "settings:site"

func productKey(id string) string {
	return "product:" + id
}

// Products ajoute un cache Redis en lecture devant un store.ProductStore.
type Products struct {
	store.ProductStore
	cache *Cache
}

func NewProducts(next store.ProductStore, c *Cache) *Products {
	return &Products{ProductStore: next, cache: c}
}

func (p *Products) GetProduct(ctx context.Context, id string) (models.Product, error) {
	var cached models.Product
	if p.cache.GetJSON(ctx, productKey(id), &cached) {
		return cached, nil
	}

	product, err := p.ProductStore.GetProduct(ctx, id)
	if err != nil {
		return product, err
	}
	if err := p.cache.SetJSON(ctx, productKey(id), product, ProductCacheTTL); err != nil {
		logger.L().Warnf("⚠️ Mise en cache produit %s impossible: %v", id, err)
	}
	return product, nil
}

func (p *Products) SaveProduct(ctx context.Context, product models.Product) error {
	if err := p.ProductStore.SaveProduct(ctx, product); err != nil {
		return err
	}
	p.invalidate(ctx, product.ID.String())
	return nil
}

func (p *Products) DeleteProduct(ctx context.Context, id string) error {
	if err := p.ProductStore.DeleteProduct(ctx, id); err != nil {
		return err
	}
	p.invalidate(ctx, id)
	return nil
}

func (p *Products) DecrementStock(ctx context.Context, id string, quantity int) error {
	err := p.ProductStore.DecrementStock(ctx, id, quantity)
	p.invalidate(ctx, id)
	return err
}

func (p *Products) invalidate(ctx context.Context, id string) {
	if err := p.cache.Delete(ctx, productKey(id)); err != nil {
		logger.L().Warnf("⚠️ Invalidation cache produit %s impossible: %v", id, err)
	}
}

// Settings ajoute un cache Redis devant un store.SettingsStore.
type Settings struct {
	next  store.SettingsStore
	cache *Cache
}

func NewSettings(next store.SettingsStore, c *Cache) *Settings {
	return &Settings{next: next, cache: c}
}

func (s *Settings) GetSettings(ctx context.Context) (models.SiteSettings, error) {
	var cached models.SiteSettings
	if s.cache.GetJSON(ctx, settingsKey, &cached) {
		return cached, nil
	}

	settings, err := s.next.GetSettings(ctx)
	if err != nil {
		return settings, err
	}
	if err := s.cache.SetJSON(ctx, settingsKey, settings, SettingsCacheTTL); err != nil {
		logger.L().Warnf("⚠️ Mise en cache paramètres impossible: %v", err)
	}
	return settings, nil
}

func (s *Settings) SaveSettings(ctx context.Context, settings models.SiteSettings) error {
	if err := s.next.SaveSettings(ctx, settings); err != nil {
		return err
	}
	return s.cache.Delete(ctx, settingsKey)
}
