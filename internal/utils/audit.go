package utils

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront_back_end/internal/logger"
)

// Actions d'audit admin.
const (
	ActionProductCreate      = "product.create"
	ActionProductUpdate      = "product.update"
	ActionProductDelete      = "product.delete"
	ActionProductPriceChange = "product.price_change"
	ActionProductImage       = "product.image"
	ActionOrderStatus        = "order.status"
	ActionRegionSave         = "shipping_region.save"
	ActionRegionDelete       = "shipping_region.delete"
	ActionSettingsUpdate     = "settings.update"
	ActionHeroCreate         = "hero.create"
	ActionHeroUpdate         = "hero.update"
	ActionHeroDelete         = "hero.delete"
)

const (
	ResourceProduct  = "product"
	ResourceOrder    = "order"
	ResourceRegion   = "shipping_region"
	ResourceSettings = "settings"
	ResourceHero     = "hero_image"
)

func auditFields(c *gin.Context, action, resource, resourceID string) []zap.Field {
	return []zap.Field{
		zap.String("action", action),
		zap.String("resource", resource),
		zap.String("resource_id", resourceID),
		zap.String("user_id", c.GetString("user_id")),
		zap.String("email", c.GetString("email")),
		zap.String("ip", c.ClientIP()),
	}
}

// LogAction journalise une action d'administration avec l'auteur et la cible.
func LogAction(c *gin.Context, action, resource, resourceID string) {
	logger.L().Desugar().Info("🛡️ audit", auditFields(c, action, resource, resourceID)...)
}

// LogFailedAction journalise une action refusée ou échouée.
func LogFailedAction(c *gin.Context, action, resource, resourceID string, status int) {
	fields := append(auditFields(c, action, resource, resourceID), zap.Int("status", status))
	logger.L().Desugar().Warn("🛡️ audit échec", fields...)
}
