package middleware

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/store"
	"storefront_back_end/internal/utils"
)

// AuditPriceChanges journalise l'ancien et le nouveau prix quand une mise à jour
// produit modifie le prix.
func AuditPriceChanges(products store.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Next()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		var input struct {
			Price *decimal.Decimal `json:"price"`
		}
		productID := c.Param("id")
		if json.Unmarshal(bodyBytes, &input) != nil || input.Price == nil || productID == "" {
			c.Next()
			return
		}

		before, err := products.GetProduct(c.Request.Context(), productID)
		if err != nil {
			c.Next()
			return
		}

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 && !before.Price.Equal(*input.Price) {
			utils.LogAction(c, utils.ActionProductPriceChange, utils.ResourceProduct, productID)
			logger.L().Infof("💰 Changement de prix audité: produit %s (%s → %s)",
				productID, before.Price.StringFixed(2), input.Price.StringFixed(2))
		}
	}
}

// AuditAction journalise une action d'administration, réussie ou non.
func AuditAction(action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		resourceID := c.Param("id")
		if resourceID == "" {
			resourceID = c.Param("code")
		}
		if resourceID == "" {
			resourceID = c.GetString("audit_resource_id")
		}

		if c.Writer.Status() >= 200 && c.Writer.Status() < 300 {
			utils.LogAction(c, action, resource, resourceID)
		} else {
			utils.LogFailedAction(c, action, resource, resourceID, c.Writer.Status())
		}
	}
}
