package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/utils"
)

// Revocations indique si un token a été révoqué (logout).
type Revocations interface {
	IsTokenBlacklisted(ctx context.Context, tokenID string) bool
}

// AuthRequired vérifie le JWT "Authorization: Bearer <token>" et place les claims
// dans le contexte gin (user_id, email, role, token_id, token_exp).
func AuthRequired(tokens *utils.TokenManager, revoked Revocations) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token manquant"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Format Authorization invalide"})
			return
		}

		claims, err := tokens.Parse(parts[1])
		if err != nil {
			logger.L().Debugf("❌ JWT refusé: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token invalide"})
			return
		}

		if revoked != nil && revoked.IsTokenBlacklisted(c.Request.Context(), claims.ID) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token révoqué"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		c.Set("token_id", claims.ID)
		if claims.ExpiresAt != nil {
			c.Set("token_exp", claims.ExpiresAt.Time)
		}
		c.Next()
	}
}
