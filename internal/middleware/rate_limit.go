package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"storefront_back_end/internal/logger"
)

const (
	LoginMaxAttempts    = 5
	LoginWindow         = 15 * time.Minute
	RegisterMaxAttempts = 3
	RegisterWindow      = 30 * time.Minute
	APIMaxRequests      = 100
	APIWindow           = time.Minute
	CartMaxRequests     = 20
	SearchMaxRequests   = 30
)

// Counter incrémente un compteur à fenêtre fixe et retourne sa valeur.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// counterClient est le sous-ensemble de *redis.Client utilisé par RedisCounter.
type counterClient interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisCounter implémente Counter avec INCR puis EXPIRE au premier hit de la fenêtre.
type RedisCounter struct {
	Client counterClient
}

func (r RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, err := r.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := r.Client.Expire(ctx, key, window).Err(); err != nil {
			// Une clé sans TTL bloquerait l'utilisateur indéfiniment.
			r.Client.Del(ctx, key)
			return 0, err
		}
	}
	return n, nil
}

// RateLimit limite à max requêtes par fenêtre, par utilisateur connecté ou par IP.
// Une panne Redis laisse passer la requête.
func RateLimit(counter Counter, prefix string, max int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		who := c.GetString("user_id")
		if who == "" {
			who = c.ClientIP()
		}
		key := "ratelimit:" + prefix + ":" + who

		n, err := counter.Incr(c.Request.Context(), key, window)
		if err != nil {
			logger.L().Warnf("⚠️ Rate limit indisponible (%s): %v", prefix, err)
			c.Next()
			return
		}

		remaining := max - n
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", max))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if n > max {
			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Trop de requêtes. Réessayez plus tard",
				"retry_after": int(window.Seconds()),
			})
			return
		}
		c.Next()
	}
}

func LoginRateLimit(counter Counter) gin.HandlerFunc {
	return RateLimit(counter, "login", LoginMaxAttempts, LoginWindow)
}

func RegisterRateLimit(counter Counter) gin.HandlerFunc {
	return RateLimit(counter, "register", RegisterMaxAttempts, RegisterWindow)
}

func APIRateLimit(counter Counter) gin.HandlerFunc {
	return RateLimit(counter, "api", APIMaxRequests, APIWindow)
}

func CartRateLimit(counter Counter) gin.HandlerFunc {
	return RateLimit(counter, "cart", CartMaxRequests, time.Minute)
}

func SearchRateLimit(counter Counter) gin.HandlerFunc {
	return RateLimit(counter, "search", SearchMaxRequests, time.Minute)
}
