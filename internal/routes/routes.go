package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"storefront_back_end/internal/handlers"
	"storefront_back_end/internal/handlers/admin"
	"storefront_back_end/internal/handlers/payment"
	"storefront_back_end/internal/handlers/product"
	"storefront_back_end/internal/handlers/site"
	"storefront_back_end/internal/handlers/user"
	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/middleware"
	"storefront_back_end/internal/utils"
)

// Options configure les middlewares transverses.
// Sans Counter, le rate limiting est désactivé.
type Options struct {
	CORSOrigins []string
	Counter     middleware.Counter
}

func RegisterRoutes(r *gin.Engine, d *handlers.Deps, opts Options) {
	r.Use(logger.GinLogger(), gin.Recovery())
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))
	r.Use(middleware.Locale(d.Locales, d.Settings))

	limit := func(build func(middleware.Counter) gin.HandlerFunc) gin.HandlerFunc {
		if opts.Counter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return build(opts.Counter)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	products := product.New(d)
	siteH := site.New(d)
	pay := payment.New(d)
	users := user.New(d)
	adm := admin.New(d)
	auth := middleware.AuthRequired(d.Tokens, revocations(d))

	// Webhook Stripe: hors rate limit, authentifié par signature.
	r.POST("/api/webhooks/stripe", pay.StripeWebhook)

	api := r.Group("/api", limit(middleware.APIRateLimit))
	{
		// Catalogue public
		api.GET("/products", products.List)
		api.GET("/products/search", limit(middleware.SearchRateLimit), products.SearchProducts)
		api.GET("/products/:id", products.Get)
		api.GET("/hero", siteH.Hero)
		api.GET("/settings", siteH.Settings)
		api.GET("/shipping/regions", pay.Regions)
		api.GET("/shipping/quote", pay.ShippingQuote)

		// Authentification
		api.POST("/auth/register", limit(middleware.RegisterRateLimit), users.Register)
		api.POST("/auth/login", limit(middleware.LoginRateLimit), users.Login)
	}

	account := api.Group("", auth)
	{
		account.GET("/auth/me", users.Me)
		account.POST("/auth/logout", users.Logout)

		cart := account.Group("/cart")
		cart.GET("", users.GetCart)
		cart.GET("/ws", users.CartWebSocket)
		cart.POST("", limit(middleware.CartRateLimit), users.AddToCart)
		cart.DELETE("", users.ClearCart)
		cart.PUT("/:productId", limit(middleware.CartRateLimit), users.UpdateCartItem)
		cart.DELETE("/:productId", users.RemoveFromCart)

		account.GET("/wishlist", users.GetWishlist)
		account.POST("/wishlist", users.AddToWishlist)
		account.DELETE("/wishlist/:productId", users.RemoveFromWishlist)

		account.POST("/checkout/summary", pay.CheckoutSummary)
		account.POST("/checkout", pay.Checkout)

		account.GET("/orders", users.ListOrders)
		account.GET("/orders/:id", users.GetOrder)
		account.GET("/orders/:id/invoice", users.Invoice)
	}

	back := api.Group("/admin", auth, middleware.RequireAdmin)
	{
		back.GET("/products", adm.ListProducts)
		back.POST("/products", middleware.AuditAction(utils.ActionProductCreate, utils.ResourceProduct), adm.CreateProduct)
		back.PUT("/products/:id",
			middleware.AuditAction(utils.ActionProductUpdate, utils.ResourceProduct),
			middleware.AuditPriceChanges(d.Products),
			adm.UpdateProduct)
		back.DELETE("/products/:id", middleware.AuditAction(utils.ActionProductDelete, utils.ResourceProduct), adm.DeleteProduct)
		back.POST("/products/:id/images", middleware.AuditAction(utils.ActionProductImage, utils.ResourceProduct), adm.UploadProductImage)
		back.DELETE("/products/:id/images", middleware.AuditAction(utils.ActionProductImage, utils.ResourceProduct), adm.DeleteProductImage)

		back.GET("/orders", adm.ListOrders)
		back.PUT("/orders/:id/status", middleware.AuditAction(utils.ActionOrderStatus, utils.ResourceOrder), adm.UpdateOrderStatus)

		back.GET("/shipping/regions", adm.ListRegions)
		back.PUT("/shipping/regions/:code", middleware.AuditAction(utils.ActionRegionSave, utils.ResourceRegion), adm.SaveRegion)
		back.DELETE("/shipping/regions/:code", middleware.AuditAction(utils.ActionRegionDelete, utils.ResourceRegion), adm.DeleteRegion)

		back.GET("/settings", adm.GetSettings)
		back.PUT("/settings", middleware.AuditAction(utils.ActionSettingsUpdate, utils.ResourceSettings), adm.UpdateSettings)

		back.GET("/hero", adm.ListHeroImages)
		back.POST("/hero", middleware.AuditAction(utils.ActionHeroCreate, utils.ResourceHero), adm.UploadHeroImage)
		back.PUT("/hero/:id", middleware.AuditAction(utils.ActionHeroUpdate, utils.ResourceHero), adm.UpdateHeroImage)
		back.DELETE("/hero/:id", middleware.AuditAction(utils.ActionHeroDelete, utils.ResourceHero), adm.DeleteHeroImage)
	}
}

// revocations évite de passer un *cache.Cache nil derrière une interface non nil.
func revocations(d *handlers.Deps) middleware.Revocations {
	if d.Cache == nil {
		return nil
	}
	return d.Cache
}

// corsConfig autorise les origines listées, ou toutes avec "*" (sans cookies).
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept-Language", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Disposition", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
