package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront_back_end/internal/cache"
	"storefront_back_end/internal/config"
	"storefront_back_end/internal/database"
	"storefront_back_end/internal/handlers"
	"storefront_back_end/internal/handlers/user"
	"storefront_back_end/internal/locale"
	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/middleware"
	"storefront_back_end/internal/routes"
	"storefront_back_end/internal/services"
	"storefront_back_end/internal/store"
	"storefront_back_end/internal/utils"
)

func main() {
	cfg := config.Load()

	if _, err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		log.Fatalf("❌ Impossible d'initialiser le logger : %v", err)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.L().Fatalf("❌ Configuration invalide : %v", err)
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-me"
		logger.L().Warn("⚠️ JWT_SECRET absent, secret de développement utilisé")
	}

	// Montants JSON en nombres (149.5) plutôt qu'en chaînes.
	decimal.MarshalJSONWithoutQuotes = true

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conns, err := database.Connect(ctx, cfg)
	if err != nil {
		logger.L().Fatalf("❌ Connexion aux bases impossible : %v", err)
	}
	defer conns.Close()

	deps := buildDeps(cfg, conns)
	user.SetAllowedOrigins(cfg.CORSOrigins)

	r := gin.New()
	routes.RegisterRoutes(r, deps, routes.Options{
		CORSOrigins: cfg.CORSOrigins,
		Counter:     middleware.RedisCounter{Client: conns.Redis},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.L().Infof("🚀 Serveur lancé sur le port %s (%s)", cfg.Port, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatalf("❌ Serveur arrêté : %v", err)
		}
	}()

	<-ctx.Done()
	logger.L().Info("🛑 Arrêt demandé, fermeture des connexions…")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.L().Errorf("❌ Arrêt forcé : %v", err)
	}
}

// buildDeps assemble les repositories, le cache et les services optionnels.
func buildDeps(cfg *config.Config, conns *database.Connections) *handlers.Deps {
	c := cache.New(cache.RedisBackend{Client: conns.Redis})

	deps := &handlers.Deps{
		Products:    cache.NewProducts(store.NewProductRepository(conns.Scylla), c),
		Orders:      store.NewOrderRepository(conns.Scylla),
		Regions:     store.NewRegionRepository(conns.Scylla),
		Settings:    cache.NewSettings(store.NewSettingsRepository(conns.Scylla), c),
		Heroes:      store.NewHeroRepository(conns.Scylla),
		Wishlists:   store.NewWishlistRepository(conns.Scylla),
		Users:       store.NewUserRepository(conns.Scylla),
		Carts:       store.NewCartRepository(conns.Redis, cfg.CartTTL),
		Cache:       c,
		Tokens:      utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
		Locales:     locale.NewResolver(cfg.SupportedLocales, cfg.DefaultLocale),
		Currency:    cfg.Currency,
		AdminEmails: cfg.AdminEmails,
		StoreName:   cfg.StoreName,
		Invoices: &utils.InvoiceRenderer{
			StoreName: cfg.StoreName,
			IBAN:      cfg.InvoiceIBAN,
			BIC:       cfg.InvoiceBIC,
		},
	}

	if conns.MinIO != nil {
		deps.Images = services.NewImageStorage(conns.MinIO, cfg.MinIOBucket, cfg.SignedURLTTL)
	}
	if conns.Elastic != nil {
		deps.Search = services.NewSearchIndex(conns.Elastic)
	}
	if cfg.StripeSecretKey != "" {
		deps.Payments = services.NewStripePayments(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.AllowUnsignedWebhooks())
		logger.L().Info("💳 Stripe initialisé")
	} else {
		logger.L().Warn("⚠️ STRIPE_SECRET_KEY absent, paiement désactivé")
	}
	if mailer := utils.NewMailer(cfg); mailer != nil {
		deps.Mailer = mailer
	}

	return deps
}
