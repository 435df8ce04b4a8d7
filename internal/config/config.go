package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config regroupe toute la configuration du serveur, lue une seule fois au démarrage.
type Config struct {
	Env      string
	Port     string
	LogLevel string
	BaseURL  string

	JWTSecret   string
	JWTTTL      time.Duration
	AdminEmails []string

	CORSOrigins []string

	ScyllaHosts    []string
	ScyllaKeyspace string
	ScyllaUser     string
	ScyllaPassword string

	RedisHost     string
	RedisPassword string
	CartTTL       time.Duration

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
	SignedURLTTL   time.Duration

	ElasticURL      string
	ElasticUser     string
	ElasticPassword string

	StripeSecretKey     string
	StripeWebhookSecret string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	StoreName   string
	InvoiceIBAN string
	InvoiceBIC  string

	Currency         string
	DefaultLocale    string
	SupportedLocales []string
}

// Load charge le fichier .env (optionnel) puis lit les variables d'environnement.
func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
	return FromEnv()
}

// FromEnv construit la configuration depuis l'environnement courant, avec des valeurs par défaut.
func FromEnv() *Config {
	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		BaseURL:  getEnv("BASE_URL", "http://localhost:8080"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    getDuration("JWT_TTL", 24*time.Hour),
		// Comptes promus administrateurs à l'inscription.
		AdminEmails: getList("ADMIN_EMAILS", nil),

		CORSOrigins: getList("CORS_ORIGINS", []string{"http://localhost:3000"}),

		ScyllaHosts:    getList("SCYLLA_HOSTS", []string{"127.0.0.1"}),
		ScyllaKeyspace: getEnv("SCYLLA_KEYSPACE", "storefront"),
		ScyllaUser:     os.Getenv("SCYLLA_USER"),
		ScyllaPassword: os.Getenv("SCYLLA_PASSWORD"),

		RedisHost:     getEnv("REDIS_HOST", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		CartTTL:       getDuration("CART_TTL", 30*24*time.Hour),

		MinIOEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:    getEnv("MINIO_BUCKET", "storefront-images"),
		MinIOUseSSL:    getBool("MINIO_USE_SSL", false),
		SignedURLTTL:   getDuration("SIGNED_URL_TTL", 24*time.Hour),

		ElasticURL:      os.Getenv("ELASTIC_URL"),
		ElasticUser:     os.Getenv("ELASTIC_USER"),
		ElasticPassword: os.Getenv("ELASTIC_PASSWORD"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getEnv("MAIL_FROM", "noreply@localhost"),

		StoreName:   getEnv("STORE_NAME", "Storefront"),
		InvoiceIBAN: os.Getenv("INVOICE_IBAN"),
		InvoiceBIC:  os.Getenv("INVOICE_BIC"),

		Currency:         strings.ToUpper(getEnv("CURRENCY", "SEK")),
		DefaultLocale:    getEnv("DEFAULT_LOCALE", "sv"),
		SupportedLocales: getList("SUPPORTED_LOCALES", []string{"sv", "en", "nb", "da"}),
	}

	return cfg
}

// IsProduction indique si le serveur tourne en production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate refuse les configurations de production qui exposeraient le serveur.
func (c *Config) Validate() error {
	if !c.IsProduction() {
		return nil
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET manquant")
	}
	if c.StripeSecretKey != "" && c.StripeWebhookSecret == "" {
		return errors.New("STRIPE_WEBHOOK_SECRET manquant alors que Stripe est activé")
	}
	return nil
}

// AllowUnsignedWebhooks indique si les webhooks Stripe non signés sont tolérés (hors production).
func (c *Config) AllowUnsignedWebhooks() bool {
	return !c.IsProduction()
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
