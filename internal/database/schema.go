package database

import (
	"fmt"

	"github.com/gocql/gocql"

	"storefront_back_end/internal/logger"
)

// Les montants sont stockés en texte pour conserver la précision décimale.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		product_id uuid PRIMARY KEY,
		slug text,
		sku text,
		names map<text, text>,
		descriptions map<text, text>,
		price text,
		stock int,
		image_keys list<text>,
		tags list<text>,
		is_active boolean,
		created_at timestamp,
		updated_at timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		user_id text PRIMARY KEY,
		email text,
		password text,
		name text,
		role text,
		locale text,
		created_at timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS users_by_email (
		email text PRIMARY KEY,
		user_id text
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		order_id uuid PRIMARY KEY,
		user_id text,
		email text,
		status text,
		items text,
		address text,
		region_code text,
		subtotal text,
		shipping text,
		total text,
		tax text,
		total_excl_tax text,
		tax_rate text,
		currency text,
		locale text,
		payment_intent_id text,
		created_at timestamp,
		updated_at timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS orders_by_user (
		user_id text,
		created_at timestamp,
		order_id uuid,
		PRIMARY KEY (user_id, created_at, order_id)
	) WITH CLUSTERING ORDER BY (created_at DESC, order_id ASC)`,
	`CREATE TABLE IF NOT EXISTS orders_by_payment (
		payment_intent_id text PRIMARY KEY,
		order_id uuid
	)`,
	`CREATE TABLE IF NOT EXISTS shipping_regions (
		code text PRIMARY KEY,
		name text,
		countries list<text>,
		base_price text,
		free_shipping_threshold text,
		shipping_thresholds text,
		active boolean
	)`,
	`CREATE TABLE IF NOT EXISTS site_settings (
		id text PRIMARY KEY,
		store_name text,
		tax_rate text,
		currency text,
		default_locale text,
		contact_email text,
		maintenance_mode boolean,
		updated_at timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS hero_images (
		hero_id uuid PRIMARY KEY,
		object_key text,
		titles map<text, text>,
		subtitles map<text, text>,
		link_url text,
		position int,
		active boolean,
		created_at timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS wishlist (
		user_id text,
		product_id uuid,
		added_at timestamp,
		PRIMARY KEY (user_id, product_id)
	)`,
}

// Migrate crée les tables manquantes dans le keyspace courant.
func Migrate(session *gocql.Session) error {
	for _, stmt := range schema {
		if err := session.Query(stmt).Exec(); err != nil {
			return fmt.Errorf("exécution schéma: %w", err)
		}
	}
	logger.L().Infof("✅ Schéma ScyllaDB vérifié (%d tables)", len(schema))
	return nil
}
