package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gocql/gocql"

	"storefront_back_end/internal/models"
)

const productColumns = `product_id, slug, sku, names, descriptions, price, stock, image_keys, tags, is_active, created_at, updated_at`

// ProductRepository stocke le catalogue dans ScyllaDB.
type ProductRepository struct {
	session *gocql.Session
}

func NewProductRepository(session *gocql.Session) *ProductRepository {
	return &ProductRepository{session: session}
}

func scanProduct(scan func(dest ...interface{}) bool) (models.Product, bool) {
	var (
		p     models.Product
		price string
	)
	ok := scan(&p.ID, &p.Slug, &p.SKU, &p.Names, &p.Descriptions, &price, &p.Stock,
		&p.ImageKeys, &p.Tags, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	p.Price = decimalOrZero(price)
	return p, ok
}

func (r *ProductRepository) ListProducts(ctx context.Context, activeOnly bool) ([]models.Product, error) {
	iter := r.session.Query(`SELECT ` + productColumns + ` FROM products`).WithContext(ctx).Iter()

	var products []models.Product
	for {
		p, ok := scanProduct(iter.Scan)
		if !ok {
			break
		}
		if activeOnly && !p.IsActive {
			continue
		}
		products = append(products, p)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture produits: %w", err)
	}

	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (r *ProductRepository) GetProduct(ctx context.Context, id string) (models.Product, error) {
	uid, err := gocql.ParseUUID(id)
	if err != nil {
		return models.Product{}, ErrNotFound
	}

	var scanErr error
	p, _ := scanProduct(func(dest ...interface{}) bool {
		scanErr = r.session.Query(`SELECT `+productColumns+` FROM products WHERE product_id = ?`, uid).
			WithContext(ctx).Scan(dest...)
		return scanErr == nil
	})
	if errors.Is(scanErr, gocql.ErrNotFound) {
		return models.Product{}, ErrNotFound
	}
	if scanErr != nil {
		return models.Product{}, fmt.Errorf("lecture produit %s: %w", id, scanErr)
	}
	return p, nil
}

func (r *ProductRepository) SaveProduct(ctx context.Context, p models.Product) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	err := r.session.Query(`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Slug, p.SKU, p.Names, p.Descriptions, p.Price.String(), p.Stock,
		p.ImageKeys, p.Tags, p.IsActive, p.CreatedAt, p.UpdatedAt).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("enregistrement produit: %w", err)
	}
	return nil
}

func (r *ProductRepository) DeleteProduct(ctx context.Context, id string) error {
	uid, err := gocql.ParseUUID(id)
	if err != nil {
		return ErrNotFound
	}
	return r.session.Query(`DELETE FROM products WHERE product_id = ?`, uid).WithContext(ctx).Exec()
}

// DecrementStock retire quantity du stock avec une transaction légère (LWT),
// en réessayant si une écriture concurrente a modifié le stock entre-temps.
func (r *ProductRepository) DecrementStock(ctx context.Context, id string, quantity int) error {
	uid, err := gocql.ParseUUID(id)
	if err != nil {
		return ErrNotFound
	}

	for attempt := 0; attempt < 5; attempt++ {
		var stock int
		if err := r.session.Query(`SELECT stock FROM products WHERE product_id = ?`, uid).
			WithContext(ctx).Scan(&stock); err != nil {
			if errors.Is(err, gocql.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if stock < quantity {
			return ErrInsufficientStock
		}

		var current int
		applied, err := r.session.Query(`UPDATE products SET stock = ?, updated_at = ? WHERE product_id = ? IF stock = ?`,
			stock-quantity, time.Now(), uid, stock).WithContext(ctx).SerialConsistency(gocql.LocalSerial).ScanCAS(&current)
		if err != nil {
			return fmt.Errorf("mise à jour stock: %w", err)
		}
		if applied {
			return nil
		}
	}
	return fmt.Errorf("mise à jour stock %s: trop de conflits", id)
}
