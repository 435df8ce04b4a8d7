package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gocql/gocql"

	"storefront_back_end/internal/models"
)

const orderColumns = `order_id, user_id, email, status, items, address, region_code, subtotal, shipping, total, tax, total_excl_tax, tax_rate, currency, locale, payment_intent_id, created_at, updated_at`

// OrderRepository stocke les commandes dans ScyllaDB avec deux tables d'index
// (par utilisateur et par PaymentIntent).
type OrderRepository struct {
	session *gocql.Session
}

func NewOrderRepository(session *gocql.Session) *OrderRepository {
	return &OrderRepository{session: session}
}

type orderRow struct {
	order                                                  models.Order
	items, address                                         string
	subtotal, shipping, total, tax, totalExclTax, taxRate string
}

func (row *orderRow) dest() []interface{} {
	o := &row.order
	return []interface{}{&o.ID, &o.UserID, &o.Email, &o.Status, &row.items, &row.address, &o.RegionCode,
		&row.subtotal, &row.shipping, &row.total, &row.tax, &row.totalExclTax, &row.taxRate,
		&o.Currency, &o.Locale, &o.PaymentIntentID, &o.CreatedAt, &o.UpdatedAt}
}

func (row *orderRow) decode() (models.Order, error) {
	o := row.order
	if row.items != "" {
		if err := json.Unmarshal([]byte(row.items), &o.Items); err != nil {
			return o, fmt.Errorf("décodage articles commande %s: %w", o.ID, err)
		}
	}
	if row.address != "" {
		if err := json.Unmarshal([]byte(row.address), &o.Address); err != nil {
			return o, fmt.Errorf("décodage adresse commande %s: %w", o.ID, err)
		}
	}
	o.Subtotal = decimalOrZero(row.subtotal)
	o.Shipping = decimalOrZero(row.shipping)
	o.Total = decimalOrZero(row.total)
	o.Tax = decimalOrZero(row.tax)
	o.TotalExclTax = decimalOrZero(row.totalExclTax)
	o.TaxRate = decimalOrZero(row.taxRate)
	return o, nil
}

func (r *OrderRepository) CreateOrder(ctx context.Context, o models.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	address, err := json.Marshal(o.Address)
	if err != nil {
		return err
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	o.UpdatedAt = o.CreatedAt

	batch := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`INSERT INTO orders (`+orderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.UserID, o.Email, o.Status, string(items), string(address), o.RegionCode,
		o.Subtotal.String(), o.Shipping.String(), o.Total.String(), o.Tax.String(), o.TotalExclTax.String(),
		o.TaxRate.String(), o.Currency, o.Locale, o.PaymentIntentID, o.CreatedAt, o.UpdatedAt)
	batch.Query(`INSERT INTO orders_by_user (user_id, created_at, order_id) VALUES (?, ?, ?)`,
		o.UserID, o.CreatedAt, o.ID)
	if o.PaymentIntentID != "" {
		batch.Query(`INSERT INTO orders_by_payment (payment_intent_id, order_id) VALUES (?, ?)`,
			o.PaymentIntentID, o.ID)
	}

	if err := r.session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("création commande: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, id string) (models.Order, error) {
	uid, err := gocql.ParseUUID(id)
	if err != nil {
		return models.Order{}, ErrNotFound
	}
	return r.getOrder(ctx, uid)
}

func (r *OrderRepository) getOrder(ctx context.Context, uid gocql.UUID) (models.Order, error) {
	var row orderRow
	err := r.session.Query(`SELECT `+orderColumns+` FROM orders WHERE order_id = ?`, uid).
		WithContext(ctx).Scan(row.dest()...)
	if errors.Is(err, gocql.ErrNotFound) {
		return models.Order{}, ErrNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("lecture commande %s: %w", uid, err)
	}
	return row.decode()
}

func (r *OrderRepository) GetOrderByPaymentIntent(ctx context.Context, paymentIntentID string) (models.Order, error) {
	var uid gocql.UUID
	err := r.session.Query(`SELECT order_id FROM orders_by_payment WHERE payment_intent_id = ?`, paymentIntentID).
		WithContext(ctx).Scan(&uid)
	if errors.Is(err, gocql.ErrNotFound) {
		return models.Order{}, ErrNotFound
	}
	if err != nil {
		return models.Order{}, err
	}
	return r.getOrder(ctx, uid)
}

func (r *OrderRepository) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	iter := r.session.Query(`SELECT order_id FROM orders_by_user WHERE user_id = ?`, userID).WithContext(ctx).Iter()

	var ids []gocql.UUID
	var id gocql.UUID
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture commandes utilisateur: %w", err)
	}

	orders := make([]models.Order, 0, len(ids))
	for _, uid := range ids {
		o, err := r.getOrder(ctx, uid)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *OrderRepository) ListOrders(ctx context.Context, limit int) ([]models.Order, error) {
	iter := r.session.Query(`SELECT ` + orderColumns + ` FROM orders`).WithContext(ctx).Iter()

	var orders []models.Order
	for {
		var row orderRow
		if !iter.Scan(row.dest()...) {
			break
		}
		o, err := row.decode()
		if err != nil {
			continue
		}
		orders = append(orders, o)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture commandes: %w", err)
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, id, status string) error {
	uid, err := gocql.ParseUUID(id)
	if err != nil {
		return ErrNotFound
	}
	return r.session.Query(`UPDATE orders SET status = ?, updated_at = ? WHERE order_id = ?`,
		status, time.Now(), uid).WithContext(ctx).Exec()
}

// TransitionOrderStatus change le statut seulement s'il vaut encore from (LWT).
// Le booléen est faux si un autre traitement a déjà modifié la commande.
func (r *OrderRepository) TransitionOrderStatus(ctx context.Context, id, from, to string) (bool, error) {
	uid, err := gocql.ParseUUID(id)
	if err != nil {
		return false, ErrNotFound
	}

	var current string
	applied, err := r.session.Query(`UPDATE orders SET status = ?, updated_at = ? WHERE order_id = ? IF status = ?`,
		to, time.Now(), uid, from).WithContext(ctx).ScanCAS(&current)
	if err != nil {
		return false, err
	}
	if !applied && current == "" {
		return false, ErrNotFound
	}
	return applied, nil
}

func (r *OrderRepository) SetPaymentIntent(ctx context.Context, id, paymentIntentID string) error {
	uid, err := gocql.ParseUUID(id)
	if err != nil {
		return ErrNotFound
	}

	batch := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`UPDATE orders SET payment_intent_id = ?, updated_at = ? WHERE order_id = ?`,
		paymentIntentID, time.Now(), uid)
	batch.Query(`INSERT INTO orders_by_payment (payment_intent_id, order_id) VALUES (?, ?)`,
		paymentIntentID, uid)
	return r.session.ExecuteBatch(batch)
}
