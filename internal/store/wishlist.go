package store

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"storefront_back_end/internal/models"
)

type WishlistRepository struct {
	session *gocql.Session
}

func NewWishlistRepository(session *gocql.Session) *WishlistRepository {
	return &WishlistRepository{session: session}
}

func (r *WishlistRepository) ListWishlist(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	iter := r.session.Query(`SELECT product_id, added_at FROM wishlist WHERE user_id = ?`, userID).WithContext(ctx).Iter()

	var items []models.WishlistItem
	var item models.WishlistItem
	for iter.Scan(&item.ProductID, &item.AddedAt) {
		item.UserID = userID
		items = append(items, item)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture wishlist: %w", err)
	}
	return items, nil
}

func (r *WishlistRepository) AddToWishlist(ctx context.Context, userID, productID string) error {
	uid, err := gocql.ParseUUID(productID)
	if err != nil {
		return ErrNotFound
	}
	return r.session.Query(`INSERT INTO wishlist (user_id, product_id, added_at) VALUES (?, ?, ?)`,
		userID, uid, time.Now()).WithContext(ctx).Exec()
}

func (r *WishlistRepository) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	uid, err := gocql.ParseUUID(productID)
	if err != nil {
		return ErrNotFound
	}
	return r.session.Query(`DELETE FROM wishlist WHERE user_id = ? AND product_id = ?`, userID, uid).
		WithContext(ctx).Exec()
}
