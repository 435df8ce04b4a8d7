package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront_back_end/internal/models"
)

// CartRepository conserve les paniers dans Redis et publie chaque modification
// sur le canal cart:<user> pour la synchronisation temps réel.
type CartRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCartRepository(rdb *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{rdb: rdb, ttl: ttl}
}

func cartKey(userID string) string {
	return "cart:" + userID
}

func (r *CartRepository) GetCart(ctx context.Context, userID string) (models.Cart, error) {
	cart := models.Cart{UserID: userID, Items: []models.CartItem{}}

	data, err := r.rdb.Get(ctx, cartKey(userID)).Result()
	if errors.Is(err, redis.Nil) || data == "" {
		return cart, nil
	}
	if err != nil {
		return cart, fmt.Errorf("lecture panier: %w", err)
	}

	if err := json.Unmarshal([]byte(data), &cart.Items); err != nil {
		return cart, fmt.Errorf("décodage panier: %w", err)
	}
	return cart, nil
}

func (r *CartRepository) SaveCart(ctx context.Context, cart models.Cart) error {
	if len(cart.Items) == 0 {
		return r.ClearCart(ctx, cart.UserID)
	}

	data, err := json.Marshal(cart.Items)
	if err != nil {
		return err
	}

	pipe := r.rdb.Pipeline()
	pipe.Set(ctx, cartKey(cart.UserID), data, r.ttl)
	pipe.Publish(ctx, cartKey(cart.UserID), "updated")
	_, err = pipe.Exec(ctx)
	return err
}

func (r *CartRepository) ClearCart(ctx context.Context, userID string) error {
	pipe := r.rdb.Pipeline()
	pipe.Del(ctx, cartKey(userID))
	pipe.Publish(ctx, cartKey(userID), "cleared")
	_, err := pipe.Exec(ctx)
	return err
}

func (r *CartRepository) Subscribe(ctx context.Context, userID string) (<-chan string, func() error) {
	pubsub := r.rdb.Subscribe(ctx, cartKey(userID))
	out := make(chan string)

	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, pubsub.Close
}
