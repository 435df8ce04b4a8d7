package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ProductCacheTTL  = 10 * time.Minute
	SettingsCacheTTL = 5 * time.Minute
)

// ErrMiss est retourné par un Backend quand la clé n'existe pas.
var ErrMiss = errors.New("cache: clé absente")

// Backend est le stockage clé/valeur sous-jacent.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// RedisBackend adapte un client go-redis à Backend.
type RedisBackend struct {
	Client *redis.Client
}

func (b RedisBackend) Get(ctx context.Context, key string) (string, error) {
	v, err := b.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return v, err
}

func (b RedisBackend) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return b.Client.Set(ctx, key, value, ttl).Err()
}

func (b RedisBackend) Del(ctx context.Context, keys ...string) error {
	return b.Client.Del(ctx, keys...).Err()
}

func (b RedisBackend) Exists(ctx context.Context, key string) (bool, error) {
	n, err := b.Client.Exists(ctx, key).Result()
	return n > 0, err
}

// Cache sérialise les valeurs en JSON au-dessus d'un Backend.
type Cache struct {
	backend Backend
}

func New(backend Backend) *Cache {
	return &Cache{backend: backend}
}

// GetJSON décode la valeur en cache dans dest. Le booléen est faux en cas d'absence.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	data, err := c.backend.Get(ctx, key)
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(data), dest) == nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.backend.Set(ctx, key, string(data), ttl)
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	return c.backend.Del(ctx, keys...)
}

// --- Blacklist JWT (révocation avant expiration) ---

// BlacklistToken révoque un token jusqu'à son expiration.
func (c *Cache) BlacklistToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.backend.Set(ctx, "blacklist:"+tokenID, "revoked", ttl)
}

// IsTokenBlacklisted vérifie si un token a été révoqué.
func (c *Cache) IsTokenBlacklisted(ctx context.Context, tokenID string) bool {
	exists, err := c.backend.Exists(ctx, "blacklist:"+tokenID)
	return err == nil && exists
}
