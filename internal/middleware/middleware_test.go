package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"storefront_back_end/internal/locale"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/store/storetest"
	"storefront_back_end/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type revokedSet map[string]bool

func (r revokedSet) IsTokenBlacklisted(_ context.Context, id string) bool {
	return r[id]
}

func authRouter(tokens *utils.TokenManager, revoked Revocations) *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthRequired(tokens, revoked), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id"), "role": c.GetString("role")})
	})
	r.GET("/admin", AuthRequired(tokens, revoked), RequireAdmin, func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	tokens := utils.NewTokenManager("secret", time.Hour)
	customer, _, err := tokens.Generate(models.User{ID: "u1", Email: "a@b.se", Role: models.RoleCustomer})
	require.NoError(t, err)

	r := authRouter(tokens, nil)

	w := do(r, http.MethodGet, "/me", customer)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"u1"`)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", "garbage").Code)

	other := utils.NewTokenManager("other", time.Hour)
	forged, _, _ := other.Generate(models.User{ID: "u1", Role: models.RoleAdmin})
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", forged).Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token "+customer)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredRejectsRevokedToken(t *testing.T) {
	tokens := utils.NewTokenManager("secret", time.Hour)
	token, _, _ := tokens.Generate(models.User{ID: "u1", Role: models.RoleCustomer})
	claims, err := tokens.Parse(token)
	require.NoError(t, err)

	r := authRouter(tokens, revokedSet{claims.ID: true})
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", token).Code)
}

func TestRequireAdmin(t *testing.T) {
	tokens := utils.NewTokenManager("secret", time.Hour)
	customer, _, _ := tokens.Generate(models.User{ID: "u1", Role: models.RoleCustomer})
	admin, _, _ := tokens.Generate(models.User{ID: "u2", Role: models.RoleAdmin})

	r := authRouter(tokens, nil)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/admin", customer).Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodGet, "/admin", admin).Code)
}

type memoryCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (m *memoryCounter) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	if m.counts == nil {
		m.counts = map[string]int64{}
	}
	m.counts[key]++
	return m.counts[key], nil
}

func TestRateLimit(t *testing.T) {
	counter := &memoryCounter{}
	r := gin.New()
	r.POST("/login", RateLimit(counter, "login", 2, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/login", "").Code)
	w := do(r, http.MethodPost, "/login", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = do(r, http.MethodPost, "/login", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestRateLimitFailsOpen(t *testing.T) {
	counter := &memoryCounter{err: errors.New("redis down")}
	r := gin.New()
	r.GET("/x", RateLimit(counter, "api", 1, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/x", "").Code)
	}
}

// fakeRedis simule INCR, EXPIRE et DEL sans dépendre de la version du serveur.
type fakeRedis struct {
	counts    map[string]int64
	ttls      map[string]time.Duration
	expireErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{counts: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Incr(_ context.Context, key string) *redis.IntCmd {
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeRedis) Expire(_ context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	if f.expireErr != nil {
		return redis.NewBoolResult(false, f.expireErr)
	}
	f.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.counts, k)
		delete(f.ttls, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestRedisCounterSetsWindowOnFirstHit(t *testing.T) {
	client := newFakeRedis()
	counter := RedisCounter{Client: client}

	n, err := counter.Incr(t.Context(), "ratelimit:login:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, time.Minute, client.ttls["ratelimit:login:1.2.3.4"])

	// Les hits suivants ne prolongent pas la fenêtre.
	client.ttls["ratelimit:login:1.2.3.4"] = 10 * time.Second
	n, err = counter.Incr(t.Context(), "ratelimit:login:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 10*time.Second, client.ttls["ratelimit:login:1.2.3.4"])
}

func TestRedisCounterDropsKeyWithoutTTL(t *testing.T) {
	client := newFakeRedis()
	client.expireErr = errors.New("ERR unknown command")
	counter := RedisCounter{Client: client}

	_, err := counter.Incr(t.Context(), "ratelimit:api:u1", time.Minute)
	assert.Error(t, err)
	assert.NotContains(t, client.counts, "ratelimit:api:u1")
}

func TestRateLimitWithRedisCounter(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimit(RedisCounter{Client: newFakeRedis()}, "login", 1, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/login", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "/login", "").Code)
}

func TestLocale(t *testing.T) {
	resolver := locale.NewResolver([]string{"sv", "en", "nb"}, "sv")
	r := gin.New()
	r.GET("/", Locale(resolver, nil), func(c *gin.Context) {
		c.String(http.StatusOK, LocaleFrom(c, language.Und).String())
	})

	w := do(r, http.MethodGet, "/?lang=en", "")
	assert.Equal(t, "en", w.Body.String())
	assert.Contains(t, w.Header().Get("Set-Cookie"), "lang=en")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "nb-NO,nb;q=0.9")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "nb", w.Body.String())

	w = do(r, http.MethodGet, "/", "")
	assert.Equal(t, "sv", w.Body.String())
	assert.Empty(t, w.Header().Get("Set-Cookie"))
}

func TestLocaleUsesSettingsDefault(t *testing.T) {
	resolver := locale.NewResolver([]string{"sv", "en"}, "sv")
	settings := storetest.NewSettings(&models.SiteSettings{DefaultLocale: "en"})

	r := gin.New()
	r.GET("/", Locale(resolver, settings), func(c *gin.Context) {
		c.String(http.StatusOK, LocaleFrom(c, language.Und).String())
	})
	assert.Equal(t, "en", do(r, http.MethodGet, "/", "").Body.String())
}

func TestAuditPriceChangesKeepsBody(t *testing.T) {
	products := storetest.NewProducts()
	r := gin.New()
	var got string
	r.PUT("/products/:id", AuditPriceChanges(products), func(c *gin.Context) {
		body, _ := c.GetRawData()
		got = string(body)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPut, "/products/abc", strings.NewReader(`{"price":"10"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"price":"10"}`, got)
}
