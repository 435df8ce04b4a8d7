package user

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront_back_end/internal/handlers/handlertest"
	"storefront_back_end/internal/models"
)

func setup(t *testing.T) (*handlertest.Env, *gin.Engine) {
	t.Helper()
	env := handlertest.New()
	env.Deps.AdminEmails = []string{"boss@example.com"}
	h := New(env.Deps)

	r := env.Router()
	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)

	auth := r.Group("/api", env.Auth())
	auth.GET("/auth/me", h.Me)
	auth.POST("/auth/logout", h.Logout)
	auth.GET("/cart", h.GetCart)
	auth.POST("/cart", h.AddToCart)
	auth.DELETE("/cart", h.ClearCart)
	auth.PUT("/cart/:productId", h.UpdateCartItem)
	auth.DELETE("/cart/:productId", h.RemoveFromCart)
	auth.GET("/cart/ws", h.CartWebSocket)
	auth.GET("/wishlist", h.GetWishlist)
	auth.POST("/wishlist", h.AddToWishlist)
	auth.DELETE("/wishlist/:productId", h.RemoveFromWishlist)
	auth.GET("/orders", h.ListOrders)
	auth.GET("/orders/:id", h.GetOrder)
	auth.GET("/orders/:id/invoice", h.Invoice)
	return env, r
}

type tokenResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func TestRegisterLoginMeLogout(t *testing.T) {
	_, r := setup(t)

	w := handlertest.Do(r, http.MethodPost, "/api/auth/register",
		gin.H{"email": "Kund@Example.com", "password": "hemligt123", "name": "Kim"}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "argon2")

	var reg tokenResponse
	require.NoError(t, handlertest.Decode(w, &reg))
	assert.Equal(t, "kund@example.com", reg.User.Email)
	assert.Equal(t, models.RoleCustomer, reg.User.Role)

	w = handlertest.Do(r, http.MethodPost, "/api/auth/register",
		gin.H{"email": "kund@example.com", "password": "hemligt123"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = handlertest.Do(r, http.MethodPost, "/api/auth/login", gin.H{"email": "kund@example.com", "password": "fel-lösen"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = handlertest.Do(r, http.MethodPost, "/api/auth/login", gin.H{"email": "ingen@example.com", "password": "hemligt123"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = handlertest.Do(r, http.MethodPost, "/api/auth/login", gin.H{"email": "KUND@example.com", "password": "hemligt123"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var login tokenResponse
	require.NoError(t, handlertest.Decode(w, &login))

	w = handlertest.Do(r, http.MethodGet, "/api/auth/me", nil, login.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"kund@example.com"`)

	assert.Equal(t, http.StatusOK, handlertest.Do(r, http.MethodPost, "/api/auth/logout", nil, login.Token).Code)
	assert.Equal(t, http.StatusUnauthorized, handlertest.Do(r, http.MethodGet, "/api/auth/me", nil, login.Token).Code)
}

func TestRegisterValidation(t *testing.T) {
	_, r := setup(t)
	assert.Equal(t, http.StatusBadRequest, handlertest.Do(r, http.MethodPost, "/api/auth/register",
		gin.H{"email": "not-an-email", "password": "hemligt123"}, "").Code)
	assert.Equal(t, http.StatusBadRequest, handlertest.Do(r, http.MethodPost, "/api/auth/register",
		gin.H{"email": "a@example.com", "password": "kort"}, "").Code)
}

func TestRegisterAdminEmail(t *testing.T) {
	_, r := setup(t)
	w := handlertest.Do(r, http.MethodPost, "/api/auth/register", gin.H{"email": "Boss@example.com", "password": "hemligt123"}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var reg tokenResponse
	require.NoError(t, handlertest.Decode(w, &reg))
	assert.Equal(t, models.RoleAdmin, reg.User.Role)
}

type cartBody struct {
	Items    []models.CartItem `json:"items"`
	Subtotal decimal.Decimal   `json:"subtotal"`
	Count    int               `json:"count"`
}

func TestCartLifecycle(t *testing.T) {
	env, r := setup(t)
	token := env.Token("u1", models.RoleCustomer)
	cup := env.AddProduct("kopp", "125", 5)
	plate := env.AddProduct("fat", "80", 2)

	w := handlertest.Do(r, http.MethodPost, "/api/cart", gin.H{"product_id": cup.ID.String(), "quantity": 2}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = handlertest.Do(r, http.MethodPost, "/api/cart", gin.H{"product_id": cup.ID.String(), "quantity": 1}, token)
	require.Equal(t, http.StatusOK, w.Code)
	w = handlertest.Do(r, http.MethodPost, "/api/cart", gin.H{"product_id": plate.ID.String(), "quantity": 1}, token)
	require.Equal(t, http.StatusOK, w.Code)

	var cart cartBody
	require.NoError(t, handlertest.Decode(w, &cart))
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 4, cart.Count)
	assert.True(t, cart.Subtotal.Equal(decimal.RequireFromString("455")))

	w = handlertest.Do(r, http.MethodPost, "/api/cart", gin.H{"product_id": plate.ID.String(), "quantity": 5}, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = handlertest.Do(r, http.MethodPut, "/api/cart/"+cup.ID.String(), gin.H{"quantity": 1}, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, handlertest.Decode(w, &cart))
	assert.Equal(t, 2, cart.Count)

	w = handlertest.Do(r, http.MethodDelete, "/api/cart/"+plate.ID.String(), nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, handlertest.Decode(w, &cart))
	assert.Len(t, cart.Items, 1)

	assert.Equal(t, http.StatusNotFound, handlertest.Do(r, http.MethodDelete, "/api/cart/"+plate.ID.String(), nil, token).Code)
	assert.Equal(t, http.StatusNotFound, handlertest.Do(r, http.MethodPost, "/api/cart",
		gin.H{"product_id": gocql.TimeUUID().String(), "quantity": 1}, token).Code)
	assert.Equal(t, http.StatusBadRequest, handlertest.Do(r, http.MethodPost, "/api/cart",
		gin.H{"product_id": cup.ID.String(), "quantity": 0}, token).Code)

	require.Equal(t, http.StatusOK, handlertest.Do(r, http.MethodDelete, "/api/cart", nil, token).Code)
	w = handlertest.Do(r, http.MethodGet, "/api/cart", nil, token)
	require.NoError(t, handlertest.Decode(w, &cart))
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0, cart.Count)
}

func TestCartWebSocketPushesUpdates(t *testing.T) {
	env, r := setup(t)
	token := env.Token("u1", models.RoleCustomer)
	cup := env.AddProduct("kopp", "125", 5)

	srv := httptest.NewServer(r)
	defer srv.Close()

	header := http.Header{"Authorization": {"Bearer " + token}}
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/cart/ws", header)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var hello map[string]interface{}
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "connected", hello["type"])

	w := handlertest.Do(r, http.MethodPost, "/api/cart", gin.H{"product_id": cup.ID.String(), "quantity": 2}, token)
	require.Equal(t, http.StatusOK, w.Code)

	var msg struct {
		Type string   `json:"type"`
		Cart cartBody `json:"cart"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "cart_updated", msg.Type)
	assert.Equal(t, 2, msg.Cart.Count)
}

func TestWishlist(t *testing.T) {
	env, r := setup(t)
	token := env.Token("u1", models.RoleCustomer)
	cup := env.AddProduct("kopp", "125", 5)

	assert.Equal(t, http.StatusCreated, handlertest.Do(r, http.MethodPost, "/api/wishlist", gin.H{"product_id": cup.ID.String()}, token).Code)
	assert.Equal(t, http.StatusNotFound, handlertest.Do(r, http.MethodPost, "/api/wishlist", gin.H{"product_id": gocql.TimeUUID().String()}, token).Code)

	w := handlertest.Do(r, http.MethodGet, "/api/wishlist", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var list models.Wishlist
	require.NoError(t, handlertest.Decode(w, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "kopp", list.Items[0].Name)

	assert.Equal(t, http.StatusNoContent, handlertest.Do(r, http.MethodDelete, "/api/wishlist/"+cup.ID.String(), nil, token).Code)
	w = handlertest.Do(r, http.MethodGet, "/api/wishlist", nil, token)
	require.NoError(t, handlertest.Decode(w, &list))
	assert.Empty(t, list.Items)
}

func TestOrdersAreScopedToOwner(t *testing.T) {
	env, r := setup(t)
	env.Deps.Invoices = handlertest.Invoices{}

	paid := models.Order{ID: gocql.TimeUUID(), UserID: "u1", Status: models.OrderStatusPaid, Currency: "SEK", CreatedAt: time.Now()}
	pending := models.Order{ID: gocql.TimeUUID(), UserID: "u1", Status: models.OrderStatusPending, CreatedAt: time.Now()}
	other := models.Order{ID: gocql.TimeUUID(), UserID: "u2", Status: models.OrderStatusPaid, CreatedAt: time.Now()}
	for _, o := range []models.Order{paid, pending, other} {
		require.NoError(t, env.Orders.CreateOrder(t.Context(), o))
	}
	token := env.Token("u1", models.RoleCustomer)

	w := handlertest.Do(r, http.MethodGet, "/api/orders", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Orders []models.Order `json:"orders"`
	}
	require.NoError(t, handlertest.Decode(w, &list))
	assert.Len(t, list.Orders, 2)

	assert.Equal(t, http.StatusOK, handlertest.Do(r, http.MethodGet, "/api/orders/"+paid.ID.String(), nil, token).Code)
	assert.Equal(t, http.StatusNotFound, handlertest.Do(r, http.MethodGet, "/api/orders/"+other.ID.String(), nil, token).Code)

	w = handlertest.Do(r, http.MethodGet, "/api/orders/"+paid.ID.String()+"/invoice", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "invoice-")
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))

	assert.Equal(t, http.StatusConflict, handlertest.Do(r, http.MethodGet, "/api/orders/"+pending.ID.String()+"/invoice", nil, token).Code)
}
