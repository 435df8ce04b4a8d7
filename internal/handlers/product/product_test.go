package product

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront_back_end/internal/handlers/handlertest"
	"storefront_back_end/internal/models"
)

func setup(t *testing.T) (*handlertest.Env, http.Handler) {
	t.Helper()
	env := handlertest.New()
	h := New(env.Deps)

	r := env.Router()
	r.GET("/api/products", h.List)
	r.GET("/api/products/search", h.SearchProducts)
	r.GET("/api/products/:id", h.Get)
	return env, r
}

func TestListProducts(t *testing.T) {
	env, r := setup(t)
	env.AddProduct("kopp", "125", 3)
	env.AddProduct("fat", "300", 0)
	hidden := env.AddProduct("dold", "10", 1)
	hidden.IsActive = false
	require.NoError(t, env.Products.SaveProduct(t.Context(), hidden))

	w := handlertest.Do(r, http.MethodGet, "/api/products?sort=price_asc", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Products []models.ProductView `json:"products"`
		Total    int                  `json:"total"`
	}
	require.NoError(t, handlertest.Decode(w, &body))
	require.Len(t, body.Products, 2)
	assert.Equal(t, 2, body.Total)

	first := body.Products[0]
	assert.Equal(t, "kopp", first.Name)
	assert.Equal(t, "100", first.PriceExclTax.String())
	assert.Equal(t, "25", first.Tax.String())
	assert.True(t, first.InStock)
	assert.False(t, body.Products[1].InStock)
}

func TestListProductsLocalized(t *testing.T) {
	env, r := setup(t)
	env.AddProduct("kopp", "125", 3)

	w := handlertest.Do(r, http.MethodGet, "/api/products?lang=en", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"kopp (en)"`)
	assert.Contains(t, w.Body.String(), `"locale":"en"`)
}

func TestListProductsFilters(t *testing.T) {
	env, r := setup(t)
	env.AddProduct("a", "50", 1)
	env.AddProduct("b", "150", 1)
	env.AddProduct("c", "250", 1)

	w := handlertest.Do(r, http.MethodGet, "/api/products?min_price=100&max_price=200", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w = handlertest.Do(r, http.MethodGet, "/api/products?min_price=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = handlertest.Do(r, http.MethodGet, "/api/products?limit=2&page=2", nil, "")
	var body struct {
		Products []models.ProductView `json:"products"`
	}
	require.NoError(t, handlertest.Decode(w, &body))
	assert.Len(t, body.Products, 1)
}

func TestGetProduct(t *testing.T) {
	env, r := setup(t)
	p := env.AddProduct("kopp", "125", 3)
	p.ImageKeys = []string{"products/x.png"}
	require.NoError(t, env.Products.SaveProduct(t.Context(), p))

	w := handlertest.Do(r, http.MethodGet, "/api/products/"+p.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://cdn.test/products/x.png")

	w = handlertest.Do(r, http.MethodGet, "/api/products/unknown", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchFallsBackToCatalog(t *testing.T) {
	env, r := setup(t)
	env.AddProduct("tekopp", "125", 3)
	env.AddProduct("fat", "300", 1)

	w := handlertest.Do(r, http.MethodGet, "/api/products/search?q=KOPP", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
	assert.Contains(t, w.Body.String(), "tekopp")

	w = handlertest.Do(r, http.MethodGet, "/api/products/search", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
