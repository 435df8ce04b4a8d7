package locale

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func newResolver() *Resolver {
	return NewResolver([]string{"sv", "en", "nb", "da"}, "sv")
}

func TestResolve(t *testing.T) {
	r := newResolver()

	t.Run("query param wins and asks for persistence", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products?lang=en", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "da"})
		req.Header.Set("Accept-Language", "nb-NO")

		tag, persist := r.Resolve(req)
		assert.Equal(t, language.English, tag)
		assert.True(t, persist)
	})

	t.Run("cookie when query is missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "da"})
		req.Header.Set("Accept-Language", "en-US")

		tag, persist := r.Resolve(req)
		assert.Equal(t, language.Danish, tag)
		assert.False(t, persist)
	})

	t.Run("unsupported query falls through to accept-language", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products?lang=xx-invalid", nil)
		req.Header.Set("Accept-Language", "en-GB,en;q=0.8")

		tag, persist := r.Resolve(req)
		assert.Equal(t, language.English, tag)
		assert.False(t, persist)
	})

	t.Run("default when nothing matches", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.Header.Set("Accept-Language", "ja-JP")

		tag, _ := r.Resolve(req)
		assert.Equal(t, language.Swedish, tag)
	})

	t.Run("nil request", func(t *testing.T) {
		tag, persist := r.Resolve(nil)
		assert.Equal(t, language.Swedish, tag)
		assert.False(t, persist)
	})
}

func TestParse(t *testing.T) {
	r := newResolver()

	tag, ok := r.Parse("en-US")
	require.True(t, ok)
	assert.Equal(t, language.English, tag)

	_, ok = r.Parse("fr")
	assert.False(t, ok)

	_, ok = r.Parse("")
	assert.False(t, ok)
}

func TestWithDefault(t *testing.T) {
	r := newResolver().WithDefault("en")
	assert.Equal(t, language.English, r.Default())
	assert.Len(t, r.Supported(), 4)

	same := newResolver().WithDefault("fr")
	assert.Equal(t, language.Swedish, same.Default())
}

func TestSetCookie(t *testing.T) {
	w := httptest.NewRecorder()
	SetCookie(w, language.Danish)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, "da", cookies[0].Value)
}

func TestLocalized(t *testing.T) {
	texts := map[string]string{"sv": "Tröja", "en": "Sweater"}

	assert.Equal(t, "Sweater", Localized(texts, language.English, language.Swedish))
	assert.Equal(t, "Sweater", Localized(texts, language.AmericanEnglish, language.Swedish))
	assert.Equal(t, "Tröja", Localized(texts, language.Danish, language.Swedish))
	assert.Equal(t, "Sweater", Localized(map[string]string{"en": "Sweater", "nb": ""}, language.Danish, language.Swedish))
	assert.Equal(t, "", Localized(nil, language.Danish, language.Swedish))
}
