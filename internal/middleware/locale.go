package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"storefront_back_end/internal/locale"
	"storefront_back_end/internal/store"
)

const localeKey = "locale"

// Locale résout la langue de la requête. La langue par défaut des paramètres
// boutique, si définie, remplace celle de la configuration.
func Locale(resolver *locale.Resolver, settings store.SettingsStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := resolver
		if settings != nil {
			if s, err := settings.GetSettings(c.Request.Context()); err == nil && s.DefaultLocale != "" {
				r = resolver.WithDefault(s.DefaultLocale)
			}
		}

		tag, persist := r.Resolve(c.Request)
		if persist {
			locale.SetCookie(c.Writer, tag)
		}
		c.Set(localeKey, tag)
		c.Next()
	}
}

// LocaleFrom retourne la langue résolue, ou fallback si le middleware n'a pas tourné.
func LocaleFrom(c *gin.Context, fallback language.Tag) language.Tag {
	if v, ok := c.Get(localeKey); ok {
		if tag, ok := v.(language.Tag); ok {
			return tag
		}
	}
	return fallback
}
