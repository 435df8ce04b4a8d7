package locale

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
)

const (
	// LangParam est le paramètre de requête qui force une langue.
	LangParam = "lang"
	// CookieName conserve la langue choisie par le visiteur.
	CookieName = "lang"
)

// Resolver applique la chaîne de repli: query → cookie → Accept-Language → défaut.
type Resolver struct {
	supported []language.Tag
	fallback  language.Tag
	matcher   language.Matcher
}

// NewResolver construit un Resolver. La langue par défaut est ajoutée aux langues
// supportées si elle n'y figure pas.
func NewResolver(supported []string, fallback string) *Resolver {
	def, err := language.Parse(strings.TrimSpace(fallback))
	if err != nil {
		def = language.Swedish
	}

	tags := []language.Tag{def}
	for _, s := range supported {
		tag, err := language.Parse(strings.TrimSpace(s))
		if err != nil || tag == def {
			continue
		}
		tags = append(tags, tag)
	}

	return &Resolver{
		supported: tags,
		fallback:  def,
		matcher:   language.NewMatcher(tags),
	}
}

// Default retourne la langue par défaut.
func (r *Resolver) Default() language.Tag {
	return r.fallback
}

// Supported retourne les langues supportées, la langue par défaut en premier.
func (r *Resolver) Supported() []language.Tag {
	return append([]language.Tag(nil), r.supported...)
}

// WithDefault retourne une copie du Resolver avec une autre langue par défaut,
// utilisée quand les paramètres boutique la surchargent.
func (r *Resolver) WithDefault(value string) *Resolver {
	tag, ok := r.Parse(value)
	if !ok || tag == r.fallback {
		return r
	}
	names := make([]string, 0, len(r.supported))
	for _, t := range r.supported {
		names = append(names, t.String())
	}
	return NewResolver(names, tag.String())
}

// Parse retourne la langue supportée correspondant exactement (ou par langue de base) à value.
func (r *Resolver) Parse(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return language.Und, false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return language.Und, false
	}
	for _, s := range r.supported {
		if s == tag {
			return s, true
		}
	}
	base, _ := tag.Base()
	for _, s := range r.supported {
		if sb, _ := s.Base(); sb == base {
			return s, true
		}
	}
	return language.Und, false
}

// Resolve détermine la langue d'une requête. Le booléen indique si la langue vient
// du paramètre de requête et doit être mémorisée dans un cookie.
func (r *Resolver) Resolve(req *http.Request) (language.Tag, bool) {
	if req == nil {
		return r.fallback, false
	}

	if tag, ok := r.Parse(req.URL.Query().Get(LangParam)); ok {
		return tag, true
	}

	if cookie, err := req.Cookie(CookieName); err == nil {
		if tag, ok := r.Parse(cookie.Value); ok {
			return tag, false
		}
	}

	if accept := strings.TrimSpace(req.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			_, idx, conf := r.matcher.Match(tags...)
			if conf != language.No {
				return r.supported[idx], false
			}
		}
	}

	return r.fallback, false
}

// SetCookie mémorise la langue choisie pendant un an.
func SetCookie(w http.ResponseWriter, tag language.Tag) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    tag.String(),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

// Localized choisit un texte dans une map indexée par langue:
// langue exacte, langue de base, langue par défaut, puis la première clé non vide.
func Localized(texts map[string]string, tag, fallback language.Tag) string {
	if len(texts) == 0 {
		return ""
	}
	if v := texts[tag.String()]; v != "" {
		return v
	}
	if base, conf := tag.Base(); conf != language.No {
		if v := texts[base.String()]; v != "" {
			return v
		}
	}
	if v := texts[fallback.String()]; v != "" {
		return v
	}

	keys := make([]string, 0, len(texts))
	for k, v := range texts {
		if v != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	return texts[keys[0]]
}
