package admin

import (
	"github.com/go-playground/validator/v10"

	"storefront_back_end/internal/handlers"
)

// Handler regroupe le back-office: catalogue, commandes, livraison, paramètres et bannières.
// Toutes les routes passent par AuthRequired + RequireAdmin.
type Handler struct {
	*handlers.Deps
}

func New(d *handlers.Deps) *Handler {
	return &Handler{Deps: d}
}

var validate = validator.New()
