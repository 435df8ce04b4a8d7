package user

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront_back_end/internal/handlers"
	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/store"
	"storefront_back_end/internal/utils"
)

const minPasswordLength = 8

// Handler regroupe le compte client: authentification, panier, wishlist et commandes.
type Handler struct {
	*handlers.Deps
}

func New(d *handlers.Deps) *Handler {
	return &Handler{Deps: d}
}

func (h *Handler) isAdminEmail(email string) bool {
	for _, e := range h.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}

func (h *Handler) respondWithToken(c *gin.Context, status int, u models.User) {
	token, expires, err := h.Tokens.Generate(u)
	if err != nil {
		handlers.RespondError(c, err, "Erreur génération token")
		return
	}
	c.JSON(status, gin.H{
		"token":      token,
		"expires_at": expires,
		"user":       u,
	})
}

// 🟢 POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}
	if len(input.Password) < minPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Mot de passe trop court (8 caractères minimum)"})
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		handlers.RespondError(c, err, "Erreur création utilisateur")
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	tag, _ := h.Locale(c)
	u := models.User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  hash,
		Name:      strings.TrimSpace(input.Name),
		Role:      models.RoleCustomer,
		Locale:    tag.String(),
		CreatedAt: time.Now(),
	}
	if h.isAdminEmail(email) {
		u.Role = models.RoleAdmin
	}

	if err := h.Users.CreateUser(c.Request.Context(), u); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Un compte avec cet email existe déjà"})
			return
		}
		handlers.RespondError(c, err, "Erreur création utilisateur")
		return
	}

	logger.L().Infof("👤 Nouveau compte %s (%s)", u.Email, u.Role)
	h.respondWithToken(c, http.StatusCreated, u)
}

// 🟢 POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	u, err := h.Users.GetUserByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		handlers.RespondError(c, err, "Erreur connexion")
		return
	}

	ok := false
	if err == nil {
		ok, _ = utils.VerifyPassword(input.Password, u.Password)
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	h.respondWithToken(c, http.StatusOK, u)
}

// 🔴 POST /api/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	if h.Cache != nil {
		if exp, ok := c.Get("token_exp"); ok {
			ttl := time.Until(exp.(time.Time))
			if err := h.Cache.BlacklistToken(c.Request.Context(), c.GetString("token_id"), ttl); err != nil {
				logger.L().Warnf("⚠️ Révocation du token impossible: %v", err)
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Déconnecté"})
}

// 🟢 GET /api/auth/me
func (h *Handler) Me(c *gin.Context) {
	u, err := h.Users.GetUserByID(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		handlers.RespondError(c, err, "Erreur lecture utilisateur")
		return
	}
	c.JSON(http.StatusOK, u)
}
