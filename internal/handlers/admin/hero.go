package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"storefront_back_end/internal/handlers"
	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/services"
	"storefront_back_end/internal/store"
)

// heroResponse expose l'image brute (tous les textes) avec son URL signée.
type heroResponse struct {
	models.HeroImage
	ImageURL string `json:"image_url"`
}

func (h *Handler) heroResponse(c *gin.Context, img models.HeroImage) heroResponse {
	return heroResponse{HeroImage: img, ImageURL: h.ImageURL(c.Request.Context(), img.ObjectKey)}
}

// parseTexts lit un champ de formulaire JSON {"sv": "...", "en": "..."}.
func parseTexts(raw string) (map[string]string, error) {
	texts := map[string]string{}
	if raw == "" {
		return texts, nil
	}
	if err := json.Unmarshal([]byte(raw), &texts); err != nil {
		return nil, err
	}
	return texts, nil
}

// 🖼️ GET /api/admin/hero
func (h *Handler) ListHeroImages(c *gin.Context) {
	images, err := h.Heroes.ListHeroImages(c.Request.Context())
	if err != nil {
		handlers.RespondError(c, err, "Erreur lecture bannières")
		return
	}
	store.SortHeroImages(images)

	out := make([]heroResponse, 0, len(images))
	for _, img := range images {
		out = append(out, h.heroResponse(c, img))
	}
	c.JSON(http.StatusOK, gin.H{"images": out})
}

// 📤 POST /api/admin/hero (multipart: image, titles, subtitles, link_url, position, active)
func (h *Handler) UploadHeroImage(c *gin.Context) {
	if h.Images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Stockage d'images non configuré"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier image manquant"})
		return
	}
	titles, err := parseTexts(c.PostForm("titles"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "titles doit être un objet JSON"})
		return
	}
	subtitles, err := parseTexts(c.PostForm("subtitles"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subtitles doit être un objet JSON"})
		return
	}
	position, err := strconv.Atoi(c.DefaultPostForm("position", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "position invalide"})
		return
	}
	active, err := strconv.ParseBool(c.DefaultPostForm("active", "true"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "active invalide"})
		return
	}

	ctx := c.Request.Context()
	key, err := h.Images.Upload(ctx, "hero", file)
	if err != nil {
		if errors.Is(err, services.ErrNotImage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		handlers.RespondError(c, err, "Erreur upload image")
		return
	}

	img := models.HeroImage{
		ID:        gocql.TimeUUID(),
		ObjectKey: key,
		Titles:    titles,
		Subtitles: subtitles,
		LinkURL:   c.PostForm("link_url"),
		Position:  position,
		Active:    active,
		CreatedAt: time.Now(),
	}
	if err := h.Heroes.SaveHeroImage(ctx, img); err != nil {
		_ = h.Images.Delete(ctx, key)
		handlers.RespondError(c, err, "Erreur enregistrement bannière")
		return
	}
	c.Set("audit_resource_id", img.ID.String())

	logger.L().Infof("🖼️ Bannière ajoutée: %s", key)
	c.JSON(http.StatusCreated, h.heroResponse(c, img))
}

// 🟡 PUT /api/admin/hero/:id
func (h *Handler) UpdateHeroImage(c *gin.Context) {
	var input struct {
		Titles    map[string]string `json:"titles"`
		Subtitles map[string]string `json:"subtitles"`
		LinkURL   *string           `json:"link_url"`
		Position  *int              `json:"position"`
		Active    *bool             `json:"active"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	ctx := c.Request.Context()
	img, err := h.Heroes.GetHeroImage(ctx, c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err, "Erreur lecture bannière")
		return
	}

	if input.Titles != nil {
		img.Titles = input.Titles
	}
	if input.Subtitles != nil {
		img.Subtitles = input.Subtitles
	}
	if input.LinkURL != nil {
		img.LinkURL = *input.LinkURL
	}
	if input.Position != nil {
		img.Position = *input.Position
	}
	if input.Active != nil {
		img.Active = *input.Active
	}

	if err := h.Heroes.SaveHeroImage(ctx, img); err != nil {
		handlers.RespondError(c, err, "Erreur mise à jour bannière")
		return
	}
	c.JSON(http.StatusOK, h.heroResponse(c, img))
}

// 🔴 DELETE /api/admin/hero/:id
func (h *Handler) DeleteHeroImage(c *gin.Context) {
	ctx := c.Request.Context()
	img, err := h.Heroes.GetHeroImage(ctx, c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err, "Erreur lecture bannière")
		return
	}
	if err := h.Heroes.DeleteHeroImage(ctx, img.ID.String()); err != nil {
		handlers.RespondError(c, err, "Erreur suppression bannière")
		return
	}
	if h.Images != nil {
		if err := h.Images.Delete(ctx, img.ObjectKey); err != nil {
			logger.L().Warnf("⚠️ Suppression image %s: %v", img.ObjectKey, err)
		}
	}
	c.Status(http.StatusNoContent)
}
