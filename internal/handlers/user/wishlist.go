package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront_back_end/internal/handlers"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/store"
)

// 💖 GET /api/wishlist
func (h *Handler) GetWishlist(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString("user_id")

	items, err := h.Wishlists.ListWishlist(ctx, userID)
	if err != nil {
		handlers.RespondError(c, err, "Erreur lecture wishlist")
		return
	}

	tag, fallback := h.Locale(c)
	rate := h.TaxRate(ctx)
	views := make([]models.ProductView, 0, len(items))
	for _, item := range items {
		p, err := h.Products.GetProduct(ctx, item.ProductID.String())
		if err != nil || !p.IsActive {
			continue
		}
		views = append(views, h.ProductView(ctx, p, tag, fallback, rate))
	}

	c.JSON(http.StatusOK, models.Wishlist{UserID: userID, Items: views})
}

// 💖 POST /api/wishlist
func (h *Handler) AddToWishlist(c *gin.Context) {
	var input struct {
		ProductID string `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.Products.GetProduct(ctx, input.ProductID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
			return
		}
		handlers.RespondError(c, err, "Erreur lecture produit")
		return
	}

	if err := h.Wishlists.AddToWishlist(ctx, c.GetString("user_id"), input.ProductID); err != nil {
		handlers.RespondError(c, err, "Erreur ajout wishlist")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Ajouté à la wishlist", "product_id": input.ProductID})
}

// 💔 DELETE /api/wishlist/:productId
func (h *Handler) RemoveFromWishlist(c *gin.Context) {
	if err := h.Wishlists.RemoveFromWishlist(c.Request.Context(), c.GetString("user_id"), c.Param("productId")); err != nil {
		handlers.RespondError(c, err, "Erreur suppression wishlist")
		return
	}
	c.Status(http.StatusNoContent)
}
