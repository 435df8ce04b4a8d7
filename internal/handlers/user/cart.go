package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront_back_end/internal/handlers"
	"storefront_back_end/internal/locale"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/store"
)

const maxQuantityPerItem = 99

type cartResponse struct {
	Items    []models.CartItem `json:"items"`
	Subtotal decimal.Decimal   `json:"subtotal"`
	Count    int               `json:"count"`
}

func newCartResponse(cart models.Cart) cartResponse {
	items := cart.Items
	if items == nil {
		items = []models.CartItem{}
	}
	return cartResponse{Items: items, Subtotal: cart.Subtotal(), Count: cart.Count()}
}

// 🛒 GET /api/cart
func (h *Handler) GetCart(c *gin.Context) {
	cart, err := h.Carts.GetCart(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		handlers.RespondError(c, err, "Erreur lecture panier")
		return
	}
	c.JSON(http.StatusOK, newCartResponse(cart))
}

// setQuantity ajoute, modifie ou retire (quantity 0) un produit du panier après
// vérification du stock. Le prix et le nom viennent de la base.
func (h *Handler) setQuantity(c *gin.Context, productID string, quantity int, add bool) {
	ctx := c.Request.Context()
	userID := c.GetString("user_id")

	cart, err := h.Carts.GetCart(ctx, userID)
	if err != nil {
		handlers.RespondError(c, err, "Erreur lecture panier")
		return
	}

	idx := -1
	for i, item := range cart.Items {
		if item.ProductID == productID {
			idx = i
			break
		}
	}
	if add && idx >= 0 {
		quantity += cart.Items[idx].Quantity
	}

	if quantity == 0 {
		if idx < 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit absent du panier"})
			return
		}
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	} else {
		p, err := h.Products.GetProduct(ctx, productID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && !p.IsActive) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
			return
		}
		if err != nil {
			handlers.RespondError(c, err, "Erreur lecture produit")
			return
		}
		if quantity > maxQuantityPerItem || quantity > p.Stock {
			c.JSON(http.StatusConflict, gin.H{"error": "Stock insuffisant", "available": p.Stock})
			return
		}

		tag, fallback := h.Locale(c)
		item := models.CartItem{
			ProductID: productID,
			Name:      locale.Localized(p.Names, tag, fallback),
			Price:     p.Price,
			Quantity:  quantity,
		}
		if len(p.ImageKeys) > 0 {
			item.ImageKey = p.ImageKeys[0]
		}
		if idx >= 0 {
			cart.Items[idx] = item
		} else {
			cart.Items = append(cart.Items, item)
		}
	}

	cart.UserID = userID
	if err := h.Carts.SaveCart(ctx, cart); err != nil {
		handlers.RespondError(c, err, "Erreur mise à jour panier")
		return
	}
	c.JSON(http.StatusOK, newCartResponse(cart))
}

// 🟢 POST /api/cart
func (h *Handler) AddToCart(c *gin.Context) {
	var input struct {
		ProductID string `json:"product_id" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	h.setQuantity(c, input.ProductID, input.Quantity, true)
}

// 🟡 PUT /api/cart/:productId
func (h *Handler) UpdateCartItem(c *gin.Context) {
	var input struct {
		Quantity *int `json:"quantity" binding:"required,min=0"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide"})
		return
	}
	h.setQuantity(c, c.Param("productId"), *input.Quantity, false)
}

// 🔴 DELETE /api/cart/:productId
func (h *Handler) RemoveFromCart(c *gin.Context) {
	h.setQuantity(c, c.Param("productId"), 0, false)
}

// 🔴 DELETE /api/cart
func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.Carts.ClearCart(c.Request.Context(), c.GetString("user_id")); err != nil {
		handlers.RespondError(c, err, "Erreur suppression panier")
		return
	}
	c.JSON(http.StatusOK, newCartResponse(models.Cart{}))
}
