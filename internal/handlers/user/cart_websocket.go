package user

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"storefront_back_end/internal/logger"
)

const wsPingInterval = 30 * time.Second

// CheckOrigin est remplacé au démarrage par la liste CORS.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SetAllowedOrigins restreint les origines acceptées pour les WebSockets.
func SetAllowedOrigins(origins []string) {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	upgrader.CheckOrigin = func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed["*"] || allowed[origin]
	}
}

// CartWebSocket pousse le panier à jour à chaque modification (pub/sub Redis).
func (h *Handler) CartWebSocket(c *gin.Context) {
	userID := c.GetString("user_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.L().Warnf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	events, unsubscribe := h.Carts.Subscribe(ctx, userID)
	defer unsubscribe()

	// Lecture en tâche de fond pour détecter la fermeture côté client.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(gin.H{"type": "connected", "message": "Synchronisation panier activée"}); err != nil {
		return
	}

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if event != "updated" && event != "cleared" {
				continue
			}
			cart, err := h.Carts.GetCart(ctx, userID)
			if err != nil {
				logger.L().Warnf("⚠️ Lecture panier %s: %v", userID, err)
				continue
			}
			if err := conn.WriteJSON(gin.H{"type": "cart_updated", "cart": newCartResponse(cart)}); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-closed:
			return
		case <-ctx.Done():
			return
		}
	}
}
