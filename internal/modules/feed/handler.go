package feed

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"venuehouse/internal/logger"
	"venuehouse/internal/pkg/jwt"
)

// Handler upgrades staff dashboard connections onto the feed hub.
// Auth rides in the query string since browsers cannot set headers on
// websocket handshakes.
type Handler struct {
	hub      *Hub
	jwt      *jwt.Service
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, jwtService *jwt.Service) *Handler {
	return &Handler{
		hub: hub,
		jwt: jwtService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(),
		},
	}
}

// originChecker builds the handshake origin filter from the same
// allowlist the HTTP CORS layer uses: the local dev hosts plus
// CORS_ALLOWED_ORIGINS, comma separated. Requests without an Origin
// header (non-browser clients) pass.
func originChecker() func(*http.Request) bool {
	allowed := map[string]bool{
		"http://localhost:3000": true,
		"http://localhost:5173": true,
		"http://127.0.0.1:3000": true,
		"http://127.0.0.1:5173": true,
	}
	if extra := os.Getenv("CORS_ALLOWED_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			if o = strings.TrimSpace(o); o != "" {
				allowed[o] = true
			}
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}

// HandleWebSocket serves GET /ws/feed?token=JWT.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token query parameter is required"})
		return
	}

	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.hub.Register(claims.StaffID, conn)
	logger.Debug("staff connected to feed", "staff_id", claims.StaffID)

	defer func() {
		h.hub.Unregister(claims.StaffID)
		logger.Debug("staff disconnected from feed", "staff_id", claims.StaffID)
	}()

	// Reads are discarded; the feed is one-way. The loop exists to
	// detect the close frame.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
