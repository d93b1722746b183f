package handlers

import (
	"net/http"

	"ambulink/config"
	"ambulink/services/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WebsocketHandler struct {
	Hub      *realtime.Hub
	upgrader websocket.Upgrader
}

// NewWebsocketHandler accepts upgrades from the configured CORS origins. An
// empty allow list accepts any origin.
func NewWebsocketHandler(hub *realtime.Hub, origins []string) *WebsocketHandler {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return &WebsocketHandler{
		Hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allowed) == 0 || !config.IsProduction() {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// ServeHandler handles GET /api/ws.
func (h *WebsocketHandler) ServeHandler(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		getLogger(c).Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	h.Hub.Serve(c.Request.Context(), conn, actor)
}
