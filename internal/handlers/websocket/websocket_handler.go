// internal/handlers/websocket/websocket_handler.go
package websocket

import (
	"net/http"

	"groupgate-service/internal/pkg/response"
	"groupgate-service/internal/ws"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WebSocketHandler struct {
	hub    *ws.Hub
	logger *zap.Logger
}

func NewWebSocketHandler(hub *ws.Hub, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		logger: logger,
	}
}

// Events upgrades the connection and streams token lifecycle events
func (h *WebSocketHandler) Events(c *gin.Context) {
	if err := ws.Serve(h.hub, h.logger, c.Writer, c.Request); err != nil {
		// The upgrader has already written its own error response.
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		c.Abort()
		return
	}
}

// Stats reports hub statistics
func (h *WebSocketHandler) Stats(c *gin.Context) {
	response.Success(c, http.StatusOK, "websocket stats retrieved", gin.H{
		"connected_clients": h.hub.ClientCount(),
	})
}
