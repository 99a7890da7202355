package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-tables/hub"
	"github.com/yeremiapane/restaurant-tables/middlewares"
	"github.com/yeremiapane/restaurant-tables/utils"
)

type FloorController struct {
	Hub      *hub.Hub
	upgrader websocket.Upgrader
}

// NewFloorController accepts websocket handshakes from allowedOrigin, or from
// anywhere when it is "*".
func NewFloorController(h *hub.Hub, allowedOrigin string) *FloorController {
	return &FloorController{
		Hub: h,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "*" {
					return true
				}
				origin := r.Header.Get("Origin")
				return origin == "" || strings.EqualFold(origin, allowedOrigin)
			},
		},
	}
}

// FloorHandler -> websocket endpoint streaming table and reservation events
func (fc *FloorController) FloorHandler(c *gin.Context) {
	role := c.GetString(middlewares.ContextRole)
	if role == "" {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	ws, err := fc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("Websocket upgrade failed: %v", err)
		return
	}

	fc.Hub.Register(ws, role)
	utils.InfoLogger.Printf("Floor client connected (role=%s, clients=%d)", role, fc.Hub.ClientCount())

	// Clients only listen; reads detect disconnects.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	fc.Hub.Unregister(ws)
}
