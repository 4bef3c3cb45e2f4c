package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/food-ordering-app/hub"
	"github.com/yeremiapane/food-ordering-app/middlewares"
	"github.com/yeremiapane/food-ordering-app/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origin sudah dibatasi CORS, token dicek AuthMiddleware
	CheckOrigin: func(r *http.Request) bool { return true },
}

// LiveOrdersHandler -> websocket feed order baru dan perubahan status untuk admin/staff
func LiveOrdersHandler(h *hub.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(middlewares.CtxRole)

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			utils.ErrorLogger.Printf("Websocket upgrade failed: %v", err)
			return
		}

		h.Register(ws, role)
		utils.InfoLogger.WithField("role", role).Infof("Live order client connected (%d online)", h.Count())

		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		h.Unregister(ws)
	}
}
