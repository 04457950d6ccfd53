package controllers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/restokorp/restaurant-app/hub"
	"github.com/restokorp/restaurant-app/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		allowed := os.Getenv("CORS_ORIGIN")
		if allowed == "" {
			allowed = "http://localhost:3000"
		}
		return origin == "" || origin == allowed
	},
}

// LiveHandler upgrades the connection and keeps it registered in the hub
// until the client goes away. The read loop only exists to detect close.
func LiveHandler(c *gin.Context) {
	role, _ := c.Get("role")
	roleStr, _ := role.(string)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("Websocket upgrade failed: %v", err)
		return
	}

	hub.RegisterClient(conn, roleStr)
	utils.InfoLogger.Printf("Websocket client connected, role=%s total=%d", roleStr, hub.ClientCount())

	go func() {
		defer func() {
			hub.UnregisterClient(conn)
			utils.InfoLogger.Printf("Websocket client disconnected, total=%d", hub.ClientCount())
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
