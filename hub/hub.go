// Package hub pushes live domain events (bookings, orders, tables) to
// connected staff dashboards over websocket.
package hub

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/restokorp/restaurant-app/utils"
)

// Event types
const (
	EventBookingCreate    = "booking_create"
	EventBookingCancel    = "booking_cancel"
	EventBookingConvert   = "booking_convert"
	EventOrderUpdate      = "order_update"
	EventTableUpdate      = "table_update"
	EventNotification     = "notification"
	EventReceiptGenerated = "receipt_generated"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds all connected clients (waiter, admin) keyed by role.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var liveHub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient adds a connection with its role.
func RegisterClient(conn *websocket.Conn, role string) {
	liveHub.mutex.Lock()
	defer liveHub.mutex.Unlock()
	liveHub.clients[conn] = role
}

// UnregisterClient drops and closes a connection.
func UnregisterClient(conn *websocket.Conn) {
	liveHub.mutex.Lock()
	defer liveHub.mutex.Unlock()
	delete(liveHub.clients, conn)
	conn.Close()
}

// BroadcastMessage sends an event to every connected client. Writes that
// fail drop the client on the next read loop, not here.
func BroadcastMessage(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Failed to marshal hub message: %v", err)
		return
	}

	liveHub.mutex.Lock()
	defer liveHub.mutex.Unlock()
	for conn := range liveHub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Failed to push hub message: %v", err)
		}
	}
}

// ClientCount reports connected clients, used by tests and the health view.
func ClientCount() int {
	liveHub.mutex.Lock()
	defer liveHub.mutex.Unlock()
	return len(liveHub.clients)
}
