// services/hub.go - Connected websocket clients for realtime pushes
package services

import (
	"log"
	"sync"

	"gametrack/models"

	"github.com/gofiber/websocket/v2"
)

var (
	clientsMu sync.Mutex
	clients   = make(map[uint]map[*websocket.Conn]bool)
)

// RegisterClient attaches a websocket connection to a user.
func RegisterClient(userID uint, conn *websocket.Conn) {
	clientsMu.Lock()
	defer clientsMu.Unlock()

	if clients[userID] == nil {
		clients[userID] = make(map[*websocket.Conn]bool)
	}
	clients[userID][conn] = true
}

// UnregisterClient detaches a connection. Safe to call twice.
func UnregisterClient(userID uint, conn *websocket.Conn) {
	clientsMu.Lock()
	defer clientsMu.Unlock()

	if conns := clients[userID]; conns != nil {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(clients, userID)
		}
	}
}

// PushToUser sends a notification to every open connection of one
// user. Write failures only drop the realtime copy; the inbox record
// already exists.
func PushToUser(userID uint, notif models.Notification) {
	clientsMu.Lock()
	conns := make([]*websocket.Conn, 0, len(clients[userID]))
	for conn := range clients[userID] {
		conns = append(conns, conn)
	}
	clientsMu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(notif); err != nil {
			log.Printf("Websocket push to user %d failed: %v", userID, err)
		}
	}
}
