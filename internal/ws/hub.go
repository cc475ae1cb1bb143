package ws

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"

	"go-wms/pkg/logger"
)

// Hub fans warehouse events (ledger adjustments, fulfillment status changes)
// out to connected clients.
type Hub struct {
	Clients    map[*websocket.Conn]bool
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	mutex      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*websocket.Conn]bool),
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte, 64),
	}
}

// Publish marshals an event and queues it for broadcast. Safe on a nil hub
// (services under test run without one) and never blocks the caller.
func (h *Hub) Publish(eventType string, payload interface{}) {
	if h == nil {
		return
	}
	msg, err := json.Marshal(map[string]interface{}{
		"type": eventType,
		"data": payload,
	})
	if err != nil {
		logger.L.Warn().Err(err).Str("event", eventType).Msg("drop unmarshalable ws event")
		return
	}
	select {
	case h.Broadcast <- msg:
	default:
		logger.L.Warn().Str("event", eventType).Msg("ws broadcast queue full, dropping event")
	}
}

func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			h.mutex.Unlock()
			logger.L.Debug().Msg("ws client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}
