package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/gin-gonic/gin"
)

// Event is one server-sent event delivered to connected review UIs
type Event struct {
	Name    string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Manager fans lifecycle events out to every connected client. The review
// surface has no accounts, so every client receives every event.
type Manager struct {
	clients    map[chan Event]bool
	register   chan chan Event
	unregister chan chan Event
	broadcast  chan Event
}

// NewManager creates a new SSE manager
func NewManager() *Manager {
	return &Manager{
		clients:    make(map[chan Event]bool),
		register:   make(chan chan Event),
		unregister: make(chan chan Event),
		broadcast:  make(chan Event, 64),
	}
}

// Run processes client registration and event fan-out. Call in a goroutine.
func (m *Manager) Run() {
	for {
		select {
		case client := <-m.register:
			m.clients[client] = true
		case client := <-m.unregister:
			if _, ok := m.clients[client]; ok {
				delete(m.clients, client)
				close(client)
			}
		case event := <-m.broadcast:
			for client := range m.clients {
				select {
				case client <- event:
				default:
					// Slow client; drop the event rather than block the hub.
				}
			}
		}
	}
}

// Broadcast sends an event to all connected clients (non-blocking)
func (m *Manager) Broadcast(event string, payload interface{}) {
	select {
	case m.broadcast <- Event{Name: event, Payload: payload}:
	default:
		log.Printf("[SSE] Broadcast buffer full, dropping event %s", event)
	}
}

// ServeHTTP streams events to one client until it disconnects
func (m *Manager) ServeHTTP(c *gin.Context) {
	client := make(chan Event, 16)
	m.register <- client
	defer func() {
		m.unregister <- client
	}()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-client:
			if !ok {
				return false
			}
			data, err := json.Marshal(event.Payload)
			if err != nil {
				log.Printf("[SSE] Failed to marshal payload for %s: %v", event.Name, err)
				return true
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, data)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
