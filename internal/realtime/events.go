// file: internal/realtime/events.go
// version: 2.0.0
// guid: 8d25cdcd-13d5-4bdb-96a7-6f8f76d64889

package realtime

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// EventType names a change pushed to connected clients.
type EventType string

const (
	EventDownloadsChanged   EventType = "downloads.changed"
	EventPreferencesChanged EventType = "preferences.changed"
	EventCacheCleared       EventType = "cache.cleared"
	EventConnected          EventType = "connection.established"
)

// Event is one server-sent message.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Client is a connected SSE subscriber. Topics empty means every event.
type Client struct {
	ID      string
	Channel chan *Event
	topics  map[EventType]bool
}

// NewClient creates a client with a buffered channel.
func NewClient(id string, topics ...EventType) *Client {
	c := &Client{
		ID:      id,
		Channel: make(chan *Event, 32),
		topics:  make(map[EventType]bool, len(topics)),
	}
	for _, t := range topics {
		c.topics[t] = true
	}
	return c
}

// Wants reports whether the client receives events of type t.
func (c *Client) Wants(t EventType) bool {
	return len(c.topics) == 0 || c.topics[t]
}

// EventHub fans library changes out to SSE clients.
type EventHub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	seq     uint64
}

// NewEventHub creates an empty hub.
func NewEventHub() *EventHub {
	return &EventHub{clients: make(map[string]*Client)}
}

// RegisterClient adds a client to the hub.
func (h *EventHub) RegisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	log.Printf("[DEBUG] SSE client %s registered, total clients: %d", client.ID, len(h.clients))
}

// UnregisterClient removes a client and closes its channel.
func (h *EventHub) UnregisterClient(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Channel)
		delete(h.clients, clientID)
		log.Printf("[DEBUG] SSE client %s unregistered, remaining clients: %d", clientID, len(h.clients))
	}
}

// Broadcast delivers event to every interested client. Slow clients drop events.
func (h *EventHub) Broadcast(event *Event) int {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, client := range h.clients {
		if !client.Wants(event.Type) {
			continue
		}
		select {
		case client.Channel <- event:
			count++
		default:
			log.Printf("[WARN] SSE client %s channel full, dropping %s", client.ID, event.Type)
		}
	}
	return count
}

// DownloadsChanged announces a new downloads count.
func (h *EventHub) DownloadsChanged(count int) {
	h.Broadcast(&Event{Type: EventDownloadsChanged, Data: map[string]any{"count": count}})
}

// PreferencesChanged announces the new theme and font size.
func (h *EventHub) PreferencesChanged(theme, fontSize string) {
	h.Broadcast(&Event{Type: EventPreferencesChanged, Data: map[string]any{"theme": theme, "fontSize": fontSize}})
}

// CacheCleared announces how many cache entries were dropped.
func (h *EventHub) CacheCleared(n int) {
	h.Broadcast(&Event{Type: EventCacheCleared, Data: map[string]any{"cleared": n}})
}

// ClientCount returns the number of connected clients.
func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *EventHub) nextID() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	return fmt.Sprintf("client-%d-%d", time.Now().UnixNano(), h.seq)
}

// HandleSSE streams events until the request context ends.
// ?topic= may be repeated to filter event types.
func (h *EventHub) HandleSSE(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache, no-transform")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	// Streams outlive the server's WriteTimeout.
	_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})

	var topics []EventType
	for _, t := range c.QueryArray("topic") {
		topics = append(topics, EventType(t))
	}
	client := NewClient(h.nextID(), topics...)
	h.RegisterClient(client)
	defer h.UnregisterClient(client.ID)

	if err := writeEvent(c, &Event{
		Type:      EventConnected,
		Timestamp: time.Now(),
		Data:      map[string]any{"client_id": client.ID},
	}); err != nil {
		return
	}

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case event := <-client.Channel:
			if err := writeEvent(c, event); err != nil {
				log.Printf("[WARN] SSE write to %s failed: %v", client.ID, err)
				return
			}
		case <-ticker.C:
			if _, err := c.Writer.Write([]byte(": heartbeat\n\n")); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}

func writeEvent(c *gin.Context, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}
