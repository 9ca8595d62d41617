package draws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event types pushed to spectators subscribed to a tournament channel.
const (
	EventDrawGenerated      = "DRAW_GENERATED"
	EventDebateReassigned   = "DEBATE_REASSIGNED"
	EventResultRecorded     = "RESULT_RECORDED"
	EventRoundStatusChanged = "ROUND_STATUS_CHANGED"
	EventPhaseStatusChanged = "PHASE_STATUS_CHANGED"
)

// WebSocketMessage: конверт для всех событий жеребьёвки и результатов.
type WebSocketMessage struct {
	Type         string      `json:"type"`
	Payload      interface{} `json:"payload"`
	TournamentID string      `json:"tournament_id,omitempty"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	Channel  string // tournament id the client subscribed to
	IsClosed bool
	Mu       sync.Mutex
}

// Hub fans tournament events out to subscribed websocket clients. Channels
// are keyed by tournament id, so a client only sees the tournament it asked
// for.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	channels   map[string]map[*Client]bool
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		channels:   make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.channels[client.Channel]; !ok {
				h.channels[client.Channel] = make(map[*Client]bool)
			}
			h.channels[client.Channel][client] = true
			log.Printf("Client subscribed to tournament %s. Subscribers: %d", client.Channel, len(h.channels[client.Channel]))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if subscribers, ok := h.channels[client.Channel]; ok {
				if _, okClient := subscribers[client]; okClient {
					client.Mu.Lock()
					if !client.IsClosed {
						close(client.Send)
						client.IsClosed = true
					}
					client.Mu.Unlock()
					delete(subscribers, client)
					if len(subscribers) == 0 {
						delete(h.channels, client.Channel)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToTournament sends an event to every client subscribed to the
// tournament. Slow clients are skipped, never waited on.
func (h *Hub) BroadcastToTournament(tournamentID string, eventType string, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	subscribers, ok := h.channels[tournamentID]
	if !ok {
		return
	}

	messageBytes, err := json.Marshal(WebSocketMessage{
		Type:         eventType,
		Payload:      payload,
		TournamentID: tournamentID,
	})
	if err != nil {
		log.Printf("Error marshalling %s event for tournament %s: %v", eventType, tournamentID, err)
		return
	}

	for client := range subscribers {
		client.Mu.Lock()
		if client.IsClosed {
			client.Mu.Unlock()
			continue
		}
		select {
		case client.Send <- messageBytes:
		default:
			log.Printf("Client's send channel full for tournament %s. Skipping.", tournamentID)
		}
		client.Mu.Unlock()
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
		c.Mu.Lock()
		c.IsClosed = true
		c.Mu.Unlock()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		// Inbound messages are ignored; the socket is one-way.
		_, _, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Mu.Lock()
		c.IsClosed = true
		c.Mu.Unlock()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
