package http

import (
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/fredcamaral/carouselkit/internal/domain/ports"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

// Event types only the socket layer emits
const (
	EventTypeConnected = "connected"
	EventTypeSnapshot  = "snapshot"
)

// createUpgrader creates a WebSocket upgrader with proper origin validation
func (s *Server) createUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.isValidOrigin,
	}
}

// WebSocketClient represents a WebSocket client connection
type WebSocketClient struct {
	id      string
	conn    *websocket.Conn
	send    chan ports.UpdateEvent
	server  *Server
	onClose func()
}

// ClientMessage represents a message received from the client
type ClientMessage struct {
	Type string `json:"type"`
}

// handleWebSocket upgrades the request and streams document events
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := s.createUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &WebSocketClient{
		id:     uuid.New().String(),
		conn:   conn,
		send:   make(chan ports.UpdateEvent, 256),
		server: s,
	}
	if s.metrics != nil {
		s.metrics.WebSocketOpened()
		client.onClose = s.metrics.WebSocketClosed
	}

	// Queue the greeting before registering so it is the first frame
	client.send <- ports.UpdateEvent{
		Type:      EventTypeConnected,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"clientId": client.id,
			"carousel": s.snapshot(),
		},
	}
	s.connMgr.RegisterConnection(&Connection{ID: client.id, Send: client.send})
	s.logger.Debug("websocket client connected", "client", client.id)

	go client.writePump()
	go client.readPump()
}

// readPump reads client requests until the connection drops
func (c *WebSocketClient) readPump() {
	defer func() {
		c.server.connMgr.Unregister(c.id)
		_ = c.conn.Close()
		if c.onClose != nil {
			c.onClose()
		}
		c.server.logger.Debug("websocket client disconnected", "client", c.id)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.server.logger.Warn("websocket connection error", "client", c.id, "error", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.server.logger.Debug("ignoring malformed client message", "client", c.id, "error", err)
			continue
		}
		c.handleMessage(msg)
	}
}

// handleMessage answers snapshot requests; anything else is ignored
func (c *WebSocketClient) handleMessage(msg ClientMessage) {
	if msg.Type != EventTypeSnapshot {
		return
	}
	event := ports.UpdateEvent{
		Type:      EventTypeSnapshot,
		Timestamp: time.Now(),
		Data:      c.server.snapshot(),
	}
	c.server.connMgr.sendTo(c.id, event)
}

// writePump pumps messages to the WebSocket connection
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// isValidOrigin accepts same-host, loopback and private network origins
// and anything listed in the CORS origins
func (s *Server) isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil || originURL.Host == "" {
		s.logger.Warn("websocket connection rejected: invalid origin", "origin", origin)
		return false
	}

	if strings.EqualFold(originURL.Host, r.Host) || isLocalHost(originURL.Hostname()) {
		return true
	}

	for _, allowed := range s.config.GetCORSOrigins() {
		if allowed == "*" || strings.EqualFold(originURL.String(), allowed) {
			return true
		}
		// Wildcard subdomains (*.example.com)
		if domain, ok := strings.CutPrefix(allowed, "*."); ok {
			if strings.HasSuffix(originURL.Hostname(), "."+domain) {
				return true
			}
		}
	}

	s.logger.Warn("websocket connection rejected: origin not allowed", "origin", origin)
	return false
}

// isLocalHost reports loopback and private network hosts
func isLocalHost(hostname string) bool {
	if hostname == "localhost" {
		return true
	}
	ip := net.ParseIP(hostname)
	return ip != nil && (ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified())
}
