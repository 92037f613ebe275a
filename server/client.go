package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/markuplab/playground/markup/completion"
	"golang.org/x/time/rate"
)

// WebSocket timeout constants following Gorilla best practices
// See: https://github.com/gorilla/websocket/blob/master/examples/chat/client.go
const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 54 * time.Second

	// Maximum message size allowed from peer (256KB covers any lesson document)
	maxMessageSize = 256 * 1024

	// Outbound message queue depth per client
	sendQueueSize = 32
)

// Client represents a WebSocket playground client connection.
type Client struct {
	server  *PlaygroundServer
	conn    *websocket.Conn
	sendMsg chan interface{}
	id      string
	session *session
	limiter *rate.Limiter // bounds inbound edit messages

	// forwarderDone closes when the preview forwarder goroutine exits;
	// close waits on it so sendMsg is never closed under a pending send.
	forwarderDone chan struct{}
	closeOnce     sync.Once
}

// readPump handles reading messages from the WebSocket connection.
func (c *Client) readPump() {
	defer func() {
		c.server.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	c.server.logger.Debugw("Read pump started", "client_id", c.id)

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			c.server.logger.Warnw("JSON unmarshal error",
				"error", err.Error(),
				"client_id", c.id,
			)
			continue
		}

		c.routeMessage(&msg)
	}
}

// handleReadError logs unexpected WebSocket read errors. Expected closure
// codes (going away, abnormal, no status) are silently ignored.
func (c *Client) handleReadError(err error) {
	if websocket.IsUnexpectedCloseError(err,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure,
		websocket.CloseNoStatusReceived,
	) {
		c.server.logger.Warnw("WebSocket read error",
			"error", err.Error(),
			"client_id", c.id,
		)
	}
}

// routeMessage dispatches incoming WebSocket messages to handlers.
func (c *Client) routeMessage(msg *ClientMessage) {
	switch msg.Type {
	case "edit":
		c.handleEdit(msg.Text)
	case "completion_request":
		c.handleCompletionRequest(msg)
	case "reset":
		c.handleReset()
	case "ping":
		// Deadline already refreshed by the pong handler
	default:
		c.server.logger.Debugw("Unknown message type",
			"type", msg.Type,
			"client_id", c.id,
		)
	}
}

// handleEdit feeds the buffer's current text into the session debouncer.
// The store write happens only after the quiet interval elapses without
// further edits.
func (c *Client) handleEdit(text string) {
	if !c.limiter.Allow() {
		c.server.logger.Warnw("Edit rate limit exceeded, dropping message",
			"client_id", c.id,
		)
		c.sendJSON(ErrorMessage{
			Type:      "error",
			Error:     "edit rate limit exceeded",
			Timestamp: time.Now().Unix(),
		})
		return
	}

	c.session.debouncer.Edit(text)

	c.server.logger.Debugw("Edit received",
		"client_id", c.id,
		"length", len(text),
	)
}

// handleCompletionRequest serves the plain JSON completion protocol for
// clients that do not speak LSP. The engine works on the snapshot carried
// by the request, not on the shared store, so the candidate list matches
// exactly what the user sees in the editor.
func (c *Client) handleCompletionRequest(msg *ClientMessage) {
	engine := c.server.currentEngine()

	candidates := engine.Complete(
		msg.Text,
		completion.Position{Line: msg.Line, Column: msg.Column},
		completion.Trigger(msg.Trigger),
	)

	c.server.logger.Debugw("Completion request",
		"client_id", c.id,
		"line", msg.Line,
		"column", msg.Column,
		"trigger", msg.Trigger,
		"candidates", len(candidates),
	)

	c.sendJSON(CompletionResponseMessage{
		Type:       "completion_response",
		Candidates: candidates,
		Timestamp:  time.Now().Unix(),
	})
}

// handleReset clears the shared store back to an empty document.
func (c *Client) handleReset() {
	c.session.store.Reset()
	c.server.logger.Debugw("Store reset", "client_id", c.id)
}

// writePump writes queued messages to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	c.server.logger.Debugw("Write pump started", "client_id", c.id)

	for {
		select {
		case <-c.server.ctx.Done():
			c.server.logger.Debugw("Write pump stopping due to server shutdown", "client_id", c.id)
			return

		case msg, ok := <-c.sendMsg:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(msg); err != nil {
				c.server.logger.Warnw("Message write error",
					"error", err.Error(),
					"client_id", c.id,
				)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// startPreviewForwarder relays shared-store writes to this client as
// preview updates. The store write performed by the debounced sync is the
// only signal the preview listens for.
func (c *Client) startPreviewForwarder() {
	updates := c.session.store.Subscribe()
	c.forwarderDone = make(chan struct{})

	c.server.wg.Add(1)
	go func() {
		defer c.server.wg.Done()
		defer close(c.forwarderDone)
		// The store owns channel closure; Unsubscribe is all the exit
		// path needs.
		defer c.session.store.Unsubscribe(updates)

		for {
			select {
			case <-c.session.ctx.Done():
				return
			case text := <-updates:
				c.sendJSON(PreviewUpdateMessage{
					Type:      "preview_update",
					Text:      text,
					Timestamp: time.Now().Unix(),
				})
			}
		}
	}()
}

// sendJSON queues a message for the client without blocking the caller.
func (c *Client) sendJSON(data interface{}) {
	select {
	case c.sendMsg <- data:
	default:
		c.server.logger.Warnw("Failed to queue message (channel full)",
			"client_id", c.id,
		)
	}
}

// close safely closes the client's send channel. It first waits for the
// preview forwarder to exit, so no goroutine can still be inside sendJSON
// when the channel closes. Callers must cancel the session context before
// calling close, or the wait never finishes.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		if c.forwarderDone != nil {
			<-c.forwarderDone
		}
		if c.sendMsg != nil {
			close(c.sendMsg)
		}
	})
}
