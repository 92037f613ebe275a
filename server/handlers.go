package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/markuplab/playground/internal/version"
	"golang.org/x/time/rate"
)

// playgroundUpgrader upgrades playground protocol connections with origin
// checking.
var playgroundUpgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin:     checkOrigin,
}

// HandleWebSocket upgrades HTTP to WebSocket and serves the playground
// protocol: edits in, preview updates and completion responses out. Each
// connection gets its own session (store + debouncer), created empty here
// and reset on disconnect.
func (s *PlaygroundServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := playgroundUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("Failed to upgrade WebSocket", "error", err)
		return
	}

	client := &Client{
		server:  s,
		conn:    conn,
		sendMsg: make(chan interface{}, sendQueueSize),
		id:      uuid.NewString(),
		session: newSession(s.ctx, debounceQuiet(s.cfg)),
		limiter: rate.NewLimiter(
			rate.Limit(s.cfg.Server.EditRatePerSecond),
			s.cfg.Server.EditBurst,
		),
	}

	s.register <- client

	go client.writePump()
	go client.readPump()
}

// HandleHealth serves the health check endpoint with version info.
func (s *PlaygroundServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	versionInfo := version.Get()
	s.mu.RLock()
	clientCount := len(s.clients)
	s.mu.RUnlock()

	health := map[string]interface{}{
		"status":     "ok",
		"version":    versionInfo.Version,
		"commit":     versionInfo.CommitHash,
		"build_time": versionInfo.BuildTime,
		"clients":    clientCount,
		"verbosity":  int(s.verbosity.Load()),
	}

	writeJSON(w, http.StatusOK, health)
}

// HandleVocabulary lists the current completion vocabulary, mostly for
// debugging which table a running server actually holds.
func (s *PlaygroundServer) HandleVocabulary(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	tags := s.currentEngine().Tags()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tags":  tags,
		"count": len(tags),
	})
}
