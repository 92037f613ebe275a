// Package server exposes the playground over HTTP and WebSocket: the
// completion engine behind a standard LSP endpoint, and a lightweight JSON
// protocol for editor sync and live preview updates.
package server

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/markuplab/playground/config"
	"github.com/markuplab/playground/errors"
	"github.com/markuplab/playground/logger"
	"github.com/markuplab/playground/markup/completion"
	"github.com/markuplab/playground/markup/vocab"
	"go.uber.org/zap"
)

// PlaygroundServer coordinates WebSocket clients, their playground
// sessions, and the shared completion engine.
type PlaygroundServer struct {
	cfg *config.Config

	// engine is swapped atomically when the vocabulary hot-reloads, so
	// in-flight completion requests keep a consistent snapshot.
	engine       atomic.Pointer[completion.Engine]
	vocabWatcher *vocab.Watcher

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	verbosity atomic.Int32
	logger    *zap.SugaredLogger

	httpServer *http.Server

	// Lifecycle management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a playground server from the given configuration.
func New(cfg *config.Config, verbosity int) (*PlaygroundServer, error) {
	if cfg == nil {
		return nil, errors.New("configuration cannot be nil")
	}

	table, err := loadVocabulary(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load vocabulary")
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &PlaygroundServer{
		cfg:        cfg,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.Logger,
		ctx:        ctx,
		cancel:     cancel,
	}
	s.verbosity.Store(int32(verbosity))
	s.engine.Store(completion.NewEngine(table.Tags()))

	if cfg.Vocab.Watch && cfg.Vocab.Path != "" {
		watcher, err := vocab.NewWatcher(cfg.Vocab.Path)
		if err != nil {
			cancel()
			return nil, errors.Wrap(err, "failed to create vocabulary watcher")
		}
		watcher.OnReload(func(table *vocab.Table) error {
			s.engine.Store(completion.NewEngine(table.Tags()))
			s.logger.Infow("Completion engine rebuilt",
				"tags", table.Len())
			return nil
		})
		watcher.Start()
		s.vocabWatcher = watcher
	}

	s.logger.Infow("Playground server created",
		"vocabulary_tags", table.Len(),
		"debounce_ms", cfg.Editor.DebounceMs,
		"vocab_watch", cfg.Vocab.Watch,
	)

	return s, nil
}

// loadVocabulary resolves the tag table: configured file or built-in.
func loadVocabulary(cfg *config.Config) (*vocab.Table, error) {
	if cfg.Vocab.Path == "" {
		return vocab.Default(), nil
	}
	return vocab.LoadFromFile(cfg.Vocab.Path)
}

// currentEngine returns the engine snapshot for this request.
func (s *PlaygroundServer) currentEngine() *completion.Engine {
	return s.engine.Load()
}

// Run starts the server hub event loop.
func (s *PlaygroundServer) Run() {
	for {
		select {
		case <-s.ctx.Done():
			s.logger.Debugw("Server hub stopping due to context cancellation")
			return
		case client := <-s.register:
			s.handleClientRegister(client)
		case client := <-s.unregister:
			s.handleClientUnregister(client)
		}
	}
}

// handleClientRegister adds a client and starts its playground session:
// the shared store is created empty, the debouncer is armed, and the
// preview forwarder begins relaying store writes.
func (s *PlaygroundServer) handleClientRegister(client *Client) {
	s.mu.Lock()
	s.clients[client] = true
	count := len(s.clients)
	s.mu.Unlock()

	client.startPreviewForwarder()

	s.logger.Infow("Playground client connected",
		"client_id", client.id,
		"total_clients", count,
	)
}

// handleClientUnregister tears the session down: pending debounce
// countdowns are cancelled (never fire afterwards) and the shared store
// is reset so a freshly entered playground starts blank.
func (s *PlaygroundServer) handleClientUnregister(client *Client) {
	s.mu.Lock()
	if _, ok := s.clients[client]; ok {
		delete(s.clients, client)
	}
	count := len(s.clients)
	s.mu.Unlock()

	client.session.teardown()
	client.close()

	s.logger.Infow("Playground client disconnected",
		"client_id", client.id,
		"total_clients", count,
	)
}

// ClientCount returns the number of connected clients.
func (s *PlaygroundServer) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
