package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/markuplab/playground/config"
	"github.com/markuplab/playground/debounce"
	"github.com/markuplab/playground/errors"
)

// shutdownTimeout bounds how long graceful shutdown waits for in-flight
// requests and goroutines.
const shutdownTimeout = 10 * time.Second

// Start runs the hub and serves HTTP on the requested port (or the next
// available one). Blocks until the listener fails or Shutdown is called.
func (s *PlaygroundServer) Start(port int) error {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Run()
	}()

	actualPort, err := findAvailablePort(port)
	if err != nil {
		return errors.Wrap(err, "failed to find available port")
	}

	if actualPort != port {
		s.logger.Infow("Port in use, using alternative",
			"requested", port,
			"actual", actualPort,
		)
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", actualPort),
		Handler:           s.setupHTTPRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Infow("Playground server listening",
		"port", actualPort,
		"endpoints", "/ws /lsp /preview /health /api/vocabulary",
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http server failed")
	}
	return nil
}

// Shutdown gracefully stops the server: the HTTP listener drains, the
// context cancellation stops every session debouncer and forwarder, and
// the wait group confirms all goroutines exited.
func (s *PlaygroundServer) Shutdown() error {
	s.logger.Infow("Playground server shutting down")

	if s.vocabWatcher != nil {
		if err := s.vocabWatcher.Close(); err != nil {
			s.logger.Warnw("Failed to close vocabulary watcher", "error", err)
		}
	}

	var httpErr error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		httpErr = s.httpServer.Shutdown(ctx)
	}

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Infow("Playground server stopped")
	case <-time.After(shutdownTimeout):
		s.logger.Warnw("Shutdown timed out waiting for goroutines")
	}

	return httpErr
}

// debounceQuiet resolves the configured quiet interval.
func debounceQuiet(cfg *config.Config) time.Duration {
	if cfg.Editor.DebounceMs <= 0 {
		return debounce.DefaultQuiet
	}
	return time.Duration(cfg.Editor.DebounceMs) * time.Millisecond
}

// checkOrigin validates WebSocket origin against configured allowed
// origins. Prefix matching allows any port number.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// Allow requests with no origin header (direct WebSocket clients, tests)
	if origin == "" {
		return true
	}

	cfg, err := config.Load()
	if err != nil {
		// If config fails to load, use secure defaults (localhost only)
		return strings.HasPrefix(origin, "http://localhost") ||
			strings.HasPrefix(origin, "https://localhost")
	}

	for _, allowed := range cfg.Server.AllowedOrigins {
		if strings.HasPrefix(origin, allowed) {
			return true
		}
	}

	return false
}

// isPortAvailable checks if a port is available for binding.
func isPortAvailable(port int) bool {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	_ = listener.Close()
	return true
}

// findAvailablePort tries the requested port first, then the configured
// defaults, then a small high range.
func findAvailablePort(requestedPort int) (int, error) {
	if isPortAvailable(requestedPort) {
		return requestedPort, nil
	}

	for _, port := range []int{config.DefaultPort, config.FallbackPort} {
		if port != requestedPort && isPortAvailable(port) {
			return port, nil
		}
	}

	fallbackStart := 8650
	for i := 0; i < 10; i++ {
		if port := fallbackStart + i; isPortAvailable(port) {
			return port, nil
		}
	}

	return 0, errors.Newf("no available ports found (tried %d, defaults, and range %d-%d)",
		requestedPort, fallbackStart, fallbackStart+9)
}
