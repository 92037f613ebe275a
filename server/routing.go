package server

import "net/http"

// setupHTTPRoutes configures all HTTP handlers on a fresh mux.
func (s *PlaygroundServer) setupHTTPRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", s.corsMiddleware(s.HandleWebSocket))      // Playground protocol (edits, preview updates, JSON completion)
	mux.HandleFunc("/lsp", s.corsMiddleware(s.HandleLSPWebSocket))  // LSP protocol (completion over WebSocket)
	mux.HandleFunc("/preview", s.corsMiddleware(s.HandlePreview))   // Sandboxed preview page
	mux.HandleFunc("/health", s.corsMiddleware(s.HandleHealth))
	mux.HandleFunc("/api/vocabulary", s.corsMiddleware(s.HandleVocabulary))

	return mux
}

// corsMiddleware adds CORS headers to HTTP responses using the configured
// allowed origins — the same origin validation as WebSocket connections.
func (s *PlaygroundServer) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && checkOrigin(r) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}
