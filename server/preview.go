package server

import (
	"embed"
	"net/http"
)

//go:embed assets/preview.html
var previewAssets embed.FS

// HandlePreview serves the preview page. The page subscribes to the
// playground WebSocket and renders every preview_update inside a
// sandboxed iframe, so the user's markup never executes in the host
// page's context.
func (s *PlaygroundServer) HandlePreview(w http.ResponseWriter, r *http.Request) {
	page, err := previewAssets.ReadFile("assets/preview.html")
	if err != nil {
		s.logger.Errorw("Failed to read embedded preview page", "error", err)
		writeError(w, http.StatusInternalServerError, "preview page unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}
