package api

import (
	"embed"
	"fmt"
	"net/http"
)

//go:embed static/index.html
var uiFS embed.FS

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data, err := uiFS.ReadFile("static/index.html")
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("load ui index: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(data); err != nil {
		s.logger.Printf("write ui index: %v", err)
	}
}
