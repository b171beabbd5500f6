package httpapi

import (
	"encoding/json"
	"net/http"

	"cafe-receipt-bridge/internal/config"
)

func (s *Server) getConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "config": s.configSnapshot()})
}

// setConfig persists the posted config and swaps in a new sink and receipt
// service built from it.
func (s *Server) setConfig(w http.ResponseWriter, r *http.Request) {
	var next config.Config
	if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	config.ApplyDefaults(&next)
	if s.cfgPath != "" {
		if err := config.Save(s.cfgPath, &next); err != nil {
			s.log.Failure(err, "config save error")
			http.Error(w, "config save failed", http.StatusInternalServerError)
			return
		}
	}
	s.apply(&next)
	s.log.Info("config updated: dispatch=%s", next.Dispatch.Mode)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
