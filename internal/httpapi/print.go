package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"cafe-receipt-bridge/internal/printing"
)

func (s *Server) printText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	page, err := printing.LookupCodePage(s.configSnapshot().Receipt.CodePage)
	if err != nil {
		page = printing.DefaultCodePage()
	}
	s.forward(w, r, "print/text", printing.TextReceipt(page, req.Text))
}

// printRaw accepts a document another till already encoded.
func (s *Server) printRaw(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Base64 string `json:"base64"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Base64 == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	data, err := base64.StdEncoding.DecodeString(req.Base64)
	if err != nil {
		http.Error(w, "invalid base64", http.StatusBadRequest)
		return
	}
	s.forward(w, r, "print/raw", data)
}

func (s *Server) forward(w http.ResponseWriter, r *http.Request, route string, data []byte) {
	sink := s.dispatcher()
	if sink == nil {
		s.log.Warn("%s: no dispatch sink", route)
		http.Error(w, "no printer sink configured", http.StatusServiceUnavailable)
		return
	}

	s.log.Info("%s: bytes=%d", route, len(data))
	if err := sink.Dispatch(r.Context(), data); err != nil {
		s.log.Failure(err, "%s error", route)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.log.Info("%s ok", route)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "bytes": len(data)})
}
