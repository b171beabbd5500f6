package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cafe-receipt-bridge/internal/ble"
)

const debugScanWindow = 4 * time.Second

func (s *Server) scan(w http.ResponseWriter, r *http.Request) {
	cfg := s.configSnapshot()
	var req struct {
		Seconds int    `json:"seconds"`
		Name    string `json:"name"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	window := time.Duration(req.Seconds) * time.Second
	if window <= 0 {
		window = ble.DefaultScanWindow
	}
	filter := cfg.BLE.DeviceNameContains
	if req.Name != "" {
		filter = req.Name
	}

	s.log.Info("ble scan start: window=%s filter=%q", window, filter)
	hits, err := ble.Scan(r.Context(), window, filter)
	if err != nil {
		s.log.Failure(err, "ble scan error")
		status := http.StatusInternalServerError
		if errors.Is(err, ble.ErrScanBusy) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}
	s.log.Info("ble scan done: found=%d", len(hits))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "found": hits})
}

// connect uses the configured printer address when the body names none.
func (s *Server) connect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `invalid body: {"address":"AA:BB:CC:DD:EE:FF"}`, http.StatusBadRequest)
			return
		}
	}
	raw := req.Address
	if raw == "" {
		raw = s.configSnapshot().BLE.PrinterAddress
	}

	address, err := ble.NormalizeAddress(raw)
	if err != nil {
		s.log.Warn("ble connect rejected: raw_address=%q err=%v", raw, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.log.Info("ble connect start: address=%s", address)
	if err := s.client.Connect(address); err != nil {
		s.log.Failure(err, "ble connect error: address=%s", address)
		go s.logConnectDebugScan(address)
		http.Error(w, fmt.Sprintf("%v (address=%s; verify the printer is advertising and run /ble/scan)", err, address), http.StatusBadGateway)
		return
	}
	s.log.Info("ble connect ok: address=%s", address)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "address": address})
}

// logConnectDebugScan records whether the printer was advertising at all
// after a failed connect.
func (s *Server) logConnectDebugScan(address string) {
	hits, err := ble.Scan(context.Background(), debugScanWindow, "")
	if errors.Is(err, ble.ErrScanBusy) {
		s.log.Info("ble connect debug scan skipped: another scan already in progress")
		return
	}
	if err != nil {
		s.log.Warn("ble connect debug scan failed: %v", err)
		return
	}

	visible := false
	for i, hit := range hits {
		if hit.Address == address {
			visible = true
		}
		if i < 8 {
			s.log.Debug("ble connect debug hit[%d]: address=%s name=%q rssi=%d", i, hit.Address, hit.Name, hit.RSSI)
		}
	}
	s.log.Info("ble connect debug scan done: hits=%d target_visible=%v", len(hits), visible)
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	connected := s.client.IsConnected()
	s.log.Debug("ble status: connected=%v", connected)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":            true,
		"connected":     connected,
		"address":       s.client.Address(),
		"dispatch_mode": s.configSnapshot().Dispatch.Mode,
	})
}

func (s *Server) disconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.client.Disconnect(); err != nil {
		s.log.Failure(err, "ble disconnect error")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.log.Info("ble disconnect ok")
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "connected": false})
}
