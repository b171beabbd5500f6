package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"cafe-receipt-bridge/internal/logging"
	"cafe-receipt-bridge/internal/receipt"

	"github.com/google/uuid"
)

type orderPrinter func(*receipt.Service, context.Context, receipt.Order) receipt.Result

type reportPrinter func(*receipt.Service, context.Context, receipt.ReportQuery) receipt.Result

// receiptResponse is the body of every /receipts call. Alert carries the
// French message the till should show when the print failed.
type receiptResponse struct {
	OK         bool           `json:"ok"`
	JobID      string         `json:"job_id"`
	Kind       receipt.Kind   `json:"kind"`
	Bytes      int            `json:"bytes"`
	Dispatches int            `json:"dispatches"`
	Deferred   int            `json:"deferred"`
	Reason     receipt.Reason `json:"reason,omitempty"`
	Alert      string         `json:"alert,omitempty"`
	Error      string         `json:"error,omitempty"`
}

func (s *Server) orderReceipt(route string, build orderPrinter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := uuid.NewString()
		log := s.log.With("job_id", jobID)

		var order receipt.Order
		if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
			log.Warn("receipts/%s: invalid body: %v", route, err)
			http.Error(w, "invalid order body", http.StatusBadRequest)
			return
		}
		log.Info("receipts/%s: order=%s items=%d", route, order.ID, len(order.Items))
		s.respond(w, log, jobID, build(s.receiptService(), r.Context(), order))
	}
}

func (s *Server) reportReceipt(route string, build reportPrinter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := uuid.NewString()
		log := s.log.With("job_id", jobID)

		var req receipt.ReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Warn("receipts/%s: invalid body: %v", route, err)
			http.Error(w, "invalid report body", http.StatusBadRequest)
			return
		}
		cfg := s.configSnapshot()
		query, err := req.Query(cfg.Location())
		if err != nil {
			log.Warn("receipts/%s: %v", route, err)
			http.Error(w, "invalid report dates, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		log.Info("receipts/%s: period=%s orders=%d", route, query.Period, query.OrderCount)
		s.respond(w, log, jobID, build(s.receiptService(), r.Context(), query))
	}
}

func (s *Server) separationTest(w http.ResponseWriter, r *http.Request) {
	jobID := uuid.NewString()
	log := s.log.With("job_id", jobID)
	log.Info("receipts/test/separation")
	s.respond(w, log, jobID, s.receiptService().PrintSeparationTest(r.Context()))
}

func (s *Server) respond(w http.ResponseWriter, log *logging.Logger, jobID string, res receipt.Result) {
	body := receiptResponse{
		OK:         res.OK(),
		JobID:      jobID,
		Kind:       res.Kind,
		Bytes:      res.Bytes,
		Dispatches: res.Dispatches,
		Deferred:   res.Deferred,
	}
	status := http.StatusOK
	if !res.OK() {
		body.Reason = res.Reason
		body.Alert = res.AlertMessage()
		if res.Err != nil {
			body.Error = res.Err.Error()
		}
		status = http.StatusBadGateway
		if res.Reason == receipt.ReasonMissingTable {
			status = http.StatusUnprocessableEntity
		}
	}
	log.Info("job done: %s", res)
	writeJSON(w, status, body)
}
