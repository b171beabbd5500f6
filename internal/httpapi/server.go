package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"cafe-receipt-bridge/internal/ble"
	"cafe-receipt-bridge/internal/config"
	"cafe-receipt-bridge/internal/dispatch"
	"cafe-receipt-bridge/internal/logging"
	"cafe-receipt-bridge/internal/receipt"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 10 * time.Second

// SinkOpener builds the dispatch sink for a config.
type SinkOpener func(cfg *config.Config, client *ble.Client) (dispatch.Sink, error)

type Server struct {
	cfgPath  string
	log      *logging.Logger
	client   *ble.Client
	openSink SinkOpener

	mu       sync.RWMutex
	cfg      *config.Config
	cors     *corsPolicy
	sink     dispatch.Sink
	receipts *receipt.Service
}

func NewServer(cfg *config.Config, cfgPath string, log *logging.Logger) *Server {
	if err := ble.Enable(); err != nil {
		log.Failure(err, "ble enable failed")
	} else {
		log.Info("ble adapter enabled")
	}
	return newServer(cfg, cfgPath, log, &ble.Client{}, dispatch.New)
}

func newServer(cfg *config.Config, cfgPath string, log *logging.Logger, client *ble.Client, open SinkOpener) *Server {
	s := &Server{cfgPath: cfgPath, log: log, client: client, openSink: open}
	s.apply(cfg)
	return s
}

// apply installs cfg together with the CORS policy, sink and receipt
// service derived from it.
func (s *Server) apply(cfg *config.Config) {
	cors := newCORSPolicy(cfg, s.log)

	var d receipt.Dispatcher
	sink, err := s.openSink(cfg, s.client)
	if err != nil {
		s.log.Failure(err, "dispatch sink unavailable: mode=%s", cfg.Dispatch.Mode)
	} else {
		d = sink
		s.log.Info("dispatch mode: %s", cfg.Dispatch.Mode)
	}

	svc, err := receipt.FromConfig(cfg, d, s.log, s.deferredResult)
	if err != nil {
		s.log.Failure(err, "receipt settings rejected, using defaults")
		svc = receipt.NewService(d, s.log, receipt.Options{SplitDelay: cfg.SplitDelay(), OnDeferred: s.deferredResult})
	}

	s.mu.Lock()
	old, oldSvc := s.sink, s.receipts
	s.cfg, s.cors, s.sink, s.receipts = cfg, cors, sink, svc
	s.mu.Unlock()

	if old == nil {
		return
	}
	// a split ticket may still owe its agent half to the previous sink
	if oldSvc != nil && oldSvc.Pending() > 0 {
		s.log.Info("previous sink closes after %d pending ticket(s)", oldSvc.Pending())
		go func() {
			oldSvc.Wait()
			s.closeRetired(old)
		}()
		return
	}
	s.closeRetired(old)
}

func (s *Server) closeRetired(sink dispatch.Sink) {
	if err := sink.Close(); err != nil {
		s.log.Warn("closing previous sink: %v", err)
	}
}

// deferredResult sees second halves of split tickets after the HTTP
// response has gone out, so the outcome can only be logged.
func (s *Server) deferredResult(r receipt.Result) {
	if r.OK() {
		s.log.Tagged(string(r.Kind)).Info("deferred ticket printed: %s", r)
		return
	}
	s.log.Tagged(string(r.Kind)).Warn("deferred ticket lost: %s", r.AlertMessage())
}

// Handler wires the routes. Everything but /health needs the api key.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)
	r.Use(corsMiddleware(s.log, s.currentCORS))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Route("/ble", func(r chi.Router) {
			r.Post("/scan", s.scan)
			r.Post("/connect", s.connect)
			r.Post("/disconnect", s.disconnect)
			r.Get("/status", s.status)
		})

		r.Post("/print/text", s.printText)
		r.Post("/print/raw", s.printRaw)

		r.Route("/receipts", func(r chi.Router) {
			r.Post("/invoice", s.orderReceipt("invoice", (*receipt.Service).PrintInvoice))
			r.Post("/ticket", s.orderReceipt("ticket", (*receipt.Service).PrintTicket))
			r.Post("/table", s.orderReceipt("table", (*receipt.Service).PrintTableTicket))
			r.Post("/table/split", s.orderReceipt("table/split", (*receipt.Service).PrintTableTickets))
			r.Post("/table/customer", s.orderReceipt("table/customer", (*receipt.Service).PrintTableCustomerTicket))
			r.Post("/table/agent", s.orderReceipt("table/agent", (*receipt.Service).PrintTableAgentTicket))
			r.Post("/report", s.reportReceipt("report", (*receipt.Service).PrintReport))
			r.Post("/report/thermal", s.reportReceipt("report/thermal", (*receipt.Service).PrintThermalReport))
			r.Post("/test/separation", s.separationTest)
		})

		r.Get("/config", s.getConfig)
		r.Post("/config", s.setConfig)
	})
	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	cfg := s.configSnapshot()
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: s.Handler(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.log.Info("listening on http://%s", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		s.log.Info("shutdown initiated")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Failure(err, "graceful shutdown failed")
		return srv.Close()
	}
	if err := <-serverErrors; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return s.closeSink()
}

// closeSink lets pending split tickets finish, then closes the sink.
func (s *Server) closeSink() error {
	if svc := s.receiptService(); svc != nil {
		svc.Wait()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sink == nil {
		return nil
	}
	err := s.sink.Close()
	s.sink = nil
	return err
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("http %s %s %d (%s)", r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != s.configSnapshot().Auth.ApiKey {
			s.log.Warn("unauthorized %s %s", r.Method, r.URL.Path)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func (s *Server) configSnapshot() config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.cfg
}

func (s *Server) currentCORS() *corsPolicy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cors
}

func (s *Server) receiptService() *receipt.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.receipts
}

// dispatcher returns the live sink, or nil when none could be opened.
func (s *Server) dispatcher() dispatch.Sink {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sink
}
