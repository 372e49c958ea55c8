package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/MIAOUS-group/go-port-contention/internal/logging"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WebServer exposes request/send history and Prometheus metrics over HTTP.
type WebServer struct {
	srv *http.Server
	hub *Hub
	log logging.Logger
}

// NewWebServer builds an HTTP server serving the hub's JSON API and /metrics.
func NewWebServer(addr string, hub *Hub, logger logging.Logger) *WebServer {
	if logger == nil {
		logger = logging.Default()
	}
	ws := &WebServer{
		hub: hub,
		log: logger.With(logging.Subsystem("telemetry")),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/history", hub.handleHistory)
	mux.HandleFunc("/api/live", hub.handleLive)
	mux.HandleFunc("/api/health", hub.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	ws.srv = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return ws
}

// Start runs the HTTP server until ctx is cancelled.
func (w *WebServer) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = w.srv.Shutdown(shutdownCtx)
	}()

	w.log.Info("telemetry server listening", logging.Field{Key: "addr", Value: w.srv.Addr})
	if err := w.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		w.log.Error("telemetry server error", logging.Field{Key: "error", Value: err})
	}
}

// Addr returns the server's configured listen address, for logging.
func (w *WebServer) Addr() string {
	return w.srv.Addr
}
