package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/howsu-app/howsu-backend/internal/log"
)

const shutdownTimeout = 30 * time.Second

// HTTPServer owns the backend's listener lifecycle: Start blocks until the
// listener closes, Stop drains in-flight requests and gives up after
// shutdownTimeout so a stuck connection cannot wedge process exit.
type HTTPServer struct {
	server *http.Server
}

// NewHTTPServer wraps handler in a server listening on addr.
func NewHTTPServer(handler http.Handler, addr string) *HTTPServer {
	return &HTTPServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// HealthHandler answers liveness probes.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok","service":"howsu-backend"}`))
}

// Start listens and serves until the server is stopped. A closed listener
// is a normal exit, not an error.
func (h *HTTPServer) Start() error {
	log.LogInfoWithFields("http", "Listening", map[string]any{
		"addr": h.server.Addr,
	})

	if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully, bounded by shutdownTimeout.
func (h *HTTPServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.LogInfoWithFields("http", "Draining connections", map[string]any{
		"addr":    h.server.Addr,
		"timeout": shutdownTimeout.String(),
	})

	if err := h.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
