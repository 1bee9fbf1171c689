package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultHandlerTimeout    = 5 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultIdleTimeout       = 2 * time.Second
)

// ServerTimeouts bounds request handling. Zero fields fall back to the
// package defaults, so an empty config section still yields a server
// that cannot hang on a slow client or handler.
type ServerTimeouts struct {
	Handler    time.Duration
	ReadHeader time.Duration
	Idle       time.Duration
}

func (t ServerTimeouts) withDefaults() ServerTimeouts {
	if t.Handler <= 0 {
		t.Handler = defaultHandlerTimeout
	}
	if t.ReadHeader <= 0 {
		t.ReadHeader = defaultReadHeaderTimeout
	}
	if t.Idle <= 0 {
		t.Idle = defaultIdleTimeout
	}
	return t
}

type HTTPServer struct {
	httpServer *http.Server
}

func NewHTTPServer(
	addr string, timeouts ServerTimeouts, handler http.Handler,
) HTTPServer {
	timeouts = timeouts.withDefaults()
	handler = http.TimeoutHandler(handler, timeouts.Handler, "unavailable")
	s := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: timeouts.ReadHeader,
		IdleTimeout:       timeouts.Idle,
	}
	return HTTPServer{s}
}

// Run serves until the listener fails or Close is called, then invokes
// stopFn so the rest of the application winds down with it.
func (s HTTPServer) Run(stopFn context.CancelFunc) {
	const op = "HTTPServer.Run"
	log := slog.With("op", op)

	defer stopFn()
	err := s.httpServer.ListenAndServe()
	if err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return
		}
		log.Error("listener failed", "err", err)
	}
}

func (s HTTPServer) Close(ctx context.Context) {
	const op = "HTTPServer.Close"
	log := slog.With("op", op)

	log.Info("closing http server...")

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		log.Error("failed to shutdown gracefully", "err", err)
	}
	log.Info("http server is closed")
}
