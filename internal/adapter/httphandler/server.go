package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

const defaultHandlerTimeout = 10 * time.Second

type HTTPServerOpt func(*http.Server)

// HandlerTimeoutOpt bounds every request. Slower handlers get 503.
func HandlerTimeoutOpt(d time.Duration) HTTPServerOpt {
	return func(s *http.Server) {
		s.Handler = http.TimeoutHandler(s.Handler, d, "unavailable")
	}
}

type HTTPServer struct {
	httpServer *http.Server
}

func NewHTTPServer(addr string, handler http.Handler, opts ...HTTPServerOpt) HTTPServer {
	s := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       30 * time.Second,
	}
	if len(opts) == 0 {
		opts = []HTTPServerOpt{HandlerTimeoutOpt(defaultHandlerTimeout)}
	}
	for _, opt := range opts {
		opt(s)
	}
	return HTTPServer{s}
}

func (s HTTPServer) Run(stopFn context.CancelFunc) {
	const op = "HTTPServer.Run"
	log := slog.With("op", op)

	defer stopFn()

	log.Info("listening", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return
		}
		log.Error("unexpected servers shutdown", "err", err)
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
