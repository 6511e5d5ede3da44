package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"capestudio/internal/logging"
)

// listener owns one http.Server bound to a TCP address.
type listener struct {
	name    string
	bind    string
	logger  *slog.Logger
	handler http.Handler

	ln     net.Listener
	server *http.Server
}

func newListener(name, bind string, handler http.Handler, logger *slog.Logger) *listener {
	return &listener{
		name:    name,
		bind:    bind,
		handler: handler,
		logger:  logger,
	}
}

func (l *listener) start() error {
	if l == nil {
		return nil
	}
	ln, err := net.Listen("tcp", l.bind)
	if err != nil {
		return fmt.Errorf("%s listen: %w", l.name, err)
	}
	// No write timeout: archive downloads and tunnelled streams are long-lived.
	srv := &http.Server{
		Handler:           l.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	l.ln = ln
	l.server = srv

	name, logger := l.name, l.logger
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(logger, name+" server error", "listener_failed",
				logging.Error(err),
				logging.String("address", ln.Addr().String()),
			)
		}
	}()

	l.logger.Info(l.name+" listening",
		logging.String("address", ln.Addr().String()),
		logging.String(logging.FieldEventType, "listener_started"),
	)
	return nil
}

func (l *listener) addr() string {
	if l == nil || l.ln == nil {
		return ""
	}
	return l.ln.Addr().String()
}

func (l *listener) stop() {
	if l == nil || l.server == nil {
		return
	}
	srv := l.server
	l.server = nil
	l.ln = nil
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
	}
}
