package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type HTTPServer struct {
	srv  *http.Server
	done chan struct{}
}

// StartHTTP поднимает сервер и гасит его при отмене ctx.
func StartHTTP(ctx context.Context, addr string, handler http.Handler, log *zap.SugaredLogger) *HTTPServer {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	h := &HTTPServer{srv: srv, done: make(chan struct{})}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("http server stopped", "addr", addr, "err", err)
		}
	}()

	go func() {
		defer close(h.done)
		<-ctx.Done()
		// незавершённым запросам даём 10 секунд
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			log.Warnw("http server forced shutdown", "err", err)
		}
	}()

	log.Infow("http server started", "addr", addr)
	return h
}

// Done закрывается после завершения Shutdown.
func (h *HTTPServer) Done() <-chan struct{} { return h.done }
