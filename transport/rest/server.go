package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// NewRouter wires the HTTP endpoints.
func NewRouter(logger *slog.Logger, games gameServer, stats statsService) http.Handler {
	mux := http.NewServeMux()

	status := NewStatusHandler(games)
	mux.HandleFunc("GET /ping", status.PingHandler)
	mux.HandleFunc("GET /status", status.Status)
	mux.HandleFunc("GET /players/{username}/stats", NewStatsHandler(logger, stats).GetStats)

	return mux
}

// Start serves handler on port until ctx is cancelled.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
