// Command serve exposes the extraction tasks over HTTP.
//
// Endpoints:
//
//	POST /v1/impact       - impact label per article
//	POST /v1/sectors      - sector tags per article
//	POST /v1/top          - exactly k article IDs
//	POST /v1/grouped      - k article IDs per news type
//	POST /v1/stream/top   - top selection with AG-UI progress over SSE
//	GET  /health          - liveness
//
// Configuration is read from the environment (and a .env file if present);
// see internal/config for the variables.
//
// Usage:
//
//	GOOGLE_API_KEY=... go run ./cmd/serve
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spetersoncode/newsbrief/client"
	"github.com/spetersoncode/newsbrief/dispatch"
	"github.com/spetersoncode/newsbrief/extract"
	"github.com/spetersoncode/newsbrief/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	c, err := client.New(client.FromConfig(cfg, logger))
	if err != nil {
		slog.Error("failed to create client", "error", err)
		os.Exit(1)
	}

	streaming := func(ext chan<- extract.Event, disp chan<- dispatch.Event) Extractor {
		return c.NewExtractor(dispatch.Observed(c.Dispatcher(), disp), extract.WithEvents(ext))
	}

	mux := http.NewServeMux()
	NewHandler(c.Extractor(), streaming, cfg.Timeout).Routes(mux)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // SSE needs no write timeout
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "port", cfg.Port, "timeout", cfg.Timeout)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
