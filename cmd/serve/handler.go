package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	aguievents "github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	nb "github.com/spetersoncode/newsbrief"
	"github.com/spetersoncode/newsbrief/agui"
	"github.com/spetersoncode/newsbrief/dispatch"
	"github.com/spetersoncode/newsbrief/extract"
)

// Extractor is the subset of extraction tasks served over HTTP.
type Extractor interface {
	ClassifyImpact(ctx context.Context, articles []nb.Article) (extract.Outcome[[]nb.Impact], error)
	ExtractSectors(ctx context.Context, articles []nb.Article) (extract.Outcome[[]string], error)
	SelectTop(ctx context.Context, articles []nb.Article, k int, opts ...extract.SelectOption) (extract.Outcome[[]int64], error)
	SelectGrouped(ctx context.Context, articles []nb.Article, k int) (extract.Outcome[map[nb.NewsType][]int64], error)
}

// StreamFactory builds a request-scoped extractor whose progress goes to
// the given channels.
type StreamFactory func(ext chan<- extract.Event, disp chan<- dispatch.Event) Extractor

// Handler serves the extraction endpoints.
type Handler struct {
	extractor Extractor
	streaming StreamFactory
	timeout   time.Duration
}

// NewHandler creates a handler. streaming may be nil, which disables the
// progress stream endpoint.
func NewHandler(x Extractor, streaming StreamFactory, timeout time.Duration) *Handler {
	return &Handler{extractor: x, streaming: streaming, timeout: timeout}
}

// Routes registers the endpoints on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.Handle("/v1/impact", post(h.impact))
	mux.Handle("/v1/sectors", post(h.sectors))
	mux.Handle("/v1/top", post(h.top))
	mux.Handle("/v1/grouped", post(h.grouped))
	mux.Handle("/v1/stream/top", corsMiddleware(post(h.streamTop)))
	mux.HandleFunc("/health", healthHandler)
}

type articlesRequest struct {
	Articles []nb.Article `json:"articles"`
}

type topRequest struct {
	Articles     []nb.Article `json:"articles"`
	K            int          `json:"k"`
	CapPerImpact int          `json:"cap_per_impact,omitempty"`
}

type groupedRequest struct {
	Articles []nb.Article `json:"articles"`
	K        int          `json:"k"`
}

type response[T any] struct {
	Value    T        `json:"value"`
	Attempts int      `json:"attempts"`
	Warnings []string `json:"warnings,omitempty"`
}

func responseOf[T any](o extract.Outcome[T]) response[T] {
	return response[T]{Value: o.Value, Attempts: o.Attempts, Warnings: o.Warnings}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) impact(w http.ResponseWriter, r *http.Request) {
	var req articlesRequest
	if !decode(w, r, &req) {
		return
	}
	ctx, cancel := h.context(r)
	defer cancel()

	out, err := h.extractor.ClassifyImpact(ctx, req.Articles)
	respond(w, r, "impact", responseOf(out), err)
}

func (h *Handler) sectors(w http.ResponseWriter, r *http.Request) {
	var req articlesRequest
	if !decode(w, r, &req) {
		return
	}
	ctx, cancel := h.context(r)
	defer cancel()

	out, err := h.extractor.ExtractSectors(ctx, req.Articles)
	respond(w, r, "sectors", responseOf(out), err)
}

func (h *Handler) top(w http.ResponseWriter, r *http.Request) {
	var req topRequest
	if !decode(w, r, &req) {
		return
	}
	ctx, cancel := h.context(r)
	defer cancel()

	out, err := h.extractor.SelectTop(ctx, req.Articles, req.K, extract.CapPerImpact(req.CapPerImpact))
	respond(w, r, "top", responseOf(out), err)
}

func (h *Handler) grouped(w http.ResponseWriter, r *http.Request) {
	var req groupedRequest
	if !decode(w, r, &req) {
		return
	}
	ctx, cancel := h.context(r)
	defer cancel()

	out, err := h.extractor.SelectGrouped(ctx, req.Articles, req.K)
	respond(w, r, "grouped", responseOf(out), err)
}

// streamTop runs a top selection and streams its progress as AG-UI events
// over SSE. The selection arguments travel in the run state.
func (h *Handler) streamTop(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.streaming == nil {
		http.Error(w, "Streaming disabled", http.StatusNotFound)
		return
	}

	var input agui.RunInput
	if !decode(w, r, &input) {
		return
	}

	log := slog.With(
		"run_id", input.RunID,
		"thread_id", input.ThreadID,
	)

	prepared, err := input.Prepare()
	if err != nil {
		log.Warn("invalid input", "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req, err := agui.DecodeState[topRequest](prepared)
	if err != nil {
		log.Warn("invalid state", "error", err)
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid state: %w", err))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("streaming not supported")
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx, cancel := h.context(r)
	defer cancel()

	log.Info("stream started", "articles", len(req.Articles), "k", req.K)

	mapper := agui.NewMapper(prepared.ThreadID, prepared.RunID)
	stream := mapper.Stream(ctx, func(ctx context.Context, ext chan<- extract.Event, disp chan<- dispatch.Event) (any, error) {
		x := h.streaming(ext, disp)
		out, err := x.SelectTop(ctx, req.Articles, req.K, extract.CapPerImpact(req.CapPerImpact))
		if err != nil {
			return nil, err
		}
		return responseOf(out), nil
	})

	var eventCount int
	var lastError error
	for ev := range stream {
		if lastError != nil {
			// Keep draining so the run goroutine can exit.
			continue
		}
		eventCount++
		log.Debug("sending SSE event",
			"event_type", ev.Type(),
			"event_num", eventCount,
		)
		if err := writeSSE(w, flusher, ev); err != nil {
			log.Error("failed to write SSE event", "error", err, "event_type", ev.Type())
			lastError = err
			cancel()
		}
	}

	duration := time.Since(start)
	if lastError != nil {
		log.Error("stream failed",
			"duration_ms", duration.Milliseconds(),
			"events_sent", eventCount,
			"error", lastError,
		)
		return
	}
	log.Info("stream completed",
		"duration_ms", duration.Milliseconds(),
		"events_sent", eventCount,
	)
}

func (h *Handler) context(r *http.Request) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.timeout)
}

// statusOf maps an engine error to an HTTP status. Exhaustion is checked
// first because it wraps the last backend error, which may itself carry
// a user input category.
func statusOf(err error) int {
	switch {
	case errors.Is(err, nb.ErrBackendsExhausted):
		return http.StatusBadGateway
	case errors.Is(err, nb.ErrValidationExhausted):
		return http.StatusUnprocessableEntity
	case errors.Is(err, nb.ErrEmptyInput), nb.IsUserInput(err):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		slog.Warn("invalid request body", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func respond(w http.ResponseWriter, r *http.Request, task string, v any, err error) {
	if err != nil {
		status := statusOf(err)
		slog.Warn("request failed", "task", task, "status", status, "error", err)
		writeError(w, status, err)
		return
	}
	slog.Info("request completed", "task", task)
	writeJSON(w, http.StatusOK, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// writeSSE writes an AG-UI event in SSE format.
func writeSSE(w http.ResponseWriter, flusher http.Flusher, ev aguievents.Event) error {
	data, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	// Write SSE format: event: TYPE\ndata: {json}\n\n
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type(), string(data)); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	flusher.Flush()
	return nil
}

// post rejects every method but POST.
func post(fn http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			slog.Warn("method not allowed", "method", r.Method, "path", r.URL.Path)
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		fn(w, r)
	})
}

// corsMiddleware adds CORS headers for cross-origin frontend requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// healthHandler returns a simple health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
