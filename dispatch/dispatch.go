// Package dispatch sends a prompt down a ranked backend chain.
//
// Backends are tried strictly in chain order. Each backend gets its own
// retry budget; a rejected or failed attempt backs off and retries the same
// backend, and the next backend is only tried once that budget is spent.
// The first non-empty answer ends the call.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	nb "github.com/spetersoncode/newsbrief"
	"github.com/spetersoncode/newsbrief/backend"
	"github.com/spetersoncode/newsbrief/catalog"
	"github.com/spetersoncode/newsbrief/internal/retry"
)

// DefaultRetriesPerBackend is the attempt budget of each backend in a chain.
const DefaultRetriesPerBackend = 2

// Generator is the dispatch operation consumed by extractors.
type Generator interface {
	Generate(ctx context.Context, chain catalog.Chain, prompt string, opts ...CallOption) (string, error)
}

// Event describes one generation attempt.
type Event struct {
	CallID    string // shared by every attempt of one Generate call
	Task      string
	Backend   string
	Attempt   int // 1-indexed, per backend
	Outcome   backend.Outcome
	Reason    string
	Err       error
	Timestamp time.Time
}

// Dispatcher runs prompts against backend chains. It holds no per-call
// state and is safe for concurrent use.
type Dispatcher struct {
	resolver backend.Resolver
	retry    retry.Config
	events   chan<- Event
	logger   *slog.Logger
}

var _ Generator = (*Dispatcher)(nil)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRetriesPerBackend sets how many attempts each backend gets.
func WithRetriesPerBackend(n int) Option {
	return func(d *Dispatcher) {
		d.retry.MaxAttempts = n
	}
}

// WithRetryConfig replaces the backoff configuration. MaxAttempts is the
// per-backend budget.
func WithRetryConfig(cfg retry.Config) Option {
	return func(d *Dispatcher) {
		d.retry = cfg
	}
}

// WithEvents sends an Event per attempt to ch. Sends never block; events
// are dropped when ch is full.
func WithEvents(ch chan<- Event) Option {
	return func(d *Dispatcher) {
		d.events = ch
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// New creates a dispatcher resolving chain entries through r.
func New(r backend.Resolver, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		resolver: r,
		retry:    retry.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CallOption configures a single Generate call.
type CallOption func(*callOptions)

type callOptions struct {
	task    string
	retries int
	events  chan<- Event
}

// ForTask labels the call's events and log lines.
func ForTask(name string) CallOption {
	return func(o *callOptions) {
		o.task = name
	}
}

// Retries overrides the per-backend budget for one call.
func Retries(n int) CallOption {
	return func(o *callOptions) {
		o.retries = n
	}
}

// Observe sends this call's events to ch in addition to the dispatcher's
// own channel.
func Observe(ch chan<- Event) CallOption {
	return func(o *callOptions) {
		o.events = ch
	}
}

// Observed wraps g so every call also reports its events to ch.
func Observed(g Generator, ch chan<- Event) Generator {
	return observed{g: g, ch: ch}
}

type observed struct {
	g  Generator
	ch chan<- Event
}

func (o observed) Generate(ctx context.Context, chain catalog.Chain, prompt string, opts ...CallOption) (string, error) {
	return o.g.Generate(ctx, chain, prompt, append(opts, Observe(o.ch))...)
}

// Generate returns the first non-empty answer produced by the chain. When
// every backend spends its budget it returns *newsbrief.ExhaustedError. If
// ctx is cancelled the call stops before the next attempt and returns
// ctx.Err().
func (d *Dispatcher) Generate(ctx context.Context, chain catalog.Chain, prompt string, opts ...CallOption) (string, error) {
	o := callOptions{retries: d.retry.MaxAttempts}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := d.retry
	cfg.MaxAttempts = max(o.retries, 1)
	// Waits between attempts stay at the configured delay whatever a
	// backend's Retry-After says.
	cfg.HonorRetryAfter = false
	cfg.RetryIf = func(error) bool { return ctx.Err() == nil }

	callID := uuid.NewString()
	log := d.logger.With("call_id", callID, "task", o.task)

	if chain.Empty() {
		return "", &nb.ExhaustedError{Last: catalog.ErrEmptyChain}
	}

	total := 0
	var last error
	for i := 0; i < chain.Len(); i++ {
		desc := chain.At(i)
		b, resolveErr := d.resolver.Resolve(desc)

		text, err := retry.Do(ctx, cfg, func(attempt int) (string, error) {
			total++

			var raw string
			err := resolveErr
			if err == nil {
				raw, err = b.Submit(ctx, prompt)
			}

			res := backend.Classify(desc.ID, attempt, raw, err)
			d.record(log, callID, o, res)
			if res.Outcome == backend.OutcomeSuccess {
				return res.Text, nil
			}
			return "", res.Err
		})
		if err == nil {
			return text, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		last = err
	}

	log.Error("all backends exhausted", "chain", chain.String(), "attempts", total, "error", last)
	return "", &nb.ExhaustedError{Backends: chain.IDs(), Attempts: total, Last: last}
}

func (d *Dispatcher) record(log *slog.Logger, callID string, o callOptions, res backend.AttemptResult) {
	ev := Event{
		CallID:    callID,
		Task:      o.task,
		Backend:   res.Backend,
		Attempt:   res.Attempt,
		Outcome:   res.Outcome,
		Reason:    res.Reason,
		Err:       res.Err,
		Timestamp: time.Now(),
	}
	emit(d.events, ev)
	emit(o.events, ev)

	switch res.Outcome {
	case backend.OutcomeSuccess:
		log.Debug("generation succeeded", "backend", res.Backend, "attempt", res.Attempt)
	case backend.OutcomeRejected:
		log.Warn("generation blocked", "backend", res.Backend, "attempt", res.Attempt, "reason", res.Reason)
	default:
		log.Warn("generation failed", "backend", res.Backend, "attempt", res.Attempt, "error", res.Err)
	}
}

// emit sends an event to the channel without blocking.
func emit(ch chan<- Event, ev Event) {
	if ch == nil {
		return
	}
	select {
	case ch <- ev:
	default:
	}
}
