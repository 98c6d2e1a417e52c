// Package extract turns free-text generation answers into typed results.
//
// Each extractor builds a prompt, dispatches it down a backend chain and
// checks the answer against a Contract. Tolerant extractors (ClassifyImpact,
// ExtractSectors) repair a bad answer locally and never retry. Strict
// extractors (SelectTop, SelectGrouped) retry with stricter wording and fail
// with *newsbrief.ValidationExhaustedError when no attempt conforms; they
// never return a result of the wrong shape.
package extract

import (
	"context"
	"log/slog"

	nb "github.com/spetersoncode/newsbrief"
	"github.com/spetersoncode/newsbrief/catalog"
	"github.com/spetersoncode/newsbrief/dispatch"
)

// Default attempt budgets.
const (
	DefaultMaxAttempts        = 10 // strict index selection
	DefaultGroupedMaxAttempts = 5
	DefaultSummaryMaxAttempts = 5
)

// Outcome is a validated result plus the attempts it took.
type Outcome[T any] struct {
	Value    T
	Attempts int
	Warnings []string
}

// Chains supplies the backend chain for a tier. *catalog.Session
// implements it.
type Chains interface {
	Chain(ctx context.Context, tier catalog.Tier) (catalog.Chain, error)
}

// StaticChains serves fixed chains. A tier with an empty chain falls back to
// the other tier.
type StaticChains struct {
	Fast     catalog.Chain
	Standard catalog.Chain
}

// SameChain serves c for every tier.
func SameChain(c catalog.Chain) StaticChains {
	return StaticChains{Fast: c, Standard: c}
}

// Chain implements Chains.
func (s StaticChains) Chain(_ context.Context, tier catalog.Tier) (catalog.Chain, error) {
	c := s.Standard
	if tier == catalog.TierFast {
		c = s.Fast
	}
	if c.Empty() {
		c = s.Fast.Append(s.Standard.Descriptors()...)
	}
	if c.Empty() {
		return catalog.Chain{}, catalog.ErrEmptyChain
	}
	return c, nil
}

// Extractor runs the structured extraction tasks. It keeps no state between
// calls and is safe for concurrent use.
type Extractor struct {
	gen    dispatch.Generator
	chains Chains

	maxAttempts        int
	groupedMaxAttempts int
	summaryMaxAttempts int

	events chan<- Event
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxAttempts sets the attempt budget of SelectTop.
func WithMaxAttempts(n int) Option {
	return func(x *Extractor) {
		x.maxAttempts = n
	}
}

// WithGroupedMaxAttempts sets the attempt budget of SelectGrouped.
func WithGroupedMaxAttempts(n int) Option {
	return func(x *Extractor) {
		x.groupedMaxAttempts = n
	}
}

// WithSummaryMaxAttempts sets the attempt budget of Summarize and Comment.
func WithSummaryMaxAttempts(n int) Option {
	return func(x *Extractor) {
		x.summaryMaxAttempts = n
	}
}

// WithEvents sends state changes to ch without blocking.
func WithEvents(ch chan<- Event) Option {
	return func(x *Extractor) {
		x.events = ch
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(x *Extractor) {
		x.logger = l
	}
}

// New creates an extractor dispatching through gen with chains from c.
func New(gen dispatch.Generator, c Chains, opts ...Option) *Extractor {
	x := &Extractor{
		gen:                gen,
		chains:             c,
		maxAttempts:        DefaultMaxAttempts,
		groupedMaxAttempts: DefaultGroupedMaxAttempts,
		summaryMaxAttempts: DefaultSummaryMaxAttempts,
		logger:             slog.Default(),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// runStrict drives the state machine for a strict contract. Backend
// exhaustion aborts immediately; a contract violation retries until
// maxAttempts is spent.
func runStrict[T any](
	ctx context.Context,
	x *Extractor,
	task string,
	tier catalog.Tier,
	maxAttempts int,
	build func(attempt int) string,
	validate func(raw string) (T, *nb.ContractError),
) (Outcome[T], error) {
	var out Outcome[T]

	chain, err := x.chains.Chain(ctx, tier)
	if err != nil {
		return out, err
	}

	m := newMachine(task, x.events, x.logger)
	for attempt := 1; ; attempt++ {
		out.Attempts = attempt
		prompt := build(attempt)

		m.to(StateDispatching, nil)
		raw, err := x.gen.Generate(ctx, chain, prompt, dispatch.ForTask(task))
		if err != nil {
			m.to(StateExhausted, err)
			return out, err
		}

		m.to(StateValidating, nil)
		v, cerr := validate(raw)
		if cerr == nil {
			m.to(StateSuccess, nil)
			out.Value = v
			return out, nil
		}
		out.Warnings = append(out.Warnings, cerr.Error())

		if attempt >= maxAttempts {
			verr := &nb.ValidationExhaustedError{Task: task, Attempts: attempt, Last: cerr}
			m.to(StateExhausted, verr)
			return out, verr
		}
		m.to(StateRetry, cerr)
		m.to(StateBuilding, nil)
	}
}

// runOnce dispatches a single prompt for a tolerant extractor. A dispatch
// failure is returned so the caller can degrade to defaults.
func (x *Extractor) runOnce(ctx context.Context, task string, tier catalog.Tier, prompt string) (string, error) {
	chain, err := x.chains.Chain(ctx, tier)
	if err != nil {
		return "", err
	}

	m := newMachine(task, x.events, x.logger)
	m.to(StateDispatching, nil)
	raw, err := x.gen.Generate(ctx, chain, prompt, dispatch.ForTask(task))
	if err != nil {
		m.to(StateExhausted, err)
		return "", err
	}
	m.to(StateValidating, nil)
	m.to(StateSuccess, nil)
	return raw, nil
}
