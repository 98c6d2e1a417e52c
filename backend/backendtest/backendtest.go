// Package backendtest provides scripted in-memory backends for tests.
package backendtest

import (
	"context"
	"fmt"
	"sync"

	nb "github.com/spetersoncode/newsbrief"
	"github.com/spetersoncode/newsbrief/backend"
	"github.com/spetersoncode/newsbrief/catalog"
)

// Step is one scripted reply.
type Step struct {
	Text string
	Err  error
}

// Answer is a step returning text.
func Answer(text string) Step { return Step{Text: text} }

// Reject is a step reporting a blocked response.
func Reject(reason string) Step {
	return Step{Err: &nb.RejectedError{Reason: reason}}
}

// Fail is a step reporting a transport failure.
func Fail(err error) Step { return Step{Err: err} }

// Scripted replays its steps in order. Once the script runs out the last
// step repeats; an empty script always answers "".
type Scripted struct {
	name string

	mu      sync.Mutex
	steps   []Step
	prompts []string
}

var _ backend.Backend = (*Scripted)(nil)

// New creates a scripted backend.
func New(name string, steps ...Step) *Scripted {
	return &Scripted{name: name, steps: steps}
}

// Always answers text on every call.
func Always(name, text string) *Scripted { return New(name, Answer(text)) }

// Failing fails every call with err.
func Failing(name string, err error) *Scripted { return New(name, Fail(err)) }

// Name implements backend.Backend.
func (s *Scripted) Name() string { return s.name }

// Submit implements backend.Backend.
func (s *Scripted) Submit(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := len(s.prompts)
	s.prompts = append(s.prompts, prompt)
	if len(s.steps) == 0 {
		return "", nil
	}
	if i >= len(s.steps) {
		i = len(s.steps) - 1
	}
	step := s.steps[i]
	if rej, ok := step.Err.(*nb.RejectedError); ok && rej.Backend == "" {
		return "", &nb.RejectedError{Backend: s.name, Reason: rej.Reason}
	}
	return step.Text, step.Err
}

// Calls returns how many times Submit was called.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

// Prompts returns every prompt received, in order.
func (s *Scripted) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

// Resolver serves scripted backends by descriptor ID.
type Resolver map[string]*Scripted

// Resolve implements backend.Resolver.
func (r Resolver) Resolve(d catalog.Descriptor) (backend.Backend, error) {
	b, ok := r[d.ID]
	if !ok {
		return nil, fmt.Errorf("backendtest: no backend for %q", d.ID)
	}
	return b, nil
}

// Chain builds a chain of external descriptors, one per scripted backend,
// together with a resolver serving them. Backend names become descriptor
// IDs and model names.
func Chain(backends ...*Scripted) (catalog.Chain, Resolver) {
	r := make(Resolver, len(backends))
	ds := make([]catalog.Descriptor, 0, len(backends))
	for _, b := range backends {
		d := catalog.Descriptor{
			ID:       b.name,
			Provider: nb.ProviderGoogle,
			Family:   catalog.FamilyExternal,
			Lineage:  b.name,
			Channel:  catalog.ChannelBase,
		}
		if parsed, ok := catalog.Parse(b.name); ok {
			d = parsed
		}
		ds = append(ds, d)
		r[d.ID] = b
	}
	return catalog.NewChain(ds...), r
}
