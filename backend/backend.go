// Package backend defines the contract between the dispatcher and a
// generation service.
//
// A Backend answers a prompt with raw text. Adapters report a backend that
// ran but declined to answer as *newsbrief.RejectedError and wrap every other
// failure as *newsbrief.TransportError, so callers can classify each attempt
// with Classify without knowing the provider.
package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	nb "github.com/spetersoncode/newsbrief"
	"github.com/spetersoncode/newsbrief/catalog"
)

// Backend is one configured generation service instance.
type Backend interface {
	// Name returns the backend identifier used in logs and events.
	Name() string

	// Submit sends prompt and returns the raw answer.
	Submit(ctx context.Context, prompt string) (string, error)
}

// Safety is the content-safety posture requested from a backend. It is fixed
// when an adapter is constructed.
type Safety string

const (
	// SafetyPermissive requests the most permissive thresholds the backend
	// supports. Financial news routinely trips default filters.
	SafetyPermissive Safety = "permissive"

	// SafetyDefault leaves the backend defaults in place.
	SafetyDefault Safety = "default"
)

// PermissiveSafety is the posture used by every adapter unless overridden.
const PermissiveSafety = SafetyPermissive

// Resolver returns the backend serving a chain entry.
type Resolver interface {
	Resolve(d catalog.Descriptor) (Backend, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(d catalog.Descriptor) (Backend, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(d catalog.Descriptor) (Backend, error) { return f(d) }

// Factory builds a backend for a provider model name.
type Factory func(model string) (Backend, error)

// Registry resolves descriptors through per-provider factories and reuses
// the backend built for each descriptor ID.
type Registry struct {
	mu        sync.Mutex
	factories map[nb.Provider]Factory
	built     map[string]Backend
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[nb.Provider]Factory),
		built:     make(map[string]Backend),
	}
}

// Register installs the factory for provider, replacing any previous one.
func (r *Registry) Register(provider nb.Provider, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[provider] = f
}

// Resolve implements Resolver.
func (r *Registry) Resolve(d catalog.Descriptor) (Backend, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.built[d.ID]; ok {
		return b, nil
	}
	f, ok := r.factories[d.Provider]
	if !ok {
		return nil, fmt.Errorf("backend: no factory registered for provider %q", d.Provider)
	}
	b, err := f(d.Model())
	if err != nil {
		return nil, fmt.Errorf("backend: build %s: %w", d.ID, err)
	}
	r.built[d.ID] = b
	return b, nil
}

// Outcome is the classification of a single generation attempt.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeRejected  Outcome = "rejected"
	OutcomeTransport Outcome = "transport"
)

// AttemptResult is the result of one (backend, attempt) pair. A retry always
// produces a new result.
type AttemptResult struct {
	Backend string
	Attempt int
	Outcome Outcome
	Text    string // OutcomeSuccess only
	Reason  string // OutcomeRejected only; "" when the backend gave none
	Err     error  // nil on success
}

// Classify turns the raw return values of Submit into an AttemptResult.
// A nil error with a blank answer counts as a rejection. Errors that are not
// already typed are wrapped as *newsbrief.TransportError.
func Classify(backend string, attempt int, text string, err error) AttemptResult {
	r := AttemptResult{Backend: backend, Attempt: attempt}

	var rejected *nb.RejectedError
	switch {
	case err == nil && strings.TrimSpace(text) != "":
		r.Outcome = OutcomeSuccess
		r.Text = text
	case err == nil:
		r.Outcome = OutcomeRejected
		r.Err = &nb.RejectedError{Backend: backend}
	case errors.As(err, &rejected):
		r.Outcome = OutcomeRejected
		r.Reason = rejected.Reason
		r.Err = err
	default:
		r.Outcome = OutcomeTransport
		var te *nb.TransportError
		if errors.As(err, &te) {
			r.Err = err
		} else {
			r.Err = &nb.TransportError{Backend: backend, Err: err}
		}
	}
	return r
}
