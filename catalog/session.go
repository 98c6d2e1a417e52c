package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ErrEmptyChain is returned when the live catalog yields no usable backend.
var ErrEmptyChain = errors.New("catalog: no usable backends")

// Tier selects which ranked chain a caller wants.
type Tier string

const (
	TierFast     Tier = "fast"
	TierStandard Tier = "standard"
)

// Source supplies the raw backend identifiers of a live catalog.
type Source interface {
	ListModels(ctx context.Context) ([]string, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) ([]string, error)

// ListModels calls f.
func (f SourceFunc) ListModels(ctx context.Context) ([]string, error) { return f(ctx) }

// StaticSource is a fixed identifier list.
type StaticSource []string

// ListModels returns a copy of the list.
func (s StaticSource) ListModels(context.Context) ([]string, error) {
	return append([]string(nil), s...), nil
}

// DefaultTTL is how long a built chain is reused before the catalog is
// listed again.
const DefaultTTL = 6 * time.Hour

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithTTL sets how long built chains are cached. Zero or negative caches for
// the lifetime of the Session.
func WithTTL(ttl time.Duration) SessionOption {
	return func(s *Session) {
		s.ttl = ttl
	}
}

// WithTail appends descriptors (typically External backends) to the end of
// every chain the session builds.
func WithTail(ds ...Descriptor) SessionOption {
	return func(s *Session) {
		s.tail = append(s.tail, ds...)
	}
}

// Session lists the catalog once and serves read-only chains built from it.
// It is safe for concurrent use.
type Session struct {
	source Source
	ttl    time.Duration
	tail   []Descriptor

	mu     sync.Mutex // serialises rebuilds
	chains *expirable.LRU[Tier, Chain]
}

// NewSession creates a session over src.
func NewSession(src Source, opts ...SessionOption) *Session {
	s := &Session{
		source: src,
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.chains = expirable.NewLRU[Tier, Chain](2, nil, s.ttl)
	return s
}

// Chain returns the chain for tier, listing the catalog if the cached chains
// are missing or expired.
func (s *Session) Chain(ctx context.Context, tier Tier) (Chain, error) {
	if tier != TierFast && tier != TierStandard {
		return Chain{}, fmt.Errorf("catalog: unknown tier %q", tier)
	}
	if c, ok := s.chains.Get(tier); ok {
		return nonEmpty(c)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.chains.Get(tier); ok {
		return nonEmpty(c)
	}

	fast, standard, err := s.build(ctx)
	if err != nil {
		return Chain{}, err
	}
	s.chains.Add(TierFast, fast)
	s.chains.Add(TierStandard, standard)

	if tier == TierFast {
		return nonEmpty(fast)
	}
	return nonEmpty(standard)
}

// Refresh drops cached chains so the next Chain call lists the catalog again.
func (s *Session) Refresh() {
	s.chains.Purge()
}

func (s *Session) build(ctx context.Context) (fast, standard Chain, err error) {
	raw, err := s.source.ListModels(ctx)
	if err != nil {
		return Chain{}, Chain{}, fmt.Errorf("catalog: list models: %w", err)
	}
	ids := Filter(raw)

	fast = FastChain(ids).Append(s.tail...)
	standard = StandardChain(ids).Append(s.tail...)
	return fast, standard, nil
}

func nonEmpty(c Chain) (Chain, error) {
	if c.Empty() {
		return Chain{}, ErrEmptyChain
	}
	return c, nil
}
