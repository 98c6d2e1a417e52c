package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nb "github.com/spetersoncode/newsbrief"
	"github.com/spetersoncode/newsbrief/backend"
	"github.com/spetersoncode/newsbrief/backend/backendtest"
	"github.com/spetersoncode/newsbrief/catalog"
	"github.com/spetersoncode/newsbrief/internal/retry"
)

func noDelay() Option {
	return WithRetryConfig(retry.Fixed(DefaultRetriesPerBackend, 0))
}

func drain(ch chan Event) []Event {
	var out []Event
	for {
		select {
		case ev := <-ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection reset by peer")

	t.Run("two failing backends make exactly four attempts", func(t *testing.T) {
		a := backendtest.Failing("gemini-2.5-flash", boom)
		b := backendtest.Failing("gemini-2.0-flash", boom)
		chain, r := backendtest.Chain(a, b)

		_, err := New(r, noDelay(), WithRetriesPerBackend(2)).Generate(ctx, chain, "prompt")

		require.ErrorIs(t, err, nb.ErrBackendsExhausted)
		var ex *nb.ExhaustedError
		require.ErrorAs(t, err, &ex)
		assert.Equal(t, 4, ex.Attempts)
		assert.Equal(t, []string{"gemini-2.5-flash", "gemini-2.0-flash"}, ex.Backends)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 2, a.Calls())
		assert.Equal(t, 2, b.Calls())
	})

	t.Run("success short-circuits the chain", func(t *testing.T) {
		a := backendtest.Always("gemini-2.5-flash", "1,2")
		b := backendtest.Always("gemini-2.0-flash", "3,4")
		chain, r := backendtest.Chain(a, b)

		text, err := New(r, noDelay()).Generate(ctx, chain, "prompt")

		require.NoError(t, err)
		assert.Equal(t, "1,2", text)
		assert.Equal(t, 1, a.Calls())
		assert.Zero(t, b.Calls())
	})

	t.Run("rejection retries the same backend", func(t *testing.T) {
		a := backendtest.New("gemini-2.5-flash", backendtest.Reject("SAFETY"), backendtest.Answer("ok"))
		b := backendtest.Always("gemini-2.0-flash", "fallback")
		chain, r := backendtest.Chain(a, b)

		text, err := New(r, noDelay()).Generate(ctx, chain, "prompt")

		require.NoError(t, err)
		assert.Equal(t, "ok", text)
		assert.Equal(t, 2, a.Calls())
		assert.Zero(t, b.Calls())
	})

	t.Run("empty answers fall through to the next backend", func(t *testing.T) {
		a := backendtest.Always("gemini-2.5-flash", "   ")
		b := backendtest.Always("gemini-2.0-flash", "fallback")
		chain, r := backendtest.Chain(a, b)

		text, err := New(r, noDelay()).Generate(ctx, chain, "prompt")

		require.NoError(t, err)
		assert.Equal(t, "fallback", text)
		assert.Equal(t, 2, a.Calls())
	})

	t.Run("per-call retry override", func(t *testing.T) {
		a := backendtest.Failing("gemini-2.0-flash", boom)
		chain, r := backendtest.Chain(a)

		_, err := New(r, noDelay()).Generate(ctx, chain, "prompt", Retries(3))

		require.ErrorIs(t, err, nb.ErrBackendsExhausted)
		assert.Equal(t, 3, a.Calls())
	})

	t.Run("unresolvable backend counts as transport failures", func(t *testing.T) {
		b := backendtest.Always("gemini-2.0-flash", "ok")
		chain, r := backendtest.Chain(b)
		chain = catalog.NewChain(catalog.External(nb.ProviderOpenAI, "gpt-5-mini")).Append(chain.Descriptors()...)
		events := make(chan Event, 8)

		text, err := New(r, noDelay(), WithEvents(events)).Generate(ctx, chain, "prompt")

		require.NoError(t, err)
		assert.Equal(t, "ok", text)
		got := drain(events)
		require.Len(t, got, 3)
		assert.Equal(t, backend.OutcomeTransport, got[0].Outcome)
		assert.Equal(t, backend.OutcomeTransport, got[1].Outcome)
		assert.Equal(t, "openai:gpt-5-mini", got[0].Backend)
		assert.Equal(t, backend.OutcomeSuccess, got[2].Outcome)
	})

	t.Run("empty chain", func(t *testing.T) {
		_, err := New(backendtest.Resolver{}, noDelay()).Generate(ctx, catalog.Chain{}, "prompt")
		assert.ErrorIs(t, err, nb.ErrBackendsExhausted)
		assert.ErrorIs(t, err, catalog.ErrEmptyChain)
	})
}

func TestGenerateEvents(t *testing.T) {
	a := backendtest.New("gemini-2.5-flash", backendtest.Reject("SAFETY"), backendtest.Reject(""))
	b := backendtest.Always("gemini-2.0-flash", "ok")
	chain, r := backendtest.Chain(a, b)

	shared := make(chan Event, 8)
	perCall := make(chan Event, 8)
	d := New(r, noDelay(), WithEvents(shared))

	_, err := d.Generate(context.Background(), chain, "prompt", ForTask("select_top"), Observe(perCall))
	require.NoError(t, err)

	got := drain(shared)
	require.Len(t, got, 3)
	assert.Len(t, drain(perCall), 3)

	for _, ev := range got {
		assert.Equal(t, got[0].CallID, ev.CallID)
		assert.Equal(t, "select_top", ev.Task)
		assert.False(t, ev.Timestamp.IsZero())
	}
	assert.NotEmpty(t, got[0].CallID)

	assert.Equal(t, "gemini-2.5-flash", got[0].Backend)
	assert.Equal(t, 1, got[0].Attempt)
	assert.Equal(t, backend.OutcomeRejected, got[0].Outcome)
	assert.Equal(t, "SAFETY", got[0].Reason)

	assert.Equal(t, 2, got[1].Attempt)
	assert.Equal(t, backend.OutcomeRejected, got[1].Outcome)

	assert.Equal(t, "gemini-2.0-flash", got[2].Backend)
	assert.Equal(t, 1, got[2].Attempt)
	assert.Equal(t, backend.OutcomeSuccess, got[2].Outcome)
	assert.NoError(t, got[2].Err)
}

func TestGenerateCallIDsDiffer(t *testing.T) {
	chain, r := backendtest.Chain(backendtest.Always("gemini-2.0-flash", "ok"))
	events := make(chan Event, 4)
	d := New(r, noDelay(), WithEvents(events))

	for i := 0; i < 2; i++ {
		_, err := d.Generate(context.Background(), chain, "prompt")
		require.NoError(t, err)
	}

	got := drain(events)
	require.Len(t, got, 2)
	assert.NotEqual(t, got[0].CallID, got[1].CallID)
}

func TestObserved(t *testing.T) {
	chain, r := backendtest.Chain(backendtest.Always("gemini-2.0-flash", "ok"))
	own := make(chan Event, 4)
	extra := make(chan Event, 4)
	g := Observed(New(r, noDelay(), WithEvents(own)), extra)

	_, err := g.Generate(context.Background(), chain, "prompt", ForTask("select_top"))
	require.NoError(t, err)

	got := drain(extra)
	require.Len(t, got, 1)
	assert.Equal(t, "select_top", got[0].Task)
	assert.Len(t, drain(own), 1)
}

func TestGenerateFullEventChannelDoesNotBlock(t *testing.T) {
	chain, r := backendtest.Chain(backendtest.Failing("gemini-2.0-flash", errors.New("eof")))
	events := make(chan Event) // unbuffered, never read

	_, err := New(r, noDelay(), WithEvents(events)).Generate(context.Background(), chain, "prompt")
	assert.ErrorIs(t, err, nb.ErrBackendsExhausted)
}

func TestGenerateIgnoresRetryAfter(t *testing.T) {
	limited := nb.NewTransientErrorWithRetry("rate limited", 429, time.Hour, nil)
	a := backendtest.New("gpt-5-mini", backendtest.Fail(limited), backendtest.Answer("ok"))
	chain, r := backendtest.Chain(a)

	cfg := retry.Fixed(2, 10*time.Millisecond)
	cfg.HonorRetryAfter = true
	d := New(r, WithRetryConfig(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	out, err := d.Generate(ctx, chain, "prompt")

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 2, a.Calls())
	assert.Less(t, time.Since(start), time.Second)
}

func TestGenerateContextCancellation(t *testing.T) {
	t.Run("cancelled during backoff", func(t *testing.T) {
		a := backendtest.Failing("gemini-2.5-flash", errors.New("eof"))
		b := backendtest.Always("gemini-2.0-flash", "ok")
		chain, r := backendtest.Chain(a, b)
		d := New(r, WithRetryConfig(retry.Fixed(2, time.Second)))

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(30 * time.Millisecond)
			cancel()
		}()

		_, err := d.Generate(ctx, chain, "prompt")
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, a.Calls())
		assert.Zero(t, b.Calls())
	})

	t.Run("cancelled before the call", func(t *testing.T) {
		a := backendtest.Always("gemini-2.0-flash", "ok")
		chain, r := backendtest.Chain(a)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := New(r, noDelay()).Generate(ctx, chain, "prompt")
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, a.Calls())
	})
}
