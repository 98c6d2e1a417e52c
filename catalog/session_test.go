package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nb "github.com/spetersoncode/newsbrief"
)

func TestFilter(t *testing.T) {
	raw := []string{
		"models/gemini-2.0-flash",
		"models/gemini-2.0-flash-exp",
		"models/gemini-2.5-flash-preview-tts",
		"models/gemini-2.0-flash-exp-image-generation",
		"models/gemini-2.5-flash",
		"models/gemini-1.5-pro",
		"models/text-embedding-004",
		"models/gemini-2.5-flash-native-audio-dialog",
		"gemini-2.0-flash-lite",
	}

	assert.Equal(t, []string{
		"gemini-2.0-flash",
		"gemini-2.5-flash",
		"gemini-2.0-flash-lite",
	}, Filter(raw))
}

type countingSource struct {
	ids   []string
	err   error
	calls atomic.Int32
}

func (s *countingSource) ListModels(context.Context) ([]string, error) {
	s.calls.Add(1)
	return s.ids, s.err
}

func TestSession(t *testing.T) {
	ctx := context.Background()

	t.Run("lists the catalog once for both tiers", func(t *testing.T) {
		src := &countingSource{ids: []string{"models/gemini-2.5-flash", "models/gemini-2.0-flash"}}
		s := NewSession(src)

		standard, err := s.Chain(ctx, TierStandard)
		require.NoError(t, err)
		fast, err := s.Chain(ctx, TierFast)
		require.NoError(t, err)

		assert.Equal(t, []string{"gemini-2.5-flash", "gemini-2.0-flash"}, standard.IDs())
		assert.Equal(t, []string{"gemini-2.0-flash"}, fast.IDs())
		assert.Equal(t, int32(1), src.calls.Load())
	})

	t.Run("refresh lists again", func(t *testing.T) {
		src := &countingSource{ids: []string{"gemini-2.0-flash"}}
		s := NewSession(src)

		_, err := s.Chain(ctx, TierFast)
		require.NoError(t, err)
		s.Refresh()
		_, err = s.Chain(ctx, TierFast)
		require.NoError(t, err)

		assert.Equal(t, int32(2), src.calls.Load())
	})

	t.Run("tail is appended to both chains", func(t *testing.T) {
		tail := External(nb.ProviderAnthropic, "claude-haiku-4-5")
		s := NewSession(StaticSource{"gemini-2.0-flash"}, WithTail(tail))

		standard, err := s.Chain(ctx, TierStandard)
		require.NoError(t, err)
		fast, err := s.Chain(ctx, TierFast)
		require.NoError(t, err)

		assert.Equal(t, []string{"gemini-2.0-flash", "anthropic:claude-haiku-4-5"}, standard.IDs())
		assert.Equal(t, []string{"gemini-2.0-flash", "anthropic:claude-haiku-4-5"}, fast.IDs())
	})

	t.Run("listing errors are wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		s := NewSession(&countingSource{err: boom})

		_, err := s.Chain(ctx, TierStandard)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("empty catalog", func(t *testing.T) {
		s := NewSession(StaticSource{"gemini-1.5-pro"})

		_, err := s.Chain(ctx, TierStandard)
		assert.ErrorIs(t, err, ErrEmptyChain)
	})

	t.Run("unknown tier", func(t *testing.T) {
		s := NewSession(StaticSource{"gemini-2.0-flash"})

		_, err := s.Chain(ctx, Tier("turbo"))
		assert.Error(t, err)
	})

	t.Run("concurrent readers share one listing", func(t *testing.T) {
		src := &countingSource{ids: []string{"gemini-2.5-flash", "gemini-2.0-flash"}}
		s := NewSession(src, WithTTL(0))

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c, err := s.Chain(ctx, TierStandard)
				assert.NoError(t, err)
				assert.Equal(t, 2, c.Len())
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), src.calls.Load())
	})

	t.Run("source func adapter", func(t *testing.T) {
		s := NewSession(SourceFunc(func(context.Context) ([]string, error) {
			return []string{"gemini-2.0-flash-lite"}, nil
		}))

		c, err := s.Chain(ctx, TierFast)
		require.NoError(t, err)
		assert.Equal(t, []string{"gemini-2.0-flash-lite"}, c.IDs())
	})
}
