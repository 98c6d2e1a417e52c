package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFastChain(t *testing.T) {
	t.Run("base form represents its lineage", func(t *testing.T) {
		ids := []string{"gemini-2.0-flash", "gemini-2.0-flash-001", "gemini-2.0-flash-lite"}

		chain := FastChain(ids)

		assert.Equal(t, []string{"gemini-2.0-flash", "gemini-2.0-flash-lite"}, chain.IDs())
	})

	t.Run("ranking is deterministic", func(t *testing.T) {
		ids := []string{
			"gemini-2.0-flash-lite-001",
			"gemini-2.5-flash-lite-preview-06-17",
			"gemini-2.0-flash-001",
			"gemini-2.0-flash",
			"gemini-2.0-flash-lite",
		}
		assert.Equal(t, FastChain(ids).IDs(), FastChain(ids).IDs())
	})

	t.Run("lineages are emitted in fixed order", func(t *testing.T) {
		ids := []string{
			"gemini-2.0-flash-lite",
			"gemini-2.5-flash-lite",
			"gemini-2.0-flash",
		}

		assert.Equal(t, []string{
			"gemini-2.0-flash",
			"gemini-2.5-flash-lite",
			"gemini-2.0-flash-lite",
		}, FastChain(ids).IDs())
	})

	t.Run("highest fixed build wins without a base form", func(t *testing.T) {
		ids := []string{"gemini-2.0-flash-001", "gemini-2.0-flash-002", "gemini-2.0-flash-preview-01-21"}

		assert.Equal(t, []string{"gemini-2.0-flash-002"}, FastChain(ids).IDs())
	})

	t.Run("latest preview wins when only previews exist", func(t *testing.T) {
		ids := []string{
			"gemini-2.5-flash-lite-preview-02-05",
			"gemini-2.5-flash-lite-preview-06-17",
			"gemini-2.5-flash-lite-preview-13-01",
		}

		assert.Equal(t, []string{"gemini-2.5-flash-lite-preview-06-17"}, FastChain(ids).IDs())
	})

	t.Run("full-power 2.5 identifiers are not fast", func(t *testing.T) {
		ids := []string{"gemini-2.5-flash", "gemini-2.5-flash-thinking"}

		assert.True(t, FastChain(ids).Empty())
	})
}

func TestStandardChain(t *testing.T) {
	t.Run("ranks reasoning, channel, then recency and appends the fast tail", func(t *testing.T) {
		ids := []string{
			"gemini-2.5-flash-preview-04-17",
			"gemini-2.5-flash-001",
			"gemini-2.5-flash",
			"gemini-2.5-flash-preview-05-20",
			"gemini-2.5-flash-003",
			"gemini-2.5-flash-thinking",
			"gemini-2.5-flash-lite",
			"gemini-2.0-flash",
			"gemini-2.0-flash-lite",
		}

		chain := StandardChain(ids)

		assert.Equal(t, []string{
			"gemini-2.5-flash-thinking",
			"gemini-2.5-flash",
			"gemini-2.5-flash-003",
			"gemini-2.5-flash-001",
			"gemini-2.5-flash-preview-05-20",
			"gemini-2.5-flash-preview-04-17",
			"gemini-2.0-flash",
			"gemini-2.5-flash-lite",
			"gemini-2.0-flash-lite",
		}, chain.IDs())
	})

	t.Run("falls back to the fast chain alone", func(t *testing.T) {
		ids := []string{"gemini-2.0-flash", "gemini-2.0-flash-lite"}

		assert.Equal(t, []string{"gemini-2.0-flash", "gemini-2.0-flash-lite"}, StandardChain(ids).IDs())
	})

	t.Run("never contains duplicates", func(t *testing.T) {
		ids := []string{"gemini-2.5-flash", "gemini-2.5-flash", "gemini-2.0-flash", "gemini-2.0-flash"}

		chain := StandardChain(ids)

		assert.Equal(t, []string{"gemini-2.5-flash", "gemini-2.0-flash"}, chain.IDs())
	})
}

func TestChain(t *testing.T) {
	a, _ := Parse("gemini-2.0-flash")
	b, _ := Parse("gemini-2.0-flash-lite")

	chain := NewChain(a, b, a)
	assert.Equal(t, 2, chain.Len())
	assert.Equal(t, "gemini-2.0-flash > gemini-2.0-flash-lite", chain.String())

	t.Run("append returns a new chain", func(t *testing.T) {
		c, _ := Parse("gemini-2.5-flash-lite")
		longer := chain.Append(c, b)

		assert.Equal(t, 2, chain.Len())
		assert.Equal(t, 3, longer.Len())
		assert.Equal(t, "gemini-2.5-flash-lite", longer.At(2).ID)
	})

	t.Run("descriptors is a copy", func(t *testing.T) {
		ds := chain.Descriptors()
		ds[0].ID = "mutated"
		assert.Equal(t, "gemini-2.0-flash", chain.At(0).ID)
	})
}
