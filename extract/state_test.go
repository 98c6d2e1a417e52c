package extract

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateTransitions(t *testing.T) {
	assert.True(t, StateBuilding.CanTransition(StateDispatching))
	assert.True(t, StateValidating.CanTransition(StateRetry))
	assert.True(t, StateRetry.CanTransition(StateBuilding))
	assert.False(t, StateBuilding.CanTransition(StateSuccess))
	assert.False(t, StateSuccess.CanTransition(StateBuilding))
	assert.False(t, StateExhausted.CanTransition(StateRetry))

	assert.True(t, StateSuccess.Terminal())
	assert.True(t, StateExhausted.Terminal())
	assert.False(t, StateRetry.Terminal())

	assert.Equal(t, "validating", StateValidating.String())
}

func TestMachine(t *testing.T) {
	events := make(chan Event, 16)
	m := newMachine("task", events, slog.Default())
	m.to(StateDispatching, nil)
	m.to(StateValidating, nil)
	m.to(StateRetry, nil)
	m.to(StateBuilding, nil)

	assert.Equal(t, 2, m.attempt)
	assert.Len(t, events, 5)

	assert.Panics(t, func() { m.to(StateSuccess, nil) })
}
