package extract

import (
	"fmt"
	"log/slog"
	"time"
)

// State is a step of an extraction call.
//
//	Building -> Dispatching -> Validating -> Success
//	                |              |-> Retry -> Building
//	                |              '-> Exhausted
//	                |-> Retry (tolerant retries only)
//	                '-> Exhausted
type State int

const (
	StateBuilding State = iota
	StateDispatching
	StateValidating
	StateSuccess
	StateRetry
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateBuilding:
		return "building"
	case StateDispatching:
		return "dispatching"
	case StateValidating:
		return "validating"
	case StateSuccess:
		return "success"
	case StateRetry:
		return "retry"
	case StateExhausted:
		return "exhausted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateExhausted
}

var transitions = map[State][]State{
	StateBuilding:    {StateDispatching},
	StateDispatching: {StateValidating, StateRetry, StateExhausted},
	StateValidating:  {StateSuccess, StateRetry, StateExhausted},
	StateRetry:       {StateBuilding},
}

// CanTransition reports whether to may follow s.
func (s State) CanTransition(to State) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Event reports a state change of one extraction call.
type Event struct {
	Task      string
	State     State
	Attempt   int
	Err       error // set on Retry and Exhausted
	Timestamp time.Time
}

// machine tracks one call. It starts in StateBuilding at attempt 1.
type machine struct {
	task    string
	state   State
	attempt int
	events  chan<- Event
	log     *slog.Logger
}

func newMachine(task string, events chan<- Event, log *slog.Logger) *machine {
	m := &machine{task: task, state: StateBuilding, attempt: 1, events: events, log: log}
	m.emit(nil)
	return m
}

// to moves the machine. An illegal transition is a programming error.
func (m *machine) to(s State, err error) {
	if !m.state.CanTransition(s) {
		panic(fmt.Sprintf("extract: illegal transition %s -> %s", m.state, s))
	}
	if s == StateBuilding {
		m.attempt++
	}
	m.state = s
	m.emit(err)

	switch s {
	case StateRetry:
		m.log.Warn("retrying extraction", "task", m.task, "attempt", m.attempt, "error", err)
	case StateExhausted:
		m.log.Error("extraction exhausted", "task", m.task, "attempts", m.attempt, "error", err)
	}
}

func (m *machine) emit(err error) {
	if m.events == nil {
		return
	}
	ev := Event{
		Task:      m.task,
		State:     m.state,
		Attempt:   m.attempt,
		Err:       err,
		Timestamp: time.Now(),
	}
	select {
	case m.events <- ev:
	default:
	}
}
