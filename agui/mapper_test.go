package agui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"github.com/spetersoncode/newsbrief/backend"
	"github.com/spetersoncode/newsbrief/dispatch"
	"github.com/spetersoncode/newsbrief/extract"
)

func TestNewMapper(t *testing.T) {
	t.Run("with provided IDs", func(t *testing.T) {
		m := NewMapper("thread-123", "run-456")
		if m.ThreadID() != "thread-123" {
			t.Errorf("expected thread ID 'thread-123', got %q", m.ThreadID())
		}
		if m.RunID() != "run-456" {
			t.Errorf("expected run ID 'run-456', got %q", m.RunID())
		}
	})

	t.Run("generates IDs when empty", func(t *testing.T) {
		m := NewMapper("", "")
		if m.ThreadID() == "" {
			t.Error("expected generated thread ID, got empty")
		}
		if m.RunID() == "" {
			t.Error("expected generated run ID, got empty")
		}
	})
}

func TestMapper_LifecycleEvents(t *testing.T) {
	m := NewMapper("thread-1", "run-1")

	if ev := m.RunStarted(); ev.Type() != events.EventTypeRunStarted {
		t.Errorf("expected RUN_STARTED, got %s", ev.Type())
	}
	if ev := m.RunFinished(); ev.Type() != events.EventTypeRunFinished {
		t.Errorf("expected RUN_FINISHED, got %s", ev.Type())
	}
	if ev := m.RunError(errors.New("boom")); ev.Type() != events.EventTypeRunError {
		t.Errorf("expected RUN_ERROR, got %s", ev.Type())
	}
	if ev := m.RunError(nil); ev.Type() != events.EventTypeRunError {
		t.Errorf("expected RUN_ERROR for nil error, got %s", ev.Type())
	}
}

func TestMapper_MapExtract(t *testing.T) {
	m := NewMapper("thread-1", "run-1")

	tests := []struct {
		name  string
		event extract.Event
		want  events.EventType // empty means no event
	}{
		{"first build starts step", extract.Event{Task: "select_top", State: extract.StateBuilding, Attempt: 1}, events.EventTypeStepStarted},
		{"rebuild is silent", extract.Event{Task: "select_top", State: extract.StateBuilding, Attempt: 2}, ""},
		{"dispatching is silent", extract.Event{Task: "select_top", State: extract.StateDispatching, Attempt: 1}, ""},
		{"validating is silent", extract.Event{Task: "select_top", State: extract.StateValidating, Attempt: 1}, ""},
		{"retry is custom", extract.Event{Task: "select_top", State: extract.StateRetry, Attempt: 1, Err: errors.New("bad")}, events.EventTypeCustom},
		{"success finishes step", extract.Event{Task: "select_top", State: extract.StateSuccess, Attempt: 2}, events.EventTypeStepFinished},
		{"exhausted finishes step", extract.Event{Task: "select_top", State: extract.StateExhausted, Attempt: 10}, events.EventTypeStepFinished},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := m.MapExtract(tt.event)
			if tt.want == "" {
				if ev != nil {
					t.Errorf("expected nil, got %s", ev.Type())
				}
				return
			}
			if ev == nil {
				t.Fatalf("expected %s, got nil", tt.want)
			}
			if ev.Type() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, ev.Type())
			}
		})
	}
}

func TestMapper_MapDispatch(t *testing.T) {
	m := NewMapper("thread-1", "run-1")

	ev := m.MapDispatch(dispatch.Event{
		CallID:  "call-1",
		Task:    "select_top",
		Backend: "gemini-2.0-flash",
		Attempt: 2,
		Outcome: backend.OutcomeRejected,
		Reason:  "SAFETY",
	})

	if ev.Type() != events.EventTypeCustom {
		t.Fatalf("expected CUSTOM, got %s", ev.Type())
	}
	data, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	for _, want := range []string{EventBackendAttempt, "gemini-2.0-flash", "rejected", "SAFETY", "call-1"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("expected %q in %s", want, data)
		}
	}
}

func collect(ch <-chan events.Event) []events.EventType {
	var types []events.EventType
	for ev := range ch {
		types = append(types, ev.Type())
	}
	return types
}

func TestMapper_Stream(t *testing.T) {
	ctx := context.Background()

	t.Run("successful run", func(t *testing.T) {
		m := NewMapper("thread-1", "run-1")
		run := func(_ context.Context, ext chan<- extract.Event, disp chan<- dispatch.Event) (any, error) {
			ext <- extract.Event{Task: "select_top", State: extract.StateBuilding, Attempt: 1}
			disp <- dispatch.Event{Backend: "gemini-2.0-flash", Attempt: 1, Outcome: backend.OutcomeSuccess}
			ext <- extract.Event{Task: "select_top", State: extract.StateSuccess, Attempt: 1}
			return []int64{3, 7}, nil
		}

		types := collect(m.Stream(ctx, run))

		if len(types) != 6 {
			t.Fatalf("expected 6 events, got %d: %v", len(types), types)
		}
		if types[0] != events.EventTypeRunStarted {
			t.Errorf("first event = %s, want RUN_STARTED", types[0])
		}
		if types[4] != events.EventTypeCustom {
			t.Errorf("result event = %s, want CUSTOM", types[4])
		}
		if types[5] != events.EventTypeRunFinished {
			t.Errorf("last event = %s, want RUN_FINISHED", types[5])
		}
	})

	t.Run("failed run ends with error", func(t *testing.T) {
		m := NewMapper("", "")
		run := func(_ context.Context, ext chan<- extract.Event, _ chan<- dispatch.Event) (any, error) {
			ext <- extract.Event{Task: "select_top", State: extract.StateBuilding, Attempt: 1}
			ext <- extract.Event{Task: "select_top", State: extract.StateExhausted, Attempt: 1}
			return nil, errors.New("all backends exhausted")
		}

		types := collect(m.Stream(ctx, run))

		want := []events.EventType{
			events.EventTypeRunStarted,
			events.EventTypeStepStarted,
			events.EventTypeStepFinished,
			events.EventTypeRunError,
		}
		if len(types) != len(want) {
			t.Fatalf("got %v, want %v", types, want)
		}
		for i := range want {
			if types[i] != want[i] {
				t.Errorf("event %d = %s, want %s", i, types[i], want[i])
			}
		}
	})
}
