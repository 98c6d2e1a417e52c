package agui

import (
	"context"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"github.com/spetersoncode/newsbrief/dispatch"
	"github.com/spetersoncode/newsbrief/extract"
)

// Custom event names.
const (
	EventBackendAttempt = "backend_attempt"
	EventExtractRetry   = "extract_retry"
	EventResult         = "result"
)

// AttemptValue is the payload of a backend_attempt event.
type AttemptValue struct {
	CallID  string `json:"callId"`
	Task    string `json:"task,omitempty"`
	Backend string `json:"backend"`
	Attempt int    `json:"attempt"`
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RetryValue is the payload of an extract_retry event.
type RetryValue struct {
	Task    string `json:"task"`
	Attempt int    `json:"attempt"`
	Error   string `json:"error,omitempty"`
}

// Mapper converts extraction and dispatch events to AG-UI events for one
// run.
type Mapper struct {
	threadID string
	runID    string
}

// NewMapper creates a Mapper. Empty IDs are generated.
func NewMapper(threadID, runID string) *Mapper {
	if threadID == "" {
		threadID = events.GenerateThreadID()
	}
	if runID == "" {
		runID = events.GenerateRunID()
	}
	return &Mapper{
		threadID: threadID,
		runID:    runID,
	}
}

// ThreadID returns the thread ID for this mapper.
func (m *Mapper) ThreadID() string {
	return m.threadID
}

// RunID returns the run ID for this mapper.
func (m *Mapper) RunID() string {
	return m.runID
}

// RunStarted returns a RUN_STARTED event.
func (m *Mapper) RunStarted() events.Event {
	return events.NewRunStartedEvent(m.threadID, m.runID)
}

// RunFinished returns a RUN_FINISHED event.
func (m *Mapper) RunFinished() events.Event {
	return events.NewRunFinishedEvent(m.threadID, m.runID)
}

// RunError returns a RUN_ERROR event.
func (m *Mapper) RunError(err error) events.Event {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return events.NewRunErrorEvent(msg)
}

// MapExtract converts an extraction state change. Returns nil for states
// with no AG-UI equivalent.
func (m *Mapper) MapExtract(e extract.Event) events.Event {
	switch e.State {
	case extract.StateBuilding:
		if e.Attempt == 1 {
			return events.NewStepStartedEvent(e.Task)
		}
		return nil
	case extract.StateRetry:
		return events.NewCustomEvent(EventExtractRetry, events.WithValue(RetryValue{
			Task:    e.Task,
			Attempt: e.Attempt,
			Error:   errString(e.Err),
		}))
	case extract.StateSuccess, extract.StateExhausted:
		return events.NewStepFinishedEvent(e.Task)
	default:
		return nil
	}
}

// MapDispatch converts a backend attempt.
func (m *Mapper) MapDispatch(e dispatch.Event) events.Event {
	return events.NewCustomEvent(EventBackendAttempt, events.WithValue(AttemptValue{
		CallID:  e.CallID,
		Task:    e.Task,
		Backend: e.Backend,
		Attempt: e.Attempt,
		Outcome: string(e.Outcome),
		Reason:  e.Reason,
		Error:   errString(e.Err),
	}))
}

// Result returns the CUSTOM event carrying a run's value.
func (m *Mapper) Result(v any) events.Event {
	return events.NewCustomEvent(EventResult, events.WithValue(v))
}

// RunFunc performs a run, reporting progress on the two channels. The
// channels are buffered and must only be written without blocking, as the
// extract and dispatch packages do.
type RunFunc func(ctx context.Context, ext chan<- extract.Event, disp chan<- dispatch.Event) (any, error)

const progressBuffer = 256

// Stream executes run in a goroutine and returns its AG-UI events. The
// stream starts with RUN_STARTED and ends with the result and RUN_FINISHED,
// or with RUN_ERROR. The channel is closed after the last event. Progress
// from the two sources is forwarded in arrival order.
func (m *Mapper) Stream(ctx context.Context, run RunFunc) <-chan events.Event {
	out := make(chan events.Event, 16)

	go func() {
		defer close(out)

		ext := make(chan extract.Event, progressBuffer)
		disp := make(chan dispatch.Event, progressBuffer)
		type result struct {
			v   any
			err error
		}
		done := make(chan result, 1)
		go func() {
			v, err := run(ctx, ext, disp)
			done <- result{v, err}
		}()

		send := func(ev events.Event) {
			if ev != nil {
				out <- ev
			}
		}

		send(m.RunStarted())
		for {
			select {
			case e := <-ext:
				send(m.MapExtract(e))
			case e := <-disp:
				send(m.MapDispatch(e))
			case r := <-done:
				m.drain(ext, disp, send)
				if r.err != nil {
					send(m.RunError(r.err))
					return
				}
				send(m.Result(r.v))
				send(m.RunFinished())
				return
			}
		}
	}()

	return out
}

// drain forwards progress buffered before the run returned.
func (m *Mapper) drain(ext <-chan extract.Event, disp <-chan dispatch.Event, send func(events.Event)) {
	for {
		select {
		case e := <-ext:
			send(m.MapExtract(e))
		case e := <-disp:
			send(m.MapDispatch(e))
		default:
			return
		}
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
