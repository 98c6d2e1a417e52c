package agui

import (
	"encoding/json"
	"errors"
)

// RunInput is the AG-UI request body for a streamed extraction. The task
// arguments travel in State.
type RunInput struct {
	ThreadID       string `json:"thread_id"`
	RunID          string `json:"run_id"`
	State          any    `json:"state,omitempty"`
	ForwardedProps any    `json:"forwarded_props,omitempty"`
}

// PreparedInput is validated input ready for a run.
type PreparedInput struct {
	ThreadID string
	RunID    string
	State    any
}

// ErrNoState is returned when the input carries no state.
var ErrNoState = errors.New("no state provided")

// Prepare validates the input. Returns ErrNoState if State is nil.
func (r *RunInput) Prepare() (*PreparedInput, error) {
	if r.State == nil {
		return nil, ErrNoState
	}
	return &PreparedInput{
		ThreadID: r.ThreadID,
		RunID:    r.RunID,
		State:    r.State,
	}, nil
}

// DecodeState decodes the raw state into a typed struct.
// Returns the zero value of T if State is nil.
func DecodeState[T any](input *PreparedInput) (T, error) {
	var result T
	if input.State == nil {
		return result, nil
	}

	// Re-marshal and unmarshal to get proper typing
	data, err := json.Marshal(input.State)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return result, err
	}

	return result, nil
}
