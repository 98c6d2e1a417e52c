package agui

import (
	"encoding/json"
	"testing"
)

func TestRunInput_Prepare(t *testing.T) {
	t.Run("valid input", func(t *testing.T) {
		input := RunInput{
			ThreadID: "thread-1",
			RunID:    "run-1",
			State:    map[string]any{"k": 2},
		}

		prepared, err := input.Prepare()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if prepared.ThreadID != "thread-1" {
			t.Errorf("ThreadID = %q, want %q", prepared.ThreadID, "thread-1")
		}
		if prepared.RunID != "run-1" {
			t.Errorf("RunID = %q, want %q", prepared.RunID, "run-1")
		}
	})

	t.Run("missing state returns error", func(t *testing.T) {
		input := RunInput{ThreadID: "thread-1"}

		_, err := input.Prepare()
		if err != ErrNoState {
			t.Errorf("error = %v, want ErrNoState", err)
		}
	})
}

type topState struct {
	K        int     `json:"k"`
	Articles []int64 `json:"articles"`
}

func TestDecodeState(t *testing.T) {
	t.Run("decodes JSON request body", func(t *testing.T) {
		var input RunInput
		body := `{"thread_id":"t","run_id":"r","state":{"k":2,"articles":[3,7]}}`
		if err := json.Unmarshal([]byte(body), &input); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		prepared, err := input.Prepare()
		if err != nil {
			t.Fatalf("prepare: %v", err)
		}

		state, err := DecodeState[topState](prepared)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if state.K != 2 {
			t.Errorf("K = %d, want 2", state.K)
		}
		if len(state.Articles) != 2 || state.Articles[1] != 7 {
			t.Errorf("Articles = %v, want [3 7]", state.Articles)
		}
	})

	t.Run("nil state gives zero value", func(t *testing.T) {
		state, err := DecodeState[topState](&PreparedInput{})
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if state.K != 0 || state.Articles != nil {
			t.Errorf("state = %+v, want zero", state)
		}
	})

	t.Run("type mismatch returns error", func(t *testing.T) {
		_, err := DecodeState[topState](&PreparedInput{State: map[string]any{"k": "two"}})
		if err == nil {
			t.Error("expected error")
		}
	})
}
