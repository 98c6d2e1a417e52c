package newsbrief

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrEmptyInput(t *testing.T) {
	t.Run("is a sentinel error", func(t *testing.T) {
		assert.Error(t, ErrEmptyInput)
		assert.Equal(t, "empty input", ErrEmptyInput.Error())
	})

	t.Run("can be compared with errors.Is", func(t *testing.T) {
		err := fmt.Errorf("classify: %w", ErrEmptyInput)
		assert.True(t, errors.Is(err, ErrEmptyInput))
	})
}

func TestCategorizedError(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name      string
		err       *Error
		category  ErrorCategory
		retryable bool
	}{
		{"transient", NewTransientError("rate limited", 429, cause), ErrorTransient, true},
		{"permanent", NewPermanentError("unauthorized", 401, cause), ErrorPermanent, false},
		{"user input", NewUserInputError("bad request", 400, cause), ErrorUserInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category())
			assert.Equal(t, tt.retryable, tt.err.Retryable())
			assert.ErrorIs(t, tt.err, cause)
			assert.Contains(t, tt.err.Error(), "boom")
		})
	}

	t.Run("helpers see through wrapping", func(t *testing.T) {
		err := fmt.Errorf("dispatch: %w", NewTransientErrorWithRetry("slow down", 429, 3*time.Second, nil))
		assert.True(t, IsTransient(err))
		assert.False(t, IsPermanent(err))
		assert.False(t, IsUserInput(err))
		assert.Equal(t, 429, StatusCodeOf(err))
		assert.Equal(t, 3*time.Second, RetryAfterOf(err))
	})

	t.Run("helpers return zero values for plain errors", func(t *testing.T) {
		err := errors.New("plain")
		assert.False(t, IsTransient(err))
		assert.Equal(t, 0, StatusCodeOf(err))
		assert.Equal(t, time.Duration(0), RetryAfterOf(err))
	})
}

func TestRejectedError(t *testing.T) {
	t.Run("includes backend and reason", func(t *testing.T) {
		err := &RejectedError{Backend: "gemini-2.0-flash", Reason: "SAFETY"}
		assert.Equal(t, "gemini-2.0-flash: response blocked: SAFETY", err.Error())
	})

	t.Run("unknown reason", func(t *testing.T) {
		err := &RejectedError{}
		assert.Equal(t, "response blocked: unknown", err.Error())
	})
}

func TestTransportError(t *testing.T) {
	cause := errors.New("connection reset")
	err := &TransportError{Backend: "gemini-2.5-flash", Err: cause}

	assert.Equal(t, "gemini-2.5-flash: transport failure: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestExhaustedError(t *testing.T) {
	last := &RejectedError{Backend: "b", Reason: "SAFETY"}
	err := &ExhaustedError{Backends: []string{"a", "b"}, Attempts: 4, Last: last}

	assert.ErrorIs(t, err, ErrBackendsExhausted)
	assert.Contains(t, err.Error(), "all 2 backends failed after 4 attempts")

	var rejected *RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "SAFETY", rejected.Reason)
}

func TestValidationExhaustedError(t *testing.T) {
	last := &ContractError{Contract: "delimited_list", Raw: "1,2", Reason: "want 3 items"}
	err := &ValidationExhaustedError{Task: "select_top", Attempts: 5, Last: last}

	assert.ErrorIs(t, err, ErrValidationExhausted)
	assert.False(t, errors.Is(err, ErrBackendsExhausted))
	assert.Equal(t, "select_top: no valid answer after 5 attempts: delimited_list contract violated: want 3 items", err.Error())

	var ce *ContractError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "1,2", ce.Raw)

	t.Run("without a recorded violation", func(t *testing.T) {
		err := &ValidationExhaustedError{Task: "select_grouped", Attempts: 2}
		assert.Nil(t, err.Unwrap())
		assert.Equal(t, "select_grouped: no valid answer after 2 attempts", err.Error())
	})
}
