package anthropic

import (
	"errors"
	"strconv"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	nb "github.com/spetersoncode/newsbrief"
)

// wrapError wraps an Anthropic SDK error with newsbrief error categorization.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	code := apiErr.StatusCode
	msg := err.Error()

	var retryAfter time.Duration
	if apiErr.Response != nil {
		if s, convErr := strconv.Atoi(apiErr.Response.Header.Get("Retry-After")); convErr == nil {
			retryAfter = time.Duration(s) * time.Second
		}
	}

	switch {
	case code == 429 || code == 529 || (code >= 500 && code < 600):
		if retryAfter > 0 {
			return nb.NewTransientErrorWithRetry(msg, code, retryAfter, err)
		}
		return nb.NewTransientError(msg, code, err)
	case code == 400 || code == 404 || code == 413 || code == 422:
		return nb.NewUserInputError(msg, code, err)
	default:
		return nb.NewPermanentError(msg, code, err)
	}
}
