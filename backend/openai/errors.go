package openai

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/openai/openai-go"

	nb "github.com/spetersoncode/newsbrief"
)

// wrapError wraps an OpenAI SDK error with newsbrief error categorization.
// It extracts status codes and Retry-After headers for proper retry handling.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		// Not an API error, return as-is (likely network error, handled by heuristics)
		return err
	}

	code := apiErr.StatusCode
	retryAfter := parseRetryAfter(apiErr.Response)

	msg := err.Error()
	if retryAfter > 0 {
		return nb.NewTransientErrorWithRetry(msg, code, retryAfter, err)
	}

	switch categorizeStatusCode(code) {
	case nb.ErrorTransient:
		return nb.NewTransientError(msg, code, err)
	case nb.ErrorUserInput:
		return nb.NewUserInputError(msg, code, err)
	default:
		return nb.NewPermanentError(msg, code, err)
	}
}

// categorizeStatusCode determines the error category from an HTTP status code.
func categorizeStatusCode(code int) nb.ErrorCategory {
	switch {
	case code == 429:
		return nb.ErrorTransient // Rate limited
	case code >= 500 && code < 600:
		return nb.ErrorTransient // Server error
	case code == 401 || code == 403:
		return nb.ErrorPermanent // Authentication/authorization
	case code == 400 || code == 404 || code == 422:
		return nb.ErrorUserInput // Bad request or not found
	default:
		return nb.ErrorPermanent
	}
}

// parseRetryAfter extracts the Retry-After duration from an HTTP response.
// Returns 0 if the header is not present or cannot be parsed.
func parseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}

	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}

	// HTTP-date form (RFC 7231)
	if t, err := http.ParseTime(header); err == nil {
		if delay := time.Until(t); delay > 0 {
			return delay
		}
	}

	return 0
}
