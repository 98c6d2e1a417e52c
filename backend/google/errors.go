package google

import (
	"errors"

	nb "github.com/spetersoncode/newsbrief"
	"google.golang.org/genai"
)

// wrapError wraps a Google GenAI error with newsbrief error categorization.
// genai.APIError doesn't expose headers, so Retry-After is not available.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		// Not an API error, return as-is (likely network error, handled by heuristics)
		return err
	}

	code := apiErr.Code
	msg := err.Error()

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
