package retry

import (
	"errors"
	"net"
	"syscall"

	nb "github.com/spetersoncode/newsbrief"
)

// IsTransient reports whether err is worth another attempt. A categorized
// error decides for itself. Otherwise a status of 429 or 5xx, a network
// timeout, or a reset or refused connection counts as transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var ce nb.CategorizedError
	if errors.As(err, &ce) {
		return ce.Category() == nb.ErrorTransient
	}

	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		code := sc.StatusCode()
		return code == 429 || (code >= 500 && code < 600)
	}

	// *url.Error implements net.Error, so wrapped HTTP client timeouts land here.
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ETIMEDOUT)
}
