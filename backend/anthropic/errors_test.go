package anthropic

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"

	nb "github.com/spetersoncode/newsbrief"
)

func apiError(code int, header http.Header) *anthropic.Error {
	req := httptest.NewRequest(http.MethodPost, "https://api.anthropic.com/v1/messages", nil)
	return &anthropic.Error{
		StatusCode: code,
		Request:    req,
		Response:   &http.Response{StatusCode: code, Header: header, Request: req},
	}
}

func TestWrapError(t *testing.T) {
	t.Run("overloaded is transient", func(t *testing.T) {
		err := wrapError(apiError(529, http.Header{"Retry-After": []string{"2"}}))
		assert.True(t, nb.IsTransient(err))
		assert.Equal(t, 2*time.Second, nb.RetryAfterOf(err))
	})

	t.Run("bad request", func(t *testing.T) {
		assert.True(t, nb.IsUserInput(wrapError(apiError(400, http.Header{}))))
	})

	t.Run("auth", func(t *testing.T) {
		assert.True(t, nb.IsPermanent(wrapError(apiError(401, http.Header{}))))
	})

	t.Run("other errors pass through", func(t *testing.T) {
		plain := errors.New("eof")
		assert.Equal(t, plain, wrapError(plain))
	})
}
