package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeOf(t *testing.T) {
	err := Wrap(ErrorTypeLoad, stderrors.New("no such file"), "failed to open input")
	wrapped := fmt.Errorf("run: %w", err)

	assert.Equal(t, ErrorTypeLoad, TypeOf(wrapped))
	assert.True(t, Is(wrapped, ErrorTypeLoad))
	assert.False(t, Is(wrapped, ErrorTypeStore))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(stderrors.New("plain")))
	assert.False(t, Is(nil, ErrorTypeLoad))
}

func TestHTTPStatus(t *testing.T) {
	err := HTTPStatus(404, "https://twitter.com/a/status/1")
	assert.Equal(t, ErrorTypeHTTP, err.Type)
	assert.Equal(t, 404, err.Code)
	assert.Contains(t, err.Error(), "code 404")

	assert.Equal(t, ErrorTypeRateLimit, HTTPStatus(429, "x").Type)
}

func TestRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrorTypeNetwork))
	assert.True(t, IsRetryable(ErrorTypeRateLimit))
	assert.False(t, IsRetryable(ErrorTypeHTTP))
	assert.False(t, IsRetryable(ErrorTypeLoad))

	assert.True(t, IsRetryableStatusCode(0))
	assert.True(t, IsRetryableStatusCode(503))
	assert.True(t, IsRetryableStatusCode(429))
	assert.False(t, IsRetryableStatusCode(404))
	assert.False(t, IsRetryableStatusCode(400))
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(ErrorTypeStore, cause, "append rows")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "store error: append rows: disk full", err.Error())
}
