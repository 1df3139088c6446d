package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "tweetscraper/pkg/errors"
)

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.0,
	}

	tests := []struct {
		attempt     int
		expected    time.Duration
		description string
	}{
		{0, 0, "No attempt"},
		{1, 100 * time.Millisecond, "First attempt"},
		{2, 200 * time.Millisecond, "Second attempt"},
		{4, 800 * time.Millisecond, "Fourth attempt"},
		{5, 1 * time.Second, "Fifth attempt (capped at max)"},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			assert.Equal(t, test.expected, backoff.NextDelay(test.attempt))
		})
	}
}

func fastRetrier(attempts int) *Retrier {
	return NewRetrier(&Config{
		MaxAttempts: attempts,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
	})
}

func TestRetryWithSuccess(t *testing.T) {
	attempts := 0
	err := fastRetrier(5).Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errs.New(errs.ErrorTypeNetwork, "connection reset")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithMaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	err := fastRetrier(3).Do(context.Background(), func() error {
		attempts++
		return errs.HTTPStatus(503, "https://pbs.twimg.com/media/x.jpg")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retry attempts (3) exceeded")
	assert.Equal(t, 3, attempts)
}

func TestRetryWithNonRetryableError(t *testing.T) {
	attempts := 0
	notFound := errs.HTTPStatus(404, "https://pbs.twimg.com/media/x.jpg")

	err := fastRetrier(5).Do(context.Background(), func() error {
		attempts++
		return notFound
	})

	assert.Equal(t, notFound, err)
	assert.Equal(t, 1, attempts)
}

func TestSingleAttemptByDefault(t *testing.T) {
	attempts := 0
	cause := errs.New(errs.ErrorTypeNetwork, "timeout")

	err := NewRetrier(nil).Do(context.Background(), func() error {
		attempts++
		return cause
	})

	assert.Equal(t, cause, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	r := NewRetrier(&Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Second},
	})
	err := r.Do(ctx, func() error {
		attempts++
		cancel()
		return errs.New(errs.ErrorTypeNetwork, "timeout")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestDefaultRetryIf(t *testing.T) {
	assert.False(t, DefaultRetryIf(nil))
	assert.False(t, DefaultRetryIf(context.Canceled))
	assert.False(t, DefaultRetryIf(errors.New("plain")))
	assert.True(t, DefaultRetryIf(errs.New(errs.ErrorTypeNetwork, "dns")))
	assert.True(t, DefaultRetryIf(errs.HTTPStatus(502, "u")))
	assert.False(t, DefaultRetryIf(errs.HTTPStatus(403, "u")))
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	result, err := DoWithResult(context.Background(), fastRetrier(3), func() (string, error) {
		attempts++
		if attempts < 2 {
			return "", errs.New(errs.ErrorTypeNetwork, "temporary")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 2, attempts)
}
