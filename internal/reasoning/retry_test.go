package reasoning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedPort returns each reply in sequence, then repeats the last one.
type scriptedPort struct {
	replies []string
	errs    []error
	calls   int
}

func (p *scriptedPort) Invoke(_ context.Context, _ Request) (string, error) {
	i := p.calls
	if i >= len(p.replies) {
		i = len(p.replies) - 1
	}
	p.calls++
	return p.replies[i], p.errs[i]
}

func newTestCaller(port Port, maxAttempts int) (*Caller, *[]time.Duration) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	c := NewCaller(port, RetryConfig{MaxAttempts: maxAttempts, BaseBackoff: 100 * time.Millisecond}, logger)
	var slept []time.Duration
	c.sleep = func(d time.Duration) { slept = append(slept, d) }
	return c, &slept
}

func TestInvokeFirstTry(t *testing.T) {
	port := &scriptedPort{replies: []string{"hello"}, errs: []error{nil}}
	c, slept := newTestCaller(port, 3)

	text, err := c.Invoke(context.Background(), Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	assert.Equal(t, 1, port.calls)
	assert.Empty(t, *slept)
}

func TestInvokeRetriesThenSucceeds(t *testing.T) {
	port := &scriptedPort{
		replies: []string{"", "", "recovered"},
		errs:    []error{errors.New("boom"), nil, nil}, // transport error, then blank reply
	}
	c, slept := newTestCaller(port, 3)

	text, err := c.Invoke(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, 3, port.calls)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, *slept, "backoff doubles")
}

func TestInvokeExhaustsAttempts(t *testing.T) {
	port := &scriptedPort{replies: []string{""}, errs: []error{errors.New("down")}}
	c, _ := newTestCaller(port, 3)

	_, err := c.Invoke(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrReasoningFailure)
	assert.Equal(t, 3, port.calls, "attempts are bounded")
}

func TestInvokeBlankIsFailure(t *testing.T) {
	port := &scriptedPort{replies: []string{"   \n  "}, errs: []error{nil}}
	c, _ := newTestCaller(port, 2)

	_, err := c.Invoke(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrReasoningFailure)
	assert.Equal(t, 2, port.calls)
}

func TestInvokeHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	port := &scriptedPort{replies: []string{"ok"}, errs: []error{nil}}
	c, _ := newTestCaller(port, 3)

	_, err := c.Invoke(ctx, Request{})
	assert.ErrorIs(t, err, ErrReasoningFailure)
	assert.Zero(t, port.calls, "cancelled context must not reach the port")
}

func TestInvokeOr(t *testing.T) {
	t.Run("success passes through", func(t *testing.T) {
		port := &scriptedPort{replies: []string{"reply"}, errs: []error{nil}}
		c, _ := newTestCaller(port, 1)
		assert.Equal(t, "reply", c.InvokeOr(context.Background(), Request{}, "[unavailable]"))
	})

	t.Run("failure degrades to sentinel", func(t *testing.T) {
		port := &scriptedPort{replies: []string{""}, errs: []error{errors.New("down")}}
		c, _ := newTestCaller(port, 2)
		assert.Equal(t, "[unavailable]", c.InvokeOr(context.Background(), Request{}, "[unavailable]"))
	})
}
