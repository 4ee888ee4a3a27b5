package reasoning

// #region imports
import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// #endregion

// #region config

// RetryConfig bounds the retry wrapper around every port call.
type RetryConfig struct {
	MaxAttempts int           // total attempts, including the first
	BaseBackoff time.Duration // doubled after each failed attempt
}

// DefaultRetryConfig returns the standard per-call bounds.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseBackoff: 500 * time.Millisecond,
	}
}

// #endregion

// #region caller

// Caller wraps a Port with bounded retry and exponential backoff. Failures
// after the last attempt surface as ErrReasoningFailure so callers can fall
// back to explicit sentinel values instead of blocking or aborting.
type Caller struct {
	port   Port
	cfg    RetryConfig
	logger *logrus.Logger
	sleep  func(time.Duration) // injectable for tests
}

// NewCaller wraps port with the given retry bounds.
func NewCaller(port Port, cfg RetryConfig, logger *logrus.Logger) *Caller {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Caller{
		port:   port,
		cfg:    cfg,
		logger: logger,
		sleep:  time.Sleep,
	}
}

// #endregion

// #region invoke

// Invoke calls the port, retrying on error or blank output. Empty text is a
// failure: genuine content and missing content must never be confused.
func (c *Caller) Invoke(ctx context.Context, req Request) (string, error) {
	var lastErr error
	backoff := c.cfg.BaseBackoff

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("reasoning call cancelled: %w", ErrReasoningFailure)
		}

		text, err := c.port.Invoke(ctx, req)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("empty response")
		}

		if attempt < c.cfg.MaxAttempts {
			c.logger.WithError(lastErr).Warnf("reasoning attempt %d/%d failed, backing off %s",
				attempt, c.cfg.MaxAttempts, backoff)
			c.sleep(backoff)
			backoff *= 2
		}
	}

	return "", fmt.Errorf("%d attempts exhausted: %v: %w", c.cfg.MaxAttempts, lastErr, ErrReasoningFailure)
}

// InvokeOr returns the reply text, or the sentinel when the call fails.
func (c *Caller) InvokeOr(ctx context.Context, req Request, sentinel string) string {
	text, err := c.Invoke(ctx, req)
	if err != nil {
		c.logger.WithError(err).Warn("reasoning call degraded to sentinel")
		return sentinel
	}
	return text
}

// #endregion
