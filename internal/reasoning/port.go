package reasoning

// #region imports
import (
	"context"
	"errors"
)

// #endregion

// #region errors

// ErrReasoningFailure marks an exhausted reasoning call: timeout, transport
// error, or empty/malformed output after all retries.
var ErrReasoningFailure = errors.New("reasoning failure")

// #endregion

// #region port

// Request is one text-generation invocation.
type Request struct {
	Prompt      string
	ModelRef    string
	Temperature float32
	MaxTokens   int
}

// Port is the opaque text-generation capability the engine depends on.
// Implementations decide model, provider and transport.
type Port interface {
	Invoke(ctx context.Context, req Request) (string, error)
}

// PortFunc adapts a function to the Port interface.
type PortFunc func(ctx context.Context, req Request) (string, error)

// Invoke calls f.
func (f PortFunc) Invoke(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// #endregion
