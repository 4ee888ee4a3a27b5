package scheduler

// #region imports
import (
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/danielpatrickdp/deliberate/internal/experiment"
	"github.com/danielpatrickdp/deliberate/internal/memory"
	"github.com/danielpatrickdp/deliberate/internal/reasoning"
)

// #endregion

// #region order-kind

// OrderKind names a speaking-order pattern, selected once at config load.
type OrderKind string

const (
	OrderRandomConstraint OrderKind = "random-constraint"
	OrderStrictRotation   OrderKind = "strict-rotation"
	OrderHierarchical     OrderKind = "hierarchical"
)

// #endregion

// #region config

// OrderConfig selects and parameterizes the speaking-order pattern.
type OrderConfig struct {
	Kind               OrderKind
	Leaders            []experiment.ActorID // hierarchical only
	MaxShuffleAttempts int
}

// Config bounds the scheduler's extraction behavior.
type Config struct {
	Order          OrderConfig
	MaxCorrections int  // structured correction prompts before defaulting
	Normalize      bool // secondary normalization call on parse failure
}

// DefaultConfig returns the standard scheduler bounds.
func DefaultConfig() Config {
	return Config{
		Order: OrderConfig{
			Kind:               OrderRandomConstraint,
			MaxShuffleAttempts: 10,
		},
		MaxCorrections: 2,
		Normalize:      true,
	}
}

// #endregion

// #region scheduler

// Scheduler generates per-round speaking orders and drives each actor's
// turn: memory update, public statement, choice extraction, transcript
// append. Single writer of the transcript during ExecuteRound.
type Scheduler struct {
	caller     *reasoning.Caller
	memory     *memory.Manager
	principles map[int]experiment.Principle
	cfg        Config
	rng        *rand.Rand
	logger     *logrus.Logger
}

// New creates a scheduler. seed fixes shuffle order for reproducible runs.
func New(caller *reasoning.Caller, mem *memory.Manager, principles map[int]experiment.Principle, cfg Config, seed int64, logger *logrus.Logger) *Scheduler {
	if cfg.Order.MaxShuffleAttempts < 1 {
		cfg.Order.MaxShuffleAttempts = 10
	}
	return &Scheduler{
		caller:     caller,
		memory:     mem,
		principles: principles,
		cfg:        cfg,
		rng:        rand.New(rand.NewSource(seed)),
		logger:     logger,
	}
}

// #endregion
