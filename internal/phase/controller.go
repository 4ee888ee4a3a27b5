package phase

// #region imports
import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/danielpatrickdp/deliberate/internal/consensus"
	"github.com/danielpatrickdp/deliberate/internal/economics"
	"github.com/danielpatrickdp/deliberate/internal/experiment"
	"github.com/danielpatrickdp/deliberate/internal/memory"
	"github.com/danielpatrickdp/deliberate/internal/reasoning"
	"github.com/danielpatrickdp/deliberate/internal/record"
	"github.com/danielpatrickdp/deliberate/internal/scheduler"
	"github.com/danielpatrickdp/deliberate/internal/transcript"
)

// #endregion

// #region controller

// Controller owns all shared experiment state and sequences the phases.
// It is the only component that mutates actors, the ledger, and the state
// field; the scheduler writes the transcript during rounds on its behalf.
type Controller struct {
	cfg        Config
	actors     []*experiment.Actor
	principles map[int]experiment.Principle

	engine   *economics.Engine
	ledger   *economics.Ledger
	sched    *scheduler.Scheduler
	detector *consensus.Detector
	mem      *memory.Manager
	caller   *reasoning.Caller
	tr       *transcript.Transcript
	exporter record.Exporter

	rng    *rand.Rand
	logger *logrus.Logger

	state           State
	rankings        []experiment.Ranking
	timedOut        bool
	ballotUsed      bool
	fallbackApplied FallbackPolicy
}

// Deps bundles the collaborators the controller drives.
type Deps struct {
	Engine    *economics.Engine
	Scheduler *scheduler.Scheduler
	Detector  *consensus.Detector
	Memory    *memory.Manager
	Caller    *reasoning.Caller
	Exporter  record.Exporter
	Logger    *logrus.Logger
}

// NewController wires a controller. seed fixes fallback randomness.
func NewController(cfg Config, actors []*experiment.Actor, principles map[int]experiment.Principle, deps Deps, seed int64) *Controller {
	return &Controller{
		cfg:        cfg,
		actors:     actors,
		principles: principles,
		engine:     deps.Engine,
		ledger:     economics.NewLedger(),
		sched:      deps.Scheduler,
		detector:   deps.Detector,
		mem:        deps.Memory,
		caller:     deps.Caller,
		tr:         transcript.New(),
		exporter:   deps.Exporter,
		rng:        rand.New(rand.NewSource(seed)),
		logger:     deps.Logger,
		state:      StateInit,
	}
}

// State returns the currently active state.
func (c *Controller) State() State {
	return c.state
}

func (c *Controller) setState(s State) {
	c.logger.Infof("phase transition %s -> %s", c.state, s)
	c.state = s
}

// #endregion

// #region run

// Run executes the whole experiment and hands the completed record to the
// exporter. A wall-clock timeout forces the no-consensus terminal path;
// the record is still assembled and exported, marked timed out.
func (c *Controller) Run(ctx context.Context) (*record.ExperimentRecord, error) {
	started := time.Now().UTC()
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	c.setState(StatePhase1InitialRanking)
	c.collectRankings(ctx, experiment.RankingInitial)

	c.setState(StatePhase1Examples)
	c.presentExamples(ctx)

	c.setState(StatePhase1IndividualRounds)
	for n := 1; n <= c.cfg.IndividualRounds; n++ {
		if c.checkTimeout(ctx) {
			break
		}
		c.runIndividualRound(ctx, n)
	}

	c.setState(StatePhase1FinalRanking)
	c.collectRankings(ctx, experiment.RankingPhase1Final)

	c.setState(StatePhase2Deliberation)
	result := c.deliberate(ctx)

	if !result.Unanimous && c.cfg.BallotEnabled && !c.timedOut {
		c.setState(StatePhase2Ballot)
		result = c.secretBallot(ctx, result)
	}

	c.setState(StatePhase2Outcome)
	c.applyGroupOutcome(result)

	c.setState(StatePhase2FinalRanking)
	c.collectRankings(ctx, experiment.RankingPhase2Final)

	c.setState(StateComplete)
	rec := c.assembleRecord(started, result)

	if c.exporter != nil {
		// Export under a fresh context: the run deadline must not lose the record.
		if err := c.exporter.Export(context.Background(), rec); err != nil {
			c.logger.WithError(err).Error("export failed")
			return rec, err
		}
	}
	return rec, nil
}

func (c *Controller) checkTimeout(ctx context.Context) bool {
	if ctx.Err() != nil && !c.timedOut {
		c.logger.Warn("experiment timeout reached, forcing no-consensus path")
		c.timedOut = true
	}
	return c.timedOut
}

// #endregion

// #region record-assembly

func (c *Controller) assembleRecord(started time.Time, result consensus.Result) *record.ExperimentRecord {
	actors := make([]experiment.Actor, len(c.actors))
	for i, a := range c.actors {
		actors[i] = *a
	}
	return &record.ExperimentRecord{
		ID:              uuid.New().String(),
		StartedAt:       started,
		CompletedAt:     time.Now().UTC(),
		TimedOut:        c.timedOut,
		Actors:          actors,
		Utterances:      c.tr.Utterances(),
		Memories:        c.mem.All(),
		Outcomes:        c.ledger.All(),
		Rankings:        c.rankings,
		Consensus:       result,
		BallotUsed:      c.ballotUsed,
		FallbackApplied: string(c.fallbackApplied),
	}
}

// #endregion
