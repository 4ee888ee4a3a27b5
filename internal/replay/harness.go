package replay

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/danielpatrickdp/deliberate/internal/consensus"
	"github.com/danielpatrickdp/deliberate/internal/economics"
	"github.com/danielpatrickdp/deliberate/internal/experiment"
)

// #region types

// TurnResult captures the consensus evaluation after one recorded turn.
type TurnResult struct {
	Round    int
	Position int
	ActorID  experiment.ActorID
	Result   consensus.Result
}

// Summary aggregates a full replay run.
type Summary struct {
	TotalTurns        int
	Unanimous         bool
	AgreedChoice      *experiment.Choice
	RoundsToConsensus int
	Distribution      *economics.IncomeDistribution
}

// #endregion types

// #region harness

// Harness re-runs recorded turns through a consensus strategy and, on
// agreement, resolves the distribution the group would have received.
// It operates entirely in memory; no reasoning backend is touched.
type Harness struct {
	strategy consensus.Strategy
	engine   *economics.Engine
	logger   *logrus.Logger
}

// NewHarness wires a strategy and an economics engine for replay.
func NewHarness(strategy consensus.Strategy, engine *economics.Engine, logger *logrus.Logger) *Harness {
	if logger == nil {
		logger = logrus.New()
	}
	return &Harness{strategy: strategy, engine: engine, logger: logger}
}

// Replay walks the recorded turns in (round, position) order, feeding the
// cumulative latest choice per actor into the strategy after each turn.
// It stops at the first agreement; remaining turns are not evaluated.
func (h *Harness) Replay(f *Fixture) ([]TurnResult, Summary, error) {
	turns := make([]FixtureTurn, len(f.Utterances))
	copy(turns, f.Utterances)
	sort.SliceStable(turns, func(i, j int) bool {
		if turns[i].Round != turns[j].Round {
			return turns[i].Round < turns[j].Round
		}
		return turns[i].Position < turns[j].Position
	})

	latest := make(map[experiment.ActorID]experiment.Choice)
	results := make([]TurnResult, 0, len(turns))
	summary := Summary{TotalTurns: len(turns)}

	for i, turn := range turns {
		id := experiment.ActorID(turn.ActorID)
		latest[id] = turn.Choice.ToChoice(turn.Round, turn.Position)

		r := h.strategy.Detect(latest)
		r.RoundsToConsensus = turn.Round
		r.TotalMessages = i + 1
		results = append(results, TurnResult{
			Round:    turn.Round,
			Position: turn.Position,
			ActorID:  id,
			Result:   r,
		})

		if r.Unanimous && len(latest) >= 2 {
			summary.Unanimous = true
			summary.AgreedChoice = r.AgreedChoice
			summary.RoundsToConsensus = turn.Round
			h.logger.WithFields(logrus.Fields{
				"round": turn.Round,
				"turns": i + 1,
			}).Info("replay reached agreement")
			break
		}
	}

	if summary.Unanimous && h.engine != nil {
		d, err := h.engine.ApplyPrinciple(*summary.AgreedChoice)
		if err != nil {
			return results, summary, fmt.Errorf("resolve agreed choice: %w", err)
		}
		summary.Distribution = &d
	}
	return results, summary, nil
}

// Check compares a replay summary against the fixture's expected result.
func Check(f *Fixture, s Summary) error {
	if f.Expected == nil {
		return nil
	}
	exp := f.Expected
	if s.Unanimous != exp.Unanimous {
		return fmt.Errorf("unanimous: got %v, want %v", s.Unanimous, exp.Unanimous)
	}
	if !exp.Unanimous {
		return nil
	}
	if s.AgreedChoice == nil {
		return fmt.Errorf("agreement reported without a choice")
	}
	if s.AgreedChoice.PrincipleID != exp.PrincipleID || s.AgreedChoice.Constraint != exp.Constraint {
		return fmt.Errorf("agreed choice: got %d:%g, want %d:%g",
			s.AgreedChoice.PrincipleID, s.AgreedChoice.Constraint, exp.PrincipleID, exp.Constraint)
	}
	if s.RoundsToConsensus != exp.RoundsToConsensus {
		return fmt.Errorf("rounds to consensus: got %d, want %d", s.RoundsToConsensus, exp.RoundsToConsensus)
	}
	return nil
}

// #endregion harness
