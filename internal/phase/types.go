package phase

// #region imports
import (
	"time"
)

// #endregion

// #region states

// State is one node of the experiment state machine. Exactly one state is
// active at a time; transitions are strictly sequential.
type State string

const (
	StateInit                   State = "init"
	StatePhase1InitialRanking   State = "phase1_initial_ranking"
	StatePhase1Examples         State = "phase1_examples"
	StatePhase1IndividualRounds State = "phase1_individual_rounds"
	StatePhase1FinalRanking     State = "phase1_final_ranking"
	StatePhase2Deliberation     State = "phase2_deliberation"
	StatePhase2Ballot           State = "phase2_ballot"
	StatePhase2Outcome          State = "phase2_outcome"
	StatePhase2FinalRanking     State = "phase2_final_ranking"
	StateComplete               State = "complete"
)

// #endregion

// #region fallback

// FallbackPolicy selects what happens when the group never agrees.
type FallbackPolicy string

const (
	// FallbackRandomAssignment assigns each actor a uniform income class
	// from a uniformly chosen distribution, with no principle applied.
	FallbackRandomAssignment FallbackPolicy = "random-assignment"
	// FallbackDefaultDistribution resolves the configured default
	// principle through the normal engine path.
	FallbackDefaultDistribution FallbackPolicy = "default-distribution"
)

// #endregion

// #region config

// Config bounds the experiment run.
type Config struct {
	MaxRounds          int
	IndividualRounds   int
	RankingConcurrency int // bound on parallel ranking/ballot collection
	Timeout            time.Duration
	Fallback           FallbackPolicy
	DefaultPrinciple   int // default-distribution fallback only
	BallotEnabled      bool
	MaxEconRetries     int // re-prompts when a choice is economically unsatisfiable
}

// DefaultConfig returns the standard experiment bounds.
func DefaultConfig() Config {
	return Config{
		MaxRounds:          10,
		IndividualRounds:   4,
		RankingConcurrency: 3,
		Timeout:            30 * time.Minute,
		Fallback:           FallbackRandomAssignment,
		DefaultPrinciple:   1,
		BallotEnabled:      true,
		MaxEconRetries:     2,
	}
}

// #endregion
