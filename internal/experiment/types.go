package experiment

// #region imports
import (
	"fmt"
	"time"
)

// #endregion

// #region actor

// ActorID uniquely identifies a deliberating actor within an experiment.
type ActorID string

// Actor is one autonomous participant. CurrentChoice tracks the latest
// extracted choice and is written only by the round executor.
type Actor struct {
	ID          ActorID `json:"id"`
	Name        string  `json:"name"`
	ModelRef    string  `json:"model_ref"`
	Persona     string  `json:"persona"`
	Temperature float32 `json:"temperature"`

	CurrentChoice *Choice `json:"current_choice,omitempty"`
}

// #endregion

// #region principle

// ParamKind describes the constraint parameter a principle requires.
type ParamKind string

const (
	ParamNone  ParamKind = "none"
	ParamFloor ParamKind = "floor-amount"
	ParamRange ParamKind = "range-amount"
)

// Canonical principle identifiers. The two hybrid principles (floor and
// range constrained) carry a numeric constraint parameter.
const (
	PrincipleMaxFloor        = 1
	PrincipleMaxAverage      = 2
	PrincipleFloorConstraint = 3
	PrincipleRangeConstraint = 4
)

// Principle is a policy rule for selecting among income distributions.
// Loaded from configuration, immutable afterwards.
type Principle struct {
	ID                 int
	Name               string
	Description        string
	RequiresConstraint bool
	ParamKind          ParamKind
}

// #endregion

// #region choice

// Choice is one actor's stated principle selection for a turn. Immutable
// after creation; the latest choice per actor is what consensus reads.
type Choice struct {
	PrincipleID      int       `json:"principle_id"`
	Constraint       float64   `json:"constraint"` // meaningful only for the hybrid principles
	Reasoning        string    `json:"reasoning"`
	Round            int       `json:"round"`
	SpeakerPosition  int       `json:"speaker_position"`
	ExtractionFailed bool      `json:"extraction_failed,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Key returns the agreement identity of a choice: two choices agree iff
// they share a principle and, for hybrid principles, a constraint value.
func (c Choice) Key() string {
	return fmt.Sprintf("%d:%g", c.PrincipleID, c.Constraint)
}

// #endregion

// #region ranking

// RankingStage names the point in the experiment a ranking was collected.
type RankingStage string

const (
	RankingInitial     RankingStage = "phase1_initial"
	RankingPhase1Final RankingStage = "phase1_final"
	RankingPhase2Final RankingStage = "phase2_final"
)

// Ranking is one actor's preference order over all principle IDs.
// Degraded marks rankings defaulted after extraction failure.
type Ranking struct {
	ActorID   ActorID      `json:"actor_id"`
	Stage     RankingStage `json:"stage"`
	Order     []int        `json:"order"`
	Degraded  bool         `json:"degraded,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// #endregion
