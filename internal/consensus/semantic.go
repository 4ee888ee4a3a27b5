package consensus

// #region imports
import (
	"github.com/danielpatrickdp/deliberate/internal/experiment"
)

// #endregion

// #region similarity

// Similarity scores two pieces of reasoning text. External collaborator
// contract for the semantic-similarity strategy; no core implementation.
type Similarity interface {
	Score(a, b string) (float64, error)
}

// #endregion

// #region semantic-stub

// Semantic is the semantic-similarity extension point: agreement based on
// reasoning-text similarity rather than exact choice identity. It exists so
// an embedding-backed collaborator can be plugged in; NewStrategy rejects
// selecting it without one.
type Semantic struct {
	Backend   Similarity
	Threshold float64
}

// Detect implements Strategy. With no backend it never declares agreement.
func (s Semantic) Detect(choices map[experiment.ActorID]experiment.Choice) Result {
	if s.Backend == nil {
		return Result{Dissenting: actorsOutside(choices, "")}
	}
	// Delegation to the external collaborator would go here: pairwise
	// Score over latest reasoning, agreement when the minimum pairwise
	// similarity reaches Threshold.
	return ExactMatch{}.Detect(choices)
}

// #endregion
