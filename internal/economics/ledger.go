package economics

// #region imports
import (
	"time"

	"github.com/danielpatrickdp/deliberate/internal/experiment"
)

// #endregion

// #region outcome

// Outcome records one application of a principle to one actor. Immutable,
// append-only per actor.
type Outcome struct {
	ActorID         experiment.ActorID `json:"actor_id"`
	Round           int                `json:"round"`
	PrincipleID     int                `json:"principle_id"` // 0 when the random-assignment fallback applied
	AssignedClass   IncomeClass        `json:"assigned_class"`
	ActualIncome    float64            `json:"actual_income"`
	Payout          float64            `json:"payout"`
	CumulativeAfter float64            `json:"cumulative_after"`
	CreatedAt       time.Time          `json:"created_at"`
}

// #endregion

// #region ledger

// Ledger tracks each actor's economic outcomes and cumulative wealth.
// Wealth is monotonically non-decreasing: payouts are never negative.
type Ledger struct {
	outcomes map[experiment.ActorID][]Outcome
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{outcomes: make(map[experiment.ActorID][]Outcome)}
}

// Record appends an outcome, computing the cumulative wealth after it.
func (l *Ledger) Record(actorID experiment.ActorID, round, principleID int, class IncomeClass, income, payout float64) Outcome {
	out := Outcome{
		ActorID:         actorID,
		Round:           round,
		PrincipleID:     principleID,
		AssignedClass:   class,
		ActualIncome:    income,
		Payout:          payout,
		CumulativeAfter: l.Wealth(actorID) + payout,
		CreatedAt:       time.Now().UTC(),
	}
	l.outcomes[actorID] = append(l.outcomes[actorID], out)
	return out
}

// Wealth returns an actor's current cumulative wealth.
func (l *Ledger) Wealth(actorID experiment.ActorID) float64 {
	outs := l.outcomes[actorID]
	if len(outs) == 0 {
		return 0
	}
	return outs[len(outs)-1].CumulativeAfter
}

// Outcomes returns a copy of an actor's outcome history.
func (l *Ledger) Outcomes(actorID experiment.ActorID) []Outcome {
	outs := l.outcomes[actorID]
	cp := make([]Outcome, len(outs))
	copy(cp, outs)
	return cp
}

// All returns a copy of the full per-actor outcome map.
func (l *Ledger) All() map[experiment.ActorID][]Outcome {
	out := make(map[experiment.ActorID][]Outcome, len(l.outcomes))
	for id := range l.outcomes {
		out[id] = l.Outcomes(id)
	}
	return out
}

// #endregion
