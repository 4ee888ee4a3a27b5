package transcript

// #region imports
import (
	"fmt"
	"time"

	"github.com/danielpatrickdp/deliberate/internal/experiment"
)

// #endregion

// #region utterance

// Utterance is one actor's public statement plus the choice extracted
// from it. Utterances are totally ordered by (round, position).
type Utterance struct {
	ID            string             `json:"id"`
	ActorID       experiment.ActorID `json:"actor_id"`
	Round         int                `json:"round"`
	Position      int                `json:"position"`
	PublicMessage string             `json:"public_message"`
	Choice        experiment.Choice  `json:"choice"`
	CreatedAt     time.Time          `json:"created_at"`
}

// #endregion

// #region transcript

// Transcript is the shared append-only record of public statements.
// Single writer (the round executor); readers receive copies.
type Transcript struct {
	utterances []Utterance
}

// New returns an empty transcript.
func New() *Transcript {
	return &Transcript{}
}

// #endregion

// #region append

// Append adds an utterance, enforcing the (round, position) total order.
func (t *Transcript) Append(u Utterance) error {
	if len(t.utterances) > 0 {
		last := t.utterances[len(t.utterances)-1]
		if u.Round < last.Round {
			return fmt.Errorf("utterance round %d precedes last round %d", u.Round, last.Round)
		}
		if u.Round == last.Round && u.Position <= last.Position {
			return fmt.Errorf("utterance position %d.%d not after %d.%d",
				u.Round, u.Position, last.Round, last.Position)
		}
	}
	t.utterances = append(t.utterances, u)
	return nil
}

// #endregion

// #region readers

// Len reports the total number of utterances.
func (t *Transcript) Len() int {
	return len(t.utterances)
}

// Utterances returns a copy of the full ordered history.
func (t *Transcript) Utterances() []Utterance {
	out := make([]Utterance, len(t.utterances))
	copy(out, t.utterances)
	return out
}

// Round returns the utterances of a single round, in speaking order.
func (t *Transcript) Round(round int) []Utterance {
	var out []Utterance
	for _, u := range t.utterances {
		if u.Round == round {
			out = append(out, u)
		}
	}
	return out
}

// LastN returns a copy of the most recent n utterances.
func (t *Transcript) LastN(n int) []Utterance {
	if n >= len(t.utterances) {
		return t.Utterances()
	}
	out := make([]Utterance, n)
	copy(out, t.utterances[len(t.utterances)-n:])
	return out
}

// LatestChoices maps each actor that has spoken to its most recent choice.
func (t *Transcript) LatestChoices() map[experiment.ActorID]experiment.Choice {
	out := make(map[experiment.ActorID]experiment.Choice)
	for _, u := range t.utterances {
		out[u.ActorID] = u.Choice
	}
	return out
}

// LatestReasoning maps each actor to the reasoning text of its latest choice.
func (t *Transcript) LatestReasoning() map[experiment.ActorID]string {
	out := make(map[experiment.ActorID]string)
	for _, u := range t.utterances {
		out[u.ActorID] = u.Choice.Reasoning
	}
	return out
}

// LastSpeaker returns the actor that spoke last overall, if any.
func (t *Transcript) LastSpeaker() (experiment.ActorID, bool) {
	if len(t.utterances) == 0 {
		return "", false
	}
	return t.utterances[len(t.utterances)-1].ActorID, true
}

// #endregion
