package memory

// #region imports
import (
	"context"
	"time"

	"github.com/danielpatrickdp/deliberate/internal/experiment"
	"github.com/danielpatrickdp/deliberate/internal/transcript"
)

// #endregion

// #region sentinel

// Sentinel replaces any memory field whose generation failed after retries.
// Explicit by design requirement: a failed field must never look like
// genuinely blank content.
const Sentinel = "[unavailable]"

// #endregion

// #region entry

// Entry is one actor's private per-round reflection. Append-only per actor,
// never mutated after creation.
type Entry struct {
	ActorID             experiment.ActorID `json:"actor_id"`
	Round               int                `json:"round"`
	SituationAssessment string             `json:"situation_assessment"`
	OtherAgentsAnalysis string             `json:"other_agents_analysis"`
	StrategyUpdate      string             `json:"strategy_update"`
	Degraded            bool               `json:"degraded,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
}

// #endregion

// #region strategy

// Kind names a memory strategy variant, selected once at config load.
type Kind string

const (
	KindFull       Kind = "full"
	KindRecent     Kind = "recent"
	KindDecomposed Kind = "decomposed"
)

// Strategy builds an actor's working context and generates its per-round
// memory entry.
type Strategy interface {
	// BuildContext renders prior memories into the context string fed to
	// the actor's turn prompt.
	BuildContext(actorID experiment.ActorID, tr *transcript.Transcript, prior []Entry) string

	// GenerateEntry produces the actor's reflection for the round. It must
	// not fail the round: degraded fields carry the Sentinel value instead.
	GenerateEntry(ctx context.Context, actor *experiment.Actor, round int, contextStr string, tr *transcript.Transcript) Entry
}

// #endregion
