package record

// #region imports
import (
	"context"
	"time"

	"github.com/danielpatrickdp/deliberate/internal/consensus"
	"github.com/danielpatrickdp/deliberate/internal/economics"
	"github.com/danielpatrickdp/deliberate/internal/experiment"
	"github.com/danielpatrickdp/deliberate/internal/memory"
	"github.com/danielpatrickdp/deliberate/internal/transcript"
)

// #endregion

// #region record

// ExperimentRecord is the complete result of one experiment: everything an
// exporter needs, assembled once at completion.
type ExperimentRecord struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	TimedOut    bool      `json:"timed_out"`

	Actors     []experiment.Actor                             `json:"actors"`
	Utterances []transcript.Utterance                         `json:"utterances"`
	Memories   map[experiment.ActorID][]memory.Entry          `json:"memories"`
	Outcomes   map[experiment.ActorID][]economics.Outcome     `json:"outcomes"`
	Rankings   []experiment.Ranking                           `json:"rankings"`
	Consensus  consensus.Result                               `json:"consensus"`

	BallotUsed      bool   `json:"ballot_used"`
	FallbackApplied string `json:"fallback_applied,omitempty"`
}

// #endregion

// #region exporter

// Exporter receives the finished record. Persistence format is the
// exporter's business; the controller never serializes.
type Exporter interface {
	Export(ctx context.Context, rec *ExperimentRecord) error
}

// #endregion
