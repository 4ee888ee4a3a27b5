package consensus

// #region imports
import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/danielpatrickdp/deliberate/internal/experiment"
	"github.com/danielpatrickdp/deliberate/internal/transcript"
)

// #endregion

// #region types

// Kind names a consensus strategy variant, selected once at config load.
type Kind string

const (
	KindExactMatch Kind = "exact-match"
	KindThreshold  Kind = "threshold"
	KindSemantic   Kind = "semantic-similarity"
)

// Result reports the outcome of one agreement check.
type Result struct {
	Unanimous         bool                 `json:"unanimous"`
	AgreedChoice      *experiment.Choice   `json:"agreed_choice,omitempty"`
	Dissenting        []experiment.ActorID `json:"dissenting,omitempty"`
	RoundsToConsensus int                  `json:"rounds_to_consensus"`
	TotalMessages     int                  `json:"total_messages"`
	Validated         bool                 `json:"validated"`
}

// Strategy evaluates the latest choice per actor for agreement.
type Strategy interface {
	Detect(choices map[experiment.ActorID]experiment.Choice) Result
}

// #endregion

// #region constructor

// NewStrategy builds the configured strategy. The semantic-similarity
// variant is a documented extension point without a core implementation;
// selecting it is a configuration error.
func NewStrategy(kind Kind, threshold float64) (Strategy, error) {
	switch kind {
	case KindExactMatch:
		return ExactMatch{}, nil
	case KindThreshold:
		if threshold <= 0 || threshold > 1 {
			return nil, fmt.Errorf("threshold must be in (0,1], got %g", threshold)
		}
		return Threshold{Share: threshold}, nil
	case KindSemantic:
		return nil, fmt.Errorf("semantic-similarity consensus requires an external similarity backend; not available in core")
	default:
		return nil, fmt.Errorf("unknown consensus strategy %q", kind)
	}
}

// #endregion

// #region exact-match

// ExactMatch declares unanimity iff every actor's latest (principle,
// constraint) pair is identical.
type ExactMatch struct{}

// Detect implements Strategy.
func (ExactMatch) Detect(choices map[experiment.ActorID]experiment.Choice) Result {
	if len(choices) == 0 {
		return Result{}
	}

	keys := make(map[string][]experiment.ActorID)
	for id, c := range choices {
		keys[c.Key()] = append(keys[c.Key()], id)
	}
	if len(keys) != 1 {
		modal, _ := modalGroup(choices)
		return Result{Dissenting: actorsOutside(choices, modal)}
	}

	var agreed experiment.Choice
	for _, c := range choices {
		agreed = c
		break
	}
	return Result{Unanimous: true, AgreedChoice: &agreed}
}

// #endregion

// #region threshold

// Threshold declares agreement when the modal choice's share of actors
// reaches Share. Dissenters are everyone outside the modal group.
type Threshold struct {
	Share float64
}

// Detect implements Strategy.
func (t Threshold) Detect(choices map[experiment.ActorID]experiment.Choice) Result {
	if len(choices) == 0 {
		return Result{}
	}

	modal, members := modalGroup(choices)
	dissent := actorsOutside(choices, modal)
	share := float64(len(members)) / float64(len(choices))
	if share < t.Share {
		return Result{Dissenting: dissent}
	}

	agreed := choices[members[0]]
	return Result{
		Unanimous:    true,
		AgreedChoice: &agreed,
		Dissenting:   dissent,
	}
}

// #endregion

// #region modal-helpers

// modalGroup returns the key of the largest choice group and its members.
// Ties between groups break to the lexicographically smallest key so the
// result is deterministic.
func modalGroup(choices map[experiment.ActorID]experiment.Choice) (string, []experiment.ActorID) {
	groups := make(map[string][]experiment.ActorID)
	for id, c := range choices {
		groups[c.Key()] = append(groups[c.Key()], id)
	}

	var bestKey string
	for key, members := range groups {
		if bestKey == "" ||
			len(members) > len(groups[bestKey]) ||
			(len(members) == len(groups[bestKey]) && key < bestKey) {
			bestKey = key
		}
	}
	members := groups[bestKey]
	sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
	return bestKey, members
}

func actorsOutside(choices map[experiment.ActorID]experiment.Choice, key string) []experiment.ActorID {
	var out []experiment.ActorID
	for id, c := range choices {
		if c.Key() != key {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// #endregion

// #region detector

// Detector runs the configured strategy over transcript snapshots and
// validates the result.
type Detector struct {
	strategy Strategy
	logger   *logrus.Logger
}

// NewDetector wraps the configured strategy.
func NewDetector(strategy Strategy, logger *logrus.Logger) *Detector {
	return &Detector{strategy: strategy, logger: logger}
}

// Detect evaluates the latest choices in the transcript after the given
// round and runs validation.
func (d *Detector) Detect(tr *transcript.Transcript, round int) Result {
	result := d.strategy.Detect(tr.LatestChoices())
	result.RoundsToConsensus = round
	result.TotalMessages = tr.Len()
	result = Validate(result, tr)

	d.logger.Infof("consensus check round=%d unanimous=%v validated=%v dissenting=%d",
		round, result.Unanimous, result.Validated, len(result.Dissenting))
	return result
}

// DetectChoices evaluates an explicit choice map (secret ballot path).
// Ballot choices carry reasoning too, so claimed agreement gets the same
// verbatim-reasoning downgrade as transcript-backed unanimity.
func (d *Detector) DetectChoices(choices map[experiment.ActorID]experiment.Choice, round, totalMessages int) Result {
	result := d.strategy.Detect(choices)
	result.RoundsToConsensus = round
	result.TotalMessages = totalMessages
	result.Validated = len(choices) >= 2
	if result.Validated && result.Unanimous {
		reasonings := make(map[experiment.ActorID]string, len(choices))
		for id, c := range choices {
			reasonings[id] = c.Reasoning
		}
		if verbatimReasoning(reasonings) {
			result.Validated = false
		}
	}
	return result
}

// #endregion

// #region validate

// Validate requires at least two distinct actors, and downgrades claimed
// unanimity that coincides with verbatim-identical reasoning text across
// actors. The experiment continues either way; only the flag changes.
func Validate(r Result, tr *transcript.Transcript) Result {
	choices := tr.LatestChoices()
	if len(choices) < 2 {
		r.Validated = false
		return r
	}
	r.Validated = true

	if !r.Unanimous {
		return r
	}
	if verbatimReasoning(tr.LatestReasoning()) {
		r.Validated = false
	}
	return r
}

// verbatimReasoning reports whether two or more actors submitted identical
// non-empty reasoning text.
func verbatimReasoning(reasonings map[experiment.ActorID]string) bool {
	seen := make(map[string]int)
	for _, reasoning := range reasonings {
		if reasoning == "" {
			continue
		}
		seen[reasoning]++
		if seen[reasoning] >= 2 {
			return true
		}
	}
	return false
}

// #endregion
