package consensus

import (
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/deliberate/internal/experiment"
	"github.com/danielpatrickdp/deliberate/internal/transcript"
)

func choices(pairs map[string]experiment.Choice) map[experiment.ActorID]experiment.Choice {
	out := make(map[experiment.ActorID]experiment.Choice, len(pairs))
	for id, c := range pairs {
		out[experiment.ActorID(id)] = c
	}
	return out
}

func TestNewStrategy(t *testing.T) {
	tests := []struct {
		name      string
		kind      Kind
		threshold float64
		wantErr   bool
	}{
		{name: "exact match", kind: KindExactMatch},
		{name: "threshold", kind: KindThreshold, threshold: 0.75},
		{name: "threshold unanimity share", kind: KindThreshold, threshold: 1},
		{name: "threshold zero", kind: KindThreshold, wantErr: true},
		{name: "threshold above one", kind: KindThreshold, threshold: 1.5, wantErr: true},
		{name: "semantic without backend", kind: KindSemantic, wantErr: true},
		{name: "unknown", kind: Kind("vibes"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStrategy(tt.kind, tt.threshold)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExactMatchDetect(t *testing.T) {
	tests := []struct {
		name           string
		choices        map[experiment.ActorID]experiment.Choice
		wantUnanimous  bool
		wantDissenting []experiment.ActorID
	}{
		{
			name: "all same simple principle",
			choices: choices(map[string]experiment.Choice{
				"alice": {PrincipleID: 1},
				"bob":   {PrincipleID: 1},
				"carol": {PrincipleID: 1},
			}),
			wantUnanimous: true,
		},
		{
			name: "same principle same constraint",
			choices: choices(map[string]experiment.Choice{
				"alice": {PrincipleID: 3, Constraint: 15000},
				"bob":   {PrincipleID: 3, Constraint: 15000},
			}),
			wantUnanimous: true,
		},
		{
			name: "same principle different constraint is dissent",
			choices: choices(map[string]experiment.Choice{
				"alice": {PrincipleID: 3, Constraint: 15000},
				"bob":   {PrincipleID: 3, Constraint: 15000},
				"carol": {PrincipleID: 3, Constraint: 16000},
			}),
			wantDissenting: []experiment.ActorID{"carol"},
		},
		{
			name: "different principles",
			choices: choices(map[string]experiment.Choice{
				"alice": {PrincipleID: 1},
				"bob":   {PrincipleID: 2},
				"carol": {PrincipleID: 1},
			}),
			wantDissenting: []experiment.ActorID{"bob"},
		},
		{
			name:    "empty",
			choices: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ExactMatch{}.Detect(tt.choices)
			assert.Equal(t, tt.wantUnanimous, r.Unanimous)
			assert.Equal(t, tt.wantDissenting, r.Dissenting)
			if tt.wantUnanimous {
				require.NotNil(t, r.AgreedChoice)
			}
		})
	}
}

// Unanimity is exactly cardinality one of the agreement-key set, regardless
// of which actors hold which choice.
func TestExactMatchCardinalityProperty(t *testing.T) {
	for n := 2; n <= 6; n++ {
		t.Run(fmt.Sprintf("%d actors", n), func(t *testing.T) {
			agree := make(map[experiment.ActorID]experiment.Choice)
			for i := 0; i < n; i++ {
				agree[experiment.ActorID(fmt.Sprintf("a%d", i))] = experiment.Choice{PrincipleID: 2}
			}
			assert.True(t, ExactMatch{}.Detect(agree).Unanimous)

			agree["a0"] = experiment.Choice{PrincipleID: 4, Constraint: 9000}
			assert.False(t, ExactMatch{}.Detect(agree).Unanimous)
		})
	}
}

func TestThresholdDetect(t *testing.T) {
	four := choices(map[string]experiment.Choice{
		"alice": {PrincipleID: 1},
		"bob":   {PrincipleID: 1},
		"carol": {PrincipleID: 1},
		"dave":  {PrincipleID: 2},
	})

	t.Run("three quarters reaches 0.75", func(t *testing.T) {
		r := Threshold{Share: 0.75}.Detect(four)
		assert.True(t, r.Unanimous)
		require.NotNil(t, r.AgreedChoice)
		assert.Equal(t, 1, r.AgreedChoice.PrincipleID)
		assert.Equal(t, []experiment.ActorID{"dave"}, r.Dissenting, "dissenters reported even on agreement")
	})

	t.Run("three quarters misses 0.8", func(t *testing.T) {
		r := Threshold{Share: 0.8}.Detect(four)
		assert.False(t, r.Unanimous)
	})

	t.Run("share 1 is unanimity", func(t *testing.T) {
		r := Threshold{Share: 1}.Detect(four)
		assert.False(t, r.Unanimous)
	})

	t.Run("modal tie is deterministic", func(t *testing.T) {
		tied := choices(map[string]experiment.Choice{
			"alice": {PrincipleID: 1},
			"bob":   {PrincipleID: 2},
		})
		r := Threshold{Share: 0.5}.Detect(tied)
		assert.True(t, r.Unanimous)
		assert.Equal(t, 1, r.AgreedChoice.PrincipleID, "ties break to the smallest key")
	})
}

func appendUtterance(t *testing.T, tr *transcript.Transcript, actor string, round, pos int, c experiment.Choice) {
	t.Helper()
	require.NoError(t, tr.Append(transcript.Utterance{
		ActorID: experiment.ActorID(actor), Round: round, Position: pos, Choice: c,
	}))
}

func TestDetectorOverRounds(t *testing.T) {
	d := NewDetector(ExactMatch{}, logrus.New())
	tr := transcript.New()

	// Round 1: split.
	appendUtterance(t, tr, "alice", 1, 0, experiment.Choice{PrincipleID: 1, Reasoning: "safety first"})
	appendUtterance(t, tr, "bob", 1, 1, experiment.Choice{PrincipleID: 2, Reasoning: "growth matters"})
	r := d.Detect(tr, 1)
	assert.False(t, r.Unanimous)
	assert.True(t, r.Validated)

	// Round 2: bob converges; only the latest choice counts.
	appendUtterance(t, tr, "alice", 2, 0, experiment.Choice{PrincipleID: 1, Reasoning: "still safety"})
	appendUtterance(t, tr, "bob", 2, 1, experiment.Choice{PrincipleID: 1, Reasoning: "convinced by the floor"})
	r = d.Detect(tr, 2)
	assert.True(t, r.Unanimous)
	assert.True(t, r.Validated)
	assert.Equal(t, 2, r.RoundsToConsensus)
	assert.Equal(t, 4, r.TotalMessages)
}

func TestValidateRejectsVerbatimReasoning(t *testing.T) {
	d := NewDetector(ExactMatch{}, logrus.New())
	tr := transcript.New()

	appendUtterance(t, tr, "alice", 1, 0, experiment.Choice{PrincipleID: 1, Reasoning: "the floor protects everyone"})
	appendUtterance(t, tr, "bob", 1, 1, experiment.Choice{PrincipleID: 1, Reasoning: "the floor protects everyone"})

	r := d.Detect(tr, 1)
	assert.True(t, r.Unanimous, "agreement itself stands")
	assert.False(t, r.Validated, "verbatim-identical reasoning fails validation")
}

func TestValidateRequiresTwoActors(t *testing.T) {
	d := NewDetector(ExactMatch{}, logrus.New())
	tr := transcript.New()
	appendUtterance(t, tr, "alice", 1, 0, experiment.Choice{PrincipleID: 1, Reasoning: "solo"})

	r := d.Detect(tr, 1)
	assert.False(t, r.Validated)
}

func TestDetectChoicesBallotPath(t *testing.T) {
	d := NewDetector(ExactMatch{}, logrus.New())

	ballots := choices(map[string]experiment.Choice{
		"alice": {PrincipleID: 3, Constraint: 14000},
		"bob":   {PrincipleID: 3, Constraint: 14000},
		"carol": {PrincipleID: 3, Constraint: 14000},
	})
	r := d.DetectChoices(ballots, 10, 30)
	assert.True(t, r.Unanimous)
	assert.True(t, r.Validated)
	assert.Equal(t, 10, r.RoundsToConsensus)
	assert.Equal(t, 30, r.TotalMessages)
}

func TestDetectChoicesVerbatimReasoning(t *testing.T) {
	d := NewDetector(ExactMatch{}, logrus.New())

	t.Run("identical ballot reasoning fails validation", func(t *testing.T) {
		ballots := choices(map[string]experiment.Choice{
			"alice": {PrincipleID: 3, Constraint: 14000, Reasoning: "the floor protects everyone"},
			"bob":   {PrincipleID: 3, Constraint: 14000, Reasoning: "the floor protects everyone"},
			"carol": {PrincipleID: 3, Constraint: 14000, Reasoning: "a decent minimum matters most"},
		})
		r := d.DetectChoices(ballots, 10, 30)
		assert.True(t, r.Unanimous, "agreement itself stands")
		assert.False(t, r.Validated)
	})

	t.Run("distinct ballot reasoning passes", func(t *testing.T) {
		ballots := choices(map[string]experiment.Choice{
			"alice": {PrincipleID: 3, Constraint: 14000, Reasoning: "the floor protects everyone"},
			"bob":   {PrincipleID: 3, Constraint: 14000, Reasoning: "a decent minimum matters most"},
		})
		r := d.DetectChoices(ballots, 10, 30)
		assert.True(t, r.Unanimous)
		assert.True(t, r.Validated)
	})
}
