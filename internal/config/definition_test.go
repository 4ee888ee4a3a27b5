package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/deliberate/internal/consensus"
	"github.com/danielpatrickdp/deliberate/internal/experiment"
	"github.com/danielpatrickdp/deliberate/internal/scheduler"
)

func writeDefinition(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "experiment.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestLoadSampleDefinition(t *testing.T) {
	def, err := LoadDefinition(writeDefinition(t, SampleDefinitionYAML))
	require.NoError(t, err)

	assert.Equal(t, "justice-deliberation", def.Name)
	assert.Len(t, def.Actors, 3)
	assert.Len(t, def.Principles, 4)
	assert.Len(t, def.Distributions.Options, 4)
	assert.Equal(t, "unanimity", def.DecisionRule.Rule)

	principles := def.PrincipleMap()
	require.Len(t, principles, 4)
	assert.False(t, principles[1].RequiresConstraint)
	assert.True(t, principles[3].RequiresConstraint)
	assert.Equal(t, experiment.ParamFloor, principles[3].ParamKind)
	assert.Equal(t, experiment.ParamRange, principles[4].ParamKind)

	actors := def.ActorList()
	require.Len(t, actors, 3)
	assert.Equal(t, experiment.ActorID("alice"), actors[0].ID)
	assert.Equal(t, float32(0.7), actors[0].Temperature)

	set := def.DistributionSet()
	assert.Equal(t, "standard", set.Name)
	require.NoError(t, set.Validate())

	assert.Equal(t, consensus.KindExactMatch, def.ConsensusKind())

	pc := def.PhaseConfig()
	assert.Equal(t, 10, pc.MaxRounds)
	assert.Equal(t, 4, pc.IndividualRounds)
	assert.Equal(t, 30*time.Minute, pc.Timeout)
	assert.True(t, pc.BallotEnabled)

	sc := def.SchedulerConfig()
	assert.Equal(t, scheduler.OrderRandomConstraint, sc.Order.Kind)
	assert.Empty(t, sc.Order.Leaders)
}

const minimalYAML = `
name: tiny
actors:
  - {id: a, name: A, model: m}
  - {id: b, name: B, model: m}
principles:
  - {id: 1, name: p1, description: d, param: none}
  - {id: 2, name: p2, description: d, param: none}
  - {id: 3, name: p3, description: d, param: floor-amount}
  - {id: 4, name: p4, description: d, param: range-amount}
distributions:
  name: mini
  options:
    - {id: 1, classes: {high: 300, low: 100}}
    - {id: 2, classes: {high: 250, low: 150}}
`

func TestLoadDefinitionDefaults(t *testing.T) {
	def, err := LoadDefinition(writeDefinition(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 0.0001, def.PayoutRatio)
	assert.Equal(t, 10, def.MaxRounds)
	assert.Equal(t, 4, def.IndividualRounds)
	assert.Equal(t, "unanimity", def.DecisionRule.Rule)
	assert.Equal(t, "decomposed", def.Strategies.Memory)
	assert.Equal(t, "random-constraint", def.Strategies.TurnOrder)
	assert.Equal(t, "random-assignment", def.Fallback)
	assert.Equal(t, 1, def.DefaultPrinciple)
	assert.Equal(t, 30, def.TimeoutMinutes)
	assert.Equal(t, 3, def.RankingWorkers)
}

func TestLoadDefinitionValidation(t *testing.T) {
	tests := []struct {
		name string
		edit func(yaml string) string
	}{
		{
			name: "one actor",
			edit: func(y string) string {
				return `
name: bad
actors:
  - {id: solo, name: S, model: m}
principles:
  - {id: 1, name: p1, description: d, param: none}
  - {id: 2, name: p2, description: d, param: none}
  - {id: 3, name: p3, description: d, param: floor-amount}
  - {id: 4, name: p4, description: d, param: range-amount}
distributions:
  name: mini
  options:
    - {id: 1, classes: {high: 300, low: 100}}
    - {id: 2, classes: {high: 250, low: 150}}
`
			},
		},
		{
			name: "tied floors",
			edit: func(y string) string {
				return `
name: bad
actors:
  - {id: a, name: A, model: m}
  - {id: b, name: B, model: m}
principles:
  - {id: 1, name: p1, description: d, param: none}
  - {id: 2, name: p2, description: d, param: none}
  - {id: 3, name: p3, description: d, param: floor-amount}
  - {id: 4, name: p4, description: d, param: range-amount}
distributions:
  name: tied
  options:
    - {id: 1, classes: {high: 300, low: 100}}
    - {id: 2, classes: {high: 250, low: 100}}
`
			},
		},
		{
			name: "negative class amount",
			edit: func(y string) string {
				return `
name: bad
actors:
  - {id: a, name: A, model: m}
  - {id: b, name: B, model: m}
principles:
  - {id: 1, name: p1, description: d, param: none}
  - {id: 2, name: p2, description: d, param: none}
  - {id: 3, name: p3, description: d, param: floor-amount}
  - {id: 4, name: p4, description: d, param: range-amount}
distributions:
  name: negative
  options:
    - {id: 1, classes: {high: 300, low: -100}}
    - {id: 2, classes: {high: 250, low: 150}}
`
			},
		},
		{
			name: "semantic consensus rejected at load",
			edit: func(y string) string {
				return y + `
strategies:
  consensus: semantic-similarity
`
			},
		},
		{
			name: "threshold rule without threshold",
			edit: func(y string) string {
				return y + `
decision_rule:
  rule: threshold
`
			},
		},
		{
			name: "unknown memory strategy",
			edit: func(y string) string {
				return y + `
strategies:
  memory: photographic
`
			},
		},
		{
			name: "unknown fallback",
			edit: func(y string) string {
				return y + `
fallback: coin-flip
`
			},
		},
		{
			name: "default principle out of range",
			edit: func(y string) string {
				return y + `
default_principle: 9
`
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDefinition(writeDefinition(t, tt.edit(minimalYAML)))
			assert.Error(t, err)
		})
	}
}

func TestConsensusKindMapping(t *testing.T) {
	def := &Definition{}
	def.DecisionRule.Rule = "unanimity"
	assert.Equal(t, consensus.KindExactMatch, def.ConsensusKind())

	def.DecisionRule.Rule = "threshold"
	assert.Equal(t, consensus.KindThreshold, def.ConsensusKind())

	def.Strategies.Consensus = "exact-match"
	assert.Equal(t, consensus.KindExactMatch, def.ConsensusKind(), "explicit override wins")
}

func TestLeaders(t *testing.T) {
	def := &Definition{Actors: []ActorDef{
		{ID: "a"},
		{ID: "b", Leader: true},
		{ID: "c", Leader: true},
	}}
	assert.Equal(t, []experiment.ActorID{"b", "c"}, def.Leaders())
}
