package config

// #region imports
import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/deliberate/internal/consensus"
	"github.com/danielpatrickdp/deliberate/internal/economics"
	"github.com/danielpatrickdp/deliberate/internal/experiment"
	"github.com/danielpatrickdp/deliberate/internal/memory"
	"github.com/danielpatrickdp/deliberate/internal/phase"
	"github.com/danielpatrickdp/deliberate/internal/scheduler"
)

// #endregion

// #region definition-types

// Definition is the experiment definition file: roster, principles,
// distributions, bounds, and the strategy variants selected for this run.
type Definition struct {
	Name             string            `yaml:"name"`
	Actors           []ActorDef        `yaml:"actors"`
	Principles       []PrincipleDef    `yaml:"principles"`
	Distributions    DistributionsDef  `yaml:"distributions"`
	PayoutRatio      float64           `yaml:"payout_ratio"`
	MaxRounds        int               `yaml:"max_rounds"`
	IndividualRounds int               `yaml:"individual_rounds"`
	DecisionRule     DecisionRuleDef   `yaml:"decision_rule"`
	Strategies       StrategiesDef     `yaml:"strategies"`
	Fallback         string            `yaml:"fallback"`
	DefaultPrinciple int               `yaml:"default_principle"`
	Ballot           bool              `yaml:"ballot"`
	TimeoutMinutes   int               `yaml:"timeout_minutes"`
	RankingWorkers   int               `yaml:"ranking_workers"`
}

// ActorDef declares one participant.
type ActorDef struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Model       string  `yaml:"model"`
	Persona     string  `yaml:"persona"`
	Temperature float32 `yaml:"temperature"`
	Leader      bool    `yaml:"leader"` // hierarchical turn order only
}

// PrincipleDef declares one principle. Param is none, floor-amount or
// range-amount; the constraint requirement follows from it.
type PrincipleDef struct {
	ID          int    `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Param       string `yaml:"param"`
}

// DistributionsDef declares the option set.
type DistributionsDef struct {
	Name    string            `yaml:"name"`
	Options []DistributionDef `yaml:"options"`
}

// DistributionDef is one income distribution row.
type DistributionDef struct {
	ID      int                `yaml:"id"`
	Classes map[string]float64 `yaml:"classes"`
}

// DecisionRuleDef selects unanimity or a threshold share.
type DecisionRuleDef struct {
	Rule      string  `yaml:"rule"` // unanimity | threshold
	Threshold float64 `yaml:"threshold"`
}

// StrategiesDef selects the pluggable variants, chosen once at load.
type StrategiesDef struct {
	Memory          string `yaml:"memory"` // full | recent | decomposed
	MemoryRecentMax int    `yaml:"memory_recent_max"`
	TurnOrder       string `yaml:"turn_order"` // random-constraint | strict-rotation | hierarchical
	Consensus       string `yaml:"consensus"`  // optional override of the decision rule mapping
}

// #endregion

// #region load

// LoadDefinition reads, defaults and validates an experiment definition.
// Validation failures here are fatal: in particular the distribution
// no-ties invariant is enforced now so it can never surface at runtime.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse definition: %w", err)
	}
	applyDefinitionDefaults(&def)
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid definition: %w", err)
	}
	return &def, nil
}

func applyDefinitionDefaults(def *Definition) {
	if def.PayoutRatio == 0 {
		def.PayoutRatio = 0.0001
	}
	if def.MaxRounds == 0 {
		def.MaxRounds = 10
	}
	if def.IndividualRounds == 0 {
		def.IndividualRounds = 4
	}
	if def.DecisionRule.Rule == "" {
		def.DecisionRule.Rule = "unanimity"
	}
	if def.Strategies.Memory == "" {
		def.Strategies.Memory = string(memory.KindDecomposed)
	}
	if def.Strategies.MemoryRecentMax == 0 {
		def.Strategies.MemoryRecentMax = 5
	}
	if def.Strategies.TurnOrder == "" {
		def.Strategies.TurnOrder = string(scheduler.OrderRandomConstraint)
	}
	if def.Fallback == "" {
		def.Fallback = string(phase.FallbackRandomAssignment)
	}
	if def.DefaultPrinciple == 0 {
		def.DefaultPrinciple = experiment.PrincipleMaxFloor
	}
	if def.TimeoutMinutes == 0 {
		def.TimeoutMinutes = 30
	}
	if def.RankingWorkers == 0 {
		def.RankingWorkers = 3
	}
}

// #endregion

// #region validate

// Validate enforces every load-time invariant.
func (def *Definition) Validate() error {
	if len(def.Actors) < 2 {
		return fmt.Errorf("need at least 2 actors, got %d", len(def.Actors))
	}
	seenActors := make(map[string]bool)
	for _, a := range def.Actors {
		if a.ID == "" {
			return fmt.Errorf("actor with empty id")
		}
		if seenActors[a.ID] {
			return fmt.Errorf("duplicate actor id %q", a.ID)
		}
		seenActors[a.ID] = true
	}

	if len(def.Principles) != 4 {
		return fmt.Errorf("exactly 4 principles required, got %d", len(def.Principles))
	}
	seenPrinciples := make(map[int]bool)
	for _, p := range def.Principles {
		if p.ID < 1 || p.ID > 4 {
			return fmt.Errorf("principle id %d out of range 1..4", p.ID)
		}
		if seenPrinciples[p.ID] {
			return fmt.Errorf("duplicate principle id %d", p.ID)
		}
		seenPrinciples[p.ID] = true
		switch experiment.ParamKind(p.Param) {
		case experiment.ParamNone, experiment.ParamFloor, experiment.ParamRange:
		default:
			return fmt.Errorf("principle %d: unknown param kind %q", p.ID, p.Param)
		}
	}

	if err := def.DistributionSet().Validate(); err != nil {
		return err
	}

	if def.PayoutRatio <= 0 {
		return fmt.Errorf("payout_ratio must be positive, got %g", def.PayoutRatio)
	}
	if def.MaxRounds < 1 {
		return fmt.Errorf("max_rounds must be >= 1, got %d", def.MaxRounds)
	}
	if def.IndividualRounds < 0 {
		return fmt.Errorf("individual_rounds must be >= 0, got %d", def.IndividualRounds)
	}

	switch def.DecisionRule.Rule {
	case "unanimity":
	case "threshold":
		if def.DecisionRule.Threshold <= 0 || def.DecisionRule.Threshold > 1 {
			return fmt.Errorf("threshold must be in (0,1], got %g", def.DecisionRule.Threshold)
		}
	default:
		return fmt.Errorf("unknown decision rule %q", def.DecisionRule.Rule)
	}

	// Strategy selections must resolve now, not mid-experiment.
	if _, err := consensus.NewStrategy(def.ConsensusKind(), def.DecisionRule.Threshold); err != nil {
		return err
	}
	switch memory.Kind(def.Strategies.Memory) {
	case memory.KindFull, memory.KindRecent, memory.KindDecomposed:
	default:
		return fmt.Errorf("unknown memory strategy %q", def.Strategies.Memory)
	}
	switch scheduler.OrderKind(def.Strategies.TurnOrder) {
	case scheduler.OrderRandomConstraint, scheduler.OrderStrictRotation, scheduler.OrderHierarchical:
	default:
		return fmt.Errorf("unknown turn order strategy %q", def.Strategies.TurnOrder)
	}
	switch phase.FallbackPolicy(def.Fallback) {
	case phase.FallbackRandomAssignment, phase.FallbackDefaultDistribution:
	default:
		return fmt.Errorf("unknown fallback policy %q", def.Fallback)
	}
	if def.DefaultPrinciple < 1 || def.DefaultPrinciple > 4 {
		return fmt.Errorf("default_principle %d out of range 1..4", def.DefaultPrinciple)
	}

	return nil
}

// #endregion

// #region converters

// PrincipleMap returns the id-keyed principle map.
func (def *Definition) PrincipleMap() map[int]experiment.Principle {
	out := make(map[int]experiment.Principle, len(def.Principles))
	for _, p := range def.Principles {
		kind := experiment.ParamKind(p.Param)
		out[p.ID] = experiment.Principle{
			ID:                 p.ID,
			Name:               p.Name,
			Description:        p.Description,
			RequiresConstraint: kind != experiment.ParamNone,
			ParamKind:          kind,
		}
	}
	return out
}

// ActorList builds the mutable actor roster.
func (def *Definition) ActorList() []*experiment.Actor {
	out := make([]*experiment.Actor, len(def.Actors))
	for i, a := range def.Actors {
		out[i] = &experiment.Actor{
			ID:          experiment.ActorID(a.ID),
			Name:        a.Name,
			ModelRef:    a.Model,
			Persona:     a.Persona,
			Temperature: a.Temperature,
		}
	}
	return out
}

// Leaders returns the actors flagged as leaders, in roster order.
func (def *Definition) Leaders() []experiment.ActorID {
	var out []experiment.ActorID
	for _, a := range def.Actors {
		if a.Leader {
			out = append(out, experiment.ActorID(a.ID))
		}
	}
	return out
}

// DistributionSet converts the yaml shape to the economics type.
func (def *Definition) DistributionSet() economics.DistributionSet {
	set := economics.DistributionSet{Name: def.Distributions.Name}
	for _, d := range def.Distributions.Options {
		classes := make(map[economics.IncomeClass]float64, len(d.Classes))
		for name, amount := range d.Classes {
			classes[economics.IncomeClass(name)] = amount
		}
		set.Distributions = append(set.Distributions, economics.IncomeDistribution{
			ID:      d.ID,
			Classes: classes,
		})
	}
	return set
}

// ConsensusKind maps the decision rule (plus optional override) to a
// consensus strategy kind.
func (def *Definition) ConsensusKind() consensus.Kind {
	if def.Strategies.Consensus != "" {
		return consensus.Kind(def.Strategies.Consensus)
	}
	if def.DecisionRule.Rule == "threshold" {
		return consensus.KindThreshold
	}
	return consensus.KindExactMatch
}

// PhaseConfig converts the definition's bounds to the controller config.
func (def *Definition) PhaseConfig() phase.Config {
	return phase.Config{
		MaxRounds:          def.MaxRounds,
		IndividualRounds:   def.IndividualRounds,
		RankingConcurrency: def.RankingWorkers,
		Timeout:            time.Duration(def.TimeoutMinutes) * time.Minute,
		Fallback:           phase.FallbackPolicy(def.Fallback),
		DefaultPrinciple:   def.DefaultPrinciple,
		BallotEnabled:      def.Ballot,
		MaxEconRetries:     2,
	}
}

// SchedulerConfig converts the turn-order selection.
func (def *Definition) SchedulerConfig() scheduler.Config {
	cfg := scheduler.DefaultConfig()
	cfg.Order.Kind = scheduler.OrderKind(def.Strategies.TurnOrder)
	cfg.Order.Leaders = def.Leaders()
	return cfg
}

// #endregion
