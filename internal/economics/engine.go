package economics

// #region imports
import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/danielpatrickdp/deliberate/internal/experiment"
)

// #endregion

// #region engine

// Engine resolves principle choices against a validated distribution set
// and converts assigned incomes into payouts.
type Engine struct {
	set         DistributionSet
	payoutRatio float64
	rng         *rand.Rand
	logger      *logrus.Logger
}

// NewEngine creates an engine over a set that has already passed Validate.
// seed fixes income-class assignment for reproducible runs.
func NewEngine(set DistributionSet, payoutRatio float64, seed int64, logger *logrus.Logger) *Engine {
	return &Engine{
		set:         set,
		payoutRatio: payoutRatio,
		rng:         rand.New(rand.NewSource(seed)),
		logger:      logger,
	}
}

// Set returns the engine's distribution set.
func (e *Engine) Set() DistributionSet {
	return e.set
}

// #endregion

// #region apply-principle

// ApplyPrinciple resolves a choice to the single qualifying distribution.
// Ties fall to the lowest distribution id so the function stays total even
// for sets that bypassed load-time validation (e.g. replay fixtures).
func (e *Engine) ApplyPrinciple(choice experiment.Choice) (IncomeDistribution, error) {
	switch choice.PrincipleID {
	case experiment.PrincipleMaxFloor:
		return e.selectBest(e.set.Distributions, IncomeDistribution.Floor)

	case experiment.PrincipleMaxAverage:
		return e.selectBest(e.set.Distributions, IncomeDistribution.Mean)

	case experiment.PrincipleFloorConstraint:
		qualifying := filter(e.set.Distributions, func(d IncomeDistribution) bool {
			return d.Floor() >= choice.Constraint
		})
		if len(qualifying) == 0 {
			return IncomeDistribution{}, fmt.Errorf(
				"no distribution has floor >= %.2f: %w", choice.Constraint, experiment.ErrInvalidChoice)
		}
		return e.selectBest(qualifying, IncomeDistribution.Mean)

	case experiment.PrincipleRangeConstraint:
		qualifying := filter(e.set.Distributions, func(d IncomeDistribution) bool {
			return d.Spread() <= choice.Constraint
		})
		if len(qualifying) == 0 {
			return IncomeDistribution{}, fmt.Errorf(
				"no distribution has range <= %.2f: %w", choice.Constraint, experiment.ErrInvalidChoice)
		}
		return e.selectBest(qualifying, IncomeDistribution.Mean)

	default:
		return IncomeDistribution{}, fmt.Errorf(
			"principle %d out of range: %w", choice.PrincipleID, experiment.ErrInvalidChoice)
	}
}

func (e *Engine) selectBest(candidates []IncomeDistribution, score func(IncomeDistribution) float64) (IncomeDistribution, error) {
	best := candidates[0]
	bestScore := score(best)
	for _, d := range candidates[1:] {
		s := score(d)
		if s > bestScore || (s == bestScore && d.ID < best.ID) {
			best = d
			bestScore = s
		}
	}
	return best, nil
}

func filter(ds []IncomeDistribution, keep func(IncomeDistribution) bool) []IncomeDistribution {
	var out []IncomeDistribution
	for _, d := range ds {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// #endregion

// #region assignment

// AssignIncomeClass picks a class uniformly at random from the distribution.
func (e *Engine) AssignIncomeClass(d IncomeDistribution) IncomeClass {
	names := d.ClassNames()
	return names[e.rng.Intn(len(names))]
}

// RandomDistribution picks a distribution uniformly at random. Used by the
// random-assignment fallback when no group agreement was reached.
func (e *Engine) RandomDistribution() IncomeDistribution {
	return e.set.Distributions[e.rng.Intn(len(e.set.Distributions))]
}

// ComputePayout converts a simulated income amount into reward units.
func (e *Engine) ComputePayout(amount float64) float64 {
	return amount * e.payoutRatio
}

// #endregion
