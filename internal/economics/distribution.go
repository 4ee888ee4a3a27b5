package economics

// #region imports
import (
	"errors"
	"fmt"
	"sort"
)

// #endregion

// #region errors

// ErrAmbiguous marks a distribution set where some principle could resolve
// to more than one qualifying distribution. Caught at load time, never at
// runtime.
var ErrAmbiguous = errors.New("ambiguous distribution set")

// #endregion

// #region types

// IncomeClass is an ordinal bracket an actor can be assigned to.
type IncomeClass string

// IncomeDistribution maps each income class to a dollar amount.
type IncomeDistribution struct {
	ID      int
	Classes map[IncomeClass]float64
}

// DistributionSet is the named, read-only collection of distributions an
// experiment resolves principles against.
type DistributionSet struct {
	Name          string
	Distributions []IncomeDistribution
}

// #endregion

// #region distribution-stats

// Floor returns the minimum class amount.
func (d IncomeDistribution) Floor() float64 {
	first := true
	var min float64
	for _, v := range d.Classes {
		if first || v < min {
			min = v
			first = false
		}
	}
	return min
}

// Mean returns the unweighted average class amount.
func (d IncomeDistribution) Mean() float64 {
	if len(d.Classes) == 0 {
		return 0
	}
	var sum float64
	for _, v := range d.Classes {
		sum += v
	}
	return sum / float64(len(d.Classes))
}

// Spread returns max minus min class amount.
func (d IncomeDistribution) Spread() float64 {
	first := true
	var min, max float64
	for _, v := range d.Classes {
		if first {
			min, max = v, v
			first = false
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return max - min
}

// ClassNames returns the class labels in deterministic (sorted) order.
func (d IncomeDistribution) ClassNames() []IncomeClass {
	names := make([]IncomeClass, 0, len(d.Classes))
	for c := range d.Classes {
		names = append(names, c)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// #endregion

// #region validate

// Validate enforces the no-ties invariant: every principle the engine may
// be asked to resolve must have exactly one qualifying distribution.
//
// Constraint principles qualify over floor/spread-filtered subsets that
// depend on a runtime parameter, so any pair of distributions can end up
// co-qualifying. The conservative load-time check is therefore: all means
// distinct, and a unique maximum floor.
func (s DistributionSet) Validate() error {
	if len(s.Distributions) == 0 {
		return fmt.Errorf("distribution set %q is empty", s.Name)
	}

	seenIDs := make(map[int]bool)
	for _, d := range s.Distributions {
		if len(d.Classes) == 0 {
			return fmt.Errorf("distribution %d has no income classes", d.ID)
		}
		if seenIDs[d.ID] {
			return fmt.Errorf("duplicate distribution id %d", d.ID)
		}
		seenIDs[d.ID] = true
		for _, class := range d.ClassNames() {
			if d.Classes[class] < 0 {
				return fmt.Errorf("distribution %d class %q has negative amount %.2f", d.ID, class, d.Classes[class])
			}
		}
	}

	// Unique max floor (principle 1).
	bestFloor := s.Distributions[0].Floor()
	floorCount := 1
	for _, d := range s.Distributions[1:] {
		f := d.Floor()
		switch {
		case f > bestFloor:
			bestFloor = f
			floorCount = 1
		case f == bestFloor:
			floorCount++
		}
	}
	if floorCount > 1 {
		return fmt.Errorf("set %q: %d distributions share the maximum floor %.2f: %w",
			s.Name, floorCount, bestFloor, ErrAmbiguous)
	}

	// Distinct means (principles 2-4).
	means := make(map[float64]int)
	for _, d := range s.Distributions {
		m := d.Mean()
		if prev, ok := means[m]; ok {
			return fmt.Errorf("set %q: distributions %d and %d share mean %.2f: %w",
				s.Name, prev, d.ID, m, ErrAmbiguous)
		}
		means[m] = d.ID
	}

	return nil
}

// #endregion
