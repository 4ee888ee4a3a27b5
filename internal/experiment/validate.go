package experiment

// #region imports
import (
	"errors"
	"fmt"
)

// #endregion

// #region errors

// ErrInvalidChoice marks a structurally invalid choice: an out-of-range
// principle id or a missing/non-positive required constraint parameter.
var ErrInvalidChoice = errors.New("invalid choice")

// #endregion

// #region validate

// ValidateChoice checks a choice against the configured principle set.
func ValidateChoice(principles map[int]Principle, c Choice) error {
	p, ok := principles[c.PrincipleID]
	if !ok {
		return fmt.Errorf("principle %d not defined: %w", c.PrincipleID, ErrInvalidChoice)
	}
	if p.RequiresConstraint && c.Constraint <= 0 {
		return fmt.Errorf("principle %d requires a positive %s parameter: %w",
			p.ID, p.ParamKind, ErrInvalidChoice)
	}
	return nil
}

// ValidateRanking checks that order is a permutation of the principle ids.
func ValidateRanking(principles map[int]Principle, order []int) error {
	if len(order) != len(principles) {
		return fmt.Errorf("ranking has %d entries, want %d: %w",
			len(order), len(principles), ErrInvalidChoice)
	}
	seen := make(map[int]bool, len(order))
	for _, id := range order {
		if _, ok := principles[id]; !ok {
			return fmt.Errorf("ranking references unknown principle %d: %w", id, ErrInvalidChoice)
		}
		if seen[id] {
			return fmt.Errorf("ranking repeats principle %d: %w", id, ErrInvalidChoice)
		}
		seen[id] = true
	}
	return nil
}

// #endregion
