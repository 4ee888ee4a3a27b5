package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/deliberate/internal/experiment"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture. The JSON
// record written by the exporter is a valid fixture, so a finished run can
// be re-evaluated directly.
type Fixture struct {
	Description string         `json:"description"`
	Utterances  []FixtureTurn  `json:"utterances"`
	Expected    *FixtureResult `json:"expected,omitempty"`
}

// FixtureTurn mirrors a transcript utterance with JSON tags.
type FixtureTurn struct {
	ActorID  string        `json:"actor_id"`
	Round    int           `json:"round"`
	Position int           `json:"position"`
	Message  string        `json:"public_message"`
	Choice   FixtureChoice `json:"choice"`
}

// FixtureChoice mirrors experiment.Choice with JSON tags.
type FixtureChoice struct {
	PrincipleID int     `json:"principle_id"`
	Constraint  float64 `json:"constraint"`
	Reasoning   string  `json:"reasoning"`
}

// FixtureResult captures the expected agreement for regression checks.
type FixtureResult struct {
	Unanimous         bool    `json:"unanimous"`
	PrincipleID       int     `json:"principle_id"`
	Constraint        float64 `json:"constraint"`
	RoundsToConsensus int     `json:"rounds_to_consensus"`
}

// #endregion fixture-types

// #region fixture-load

// LoadFixture reads and parses a fixture JSON file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if len(f.Utterances) == 0 {
		return nil, fmt.Errorf("fixture %s has no utterances", path)
	}
	return &f, nil
}

// ToChoice converts a fixture choice to the domain type.
func (c FixtureChoice) ToChoice(round, position int) experiment.Choice {
	return experiment.Choice{
		PrincipleID:     c.PrincipleID,
		Constraint:      c.Constraint,
		Reasoning:       c.Reasoning,
		Round:           round,
		SpeakerPosition: position,
	}
}

// #endregion fixture-load
