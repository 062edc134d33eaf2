package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/danielpatrickdp/triad-field/internal/evolution"
	"github.com/danielpatrickdp/triad-field/internal/metrics"
	"github.com/danielpatrickdp/triad-field/internal/scenario"
)

// #region fixture-types
// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string                  `json:"description"`
	Config          FixtureConfig           `json:"config"`
	Points          []metrics.Triad         `json:"points"`
	ExpectedResults []FixtureExpectedResult `json:"expected_results"`
}

// FixtureConfig overrides tracker thresholds. Zero fields keep the base value.
type FixtureConfig struct {
	MaxHistory         int     `json:"max_history"`
	AmplifyRatio       float64 `json:"amplify_ratio"`
	AttenuateRatio     float64 `json:"attenuate_ratio"`
	PhaseJumpMagnitude float64 `json:"phase_jump_magnitude"`
}

// FixtureExpectedResult captures the expected transition and events per point.
type FixtureExpectedResult struct {
	Index      int                      `json:"index"`
	Transition evolution.TransitionType `json:"transition,omitempty"`
	Events     []evolution.EventKind    `json:"events,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader
// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if f.Description == "" {
		f.Description = path
	}
	return &f, nil
}

// FromScenario turns a scenario's timeline into a fixture with no expectations.
func FromScenario(s *scenario.Scenario) *Fixture {
	return &Fixture{
		Description: s.Name,
		Points:      append([]metrics.Triad(nil), s.Timeline...),
	}
}

// Name is the fixture description, or its position when it has none.
func (f *Fixture) Name(i int) string {
	if f.Description != "" {
		return f.Description
	}
	return fmt.Sprintf("fixture-%d", i)
}

// Apply returns base with the fixture's non-zero overrides.
func (fc FixtureConfig) Apply(base evolution.TrackerConfig) evolution.TrackerConfig {
	if fc.MaxHistory != 0 {
		base.MaxHistory = fc.MaxHistory
	}
	if fc.AmplifyRatio != 0 {
		base.AmplifyRatio = fc.AmplifyRatio
	}
	if fc.AttenuateRatio != 0 {
		base.AttenuateRatio = fc.AttenuateRatio
	}
	if fc.PhaseJumpMagnitude != 0 {
		base.PhaseJumpMagnitude = fc.PhaseJumpMagnitude
	}
	return base
}

// #endregion fixture-loader

// #region verify
// Verify compares results against expectations and describes every mismatch.
// An expectation with an empty transition only checks events.
func Verify(results []StepResult, expected []FixtureExpectedResult) []string {
	var out []string
	for _, e := range expected {
		if e.Index < 0 || e.Index >= len(results) {
			out = append(out, fmt.Sprintf("point %d: out of range (%d results)", e.Index, len(results)))
			continue
		}
		r := results[e.Index]
		if e.Transition != "" {
			got := evolution.TransitionType("")
			if r.Transition != nil {
				got = r.Transition.Type
			}
			if got != e.Transition {
				out = append(out, fmt.Sprintf("point %d: expected transition=%s, got %s", e.Index, e.Transition, got))
			}
		}
		var kinds []evolution.EventKind
		for _, ev := range r.Events {
			kinds = append(kinds, ev.Kind)
		}
		if !slices.Equal(kinds, e.Events) {
			out = append(out, fmt.Sprintf("point %d: expected events=%v, got %v", e.Index, e.Events, kinds))
		}
	}
	return out
}

// #endregion verify
