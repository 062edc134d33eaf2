package scenario

import (
	"errors"

	"github.com/danielpatrickdp/triad-field/internal/metrics"
	"github.com/danielpatrickdp/triad-field/internal/resonance"
)

// ErrEmpty is returned for a scenario with no entities, no generator and no timeline.
var ErrEmpty = errors.New("scenario is empty")

// #region scenario
// Scenario describes a field population to cascade and, optionally, a
// single-entity timeline to replay through a tracker.
type Scenario struct {
	Name     string             `yaml:"name" json:"name"`
	Seed     int64              `yaml:"seed" json:"seed"`
	Steps    int                `yaml:"steps" json:"steps"`       // 0 uses the configured default
	Coupling float64            `yaml:"coupling" json:"coupling"` // 0 uses the configured default
	Entities []resonance.Entity `yaml:"entities" json:"entities"`
	Generate *GenerateSpec      `yaml:"generate,omitempty" json:"generate,omitempty"`
	Timeline []metrics.Triad    `yaml:"timeline" json:"timeline"`
}

// GenerateSpec asks for Count noise-driven entities around Base.
type GenerateSpec struct {
	Count     int     `yaml:"count" json:"count"`
	Base      float64 `yaml:"base" json:"base"`
	Amplitude float64 `yaml:"amplitude" json:"amplitude"`
	Frequency float64 `yaml:"frequency" json:"frequency"`
	Octaves   int     `yaml:"octaves" json:"octaves"`
}

// #endregion scenario
