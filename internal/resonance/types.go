package resonance

import "github.com/danielpatrickdp/triad-field/internal/metrics"

// #region entity
// Entity is a named holder of one triadic state.
type Entity struct {
	ID            string `json:"id" yaml:"id"`
	metrics.Triad `yaml:",inline"`
}

// #endregion entity

// #region matrix
// Pair is an ordered key into a resonance Matrix.
type Pair struct {
	A, B string
}

// Matrix maps both orderings of every entity pair to their resonance.
type Matrix map[Pair]float64

// Get returns the resonance between a and b, or 0 if the pair is absent.
func (m Matrix) Get(a, b string) float64 {
	return m[Pair{a, b}]
}

// #endregion matrix

// #region field-config
// FieldConfig holds the thresholds used by the field report and phase gate.
type FieldConfig struct {
	ClusterThreshold    float64 `yaml:"cluster_threshold"`    // minimum resonance for a cluster edge
	CriticalResonance   float64 `yaml:"critical_resonance"`   // mean positive resonance for a phase transition
	MinCoherentRatio    float64 `yaml:"min_coherent_ratio"`   // coherent share of the population for a phase transition
	EmergenceSaturation int     `yaml:"emergence_saturation"` // coherent count at which the population factor reaches 1
}

// DefaultFieldConfig returns the thresholds the field heuristics were tuned with.
func DefaultFieldConfig() FieldConfig {
	return FieldConfig{
		ClusterThreshold:    0.7,
		CriticalResonance:   0.8,
		MinCoherentRatio:    0.7,
		EmergenceSaturation: 10,
	}
}

// #endregion field-config

// #region phase-decision
// PhaseCheck is one condition evaluated by the phase gate.
type PhaseCheck struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
	Pass      bool    `json:"pass"`
}

// PhaseDecision is the output of the phase gate.
type PhaseDecision struct {
	Transition bool         `json:"transition"`
	Reason     string       `json:"reason"`
	Checks     []PhaseCheck `json:"checks"`
}

// #endregion phase-decision

// #region field-report
// FieldReport is a point-in-time summary of the field.
type FieldReport struct {
	TotalEntities      int            `json:"total_entities"`
	CoherentEntities   int            `json:"coherent_entities"`
	FieldCoherence     float64        `json:"field_coherence"`
	EmergencePotential float64        `json:"emergence_potential"`
	PhaseTransition    bool           `json:"phase_transition"`
	ResonanceClusters  int            `json:"resonance_clusters"`
	ClusterSizes       []int          `json:"cluster_sizes,omitempty"`
	LargestCluster     int            `json:"largest_cluster,omitempty"`
	CollectiveState    *metrics.Triad `json:"collective_state,omitempty"`
	CollectiveValid    bool           `json:"collective_valid"`
	CollectiveStrength float64        `json:"collective_strength,omitempty"`
	LeaderID           string         `json:"leader_id,omitempty"`
	LeaderStrength     float64        `json:"leader_strength,omitempty"`
}

// #endregion field-report

// #region cascade-types
// CascadeStep pairs a step index with the report taken at that point.
type CascadeStep struct {
	Step   int         `json:"step"`
	Report FieldReport `json:"report"`
}

// CascadeSummary compares the first and last reports of a cascade.
type CascadeSummary struct {
	Steps                  int     `json:"steps"`
	InitialCoherence       float64 `json:"initial_coherence"`
	FinalCoherence         float64 `json:"final_coherence"`
	InitialEmergence       float64 `json:"initial_emergence"`
	FinalEmergence         float64 `json:"final_emergence"`
	ReachedPhaseTransition bool    `json:"reached_phase_transition"`
}

// #endregion cascade-types
