package evolution

import (
	"time"

	"github.com/danielpatrickdp/triad-field/internal/metrics"
)

// #region state
// State is an immutable triad stamped with the time it was recorded.
type State struct {
	metrics.Triad
	Timestamp time.Time `json:"timestamp"`
}

// #endregion state

// #region transition-type
// TransitionType classifies the move between two consecutive states.
type TransitionType string

const (
	VoidToVoid    TransitionType = "void_to_void"
	Emergence     TransitionType = "emergence"
	Collapse      TransitionType = "collapse"
	Amplification TransitionType = "amplification"
	Attenuation   TransitionType = "attenuation"
	Maintenance   TransitionType = "maintenance"
)

// #endregion transition-type

// #region transition
// Transition is derived when a state is appended after another one.
type Transition struct {
	From  State          `json:"from"`
	To    State          `json:"to"`
	Delta metrics.Triad  `json:"delta"`
	Type  TransitionType `json:"type"`
}

// Magnitude is the Euclidean length of the delta.
func (t Transition) Magnitude() float64 {
	return t.Delta.Norm()
}

// #endregion transition

// #region critical-event
// EventKind tags a critical event.
type EventKind string

const (
	EventEmergence       EventKind = "emergence"
	EventCollapse        EventKind = "collapse"
	EventPhaseTransition EventKind = "phase_transition"
)

// CriticalEvent is an entry in the tracker's append-only event log.
type CriticalEvent struct {
	Seq         int           `json:"seq"`
	Kind        EventKind     `json:"kind"`
	Timestamp   time.Time     `json:"timestamp"`
	Description string        `json:"description"`
	State       metrics.Triad `json:"state"`
}

// EventSink receives critical events as they are logged, in append order.
type EventSink interface {
	OnEvent(ev CriticalEvent)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(ev CriticalEvent)

// OnEvent calls f(ev).
func (f EventSinkFunc) OnEvent(ev CriticalEvent) { f(ev) }

// #endregion critical-event

// #region trend
// Trend summarizes recent strength dynamics.
type Trend string

const (
	TrendInsufficient Trend = "insufficient_data"
	TrendDegrading    Trend = "degrading"
	TrendChaotic      Trend = "chaotic"
	TrendImproving    Trend = "improving"
	TrendStable       Trend = "stable"
)

// #endregion trend

// #region tracker-config
// TrackerConfig holds history bounds and detection thresholds.
type TrackerConfig struct {
	MaxHistory           int     `yaml:"max_history"`            // states kept; <= 0 means unbounded
	MaxEvents            int     `yaml:"max_events"`             // critical events kept; <= 0 means unbounded
	AttractorTolerance   float64 `yaml:"attractor_tolerance"`    // distance from centroid
	AttractorMinDuration int     `yaml:"attractor_min_duration"` // states inspected
	CycleWindow          int     `yaml:"cycle_window"`
	CycleTolerance       float64 `yaml:"cycle_tolerance"`
	TrendWindow          int     `yaml:"trend_window"`
	DecayThreshold       float64 `yaml:"decay_threshold"`      // negative slope that counts as decay
	ChaosVariance        float64 `yaml:"chaos_variance"`       // strength variance above this is chaotic
	ImproveRatio         float64 `yaml:"improve_ratio"`        // second-half mean over first-half mean
	AmplifyRatio         float64 `yaml:"amplify_ratio"`        // strength ratio above this amplifies
	AttenuateRatio       float64 `yaml:"attenuate_ratio"`      // strength ratio below this attenuates
	PhaseJumpMagnitude   float64 `yaml:"phase_jump_magnitude"` // transition magnitude that logs a phase transition
}

// DefaultTrackerConfig returns the thresholds the detectors were tuned with.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		MaxHistory:           1000,
		MaxEvents:            1000,
		AttractorTolerance:   0.1,
		AttractorMinDuration: 5,
		CycleWindow:          20,
		CycleTolerance:       0.15,
		TrendWindow:          10,
		DecayThreshold:       0.1,
		ChaosVariance:        0.1,
		ImproveRatio:         1.05,
		AmplifyRatio:         1.10,
		AttenuateRatio:       0.90,
		PhaseJumpMagnitude:   2.0,
	}
}

// #endregion tracker-config

// #region report
// Report aggregates the tracker's current view of its timeline.
type Report struct {
	TotalStates            int                    `json:"total_states"`
	TotalTransitions       int                    `json:"total_transitions"`
	CurrentState           metrics.Triad          `json:"current_state"`
	CurrentValid           bool                   `json:"current_valid"`
	CurrentStrength        float64                `json:"current_strength"`
	CurrentBalance         float64                `json:"current_balance"`
	Trend                  Trend                  `json:"coherence_trend"`
	CriticalEvents         int                    `json:"critical_events"`
	AttractorDetected      bool                   `json:"attractor_detected"`
	AttractorState         *metrics.Triad         `json:"attractor_state,omitempty"`
	CycleDetected          bool                   `json:"cycle_detected"`
	CycleLength            int                    `json:"cycle_length,omitempty"`
	TransitionDistribution map[TransitionType]int `json:"transition_distribution"`
}

// TrajectoryPoint is one exported state with its derived metrics.
type TrajectoryPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Pattern   float64   `json:"pattern"`
	Intent    float64   `json:"intent"`
	Presence  float64   `json:"presence"`
	Valid     bool      `json:"valid"`
	Strength  float64   `json:"strength"`
	Balance   float64   `json:"balance"`
}

// Forecast projects strength forward from the recent slope.
type Forecast struct {
	Sufficient        bool      `json:"sufficient"`
	CurrentStrength   float64   `json:"current_strength"`
	TrendSlope        float64   `json:"trend_slope"`
	Predictions       []float64 `json:"predictions"`
	Warnings          []string  `json:"warnings"`
	RecommendedAction string    `json:"recommended_action"`
}

// #endregion report
