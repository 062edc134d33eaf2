package metrics

import "math"

// #region triad
// Triad is a point in pattern × intent × presence space.
type Triad struct {
	Pattern  float64 `json:"pattern" yaml:"pattern"`
	Intent   float64 `json:"intent" yaml:"intent"`
	Presence float64 `json:"presence" yaml:"presence"`
}

// Coherent reports whether every component is non-zero.
func (t Triad) Coherent() bool {
	return IsCoherent(t.Pattern, t.Intent, t.Presence)
}

// Strength is Strength applied to the triad's components.
func (t Triad) Strength() float64 {
	return Strength(t.Pattern, t.Intent, t.Presence)
}

// Balance is Balance applied to the triad's components.
func (t Triad) Balance() float64 {
	return Balance(t.Pattern, t.Intent, t.Presence)
}

// Sub returns t - o component-wise.
func (t Triad) Sub(o Triad) Triad {
	return Triad{t.Pattern - o.Pattern, t.Intent - o.Intent, t.Presence - o.Presence}
}

// Norm is the Euclidean length of t.
func (t Triad) Norm() float64 {
	return math.Sqrt(t.Pattern*t.Pattern + t.Intent*t.Intent + t.Presence*t.Presence)
}

// Distance is the Euclidean distance between t and o.
func (t Triad) Distance(o Triad) float64 {
	return t.Sub(o).Norm()
}

// Lerp moves t a fraction f of the way toward target.
func (t Triad) Lerp(target Triad, f float64) Triad {
	return Triad{
		Pattern:  t.Pattern + (target.Pattern-t.Pattern)*f,
		Intent:   t.Intent + (target.Intent-t.Intent)*f,
		Presence: t.Presence + (target.Presence-t.Presence)*f,
	}
}

// #endregion triad

// #region diagnostic
// Diagnostic bundles every metric for one triad and its optional history.
type Diagnostic struct {
	Strength      float64 `json:"strength"`
	Balance       float64 `json:"balance"`
	Entropy       float64 `json:"entropy"`
	Stability     float64 `json:"stability"`
	DecayDetected bool    `json:"decay_detected"`
	HealthScore   float64 `json:"health_score"`
}

// #endregion diagnostic
