package evolution

import (
	"github.com/danielpatrickdp/triad-field/internal/metrics"
)

// #region attractor
// DetectAttractor reports whether the last minDuration states all lie within
// tolerance of their centroid. The returned state sits at the centroid and
// carries the timestamp of the newest state inspected.
func (t *Tracker) DetectAttractor(tolerance float64, minDuration int) (State, bool) {
	if minDuration < 1 || len(t.states) < minDuration {
		return State{}, false
	}
	recent := t.states[len(t.states)-minDuration:]

	var centroid metrics.Triad
	for _, s := range recent {
		centroid.Pattern += s.Pattern
		centroid.Intent += s.Intent
		centroid.Presence += s.Presence
	}
	n := float64(len(recent))
	centroid = metrics.Triad{Pattern: centroid.Pattern / n, Intent: centroid.Intent / n, Presence: centroid.Presence / n}

	for _, s := range recent {
		if s.Distance(centroid) > tolerance {
			return State{}, false
		}
	}
	return State{Triad: centroid, Timestamp: recent[len(recent)-1].Timestamp}, true
}

// #endregion attractor

// #region cycle
// DetectCycle searches the last window states for the smallest period k in
// [2, window/2] such that every state is within tolerance of the state k
// steps later.
func (t *Tracker) DetectCycle(window int, tolerance float64) (int, bool) {
	if window < 1 || len(t.states) < window {
		return 0, false
	}
	recent := t.states[len(t.states)-window:]

	for k := 2; k <= window/2; k++ {
		periodic := true
		for i := 0; i+k < len(recent); i++ {
			if recent[i].Distance(recent[i+k].Triad) > tolerance {
				periodic = false
				break
			}
		}
		if periodic {
			return k, true
		}
	}
	return 0, false
}

// #endregion cycle

// #region trend
// Trend classifies the last window states (all of them if fewer). Decay wins
// over chaos, chaos over improvement.
func (t *Tracker) Trend(window int) Trend {
	if len(t.states) < 3 {
		return TrendInsufficient
	}
	recent := t.recent(window)

	triads := make([]metrics.Triad, len(recent))
	strengths := make([]float64, len(recent))
	for i, s := range recent {
		triads[i] = s.Triad
		strengths[i] = s.Strength()
	}

	if metrics.DecayDetected(triads, t.config.DecayThreshold) {
		return TrendDegrading
	}
	if metrics.Variance(strengths) > t.config.ChaosVariance {
		return TrendChaotic
	}

	half := len(strengths) / 2
	first, second := strengths[:half], strengths[half:]
	if len(first) > 0 && len(second) > 0 {
		if metrics.Mean(second) > metrics.Mean(first)*t.config.ImproveRatio {
			return TrendImproving
		}
	}
	return TrendStable
}

// #endregion trend

// #region forecast
const forecastWindow = 5

// Forecast extrapolates strength linearly from the slope of the last few
// states. Fewer than three states yield an insufficient forecast.
func (t *Tracker) Forecast(stepsAhead int) Forecast {
	if len(t.states) < 3 {
		return Forecast{RecommendedAction: "collect more states"}
	}
	recent := t.recent(forecastWindow)
	strengths := make([]float64, len(recent))
	for i, s := range recent {
		strengths[i] = s.Strength()
	}
	slope, _ := metrics.Slope(strengths)
	current := strengths[len(strengths)-1]

	predictions := make([]float64, stepsAhead)
	for i := range predictions {
		predictions[i] = current + slope*float64(i+1)
	}

	var warnings []string
	switch {
	case anyBelow(predictions, 0.3):
		warnings = append(warnings, "collapse predicted within forecast window")
	case anyBelow(predictions, 0.5):
		warnings = append(warnings, "significant degradation ahead")
	}
	if slope < -0.1 {
		warnings = append(warnings, "negative trend detected: coherence declining")
	}

	action := "continue monitoring"
	if len(warnings) > 0 {
		action = "immediate intervention"
	}
	return Forecast{
		Sufficient:        true,
		CurrentStrength:   current,
		TrendSlope:        slope,
		Predictions:       predictions,
		Warnings:          warnings,
		RecommendedAction: action,
	}
}

func anyBelow(xs []float64, limit float64) bool {
	for _, x := range xs {
		if x < limit {
			return true
		}
	}
	return false
}

// #endregion forecast

// #region report
// Report summarizes the timeline using the configured detector defaults.
// An empty tracker yields a zero report with an insufficient trend.
func (t *Tracker) Report() Report {
	r := Report{
		TotalStates:            len(t.states),
		TotalTransitions:       len(t.transitions),
		CriticalEvents:         len(t.events),
		Trend:                  t.Trend(t.config.TrendWindow),
		TransitionDistribution: make(map[TransitionType]int),
	}
	current, ok := t.Current()
	if !ok {
		return r
	}
	r.CurrentState = current.Triad
	r.CurrentValid = current.Coherent()
	r.CurrentStrength = current.Strength()
	r.CurrentBalance = current.Balance()

	if a, ok := t.DetectAttractor(t.config.AttractorTolerance, t.config.AttractorMinDuration); ok {
		r.AttractorDetected = true
		r.AttractorState = &a.Triad
	}
	if k, ok := t.DetectCycle(t.config.CycleWindow, t.config.CycleTolerance); ok {
		r.CycleDetected = true
		r.CycleLength = k
	}
	for _, tr := range t.transitions {
		r.TransitionDistribution[tr.Type]++
	}
	return r
}

// #endregion report
