// Package metrics holds the pure numeric functions shared by the evolution
// tracker and the resonance field. None of them keep state.
package metrics

import "math"

const epsilon = 1e-10

// #region coherence
// IsCoherent is false if any component is zero.
func IsCoherent(pattern, intent, presence float64) bool {
	return pattern != 0 && intent != 0 && presence != 0
}

// Strength is the cube root of |p·i·pr| over the arithmetic mean of the
// magnitudes, clamped to [0, 1]. Void triads have strength 0.
func Strength(pattern, intent, presence float64) float64 {
	if !IsCoherent(pattern, intent, presence) {
		return 0
	}
	num := math.Cbrt(math.Abs(pattern * intent * presence))
	den := (math.Abs(pattern) + math.Abs(intent) + math.Abs(presence) + epsilon) / 3
	return clamp(num/den, 0, 1)
}

// Balance is 1/(1+cv) where cv is the coefficient of variation of the
// component magnitudes. Equal magnitudes give 1.0.
func Balance(pattern, intent, presence float64) float64 {
	if !IsCoherent(pattern, intent, presence) {
		return 0
	}
	vals := [3]float64{math.Abs(pattern), math.Abs(intent), math.Abs(presence)}
	mean := (vals[0] + vals[1] + vals[2]) / 3
	if mean == 0 {
		return 0
	}
	var variance float64
	for _, v := range vals {
		variance += (v - mean) * (v - mean)
	}
	variance /= 3
	cv := math.Sqrt(variance) / mean
	return 1 / (1 + cv)
}

// Entropy is the Shannon entropy of the normalized magnitudes divided by
// ln 3. Void triads report the maximum, 1.0.
func Entropy(pattern, intent, presence float64) float64 {
	if !IsCoherent(pattern, intent, presence) {
		return 1
	}
	total := math.Abs(pattern) + math.Abs(intent) + math.Abs(presence)
	if total == 0 {
		return 1
	}
	var h float64
	for _, v := range [3]float64{pattern, intent, presence} {
		p := math.Abs(v) / total
		if p > 0 {
			h -= p * math.Log(p)
		}
	}
	return h / math.Log(3)
}

// #endregion coherence

// #region history
// Stability maps the variance of strength over the last window entries of
// history to (0, 1] via exp(-5·variance).
func Stability(history []Triad, window int) float64 {
	if len(history) < 2 {
		return 1
	}
	recent := tail(history, window)
	if len(recent) < 2 {
		return 1
	}
	return math.Exp(-Variance(strengths(recent)) * 5)
}

// DecayDetected fits strength against index by least squares and reports
// whether the slope is below -threshold.
func DecayDetected(history []Triad, threshold float64) bool {
	if len(history) < 3 {
		return false
	}
	slope, ok := Slope(strengths(history))
	if !ok {
		return false
	}
	return slope < -threshold
}

// Slope is the ordinary least squares slope of ys against 0..n-1. ok is
// false when fewer than two points are given.
func Slope(ys []float64) (slope float64, ok bool) {
	n := len(ys)
	if n < 2 {
		return 0, false
	}
	xMean := float64(n-1) / 2
	yMean := Mean(ys)
	var num, den float64
	for i, y := range ys {
		dx := float64(i) - xMean
		num += dx * (y - yMean)
		den += dx * dx
	}
	if den == 0 {
		return 0, false
	}
	return num / den, true
}

// #endregion history

// #region resonance
// ResonanceCoefficient is the cosine similarity of a and b clamped to
// [-1, 1]. A void or zero-length operand yields 0.
func ResonanceCoefficient(a, b Triad) float64 {
	if !a.Coherent() || !b.Coherent() {
		return 0
	}
	ma, mb := a.Norm(), b.Norm()
	if ma == 0 || mb == 0 {
		return 0
	}
	dot := a.Pattern*b.Pattern + a.Intent*b.Intent + a.Presence*b.Presence
	return clamp(dot/(ma*mb), -1, 1)
}

// #endregion resonance

// #region diagnose
// Diagnose computes every metric for t. history may be nil, in which case
// stability counts as 1.0 and decay is not evaluated.
func Diagnose(t Triad, history []Triad) Diagnostic {
	d := Diagnostic{
		Strength:  t.Strength(),
		Balance:   t.Balance(),
		Entropy:   Entropy(t.Pattern, t.Intent, t.Presence),
		Stability: 1,
	}
	if len(history) > 0 {
		d.Stability = Stability(history, 5)
		d.DecayDetected = DecayDetected(history, 0.1)
	}
	d.HealthScore = d.Strength*0.4 + d.Balance*0.3 + (1-d.Entropy)*0.2 + d.Stability*0.1
	return d
}

// #endregion diagnose

// #region helpers
// Mean of xs; 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Variance is the population variance of xs.
func Variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := Mean(xs)
	var sum float64
	for _, x := range xs {
		sum += (x - m) * (x - m)
	}
	return sum / float64(len(xs))
}

func strengths(ts []Triad) []float64 {
	out := make([]float64, len(ts))
	for i, t := range ts {
		out[i] = t.Strength()
	}
	return out
}

func tail(ts []Triad, window int) []Triad {
	if window <= 0 || len(ts) <= window {
		return ts
	}
	return ts[len(ts)-window:]
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// #endregion helpers
