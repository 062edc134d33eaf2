package metrics

import (
	"math"
	"testing"
)

// #region coherence-tests
func TestIsCoherent(t *testing.T) {
	cases := []struct {
		name    string
		p, i, r float64
		want    bool
	}{
		{"all nonzero", 1, 1, 1, true},
		{"negative components", -0.5, 2, -1, true},
		{"zero pattern", 0, 1, 1, false},
		{"zero intent", 1, 0, 1, false},
		{"zero presence", 1, 1, 0, false},
		{"all zero", 0, 0, 0, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := IsCoherent(c.p, c.i, c.r); got != c.want {
				t.Errorf("IsCoherent(%v, %v, %v) = %v, want %v", c.p, c.i, c.r, got, c.want)
			}
		})
	}
}

func TestStrength_VoidIsZero(t *testing.T) {
	for _, tr := range []Triad{{0, 1, 1}, {1, 0, 1}, {1, 1, 0}, {0, 0, 0}} {
		if s := tr.Strength(); s != 0 {
			t.Errorf("strength of %+v = %f, want 0", tr, s)
		}
	}
}

func TestStrength_EqualComponentsNearMax(t *testing.T) {
	for _, v := range []float64{0.3, 1, 2.5, -1} {
		s := Strength(v, v, v)
		if s < 0.999 || s > 1 {
			t.Errorf("Strength(%v,%v,%v) = %f, want ~1", v, v, v, s)
		}
		b := Balance(v, v, v)
		if b <= 0.9 {
			t.Errorf("Balance(%v,%v,%v) = %f, want > 0.9", v, v, v, b)
		}
	}
}

func TestStrength_ImbalancedIsLower(t *testing.T) {
	balanced := Strength(1, 1, 1)
	skewed := Strength(0.5, 0.5, 0.1)
	if skewed >= balanced {
		t.Errorf("expected skewed %f < balanced %f", skewed, balanced)
	}
	if skewed <= 0 || skewed > 1 {
		t.Errorf("strength out of range: %f", skewed)
	}
}

func TestBalance_Range(t *testing.T) {
	if b := Balance(0, 1, 1); b != 0 {
		t.Errorf("void balance = %f, want 0", b)
	}
	b := Balance(10, 0.1, 0.1)
	if b <= 0 || b >= 0.9 {
		t.Errorf("extreme imbalance balance = %f, want in (0, 0.9)", b)
	}
}

func TestEntropy(t *testing.T) {
	if e := Entropy(0, 1, 1); e != 1 {
		t.Errorf("void entropy = %f, want 1", e)
	}
	if e := Entropy(1, 1, 1); math.Abs(e-1) > 1e-9 {
		t.Errorf("uniform entropy = %f, want 1", e)
	}
	if e := Entropy(10, 0.01, 0.01); e >= 0.1 {
		t.Errorf("concentrated entropy = %f, want < 0.1", e)
	}
}

// #endregion coherence-tests

// #region history-tests
func TestStability(t *testing.T) {
	if s := Stability(nil, 5); s != 1 {
		t.Errorf("empty stability = %f, want 1", s)
	}
	flat := []Triad{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}}
	if s := Stability(flat, 5); math.Abs(s-1) > 1e-9 {
		t.Errorf("flat stability = %f, want 1", s)
	}
	jumpy := []Triad{{1, 1, 1}, {0, 1, 1}, {1, 1, 1}, {0, 1, 1}}
	if s := Stability(jumpy, 5); s >= 0.5 {
		t.Errorf("jumpy stability = %f, want < 0.5", s)
	}
}

func TestDecayDetected(t *testing.T) {
	decaying := []Triad{{1, 1, 1}, {1, 1, 0.5}, {1, 1, 0.2}, {1, 1, 0.05}}
	if !DecayDetected(decaying, 0.1) {
		t.Error("expected decay for falling strength")
	}
	rising := []Triad{{1, 1, 0.05}, {1, 1, 0.2}, {1, 1, 0.5}, {1, 1, 1}}
	if DecayDetected(rising, 0.1) {
		t.Error("did not expect decay for rising strength")
	}
	if DecayDetected(decaying[:2], 0.1) {
		t.Error("two points must not be enough to detect decay")
	}
}

func TestSlope(t *testing.T) {
	slope, ok := Slope([]float64{0, 1, 2, 3})
	if !ok || math.Abs(slope-1) > 1e-12 {
		t.Errorf("Slope = %f,%v want 1,true", slope, ok)
	}
	if _, ok := Slope([]float64{1}); ok {
		t.Error("single point slope should not be ok")
	}
}

// #endregion history-tests

// #region resonance-tests
func TestResonanceCoefficient(t *testing.T) {
	a := Triad{1, 1, 1}
	if r := ResonanceCoefficient(a, Triad{2, 2, 2}); math.Abs(r-1) > 1e-12 {
		t.Errorf("parallel resonance = %f, want 1", r)
	}
	if r := ResonanceCoefficient(a, Triad{-1, -1, -1}); math.Abs(r+1) > 1e-12 {
		t.Errorf("opposed resonance = %f, want -1", r)
	}
	if r := ResonanceCoefficient(a, Triad{0, 1, 1}); r != 0 {
		t.Errorf("void resonance = %f, want 0", r)
	}
	x, y := Triad{1, 2, 3}, Triad{3, -1, 0.5}
	if ResonanceCoefficient(x, y) != ResonanceCoefficient(y, x) {
		t.Error("resonance must be symmetric")
	}
}

// #endregion resonance-tests

// #region diagnose-tests
func TestDiagnose(t *testing.T) {
	d := Diagnose(Triad{1, 1, 1}, nil)
	if d.Stability != 1 || d.DecayDetected {
		t.Errorf("no-history diagnostic: %+v", d)
	}
	want := d.Strength*0.4 + d.Balance*0.3 + (1-d.Entropy)*0.2 + 0.1
	if math.Abs(d.HealthScore-want) > 1e-12 {
		t.Errorf("health = %f, want %f", d.HealthScore, want)
	}

	void := Diagnose(Triad{0, 1, 1}, nil)
	if void.Strength != 0 || void.Balance != 0 || void.Entropy != 1 {
		t.Errorf("void diagnostic: %+v", void)
	}
}

func TestTriadLerp(t *testing.T) {
	got := Triad{0, 0, 0}.Lerp(Triad{2, 4, 6}, 0.5)
	if got != (Triad{1, 2, 3}) {
		t.Errorf("Lerp = %+v", got)
	}
}

// #endregion diagnose-tests
