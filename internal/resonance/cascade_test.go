package resonance

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danielpatrickdp/triad-field/internal/metrics"
)

// #region cascade-tests
func TestCascade_ReportCount(t *testing.T) {
	f := newTestField(t, ent("a", 1, 1, 1), ent("b", 1, 2, 1.5))
	steps, err := f.Cascade(context.Background(), 4, 0.1)
	if err != nil {
		t.Fatalf("Cascade: %v", err)
	}
	if len(steps) != 6 {
		t.Fatalf("expected steps+2 = 6 reports, got %d", len(steps))
	}
	wantLabels := []int{0, 1, 2, 3, 4, 4}
	var got []int
	for _, s := range steps {
		got = append(got, s.Step)
	}
	if diff := cmp.Diff(wantLabels, got); diff != "" {
		t.Errorf("step labels (-want +got):\n%s", diff)
	}
}

func TestCascade_PairConverges(t *testing.T) {
	f := newTestField(t, ent("a", 1, 1, 1), ent("b", 1, 2, 1.5))
	a0, _ := f.Get("a")
	b0, _ := f.Get("b")
	before := a0.Distance(b0.Triad)

	if _, err := f.Cascade(context.Background(), 1, 0.1); err != nil {
		t.Fatalf("Cascade: %v", err)
	}
	a1, _ := f.Get("a")
	b1, _ := f.Get("b")
	after := a1.Distance(b1.Triad)
	if after >= before {
		t.Errorf("distance did not shrink: before %f after %f", before, after)
	}
}

func TestCascade_ZeroCouplingIsStable(t *testing.T) {
	f := newTestField(t, ent("a", 1, 1, 1), ent("b", 1, 2, 1.5), ent("c", 0.3, 1.4, 2), ent("v", 0, 1, 1))
	steps, err := f.Cascade(context.Background(), 3, 0)
	if err != nil {
		t.Fatalf("Cascade: %v", err)
	}
	for _, s := range steps[1:] {
		if diff := cmp.Diff(steps[0].Report, s.Report); diff != "" {
			t.Errorf("report at step %d changed (-initial +got):\n%s", s.Step, diff)
		}
	}
}

func TestCascade_VoidEntityUntouched(t *testing.T) {
	f := newTestField(t, ent("a", 1, 1, 1), ent("b", 1, 2, 1.5), ent("v", 0, 2, 2))
	if _, err := f.Cascade(context.Background(), 5, 0.2); err != nil {
		t.Fatalf("Cascade: %v", err)
	}
	v, _ := f.Get("v")
	if v.Triad != (metrics.Triad{Pattern: 0, Intent: 2, Presence: 2}) {
		t.Errorf("void entity moved to %+v", v.Triad)
	}
}

func TestCascade_UpdatesFromOneSnapshot(t *testing.T) {
	initial := []Entity{ent("a", 1, 1, 1), ent("b", 1, 2, 1.5), ent("c", 2, 1, 0.5)}
	f := newTestField(t, initial...)
	const coupling = 0.1

	want := make(map[string]metrics.Triad)
	for _, e := range initial {
		next := e.Triad
		for _, o := range initial {
			if o.ID == e.ID {
				continue
			}
			r := metrics.ResonanceCoefficient(e.Triad, o.Triad)
			if r <= 0 {
				continue
			}
			d := o.Sub(e.Triad)
			next.Pattern += r * d.Pattern * coupling
			next.Intent += r * d.Intent * coupling
			next.Presence += r * d.Presence * coupling
		}
		want[e.ID] = next
	}

	if _, err := f.Cascade(context.Background(), 1, coupling); err != nil {
		t.Fatalf("Cascade: %v", err)
	}
	for id, w := range want {
		got, _ := f.Get(id)
		if got.Distance(w) > 1e-9 {
			t.Errorf("%s = %+v, want %+v", id, got.Triad, w)
		}
	}
}

func TestCascade_Canceled(t *testing.T) {
	f := newTestField(t, ent("a", 1, 1, 1), ent("b", 1, 2, 1.5))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	steps, err := f.Cascade(ctx, 10, 0.1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(steps) != 1 || steps[0].Step != 0 {
		t.Errorf("expected only the initial report, got %d", len(steps))
	}
}

// #endregion cascade-tests

// #region summary-tests
func TestSummarize(t *testing.T) {
	if diff := cmp.Diff(CascadeSummary{}, Summarize(nil)); diff != "" {
		t.Errorf("empty summary (-want +got):\n%s", diff)
	}

	f := newTestField(t, ent("a", 1, 1, 1), ent("b", 1, 2, 1.5), ent("c", 1.5, 1, 2))
	steps, err := f.Cascade(context.Background(), 10, 0.1)
	if err != nil {
		t.Fatalf("Cascade: %v", err)
	}
	s := Summarize(steps)
	if s.Steps != 10 {
		t.Errorf("steps = %d, want 10", s.Steps)
	}
	if s.InitialCoherence != steps[0].Report.FieldCoherence {
		t.Errorf("initial coherence = %f", s.InitialCoherence)
	}
	if s.FinalCoherence != steps[len(steps)-1].Report.FieldCoherence {
		t.Errorf("final coherence = %f", s.FinalCoherence)
	}
	if math.IsNaN(s.FinalEmergence) || s.FinalEmergence <= 0 {
		t.Errorf("final emergence = %f", s.FinalEmergence)
	}
	if !s.ReachedPhaseTransition {
		t.Error("three closely aligned entities should reach a phase transition")
	}
}

// #endregion summary-tests
