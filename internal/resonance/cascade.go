package resonance

import (
	"context"

	"github.com/danielpatrickdp/triad-field/internal/metrics"
)

// #region cascade
// Cascade runs steps rounds of coupled updates. Each round, every coherent
// entity is pulled toward the other coherent entities it resonates with
// positively, weighted by resonance and scaled by coupling. All pulls for a
// round are computed from one snapshot and applied together.
//
// The result holds steps+2 reports: the initial report (step 0), one after
// every round (steps 1..steps), and a final report labelled steps. ctx is
// checked between rounds; on cancellation the reports so far are returned
// with ctx.Err().
func (f *Field) Cascade(ctx context.Context, steps int, coupling float64) ([]CascadeStep, error) {
	out := make([]CascadeStep, 0, steps+2)
	out = append(out, CascadeStep{Step: 0, Report: f.Report()})

	for step := 1; step <= steps; step++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		f.applyStaged(f.stageCascade(coupling))
		out = append(out, CascadeStep{Step: step, Report: f.Report()})
	}

	out = append(out, CascadeStep{Step: steps, Report: f.Report()})
	return out, nil
}

// stageCascade computes the next state of every entity that moves this round
// without touching the field.
func (f *Field) stageCascade(coupling float64) map[string]metrics.Triad {
	s := f.snapshot()
	staged := make(map[string]metrics.Triad, len(s.coherent))

	for _, e := range s.coherent {
		var disp metrics.Triad
		var total float64
		for _, o := range s.coherent {
			if o.ID == e.ID {
				continue
			}
			r := s.matrix.Get(e.ID, o.ID)
			if r <= 0 {
				continue
			}
			d := o.Sub(e.Triad)
			disp.Pattern += r * d.Pattern
			disp.Intent += r * d.Intent
			disp.Presence += r * d.Presence
			total += r
		}
		if total > 0 {
			staged[e.ID] = metrics.Triad{
				Pattern:  e.Pattern + disp.Pattern*coupling,
				Intent:   e.Intent + disp.Intent*coupling,
				Presence: e.Presence + disp.Presence*coupling,
			}
		}
	}
	return staged
}

func (f *Field) applyStaged(staged map[string]metrics.Triad) {
	for id, t := range staged {
		f.Update(id, t.Pattern, t.Intent, t.Presence)
	}
}

// #endregion cascade

// #region summary
// Summarize compares the first and last reports of a cascade.
func Summarize(steps []CascadeStep) CascadeSummary {
	if len(steps) == 0 {
		return CascadeSummary{}
	}
	first, last := steps[0].Report, steps[len(steps)-1].Report
	s := CascadeSummary{
		Steps:            steps[len(steps)-1].Step,
		InitialCoherence: first.FieldCoherence,
		FinalCoherence:   last.FieldCoherence,
		InitialEmergence: first.EmergencePotential,
		FinalEmergence:   last.EmergencePotential,
	}
	for _, st := range steps {
		if st.Report.PhaseTransition {
			s.ReachedPhaseTransition = true
			break
		}
	}
	return s
}

// #endregion summary
