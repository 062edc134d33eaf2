package resonance

import "fmt"

// #region phase-gate
// PhaseTransitionCheck reports whether the field has crossed into collective
// alignment at the given critical mean resonance.
func (f *Field) PhaseTransitionCheck(criticalResonance float64) bool {
	return f.EvaluatePhase(criticalResonance).Transition
}

// EvaluatePhase runs every phase condition and explains the first failure.
// Conditions, in order: at least two coherent entities, a coherent share of
// at least MinCoherentRatio, a mean positive resonance of at least
// criticalResonance, and at least one cluster at ClusterThreshold.
func (f *Field) EvaluatePhase(criticalResonance float64) PhaseDecision {
	return f.snapshot().phase(criticalResonance)
}

func (s snapshot) phase(criticalResonance float64) PhaseDecision {
	var checks []PhaseCheck

	total := len(s.all)
	coherent := len(s.coherent)
	checks = append(checks, PhaseCheck{
		Name:      "coherent_count",
		Value:     float64(coherent),
		Threshold: 2,
		Pass:      total > 0 && coherent >= 2,
	})

	ratio := 0.0
	if total > 0 {
		ratio = float64(coherent) / float64(total)
	}
	checks = append(checks, PhaseCheck{
		Name:      "coherent_ratio",
		Value:     ratio,
		Threshold: s.config.MinCoherentRatio,
		Pass:      total > 0 && ratio >= s.config.MinCoherentRatio,
	})

	avg, found := s.meanPositiveResonance()
	checks = append(checks, PhaseCheck{
		Name:      "mean_positive_resonance",
		Value:     avg,
		Threshold: criticalResonance,
		Pass:      found && avg >= criticalResonance,
	})

	clusters := len(s.clusters(s.config.ClusterThreshold))
	checks = append(checks, PhaseCheck{
		Name:      "clusters",
		Value:     float64(clusters),
		Threshold: 1,
		Pass:      clusters > 0,
	})

	for _, c := range checks {
		if !c.Pass {
			return PhaseDecision{
				Transition: false,
				Reason:     fmt.Sprintf("%s %.4f below %.4f", c.Name, c.Value, c.Threshold),
				Checks:     checks,
			}
		}
	}
	return PhaseDecision{
		Transition: true,
		Reason:     fmt.Sprintf("collective alignment: mean resonance %.4f, %d cluster(s)", avg, clusters),
		Checks:     checks,
	}
}

// #endregion phase-gate
