package resonance

import (
	"github.com/danielpatrickdp/triad-field/internal/metrics"
)

// #region field-report
// Report bundles every derived product of the field, computed from a single
// snapshot of the population.
func (f *Field) Report() FieldReport {
	return f.snapshot().report()
}

func (s snapshot) report() FieldReport {
	r := FieldReport{
		TotalEntities:      len(s.all),
		CoherentEntities:   len(s.coherent),
		FieldCoherence:     s.coherence(),
		EmergencePotential: s.emergence(),
		PhaseTransition:    s.phase(s.config.CriticalResonance).Transition,
	}

	clusters := s.clusters(s.config.ClusterThreshold)
	r.ResonanceClusters = len(clusters)
	for _, c := range clusters {
		r.ClusterSizes = append(r.ClusterSizes, len(c))
		if len(c) > r.LargestCluster {
			r.LargestCluster = len(c)
		}
	}

	if c, ok := s.collective(); ok {
		r.CollectiveState = &c
		r.CollectiveValid = c.Coherent()
		r.CollectiveStrength = metrics.Strength(c.Pattern, c.Intent, c.Presence)
	}
	if l, ok := s.leader(); ok {
		r.LeaderID = l.ID
		r.LeaderStrength = l.Strength()
	}
	return r
}

// #endregion field-report
