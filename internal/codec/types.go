package codec

import "github.com/danielpatrickdp/triad-field/internal/resonance"

// #region messages
// Request and response bodies. On the wire each travels as a
// google.protobuf.Struct holding the JSON form below.

// UpsertRequest adds or replaces entities by id.
type UpsertRequest struct {
	Entities []resonance.Entity `json:"entities"`
}

// UpsertResponse reports the population size after the upsert.
type UpsertResponse struct {
	Total int `json:"total"`
}

// RemoveRequest names the entity to drop.
type RemoveRequest struct {
	ID string `json:"id"`
}

// RemoveResponse reports the population size after the removal.
type RemoveResponse struct {
	Total int `json:"total"`
}

// ReportRequest optionally overrides the critical resonance of the phase gate.
type ReportRequest struct {
	CriticalResonance float64 `json:"critical_resonance,omitempty"`
}

// ReportResponse carries the field report and the phase gate's reasoning.
type ReportResponse struct {
	Report resonance.FieldReport   `json:"report"`
	Phase  resonance.PhaseDecision `json:"phase"`
}

// CascadeRequest runs a cascade on the served field. Persist stores the run
// when the server has a store.
type CascadeRequest struct {
	Steps    int     `json:"steps"`
	Coupling float64 `json:"coupling"`
	Persist  bool    `json:"persist,omitempty"`
}

// CascadeResponse holds every report of the run and its summary.
type CascadeResponse struct {
	RunID   string                   `json:"run_id,omitempty"`
	Steps   []resonance.CascadeStep  `json:"steps"`
	Summary resonance.CascadeSummary `json:"summary"`
}

// #endregion messages
