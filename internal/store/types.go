package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a timeline or cascade run id is unknown.
var ErrNotFound = errors.New("not found")

// #region timeline
// Timeline is a persisted evolution history.
type Timeline struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	MaxHistory int       `json:"max_history"`
	CreatedAt  time.Time `json:"created_at"`
}

type timelineRow struct {
	ID         string `db:"id"`
	Label      string `db:"label"`
	MaxHistory int    `db:"max_history"`
	CreatedAt  string `db:"created_at"`
}

// #endregion timeline

// #region state-row
type stateRow struct {
	TimelineID string  `db:"timeline_id"`
	Seq        int     `db:"seq"`
	Pattern    float64 `db:"pattern"`
	Intent     float64 `db:"intent"`
	Presence   float64 `db:"presence"`
	RecordedAt string  `db:"recorded_at"`
}

type eventRow struct {
	TimelineID  string  `db:"timeline_id"`
	Seq         int     `db:"seq"`
	Kind        string  `db:"kind"`
	Description string  `db:"description"`
	Pattern     float64 `db:"pattern"`
	Intent      float64 `db:"intent"`
	Presence    float64 `db:"presence"`
	OccurredAt  string  `db:"occurred_at"`
}

// #endregion state-row

// #region cascade-run
// CascadeRun is the header of a persisted cascade.
type CascadeRun struct {
	ID        string    `json:"id"`
	Steps     int       `json:"steps"`
	Coupling  float64   `json:"coupling"`
	CreatedAt time.Time `json:"created_at"`
}

type cascadeRunRow struct {
	ID        string  `db:"id"`
	Steps     int     `db:"steps"`
	Coupling  float64 `db:"coupling"`
	CreatedAt string  `db:"created_at"`
}

type cascadeStepRow struct {
	RunID      string `db:"run_id"`
	Position   int    `db:"position"`
	Step       int    `db:"step"`
	ReportJSON string `db:"report_json"`
}

// #endregion cascade-run
