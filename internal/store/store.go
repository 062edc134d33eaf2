// Package store persists timelines, critical events and cascade runs in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/triad-field/internal/evolution"
	"github.com/danielpatrickdp/triad-field/internal/logging"
	"github.com/danielpatrickdp/triad-field/internal/metrics"
	"github.com/danielpatrickdp/triad-field/internal/resonance"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS timelines (
	id           TEXT PRIMARY KEY,
	label        TEXT NOT NULL,
	max_history  INTEGER NOT NULL,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS states (
	timeline_id  TEXT NOT NULL,
	seq          INTEGER NOT NULL,
	pattern      REAL NOT NULL,
	intent       REAL NOT NULL,
	presence     REAL NOT NULL,
	recorded_at  TEXT NOT NULL,
	PRIMARY KEY (timeline_id, seq),
	FOREIGN KEY (timeline_id) REFERENCES timelines(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS critical_events (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	timeline_id  TEXT NOT NULL,
	seq          INTEGER NOT NULL,
	kind         TEXT NOT NULL,
	description  TEXT NOT NULL,
	pattern      REAL NOT NULL,
	intent       REAL NOT NULL,
	presence     REAL NOT NULL,
	occurred_at  TEXT NOT NULL,
	FOREIGN KEY (timeline_id) REFERENCES timelines(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS cascade_runs (
	id           TEXT PRIMARY KEY,
	steps        INTEGER NOT NULL,
	coupling     REAL NOT NULL,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS cascade_steps (
	run_id       TEXT NOT NULL,
	position     INTEGER NOT NULL,
	step         INTEGER NOT NULL,
	report_json  TEXT NOT NULL,
	PRIMARY KEY (run_id, position),
	FOREIGN KEY (run_id) REFERENCES cascade_runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_events_timeline ON critical_events(timeline_id);
`

// #endregion schema

// timeFormat is fixed width so stored timestamps sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// #region store-struct
// Store manages triad timelines and cascade runs in SQLite.
type Store struct {
	db  *sqlx.DB
	log *slog.Logger
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return NewStoreWithDB(db), nil
}

// NewStoreWithDB wraps an already migrated connection.
func NewStoreWithDB(db *sqlx.DB) *Store {
	return &Store{db: db, log: logging.New("store")}
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion constructor

// #region timelines
// CreateTimeline registers a new, empty timeline.
func (s *Store) CreateTimeline(label string, maxHistory int) (Timeline, error) {
	now := time.Now().UTC()
	row := timelineRow{
		ID:         uuid.New().String(),
		Label:      label,
		MaxHistory: maxHistory,
		CreatedAt:  now.Format(timeFormat),
	}
	_, err := s.db.NamedExec(
		`INSERT INTO timelines (id, label, max_history, created_at)
		 VALUES (:id, :label, :max_history, :created_at)`, row)
	if err != nil {
		return Timeline{}, fmt.Errorf("create timeline: %w", err)
	}
	return row.timeline(), nil
}

// GetTimeline returns one timeline header.
func (s *Store) GetTimeline(id string) (Timeline, error) {
	var row timelineRow
	err := s.db.Get(&row, `SELECT id, label, max_history, created_at FROM timelines WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Timeline{}, fmt.Errorf("get timeline %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Timeline{}, fmt.Errorf("get timeline %s: %w", id, err)
	}
	return row.timeline(), nil
}

// ListTimelines returns every timeline, newest first.
func (s *Store) ListTimelines() ([]Timeline, error) {
	var rows []timelineRow
	if err := s.db.Select(&rows,
		`SELECT id, label, max_history, created_at FROM timelines ORDER BY created_at DESC, id`); err != nil {
		return nil, fmt.Errorf("list timelines: %w", err)
	}
	out := make([]Timeline, len(rows))
	for i, r := range rows {
		out[i] = r.timeline()
	}
	return out, nil
}

func (r timelineRow) timeline() Timeline {
	created, _ := time.Parse(timeFormat, r.CreatedAt)
	return Timeline{ID: r.ID, Label: r.Label, MaxHistory: r.MaxHistory, CreatedAt: created}
}

// #endregion timelines

// #region states
// AppendState stores st as the next state of the timeline and returns its
// sequence number (0 for the first state).
func (s *Store) AppendState(timelineID string, st evolution.State) (int, error) {
	seqs, err := s.AppendStates(timelineID, []evolution.State{st})
	if err != nil {
		return 0, err
	}
	return seqs[0], nil
}

// AppendStates stores a batch of states in one transaction, in order.
func (s *Store) AppendStates(timelineID string, states []evolution.State) ([]int, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := requireTimeline(tx, timelineID); err != nil {
		return nil, err
	}

	var next int
	if err := tx.Get(&next,
		`SELECT COALESCE(MAX(seq), -1) + 1 FROM states WHERE timeline_id = ?`, timelineID); err != nil {
		return nil, fmt.Errorf("next seq: %w", err)
	}

	stmt, err := tx.Preparex(
		`INSERT INTO states (timeline_id, seq, pattern, intent, presence, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	seqs := make([]int, len(states))
	for i, st := range states {
		ts := st.Timestamp
		if ts.IsZero() {
			ts = time.Now().UTC()
		}
		seq := next + i
		if _, err := stmt.Exec(timelineID, seq, st.Pattern, st.Intent, st.Presence,
			ts.UTC().Format(timeFormat)); err != nil {
			return nil, fmt.Errorf("insert state %d: %w", seq, err)
		}
		seqs[i] = seq
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return seqs, nil
}

// LoadStates returns every stored state of the timeline ordered by sequence.
func (s *Store) LoadStates(timelineID string) ([]evolution.State, error) {
	if _, err := s.GetTimeline(timelineID); err != nil {
		return nil, err
	}
	var rows []stateRow
	if err := s.db.Select(&rows,
		`SELECT timeline_id, seq, pattern, intent, presence, recorded_at
		 FROM states WHERE timeline_id = ? ORDER BY seq`, timelineID); err != nil {
		return nil, fmt.Errorf("load states: %w", err)
	}
	out := make([]evolution.State, len(rows))
	for i, r := range rows {
		ts, _ := time.Parse(timeFormat, r.RecordedAt)
		out[i] = evolution.State{
			Triad:     metrics.Triad{Pattern: r.Pattern, Intent: r.Intent, Presence: r.Presence},
			Timestamp: ts,
		}
	}
	return out, nil
}

// RestoreTracker rebuilds a tracker by replaying the stored states of the
// timeline. The timeline's own history bound overrides cfg.MaxHistory. The
// returned tracker has no event sink attached.
func (s *Store) RestoreTracker(timelineID string, cfg evolution.TrackerConfig) (*evolution.Tracker, error) {
	tl, err := s.GetTimeline(timelineID)
	if err != nil {
		return nil, err
	}
	states, err := s.LoadStates(timelineID)
	if err != nil {
		return nil, err
	}
	cfg.MaxHistory = tl.MaxHistory
	tr := evolution.NewTracker(cfg)
	for _, st := range states {
		tr.RecordTriad(st.Triad, st.Timestamp)
	}
	return tr, nil
}

func requireTimeline(q sqlx.Queryer, id string) error {
	var n int
	if err := sqlx.Get(q, &n, `SELECT COUNT(*) FROM timelines WHERE id = ?`, id); err != nil {
		return fmt.Errorf("check timeline: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("timeline %s: %w", id, ErrNotFound)
	}
	return nil
}

// #endregion states

// #region events
// LogEvent appends a critical event to the timeline's event log.
func (s *Store) LogEvent(timelineID string, ev evolution.CriticalEvent) error {
	if err := requireTimeline(s.db, timelineID); err != nil {
		return err
	}
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	row := eventRow{
		TimelineID:  timelineID,
		Seq:         ev.Seq,
		Kind:        string(ev.Kind),
		Description: ev.Description,
		Pattern:     ev.State.Pattern,
		Intent:      ev.State.Intent,
		Presence:    ev.State.Presence,
		OccurredAt:  ts.UTC().Format(timeFormat),
	}
	_, err := s.db.NamedExec(
		`INSERT INTO critical_events (timeline_id, seq, kind, description, pattern, intent, presence, occurred_at)
		 VALUES (:timeline_id, :seq, :kind, :description, :pattern, :intent, :presence, :occurred_at)`, row)
	if err != nil {
		return fmt.Errorf("log event: %w", err)
	}
	return nil
}

// ListEvents returns the timeline's critical events in the order they were logged.
func (s *Store) ListEvents(timelineID string) ([]evolution.CriticalEvent, error) {
	if err := requireTimeline(s.db, timelineID); err != nil {
		return nil, err
	}
	var rows []eventRow
	if err := s.db.Select(&rows,
		`SELECT timeline_id, seq, kind, description, pattern, intent, presence, occurred_at
		 FROM critical_events WHERE timeline_id = ? ORDER BY id`, timelineID); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	out := make([]evolution.CriticalEvent, len(rows))
	for i, r := range rows {
		ts, _ := time.Parse(timeFormat, r.OccurredAt)
		out[i] = evolution.CriticalEvent{
			Seq:         r.Seq,
			Kind:        evolution.EventKind(r.Kind),
			Timestamp:   ts,
			Description: r.Description,
			State:       metrics.Triad{Pattern: r.Pattern, Intent: r.Intent, Presence: r.Presence},
		}
	}
	return out, nil
}

// EventLogger returns a tracker sink that persists every event to the
// timeline. Write failures are logged, not returned, since sinks cannot fail.
func (s *Store) EventLogger(timelineID string) evolution.EventSink {
	return evolution.EventSinkFunc(func(ev evolution.CriticalEvent) {
		if err := s.LogEvent(timelineID, ev); err != nil {
			s.log.Error("persist critical event failed",
				"timeline", timelineID, "seq", ev.Seq, "kind", ev.Kind, "error", err)
		}
	})
}

// #endregion events

// #region cascades
// SaveCascade stores a cascade run and every report it produced. The run's
// step count is the label of the last report.
func (s *Store) SaveCascade(steps []resonance.CascadeStep, coupling float64) (CascadeRun, error) {
	run := cascadeRunRow{
		ID:        uuid.New().String(),
		Coupling:  coupling,
		CreatedAt: time.Now().UTC().Format(timeFormat),
	}
	if len(steps) > 0 {
		run.Steps = steps[len(steps)-1].Step
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return CascadeRun{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExec(
		`INSERT INTO cascade_runs (id, steps, coupling, created_at)
		 VALUES (:id, :steps, :coupling, :created_at)`, run); err != nil {
		return CascadeRun{}, fmt.Errorf("insert run: %w", err)
	}

	for i, st := range steps {
		b, err := json.Marshal(st.Report)
		if err != nil {
			return CascadeRun{}, fmt.Errorf("marshal report %d: %w", i, err)
		}
		if _, err := tx.NamedExec(
			`INSERT INTO cascade_steps (run_id, position, step, report_json)
			 VALUES (:run_id, :position, :step, :report_json)`,
			cascadeStepRow{RunID: run.ID, Position: i, Step: st.Step, ReportJSON: string(b)}); err != nil {
			return CascadeRun{}, fmt.Errorf("insert step %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return CascadeRun{}, fmt.Errorf("commit: %w", err)
	}
	s.log.Debug("cascade saved", "run", run.ID, "reports", len(steps))
	return run.cascadeRun(), nil
}

// LoadCascade returns a run header and its reports in step order.
func (s *Store) LoadCascade(runID string) (CascadeRun, []resonance.CascadeStep, error) {
	var run cascadeRunRow
	err := s.db.Get(&run, `SELECT id, steps, coupling, created_at FROM cascade_runs WHERE id = ?`, runID)
	if errors.Is(err, sql.ErrNoRows) {
		return CascadeRun{}, nil, fmt.Errorf("get cascade %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return CascadeRun{}, nil, fmt.Errorf("get cascade %s: %w", runID, err)
	}

	var rows []cascadeStepRow
	if err := s.db.Select(&rows,
		`SELECT run_id, position, step, report_json FROM cascade_steps
		 WHERE run_id = ? ORDER BY position`, runID); err != nil {
		return CascadeRun{}, nil, fmt.Errorf("load cascade steps: %w", err)
	}
	steps := make([]resonance.CascadeStep, len(rows))
	for i, r := range rows {
		steps[i].Step = r.Step
		if err := json.Unmarshal([]byte(r.ReportJSON), &steps[i].Report); err != nil {
			return CascadeRun{}, nil, fmt.Errorf("unmarshal report %d: %w", r.Position, err)
		}
	}
	return run.cascadeRun(), steps, nil
}

// ListCascades returns every cascade run header, newest first.
func (s *Store) ListCascades() ([]CascadeRun, error) {
	var rows []cascadeRunRow
	if err := s.db.Select(&rows,
		`SELECT id, steps, coupling, created_at FROM cascade_runs ORDER BY created_at DESC, id`); err != nil {
		return nil, fmt.Errorf("list cascades: %w", err)
	}
	out := make([]CascadeRun, len(rows))
	for i, r := range rows {
		out[i] = r.cascadeRun()
	}
	return out, nil
}

func (r cascadeRunRow) cascadeRun() CascadeRun {
	created, _ := time.Parse(timeFormat, r.CreatedAt)
	return CascadeRun{ID: r.ID, Steps: r.Steps, Coupling: r.Coupling, CreatedAt: created}
}

// #endregion cascades
