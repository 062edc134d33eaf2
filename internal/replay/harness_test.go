package replay

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danielpatrickdp/triad-field/internal/evolution"
	"github.com/danielpatrickdp/triad-field/internal/metrics"
	"github.com/danielpatrickdp/triad-field/internal/scenario"
)

func points(ts ...metrics.Triad) []metrics.Triad { return ts }

// #region replay-tests
func TestReplay_EmergencePath(t *testing.T) {
	results, summary := Replay(points(
		metrics.Triad{},
		metrics.Triad{Pattern: 1, Intent: 1, Presence: 1},
		metrics.Triad{Pattern: 1.2, Intent: 1.2, Presence: 1.2},
	), evolution.DefaultTrackerConfig())

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Transition != nil {
		t.Errorf("first point should have no transition")
	}
	if results[1].Transition == nil || results[1].Transition.Type != evolution.Emergence {
		t.Errorf("point 1 transition = %+v", results[1].Transition)
	}
	if len(results[1].Events) != 1 || results[1].Events[0].Kind != evolution.EventEmergence {
		t.Errorf("point 1 events = %+v", results[1].Events)
	}
	if !results[2].State.Timestamp.Equal(Epoch.Add(2e9)) {
		t.Errorf("timestamp = %v", results[2].State.Timestamp)
	}

	if summary.States != 3 || summary.Transitions != 2 || summary.Events != 1 {
		t.Errorf("summary counts = %+v", summary)
	}
	if summary.Report.TotalStates != 3 {
		t.Errorf("report total states = %d", summary.Report.TotalStates)
	}
}

func TestReplay_Empty(t *testing.T) {
	results, summary := Replay(nil, evolution.DefaultTrackerConfig())
	if len(results) != 0 || summary.States != 0 || summary.Forecast.Sufficient {
		t.Errorf("empty replay = %+v %+v", results, summary)
	}
}

func TestReplay_Deterministic(t *testing.T) {
	pts := points(
		metrics.Triad{Pattern: 1, Intent: 1, Presence: 1},
		metrics.Triad{Pattern: 0, Intent: 1, Presence: 1},
		metrics.Triad{Pattern: 2, Intent: 0.5, Presence: 1},
		metrics.Triad{Pattern: 2, Intent: 0.6, Presence: 1},
	)
	r1, s1 := Replay(pts, evolution.DefaultTrackerConfig())
	r2, s2 := Replay(pts, evolution.DefaultTrackerConfig())
	if diff := cmp.Diff(r1, r2); diff != "" {
		t.Errorf("results differ (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(s1, s2); diff != "" {
		t.Errorf("summaries differ (-first +second):\n%s", diff)
	}
}

// #endregion replay-tests

// #region fixture-tests
func TestFixture_EmergenceCycle(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "emergence_cycle.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	results, _ := Replay(f.Points, f.Config.Apply(evolution.DefaultTrackerConfig()))
	for _, m := range Verify(results, f.ExpectedResults) {
		t.Error(m)
	}
}

func TestLoadFixture_NotFound(t *testing.T) {
	if _, err := LoadFixture(filepath.Join("testdata", "missing.json")); err == nil {
		t.Fatal("expected error for missing fixture")
	}
}

func TestVerify_ReportsMismatches(t *testing.T) {
	results, _ := Replay(points(metrics.Triad{}, metrics.Triad{Pattern: 1, Intent: 1, Presence: 1}),
		evolution.DefaultTrackerConfig())
	got := Verify(results, []FixtureExpectedResult{
		{Index: 1, Transition: evolution.Collapse},
		{Index: 7},
	})
	if len(got) != 3 {
		t.Errorf("expected transition, events and range mismatches, got %v", got)
	}
}

func TestFixtureConfig_Apply(t *testing.T) {
	base := evolution.DefaultTrackerConfig()
	got := FixtureConfig{MaxHistory: 3, PhaseJumpMagnitude: 0.5}.Apply(base)
	want := base
	want.MaxHistory = 3
	want.PhaseJumpMagnitude = 0.5
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
}

// #endregion fixture-tests

// #region replay-all-tests
func TestReplayAll(t *testing.T) {
	var fixtures []*Fixture
	for _, name := range scenario.ListBuiltin() {
		s, err := scenario.LoadBuiltin(name)
		if err != nil {
			t.Fatalf("LoadBuiltin: %v", err)
		}
		fixtures = append(fixtures, FromScenario(s))
	}
	fromFile, err := LoadFixture(filepath.Join("testdata", "emergence_cycle.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	fixtures = append(fixtures, fromFile)

	outcomes, err := ReplayAll(context.Background(), fixtures, evolution.DefaultTrackerConfig())
	if err != nil {
		t.Fatalf("ReplayAll: %v", err)
	}
	if len(outcomes) != len(fixtures) {
		t.Fatalf("expected %d outcomes, got %d", len(fixtures), len(outcomes))
	}
	for i, o := range outcomes {
		if o.Name != fixtures[i].Name(i) {
			t.Errorf("outcome %d name = %s, want %s", i, o.Name, fixtures[i].Name(i))
		}
		_, want := Replay(fixtures[i].Points, fixtures[i].Config.Apply(evolution.DefaultTrackerConfig()))
		if diff := cmp.Diff(want, o.Summary); diff != "" {
			t.Errorf("%s summary differs from sequential replay (-want +got):\n%s", o.Name, diff)
		}
		if len(o.Mismatches) != 0 {
			t.Errorf("%s mismatches: %v", o.Name, o.Mismatches)
		}
	}
}

func TestReplayAll_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ReplayAll(ctx, []*Fixture{{Points: points(metrics.Triad{})}}, evolution.DefaultTrackerConfig())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// #endregion replay-all-tests
