// Package replay runs recorded triad timelines through fresh trackers.
package replay

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/triad-field/internal/evolution"
	"github.com/danielpatrickdp/triad-field/internal/logging"
	"github.com/danielpatrickdp/triad-field/internal/metrics"
)

// Epoch stamps the first replayed point; later points follow one second apart
// so replays are reproducible.
var Epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// #region types
// StepResult is the outcome of recording one point.
type StepResult struct {
	Index      int                       `json:"index"`
	State      evolution.State           `json:"state"`
	Transition *evolution.Transition     `json:"transition,omitempty"` // nil for the first point
	Events     []evolution.CriticalEvent `json:"events,omitempty"`
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	States      int                              `json:"states"`
	Transitions int                              `json:"transitions"`
	Events      int                              `json:"events"`
	ByType      map[evolution.TransitionType]int `json:"by_type"`
	Report      evolution.Report                 `json:"report"`
	Forecast    evolution.Forecast               `json:"forecast"`
}

// Outcome is the result of replaying one fixture.
type Outcome struct {
	Name       string       `json:"name"`
	Steps      []StepResult `json:"steps"`
	Summary    Summary      `json:"summary"`
	Mismatches []string     `json:"mismatches,omitempty"`
}

// #endregion types

// #region replay
// Replay records every point through a new tracker built from cfg.
// Operates entirely in-memory.
func Replay(points []metrics.Triad, cfg evolution.TrackerConfig) ([]StepResult, Summary) {
	tr := evolution.NewTracker(cfg)
	var pending []evolution.CriticalEvent
	tr.SetEventSink(evolution.EventSinkFunc(func(ev evolution.CriticalEvent) {
		pending = append(pending, ev)
	}))

	results := make([]StepResult, 0, len(points))
	for i, p := range points {
		st := tr.RecordTriad(p, Epoch.Add(time.Duration(i)*time.Second))
		r := StepResult{Index: i, State: st, Events: pending}
		if i > 0 {
			if last, ok := tr.LastTransition(); ok {
				r.Transition = &last
			}
		}
		pending = nil
		results = append(results, r)
	}
	return results, summarize(tr, results)
}

func summarize(tr *evolution.Tracker, results []StepResult) Summary {
	s := Summary{
		States:   len(results),
		ByType:   make(map[evolution.TransitionType]int),
		Report:   tr.Report(),
		Forecast: tr.Forecast(5),
	}
	for _, r := range results {
		if r.Transition != nil {
			s.Transitions++
			s.ByType[r.Transition.Type]++
		}
		s.Events += len(r.Events)
	}
	return s
}

// #endregion replay

// #region replay-all
// ReplayAll replays each fixture concurrently, one private tracker per
// fixture. Results keep the order of fixtures. The first fixture that fails
// to start cancels the rest.
func ReplayAll(ctx context.Context, fixtures []*Fixture, cfg evolution.TrackerConfig) ([]Outcome, error) {
	log := logging.New("replay")
	out := make([]Outcome, len(fixtures))
	g, ctx := errgroup.WithContext(ctx)

	for i, f := range fixtures {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("replay %s: %w", f.Name(i), err)
			}
			steps, summary := Replay(f.Points, f.Config.Apply(cfg))
			out[i] = Outcome{
				Name:       f.Name(i),
				Steps:      steps,
				Summary:    summary,
				Mismatches: Verify(steps, f.ExpectedResults),
			}
			log.Debug("fixture replayed", "fixture", out[i].Name,
				"states", summary.States, "events", summary.Events, "mismatches", len(out[i].Mismatches))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// #endregion replay-all
