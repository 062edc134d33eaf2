package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/triad-field/internal/evolution"
	"github.com/danielpatrickdp/triad-field/internal/logging"
	"github.com/danielpatrickdp/triad-field/internal/replay"
	"github.com/danielpatrickdp/triad-field/internal/resonance"
	"github.com/danielpatrickdp/triad-field/internal/scenario"
)

type simulateFlags struct {
	files    []string
	builtins []string
	persist  bool
	jsonOut  bool
}

// simulation is the result of running one scenario.
type simulation struct {
	Name       string                   `json:"name"`
	Steps      int                      `json:"steps"`
	Coupling   float64                  `json:"coupling"`
	Cascade    []resonance.CascadeStep  `json:"cascade"`
	Summary    resonance.CascadeSummary `json:"summary"`
	Timeline   *replay.Summary          `json:"timeline,omitempty"`
	RunID      string                   `json:"run_id,omitempty"`
	TimelineID string                   `json:"timeline_id,omitempty"`

	points []replay.StepResult
}

// #region simulate
func newSimulateCmd(a *app) *cobra.Command {
	var fl simulateFlags
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Cascade scenario populations and replay their timelines",
		Long: "Loads each scenario, runs its population through a resonance cascade and\n" +
			"replays its timeline through a tracker. Scenarios run concurrently.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSimulate(cmd.Context(), cmd.OutOrStdout(), fl)
		},
	}
	f := cmd.Flags()
	f.StringArrayVarP(&fl.files, "file", "f", nil, "scenario file (YAML or JSON), repeatable")
	f.StringArrayVar(&fl.builtins, "builtin", nil, "builtin scenario name, repeatable: "+fmt.Sprint(scenario.ListBuiltin()))
	f.BoolVar(&fl.persist, "persist", false, "store cascades and timelines in the database")
	f.BoolVar(&fl.jsonOut, "json", false, "output as JSON instead of tables")
	return cmd
}

func (a *app) runSimulate(ctx context.Context, w io.Writer, fl simulateFlags) error {
	scenarios, err := loadScenarios(fl.files, fl.builtins)
	if err != nil {
		return err
	}
	if len(scenarios) == 0 {
		return fmt.Errorf("simulate: no scenarios given (use -f or --builtin)")
	}

	log := logging.New("simulate")
	results := make([]simulation, len(scenarios))
	g, ctx := errgroup.WithContext(ctx)
	for i, s := range scenarios {
		g.Go(func() error {
			r, err := a.simulate(ctx, s)
			if err != nil {
				return fmt.Errorf("simulate %s: %w", s.Name, err)
			}
			log.Info("scenario simulated", "scenario", s.Name, "steps", r.Steps,
				"final_coherence", r.Summary.FinalCoherence, "phase_transition", r.Summary.ReachedPhaseTransition)
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if fl.persist {
		if err := a.persist(results); err != nil {
			return err
		}
	}

	if fl.jsonOut {
		return printJSON(w, results)
	}
	for _, r := range results {
		printSimulation(w, r)
	}
	return nil
}

func (a *app) simulate(ctx context.Context, s *scenario.Scenario) (simulation, error) {
	steps, coupling := s.Steps, s.Coupling
	if steps == 0 {
		steps = a.cfg.Cascade.Steps
	}
	if coupling == 0 {
		coupling = a.cfg.Cascade.Coupling
	}

	r := simulation{Name: s.Name, Steps: steps, Coupling: coupling}
	if pop := s.Population(); len(pop) > 0 {
		field := s.BuildField(a.cfg.Field)
		cascade, err := field.Cascade(ctx, steps, coupling)
		if err != nil {
			return simulation{}, err
		}
		r.Cascade = cascade
		r.Summary = resonance.Summarize(cascade)
	}
	if len(s.Timeline) > 0 {
		points, summary := replay.Replay(s.Timeline, a.cfg.Tracker)
		r.points = points
		r.Timeline = &summary
	}
	return r, nil
}

// persist stores every result sequentially after the concurrent runs finish.
func (a *app) persist(results []simulation) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	for i := range results {
		r := &results[i]
		if len(r.Cascade) > 0 {
			run, err := st.SaveCascade(r.Cascade, r.Coupling)
			if err != nil {
				return fmt.Errorf("persist %s: %w", r.Name, err)
			}
			r.RunID = run.ID
		}
		if len(r.points) > 0 {
			tl, err := st.CreateTimeline(r.Name, a.cfg.Tracker.MaxHistory)
			if err != nil {
				return fmt.Errorf("persist %s: %w", r.Name, err)
			}
			states := make([]evolution.State, len(r.points))
			for j, p := range r.points {
				states[j] = p.State
			}
			if _, err := st.AppendStates(tl.ID, states); err != nil {
				return fmt.Errorf("persist %s: %w", r.Name, err)
			}
			sink := st.EventLogger(tl.ID)
			for _, p := range r.points {
				for _, ev := range p.Events {
					sink.OnEvent(ev)
				}
			}
			r.TimelineID = tl.ID
		}
	}
	return nil
}

func printSimulation(w io.Writer, r simulation) {
	fmt.Fprintf(w, "Scenario:  %s\n", r.Name)
	if len(r.Cascade) > 0 {
		fmt.Fprintf(w, "Cascade:   %d steps, coupling %.3f\n\n", r.Steps, r.Coupling)
		fmt.Fprintf(w, "%-5s  %8s  %9s  %9s  %8s  %-5s  %s\n",
			"Step", "Entities", "Coherence", "Emergence", "Clusters", "Phase", "Leader")
		fmt.Fprintf(w, "%-5s+-%8s+-%9s+-%9s+-%8s+-%-5s+-%s\n",
			"-----", "--------", "---------", "---------", "--------", "-----", "--------")
		for _, st := range r.Cascade {
			rep := st.Report
			fmt.Fprintf(w, "%-5d  %3d/%-4d  %9.4f  %9.4f  %8d  %-5t  %s\n",
				st.Step, rep.CoherentEntities, rep.TotalEntities, rep.FieldCoherence,
				rep.EmergencePotential, rep.ResonanceClusters, rep.PhaseTransition, rep.LeaderID)
		}
		fmt.Fprintf(w, "\nCoherence: %.4f -> %.4f   Emergence: %.4f -> %.4f   Phase transition reached: %t\n",
			r.Summary.InitialCoherence, r.Summary.FinalCoherence,
			r.Summary.InitialEmergence, r.Summary.FinalEmergence, r.Summary.ReachedPhaseTransition)
	}
	if r.Timeline != nil {
		rep := r.Timeline.Report
		fmt.Fprintf(w, "Timeline:  %d states, %d events, trend %s, strength %.4f\n",
			r.Timeline.States, r.Timeline.Events, rep.Trend, rep.CurrentStrength)
		if rep.AttractorDetected {
			fmt.Fprintf(w, "Attractor: %+v\n", *rep.AttractorState)
		}
		if rep.CycleDetected {
			fmt.Fprintf(w, "Cycle:     length %d\n", rep.CycleLength)
		}
		fmt.Fprintf(w, "Forecast:  %s\n", r.Timeline.Forecast.RecommendedAction)
	}
	if r.RunID != "" {
		fmt.Fprintf(w, "Run:       %s\n", r.RunID)
	}
	if r.TimelineID != "" {
		fmt.Fprintf(w, "Stored:    timeline %s\n", r.TimelineID)
	}
	fmt.Fprintln(w)
}

// #endregion simulate
