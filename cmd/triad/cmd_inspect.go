package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/triad-field/internal/evolution"
	"github.com/danielpatrickdp/triad-field/internal/resonance"
	"github.com/danielpatrickdp/triad-field/internal/store"
)

type inspectFlags struct {
	timeline string
	run      string
	jsonOut  bool
}

// #region inspect
func newInspectCmd(a *app) *cobra.Command {
	var fl inspectFlags
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show stored timelines and cascade runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			w := cmd.OutOrStdout()
			switch {
			case fl.timeline != "":
				return inspectTimeline(w, st, fl.timeline, a.cfg.Tracker, fl.jsonOut)
			case fl.run != "":
				return inspectRun(w, st, fl.run, fl.jsonOut)
			default:
				return inspectList(w, st, fl.jsonOut)
			}
		},
	}
	f := cmd.Flags()
	f.StringVar(&fl.timeline, "timeline", "", "show one timeline in detail")
	f.StringVar(&fl.run, "run", "", "show one cascade run in detail")
	f.BoolVar(&fl.jsonOut, "json", false, "output as JSON instead of tables")
	cmd.MarkFlagsMutuallyExclusive("timeline", "run")
	return cmd
}

// #endregion inspect

// #region list-mode
type listOutput struct {
	Timelines []store.Timeline   `json:"timelines"`
	Runs      []store.CascadeRun `json:"runs"`
}

func inspectList(w io.Writer, st *store.Store, jsonOut bool) error {
	timelines, err := st.ListTimelines()
	if err != nil {
		return err
	}
	runs, err := st.ListCascades()
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(w, listOutput{Timelines: timelines, Runs: runs})
	}

	fmt.Fprintf(w, "Timelines (%d):\n", len(timelines))
	fmt.Fprintf(w, "%-36s  %-20s  %11s  %s\n", "ID", "Label", "Max History", "Created")
	for _, t := range timelines {
		fmt.Fprintf(w, "%-36s  %-20s  %11d  %s\n", t.ID, t.Label, t.MaxHistory, t.CreatedAt.Format("2006-01-02T15:04:05Z"))
	}
	fmt.Fprintf(w, "\nCascade runs (%d):\n", len(runs))
	fmt.Fprintf(w, "%-36s  %5s  %8s  %s\n", "ID", "Steps", "Coupling", "Created")
	for _, r := range runs {
		fmt.Fprintf(w, "%-36s  %5d  %8.3f  %s\n", r.ID, r.Steps, r.Coupling, r.CreatedAt.Format("2006-01-02T15:04:05Z"))
	}
	return nil
}

// #endregion list-mode

// #region timeline-mode
type timelineOutput struct {
	Timeline   store.Timeline              `json:"timeline"`
	Trajectory []evolution.TrajectoryPoint `json:"trajectory"`
	Events     []evolution.CriticalEvent   `json:"events"`
	Report     evolution.Report            `json:"report"`
	Forecast   evolution.Forecast          `json:"forecast"`
}

func inspectTimeline(w io.Writer, st *store.Store, id string, cfg evolution.TrackerConfig, jsonOut bool) error {
	tl, err := st.GetTimeline(id)
	if err != nil {
		return err
	}
	tracker, err := st.RestoreTracker(id, cfg)
	if err != nil {
		return err
	}
	events, err := st.ListEvents(id)
	if err != nil {
		return err
	}
	out := timelineOutput{
		Timeline:   tl,
		Trajectory: tracker.ExportTrajectory(),
		Events:     events,
		Report:     tracker.Report(),
		Forecast:   tracker.Forecast(5),
	}
	if jsonOut {
		return printProtoJSON(w, out)
	}

	fmt.Fprintf(w, "Timeline:  %s (%s)\n", tl.ID, tl.Label)
	fmt.Fprintf(w, "States:    %d   Trend: %s   Strength: %.4f   Balance: %.4f\n",
		out.Report.TotalStates, out.Report.Trend, out.Report.CurrentStrength, out.Report.CurrentBalance)
	fmt.Fprintf(w, "\n%-5s  %8s  %8s  %8s  %-5s  %8s  %8s\n",
		"#", "Pattern", "Intent", "Presence", "Valid", "Strength", "Balance")
	for i, p := range out.Trajectory {
		fmt.Fprintf(w, "%-5d  %8.4f  %8.4f  %8.4f  %-5t  %8.4f  %8.4f\n",
			i, p.Pattern, p.Intent, p.Presence, p.Valid, p.Strength, p.Balance)
	}
	if len(events) > 0 {
		fmt.Fprintf(w, "\nCritical events:\n")
		for _, ev := range events {
			fmt.Fprintf(w, "  #%-3d %-17s %s\n", ev.Seq, ev.Kind, ev.Description)
		}
	}
	fmt.Fprintf(w, "\nForecast:  %s\n", out.Forecast.RecommendedAction)
	for _, warn := range out.Forecast.Warnings {
		fmt.Fprintf(w, "  ! %s\n", warn)
	}
	return nil
}

// #endregion timeline-mode

// #region run-mode
type runOutput struct {
	Run     store.CascadeRun         `json:"run"`
	Steps   []resonance.CascadeStep  `json:"steps"`
	Summary resonance.CascadeSummary `json:"summary"`
}

func inspectRun(w io.Writer, st *store.Store, id string, jsonOut bool) error {
	run, steps, err := st.LoadCascade(id)
	if err != nil {
		return err
	}
	out := runOutput{Run: run, Steps: steps, Summary: resonance.Summarize(steps)}
	if jsonOut {
		return printProtoJSON(w, out)
	}

	fmt.Fprintf(w, "Run:       %s (%d steps, coupling %.3f)\n\n", shortID(run.ID), run.Steps, run.Coupling)
	fmt.Fprintf(w, "%-5s  %9s  %9s  %8s  %-5s\n", "Step", "Coherence", "Emergence", "Clusters", "Phase")
	for _, s := range steps {
		fmt.Fprintf(w, "%-5d  %9.4f  %9.4f  %8d  %-5t\n",
			s.Step, s.Report.FieldCoherence, s.Report.EmergencePotential, s.Report.ResonanceClusters, s.Report.PhaseTransition)
	}
	fmt.Fprintf(w, "\nPhase transition reached: %t\n", out.Summary.ReachedPhaseTransition)
	return nil
}

// #endregion run-mode
