package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/triad-field/internal/evolution"
	"github.com/danielpatrickdp/triad-field/internal/replay"
)

type replayFlags struct {
	files    []string
	builtins []string
	verbose  bool
	jsonOut  bool
}

// #region replay
func newReplayCmd(a *app) *cobra.Command {
	var fl replayFlags
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay recorded timelines through fresh trackers",
		Long: "Replays JSON fixtures or scenario timelines in parallel, one tracker each,\n" +
			"and checks fixture expectations. Any mismatch fails the command.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runReplay(cmd.Context(), cmd.OutOrStdout(), fl)
		},
	}
	f := cmd.Flags()
	f.StringArrayVarP(&fl.files, "file", "f", nil, "fixture (JSON) or scenario file, repeatable")
	f.StringArrayVar(&fl.builtins, "builtin", nil, "builtin scenario name, repeatable")
	f.BoolVarP(&fl.verbose, "verbose", "v", false, "print every step")
	f.BoolVar(&fl.jsonOut, "json", false, "output as JSON")
	return cmd
}

func (a *app) runReplay(ctx context.Context, w io.Writer, fl replayFlags) error {
	var fixtures []*replay.Fixture
	for _, path := range fl.files {
		f, err := loadFixture(path)
		if err != nil {
			return err
		}
		fixtures = append(fixtures, f)
	}
	scenarios, err := loadScenarios(nil, fl.builtins)
	if err != nil {
		return err
	}
	for _, s := range scenarios {
		fixtures = append(fixtures, replay.FromScenario(s))
	}
	if len(fixtures) == 0 {
		return fmt.Errorf("replay: no fixtures given (use -f or --builtin)")
	}

	outcomes, err := replay.ReplayAll(ctx, fixtures, a.cfg.Tracker)
	if err != nil {
		return err
	}

	mismatches := 0
	for _, o := range outcomes {
		mismatches += len(o.Mismatches)
	}
	if fl.jsonOut {
		if err := printJSON(w, outcomes); err != nil {
			return err
		}
	} else {
		for _, o := range outcomes {
			printOutcome(w, o, fl.verbose)
		}
	}
	if mismatches > 0 {
		return fmt.Errorf("replay: %d expectation mismatch(es)", mismatches)
	}
	return nil
}

func printOutcome(w io.Writer, o replay.Outcome, verbose bool) {
	s := o.Summary
	fmt.Fprintf(w, "Fixture:     %s\n", o.Name)
	fmt.Fprintf(w, "States:      %d (%d transitions, %d events)\n", s.States, s.Transitions, s.Events)
	fmt.Fprintf(w, "Trend:       %s\n", s.Report.Trend)

	types := make([]string, 0, len(s.ByType))
	for t := range s.ByType {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(w, "  %-14s %d\n", t, s.ByType[evolution.TransitionType(t)])
	}

	if verbose {
		fmt.Fprintf(w, "\n%-5s  %-26s  %-14s  %s\n", "Index", "State", "Transition", "Events")
		for _, r := range o.Steps {
			tt := "-"
			if r.Transition != nil {
				tt = string(r.Transition.Type)
			}
			var kinds []string
			for _, ev := range r.Events {
				kinds = append(kinds, string(ev.Kind))
			}
			fmt.Fprintf(w, "%-5d  (%6.3f, %6.3f, %6.3f)  %-14s  %v\n",
				r.Index, r.State.Pattern, r.State.Intent, r.State.Presence, tt, kinds)
		}
	}

	if len(o.Mismatches) == 0 {
		fmt.Fprintf(w, "Result:      PASS\n\n")
		return
	}
	fmt.Fprintf(w, "Result:      FAIL\n")
	for _, m := range o.Mismatches {
		fmt.Fprintf(w, "  %s\n", m)
	}
	fmt.Fprintln(w)
}

// #endregion replay
