// triad simulates, replays, serves and inspects triadic resonance fields.
//
// Usage:
//
//	triad simulate -f scenario.yaml [--builtin name] [--persist] [--json]
//	triad replay   -f fixture.json -f scenario.yaml [--json]
//	triad serve    [--addr host:port] [-f scenario.yaml] [--persist]
//	triad inspect  [--timeline id | --run id] [--json]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/triad-field/internal/config"
	"github.com/danielpatrickdp/triad-field/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

// app carries state shared by the subcommands of one invocation.
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	dbPath     string
	cfg        config.Config
}

// #region root
func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "triad",
		Short: "Simulate and inspect triadic resonance fields",
		Long: "triad tracks pattern/intent/presence states over time and couples\n" +
			"populations of them into resonance fields that can cascade toward alignment.",
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.Version = version

	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "YAML config file")
	f.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	f.StringVar(&a.logFormat, "log-format", "", "log format: tint, json, text (overrides config)")
	f.StringVar(&a.dbPath, "db", "", "SQLite database path (overrides config and "+config.EnvDB+")")

	root.AddCommand(newSimulateCmd(a))
	root.AddCommand(newReplayCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newInspectCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if a.dbPath != "" {
		cfg.Store.Path = a.dbPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, _ := logging.ParseLevel(cfg.Log.Level)
	logging.Init(level, cfg.Log.Format, cmd.ErrOrStderr())
	a.cfg = cfg
	return nil
}

// #endregion root

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
