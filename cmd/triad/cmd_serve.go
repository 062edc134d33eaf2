package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/triad-field/internal/codec"
	"github.com/danielpatrickdp/triad-field/internal/logging"
	"github.com/danielpatrickdp/triad-field/internal/resonance"
	"github.com/danielpatrickdp/triad-field/internal/scenario"
	"github.com/danielpatrickdp/triad-field/internal/store"
)

type serveFlags struct {
	addr    string
	seed    string
	persist bool
}

// #region serve
func newServeCmd(a *app) *cobra.Command {
	var fl serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a resonance field over gRPC",
		Long: "Starts the triad.v1.FieldService. The field starts empty unless seeded\n" +
			"from a scenario. Stops gracefully on SIGINT or SIGTERM.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runServe(ctx, fl)
		},
	}
	f := cmd.Flags()
	f.StringVar(&fl.addr, "addr", "", "listen address (overrides config and TRIAD_ADDR)")
	f.StringVarP(&fl.seed, "file", "f", "", "scenario file whose population seeds the field")
	f.BoolVar(&fl.persist, "persist", false, "allow clients to store cascades in the database")
	return cmd
}

func (a *app) runServe(ctx context.Context, fl serveFlags) error {
	addr := a.cfg.Server.Addr
	if fl.addr != "" {
		addr = fl.addr
	}

	field := resonance.NewField(a.cfg.Field)
	if fl.seed != "" {
		s, err := scenario.LoadFile(fl.seed)
		if err != nil {
			return err
		}
		field = s.BuildField(a.cfg.Field)
	}

	var st *store.Store
	if fl.persist {
		var err error
		if st, err = a.openStore(); err != nil {
			return err
		}
		defer st.Close()
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	logging.New("serve").Info("starting field service", "entities", field.Len(), "persist", fl.persist)
	return codec.Serve(ctx, lis, codec.NewServer(field, st))
}

// #endregion serve
