package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pkt.systems/agentnexus/internal/appconfig"
	"pkt.systems/agentnexus/internal/command"
	"pkt.systems/agentnexus/internal/export"
	"pkt.systems/agentnexus/internal/orchestration"
	"pkt.systems/agentnexus/internal/session"
	"pkt.systems/agentnexus/internal/termio"
	"pkt.systems/agentnexus/schema"
	"pkt.systems/pslog"
)

func newLocalCmd() *cobra.Command {
	var cfgPath string
	var verbose bool
	cmd := &cobra.Command{
		Use:   "local",
		Short: "Run the CUAG terminal on this TTY",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			if !verbose {
				// Console logs would interleave with the raw-mode terminal.
				logger = pslog.NewWithOptions(os.Stderr, pslog.Options{Mode: pslog.ModeConsole, MinLevel: pslog.ErrorLevel})
			}
			ctx := pslog.ContextWithLogger(cmd.Context(), logger)

			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			factory, err := newTerminalFactory(cfg, logger)
			if err != nil {
				return err
			}

			if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
				state, err := term.MakeRaw(fd)
				if err != nil {
					return err
				}
				defer func() { _ = term.Restore(fd, state) }()
			}

			sess := factory.Open(ctx, schema.TransportLocal, "", termio.NewWriterSurface(cmd.OutOrStdout()))
			defer sess.Dispose()
			return sess.Serve(cmd.InOrStdin())
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "keep console logging while the terminal runs")
	return cmd
}

// newTerminalFactory builds a standalone session factory from cfg: a registry
// seeded from the config and a file exporter when an export dir is set.
func newTerminalFactory(cfg appconfig.Config, logger pslog.Logger) (*session.Factory, error) {
	registry := orchestration.NewRegistry(logger)
	if seed, ok := cfg.SeedRecord(); ok {
		if _, err := registry.Complete(seed); err != nil {
			return nil, err
		}
	}
	var exporter command.Exporter
	if cfg.Export.Dir != "" {
		store, err := export.NewStoreWithLogger(cfg.Export.Dir, logger)
		if err != nil {
			return nil, err
		}
		exporter = store
	}
	return session.NewFactory(cfg.TerminalSettings(), registry, exporter)
}
