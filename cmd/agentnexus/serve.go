package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/agentnexus"
	"pkt.systems/agentnexus/httpapi"
	"pkt.systems/agentnexus/internal/appconfig"
	"pkt.systems/agentnexus/internal/ansi"
	"pkt.systems/pslog"
)

const serveBanner = `
   ___                    __  _  __
  / _ |___ ____ ___  ____/ / / |/ /____ __ __ _____
 / __ / _ '/ -_) _ \/ __/ _/ /    / -_) \ // // (_-<
/_/ |_\_, /\__/_//_/\__/\__/ /_/|_/\__/_\_\\_,_/___/
     /___/
`

func newServeCmd() *cobra.Command {
	var cfgPath string
	var disableAuditTrails bool
	var noBanner bool
	var noSSH bool
	var noHTTP bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the CUAG terminal over SSH and HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			logMode := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_MODE")))
			if !noBanner && logMode != "json" && logMode != "structured" {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), ansi.Paint(ansi.Banner, serveBanner)+"\n")
			}
			logger := pslog.Ctx(cmd.Context())
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if disableAuditTrails {
				cfg.Logging.DisableAuditTrails = true
			}

			var opts []agentnexus.ServerOption
			if !noHTTP {
				opts = append(opts, agentnexus.WithHTTP())
			}
			if !noSSH {
				opts = append(opts, agentnexus.WithSSH())
			}
			server, err := agentnexus.New(toServerConfig(cfg), agentnexus.ServerDeps{Logger: logger}, opts...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Stop(stopCtx); err != nil {
					logger.Warn("server stop failed", "err", err)
				}
			}()
			if err := server.Start(ctx); err != nil {
				return err
			}
			return server.Wait()
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().BoolVar(&disableAuditTrails, "disable-audit-trails", false, "disable audit trail logging for commands")
	cmd.Flags().BoolVar(&noBanner, "no-banner", false, "disable startup banner")
	cmd.Flags().BoolVar(&noSSH, "no-ssh", false, "do not start the SSH server")
	cmd.Flags().BoolVar(&noHTTP, "no-http", false, "do not start the HTTP server")
	return cmd
}

func toServerConfig(cfg appconfig.Config) agentnexus.ServerConfig {
	out := agentnexus.ServerConfig{
		Terminal: cfg.TerminalSettings(),
		HTTP: httpapi.Config{
			Addr:           cfg.HTTP.Addr,
			BaseURL:        cfg.HTTP.BaseURL,
			BasePath:       cfg.HTTP.BasePath,
			AllowedOrigins: cfg.HTTP.AllowedOrigins,
		},
		SSH: agentnexus.SSHConfig{
			Addr:        cfg.SSH.Addr,
			HostKeyPath: cfg.SSH.HostKeyPath,
		},
		ExportDir: cfg.Export.Dir,
	}
	if seed, ok := cfg.SeedRecord(); ok {
		out.Seed = &seed
	}
	return out
}
