package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	gossh "golang.org/x/crypto/ssh"

	"pkt.systems/agentnexus/internal/appconfig"
	"pkt.systems/agentnexus/internal/export"
	"pkt.systems/agentnexus/internal/termio"
	"pkt.systems/agentnexus/schema"
	"pkt.systems/agentnexus/sshserver"
	"pkt.systems/pslog"
)

func newDoctorCmd() *cobra.Command {
	var cfgPath string
	var sessionTimeout time.Duration
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run agentnexus diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())

			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			configPath := cfgPath
			if strings.TrimSpace(configPath) == "" {
				path, err := appconfig.DefaultConfigPath()
				if err != nil {
					return err
				}
				configPath = path
			}
			logger.Info("doctor start", "config", configPath)

			signer, err := sshserver.EnsureHostKey(cfg.SSH.HostKeyPath)
			if err != nil {
				return fmt.Errorf("doctor host key: %w", err)
			}
			logger.Info("doctor host key ok", "path", cfg.SSH.HostKeyPath, "fingerprint", gossh.FingerprintSHA256(signer.PublicKey()))

			if cfg.Export.Dir == "" {
				logger.Info("doctor export skipped", "reason", "export.dir is empty; exports are simulated")
			} else {
				path, err := checkExportDir(cmd.Context(), cfg.Export.Dir, logger)
				if err != nil {
					return err
				}
				logger.Info("doctor export ok", "dir", cfg.Export.Dir, "probe", path)
			}

			output, err := runDoctorSession(cmd.Context(), cfg, logger, sessionTimeout)
			if err != nil {
				return err
			}
			logger.Info("doctor session ok", "bytes", len(output))
			logger.Info("doctor complete")
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().DurationVar(&sessionTimeout, "session-timeout", 10*time.Second, "timeout for the headless terminal check")
	return cmd
}

// checkExportDir writes, reads back and removes a probe export.
func checkExportDir(ctx context.Context, dir string, logger pslog.Logger) (string, error) {
	store, err := export.NewStoreWithLogger(dir, logger)
	if err != nil {
		return "", fmt.Errorf("doctor export dir: %w", err)
	}
	name := "doctor-" + uuid.NewString() + ".it"
	path, err := store.Export(ctx, name, schema.Orchestration{
		ID:          schema.OrchestrationID("doctor"),
		Name:        "doctor probe",
		CompletedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("doctor export write: %w", err)
	}
	defer func() { _ = os.Remove(path) }()
	doc, err := store.Load(name)
	if err != nil {
		return "", fmt.Errorf("doctor export read: %w", err)
	}
	if doc.Orchestration.Name != "doctor probe" {
		return "", fmt.Errorf("doctor export read: unexpected record %q", doc.Orchestration.Name)
	}
	return path, nil
}

// runDoctorSession drives a headless terminal through status and exit.
func runDoctorSession(ctx context.Context, cfg appconfig.Config, logger pslog.Logger, timeout time.Duration) (string, error) {
	factory, err := newTerminalFactory(cfg, logger)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	rec := &termio.Recorder{}
	sess := factory.Open(ctx, schema.TransportLocal, "doctor", rec)
	defer sess.Dispose()

	input, feed := io.Pipe()
	defer func() { _ = feed.Close() }()
	served := make(chan error, 1)
	go func() {
		served <- sess.Serve(input)
	}()

	if _, err := io.WriteString(feed, "status\r"); err != nil {
		return "", fmt.Errorf("doctor session input: %w", err)
	}
	if err := waitForOutput(ctx, rec, "Last Orchestration:"); err != nil {
		return rec.String(), err
	}
	if _, err := io.WriteString(feed, "\x04"); err != nil {
		return "", fmt.Errorf("doctor session input: %w", err)
	}
	select {
	case err := <-served:
		return rec.String(), err
	case <-ctx.Done():
		return rec.String(), fmt.Errorf("doctor session did not exit: %w", ctx.Err())
	}
}

func waitForOutput(ctx context.Context, rec *termio.Recorder, substr string) error {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for !strings.Contains(rec.String(), substr) {
		select {
		case <-ctx.Done():
			return errors.New("doctor session: no " + strings.TrimSuffix(substr, ":") + " in output")
		case <-ticker.C:
		}
	}
	return nil
}
