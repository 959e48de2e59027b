package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pkt.systems/agentnexus/internal/appconfig"
	"pkt.systems/pslog"
)

func newBootstrapCmd() *cobra.Command {
	var cfgPath string
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Write the default config and create its directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			path, err := appconfig.WriteDefault(cfgPath, overwrite)
			if err != nil {
				return err
			}
			logger.Info("bootstrap wrote", "path", path, "name", filepath.Base(path))

			cfg, err := appconfig.Load(path)
			if err != nil {
				return err
			}
			for _, dir := range bootstrapDirs(cfg) {
				if err := os.MkdirAll(dir, 0o700); err != nil {
					return err
				}
				logger.Info("bootstrap dir ready", "path", dir)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file to write")
	cmd.Flags().BoolVar(&overwrite, "force", false, "overwrite an existing config")
	return cmd
}

func bootstrapDirs(cfg appconfig.Config) []string {
	var dirs []string
	if cfg.Export.Dir != "" {
		dirs = append(dirs, cfg.Export.Dir)
	}
	if cfg.SSH.HostKeyPath != "" {
		dirs = append(dirs, filepath.Dir(cfg.SSH.HostKeyPath))
	}
	return dirs
}
