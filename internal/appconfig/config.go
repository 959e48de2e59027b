package appconfig

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"pkt.systems/agentnexus/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int                 `mapstructure:"config_version" yaml:"config_version"`
	Terminal      TerminalConfig      `mapstructure:"terminal" yaml:"terminal"`
	SSH           SSHConfig           `mapstructure:"ssh" yaml:"ssh"`
	HTTP          HTTPConfig          `mapstructure:"http" yaml:"http"`
	Export        ExportConfig        `mapstructure:"export" yaml:"export"`
	Orchestration OrchestrationConfig `mapstructure:"orchestration" yaml:"orchestration"`
	Logging       LoggingConfig       `mapstructure:"logging" yaml:"logging"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// TerminalConfig controls the interpreter and line editor.
type TerminalConfig struct {
	Prompt            string `mapstructure:"prompt" yaml:"prompt"`
	NetworkID         string `mapstructure:"network_id" yaml:"network_id"`
	HistoryMax        int    `mapstructure:"history_max" yaml:"history_max"`
	ConnectDelayMS    int    `mapstructure:"connect_delay_ms" yaml:"connect_delay_ms"`
	ExportDelayMS     int    `mapstructure:"export_delay_ms" yaml:"export_delay_ms"`
	SpinnerIntervalMS int    `mapstructure:"spinner_interval_ms" yaml:"spinner_interval_ms"`
}

// SSHConfig configures the SSH server.
type SSHConfig struct {
	Addr        string `mapstructure:"addr" yaml:"addr"`
	HostKeyPath string `mapstructure:"host_key_path" yaml:"host_key_path"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`
	BasePath string `mapstructure:"base_path" yaml:"base_path"`
	// AllowedOrigins lists extra websocket origins for the browser terminal.
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// ExportConfig configures where export writes records. An empty dir keeps
// exports simulated.
type ExportConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// OrchestrationConfig seeds the orchestration registry.
type OrchestrationConfig struct {
	LastCompleted SeedOrchestration `mapstructure:"last_completed" yaml:"last_completed"`
}

// SeedOrchestration is an orchestration reported as completed at startup.
// A seed without a name is ignored.
type SeedOrchestration struct {
	ID    string `mapstructure:"id" yaml:"id"`
	Name  string `mapstructure:"name" yaml:"name"`
	Agent string `mapstructure:"agent" yaml:"agent"`
	Brief string `mapstructure:"brief" yaml:"brief"`
}

// LoggingConfig controls audit logging behavior.
type LoggingConfig struct {
	DisableAuditTrails bool `mapstructure:"disable_audit_trails" yaml:"disable_audit_trails"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Terminal: TerminalConfig{
			Prompt:            schema.DefaultPromptLabel,
			NetworkID:         schema.DefaultNetworkID,
			HistoryMax:        schema.DefaultHistoryMax,
			ConnectDelayMS:    int(schema.DefaultConnectDelay / time.Millisecond),
			ExportDelayMS:     int(schema.DefaultExportDelay / time.Millisecond),
			SpinnerIntervalMS: int(schema.DefaultSpinnerInterval / time.Millisecond),
		},
		SSH: SSHConfig{
			Addr:        ":27522",
			HostKeyPath: filepath.Join(home, ".agentnexus", "ssh_host_key"),
		},
		HTTP: HTTPConfig{
			Addr:     ":27580",
			BaseURL:  "",
			BasePath: "",
		},
		Export: ExportConfig{
			Dir: filepath.Join(home, ".agentnexus", "exports"),
		},
		Logging: LoggingConfig{
			DisableAuditTrails: false,
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".agentnexus", "config.yaml"), nil
}

// TerminalSettings converts the terminal section into session settings.
func (c Config) TerminalSettings() schema.TerminalConfig {
	return schema.TerminalConfig{
		PromptLabel:         c.Terminal.Prompt,
		NetworkID:           c.Terminal.NetworkID,
		HistoryMax:          c.Terminal.HistoryMax,
		ConnectDelay:        time.Duration(c.Terminal.ConnectDelayMS) * time.Millisecond,
		ExportDelay:         time.Duration(c.Terminal.ExportDelayMS) * time.Millisecond,
		SpinnerInterval:     time.Duration(c.Terminal.SpinnerIntervalMS) * time.Millisecond,
		DisableAuditLogging: c.Logging.DisableAuditTrails,
	}
}

// SeedRecord returns the configured last completed orchestration, if any.
func (c Config) SeedRecord() (schema.Orchestration, bool) {
	seed := c.Orchestration.LastCompleted
	if strings.TrimSpace(seed.Name) == "" {
		return schema.Orchestration{}, false
	}
	return schema.Orchestration{
		ID:    schema.OrchestrationID(strings.TrimSpace(seed.ID)),
		Name:  seed.Name,
		Agent: schema.AgentName(seed.Agent),
		Brief: seed.Brief,
	}, true
}
