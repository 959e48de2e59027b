package schema

import (
	"errors"
	"strings"
	"time"
)

// TerminalConfig defines the behaviour shared by every terminal session.
type TerminalConfig struct {
	PromptLabel     string
	NetworkID       string
	HistoryMax      int
	ConnectDelay    time.Duration
	ExportDelay     time.Duration
	SpinnerInterval time.Duration
	// DisableAuditLogging disables audit trail debug logs for commands.
	DisableAuditLogging bool
}

const (
	// DefaultPromptLabel is the prompt text before the input buffer.
	DefaultPromptLabel = "CUAG> "
	// DefaultNetworkID is the network reported by status.
	DefaultNetworkID = "255.8.8.8"
	// DefaultHistoryMax bounds per-session command history.
	DefaultHistoryMax = 500
	// DefaultConnectDelay is the simulated agent handshake.
	DefaultConnectDelay = time.Second
	// DefaultExportDelay is the simulated export duration.
	DefaultExportDelay = 1500 * time.Millisecond
	// DefaultSpinnerInterval is the spinner frame period.
	DefaultSpinnerInterval = 80 * time.Millisecond
)

// NormalizeTerminalConfig applies defaults and validates the config.
func NormalizeTerminalConfig(cfg TerminalConfig) (TerminalConfig, error) {
	if cfg.PromptLabel == "" {
		cfg.PromptLabel = DefaultPromptLabel
	}
	if strings.ContainsAny(cfg.PromptLabel, "\r\n") {
		return TerminalConfig{}, errors.New("prompt must be a single line")
	}
	if strings.TrimSpace(cfg.NetworkID) == "" {
		cfg.NetworkID = DefaultNetworkID
	}
	if cfg.HistoryMax <= 0 {
		cfg.HistoryMax = DefaultHistoryMax
	}
	if cfg.ConnectDelay <= 0 {
		cfg.ConnectDelay = DefaultConnectDelay
	}
	if cfg.ExportDelay <= 0 {
		cfg.ExportDelay = DefaultExportDelay
	}
	if cfg.SpinnerInterval <= 0 {
		cfg.SpinnerInterval = DefaultSpinnerInterval
	}
	if cfg.SpinnerInterval > cfg.ConnectDelay && cfg.SpinnerInterval > cfg.ExportDelay {
		return TerminalConfig{}, errors.New("spinner interval must not exceed both action delays")
	}
	return cfg, nil
}
