package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pkt.systems/agentnexus/internal/ansi"
	"pkt.systems/agentnexus/internal/termio"
	"pkt.systems/agentnexus/schema"
	"pkt.systems/pslog"
)

const (
	// DefaultNetworkID is reported by status when none is configured.
	DefaultNetworkID = schema.DefaultNetworkID
	// DefaultConnectDelay is how long connect pretends to negotiate.
	DefaultConnectDelay = schema.DefaultConnectDelay
	// DefaultExportDelay is how long export pretends to serialise.
	DefaultExportDelay = schema.DefaultExportDelay
)

// Config configures the interpreter.
type Config struct {
	NetworkID       string
	ConnectDelay    time.Duration
	ExportDelay     time.Duration
	SpinnerInterval time.Duration
	// DisableAuditLogging suppresses the debug record of every submitted line.
	DisableAuditLogging bool
}

// OrchestrationProvider exposes the most recently completed orchestration.
type OrchestrationProvider interface {
	LastCompleted() (schema.Orchestration, bool)
}

// Exporter persists an orchestration record under the given file name and
// returns where it was written. An empty location means nothing was written.
type Exporter interface {
	Export(ctx context.Context, filename string, record schema.Orchestration) (string, error)
}

// Interpreter maps command lines to terminal output.
type Interpreter struct {
	cfg      Config
	provider OrchestrationProvider
	exporter Exporter
	spinner  Spinner
	sleep    func(context.Context, time.Duration) error
}

// NewInterpreter constructs an interpreter. provider and exporter may be nil:
// without a provider no orchestration is ever available, and without an
// exporter export only simulates the delay.
func NewInterpreter(cfg Config, provider OrchestrationProvider, exporter Exporter) *Interpreter {
	if strings.TrimSpace(cfg.NetworkID) == "" {
		cfg.NetworkID = DefaultNetworkID
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
	return &Interpreter{
		cfg:      cfg,
		provider: provider,
		exporter: exporter,
		spinner:  Spinner{Interval: cfg.SpinnerInterval},
		sleep:    sleepContext,
	}
}

// Execute interprets one submitted line and writes its output to out. Input
// mistakes and unknown commands are reported inline and return nil; only a
// failing action returns an error.
func (i *Interpreter) Execute(ctx context.Context, out termio.Surface, line string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cmd := Parse(line)
	log := pslog.Ctx(ctx)
	if !i.cfg.DisableAuditLogging {
		log.Debug("audit command", "command", strings.TrimSpace(line))
	}
	log = log.With("command", cmd.Name, "args", len(cmd.Args))
	switch cmd.Name {
	case "help":
		i.handleHelp(out)
		return nil
	case "connect":
		return i.handleConnect(ctx, log, out, cmd)
	case "status":
		i.handleStatus(out)
		return nil
	case "clear":
		out.Clear()
		return nil
	case "export":
		return i.handleExport(ctx, log, out, cmd)
	case "/intersession":
		i.handleIntersession(out)
		return nil
	default:
		log.Info("command not found")
		out.Writeln(ansi.Paint(ansi.Error, "Command not found:") + " " + cmd.Raw)
		return nil
	}
}

func (i *Interpreter) handleHelp(out termio.Surface) {
	out.Writeln(ansi.Paint(ansi.Success, "Available Commands:"))
	for _, entry := range helpEntries {
		usage := ansi.Paint(ansi.Command, entry.name)
		if entry.arg != "" {
			usage += " " + ansi.Paint(ansi.Argument, entry.arg)
		}
		out.Writeln("  " + usage + strings.Repeat(" ", entry.gap) + ansi.Paint(ansi.Meta, "- "+entry.summary))
	}
}

func (i *Interpreter) handleConnect(ctx context.Context, log pslog.Logger, out termio.Surface, cmd Command) error {
	if len(cmd.Args) == 0 {
		log.Info("command connect rejected", "reason", "missing agent")
		out.Writeln(ansi.Paint(ansi.Error, "Error: Missing agent name. Usage: connect <agent>"))
		return nil
	}
	agent := cmd.Remainder
	log = log.With("agent", agent)
	message := ansi.Paint(ansi.Info, "Connecting to agent:") + " " + ansi.Paint(ansi.Argument, agent)
	err := i.spinner.Run(ctx, out, message, func(ctx context.Context) error {
		return i.sleep(ctx, i.cfg.ConnectDelay)
	})
	if err != nil {
		log.Warn("command connect failed", "err", err)
		return fmt.Errorf("connect %s: %w", agent, err)
	}
	log.Info("command connect established")
	out.Writeln(ansi.Paint(ansi.Success, "Connection established."))
	return nil
}

func (i *Interpreter) handleStatus(out termio.Surface) {
	name := "None"
	if record, ok := i.lastCompleted(); ok && record.Name != "" {
		name = record.Name
	}
	out.Writeln(ansi.Info + "System Status:      " + ansi.Paint(ansi.Success, "● All systems nominal"))
	out.Writeln(ansi.Info + "Active Network:     " + ansi.Paint(ansi.Argument, i.cfg.NetworkID))
	out.Writeln(ansi.Info + "Last Orchestration: " + ansi.Paint(ansi.Argument, name))
}

func (i *Interpreter) handleExport(ctx context.Context, log pslog.Logger, out termio.Surface, cmd Command) error {
	record, ok := i.lastCompleted()
	if !ok {
		log.Info("command export rejected", "reason", "no orchestration")
		out.Writeln(ansi.Paint(ansi.Error, "Error: No orchestration has been completed in this session to export."))
		return nil
	}
	display := "\"" + record.Name + ".it\""
	filename := record.Name + ".it"
	if len(cmd.Args) > 0 {
		display = cmd.Args[0]
		filename = cmd.Args[0]
	}
	log = log.With("orchestration", record.ID, "file", filename)
	message := ansi.Paint(ansi.Info, "Exporting workflow to") + " " + ansi.Paint(ansi.Command, display)
	var location string
	err := i.spinner.Run(ctx, out, message, func(ctx context.Context) error {
		if err := i.sleep(ctx, i.cfg.ExportDelay); err != nil {
			return err
		}
		if i.exporter == nil {
			return nil
		}
		var err error
		location, err = i.exporter.Export(ctx, filename, record)
		return err
	})
	if err != nil {
		log.Warn("command export failed", "err", err)
		return fmt.Errorf("export %s: %w", filename, err)
	}
	if location != "" {
		log.Info("command export written", "path", location)
	} else {
		log.Info("command export simulated")
	}
	out.Writeln(ansi.Paint(ansi.Success, "Successfully exported."))
	return nil
}

func (i *Interpreter) handleIntersession(out termio.Surface) {
	for _, line := range intersessionLines {
		out.Writeln(line)
	}
}

func (i *Interpreter) lastCompleted() (schema.Orchestration, bool) {
	if i.provider == nil {
		return schema.Orchestration{}, false
	}
	return i.provider.LastCompleted()
}
