package session

import (
	"context"
	"sync"

	"pkt.systems/agentnexus/core"
	"pkt.systems/agentnexus/internal/command"
	"pkt.systems/agentnexus/internal/termio"
	"pkt.systems/agentnexus/schema"
)

// Factory opens sessions that share one terminal configuration and executor,
// and tracks the ones still open.
type Factory struct {
	controller core.Config
	exec       Executor

	mu     sync.Mutex
	active map[schema.SessionID]*Session
}

// NewFactory normalizes cfg and builds the command interpreter every session
// will use. provider and exporter may be nil.
func NewFactory(cfg schema.TerminalConfig, provider command.OrchestrationProvider, exporter command.Exporter) (*Factory, error) {
	cfg, err := schema.NormalizeTerminalConfig(cfg)
	if err != nil {
		return nil, err
	}
	interp := command.NewInterpreter(command.Config{
		NetworkID:           cfg.NetworkID,
		ConnectDelay:        cfg.ConnectDelay,
		ExportDelay:         cfg.ExportDelay,
		SpinnerInterval:     cfg.SpinnerInterval,
		DisableAuditLogging: cfg.DisableAuditLogging,
	}, provider, exporter)
	return NewFactoryWithExecutor(core.Config{
		PromptLabel: cfg.PromptLabel,
		HistoryMax:  cfg.HistoryMax,
	}, interp), nil
}

// NewFactoryWithExecutor builds a factory around an arbitrary executor.
func NewFactoryWithExecutor(controller core.Config, exec Executor) *Factory {
	return &Factory{
		controller: controller,
		exec:       exec,
		active:     make(map[schema.SessionID]*Session),
	}
}

// Open creates a session on out. The session is tracked until disposed.
func (f *Factory) Open(ctx context.Context, transport schema.Transport, remote string, out termio.Surface) *Session {
	s := New(ctx, out, f.exec, Options{
		Transport:  transport,
		Remote:     remote,
		Controller: f.controller,
	})
	f.mu.Lock()
	f.active[s.id] = s
	f.mu.Unlock()
	s.onDispose = func() {
		f.mu.Lock()
		delete(f.active, s.id)
		f.mu.Unlock()
	}
	return s
}

// Active returns the number of open sessions.
func (f *Factory) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.active)
}

// DisposeAll disposes every open session.
func (f *Factory) DisposeAll() {
	f.mu.Lock()
	sessions := make([]*Session, 0, len(f.active))
	for _, s := range f.active {
		sessions = append(sessions, s)
	}
	f.mu.Unlock()
	for _, s := range sessions {
		s.Dispose()
	}
}
