// Package agentnexus composes the CUAG terminal transports into one server.
package agentnexus

import (
	"context"
	"errors"
	"net"
	"sync"

	"pkt.systems/agentnexus/httpapi"
	"pkt.systems/agentnexus/internal/command"
	"pkt.systems/agentnexus/internal/export"
	"pkt.systems/agentnexus/internal/orchestration"
	"pkt.systems/agentnexus/internal/session"
	"pkt.systems/agentnexus/schema"
	"pkt.systems/agentnexus/sshserver"
	"pkt.systems/pslog"
)

// Server composes the HTTP and SSH terminal services.
type Server interface {
	Start(ctx context.Context) error
	Wait() error
	Stop(ctx context.Context) error
}

// ServerConfig configures the compositor.
type ServerConfig struct {
	Terminal schema.TerminalConfig
	HTTP     httpapi.Config
	SSH      SSHConfig
	// ExportDir is where export writes records. Empty keeps exports simulated.
	ExportDir string
	// Seed, when set, is recorded as the last completed orchestration.
	Seed *schema.Orchestration
}

// SSHConfig configures the SSH transport.
type SSHConfig struct {
	Addr        string
	HostKeyPath string
}

// ServerDeps captures optional dependencies. Zero values are built from config.
type ServerDeps struct {
	Logger       pslog.Logger
	Registry     *orchestration.Registry
	Exporter     command.Exporter
	HTTPListener net.Listener
	SSHListener  net.Listener
}

// ServerOption toggles compositor components.
type ServerOption func(*serverOptions)

type serverOptions struct {
	enableHTTP bool
	enableSSH  bool
}

// WithHTTP enables the browser terminal and HTTP API.
func WithHTTP() ServerOption {
	return func(o *serverOptions) { o.enableHTTP = true }
}

// WithSSH enables the SSH terminal.
func WithSSH() ServerOption {
	return func(o *serverOptions) { o.enableSSH = true }
}

// New constructs a composable agentnexus server.
func New(cfg ServerConfig, deps ServerDeps, opts ...ServerOption) (Server, error) {
	options := serverOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if !options.enableHTTP && !options.enableSSH {
		return nil, errors.New("no services enabled")
	}

	registry := deps.Registry
	if registry == nil {
		registry = orchestration.NewRegistry(deps.Logger)
	}
	if cfg.Seed != nil {
		if _, err := registry.Complete(*cfg.Seed); err != nil {
			return nil, err
		}
	}

	exporter := deps.Exporter
	if exporter == nil && cfg.ExportDir != "" {
		store, err := export.NewStoreWithLogger(cfg.ExportDir, deps.Logger)
		if err != nil {
			return nil, err
		}
		exporter = store
	}

	factory, err := session.NewFactory(cfg.Terminal, registry, exporter)
	if err != nil {
		return nil, err
	}

	server := &compositeServer{
		cfg:      cfg,
		options:  options,
		sessions: factory,
		registry: registry,
	}
	if options.enableHTTP {
		server.httpSrv = httpapi.NewServer(cfg.HTTP, factory, registry)
		server.httpListener = deps.HTTPListener
	}
	if options.enableSSH {
		server.sshSrv = &sshserver.Server{
			Addr:        cfg.SSH.Addr,
			HostKeyPath: cfg.SSH.HostKeyPath,
			Listener:    deps.SSHListener,
			Sessions:    factory,
		}
	}
	return server, nil
}

type compositeServer struct {
	cfg          ServerConfig
	options      serverOptions
	sessions     *session.Factory
	registry     *orchestration.Registry
	httpSrv      *httpapi.Server
	httpListener net.Listener
	sshSrv       *sshserver.Server
	logger       pslog.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	errCh   chan error
	started bool
}

func (s *compositeServer) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		pslog.Ctx(ctx).Warn("server start rejected", "reason", "already started")
		return errors.New("server already started")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.errCh = make(chan error, 2)
	s.started = true
	s.logger = pslog.Ctx(s.ctx)
	s.mu.Unlock()

	log := s.logger
	log.Info(
		"server start",
		"http", s.options.enableHTTP,
		"ssh", s.options.enableSSH,
		"http_addr", s.cfg.HTTP.Addr,
		"http_base_url", s.cfg.HTTP.BaseURL,
		"http_base_path", s.cfg.HTTP.BasePath,
		"ssh_addr", s.cfg.SSH.Addr,
		"export_dir", s.cfg.ExportDir,
	)
	if s.httpSrv != nil {
		go func() {
			if err := httpapi.ListenAndServe(s.ctx, s.cfg.HTTP.Addr, s.httpListener, s.httpSrv.Handler()); err != nil {
				log.Error("http server failed", "err", err)
				s.errCh <- err
			}
		}()
	}
	if s.sshSrv != nil {
		go func() {
			if err := s.sshSrv.ListenAndServe(s.ctx); err != nil {
				log.Error("ssh server failed", "err", err)
				s.errCh <- err
			}
		}()
	}
	return nil
}

func (s *compositeServer) Wait() error {
	s.mu.Lock()
	ctx := s.ctx
	errCh := s.errCh
	started := s.started
	s.mu.Unlock()
	if !started {
		return errors.New("server not started")
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if err != nil {
			pslog.Ctx(ctx).Error("server stopped", "err", err)
			_ = s.Stop(context.Background())
			return err
		}
		return nil
	}
}

func (s *compositeServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	started := s.started
	log := s.logger
	s.mu.Unlock()
	if !started {
		return nil
	}
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	log.Info("server stop requested", "sessions", s.sessions.Active())
	if cancel != nil {
		cancel()
	}
	s.sessions.DisposeAll()
	log.Info("server sessions disposed")
	if ctx == nil {
		log.Info("server stop completed")
		return nil
	}
	select {
	case <-ctx.Done():
		log.Warn("server stop timed out", "err", ctx.Err())
		return ctx.Err()
	case <-s.ctx.Done():
		log.Info("server stopped")
		return nil
	}
}
