// Package session drives one terminal session: it feeds key events through the
// controller, renders effects and runs submitted commands on a worker.
package session

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"pkt.systems/agentnexus/core"
	"pkt.systems/agentnexus/internal/logx"
	"pkt.systems/agentnexus/internal/termio"
	"pkt.systems/agentnexus/schema"
	"pkt.systems/pslog"
)

// Executor runs one submitted command line against a surface.
type Executor interface {
	Execute(ctx context.Context, out termio.Surface, line string) error
}

// Options describes a session being opened.
type Options struct {
	ID         schema.SessionID
	Transport  schema.Transport
	Remote     string
	Controller core.Config
}

// Session is one interactive terminal. Run may be called once; Dispose may be
// called any number of times.
type Session struct {
	id        schema.SessionID
	transport schema.Transport
	out       termio.Surface
	exec      Executor
	cfg       core.Config
	log       pslog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan error
	wg     sync.WaitGroup

	mu     sync.Mutex
	state  core.State
	closed bool

	disposeOnce sync.Once
	onDispose   func()
}

// New constructs a session writing to out and running commands through exec.
func New(ctx context.Context, out termio.Surface, exec Executor, opts Options) *Session {
	if ctx == nil {
		ctx = context.Background()
	}
	id := opts.ID
	if id == "" {
		id = schema.SessionID(uuid.NewString())
	}
	log := logx.WithSessionTransport(ctx, id, opts.Transport)
	if opts.Remote != "" {
		log = log.With("remote", opts.Remote)
	}
	ctx = logx.ContextWithSessionLogger(ctx, log, id, opts.Transport)
	ctx, cancel := context.WithCancel(ctx)
	return &Session{
		id:        id,
		transport: opts.Transport,
		out:       out,
		exec:      exec,
		cfg:       opts.Controller,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan error, 1),
		state:     core.NewState(opts.Controller),
	}
}

// ID returns the session id.
func (s *Session) ID() schema.SessionID {
	return s.id
}

// State returns a snapshot of the controller state.
func (s *Session) State() core.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.state
	state.History = append([]string(nil), s.state.History...)
	return state
}

// Serve decodes raw terminal input from r and runs the session until the input
// ends, the user exits or the session is disposed.
func (s *Session) Serve(r io.Reader) error {
	keys := make(chan core.Event, 16)
	go termio.ReadKeys(r, keys)
	defer func() {
		// Unblock the decoder until the reader reports EOF.
		go func() {
			for range keys {
			}
		}()
	}()
	return s.Run(keys)
}

// Run mounts the terminal and processes events until keys is closed, an exit
// is requested or the session is disposed.
func (s *Session) Run(keys <-chan core.Event) error {
	if s.ctx.Err() != nil {
		return schema.ErrSessionClosed
	}
	s.log.Info("terminal session start")
	defer s.log.Info("terminal session end")

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return schema.ErrSessionClosed
	}
	state, effects := core.Mount(s.cfg)
	s.state = state
	s.apply(effects)
	s.mu.Unlock()

	for {
		select {
		case <-s.ctx.Done():
			return nil
		case ev, ok := <-keys:
			if !ok {
				return nil
			}
			if s.step(ev) {
				s.log.Info("terminal session exit requested")
				return nil
			}
		case err := <-s.done:
			s.step(core.Done(err))
		}
	}
}

// Dispose cancels any in-flight command and waits for the worker to return.
func (s *Session) Dispose() {
	s.disposeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		s.cancel()
		s.wg.Wait()
		if s.onDispose != nil {
			s.onDispose()
		}
		s.log.Debug("terminal session disposed")
	})
}

// step holds the state lock while effects are rendered so a snapshot never
// shows a state whose output has not been written yet. Events arriving after
// Dispose are dropped and end the loop.
func (s *Session) step(ev core.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	next, effects := core.Step(s.state, ev)
	s.state = next
	return s.apply(effects)
}

// apply performs effects in order and reports whether an exit was requested.
func (s *Session) apply(effects []core.Effect) bool {
	for _, effect := range effects {
		switch effect.Kind {
		case core.EffectWrite:
			s.out.Write(effect.Text)
		case core.EffectWriteln:
			s.out.Writeln(effect.Text)
		case core.EffectExecute:
			s.execute(effect.Text)
		case core.EffectExit:
			return true
		}
	}
	return false
}

func (s *Session) execute(line string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.runCommand(line)
		select {
		case s.done <- err:
		case <-s.ctx.Done():
		}
	}()
}

func (s *Session) runCommand(line string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("terminal command panic", "panic", r)
			err = fmt.Errorf("command panic: %v", r)
		}
	}()
	if s.exec == nil {
		return fmt.Errorf("no command executor")
	}
	err = s.exec.Execute(s.ctx, s.out, line)
	if err != nil {
		s.log.Warn("terminal command failed", "err", err)
	}
	return err
}
