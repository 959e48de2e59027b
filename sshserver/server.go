// Package sshserver exposes the terminal over SSH.
package sshserver

import (
	"context"
	"errors"
	"io"
	"net"

	gliderssh "github.com/gliderlabs/ssh"

	"pkt.systems/agentnexus/internal/session"
	"pkt.systems/agentnexus/internal/termio"
	"pkt.systems/agentnexus/schema"
	"pkt.systems/pslog"
)

// SessionOpener opens terminal sessions.
type SessionOpener interface {
	Open(ctx context.Context, transport schema.Transport, remote string, out termio.Surface) *session.Session
}

// Server exposes the terminal over SSH. Any user name is accepted and no
// credentials are checked.
type Server struct {
	Addr        string
	HostKeyPath string
	Listener    net.Listener
	Sessions    SessionOpener
	logger      pslog.Logger
}

// ListenAndServe starts the SSH server and shuts down on context cancellation.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.logger == nil {
		s.logger = pslog.Ctx(ctx)
	}
	if s.Sessions == nil {
		return errors.New("session opener is required for SSH")
	}

	signer, err := EnsureHostKey(s.HostKeyPath)
	if err != nil {
		return err
	}

	server := &gliderssh.Server{
		Addr:    s.Addr,
		Handler: s.handleSession,
	}
	server.AddHostKey(signer)

	errCh := make(chan error, 1)
	go func() {
		if s.Listener != nil {
			errCh <- server.Serve(s.Listener)
			return
		}
		errCh <- server.ListenAndServe()
	}()
	s.logger.Info("ssh listening", "addr", s.Addr)

	select {
	case <-ctx.Done():
		_ = server.Close()
		return nil
	case err := <-errCh:
		if errors.Is(err, gliderssh.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleSession(sess gliderssh.Session) {
	log := s.logger
	if log == nil {
		log = pslog.Ctx(sess.Context())
	}
	remote := sess.RemoteAddr().String()
	log = log.With("remote", remote, "user", sess.User())
	if sshSession := sess.Context().SessionID(); sshSession != "" {
		log = log.With("ssh_session", sshSession)
	}
	ctx := pslog.ContextWithLogger(sess.Context(), log)

	pty, winCh, ok := sess.Pty()
	if !ok {
		log.Info("ssh session rejected", "reason", "pty required")
		_, _ = io.WriteString(sess, "pty required\r\n")
		_ = sess.Exit(1)
		return
	}
	go drainWindows(ctx, log, winCh)

	log.Info("ssh session opened", "term", pty.Term, "width", pty.Window.Width, "height", pty.Window.Height)
	term := s.Sessions.Open(ctx, schema.TransportSSH, remote, termio.NewWriterSurface(sess))
	defer term.Dispose()
	if err := term.Serve(sess); err != nil {
		log.Warn("ssh session failed", "err", err)
	}
	log.Info("ssh session closed", "term", pty.Term)
	_ = sess.Exit(0)
}

// drainWindows consumes resize notifications; the line editor does not wrap.
func drainWindows(ctx context.Context, log pslog.Logger, winCh <-chan gliderssh.Window) {
	for {
		select {
		case <-ctx.Done():
			return
		case win, ok := <-winCh:
			if !ok {
				return
			}
			log.Debug("ssh window resize", "width", win.Width, "height", win.Height)
		}
	}
}
