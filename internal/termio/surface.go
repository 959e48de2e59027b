// Package termio connects terminal sessions to byte streams: it renders
// controller output onto a display surface and decodes raw key bytes into
// controller events.
package termio

import (
	"io"
	"sync"

	"pkt.systems/agentnexus/internal/ansi"
)

// Surface is the display a session writes to.
type Surface interface {
	Write(text string)
	Writeln(text string)
	Clear()
}

// WriterSurface renders onto an io.Writer. Writes are serialised so the
// spinner goroutine and the session loop never interleave partial sequences.
type WriterSurface struct {
	mu  sync.Mutex
	out io.Writer
	err error
}

// NewWriterSurface returns a surface writing to out.
func NewWriterSurface(out io.Writer) *WriterSurface {
	return &WriterSurface{out: out}
}

// Write writes text without a line break.
func (s *WriterSurface) Write(text string) {
	s.write(text)
}

// Writeln writes text followed by CR LF.
func (s *WriterSurface) Writeln(text string) {
	s.write(text + "\r\n")
}

// Clear erases the display and homes the cursor.
func (s *WriterSurface) Clear() {
	s.write(ansi.ClearScreen)
}

// Err returns the first write error, if any. Later writes are dropped once a
// write has failed.
func (s *WriterSurface) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *WriterSurface) write(text string) {
	if text == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return
	}
	_, s.err = io.WriteString(s.out, text)
}
