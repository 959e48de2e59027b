package termio

import (
	"strings"
	"sync"

	"pkt.systems/agentnexus/internal/ansi"
)

// OpKind identifies a recorded surface call.
type OpKind int

const (
	OpWrite OpKind = iota
	OpWriteln
	OpClear
)

// Op is one recorded surface call.
type Op struct {
	Kind OpKind
	Text string
}

// Recorder is a Surface that records every call. It is safe for concurrent use.
type Recorder struct {
	mu  sync.Mutex
	ops []Op
}

// Write records a write.
func (r *Recorder) Write(text string) {
	r.record(Op{Kind: OpWrite, Text: text})
}

// Writeln records a line write.
func (r *Recorder) Writeln(text string) {
	r.record(Op{Kind: OpWriteln, Text: text})
}

// Clear records a clear.
func (r *Recorder) Clear() {
	r.record(Op{Kind: OpClear})
}

// Ops returns a copy of the recorded calls.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// Lines returns the text of every Writeln call in order.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, op := range r.ops {
		if op.Kind == OpWriteln {
			out = append(out, op.Text)
		}
	}
	return out
}

// Clears returns the number of Clear calls.
func (r *Recorder) Clears() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, op := range r.ops {
		if op.Kind == OpClear {
			n++
		}
	}
	return n
}

// String returns the byte stream a WriterSurface would have produced.
func (r *Recorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var b strings.Builder
	for _, op := range r.ops {
		switch op.Kind {
		case OpWrite:
			b.WriteString(op.Text)
		case OpWriteln:
			b.WriteString(op.Text)
			b.WriteString("\r\n")
		case OpClear:
			b.WriteString(ansi.ClearScreen)
		}
	}
	return b.String()
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.ops = nil
	r.mu.Unlock()
}

func (r *Recorder) record(op Op) {
	r.mu.Lock()
	r.ops = append(r.ops, op)
	r.mu.Unlock()
}
