package command

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"

	"pkt.systems/agentnexus/internal/termio"
	"pkt.systems/pslog"
)

func newCaptureContext(t *testing.T) (context.Context, *logCapture) {
	t.Helper()
	capture := newLogCapture(t)
	logger := pslog.NewWithOptions(capture, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		VerboseFields: true,
		MinLevel:      pslog.DebugLevel,
	})
	return pslog.ContextWithLogger(context.Background(), logger), capture
}

func TestExecuteAuditLog(t *testing.T) {
	ctx, capture := newCaptureContext(t)
	interp, _, _ := newTestInterpreter(t, Config{}, nil, nil)
	if err := interp.Execute(ctx, &termio.Recorder{}, "  status  "); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !hasEntry(capture.Entries(), "debug", "audit command", "command", "status") {
		t.Fatalf("expected audit log for status")
	}
}

func TestExecuteAuditLogDisabled(t *testing.T) {
	ctx, capture := newCaptureContext(t)
	interp, _, _ := newTestInterpreter(t, Config{DisableAuditLogging: true}, nil, nil)
	if err := interp.Execute(ctx, &termio.Recorder{}, "status"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, entry := range capture.Entries() {
		if entry.Message == "audit command" {
			t.Fatalf("did not expect audit log, got %s", entry.Raw)
		}
	}
}

func TestConnectRejectedIsLogged(t *testing.T) {
	ctx, capture := newCaptureContext(t)
	interp, _, _ := newTestInterpreter(t, Config{}, nil, nil)
	if err := interp.Execute(ctx, &termio.Recorder{}, "connect"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !hasEntry(capture.Entries(), "info", "command connect rejected", "reason", "missing agent") {
		t.Fatalf("expected rejection log")
	}
}

type logEntry struct {
	Level   string
	Message string
	Fields  map[string]any
	Raw     string
}

type logCapture struct {
	t     *testing.T
	mu    sync.Mutex
	buf   bytes.Buffer
	lines []string
}

func newLogCapture(t *testing.T) *logCapture {
	t.Helper()
	return &logCapture{t: t}
}

func (c *logCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = c.buf.Write(p)
	for {
		data := c.buf.Bytes()
		idx := bytes.IndexByte(data, '\n')
		if idx == -1 {
			break
		}
		line := string(data[:idx])
		c.lines = append(c.lines, line)
		c.buf.Next(idx + 1)
	}
	return len(p), nil
}

func (c *logCapture) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.buf.Len() > 0 {
		c.lines = append(c.lines, c.buf.String())
		c.buf.Reset()
	}
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *logCapture) Entries() []logEntry {
	lines := c.Lines()
	entries := make([]logEntry, 0, len(lines))
	for _, line := range lines {
		entries = append(entries, parseLogEntry(line))
	}
	return entries
}

func parseLogEntry(line string) logEntry {
	payload := map[string]any{}
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		return logEntry{Raw: line}
	}
	level := ""
	if value, ok := payload["level"].(string); ok {
		level = value
	} else if value, ok := payload["lvl"].(string); ok {
		level = value
	}
	message := ""
	if value, ok := payload["message"].(string); ok {
		message = value
	} else if value, ok := payload["msg"].(string); ok {
		message = value
	}
	return logEntry{Level: level, Message: message, Fields: payload, Raw: line}
}

func hasEntry(entries []logEntry, level, message, field string, value any) bool {
	for _, entry := range entries {
		if entry.Level != level || entry.Message != message {
			continue
		}
		if entry.Fields == nil || entry.Fields[field] != value {
			continue
		}
		return true
	}
	return false
}
