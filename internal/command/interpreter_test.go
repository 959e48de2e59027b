package command

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pkt.systems/agentnexus/internal/ansi"
	"pkt.systems/agentnexus/internal/termio"
	"pkt.systems/agentnexus/schema"
)

var deployRecord = schema.Orchestration{ID: "o1", Name: "Deploy Webapp"}

func TestHelpListsEveryCommand(t *testing.T) {
	interp, tickers, _ := newTestInterpreter(t, Config{}, nil, nil)
	var out termio.Recorder
	if err := interp.Execute(context.Background(), &out, "help"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	lines := out.Lines()
	if len(lines) != 7 {
		t.Fatalf("expected header and 6 commands, got %d lines", len(lines))
	}
	if lines[0] != ansi.Paint(ansi.Success, "Available Commands:") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	want := "  " + ansi.Paint(ansi.Command, "connect") + " " + ansi.Paint(ansi.Argument, "<agent>") + "   " + ansi.Paint(ansi.Meta, "- Connect to an agent. (e.g., connect LYRA)")
	if lines[2] != want {
		t.Fatalf("expected %q, got %q", want, lines[2])
	}
	for i, name := range []string{"help", "connect", "status", "clear", "export", "/intersession"} {
		if !strings.Contains(lines[i+1], name) {
			t.Fatalf("line %d missing %s: %q", i+1, name, lines[i+1])
		}
	}
	if tickers.Started() != 0 {
		t.Fatalf("help must not start a spinner")
	}
}

func TestConnectWithoutAgent(t *testing.T) {
	interp, tickers, sleeper := newTestInterpreter(t, Config{}, nil, nil)
	var out termio.Recorder
	if err := interp.Execute(context.Background(), &out, "connect"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := ansi.Paint(ansi.Error, "Error: Missing agent name. Usage: connect <agent>")
	if lines := out.Lines(); len(lines) != 1 || lines[0] != want {
		t.Fatalf("expected %q, got %v", want, lines)
	}
	if tickers.Started() != 0 || len(sleeper.Delays()) != 0 {
		t.Fatalf("expected no spinner and no delay")
	}
}

func TestConnectSpinsThenConnects(t *testing.T) {
	interp, tickers, sleeper := newTestInterpreter(t, Config{}, nil, nil)
	sleeper.ticks = 2
	var out termio.Recorder
	if err := interp.Execute(context.Background(), &out, "connect LYRA  KARA"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := ansi.Paint(ansi.Info, "Connecting to agent:") + " " + ansi.Paint(ansi.Argument, "LYRA  KARA") + " " +
		"\b⠋\b⠙" + successMark + "\r\n" +
		ansi.Paint(ansi.Success, "Connection established.") + "\r\n"
	if got := out.String(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if delays := sleeper.Delays(); len(delays) != 1 || delays[0] != DefaultConnectDelay {
		t.Fatalf("expected one connect delay, got %v", delays)
	}
	if tickers.Started() != 1 || tickers.Last().stops.Load() != 1 {
		t.Fatalf("expected one ticker stopped once")
	}
	if tickers.interval != DefaultSpinnerInterval {
		t.Fatalf("expected default interval, got %v", tickers.interval)
	}
}

func TestConnectCancelled(t *testing.T) {
	interp, tickers, _ := newTestInterpreter(t, Config{}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out termio.Recorder
	err := interp.Execute(ctx, &out, "connect LYRA")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if !strings.HasSuffix(out.String(), failureMark+"\r\n") {
		t.Fatalf("expected failure mark, got %q", out.String())
	}
	if strings.Contains(out.String(), "Connection established.") {
		t.Fatalf("did not expect success line")
	}
	if tickers.Last().stops.Load() != 1 {
		t.Fatalf("expected ticker stopped once")
	}
}

func TestStatus(t *testing.T) {
	cases := []struct {
		name     string
		cfg      Config
		provider OrchestrationProvider
		network  string
		last     string
	}{
		{"no provider", Config{}, nil, DefaultNetworkID, "None"},
		{"no record", Config{NetworkID: "10.0.0.1"}, staticProvider{}, "10.0.0.1", "None"},
		{"record", Config{}, staticProvider{record: deployRecord, ok: true}, DefaultNetworkID, "Deploy Webapp"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			interp, _, _ := newTestInterpreter(t, tc.cfg, tc.provider, nil)
			var out termio.Recorder
			if err := interp.Execute(context.Background(), &out, "status"); err != nil {
				t.Fatalf("Execute: %v", err)
			}
			lines := out.Lines()
			if len(lines) != 3 {
				t.Fatalf("expected 3 lines, got %v", lines)
			}
			if lines[0] != ansi.Info+"System Status:      "+ansi.Paint(ansi.Success, "● All systems nominal") {
				t.Fatalf("unexpected status line %q", lines[0])
			}
			if lines[1] != ansi.Info+"Active Network:     "+ansi.Paint(ansi.Argument, tc.network) {
				t.Fatalf("unexpected network line %q", lines[1])
			}
			if lines[2] != ansi.Info+"Last Orchestration: "+ansi.Paint(ansi.Argument, tc.last) {
				t.Fatalf("unexpected orchestration line %q", lines[2])
			}
		})
	}
}

func TestClear(t *testing.T) {
	interp, _, _ := newTestInterpreter(t, Config{}, nil, nil)
	var out termio.Recorder
	if err := interp.Execute(context.Background(), &out, "clear"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.Clears() != 1 || len(out.Lines()) != 0 {
		t.Fatalf("expected a single clear, got %+v", out.Ops())
	}
}

func TestExportWithoutRecord(t *testing.T) {
	exporter := &fakeExporter{}
	interp, tickers, sleeper := newTestInterpreter(t, Config{}, staticProvider{}, exporter)
	var out termio.Recorder
	if err := interp.Execute(context.Background(), &out, "export myfile"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := ansi.Paint(ansi.Error, "Error: No orchestration has been completed in this session to export.")
	if lines := out.Lines(); len(lines) != 1 || lines[0] != want {
		t.Fatalf("expected %q, got %v", want, lines)
	}
	if tickers.Started() != 0 || len(sleeper.Delays()) != 0 || len(exporter.calls) != 0 {
		t.Fatalf("expected no spinner, delay or export")
	}
}

func TestExportNamedFile(t *testing.T) {
	exporter := &fakeExporter{location: "/tmp/myfile"}
	interp, tickers, sleeper := newTestInterpreter(t, Config{}, staticProvider{record: deployRecord, ok: true}, exporter)
	sleeper.ticks = 1
	var out termio.Recorder
	if err := interp.Execute(context.Background(), &out, "export myfile"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := ansi.Paint(ansi.Info, "Exporting workflow to") + " " + ansi.Paint(ansi.Command, "myfile") + " " +
		"\b⠋" + successMark + "\r\n" +
		ansi.Paint(ansi.Success, "Successfully exported.") + "\r\n"
	if got := out.String(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if delays := sleeper.Delays(); len(delays) != 1 || delays[0] != DefaultExportDelay {
		t.Fatalf("expected one export delay, got %v", delays)
	}
	if tickers.Started() != 1 {
		t.Fatalf("expected a spinner")
	}
	if len(exporter.calls) != 1 || exporter.calls[0] != "myfile" {
		t.Fatalf("expected export of myfile, got %v", exporter.calls)
	}
}

func TestExportDefaultFileName(t *testing.T) {
	exporter := &fakeExporter{}
	interp, _, _ := newTestInterpreter(t, Config{ExportDelay: 10 * time.Millisecond}, staticProvider{record: deployRecord, ok: true}, exporter)
	var out termio.Recorder
	if err := interp.Execute(context.Background(), &out, "export"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), ansi.Paint(ansi.Command, `"Deploy Webapp.it"`)) {
		t.Fatalf("expected quoted default file name, got %q", out.String())
	}
	if len(exporter.calls) != 1 || exporter.calls[0] != "Deploy Webapp.it" {
		t.Fatalf("expected export of default name, got %v", exporter.calls)
	}
}

func TestExportDefaultFileNameIsNotEscaped(t *testing.T) {
	record := schema.Orchestration{ID: "o2", Name: `Deploy "Web" ☃`}
	interp, _, _ := newTestInterpreter(t, Config{}, staticProvider{record: record, ok: true}, nil)
	var out termio.Recorder
	if err := interp.Execute(context.Background(), &out, "export"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := ansi.Paint(ansi.Command, `"Deploy "Web" ☃.it"`)
	if !strings.Contains(out.String(), want) {
		t.Fatalf("expected %q in output, got %q", want, out.String())
	}
}

func TestExportWithoutExporterSimulates(t *testing.T) {
	interp, _, _ := newTestInterpreter(t, Config{}, staticProvider{record: deployRecord, ok: true}, nil)
	var out termio.Recorder
	if err := interp.Execute(context.Background(), &out, "export"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasSuffix(out.String(), ansi.Paint(ansi.Success, "Successfully exported.")+"\r\n") {
		t.Fatalf("expected success, got %q", out.String())
	}
}

func TestExportFailurePropagates(t *testing.T) {
	boom := errors.New("disk full")
	exporter := &fakeExporter{err: boom}
	interp, tickers, _ := newTestInterpreter(t, Config{}, staticProvider{record: deployRecord, ok: true}, exporter)
	var out termio.Recorder
	err := interp.Execute(context.Background(), &out, "export out.it")
	if !errors.Is(err, boom) {
		t.Fatalf("expected export error, got %v", err)
	}
	if !strings.HasSuffix(out.String(), failureMark+"\r\n") {
		t.Fatalf("expected failure mark last, got %q", out.String())
	}
	if strings.Contains(out.String(), "Successfully exported.") {
		t.Fatalf("did not expect success line")
	}
	if tickers.Last().stops.Load() != 1 {
		t.Fatalf("expected ticker stopped once")
	}
}

func TestIntersession(t *testing.T) {
	interp, _, _ := newTestInterpreter(t, Config{}, nil, nil)
	var out termio.Recorder
	if err := interp.Execute(context.Background(), &out, "/intersession"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	lines := out.Lines()
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d", len(lines))
	}
	if lines[0] != ansi.Paint(ansi.Info, "Conceptualizing intersession for 'Deploy Webapp'...") {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	want := "    " + ansi.Paint(ansi.Meta, "├─>") + " " + ansi.Paint(ansi.Command, "[SOPHIA]") + ": Analyze requirements for security implications. " + ansi.Paint(ansi.Meta, "(LLM: OpenAI for complex logic)")
	if lines[2] != want {
		t.Fatalf("expected %q, got %q", want, lines[2])
	}
	for _, agent := range []string{"[LYRA]", "[KARA]", "[DAN]"} {
		if !strings.Contains(out.String(), agent) {
			t.Fatalf("expected %s in narrative", agent)
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	cases := []string{"HELP", "foo bar", "intersession"}
	for _, line := range cases {
		interp, _, _ := newTestInterpreter(t, Config{}, nil, nil)
		var out termio.Recorder
		if err := interp.Execute(context.Background(), &out, line); err != nil {
			t.Fatalf("Execute(%q): %v", line, err)
		}
		want := ansi.Paint(ansi.Error, "Command not found:") + " " + line
		if lines := out.Lines(); len(lines) != 1 || lines[0] != want {
			t.Fatalf("expected %q, got %v", want, lines)
		}
	}
}
