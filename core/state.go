package core

import (
	"strings"

	"pkt.systems/agentnexus/internal/ansi"
	"pkt.systems/agentnexus/schema"
)

// DefaultPromptLabel is the prompt shown before the input buffer.
const DefaultPromptLabel = schema.DefaultPromptLabel

// Config configures a controller state.
type Config struct {
	PromptLabel string
	Commands    []string
	HistoryMax  int
}

// State is the line-editing state of one terminal session. A State is a value:
// Step never mutates the state it is given.
type State struct {
	Buffer     string
	History    []string
	Cursor     int
	Locked     bool
	Prompt     string
	Commands   []string
	HistoryMax int
}

// NewState returns the initial state for cfg.
func NewState(cfg Config) State {
	label := cfg.PromptLabel
	if label == "" {
		label = DefaultPromptLabel
	}
	commands := cfg.Commands
	if commands == nil {
		commands = KnownCommands
	}
	max := cfg.HistoryMax
	if max <= 0 {
		max = defaultHistoryMax
	}
	return State{
		Prompt:     ansi.Paint(ansi.Prompt, label),
		Commands:   append([]string(nil), commands...),
		HistoryMax: max,
	}
}

// Mount returns the initial state and the welcome output for a new session.
func Mount(cfg Config) (State, []Effect) {
	s := NewState(cfg)
	effects := make([]Effect, 0, len(bannerLines)+3)
	for _, line := range bannerLines {
		effects = append(effects, writeln(line))
	}
	effects = append(effects,
		writeln("\r\n"+ansi.Paint(ansi.Prompt, "Welcome to the CUAG Agent CLI.")),
		writeln("Type "+ansi.Paint(ansi.Command, "help")+" for a list of commands."),
		s.prompt(),
	)
	return s, effects
}

// Blank reports whether the buffer holds nothing but whitespace.
func (s State) Blank() bool {
	return strings.TrimSpace(s.Buffer) == ""
}

func (s State) prompt() Effect {
	return write("\r\n" + s.Prompt)
}

func (s State) redrawLine(text string) Effect {
	return write(ansi.ClearLine + "\r" + s.Prompt + text)
}

var bannerLines = []string{
	"\r\n" + ansi.Paint(ansi.Banner, "██████╗ ██╗   ██╗ █████╗  ██████╗ "),
	ansi.Paint(ansi.Banner, "██╔════╝ ██║   ██║██╔══██╗██╔════╝ "),
	ansi.Paint(ansi.Banner, "██║      ██║   ██║███████║██║  ███╗"),
	ansi.Paint(ansi.Banner, "██║      ╚██╗ ██╔╝██╔══██║██║   ██║"),
	ansi.Paint(ansi.Banner, "╚██████╗  ╚████╔╝ ██║  ██║╚██████╔╝"),
	ansi.Paint(ansi.Banner, " ╚═════╝   ╚═══╝  ╚═╝  ╚═╝ ╚═════╝ "),
}
