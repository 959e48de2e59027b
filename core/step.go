package core

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"pkt.systems/agentnexus/internal/ansi"
)

// UnexpectedErrorLine is written when a command fails internally.
var UnexpectedErrorLine = ansi.Paint(ansi.Error, "An unexpected error occurred.")

// Step applies ev to s and returns the next state with the effects to perform.
// While a command is in flight every key event is ignored; only
// EventCommandDone is accepted.
func Step(s State, ev Event) (State, []Effect) {
	if ev.Kind == EventCommandDone {
		return s.finish(ev.Err)
	}
	if s.Locked {
		return s, nil
	}
	switch ev.Kind {
	case EventEnter:
		return s.submit()
	case EventBackspace:
		return s.backspace()
	case EventUp:
		return s.historyUp()
	case EventDown:
		return s.historyDown()
	case EventTab:
		return s.complete()
	case EventRune:
		return s.insert(ev)
	}
	return s, nil
}

func (s State) insert(ev Event) (State, []Effect) {
	if ev.Mod.Ctrl && !ev.Mod.Alt && !ev.Mod.Meta && ev.Rune == 'd' && s.Buffer == "" {
		return s, []Effect{{Kind: EffectExit}}
	}
	if ev.Mod.Any() || !unicode.IsPrint(ev.Rune) {
		return s, nil
	}
	text := string(ev.Rune)
	s.Buffer += text
	return s, []Effect{write(text)}
}

func (s State) backspace() (State, []Effect) {
	if s.Buffer == "" {
		return s, nil
	}
	_, size := utf8.DecodeLastRuneInString(s.Buffer)
	s.Buffer = s.Buffer[:len(s.Buffer)-size]
	return s, []Effect{write(ansi.EraseBack)}
}

func (s State) submit() (State, []Effect) {
	if s.Blank() {
		return s, []Effect{write("\r\n"), s.prompt()}
	}
	line := s.Buffer
	s.History = appendHistory(s.History, line, s.HistoryMax)
	s.Cursor = len(s.History)
	s.Buffer = ""
	s.Locked = true
	return s, []Effect{write("\r\n"), {Kind: EffectExecute, Text: line}}
}

func (s State) finish(err error) (State, []Effect) {
	if !s.Locked {
		return s, nil
	}
	s.Locked = false
	if err != nil {
		return s, []Effect{writeln(UnexpectedErrorLine), s.prompt()}
	}
	return s, []Effect{s.prompt()}
}

func (s State) historyUp() (State, []Effect) {
	if s.Cursor <= 0 {
		return s, nil
	}
	s.Cursor--
	if s.Cursor >= len(s.History) {
		s.Cursor = len(s.History) - 1
	}
	s.Buffer = s.History[s.Cursor]
	return s, []Effect{s.redrawLine(s.Buffer)}
}

func (s State) historyDown() (State, []Effect) {
	if s.Cursor < len(s.History)-1 {
		s.Cursor++
		s.Buffer = s.History[s.Cursor]
		return s, []Effect{s.redrawLine(s.Buffer)}
	}
	s.Cursor = len(s.History)
	s.Buffer = ""
	return s, []Effect{s.redrawLine("")}
}

func (s State) complete() (State, []Effect) {
	c := Complete(s.Commands, s.Buffer)
	switch c.Kind {
	case CompletionExtend:
		delta := strings.TrimPrefix(c.Text, s.Buffer)
		s.Buffer = c.Text
		return s, []Effect{write(delta)}
	case CompletionList:
		listed := make([]string, 0, len(c.Matches))
		for _, m := range c.Matches {
			listed = append(listed, ansi.Paint(ansi.Command, m))
		}
		effects := []Effect{writeln("\r\n" + strings.Join(listed, "   ")), s.prompt()}
		if s.Buffer != "" {
			effects = append(effects, write(s.Buffer))
		}
		return s, effects
	}
	return s, nil
}
