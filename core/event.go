package core

// EventKind identifies an input the controller reacts to.
type EventKind int

const (
	// EventRune is a character key, possibly with modifiers held.
	EventRune EventKind = iota
	EventEnter
	EventBackspace
	EventUp
	EventDown
	EventTab
	// EventUnknown is a key the decoder recognised but the controller ignores.
	EventUnknown
	// EventCommandDone reports that the in-flight command finished.
	EventCommandDone
)

func (k EventKind) String() string {
	switch k {
	case EventRune:
		return "rune"
	case EventEnter:
		return "enter"
	case EventBackspace:
		return "backspace"
	case EventUp:
		return "up"
	case EventDown:
		return "down"
	case EventTab:
		return "tab"
	case EventCommandDone:
		return "command-done"
	default:
		return "unknown"
	}
}

// Modifiers records the modifier keys held with a key press.
type Modifiers struct {
	Alt  bool
	Ctrl bool
	Meta bool
}

// Any reports whether any modifier is held.
func (m Modifiers) Any() bool {
	return m.Alt || m.Ctrl || m.Meta
}

// Event is one input to Step.
type Event struct {
	Kind EventKind
	Rune rune
	Mod  Modifiers
	// Err is the command outcome carried by EventCommandDone.
	Err error
}

// Key returns a key event of the given kind.
func Key(kind EventKind) Event {
	return Event{Kind: kind}
}

// Char returns an unmodified character event.
func Char(r rune) Event {
	return Event{Kind: EventRune, Rune: r}
}

// Ctrl returns a character event with ctrl held.
func Ctrl(r rune) Event {
	return Event{Kind: EventRune, Rune: r, Mod: Modifiers{Ctrl: true}}
}

// Alt returns a character event with alt held.
func Alt(r rune) Event {
	return Event{Kind: EventRune, Rune: r, Mod: Modifiers{Alt: true}}
}

// Done returns the completion event for a command that returned err.
func Done(err error) Event {
	return Event{Kind: EventCommandDone, Err: err}
}
