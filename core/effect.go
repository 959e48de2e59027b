package core

// EffectKind identifies an action the adapter must perform.
type EffectKind int

const (
	// EffectWrite writes Text to the display without a newline.
	EffectWrite EffectKind = iota
	// EffectWriteln writes Text followed by a line break.
	EffectWriteln
	// EffectExecute runs Text through the command interpreter.
	// The adapter must answer with exactly one EventCommandDone.
	EffectExecute
	// EffectExit ends the session.
	EffectExit
)

func (k EffectKind) String() string {
	switch k {
	case EffectWrite:
		return "write"
	case EffectWriteln:
		return "writeln"
	case EffectExecute:
		return "execute"
	case EffectExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Effect is one side effect produced by Step.
type Effect struct {
	Kind EffectKind
	Text string
}

func write(text string) Effect {
	return Effect{Kind: EffectWrite, Text: text}
}

func writeln(text string) Effect {
	return Effect{Kind: EffectWriteln, Text: text}
}
