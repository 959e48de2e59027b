package ansi

// SGR sequences used by the CUAG terminal palette.
const (
	Reset    = "\x1b[0m"
	Prompt   = "\x1b[36m"
	Command  = "\x1b[33m"
	Argument = "\x1b[37m"
	Success  = "\x1b[32m"
	Error    = "\x1b[31m"
	Info     = "\x1b[1;34m"
	Meta     = "\x1b[90m"
	Agent    = "\x1b[1;35m"
	Banner   = "\x1b[1;32m"
)

// Cursor and screen control.
const (
	ClearLine   = "\x1b[2K"
	ClearScreen = "\x1b[H\x1b[2J"
	// EraseBack moves left, blanks the cell, and moves left again.
	EraseBack = "\b \b"
)

// Paint wraps text in the given color and a trailing reset.
func Paint(color, text string) string {
	return color + text + Reset
}
