package command

import (
	"strings"
)

// Command represents a parsed command line.
type Command struct {
	Name      string
	Args      []string
	Raw       string
	Remainder string
}

// Parse splits a submitted line into a command name and its arguments. The
// name is the first whitespace-delimited token and is matched case-sensitively
// by the interpreter. Raw keeps the line exactly as submitted.
func Parse(input string) Command {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return Command{Raw: input}
	}
	args := []string{}
	if len(fields) > 1 {
		args = fields[1:]
	}
	return Command{
		Name:      fields[0],
		Args:      args,
		Raw:       input,
		Remainder: remainderAfterTokens(input, 1),
	}
}

func remainderAfterTokens(raw string, count int) string {
	i := 0
	remaining := count
	for remaining > 0 && i < len(raw) {
		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		for i < len(raw) && !isSpace(raw[i]) {
			i++
		}
		remaining--
	}
	if i >= len(raw) {
		return ""
	}
	return strings.TrimSpace(raw[i:])
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
