package core

import (
	"strings"
	"unicode/utf8"
)

// KnownCommands is the default completion candidate set, in listing order.
var KnownCommands = []string{"help", "connect", "status", "clear", "export", "/intersession"}

// CompletionKind describes the outcome of a tab completion.
type CompletionKind int

const (
	// CompletionNone means no candidate starts with the buffer.
	CompletionNone CompletionKind = iota
	// CompletionExtend means the buffer grows to Completion.Text.
	CompletionExtend
	// CompletionList means the candidates share nothing beyond the buffer.
	CompletionList
)

// Completion is the result of Complete.
type Completion struct {
	Kind    CompletionKind
	Text    string
	Matches []string
}

// Complete resolves tab completion of buffer against commands using a
// case-sensitive prefix match.
func Complete(commands []string, buffer string) Completion {
	matches := Matches(commands, buffer)
	switch len(matches) {
	case 0:
		return Completion{Kind: CompletionNone}
	case 1:
		return Completion{Kind: CompletionExtend, Text: matches[0], Matches: matches}
	}
	prefix := LongestCommonPrefix(matches)
	if len(prefix) > len(buffer) {
		return Completion{Kind: CompletionExtend, Text: prefix, Matches: matches}
	}
	return Completion{Kind: CompletionList, Text: buffer, Matches: matches}
}

// Matches returns the commands that start with prefix, preserving order.
func Matches(commands []string, prefix string) []string {
	var out []string
	for _, cmd := range commands {
		if strings.HasPrefix(cmd, prefix) {
			out = append(out, cmd)
		}
	}
	return out
}

// LongestCommonPrefix returns the longest prefix shared by all values.
func LongestCommonPrefix(values []string) string {
	if len(values) == 0 {
		return ""
	}
	prefix := values[0]
	for _, value := range values[1:] {
		n := 0
		for n < len(prefix) && n < len(value) && prefix[n] == value[n] {
			n++
		}
		prefix = prefix[:n]
	}
	// A byte-wise prefix can end inside a multi-byte rune.
	for len(prefix) > 0 && !utf8.ValidString(prefix) {
		prefix = prefix[:len(prefix)-1]
	}
	return prefix
}
