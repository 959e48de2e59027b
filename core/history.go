package core

import "pkt.systems/agentnexus/schema"

const defaultHistoryMax = schema.DefaultHistoryMax

// appendHistory returns entries with entry appended, keeping at most max of the
// newest entries. The input slice is never mutated.
func appendHistory(entries []string, entry string, max int) []string {
	if max <= 0 {
		max = defaultHistoryMax
	}
	out := append(entries[:len(entries):len(entries)], entry)
	if len(out) > max {
		out = out[len(out)-max:]
	}
	return out
}
