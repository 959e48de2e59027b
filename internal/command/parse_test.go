package command

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		input     string
		name      string
		args      int
		remainder string
	}{
		{"help", "help", 0, ""},
		{"  connect   LYRA  ", "connect", 1, "LYRA"},
		{"export a b", "export", 2, "a b"},
		{"connect LYRA  KARA", "connect", 2, "LYRA  KARA"},
		{"Help", "Help", 0, ""},
		{"   ", "", 0, ""},
	}
	for _, tc := range cases {
		cmd := Parse(tc.input)
		if cmd.Name != tc.name || len(cmd.Args) != tc.args || cmd.Remainder != tc.remainder {
			t.Fatalf("Parse(%q) = %+v", tc.input, cmd)
		}
		if cmd.Raw != tc.input {
			t.Fatalf("expected raw %q, got %q", tc.input, cmd.Raw)
		}
	}
}
