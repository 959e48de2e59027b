package termio

import (
	"bufio"
	"io"
	"unicode"
	"unicode/utf8"

	"pkt.systems/agentnexus/core"
)

// ReadKeys decodes raw terminal input from r into controller events and sends
// them to out. It closes out when r returns an error or EOF.
func ReadKeys(r io.Reader, out chan<- core.Event) {
	defer close(out)
	br := bufio.NewReader(r)
	lastWasCR := false
	for {
		b, err := br.ReadByte()
		if err != nil {
			return
		}
		if lastWasCR {
			lastWasCR = false
			if b == '\n' {
				continue
			}
		}
		switch {
		case b == 0x1b:
			readEscape(br, out)
		case b == '\r':
			out <- core.Key(core.EventEnter)
			lastWasCR = true
		case b == '\n':
			out <- core.Key(core.EventEnter)
		case b == 0x7f || b == 0x08:
			out <- core.Key(core.EventBackspace)
		case b == '\t':
			out <- core.Key(core.EventTab)
		case b < 0x20:
			// ^A..^Z arrive as 0x01..0x1a.
			if b >= 0x01 && b <= 0x1a {
				out <- core.Ctrl(rune(b) + 'a' - 1)
			} else {
				out <- core.Key(core.EventUnknown)
			}
		case b < utf8.RuneSelf:
			out <- core.Char(rune(b))
		default:
			_ = br.UnreadByte()
			rn, size, err := br.ReadRune()
			if err != nil {
				return
			}
			if rn == utf8.RuneError && size == 1 {
				continue
			}
			out <- core.Char(rn)
		}
	}
}

func readEscape(br *bufio.Reader, out chan<- core.Event) {
	b, err := br.ReadByte()
	if err != nil {
		return
	}
	switch {
	case b == '[':
		readCSI(br, out)
	case b == 'O':
		readSS3(br, out)
	case b >= 0x20 && b < utf8.RuneSelf:
		out <- core.Alt(rune(b))
	default:
		out <- core.Key(core.EventUnknown)
	}
}

func readCSI(br *bufio.Reader, out chan<- core.Event) {
	seq := []byte{}
	for {
		b, err := br.ReadByte()
		if err != nil {
			return
		}
		seq = append(seq, b)
		if b == '~' || unicode.IsLetter(rune(b)) {
			break
		}
		if len(seq) > 8 {
			return
		}
	}
	switch string(seq) {
	case "A":
		out <- core.Key(core.EventUp)
	case "B":
		out <- core.Key(core.EventDown)
	default:
		out <- core.Key(core.EventUnknown)
	}
}

// readSS3 handles application cursor mode, where arrows arrive as ESC O A/B.
func readSS3(br *bufio.Reader, out chan<- core.Event) {
	b, err := br.ReadByte()
	if err != nil {
		return
	}
	switch b {
	case 'A':
		out <- core.Key(core.EventUp)
	case 'B':
		out <- core.Key(core.EventDown)
	default:
		out <- core.Key(core.EventUnknown)
	}
}
