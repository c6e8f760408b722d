// Package input turns raw terminal bytes into per-frame key state and mouse clicks.
package input

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"time"
)

// holdFor is how long a key counts as down after its last byte arrived.
const holdFor = 30 * time.Millisecond

// Mouse reporting control sequences: button events with SGR extended coordinates.
const (
	EnableMouse  = "\033[?1000h\033[?1006h"
	DisableMouse = "\033[?1006l\033[?1000l"
)

// Click is a left-button press reported by the terminal. Col and Row are 1-based.
type Click struct {
	Col, Row int
	At       time.Time
}

// Input is one frame of input. The key flags stay true for a short hold after
// each press so that auto-repeat reads as a held key.
type Input struct {
	Quit    bool
	Left    bool
	Right   bool
	Up      bool
	Down    bool
	Space   bool
	Enter   bool
	Escape  bool
	Replay  bool
	Clicks  []Click
	Pressed []byte // Raw bytes of this frame
}

type key int

const (
	keyQuit key = iota
	keyLeft
	keyRight
	keyUp
	keyDown
	keySpace
	keyEnter
	keyEscape
	keyReplay
	numKeys
)

// Stream receives terminal bytes from a reader goroutine and remembers when
// each key was last seen.
type Stream struct {
	ch       chan byte
	lastSeen [numKeys]time.Time
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput takes whatever bytes have arrived without blocking.
func ReadInput(s *Stream) Input {
	var buf []byte
drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}
	return s.Feed(buf, time.Now())
}

// Feed parses buf as if it arrived at now and returns the resulting input.
// Arrow keys and SGR mouse reports are recognized; everything else is handled
// byte by byte.
func (s *Stream) Feed(buf []byte, now time.Time) Input {
	var clicks []Click
	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			switch buf[i+2] {
			case 'A', 'B', 'C', 'D':
				s.lastSeen[arrowKeys[buf[i+2]-'A']] = now
				i += 2
				continue
			case '<':
				click, n, ok := parseSGRMouse(buf[i+3:])
				if n > 0 {
					if ok {
						click.At = now
						clicks = append(clicks, click)
					}
					i += 2 + n
					continue
				}
			}
		}

		if k, ok := keyFor(b); ok {
			s.lastSeen[k] = now
		}
	}

	held := func(k key) bool { return now.Sub(s.lastSeen[k]) < holdFor }
	return Input{
		Quit:    held(keyQuit),
		Left:    held(keyLeft),
		Right:   held(keyRight),
		Up:      held(keyUp),
		Down:    held(keyDown),
		Space:   held(keySpace),
		Enter:   held(keyEnter),
		Escape:  held(keyEscape),
		Replay:  held(keyReplay),
		Clicks:  clicks,
		Pressed: buf,
	}
}

// arrowKeys maps the final byte of ESC [ A..D to a key.
var arrowKeys = [4]key{keyUp, keyDown, keyRight, keyLeft}

// Tapped reports whether any of keys arrived this frame. Unlike the held
// flags it is true for exactly one frame per key press.
func (in Input) Tapped(keys ...byte) bool {
	return bytes.ContainsAny(in.Pressed, string(keys))
}

// parseSGRMouse parses "b;col;row" followed by 'M' (press) or 'm' (release).
// It returns the number of bytes consumed, zero if buf does not hold a
// complete report, and whether the report is a left-button press.
func parseSGRMouse(buf []byte) (Click, int, bool) {
	var fields [3]int
	field, start := 0, 0
	for i, b := range buf {
		switch {
		case b >= '0' && b <= '9':
			continue
		case b == ';' && field < 2:
			v, err := strconv.Atoi(string(buf[start:i]))
			if err != nil {
				return Click{}, 0, false
			}
			fields[field] = v
			field++
			start = i + 1
		case (b == 'M' || b == 'm') && field == 2:
			v, err := strconv.Atoi(string(buf[start:i]))
			if err != nil {
				return Click{}, 0, false
			}
			fields[2] = v
			button := fields[0]
			// Low bits select the button; 32 marks motion and 64 the wheel.
			press := b == 'M' && button&3 == 0 && button&(32|64) == 0
			return Click{Col: fields[1], Row: fields[2]}, i + 1, press
		default:
			return Click{}, 0, false
		}
	}
	return Click{}, 0, false
}

// keyFor maps a plain byte to a key. Letters follow WASD and vi layouts.
func keyFor(b byte) (key, bool) {
	switch b {
	case 'q', 'Q':
		return keyQuit, true
	case 'a', 'A', 'h', 'H':
		return keyLeft, true
	case 'd', 'D', 'l', 'L':
		return keyRight, true
	case 'w', 'W', 'k', 'K':
		return keyUp, true
	case 's', 'S', 'j', 'J':
		return keyDown, true
	case 'r', 'R':
		return keyReplay, true
	case ' ':
		return keySpace, true
	case '\n', '\r':
		return keyEnter, true
	case '\x1b':
		return keyEscape, true
	}
	return 0, false
}

// WriteMouseMode enables or disables mouse reporting on w.
func WriteMouseMode(w io.Writer, enabled bool) error {
	seq := DisableMouse
	if enabled {
		seq = EnableMouse
	}
	_, err := io.WriteString(w, seq)
	return err
}
