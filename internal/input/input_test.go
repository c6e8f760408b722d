package input

import (
	"bytes"
	"testing"
	"time"
)

func TestFeedKeys(t *testing.T) {
	var s Stream
	now := time.Now()

	in := s.Feed([]byte("\x1b[A\x1b[Dr q"), now)
	if !in.Up || !in.Left || !in.Replay || !in.Space || !in.Quit {
		t.Errorf("input = %+v", in)
	}
	if in.Escape {
		t.Error("arrow keys reported as escape")
	}
	if in.Right || in.Down {
		t.Errorf("unexpected keys: %+v", in)
	}

	// Keys stay held briefly, then release.
	if in := s.Feed(nil, now.Add(10*time.Millisecond)); !in.Up {
		t.Error("up released too early")
	}
	if in := s.Feed(nil, now.Add(holdFor)); in.Up {
		t.Error("up still held")
	}
}

func TestFeedMouse(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		clicks []Click
		escape bool
	}{
		{name: "left press", in: "\x1b[<0;12;7M", clicks: []Click{{Col: 12, Row: 7}}},
		{name: "release ignored", in: "\x1b[<0;12;7m"},
		{name: "right button ignored", in: "\x1b[<2;3;4M"},
		{name: "wheel ignored", in: "\x1b[<64;3;4M"},
		{name: "drag ignored", in: "\x1b[<32;3;4M"},
		{name: "press and release", in: "\x1b[<0;1;2M\x1b[<0;1;2m\x1b[<0;100;40M", clicks: []Click{{Col: 1, Row: 2}, {Col: 100, Row: 40}}},
		{name: "truncated", in: "\x1b[<0;12", escape: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Stream
			now := time.Now()
			in := s.Feed([]byte(tt.in), now)
			if len(in.Clicks) != len(tt.clicks) {
				t.Fatalf("clicks = %+v, want %+v", in.Clicks, tt.clicks)
			}
			for i, c := range tt.clicks {
				got := in.Clicks[i]
				if got.Col != c.Col || got.Row != c.Row || !got.At.Equal(now) {
					t.Errorf("click %d = %+v, want %+v", i, got, c)
				}
			}
			if in.Escape != tt.escape {
				t.Errorf("escape = %v, want %v", in.Escape, tt.escape)
			}
		})
	}
}

func TestMouseKeysMixed(t *testing.T) {
	var s Stream
	in := s.Feed([]byte("a\x1b[<0;5;6Md"), time.Now())
	if !in.Left || !in.Right || len(in.Clicks) != 1 {
		t.Errorf("input = %+v", in)
	}
}

func TestTapped(t *testing.T) {
	var s Stream
	now := time.Now()
	in := s.Feed([]byte("r\x1b[<0;5;6M"), now)
	if !in.Tapped('r', 'R') {
		t.Error("r not tapped")
	}
	if in.Tapped(' ') {
		t.Error("space tapped")
	}
	// Held keys do not repeat as taps.
	if in := s.Feed(nil, now.Add(time.Millisecond)); !in.Replay || in.Tapped('r') {
		t.Errorf("second frame: held=%v tapped=%v", in.Replay, in.Tapped('r'))
	}
}

func TestWriteMouseMode(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMouseMode(&buf, true); err != nil {
		t.Fatal(err)
	}
	if buf.String() != EnableMouse {
		t.Errorf("enable = %q", buf.String())
	}
	buf.Reset()
	if err := WriteMouseMode(&buf, false); err != nil {
		t.Fatal(err)
	}
	if buf.String() != DisableMouse {
		t.Errorf("disable = %q", buf.String())
	}
}
