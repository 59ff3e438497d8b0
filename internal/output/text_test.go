package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		max      int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is long", 8, "this ..."},
		{"abcdef", 3, "abc"},
		{"abc", 0, ""},
		{"日本語テキスト", 7, "日本..."},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Truncate(tt.input, tt.max)
			if got != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.expected)
			}
			if w := runewidth.StringWidth(got); w > tt.max && tt.max > 0 {
				t.Errorf("result width %d exceeds %d", w, tt.max)
			}
		})
	}
}

func TestTableRender(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, "ID", "NAME")
	table.AddRow("1", "alpha")
	table.AddRow("22", "b")
	if err := table.Render(); err != nil {
		t.Fatal(err)
	}

	want := "  ID  NAME\n" +
		"  --  -----\n" +
		"  1   alpha\n" +
		"  22  b\n"
	if buf.String() != want {
		t.Errorf("Render() =\n%q\nwant\n%q", buf.String(), want)
	}
	if table.Len() != 2 {
		t.Errorf("Len() = %d", table.Len())
	}
}

func TestTableMaxWidth(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, "ID", "NAME", "STATUS")
	table.AddRow("1", strings.Repeat("x", 40), "DONE")
	table.SetMaxWidth(30, 1)
	if err := table.Render(); err != nil {
		t.Fatal(err)
	}

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if w := runewidth.StringWidth(line); w > 30 {
			t.Errorf("line %q is %d cells wide", line, w)
		}
	}
	if !strings.Contains(buf.String(), "...") {
		t.Error("expected truncated name")
	}
}

func TestTableWideRunes(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, "A", "B")
	table.AddRow("日本", "x")
	table.AddRow("ab", "y")
	if err := table.Render(); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(buf.String(), "\n")
	if runewidth.StringWidth(lines[2]) != runewidth.StringWidth(lines[3]) {
		t.Errorf("columns misaligned:\n%s", buf.String())
	}
}

func TestFirstLine(t *testing.T) {
	if got := FirstLine("\n\n  # Title  \nrest"); got != "# Title" {
		t.Errorf("FirstLine() = %q", got)
	}
	if got := FirstLine("   \n"); got != "" {
		t.Errorf("FirstLine(blank) = %q", got)
	}
}

func TestCountStr(t *testing.T) {
	if got := CountStr(1, "session", "sessions"); got != "1 session" {
		t.Errorf("got %q", got)
	}
	if got := CountStr(3, "session", "sessions"); got != "3 sessions" {
		t.Errorf("got %q", got)
	}
}

func TestColorProfile(t *testing.T) {
	var buf bytes.Buffer
	if p := ColorProfile("auto", &buf); p != termenv.Ascii {
		t.Errorf("auto on a buffer = %v, want Ascii", p)
	}
	if p := ColorProfile("never", &buf); p != termenv.Ascii {
		t.Errorf("never = %v", p)
	}
	if p := ColorProfile("always", &buf); p == termenv.Ascii {
		t.Error("always should enable color")
	}
	if Width(&buf, 42) != 42 {
		t.Error("Width of a buffer should be the fallback")
	}
	if IsTerminal(&buf) {
		t.Error("buffer is not a terminal")
	}
}
