package markup

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateWordBoundary(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"no cut when short", "hello world", 50, "hello world"},
		{"no cut at exact length", "hello", 5, "hello"},
		{"backs up to space", "hello wonderful world", 10, "hello..."},
		{"trailing whitespace trimmed", "one two  three", 8, "one two..."},
		{"newline counts as boundary", "one\ntwo three", 6, "one..."},
		{"zero max means no cut", "anything at all", 0, "anything at all"},
		{"single long word stays whole", "supercalifragilistic", 5, "supercalifragilistic"},
		{"leading long word stays whole", "supercalifragilistic and more", 5, "supercalifragilistic..."},
		{"leading space then long word", " supercalifragilistic", 3, " supercalifragilistic"},
		{"negative max means no cut", "anything", -5, "anything"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			if got := Truncate(c.in, c.max); got != c.want {
				t.Fatalf("Truncate(%q, %d) = %q, want %q", c.in, c.max, got, c.want)
			}
		})
	}
}

func TestTruncateNeverSplitsWords(t *testing.T) {
	t.Parallel()

	in := "the quick brown fox jumps over the lazy dog"
	words := strings.Fields(in)

	for max := 4; max < utf8.RuneCountInString(in); max++ {
		out := Truncate(in, max)
		body := strings.TrimSuffix(out, "...")
		if body == "" {
			continue
		}
		// every word in the output must be a whole word of the input
		for _, w := range strings.Fields(body) {
			found := false
			for _, orig := range words {
				if w == orig {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("max %d split a word: %q in output %q", max, w, out)
			}
		}
	}
}

func TestTruncateMultibyte(t *testing.T) {
	t.Parallel()

	// rune counting, not byte counting
	in := "héllo wörld ünïcode text"
	out := Truncate(in, 12)
	if !strings.HasSuffix(out, "...") {
		t.Fatalf("expected ellipsis: %q", out)
	}
	if !utf8.ValidString(out) {
		t.Fatalf("invalid utf8: %q", out)
	}
}
