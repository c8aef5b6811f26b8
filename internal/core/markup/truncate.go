package markup

import (
	"strings"
	"unicode/utf8"
)

const ellipsis = "..."

// Truncate cuts s at max runes, then backs up to the preceding whitespace
// boundary before appending an ellipsis. It never splits mid-word: a word
// longer than the window is kept whole before the cut.
// max <= 0 or s within budget returns s unchanged
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}

	runes := []rune(s)
	cut := runes[:max]

	// back up to the last whitespace so the final word stays whole
	boundary := -1
	for i := len(cut) - 1; i >= 0; i-- {
		if isSpace(cut[i]) {
			boundary = i
			break
		}
	}
	if boundary > 0 {
		cut = cut[:boundary]
	} else {
		// no boundary inside the window: keep the word whole and cut after it
		end := max
		for end < len(runes) && !isSpace(runes[end]) {
			end++
		}
		if end == len(runes) {
			return s
		}
		cut = runes[:end]
	}

	return strings.TrimRight(string(cut), " \t\n") + ellipsis
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n'
}
