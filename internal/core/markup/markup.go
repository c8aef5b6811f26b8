// Package markup renders raw course description text into safe structured HTML
// Pipeline order
// 1 Normalize escaped newline sequences to real newlines
// 2 HTML-escape special characters
// 3 Inline emphasis **bold** then *italic* (non-greedy, never across lines)
// 4 Auto-link bare URLs with a safe rel attribute
// 5 Split on blank lines into blocks; bullet blocks become lists,
//   other blocks keep single newlines as soft breaks
package markup

import (
	"html"
	"regexp"
	"strings"
)

// Mode selects the rendering target
type Mode int

const (
	// ModeHTML runs the full pipeline and emits structured markup
	ModeHTML Mode = iota

	// ModePlain skips markup and truncates at a word boundary
	ModePlain
)

// Options configures one Render call
type Options struct {
	Mode Mode

	// MaxLength bounds ModePlain output before the ellipsis; <= 0 means no cut
	MaxLength int
}

var (
	reBold   = regexp.MustCompile(`\*\*([^*\n]+?)\*\*`)
	reItalic = regexp.MustCompile(`\*([^*\n]+?)\*`)
	reURL    = regexp.MustCompile(`https?://[^\s<]+`)

	// bullet markers; '-' and '*' count only when followed by a space
	reBullet = regexp.MustCompile(`^\s*(?:[•●■▪]|[-*] )\s*`)

	reBlank = regexp.MustCompile(`\n\s*\n`)
)

// Render transforms raw description text per opts. It is a pure function:
// same input, same output, no shared state
func Render(raw string, opts Options) string {
	if raw == "" {
		return ""
	}
	if opts.Mode == ModePlain {
		return Truncate(normalizeNewlines(raw), opts.MaxLength)
	}
	return renderHTML(raw)
}

func renderHTML(raw string) string {
	s := normalizeNewlines(raw)
	s = html.EscapeString(s)
	s = reBold.ReplaceAllString(s, "<strong>$1</strong>")
	s = reItalic.ReplaceAllString(s, "<em>$1</em>")
	s = reURL.ReplaceAllString(s, `<a href="$0" rel="nofollow noopener" target="_blank">$0</a>`)

	blocks := splitBlocks(s)
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, renderBlock(b))
	}
	if len(out) == 1 {
		// single block stays unwrapped so marker-free plain text renders to itself
		return out[0]
	}
	wrapped := make([]string, 0, len(out))
	for _, o := range out {
		if strings.HasPrefix(o, "<ul>") {
			wrapped = append(wrapped, o)
		} else {
			wrapped = append(wrapped, "<p>"+o+"</p>")
		}
	}
	return strings.Join(wrapped, "\n")
}

// normalizeNewlines converts escaped newline sequences and CRLF to real newlines
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\\r\\n", "\n")
	s = strings.ReplaceAll(s, "\\n", "\n")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}

// splitBlocks splits on blank-line boundaries, dropping empty blocks
func splitBlocks(s string) []string {
	parts := reBlank.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "\n ")
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{""}
	}
	return out
}

// renderBlock emits a list when the block carries bullet markers,
// otherwise joins single newlines as soft breaks
func renderBlock(b string) string {
	lines := strings.Split(b, "\n")

	bullets := 0
	for _, ln := range lines {
		if reBullet.MatchString(ln) {
			bullets++
		}
	}
	if bullets == 0 {
		return strings.Join(lines, "<br>")
	}

	var sb strings.Builder
	sb.WriteString("<ul>")
	for _, ln := range lines {
		item := reBullet.ReplaceAllString(ln, "")
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		sb.WriteString("<li>")
		sb.WriteString(item)
		sb.WriteString("</li>")
	}
	sb.WriteString("</ul>")
	return sb.String()
}
