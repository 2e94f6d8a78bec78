// Package markup splits the inline emphasis used in descriptions into
// styled spans. Only **bold** and *italic* are recognised; everything else
// is plain text.
package markup

import (
	"regexp"
	"strings"
)

// Style of a span.
type Style int

const (
	Plain Style = iota
	Bold
	Italic
)

// Span is a run of text in one style. Text excludes the asterisks.
type Span struct {
	Text  string
	Style Style
}

// Tokens are matched left to right, shortest first, bold before italic.
var token = regexp.MustCompile(`\*\*.*?\*\*|\*.*?\*`)

// Split returns the spans of text in order. Empty plain runs are dropped.
func Split(text string) []Span {
	var spans []Span
	last := 0
	for _, loc := range token.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			spans = append(spans, Span{Text: text[last:loc[0]]})
		}
		spans = append(spans, classify(text[loc[0]:loc[1]]))
		last = loc[1]
	}
	if last < len(text) {
		spans = append(spans, Span{Text: text[last:]})
	}
	return spans
}

func classify(tok string) Span {
	if len(tok) >= 4 && strings.HasPrefix(tok, "**") && strings.HasSuffix(tok, "**") {
		return Span{Text: tok[2 : len(tok)-2], Style: Bold}
	}
	return Span{Text: tok[1 : len(tok)-1], Style: Italic}
}

// Strip returns text with the emphasis markers removed.
func Strip(text string) string {
	var b strings.Builder
	for _, s := range Split(text) {
		b.WriteString(s.Text)
	}
	return b.String()
}
