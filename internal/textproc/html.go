package textproc

import (
	"strings"

	"golang.org/x/net/html"
)

// CleanHTML strips markup from an email body and returns plain text,
// one line per block of text. Non-HTML input passes through with
// whitespace normalized. Script and style contents are dropped.
func CleanHTML(raw string) string {
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "<") {
		return normalizeWhitespace(raw)
	}

	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return normalizeWhitespace(raw)
	}

	var b strings.Builder
	collectText(doc, &b)
	return normalizeWhitespace(b.String())
}

func collectText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text != "" {
			b.WriteString(text)
			b.WriteString("\n")
		}
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

// normalizeWhitespace collapses runs of spaces and blank lines.
func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		for strings.Contains(line, "  ") {
			line = strings.ReplaceAll(line, "  ", " ")
		}
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")

	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(s)
}
