package message

import (
	"fmt"
	"html"
	"strings"
)

// Dialect is the markup interpreted by the destination client.
type Dialect interface {
	// Mode is the name of the dialect understood by the Bot API.
	Mode() string
	Escape(s string) string
	Render(icon, title, link, source, summary string) string
	// Repair fixes the tail of a hard-truncated rendering.
	Repair(s string) string
}

// NewDialect returns the dialect for a Bot API parse mode.
func NewDialect(mode string) (Dialect, error) {
	switch mode {
	case "MarkdownV2", "":
		return MarkdownV2{}, nil
	case "HTML":
		return HTML{}, nil
	default:
		return nil, fmt.Errorf("unsupported parse mode '%s'", mode)
	}
}

// MarkdownReserved lists every character MarkdownV2 requires to be escaped.
const MarkdownReserved = "\\_*[]()~`>#+-=|{}.!"

var (
	markdownReplacer    = newEscapeReplacer(MarkdownReserved)
	markdownURLReplacer = newEscapeReplacer("\\)")
)

func newEscapeReplacer(chars string) *strings.Replacer {
	pairs := make([]string, 0, 2*len(chars))
	for _, c := range chars {
		pairs = append(pairs, string(c), "\\"+string(c))
	}
	return strings.NewReplacer(pairs...)
}

type MarkdownV2 struct{}

func (MarkdownV2) Mode() string {
	return "MarkdownV2"
}

// Escape prefixes every reserved character with a backslash in a single pass.
// Already escaped text must not be passed in again.
func (MarkdownV2) Escape(s string) string {
	return markdownReplacer.Replace(s)
}

func (d MarkdownV2) Render(icon, title, link, source, summary string) string {
	return fmt.Sprintf("%s [%s](%s)\n📰 *Source*: %s\n\n%s",
		d.Escape(icon),
		d.Escape(title),
		markdownURLReplacer.Replace(link),
		d.Escape(source),
		d.Escape(summary))
}

// Repair drops a trailing backslash that lost the character it escaped.
func (MarkdownV2) Repair(s string) string {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	if n%2 == 1 {
		return s[:len(s)-1]
	}
	return s
}

type HTML struct{}

func (HTML) Mode() string {
	return "HTML"
}

func (HTML) Escape(s string) string {
	return html.EscapeString(s)
}

func (d HTML) Render(icon, title, link, source, summary string) string {
	return fmt.Sprintf("%s <a href=\"%s\">%s</a>\n📰 <b>Source</b>: %s\n\n%s",
		d.Escape(icon),
		d.Escape(link),
		d.Escape(title),
		d.Escape(source),
		d.Escape(summary))
}

// Repair drops a trailing partial entity or tag.
func (HTML) Repair(s string) string {
	if i := strings.LastIndexByte(s, '&'); i >= 0 && !strings.Contains(s[i:], ";") {
		s = s[:i]
	}
	if i := strings.LastIndexByte(s, '<'); i >= 0 && !strings.Contains(s[i:], ">") {
		s = s[:i]
	}
	return s
}
