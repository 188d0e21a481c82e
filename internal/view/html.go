package view

import (
	"fmt"
	"html"
	"html/template"
	"strings"
)

// builder accumulates escaped HTML fragments.
type builder struct {
	strings.Builder
}

func (b *builder) raw(s string) {
	b.WriteString(s)
}

// text writes escaped text content.
func (b *builder) text(s string) {
	b.WriteString(html.EscapeString(s))
}

// textf writes escaped formatted text.
func (b *builder) textf(format string, args ...any) {
	b.text(fmt.Sprintf(format, args...))
}

// attr escapes an attribute value.
func attr(s string) string {
	return html.EscapeString(s)
}

func (b *builder) html() template.HTML {
	return template.HTML(b.String())
}

// peekBadge renders a compact entity preview badge.
func (b *builder) peekBadge(icon, text string) {
	b.raw(`<span class="badge badge-peek"><span class="icon icon-` + attr(icon) + `"></span>`)
	b.text(text)
	b.raw(`</span>`)
}
