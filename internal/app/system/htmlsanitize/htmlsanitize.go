// Package htmlsanitize cleans user-supplied text before it is stored or
// rendered. Booking notes come from customers through the public booking
// site and may contain markup; admin display names must never contain any.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	notesPolicy = bluemonday.UGCPolicy()
	strict      = bluemonday.StrictPolicy()
)

// Sanitize keeps basic formatting (paragraphs, lists, links) and removes
// scripts, event handlers, iframes and style blocks.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return notesPolicy.Sanitize(s)
}

// SanitizeToHTML is Sanitize for direct use in templates.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// PlainText strips every tag and trims surrounding space. The result is
// unescaped text; templates escape it again on output.
func PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
