// internal/app/system/htmlsanitize/htmlsanitize.go
//
// Package htmlsanitize cleans user-authored rich text before it is
// persisted. Member bios accept a limited HTML subset; everything else
// entered by users is treated as plain text.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// richPolicy allows the formatting a bio editor produces: text
	// styling, lists, headings, links, and simple tables.
	richPolicy = func() *bluemonday.Policy {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "th", "td", "p", "span")
		p.AllowAttrs("colspan", "rowspan").OnElements("th", "td")
		p.AllowElements("u", "s", "sub", "sup", "mark")
		return p
	}()

	strictPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans rich text, keeping the allowed formatting subset and
// stripping scripts, event handlers, and embedded frames.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return richPolicy.Sanitize(s)
}

// StripTags removes all markup, returning plain text. Used for fields
// that must never carry HTML, like relationship labels.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}

// IsPlainText reports whether s contains no markup at all.
func IsPlainText(s string) bool {
	return !strings.Contains(s, "<") || !strings.Contains(s, ">")
}
