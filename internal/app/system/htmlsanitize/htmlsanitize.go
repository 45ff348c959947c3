// Package htmlsanitize cleans user-authored rich text before it is stored.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// policy allows the formatting an announcement editor produces: headings,
// lists, links, images, code and tables. Scripts, event handlers, frames and
// forms are removed.
var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("u", "s", "sub", "sup", "mark")
	p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tfoot", "tr", "th", "td")
	p.AllowStyles("width", "text-align", "vertical-align").OnElements("table", "th", "td")
	return p
}

// Sanitize returns s with everything outside the policy stripped.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}

// IsPlainText reports whether s holds no markup at all.
func IsPlainText(s string) bool {
	return !(strings.Contains(s, "<") && strings.Contains(s, ">"))
}

// Content prepares stored rich text: surrounding space is trimmed and markup,
// when present, is sanitized. Plain text is kept verbatim so characters such
// as "&" are not entity-encoded.
func Content(s string) string {
	s = strings.TrimSpace(s)
	if IsPlainText(s) {
		return s
	}
	return Sanitize(s)
}
