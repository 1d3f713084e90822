// Package sanitize neutralizes untrusted strings before they are rendered.
//
// Domain names and favicon URLs come from visited sites, so both paths fail
// closed: text is escaped unconditionally and a favicon URL is only used when
// its scheme is on an explicit allow-list.
package sanitize

import (
	"net/url"
	"strings"
	"unicode"
)

// Placeholder is shown in place of a rejected or missing favicon.
const Placeholder = "🌐"

// allowedSchemes are the only favicon URL schemes that may be rendered.
var allowedSchemes = map[string]bool{
	"chrome-extension": true,
	"https":            true,
}

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&#34;",
	"'", "&#39;",
	"`", "&#96;",
	"\x00", "\uFFFD",
)

// EscapeText escapes s for use as HTML text or a quoted attribute value.
func EscapeText(s string) string {
	return htmlReplacer.Replace(s)
}

// FaviconURL returns raw and true when it is an absolute URL with an allowed
// scheme and a host. Empty, unparseable and disallowed URLs return "" and
// false, as do authority-less forms like "https:example.com".
func FaviconURL(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return "", false
	}
	if !allowedSchemes[strings.ToLower(u.Scheme)] {
		return "", false
	}
	if u.Host == "" {
		return "", false
	}
	return raw, true
}

// TerminalText drops control, zero-width and bidi override characters so a
// domain cannot carry terminal escape sequences into text output.
func TerminalText(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == '\u200b' || (r >= '\u202a' && r <= '\u202e') || (r >= '\u2066' && r <= '\u2069') {
			return -1
		}
		return r
	}, s)
}
