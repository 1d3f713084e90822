package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeText_Script(t *testing.T) {
	got := EscapeText("<script>x</script>")
	assert.NotContains(t, got, "<")
	assert.NotContains(t, got, ">")
	assert.Equal(t, "&lt;script&gt;x&lt;/script&gt;", got)
}

func TestEscapeText_StructuralCharacters(t *testing.T) {
	got := EscapeText(`a&b "c" 'd' ` + "`e`")
	assert.Equal(t, "a&amp;b &#34;c&#34; &#39;d&#39; &#96;e&#96;", got)
}

func TestEscapeText_PlainDomainUnchanged(t *testing.T) {
	assert.Equal(t, "news.ycombinator.com", EscapeText("news.ycombinator.com"))
}

func TestEscapeText_AttributeBreakout(t *testing.T) {
	got := EscapeText(`x" onerror="alert(1)`)
	assert.False(t, strings.Contains(got, `"`), "quotes must not survive: %s", got)
}

func TestFaviconURL(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"https://example.com/f.ico", true},
		{"chrome-extension://abcdefghijklmnop/icons/icon16.png", true},
		{"HTTPS://example.com/f.ico", true},
		{"", false},
		{"javascript:alert(1)", false},
		{"JavaScript:alert(1)", false},
		{"data:image/png;base64,AAAA", false},
		{"http://example.com/f.ico", false},
		{"file:///etc/passwd", false},
		{"vbscript:msgbox", false},
		{"/favicon.ico", false},
		{"//example.com/f.ico", false},
		{"https://exa mple.com/%zz", false},
		{"not a url", false},
	}

	for _, tc := range tests {
		got, ok := FaviconURL(tc.raw)
		assert.Equal(t, tc.want, ok, "url %q", tc.raw)
		if tc.want {
			assert.Equal(t, tc.raw, got)
		} else {
			assert.Empty(t, got, "rejected url %q must map to empty", tc.raw)
		}
	}
}

// URLs without an authority are rejected even when a browser would recover
// a host from them, e.g. "https:example.com".
func TestFaviconURL_RequiresHost(t *testing.T) {
	for _, raw := range []string{
		"https:example.com/f.ico",
		"https:/example.com/f.ico",
		"https:///f.ico",
		"chrome-extension:abcdefghijklmnop/icon.png",
		"chrome-extension:///icon.png",
	} {
		got, ok := FaviconURL(raw)
		assert.False(t, ok, "url %q", raw)
		assert.Empty(t, got, "url %q", raw)
	}
}

func TestTerminalText_StripsEscapes(t *testing.T) {
	got := TerminalText("evil\x1b[31m.com\r\n")
	assert.Equal(t, "evil[31m.com", got)
	assert.NotContains(t, got, "\x1b")
}

func TestTerminalText_StripsBidiOverrides(t *testing.T) {
	got := TerminalText("moc.\u202egood")
	assert.Equal(t, "moc.good", got)
}

func TestTerminalText_KeepsUnicodeDomains(t *testing.T) {
	assert.Equal(t, "bücher.de", TerminalText("bücher.de"))
}
