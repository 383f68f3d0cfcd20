package upnp

import "strings"

// The order matters: &amp; must be replaced last, otherwise "&amp;lt;"
// would become "&lt;" and then "<".
var unescaper = []struct{ entity, char string }{
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&apos;", "'"},
	{"&amp;", "&"},
}

// Unescape decodes the five predefined XML entities in one fixed-order pass.
// Numeric character references are left untouched; the protocol never
// produces them.
func Unescape(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	for _, e := range unescaper {
		s = strings.ReplaceAll(s, e.entity, e.char)
	}
	return s
}
