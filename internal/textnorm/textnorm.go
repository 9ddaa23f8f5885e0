// Package textnorm sanitizes fetched file bodies before assembly. Remote
// repositories contain files in arbitrary states: UTF-8 with a leading BOM,
// stray bytes from other encodings, truncated multi-byte sequences. The
// assembled bundle must be one valid UTF-8 stream, so every body passes
// through here exactly once.
package textnorm

import (
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// String returns s as valid UTF-8: a leading byte order mark is stripped and
// ill-formed sequences are replaced with U+FFFD. Valid input comes back
// unchanged.
func String(s string) string {
	out, _, err := transform.String(unicode.UTF8BOM.NewDecoder(), s)
	if err != nil {
		// The replacement decoder does not fail on malformed input; treat a
		// transform error as pass-through rather than dropping the body.
		return s
	}
	return out
}
