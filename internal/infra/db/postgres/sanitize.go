package postgres

import (
	"bytes"
	"strings"
)

var nulEscape = []byte(`\u0000`)

// pgText drops what a TEXT column rejects: NUL bytes and invalid UTF-8.
func pgText(s string) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	return strings.ReplaceAll(s, "\x00", "")
}

func pgTextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := pgText(*s)
	return &v
}

// pgJSON drops the \u0000 escapes JSONB refuses from encoded JSON. An escaped
// backslash followed by "u0000" is plain text and stays.
func pgJSON(b []byte) []byte {
	if len(b) == 0 {
		return b
	}
	b = bytes.ToValidUTF8(b, []byte("\uFFFD"))
	if !bytes.Contains(b, nulEscape) {
		return b
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 == len(b) {
			out = append(out, b[i])
			continue
		}
		if bytes.HasPrefix(b[i:], nulEscape) {
			i += len(nulEscape) - 1
			continue
		}
		out = append(out, b[i], b[i+1])
		i++
	}
	return out
}
