package obfs

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// latin1Bytes converts s to ISO-8859-1, one byte per character.
// s must satisfy isLatin1.
func latin1Bytes(s string) []byte {
	rv := make([]byte, 0, len(s))
	for _, r := range s {
		b, _ := charmap.ISO8859_1.EncodeRune(r)
		rv = append(rv, b)
	}
	return rv
}

// latin1String converts ISO-8859-1 bytes to a string.
func latin1String(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		sb.WriteRune(charmap.ISO8859_1.DecodeByte(c))
	}
	return sb.String()
}

// isLatin1 returns true if every character of s is representable in ISO-8859-1.
func isLatin1(s string) bool {
	for _, r := range s {
		if _, ok := charmap.ISO8859_1.EncodeRune(r); !ok {
			return false
		}
	}
	return true
}
