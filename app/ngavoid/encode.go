package ngavoid

import "strings"

const upperhex = "0123456789ABCDEF"

// encodeURIComponent percent-encodes every byte except A-Z a-z 0-9 and
// -_.!~*'() using uppercase hex.
func encodeURIComponent(s string) string {
	return percentEncode(s, isURIComponentSafe)
}

// weakEncode additionally encodes !'()*._-
func weakEncode(s string) string {
	return percentEncode(s, func(c byte) bool {
		return isAlnum(c) || c == '~'
	})
}

// strongEncode additionally encodes every ASCII letter.
func strongEncode(s string) string {
	return percentEncode(s, func(c byte) bool {
		return ('0' <= c && c <= '9') || c == '~'
	})
}

func percentEncode(s string, keep func(byte) bool) string {
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if keep(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func isAlnum(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func isURIComponentSafe(c byte) bool {
	if isAlnum(c) {
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
