package lib

// Escape replaces the characters <, >, &, " and ' with HTML entity
// references. An ampersand that already opens a well-formed entity reference
// is kept as is, so escaping an escaped string does not change it.
func Escape(s string) string {
	n := escapedGrowth(s)
	if n == 0 {
		return s
	}
	b := NewBufferSize(len(s) + n)
	escapeInto(b, s)
	return b.String()
}

// EscapeTo writes the escaped form of s at the end of b.
func EscapeTo(b *Buffer, s string) {
	n := escapedGrowth(s)
	if n == 0 {
		b.WriteString(s)
		return
	}
	b.Reserve(len(s) + n)
	escapeInto(b, s)
}

func escapedGrowth(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"', '\'':
			n += 5
		case '&':
			if entityLength(s[i:]) == 0 {
				n += 4
			}
		case '<', '>':
			n += 3
		}
	}
	return n
}

func escapeInto(b *Buffer, s string) {
	last := 0
	for i := 0; i < len(s); i++ {
		var entity string
		switch s[i] {
		case '"':
			entity = "&quot;"
		case '\'':
			entity = "&#039;"
		case '<':
			entity = "&lt;"
		case '>':
			entity = "&gt;"
		case '&':
			if entityLength(s[i:]) > 0 {
				continue
			}
			entity = "&amp;"
		default:
			continue
		}
		b.WriteString(s[last:i])
		b.WriteString(entity)
		last = i + 1
	}
	b.WriteString(s[last:])
}

// entityLength returns the length of the entity reference at the start of s,
// or 0 when s does not start with one. Accepted forms are &name;, &#123; and
// &#x1f;.
func entityLength(s string) int {
	const maxLength = 32
	if len(s) < 3 || s[0] != '&' {
		return 0
	}
	i := 1
	isDigit := isAlphanumeric
	if s[1] == '#' {
		i = 2
		isDigit = isDecimal
		if i < len(s) && (s[i] == 'x' || s[i] == 'X') {
			i++
			isDigit = isHexadecimal
		}
	}
	start := i
	for i < len(s) && i < maxLength && isDigit(s[i]) {
		i++
	}
	if i == start || i >= len(s) || s[i] != ';' {
		return 0
	}
	return i + 1
}

func isAlphanumeric(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

func isDecimal(c byte) bool {
	return '0' <= c && c <= '9'
}

func isHexadecimal(c byte) bool {
	return isDecimal(c) || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
