package apkbuild

import "strings"

// splitAssignment recognizes a top-level shell assignment (NAME=value at
// column 0). Indented lines belong to functions and are never matched.
func splitAssignment(line string) (name, rest string, ok bool) {
	eq := strings.IndexByte(line, '=')
	if eq <= 0 {
		return "", "", false
	}
	name = line[:eq]
	for i := 0; i < len(name); i++ {
		c := name[i]
		isAlpha := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if !isAlpha && (i == 0 || c < '0' || c > '9') {
			return "", "", false
		}
	}
	return name, line[eq+1:], true
}

// findClosingQuote returns the index of the quote that terminates a value
// opened with q, or -1. Backslash escapes apply inside double quotes only.
func findClosingQuote(s string, q byte) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if q == '"' {
				i++
			}
		case q:
			return i
		}
	}
	return -1
}

// rawValue holds the pieces of an assignment's right-hand side on its
// first line.
type rawValue struct {
	quote  byte   // 0, '"' or '\''
	value  string // text between the quotes, or the bare word
	tail   string // everything after the value (comments, whitespace)
	closed bool   // false when a quoted value continues on the next line
}

func scanValue(rest string) rawValue {
	if rest == "" {
		return rawValue{closed: true}
	}

	if q := rest[0]; q == '"' || q == '\'' {
		body := rest[1:]
		end := findClosingQuote(body, q)
		if end < 0 {
			return rawValue{quote: q, value: body}
		}
		return rawValue{quote: q, value: body[:end], tail: body[end+1:], closed: true}
	}

	end := strings.IndexAny(rest, " \t;")
	if end < 0 {
		return rawValue{value: rest, closed: true}
	}
	return rawValue{value: rest[:end], tail: rest[end:], closed: true}
}

// splitEOL separates a line from its terminator ("\n", "\r\n" or nothing).
func splitEOL(line string) (body, eol string) {
	if strings.HasSuffix(line, "\r\n") {
		return line[:len(line)-2], "\r\n"
	}
	if strings.HasSuffix(line, "\n") {
		return line[:len(line)-1], "\n"
	}
	return line, ""
}
