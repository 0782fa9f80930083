package advisory

import "strings"

// Extract returns the body of section in raw with bold markers removed and
// surrounding whitespace trimmed. It returns Sentinel when raw holds no
// marker for section or section is not one of Sections. An empty body
// yields "".
//
// A section looks like `<N>. <label>: <body>`. The label is either bold
// (`**Actions**`) or plain text up to the first colon on the line. The body
// runs until the next line that starts with `<digit>.`, or to the end of raw.
func Extract(raw string, section Section) string {
	if !section.Addressed() {
		return Sentinel
	}
	digit := byte('0' + section)

	for i := 0; i+2 < len(raw); i++ {
		if !isMarker(raw, i, digit) {
			continue
		}
		colon, ok := scanLabel(raw, i+3)
		if !ok {
			continue
		}
		end := scanTerminator(raw, colon+1)
		return cleanBody(raw[colon+1 : end])
	}
	return Sentinel
}

// isMarker reports whether raw[i:] starts with "<digit>." followed by
// whitespace. A digit preceded by another digit belongs to a longer number.
func isMarker(raw string, i int, digit byte) bool {
	if raw[i] != digit || raw[i+1] != '.' || !isSpace(raw[i+2]) {
		return false
	}
	return i == 0 || !isDigit(raw[i-1])
}

// scanLabel matches the label starting at start and returns the index of the
// colon that closes it. Labels never span lines.
func scanLabel(raw string, start int) (int, bool) {
	if strings.HasPrefix(raw[start:], "**") {
		if colon, ok := scanBoldLabel(raw, start+2); ok {
			return colon, true
		}
	}
	for j := start; j < len(raw); j++ {
		switch raw[j] {
		case ':':
			return j, true
		case '\n':
			return 0, false
		}
	}
	return 0, false
}

// scanBoldLabel finds the first closing "**" that is directly followed by a
// colon. from points just past the opening "**".
func scanBoldLabel(raw string, from int) (int, bool) {
	for j := from; j+2 < len(raw); j++ {
		if raw[j] == '\n' {
			return 0, false
		}
		if raw[j] == '*' && raw[j+1] == '*' && raw[j+2] == ':' {
			return j + 2, true
		}
	}
	return 0, false
}

// scanTerminator returns the index of the first "\n<digit>." at or after
// from, or len(raw).
func scanTerminator(raw string, from int) int {
	for j := from; j+2 < len(raw); j++ {
		if raw[j] == '\n' && isDigit(raw[j+1]) && raw[j+2] == '.' {
			return j
		}
	}
	return len(raw)
}

func cleanBody(body string) string {
	return strings.TrimSpace(strings.ReplaceAll(body, "**", ""))
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
