package advisory

import (
	"strings"
	"unicode/utf8"
)

// minPointLen is the shortest fragment kept as a point. Shorter fragments are
// stray punctuation or dashes inside words.
const minPointLen = 4

// Formatted is a section body prepared for display: either a list of points
// or, when Points is empty, the prose in Text.
type Formatted struct {
	Text   string   `json:"text" yaml:"text"`
	Points []string `json:"points,omitempty" yaml:"points,omitempty"`
}

// IsList reports whether the body is rendered as a list.
func (f Formatted) IsList() bool {
	return len(f.Points) > 0
}

// Format splits a section body into hyphen-led points. Empty bodies,
// placeholders, text without hyphens, and text with no usable fragment pass
// through as prose. Text always carries the original input.
func Format(text string) Formatted {
	if isPlaceholder(text) || !strings.Contains(text, "-") {
		return Formatted{Text: text}
	}

	var points []string
	for _, frag := range strings.Split(text, "-") {
		p := strings.TrimSpace(frag)
		if utf8.RuneCountInString(p) < minPointLen {
			continue
		}
		points = append(points, p)
	}

	if len(points) == 0 {
		return Formatted{Text: text}
	}
	return Formatted{Text: text, Points: points}
}

func isPlaceholder(text string) bool {
	return text == "" ||
		strings.Contains(text, markerUnavailable) ||
		strings.Contains(text, markerNotAvailable)
}
