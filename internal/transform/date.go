package transform

import (
	"fmt"
	"strings"
	"time"
)

// javaTokens maps SimpleDateFormat letter runs to Go layout fragments.
// Longer runs are listed first so the greedy match picks them.
var javaTokens = []struct {
	token  string
	layout string
}{
	{"yyyy", "2006"},
	{"yy", "06"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"M", "1"},
	{"dd", "02"},
	{"d", "2"},
	{"EEEE", "Monday"},
	{"EEE", "Mon"},
	{"E", "Mon"},
	{"HH", "15"},
	{"H", "15"},
	{"hh", "03"},
	{"h", "3"},
	{"mm", "04"},
	{"m", "4"},
	{"ss", "05"},
	{"s", "5"},
	{"SSS", "000"},
	{"a", "PM"},
	{"XXX", "Z07:00"},
	{"XX", "Z0700"},
	{"X", "Z07"},
	{"Z", "-0700"},
	{"z", "MST"},
}

// Layout converts a date pattern to a Go time layout. Patterns already
// written as Go layouts (containing the reference year 2006) pass through;
// anything else is read as a SimpleDateFormat pattern such as
// "yyyy-MM-dd'T'HH:mm:ss".
func Layout(pattern string) (string, error) {
	if pattern == "" {
		return "", fmt.Errorf("empty date pattern")
	}
	if strings.Contains(pattern, "2006") {
		return pattern, nil
	}

	var b strings.Builder
	for i := 0; i < len(pattern); {
		c := pattern[i]
		switch {
		case c == '\'':
			// quoted literal, '' is an escaped quote
			end := strings.IndexByte(pattern[i+1:], '\'')
			if end < 0 {
				return "", fmt.Errorf("unterminated quote in date pattern %q", pattern)
			}
			if end == 0 {
				b.WriteByte('\'')
			} else {
				b.WriteString(pattern[i+1 : i+1+end])
			}
			i += end + 2
		case isASCIILetter(c):
			matched := false
			for _, t := range javaTokens {
				if strings.HasPrefix(pattern[i:], t.token) && !continuesRun(pattern, i+len(t.token), c, t.token) {
					b.WriteString(t.layout)
					i += len(t.token)
					matched = true
					break
				}
			}
			if !matched {
				return "", fmt.Errorf("unsupported date pattern letter %q in %q", c, pattern)
			}
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}

// continuesRun rejects a token when the same letter keeps going past it,
// e.g. "yyy" must not match "yy" and leave a dangling "y".
func continuesRun(pattern string, next int, c byte, token string) bool {
	if next >= len(pattern) || pattern[next] != c {
		return false
	}
	// a shorter token followed by more of the same letter is ambiguous
	for _, t := range javaTokens {
		if len(t.token) > len(token) && t.token[0] == c {
			return true
		}
	}
	return false
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// ReformatDate parses value with the from pattern and renders it with the to
// pattern. An empty value stays empty.
func ReformatDate(value, from, to string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	fromLayout, err := Layout(from)
	if err != nil {
		return "", err
	}
	toLayout, err := Layout(to)
	if err != nil {
		return "", err
	}
	t, err := time.Parse(fromLayout, value)
	if err != nil {
		return "", fmt.Errorf("cannot parse date %q with pattern %q: %w", value, from, err)
	}
	return t.Format(toLayout), nil
}
