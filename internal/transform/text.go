package transform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// JoinValues joins the non-empty values with sep
func JoinValues(values []string, sep string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}

// SplitValues splits s on sep, trimming items and dropping empty ones
func SplitValues(s, sep string) []string {
	out := []string{}
	if strings.TrimSpace(s) == "" {
		return out
	}
	var raw []string
	if sep == "" || strings.TrimSpace(sep) == "" {
		raw = strings.Fields(s)
	} else {
		raw = strings.Split(s, strings.TrimSpace(sep))
	}
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// LookupValue remaps v through table; unmatched values pass through
func LookupValue(table map[string]string, v string) string {
	if mapped, ok := table[v]; ok {
		return mapped
	}
	return v
}

// Truncate cuts s to limit characters. A limit of zero or less means no
// limit. The second result reports whether anything was cut.
func Truncate(s string, limit int) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s, false
	}
	runes := []rune(s)
	return string(runes[:limit]), true
}

// Placeholder renders the token a template uses for id
func Placeholder(prefix, id, suffix string) string {
	return prefix + id + suffix
}

// Substitute replaces every occurrence of the placeholder for id
func Substitute(text, prefix, id, suffix, value string) string {
	if id == "" {
		return text
	}
	return strings.ReplaceAll(text, Placeholder(prefix, id, suffix), value)
}

// Stringify converts an arbitrary custom field value to text. Lists are
// joined with sep; option objects contribute their value or name.
func Stringify(v interface{}, sep string) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		return JoinValues(val, sep)
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, Stringify(item, sep))
		}
		return JoinValues(parts, sep)
	case map[string]interface{}:
		for _, key := range []string{"value", "name", "displayName", "key", "id"} {
			if inner, ok := val[key]; ok {
				return Stringify(inner, sep)
			}
		}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+Stringify(val[k], sep))
		}
		return strings.Join(parts, sep)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	}
	return fmt.Sprintf("%v", v)
}
