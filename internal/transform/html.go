package transform

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// HTMLMacro marks tracker text that the renderer should treat as HTML
const HTMLMacro = "{html}"

var blankLines = regexp.MustCompile(`\n{3,}`)

// block elements that start a new line when HTML is flattened to text
var blockTags = map[string]bool{
	"br": true, "p": true, "div": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"pre": true, "blockquote": true, "table": true, "ul": true, "ol": true,
}

// EncodeHTML escapes markup-significant characters
func EncodeHTML(s string) string {
	return html.EscapeString(s)
}

// DecodeHTML flattens an HTML fragment to plain text, keeping line breaks
// for block elements and dropping script and style content.
func DecodeHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			out := blankLines.ReplaceAllString(b.String(), "\n\n")
			return strings.TrimSpace(out)
		case html.TextToken:
			if skip == 0 {
				b.WriteString(string(z.Text()))
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				if tt == html.StartTagToken {
					skip++
				}
				continue
			}
			if blockTags[tag] && b.Len() > 0 {
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if (tag == "script" || tag == "style") && skip > 0 {
				skip--
			}
		}
	}
}

// WrapHTML marks a tracker text value as HTML content. Empty values and
// values that are already wrapped are returned unchanged.
func WrapHTML(s string) string {
	if s == "" || (strings.HasPrefix(s, HTMLMacro) && strings.HasSuffix(s, HTMLMacro) && len(s) >= 2*len(HTMLMacro)) {
		return s
	}
	return HTMLMacro + s + HTMLMacro
}

// HTMLLineBreaks renders plain-text line breaks for an HTML template
func HTMLLineBreaks(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "<br/>")
}
