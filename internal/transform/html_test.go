package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeHTML(t *testing.T) {
	assert.Equal(t, "&lt;b&gt;bold&lt;/b&gt; &amp; more", EncodeHTML("<b>bold</b> & more"))
	assert.Equal(t, "plain", EncodeHTML("plain"))
}

func TestDecodeHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "no markup here", "no markup here"},
		{"paragraphs", "<p>Hello</p><p>World</p>", "Hello\nWorld"},
		{"line break", "first<br/>second", "first\nsecond"},
		{"entities", "Tom &amp; Jerry", "Tom & Jerry"},
		{"inline tags", "a <b>bold</b> move", "a bold move"},
		{"script dropped", "<script>alert(1)</script>visible", "visible"},
		{"list items", "<ul><li>one</li><li>two</li></ul>", "one\ntwo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeHTML(tt.in))
		})
	}
}

func TestWrapHTML(t *testing.T) {
	assert.Equal(t, "{html}<b>x</b>{html}", WrapHTML("<b>x</b>"))
	assert.Equal(t, "{html}<b>x</b>{html}", WrapHTML("{html}<b>x</b>{html}"))
	assert.Equal(t, "", WrapHTML(""))
}

func TestHTMLLineBreaks(t *testing.T) {
	assert.Equal(t, "a<br/>b<br/>c", HTMLLineBreaks("a\nb\r\nc"))
}
