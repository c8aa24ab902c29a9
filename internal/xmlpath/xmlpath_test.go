package xmlpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const planXML = `<plan>
  <item id="1">A</item>
  <item id="2">B</item>
  <notes><b>bold</b> text</notes>
</plan>`

func TestValues(t *testing.T) {
	doc, err := Parse(planXML)
	require.NoError(t, err)

	tests := []struct {
		name string
		expr string
		keep bool
		want []string
	}{
		{"two matches", "//item", false, []string{"A", "B"}},
		{"zero matches", "//missing", false, []string{}},
		{"attribute", "//item/@id", false, []string{"1", "2"}},
		{"predicate", "//item[@id='2']", false, []string{"B"}},
		{"text only", "//notes", false, []string{"bold text"}},
		{"keep markup", "//notes", true, []string{"<b>bold</b> text"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Values(doc, MustCompile(tt.expr), tt.keep)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_BlankIsEmpty(t *testing.T) {
	doc, err := Parse("  \n ")
	require.NoError(t, err)
	assert.True(t, doc.Empty())
	assert.Empty(t, Evaluate(doc, MustCompile("//item")))
}

func TestCompile(t *testing.T) {
	p, err := Compile(" //item ")
	require.NoError(t, err)
	assert.Equal(t, "//item", p.String())

	_, err = Compile("")
	assert.Error(t, err)

	_, err = Compile("//item[")
	assert.Error(t, err)

	assert.Panics(t, func() { MustCompile("//[") })
}
