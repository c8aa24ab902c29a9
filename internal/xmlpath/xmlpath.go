// Package xmlpath evaluates path expressions against XML fragments carried
// in external resource properties.
package xmlpath

import (
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Path is a compiled path expression
type Path struct {
	source string
	expr   *xpath.Expr
}

// Compile parses a path expression
func Compile(expr string) (*Path, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty path expression")
	}
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid path expression %q: %w", expr, err)
	}
	return &Path{source: expr, expr: compiled}, nil
}

// MustCompile is Compile for expressions known to be valid
func MustCompile(expr string) *Path {
	p, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Path) String() string {
	if p == nil {
		return ""
	}
	return p.source
}

// Document is a parsed XML fragment. The zero Document is empty and matches
// nothing.
type Document struct {
	root *xmlquery.Node
}

// Parse reads an XML fragment. Blank input yields an empty document.
func Parse(data string) (*Document, error) {
	if strings.TrimSpace(data) == "" {
		return &Document{}, nil
	}
	root, err := xmlquery.Parse(strings.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	return &Document{root: root}, nil
}

// Empty reports whether the document has no content
func (d *Document) Empty() bool {
	return d == nil || d.root == nil
}

// Node is one matched node
type Node struct {
	n *xmlquery.Node
}

// Text returns the text content of the node and its descendants
func (n Node) Text() string {
	return n.n.InnerText()
}

// Markup returns the node's inner content serialized with its tags.
// Attribute and text nodes have no inner markup and return their text.
func (n Node) Markup() string {
	switch n.n.Type {
	case xmlquery.ElementNode, xmlquery.DocumentNode:
		return n.n.OutputXML(false)
	}
	return n.n.InnerText()
}

// Value returns Markup when keepMarkup is set, otherwise Text
func (n Node) Value(keepMarkup bool) string {
	if keepMarkup {
		return n.Markup()
	}
	return n.Text()
}

// Evaluate returns the nodes of doc matched by path, in document order.
// An empty document matches nothing.
func Evaluate(doc *Document, path *Path) []Node {
	if doc.Empty() || path == nil {
		return nil
	}
	matches := xmlquery.QuerySelectorAll(doc.root, path.expr)
	out := make([]Node, 0, len(matches))
	for _, m := range matches {
		out = append(out, Node{n: m})
	}
	return out
}

// Values evaluates path and returns the value of every match
func Values(doc *Document, path *Path, keepMarkup bool) []string {
	nodes := Evaluate(doc, path)
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Value(keepMarkup))
	}
	return out
}
