// Package htmldoc provides an immutable parse/transform/serialize pipeline
// over HTML fragments. Transforms never mutate the document they are called
// on; each returns a new Document built from a deep copy of the tree, which
// keeps per-recipient rewriting (tracking links, pixel, cid references) free
// of shared-state surprises.
package htmldoc

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed HTML fragment. The zero value is an empty document.
type Document struct {
	root *html.Node
}

// Parse parses an HTML fragment in body context.
func Parse(fragment string) (Document, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return Document{}, err
	}

	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return Document{root: root}, nil
}

// Render serializes the document back to an HTML string.
func (d Document) Render() (string, error) {
	if d.root == nil {
		return "", nil
	}
	var b strings.Builder
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

// Transform deep-copies the tree, applies fn to the copy's root and returns
// the copy as a new Document. The receiver is left untouched.
func (d Document) Transform(fn func(root *html.Node)) Document {
	root := &html.Node{Type: html.DocumentNode}
	if d.root != nil {
		for c := d.root.FirstChild; c != nil; c = c.NextSibling {
			root.AppendChild(clone(c))
		}
	}
	fn(root)
	return Document{root: root}
}

func clone(n *html.Node) *html.Node {
	cp := &html.Node{
		Type:     n.Type,
		DataAtom: n.DataAtom,
		Data:     n.Data,
		Attr:     append([]html.Attribute(nil), n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		cp.AppendChild(clone(c))
	}
	return cp
}

// Walk visits n and its descendants depth-first in document order.
func Walk(n *html.Node, visit func(*html.Node)) {
	if n == nil {
		return
	}
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, visit)
	}
}

// FindAll returns all elements with the given tag name, in document order.
func FindAll(root *html.Node, tag string) []*html.Node {
	var out []*html.Node
	Walk(root, func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
	})
	return out
}

// Attr returns the value of the named attribute on n.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces the named attribute on n.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
