// Package htmldoc parses one exported HTML document into a structural
// content model: title, cover image, sanitized body, and card entries
// for listing pages. All processing happens on the x/net/html node
// tree; raw markup is only touched at the parse/render boundary.
package htmldoc

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attr returns the value of the named attribute, or "".
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// SetAttr sets or replaces the named attribute.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// HasClass reports whether the element carries the class token.
func HasClass(n *html.Node, class string) bool {
	for _, token := range strings.Fields(Attr(n, "class")) {
		if token == class {
			return true
		}
	}
	return false
}

// AddClass appends a class token to the element.
func AddClass(n *html.Node, class string) {
	existing := Attr(n, "class")
	if existing == "" {
		SetAttr(n, "class", class)
		return
	}
	if !HasClass(n, class) {
		SetAttr(n, "class", existing+" "+class)
	}
}

// Text returns the trimmed text content of the subtree.
func Text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

// Find returns the first element in the subtree matching pred, in
// document order.
func Find(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := Find(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every element in the subtree matching pred, in
// document order.
func FindAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && pred(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// ByTag matches elements by tag name.
func ByTag(name string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Data == name }
}

// ByTagClass matches elements by tag name and class token.
func ByTagClass(name, class string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Data == name && HasClass(n, class) }
}

// Detach removes n from its parent. Safe to call on detached nodes.
func Detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Unwrap replaces n with its children, preserving their order.
func Unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for n.FirstChild != nil {
		child := n.FirstChild
		n.RemoveChild(child)
		parent.InsertBefore(child, n)
	}
	parent.RemoveChild(n)
}

// ReplaceWith swaps n for replacement in its parent.
func ReplaceWith(n, replacement *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	parent.InsertBefore(replacement, n)
	parent.RemoveChild(n)
}

// Clear removes all children of n.
func Clear(n *html.Node) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
}

// Element creates an element node with paired key/value attributes.
func Element(tag string, attrs ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

// TextNode creates a text node.
func TextNode(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// RenderInner serializes the children of n to HTML.
func RenderInner(n *html.Node) string {
	var b bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		// Render only fails on unrenderable node types, which the
		// parser never produces here.
		_ = html.Render(&b, c)
	}
	return b.String()
}
