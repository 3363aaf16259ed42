// Package dom holds the tree host operations stencil needs on top of
// golang.org/x/net/html: deep cloning, text content, attribute moves and
// fragment parsing/rendering.
//
// A fragment is represented by an html.DocumentNode whose children are the
// fragment's top-level nodes. html.Render writes only the children of a
// document node, so fragments render without any wrapper markup.
package dom

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Visible reports whether traversal counts n: elements, text and comments.
func Visible(n *html.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type {
	case html.ElementNode, html.TextNode, html.CommentNode:
		return true
	default:
		return false
	}
}

// IsTemplate reports whether n is a <template> element.
func IsTemplate(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode &&
		(n.DataAtom == atom.Template || (n.DataAtom == 0 && n.Data == "template"))
}

// NewFragment returns an empty fragment root, adopting nodes as its children.
func NewFragment(nodes ...*html.Node) *html.Node {
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		root.AppendChild(n)
	}
	return root
}

// NewElement returns a detached element. Known tag names get their atom.
func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	tag = strings.ToLower(tag)
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     append([]html.Attribute(nil), attrs...),
	}
}

// NewText returns a detached text node.
func NewText(data string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: data}
}

// NewComment returns a detached comment node.
func NewComment(data string) *html.Node {
	return &html.Node{Type: html.CommentNode, Data: data}
}

// Clone returns a deep, detached copy of n.
func Clone(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(Clone(child))
	}
	return c
}

// TextContent concatenates the data of every descendant text node, in
// document order. Comments do not contribute.
func TextContent(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				b.WriteString(c.Data)
			case html.ElementNode, html.DocumentNode:
				collect(c)
			}
		}
	}
	if n != nil {
		collect(n)
	}
	return b.String()
}

// SetTextContent replaces every child of n with a single text node holding
// text. An empty text leaves n without children.
func SetTextContent(n *html.Node, text string) {
	RemoveChildren(n)
	if text != "" {
		n.AppendChild(NewText(text))
	}
}

// RemoveChildren detaches every child of n.
func RemoveChildren(n *html.Node) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
}

// Replace puts replacement at old's position and detaches old.
func Replace(old, replacement *html.Node) error {
	if old.Parent == nil {
		return fmt.Errorf("dom: cannot replace detached <%s>", old.Data)
	}
	if replacement.Parent != nil {
		replacement.Parent.RemoveChild(replacement)
	}
	parent := old.Parent
	parent.InsertBefore(replacement, old)
	parent.RemoveChild(old)
	return nil
}

// Attribute returns the value of the attribute key on n.
func Attribute(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttribute sets key to val on n, replacing an existing value in place.
func SetAttribute(n *html.Node, key, val string) {
	setAttr(n, html.Attribute{Key: key, Val: val})
}

func setAttr(n *html.Node, attr html.Attribute) {
	for i, a := range n.Attr {
		if a.Namespace == attr.Namespace && a.Key == attr.Key {
			n.Attr[i].Val = attr.Val
			return
		}
	}
	n.Attr = append(n.Attr, attr)
}

// RemoveAttribute deletes key from n and reports whether it was present.
func RemoveAttribute(n *html.Node, key string) bool {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return true
		}
	}
	return false
}

// MoveAttributes transfers every attribute of from onto to, in order. Each
// attribute is removed from from before it is attached to to, so no attribute
// is ever owned by both. An attribute already present on to is overwritten.
func MoveAttributes(from, to *html.Node) int {
	moved := 0
	for len(from.Attr) > 0 {
		attr := from.Attr[0]
		from.Attr = from.Attr[1:]
		setAttr(to, attr)
		moved++
	}
	from.Attr = nil
	return moved
}

// ParseFragment parses markup in a <body> context and returns it as a
// fragment root.
func ParseFragment(markup string) (*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	return NewFragment(nodes...), nil
}

// Render serializes n. Fragment roots render as their children.
func Render(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("dom: render: %w", err)
	}
	return buf.String(), nil
}

// RemoveEmptyComments detaches every empty comment under n, including inside
// template content, and returns how many were removed.
func RemoveEmptyComments(n *html.Node) int {
	removed := 0
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.CommentNode && c.Data == "" {
			n.RemoveChild(c)
			removed++
		} else {
			removed += RemoveEmptyComments(c)
		}
		c = next
	}
	return removed
}
