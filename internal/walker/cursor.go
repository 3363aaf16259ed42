// Package walker implements the traversal cursor that keeps a flat list of
// traversal ordinals aligned with a live html tree.
//
// Canonical order is a depth-first pre-order walk over element, text and
// comment nodes. A <template> element counts as one node; its content is
// visited immediately after it by pushing the current level onto an explicit
// stack and treating the template as the root of a new level. When that level
// runs out of nodes the saved level is popped and traversal continues after
// the template element. No recursion is involved, so the state is a plain
// value that can be inspected at any point.
package walker

import (
	stencilerrors "github.com/conneroisu/stencil/internal/errors"
	"github.com/conneroisu/stencil/internal/dom"
	"golang.org/x/net/html"
)

// Visitor is called every time the cursor arrives at a node. It may replace
// the live node through Cursor.Replace before the next step is taken.
type Visitor func(c *Cursor) error

// level is one traversal scope: the tree under root, excluding root itself.
type level struct {
	root *html.Node
	node *html.Node
}

// following returns the node after n in pre-order without leaving root.
// Templates other than the root are not entered here; Cursor.Next pushes a
// new level for them instead.
func (l level) following(n *html.Node) *html.Node {
	if n.FirstChild != nil && (n == l.root || !dom.IsTemplate(n)) {
		return n.FirstChild
	}
	for n != nil && n != l.root {
		if n.NextSibling != nil {
			return n.NextSibling
		}
		n = n.Parent
	}
	return nil
}

func (l level) advance() *html.Node {
	n := l.node
	for {
		n = l.following(n)
		if n == nil || dom.Visible(n) {
			return n
		}
	}
}

// Cursor walks a tree in canonical order, counting ordinals.
type Cursor struct {
	current level
	stack   []level
	ordinal int
}

// New returns a cursor positioned before the first node under root.
func New(root *html.Node) *Cursor {
	return &Cursor{
		current: level{root: root, node: root},
		ordinal: -1,
	}
}

// Node returns the live node, or nil before the first step.
func (c *Cursor) Node() *html.Node {
	if c.ordinal < 0 {
		return nil
	}
	return c.current.node
}

// Ordinal returns the canonical position of the live node; -1 before the
// first step.
func (c *Cursor) Ordinal() int {
	return c.ordinal
}

// Depth returns how many nested templates the cursor is inside.
func (c *Cursor) Depth() int {
	return len(c.stack)
}

// Replace redirects the live node reference to n. It is used after the node
// under the cursor was swapped out of the tree; n must occupy the swapped
// node's position so the next step continues from there.
func (c *Cursor) Replace(n *html.Node) {
	c.current.node = n
}

// Next advances to the following node in canonical order.
func (c *Cursor) Next() error {
	if c.ordinal >= 0 && dom.IsTemplate(c.current.node) {
		c.stack = append(c.stack, c.current)
		c.current = level{root: c.current.node, node: c.current.node}
	}

	n := c.current.advance()
	for n == nil {
		if len(c.stack) == 0 {
			return stencilerrors.ErrStructuralMisalignment(
				"tree exhausted after position %d", c.ordinal,
			).WithContext("position", c.ordinal)
		}
		c.current = c.stack[len(c.stack)-1]
		c.stack = c.stack[:len(c.stack)-1]
		n = c.current.advance()
	}

	c.current.node = n
	c.ordinal++
	return nil
}

// StepTo advances until the live node is at ordinal target, calling visit on
// every node it arrives at. A target behind the cursor can never be reached
// and is reported as a structural misalignment.
func (c *Cursor) StepTo(target int, visit Visitor) error {
	if target < c.ordinal {
		return stencilerrors.ErrStructuralMisalignment(
			"position %d is behind the cursor at %d", target, c.ordinal,
		).WithContext("position", target)
	}
	for c.ordinal < target {
		if err := c.Next(); err != nil {
			return err
		}
		if visit != nil {
			if err := visit(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// Shift adds delta to the ordinal without moving the cursor. After the
// subtree under the live node is rebuilt with fewer nodes, shifting by the
// difference keeps the ordinals of the nodes that follow it unchanged.
func (c *Cursor) Shift(delta int) {
	c.ordinal += delta
}

// Span returns how many nodes canonical order visits below n, template
// content included.
func Span(n *html.Node) int {
	count := 0
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if dom.Visible(child) {
			count++
		}
		count += Span(child)
	}
	return count
}
