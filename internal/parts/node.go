package parts

import (
	"bytes"
	"fmt"

	"github.com/a-h/templ"
	stencilerrors "github.com/conneroisu/stencil/internal/errors"
	"github.com/conneroisu/stencil/internal/dom"
	"golang.org/x/net/html"
)

// NodePart owns the run of siblings between its start anchor and the node
// that followed the anchor when the part was placed.
type NodePart struct {
	opts    Options
	start   *html.Node
	end     *html.Node
	state   State
	pending any
	value   any
}

// NewNodePart returns an unplaced node part.
func NewNodePart(opts Options) *NodePart {
	return &NodePart{opts: opts}
}

// InsertAfterNode places the part after ref. Content is inserted between ref
// and its current next sibling.
func (p *NodePart) InsertAfterNode(ref *html.Node) {
	p.start = ref
	p.end = ref.NextSibling
}

// Start returns the anchor the part was placed after.
func (p *NodePart) Start() *html.Node { return p.start }

// State returns the staging state.
func (p *NodePart) State() State { return p.state }

// Value returns the last committed value.
func (p *NodePart) Value() any { return p.value }

// SetValue implements Part.
func (p *NodePart) SetValue(value any) {
	if value == NoChange {
		return
	}
	p.pending = value
	p.state = StateStaged
}

// Commit implements Part.
func (p *NodePart) Commit() error {
	if p.state != StateStaged {
		return nil
	}
	value := p.pending
	p.pending = nil
	p.state = StateIdle

	if p.start == nil || p.start.Parent == nil {
		return stencilerrors.ErrStructuralMisalignment("node part committed before it was placed")
	}
	if p.unchanged(value) {
		return nil
	}

	nodes, err := p.render(value)
	if err != nil {
		return err
	}
	p.clear()
	parent := p.start.Parent
	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		parent.InsertBefore(n, p.end)
	}
	p.value = value
	return nil
}

// unchanged reports whether value is the committed primitive or the same
// node pointer.
func (p *NodePart) unchanged(value any) bool {
	if isPrimitive(value) && isPrimitive(p.value) {
		return value == p.value
	}
	n, ok := value.(*html.Node)
	if !ok || n == nil {
		return false
	}
	committed, ok := p.value.(*html.Node)
	return ok && committed == n
}

// Nodes returns the nodes the part currently owns.
func (p *NodePart) Nodes() []*html.Node {
	var nodes []*html.Node
	if p.start == nil {
		return nodes
	}
	for n := p.start.NextSibling; n != nil && n != p.end; n = n.NextSibling {
		nodes = append(nodes, n)
	}
	return nodes
}

func (p *NodePart) clear() {
	for _, n := range p.Nodes() {
		n.Parent.RemoveChild(n)
	}
}

func (p *NodePart) render(value any) ([]*html.Node, error) {
	if isEmpty(value) {
		return nil, nil
	}

	switch v := value.(type) {
	case string:
		return []*html.Node{dom.NewText(v)}, nil
	case *html.Node:
		if v.Type == html.DocumentNode {
			// Fragments contribute copies so the caller's fragment can be
			// committed again.
			var children []*html.Node
			for c := v.FirstChild; c != nil; c = c.NextSibling {
				children = append(children, dom.Clone(c))
			}
			return children, nil
		}
		return []*html.Node{v}, nil
	case []*html.Node:
		return v, nil
	case templ.Component:
		return p.renderComponent(v)
	case []any:
		var nodes []*html.Node
		for _, item := range v {
			rendered, err := p.render(item)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, rendered...)
		}
		return nodes, nil
	case fmt.Stringer:
		return []*html.Node{dom.NewText(v.String())}, nil
	default:
		return []*html.Node{dom.NewText(fmt.Sprint(v))}, nil
	}
}

func (p *NodePart) renderComponent(c templ.Component) ([]*html.Node, error) {
	var buf bytes.Buffer
	if err := c.Render(p.opts.context(), &buf); err != nil {
		return nil, stencilerrors.Wrap(err, stencilerrors.ErrorTypeInternal,
			stencilerrors.ErrCodeInternalError, "render templ component")
	}
	fragment, err := dom.ParseFragment(buf.String())
	if err != nil {
		return nil, stencilerrors.WrapValidation(err, stencilerrors.ErrCodeInvalidTemplate,
			"parse templ component output")
	}
	p.opts.logger().Debug(p.opts.context(), "templ component rendered", "bytes", buf.Len())
	return p.render(fragment)
}

func isPrimitive(value any) bool {
	switch value.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}
