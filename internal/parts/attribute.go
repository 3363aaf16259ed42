package parts

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/conneroisu/stencil/internal/dom"
	"golang.org/x/net/html"
)

// AttributeCommitter owns one attribute value built from static strings and
// one AttributePart per expression. It writes the attribute at most once per
// commit, however many of its parts changed.
type AttributeCommitter struct {
	element *html.Node
	name    string
	statics []string
	parts   []*AttributePart
	dirty   bool
}

// NewAttributeCommitter returns a committer for name on element. statics has
// one more entry than there are expressions.
func NewAttributeCommitter(element *html.Node, name string, statics []string) *AttributeCommitter {
	c := &AttributeCommitter{
		element: element,
		name:    name,
		statics: append([]string(nil), statics...),
		dirty:   true,
	}
	for i := 0; i < len(statics)-1; i++ {
		c.parts = append(c.parts, &AttributePart{committer: c})
	}
	return c
}

// Parts returns the committer's parts in expression order.
func (c *AttributeCommitter) Parts() []Part {
	out := make([]Part, len(c.parts))
	for i, p := range c.parts {
		out[i] = p
	}
	return out
}

// single reports whether the attribute is one bare expression.
func (c *AttributeCommitter) single() bool {
	return len(c.statics) == 2 && c.statics[0] == "" && c.statics[1] == ""
}

func (c *AttributeCommitter) commit() {
	if !c.dirty {
		return
	}
	c.dirty = false

	if c.single() && isEmpty(c.parts[0].value) {
		dom.RemoveAttribute(c.element, c.name)
		return
	}

	var b strings.Builder
	for i, s := range c.statics {
		b.WriteString(s)
		if i < len(c.parts) {
			b.WriteString(attributeText(c.parts[i].value))
		}
	}
	dom.SetAttribute(c.element, c.name, b.String())
}

// AttributePart is one expression inside an attribute value.
type AttributePart struct {
	committer *AttributeCommitter
	state     State
	value     any
}

// State returns the staging state.
func (p *AttributePart) State() State { return p.state }

// SetValue implements Part. The value is kept on the part; the element is
// untouched until Commit.
func (p *AttributePart) SetValue(value any) {
	if value == NoChange {
		return
	}
	p.state = StateStaged
	if isPrimitive(value) && isPrimitive(p.value) && value == p.value {
		return
	}
	p.value = value
	p.committer.dirty = true
}

// Commit implements Part.
func (p *AttributePart) Commit() error {
	if p.state != StateStaged {
		return nil
	}
	p.state = StateIdle
	p.committer.commit()
	return nil
}

// BooleanAttributePart binds a ?name attribute: present and empty when the
// value is truthy, absent otherwise.
type BooleanAttributePart struct {
	element *html.Node
	name    string
	state   State
	pending any
}

// NewBooleanAttributePart returns a part toggling name on element.
func NewBooleanAttributePart(element *html.Node, name string) *BooleanAttributePart {
	return &BooleanAttributePart{element: element, name: name}
}

// State returns the staging state.
func (p *BooleanAttributePart) State() State { return p.state }

// SetValue implements Part.
func (p *BooleanAttributePart) SetValue(value any) {
	if value == NoChange {
		return
	}
	p.pending = value
	p.state = StateStaged
}

// Commit implements Part.
func (p *BooleanAttributePart) Commit() error {
	if p.state != StateStaged {
		return nil
	}
	p.state = StateIdle
	if truthy(p.pending) {
		dom.SetAttribute(p.element, p.name, "")
	} else {
		dom.RemoveAttribute(p.element, p.name)
	}
	return nil
}

func attributeText(value any) string {
	if isEmpty(value) {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = attributeText(item)
		}
		return strings.Join(items, "")
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func truthy(value any) bool {
	if isEmpty(value) {
		return false
	}
	if b, ok := value.(bool); ok {
		return b
	}
	return !reflect.ValueOf(value).IsZero()
}
