package instance

import (
	stencilerrors "github.com/conneroisu/stencil/internal/errors"
	"github.com/conneroisu/stencil/internal/parts"
	"github.com/conneroisu/stencil/internal/template"
	"golang.org/x/net/html"
)

// binder turns an aligned descriptor and live node into parts.
type binder struct {
	processor parts.Processor
	opts      parts.Options
}

// holes keeps one nil entry per value slot of an inactive descriptor.
func (b binder) holes(d template.PartDescriptor) []parts.Part {
	return make([]parts.Part, d.Slots())
}

func (b binder) bind(d template.PartDescriptor, node *html.Node) ([]parts.Part, error) {
	switch d.Kind {
	case template.KindNode:
		if node.PrevSibling == nil {
			return nil, stencilerrors.ErrStructuralMisalignment(
				"node part at position %d has no preceding sibling to anchor to", d.Position,
			).WithContext("position", d.Position)
		}
		part := b.processor.HandleTextExpression(b.opts, d)
		part.InsertAfterNode(node.PrevSibling)
		return []parts.Part{part}, nil

	case template.KindAttribute:
		if node.Type != html.ElementNode {
			return nil, stencilerrors.ErrStructuralMisalignment(
				"attribute %q at position %d is bound to a non-element node", d.Name, d.Position,
			).WithContext("position", d.Position)
		}
		return b.processor.HandleAttributeExpressions(node, d.Name, d.Strings, b.opts, d)

	default:
		return nil, stencilerrors.ErrInvalidTemplate("unknown descriptor kind " + d.Kind.String())
	}
}
