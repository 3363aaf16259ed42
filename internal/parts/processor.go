package parts

import (
	"fmt"
	"strings"

	stencilerrors "github.com/conneroisu/stencil/internal/errors"
	"github.com/conneroisu/stencil/internal/template"
	"golang.org/x/net/html"
)

// BooleanPrefix marks an attribute bound as a boolean toggle.
const BooleanPrefix = "?"

// DefaultProcessor builds NodeParts for child positions, BooleanAttributeParts
// for ?name attributes and AttributeCommitter parts for everything else.
type DefaultProcessor struct{}

// HandleTextExpression implements Processor.
func (DefaultProcessor) HandleTextExpression(opts Options, _ template.PartDescriptor) AnchoredPart {
	return NewNodePart(opts)
}

// HandleAttributeExpressions implements Processor.
func (DefaultProcessor) HandleAttributeExpressions(
	element *html.Node,
	name string,
	statics []string,
	opts Options,
	_ template.PartDescriptor,
) ([]Part, error) {
	if len(statics) < 2 {
		return nil, stencilerrors.ErrInvalidTemplate(
			fmt.Sprintf("attribute %q needs at least two strings, got %d", name, len(statics)))
	}

	if strings.HasPrefix(name, BooleanPrefix) {
		if len(statics) != 2 || statics[0] != "" || statics[1] != "" {
			return nil, stencilerrors.ErrUnsupportedBinding(
				fmt.Sprintf("boolean attribute %q must be a single bare expression", name))
		}
		opts.logger().Debug(opts.context(), "boolean attribute bound", "attribute", name)
		return []Part{NewBooleanAttributePart(element, strings.TrimPrefix(name, BooleanPrefix))}, nil
	}

	return NewAttributeCommitter(element, name, statics).Parts(), nil
}
