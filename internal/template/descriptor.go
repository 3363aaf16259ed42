package template

import "fmt"

// Kind distinguishes where a part binds.
type Kind int

const (
	// KindNode binds a run of child nodes.
	KindNode Kind = iota
	// KindAttribute binds one attribute of an element.
	KindAttribute
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindAttribute:
		return "attribute"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText makes kinds readable in JSON and YAML output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// PartDescriptor describes one dynamic position of a template.
type PartDescriptor struct {
	Kind Kind `json:"kind" yaml:"kind"`
	// Position is the canonical traversal ordinal of the bound node.
	Position int `json:"position" yaml:"position"`
	// Active is false for expressions that bind nowhere; they keep a hole in
	// the instance's parts so values stay index aligned.
	Active bool `json:"active" yaml:"active"`
	// Name is the attribute name for KindAttribute.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Strings are the static segments around each expression inside one
	// attribute value. An attribute with n expressions has n+1 strings.
	Strings []string `json:"strings,omitempty" yaml:"strings,omitempty"`
}

// Slots returns how many values the descriptor consumes.
func (d PartDescriptor) Slots() int {
	if d.Kind == KindAttribute && len(d.Strings) > 2 {
		return len(d.Strings) - 1
	}
	return 1
}

// NodePart returns an active node descriptor at position.
func NodePart(position int) PartDescriptor {
	return PartDescriptor{Kind: KindNode, Position: position, Active: true}
}

// AttributePart returns an active attribute descriptor.
func AttributePart(position int, name string, statics ...string) PartDescriptor {
	if len(statics) == 0 {
		statics = []string{"", ""}
	}
	return PartDescriptor{
		Kind:     KindAttribute,
		Position: position,
		Active:   true,
		Name:     name,
		Strings:  statics,
	}
}

// Inactive returns a copy of d that binds nowhere.
func Inactive(d PartDescriptor) PartDescriptor {
	d.Active = false
	d.Position = -1
	return d
}
