package registry

import (
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
)

// Constructor builds the element that replaces a component slot. It receives
// the scope the instantiation runs under and must return a detached element.
type Constructor func(scope *Scope) (*html.Node, error)

// Lookup resolves a slot name to a constructor. A found entry with a nil
// constructor means the host already knows how to build the element natively,
// so the slot is left in place.
type Lookup interface {
	Lookup(name string) (Constructor, bool)
}

// Normalize folds a component name so lookups ignore case. A Caser keeps
// state, so each call builds its own.
func Normalize(name string) string {
	return cases.Fold().String(name)
}

// Scope carries the component declarations of one instantiation, plus data
// the constructors may read. Nothing besides component constructors looks
// inside it.
type Scope struct {
	components map[string]Constructor
	// Data is passed through to constructors untouched.
	Data map[string]any
}

// NewScope returns a scope declaring components. Names are folded.
func NewScope(components map[string]Constructor) *Scope {
	s := &Scope{
		components: make(map[string]Constructor, len(components)),
		Data:       make(map[string]any),
	}
	for name, ctor := range components {
		s.Declare(name, ctor)
	}
	return s
}

// Declare adds or replaces a component declaration.
func (s *Scope) Declare(name string, ctor Constructor) {
	if s.components == nil {
		s.components = make(map[string]Constructor)
	}
	s.components[Normalize(name)] = ctor
}

// Lookup implements Lookup. A nil scope declares nothing. Entries declared
// with a nil constructor are ignored here; only the ambient registry can mark
// a name as natively handled.
func (s *Scope) Lookup(name string) (Constructor, bool) {
	if s == nil {
		return nil, false
	}
	ctor, ok := s.components[Normalize(name)]
	return ctor, ok && ctor != nil
}

// Names returns the declared names in no particular order.
func (s *Scope) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.components))
	for name := range s.components {
		names = append(names, name)
	}
	return names
}
