package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	stencilerrors "github.com/conneroisu/stencil/internal/errors"
	"github.com/conneroisu/stencil/internal/dom"
	"github.com/conneroisu/stencil/internal/parts"
	"github.com/conneroisu/stencil/internal/registry"
	"github.com/conneroisu/stencil/internal/template"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

// ComponentDecl declares the element a component slot becomes.
type ComponentDecl struct {
	Tag   string            `yaml:"tag"`
	Attrs map[string]string `yaml:"attrs,omitempty"`
}

// Constructor returns a constructor building the declared element.
// Attributes are applied in name order.
func (c ComponentDecl) Constructor() registry.Constructor {
	return func(*registry.Scope) (*html.Node, error) {
		if c.Tag == "" {
			return nil, fmt.Errorf("component declares no tag")
		}
		keys := make([]string, 0, len(c.Attrs))
		for k := range c.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		attrs := make([]html.Attribute, 0, len(keys))
		for _, k := range keys {
			attrs = append(attrs, html.Attribute{Key: k, Val: c.Attrs[k]})
		}
		return dom.NewElement(c.Tag, attrs...), nil
	}
}

// ComponentsFile is the YAML component declarations file:
//
//	scope:
//	  card: {tag: article, attrs: {class: card}}
//	global:
//	  badge: {tag: span}
//	native: [clock]
//
// Scope entries are declared for the one instantiation; global and native
// entries go to the ambient registry.
type ComponentsFile struct {
	Scope  map[string]ComponentDecl `yaml:"scope"`
	Global map[string]ComponentDecl `yaml:"global"`
	Native []string                 `yaml:"native"`
}

// NewScope builds the instantiation scope. A file without scope entries
// yields nil.
func (f *ComponentsFile) NewScope() *registry.Scope {
	if f == nil || len(f.Scope) == 0 {
		return nil
	}
	scope := registry.NewScope(nil)
	for name, decl := range f.Scope {
		scope.Declare(name, decl.Constructor())
	}
	return scope
}

// SplitStatics splits template file contents on the hole token.
func SplitStatics(markup, hole string) []string {
	return strings.Split(markup, hole)
}

// LoadTemplate reads and compiles a template file.
func LoadTemplate(path, hole string) (*template.Template, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.Compile(SplitStatics(string(data), hole))
	if err != nil {
		var se *stencilerrors.StencilError
		if errors.As(err, &se) {
			return nil, se.WithFile(path)
		}
		return nil, err
	}
	return tmpl, nil
}

// LoadValues reads a YAML sequence of values. An empty path means no values.
//
// Scalars are used as they are. A mapping with an "html" key becomes a parsed
// fragment; {nothing: true} and {nochange: true} become parts.Nothing and
// parts.NoChange. Sequences render their items in order.
func LoadValues(path string) ([]any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var raw []any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, stencilerrors.WrapValidation(err, stencilerrors.ErrCodeInvalidTemplate,
			"values file must be a YAML sequence").WithFile(path)
	}

	values := make([]any, len(raw))
	for i, item := range raw {
		v, err := decodeValue(item)
		if err != nil {
			return nil, stencilerrors.WrapValidation(err, stencilerrors.ErrCodeInvalidTemplate,
				fmt.Sprintf("value %d", i)).WithFile(path)
		}
		values[i] = v
	}
	return values, nil
}

func decodeValue(item any) (any, error) {
	switch v := item.(type) {
	case map[string]any:
		if markup, ok := v["html"]; ok {
			return dom.ParseFragment(fmt.Sprint(markup))
		}
		if b, ok := v["nothing"].(bool); ok && b {
			return parts.Nothing, nil
		}
		if b, ok := v["nochange"].(bool); ok && b {
			return parts.NoChange, nil
		}
		return nil, fmt.Errorf("unsupported value mapping with keys %v", mapKeys(v))
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			decoded, err := decodeValue(elem)
			if err != nil {
				return nil, err
			}
			out[i] = decoded
		}
		return out, nil
	default:
		return v, nil
	}
}

func mapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadComponents reads a components file. An empty path yields nil.
func LoadComponents(path string) (*ComponentsFile, error) {
	if path == "" {
		return nil, nil
	}
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var file ComponentsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, stencilerrors.WrapValidation(err, stencilerrors.ErrCodeInvalidComponent,
			"parse components file").WithFile(path)
	}
	for name, decl := range file.Scope {
		if decl.Tag == "" {
			return nil, stencilerrors.ErrInvalidComponent(name, fmt.Errorf("scope entry has no tag")).WithFile(path)
		}
	}
	for name, decl := range file.Global {
		if decl.Tag == "" {
			return nil, stencilerrors.ErrInvalidComponent(name, fmt.Errorf("global entry has no tag")).WithFile(path)
		}
	}
	return &file, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, stencilerrors.ErrFileNotFound(path, err)
		}
		return nil, stencilerrors.NewIOError(stencilerrors.ErrCodeReadFailed, "read file", err).WithFile(path)
	}
	return data, nil
}
