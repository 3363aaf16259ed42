package template

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	stencilerrors "github.com/conneroisu/stencil/internal/errors"
	"github.com/conneroisu/stencil/internal/dom"
	"github.com/conneroisu/stencil/internal/walker"
	"golang.org/x/net/html"
)

var (
	marker     = fmt.Sprintf("{{stencil-%d}}", rand.Uint32())
	nodeMarker = "<!--" + marker + "-->"

	// markerPattern also matches the node form, which ends up inside
	// attribute values when an expression follows another one in the same
	// value.
	markerPattern = regexp.MustCompile(regexp.QuoteMeta(nodeMarker) + "|" + regexp.QuoteMeta(marker))

	// lastAttributeName matches markup that ends inside an attribute value:
	// whitespace, a name, '=' and a possibly partial value.
	lastAttributeName = regexp.MustCompile(
		`[ \t\n\f\r][^\x00-\x1F\x7F-\x9F "'>=/]+[ \t\n\f\r]*=[ \t\n\f\r]*(?:[^ \t\n\f\r"'\x60<>=]*|"[^"]*|'[^']*)$`)
)

// Compile prepares a template from the static strings around a sequence of
// expressions, so statics[i] precedes expression i. Expressions may sit in
// child-node positions, in attribute values, or inside comments (where they
// become inactive parts).
func Compile(statics []string) (*Template, error) {
	if len(statics) == 0 {
		return nil, stencilerrors.ErrInvalidTemplate("template has no strings")
	}

	markup, err := joinMarkup(statics)
	if err != nil {
		return nil, err
	}

	content, err := dom.ParseFragment(markup)
	if err != nil {
		return nil, stencilerrors.WrapValidation(err, stencilerrors.ErrCodeInvalidTemplate, "parse template markup")
	}

	descriptors, err := prepare(content, len(statics)-1)
	if err != nil {
		return nil, err
	}
	return New(content, descriptors)
}

type scanState int

const (
	stateText scanState = iota
	stateTag
	stateDoubleQuoted
	stateSingleQuoted
	stateComment
)

// markupScanner tracks whether the markup written so far ends in text, a tag
// or a comment. It is deliberately shallow: raw text elements are treated as
// text.
type markupScanner struct {
	state scanState
}

func (s *markupScanner) feed(chunk string) {
	for i := 0; i < len(chunk); i++ {
		c := chunk[i]
		switch s.state {
		case stateText:
			if strings.HasPrefix(chunk[i:], "<!--") {
				s.state = stateComment
				i += 3
			} else if c == '<' && i+1 < len(chunk) && isTagStart(chunk[i+1]) {
				s.state = stateTag
			}
		case stateTag:
			switch c {
			case '"':
				s.state = stateDoubleQuoted
			case '\'':
				s.state = stateSingleQuoted
			case '>':
				s.state = stateText
			}
		case stateDoubleQuoted:
			if c == '"' {
				s.state = stateTag
			}
		case stateSingleQuoted:
			if c == '\'' {
				s.state = stateTag
			}
		case stateComment:
			if strings.HasPrefix(chunk[i:], "-->") {
				s.state = stateText
				i += 2
			}
		}
	}
}

func isTagStart(c byte) bool {
	return c == '/' || c == '!' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func joinMarkup(strs []string) (string, error) {
	var b strings.Builder
	var scan markupScanner

	for i, s := range strs[:len(strs)-1] {
		b.WriteString(s)
		scan.feed(s)

		var insert string
		switch scan.state {
		case stateText:
			insert = nodeMarker
		case stateComment:
			insert = marker
		default:
			if !lastAttributeName.MatchString(b.String()) {
				return "", stencilerrors.ErrUnsupportedBinding(
					fmt.Sprintf("expression %d is inside a tag but not in an attribute value", i))
			}
			insert = marker
		}
		b.WriteString(insert)
		scan.feed(insert)
	}
	b.WriteString(strs[len(strs)-1])

	return b.String(), nil
}

// prepare walks content in canonical order, turning markers into descriptors
// and stripping them from the static tree. Node expressions bind to the node
// after their marker comment; a marker comment is kept (emptied) only when
// nothing follows it, and an empty comment is inserted in front of a marker
// that has no previous sibling so every node part has an anchor.
func prepare(content *html.Node, expressions int) ([]PartDescriptor, error) {
	var (
		descriptors   []PartDescriptor
		toRemove      []*html.Node
		cursor        = walker.New(content)
		index         = -1
		lastPartIndex = -1
		bound         = 0
	)

	for bound < expressions {
		if err := cursor.Next(); err != nil {
			return nil, stencilerrors.ErrInvalidTemplate(fmt.Sprintf(
				"html parser dropped %d of %d expressions; check for expressions in misplaced markup",
				expressions-bound, expressions))
		}
		index++
		n := cursor.Node()

		switch n.Type {
		case html.ElementNode:
			if strings.Contains(n.Data, marker) {
				return nil, stencilerrors.ErrUnsupportedBinding("expressions cannot name a tag")
			}
			kept := make([]html.Attribute, 0, len(n.Attr))
			for _, a := range n.Attr {
				if strings.Contains(a.Key, marker) {
					return nil, stencilerrors.ErrUnsupportedBinding(
						fmt.Sprintf("expressions cannot name an attribute of <%s>", n.Data))
				}
				if !markerPattern.MatchString(a.Val) {
					kept = append(kept, a)
					continue
				}
				segments := markerPattern.Split(a.Val, -1)
				descriptors = append(descriptors, PartDescriptor{
					Kind:     KindAttribute,
					Position: index,
					Active:   true,
					Name:     a.Key,
					Strings:  segments,
				})
				bound += len(segments) - 1
			}
			n.Attr = kept

		case html.TextNode:
			if markerPattern.MatchString(n.Data) {
				parent := "text"
				if n.Parent != nil && n.Parent.Type == html.ElementNode {
					parent = n.Parent.Data
				}
				return nil, stencilerrors.ErrUnsupportedBinding(
					fmt.Sprintf("expressions inside <%s> raw text are not supported", parent))
			}

		case html.CommentNode:
			if n.Data != marker {
				for k := strings.Count(n.Data, marker); k > 0; k-- {
					descriptors = append(descriptors, PartDescriptor{Kind: KindNode, Position: -1})
					bound++
				}
				n.Data = strings.ReplaceAll(n.Data, marker, "")
				continue
			}

			if n.PrevSibling == nil || index == lastPartIndex {
				index++
				n.Parent.InsertBefore(dom.NewComment(""), n)
			}
			lastPartIndex = index
			descriptors = append(descriptors, NodePart(index))
			if n.NextSibling == nil {
				n.Data = ""
			} else {
				toRemove = append(toRemove, n)
				index--
			}
			bound++
		}
	}

	for _, n := range toRemove {
		n.Parent.RemoveChild(n)
	}
	return descriptors, nil
}
