package template

import (
	"testing"

	stencilerrors "github.com/conneroisu/stencil/internal/errors"
	"github.com/conneroisu/stencil/internal/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	testCases := []struct {
		name        string
		statics     []string
		markup      string
		descriptors []PartDescriptor
	}{
		{
			name:        "no expressions",
			statics:     []string{"<p>static</p>"},
			markup:      "<p>static</p>",
			descriptors: nil,
		},
		{
			name:        "only child",
			statics:     []string{"<p>", "</p>"},
			markup:      "<p><!----><!----></p>",
			descriptors: []PartDescriptor{NodePart(2)},
		},
		{
			name:        "between text",
			statics:     []string{"<p>hi ", "!</p>"},
			markup:      "<p>hi !</p>",
			descriptors: []PartDescriptor{NodePart(2)},
		},
		{
			name:        "adjacent expressions",
			statics:     []string{"<p>", "", "</p>"},
			markup:      "<p><!----><!----><!----></p>",
			descriptors: []PartDescriptor{NodePart(2), NodePart(3)},
		},
		{
			name:        "attribute with statics",
			statics:     []string{`<div class="a `, ` b">x</div>`},
			markup:      "<div>x</div>",
			descriptors: []PartDescriptor{AttributePart(0, "class", "a ", " b")},
		},
		{
			name:        "unquoted attribute",
			statics:     []string{`<input value=`, `>`},
			markup:      "<input/>",
			descriptors: []PartDescriptor{AttributePart(0, "value")},
		},
		{
			name:        "two expressions in one attribute",
			statics:     []string{`<a href="/`, `/`, `">x</a>`},
			markup:      "<a>x</a>",
			descriptors: []PartDescriptor{AttributePart(0, "href", "/", "/", "")},
		},
		{
			name:        "comment expression is inactive",
			statics:     []string{"<!-- ", " --><p></p>"},
			markup:      "<!--  --><p></p>",
			descriptors: []PartDescriptor{{Kind: KindNode, Position: -1}},
		},
		{
			name:    "nested template",
			statics: []string{"<p>", "</p><template><i>", "</i></template>"},
			markup:  "<p><!----><!----></p><template><i><!----><!----></i></template>",
			descriptors: []PartDescriptor{
				NodePart(2),
				NodePart(6),
			},
		},
		{
			name:    "attribute and child on one element",
			statics: []string{`<b title="`, `">`, `</b>`},
			markup:  "<b><!----><!----></b>",
			descriptors: []PartDescriptor{
				AttributePart(0, "title"),
				NodePart(2),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tmpl, err := Compile(tc.statics)
			require.NoError(t, err)

			markup, err := tmpl.Markup()
			require.NoError(t, err)
			assert.Equal(t, tc.markup, markup)
			assert.Equal(t, tc.descriptors, tmpl.Descriptors())
			assert.Equal(t, len(tc.statics)-1, tmpl.ValueCount())
		})
	}
}

func TestCompileRejectsUnsupportedPositions(t *testing.T) {
	testCases := []struct {
		name    string
		statics []string
	}{
		{"attribute name position", []string{"<div ", "></div>"}},
		{"raw text", []string{"<textarea>", "</textarea>"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compile(tc.statics)
			require.Error(t, err)
			assert.ErrorIs(t, err, stencilerrors.ErrUnsupportedBinding(""))
		})
	}

	_, err := Compile(nil)
	assert.ErrorIs(t, err, stencilerrors.ErrInvalidTemplate(""))
}

func TestNewValidatesOrder(t *testing.T) {
	content, err := dom.ParseFragment("<a></a><b></b>")
	require.NoError(t, err)

	_, err = New(content, []PartDescriptor{NodePart(1), NodePart(0)})
	assert.ErrorIs(t, err, stencilerrors.ErrInvalidTemplate(""))

	_, err = New(content, []PartDescriptor{{Kind: KindAttribute, Position: 0, Active: true}})
	assert.ErrorIs(t, err, stencilerrors.ErrInvalidTemplate(""))

	_, err = New(nil, nil)
	assert.Error(t, err)

	tmpl, err := New(content, []PartDescriptor{NodePart(1), Inactive(NodePart(7)), NodePart(1)})
	require.NoError(t, err)
	assert.Len(t, tmpl.Descriptors(), 3)
}

func TestCloneIsIndependent(t *testing.T) {
	tmpl, err := Parse("<p>x</p>", nil)
	require.NoError(t, err)

	clone := tmpl.Clone()
	dom.SetTextContent(clone.FirstChild, "changed")

	markup, err := tmpl.Markup()
	require.NoError(t, err)
	assert.Equal(t, "<p>x</p>", markup)
}

func TestDescriptorSlots(t *testing.T) {
	assert.Equal(t, 1, NodePart(0).Slots())
	assert.Equal(t, 1, AttributePart(0, "a").Slots())
	assert.Equal(t, 3, AttributePart(0, "a", "", "", "", "").Slots())
	assert.Equal(t, "attribute", KindAttribute.String())
}
