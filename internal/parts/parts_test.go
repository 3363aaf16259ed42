package parts

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/a-h/templ"
	"github.com/conneroisu/stencil/internal/dom"
	"github.com/conneroisu/stencil/internal/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func fragment(t *testing.T, markup string) *html.Node {
	t.Helper()
	root, err := dom.ParseFragment(markup)
	require.NoError(t, err)
	return root
}

func render(t *testing.T, n *html.Node) string {
	t.Helper()
	out, err := dom.Render(n)
	require.NoError(t, err)
	return out
}

// placed returns a node part anchored after the first child of <p>.
func placed(t *testing.T, markup string) (*html.Node, *NodePart) {
	t.Helper()
	root := fragment(t, markup)
	p := NewNodePart(Options{})
	p.InsertAfterNode(root.FirstChild.FirstChild)
	return root, p
}

type label string

func (l label) String() string { return "label:" + string(l) }

func TestNodePartValues(t *testing.T) {
	testCases := []struct {
		name   string
		value  any
		expect string
	}{
		{"string", "hello", "<p><!---->hello<!----></p>"},
		{"escaped", "<b>", "<p><!---->&lt;b&gt;<!----></p>"},
		{"int", 42, "<p><!---->42<!----></p>"},
		{"float", 1.5, "<p><!---->1.5<!----></p>"},
		{"stringer", label("x"), "<p><!---->label:x<!----></p>"},
		{"nil", nil, "<p><!----><!----></p>"},
		{"nothing", Nothing, "<p><!----><!----></p>"},
		{"element", dom.NewElement("b"), "<p><!----><b></b><!----></p>"},
		{"list", []any{"a", 1, dom.NewElement("i")}, "<p><!---->a1<i></i><!----></p>"},
		{"nodes", []*html.Node{dom.NewText("x"), dom.NewText("y")}, "<p><!---->xy<!----></p>"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root, p := placed(t, "<p><!----><!----></p>")
			p.SetValue(tc.value)
			require.NoError(t, p.Commit())
			assert.Equal(t, tc.expect, render(t, root))
		})
	}
}

func TestNodePartFragment(t *testing.T) {
	root, p := placed(t, "<p><!----><!----></p>")

	p.SetValue(fragment(t, "<i>a</i>b"))
	require.NoError(t, p.Commit())
	assert.Equal(t, "<p><!----><i>a</i>b<!----></p>", render(t, root))
	assert.Len(t, p.Nodes(), 2)
}

func TestNodePartRecommitsSameFragment(t *testing.T) {
	root, p := placed(t, "<p><!----><!----></p>")
	frag := fragment(t, "<b>x</b>")

	for i := 0; i < 2; i++ {
		p.SetValue(frag)
		require.NoError(t, p.Commit())
		assert.Equal(t, "<p><!----><b>x</b><!----></p>", render(t, root))
	}
	assert.Equal(t, "<b>x</b>", render(t, frag))

	// A fragment used twice in one value renders twice.
	p.SetValue([]any{frag, frag})
	require.NoError(t, p.Commit())
	assert.Equal(t, "<p><!----><b>x</b><b>x</b><!----></p>", render(t, root))

	p.SetValue([]any{frag})
	require.NoError(t, p.Commit())
	assert.Equal(t, "<p><!----><b>x</b><!----></p>", render(t, root))
}

func TestNodePartReplacesPreviousContent(t *testing.T) {
	root, p := placed(t, "<p><!---->tail</p>")

	p.SetValue([]any{"a", "b"})
	require.NoError(t, p.Commit())
	assert.Equal(t, "<p><!---->abtail</p>", render(t, root))

	p.SetValue("c")
	require.NoError(t, p.Commit())
	assert.Equal(t, "<p><!---->ctail</p>", render(t, root))

	p.SetValue(Nothing)
	require.NoError(t, p.Commit())
	assert.Equal(t, "<p><!---->tail</p>", render(t, root))
}

func TestNodePartTwoPhase(t *testing.T) {
	root, p := placed(t, "<p><!----><!----></p>")

	p.SetValue("first")
	p.SetValue("second")
	assert.Equal(t, StateStaged, p.State())
	assert.Equal(t, "<p><!----><!----></p>", render(t, root))

	require.NoError(t, p.Commit())
	assert.Equal(t, StateIdle, p.State())
	assert.Equal(t, "<p><!---->second<!----></p>", render(t, root))
	assert.Equal(t, "second", p.Value())

	// Idle parts ignore commits and NoChange keeps them idle.
	p.SetValue(NoChange)
	assert.Equal(t, StateIdle, p.State())
	require.NoError(t, p.Commit())
	assert.Equal(t, "<p><!---->second<!----></p>", render(t, root))
}

func TestNodePartUnplaced(t *testing.T) {
	p := NewNodePart(Options{})
	p.SetValue("x")
	assert.Error(t, p.Commit())
}

func TestNodePartTemplComponent(t *testing.T) {
	root, p := placed(t, "<p><!----><!----></p>")

	component := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<span class="badge">new</span>`)
		return err
	})
	p.SetValue(component)
	require.NoError(t, p.Commit())
	assert.Equal(t, `<p><!----><span class="badge">new</span><!----></p>`, render(t, root))

	failing := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return errors.New("boom")
	})
	p.SetValue(failing)
	assert.Error(t, p.Commit())
}

func TestAttributeCommitter(t *testing.T) {
	el := dom.NewElement("a")
	committer := NewAttributeCommitter(el, "href", []string{"/", "/", ""})
	parts := committer.Parts()
	require.Len(t, parts, 2)

	parts[0].SetValue("users")
	parts[1].SetValue(7)
	_, ok := dom.Attribute(el, "href")
	assert.False(t, ok, "staging must not touch the element")

	for _, p := range parts {
		require.NoError(t, p.Commit())
	}
	href, _ := dom.Attribute(el, "href")
	assert.Equal(t, "/users/7", href)

	parts[1].SetValue(8)
	for _, p := range parts {
		require.NoError(t, p.Commit())
	}
	href, _ = dom.Attribute(el, "href")
	assert.Equal(t, "/users/8", href)
}

func TestAttributeSingleExpressionRemoval(t *testing.T) {
	el := dom.NewElement("div")
	parts := NewAttributeCommitter(el, "title", []string{"", ""}).Parts()
	require.Len(t, parts, 1)

	parts[0].SetValue("tip")
	require.NoError(t, parts[0].Commit())
	title, ok := dom.Attribute(el, "title")
	assert.True(t, ok)
	assert.Equal(t, "tip", title)

	parts[0].SetValue(Nothing)
	require.NoError(t, parts[0].Commit())
	_, ok = dom.Attribute(el, "title")
	assert.False(t, ok)
}

func TestBooleanAttributePart(t *testing.T) {
	el := dom.NewElement("input")
	p := NewBooleanAttributePart(el, "disabled")

	for _, tc := range []struct {
		value   any
		present bool
	}{
		{true, true},
		{false, false},
		{"yes", true},
		{"", false},
		{1, true},
		{0, false},
		{nil, false},
	} {
		p.SetValue(tc.value)
		require.NoError(t, p.Commit())
		_, ok := dom.Attribute(el, "disabled")
		assert.Equal(t, tc.present, ok, "value %v", tc.value)
	}
}

func TestDefaultProcessor(t *testing.T) {
	var processor Processor = DefaultProcessor{}
	el := dom.NewElement("button")
	d := template.AttributePart(0, "?disabled")

	parts, err := processor.HandleAttributeExpressions(el, "?disabled", []string{"", ""}, Options{}, d)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.IsType(t, &BooleanAttributePart{}, parts[0])

	parts[0].SetValue(true)
	require.NoError(t, parts[0].Commit())
	_, ok := dom.Attribute(el, "disabled")
	assert.True(t, ok)

	_, err = processor.HandleAttributeExpressions(el, "?hidden", []string{"x", ""}, Options{}, d)
	assert.Error(t, err)

	_, err = processor.HandleAttributeExpressions(el, "class", []string{"only"}, Options{}, d)
	assert.Error(t, err)

	parts, err = processor.HandleAttributeExpressions(el, "class", []string{"a ", " ", ""}, Options{}, d)
	require.NoError(t, err)
	assert.Len(t, parts, 2)

	node := processor.HandleTextExpression(Options{}, template.NodePart(0))
	assert.IsType(t, &NodePart{}, node)
}
