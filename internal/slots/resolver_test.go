package slots

import (
	"errors"
	"testing"

	stencilerrors "github.com/conneroisu/stencil/internal/errors"
	"github.com/conneroisu/stencil/internal/dom"
	"github.com/conneroisu/stencil/internal/registry"
	"github.com/conneroisu/stencil/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parse(t *testing.T, markup string) *html.Node {
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

func TestSlotName(t *testing.T) {
	r := NewResolver(nil, nil)

	testCases := []struct {
		node *html.Node
		name string
		ok   bool
	}{
		{dom.NewElement("tpl-slot-widget"), "widget", true},
		{dom.NewElement("x-tpl-slot-card"), "card", true},
		{dom.NewElement("tpl-slot"), "", true},
		{dom.NewElement("div"), "", false},
		{dom.NewText("tpl-slot-widget"), "", false},
		{nil, "", false},
	}

	for _, tc := range testCases {
		name, ok := r.SlotName(tc.node)
		assert.Equal(t, tc.ok, ok)
		assert.Equal(t, tc.name, name)
	}
}

func TestCount(t *testing.T) {
	r := NewResolver(nil, nil)
	root := parse(t, `<tpl-slot-a></tpl-slot-a><div><tpl-slot-b x="1"></tpl-slot-b></div>`+
		`<template><tpl-slot-c></tpl-slot-c></template><p>tpl-slot-text</p>`)

	count, err := r.Count(root)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = r.Count(parse(t, "<p>plain</p>"))
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestResolveFromScope(t *testing.T) {
	r := NewResolver(nil, nil)
	root := parse(t, `<div><tpl-slot-widget class="a" id="w">hello <b>world</b></tpl-slot-widget></div>`)
	slot := root.FirstChild.FirstChild

	scope := registry.NewScope(map[string]registry.Constructor{"widget": testutils.ElementConstructor("widget-el")})
	got, outcome, err := r.Resolve(slot, scope)
	require.NoError(t, err)

	assert.Equal(t, OutcomeMaterialized, outcome)
	assert.Equal(t, "widget-el", got.Data)
	assert.Same(t, root.FirstChild, got.Parent)
	assert.Nil(t, slot.Parent)
	assert.Empty(t, slot.Attr)
	assert.Equal(t, `<div><widget-el class="a" id="w">hello world</widget-el></div>`, render(t, root))
}

func TestResolveScopeWinsOverFallback(t *testing.T) {
	fallback := registry.NewComponentRegistry()
	require.NoError(t, fallback.Register("widget", testutils.ElementConstructor("global-el")))

	r := NewResolver(fallback, nil)
	root := parse(t, `<tpl-slot-widget></tpl-slot-widget>`)
	scope := registry.NewScope(map[string]registry.Constructor{"widget": testutils.ElementConstructor("scoped-el")})

	got, _, err := r.Resolve(root.FirstChild, scope)
	require.NoError(t, err)
	assert.Equal(t, "scoped-el", got.Data)
}

func TestResolveFallback(t *testing.T) {
	fallback := registry.NewComponentRegistry()
	require.NoError(t, fallback.Register("widget", testutils.ElementConstructor("global-el")))

	r := NewResolver(fallback, nil)
	root := parse(t, `<tpl-slot-widget></tpl-slot-widget>`)

	got, outcome, err := r.Resolve(root.FirstChild, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeMaterialized, outcome)
	assert.Equal(t, "<global-el></global-el>", render(t, root))
	assert.Same(t, root.FirstChild, got)
}

func TestResolveNative(t *testing.T) {
	fallback := registry.NewComponentRegistry()
	require.NoError(t, fallback.DefineNative("clock"))

	r := NewResolver(fallback, nil)
	root := parse(t, `<tpl-slot-clock a="1"></tpl-slot-clock>`)
	slot := root.FirstChild

	got, outcome, err := r.Resolve(slot, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNative, outcome)
	assert.Same(t, slot, got)
	assert.Equal(t, `<tpl-slot-clock a="1"></tpl-slot-clock>`, render(t, root))
}

func TestResolveMixedRegistry(t *testing.T) {
	r := NewResolver(testutils.CreateTestRegistry(t), nil)
	root := parse(t, `<tpl-slot-card id="x">body</tpl-slot-card><tpl-slot-clock></tpl-slot-clock>`)
	card, clock := root.FirstChild, root.FirstChild.NextSibling

	_, outcome, err := r.Resolve(card, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeMaterialized, outcome)

	_, outcome, err = r.Resolve(clock, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNative, outcome)

	assert.Equal(t, `<article class="card" id="x">body</article><tpl-slot-clock></tpl-slot-clock>`, render(t, root))
}

func TestResolveUnresolved(t *testing.T) {
	r := NewResolver(registry.NewComponentRegistry(), nil)
	root := parse(t, `<tpl-slot-missing></tpl-slot-missing>`)

	_, _, err := r.Resolve(root.FirstChild, registry.NewScope(nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, stencilerrors.ErrUnresolvedComponent(""))
	assert.Contains(t, err.Error(), "missing")
}

func TestResolveInvalidConstructor(t *testing.T) {
	r := NewResolver(nil, nil)
	boom := errors.New("boom")

	testCases := []struct {
		name string
		ctor registry.Constructor
	}{
		{"error", func(*registry.Scope) (*html.Node, error) { return nil, boom }},
		{"nil node", func(*registry.Scope) (*html.Node, error) { return nil, nil }},
		{"text node", func(*registry.Scope) (*html.Node, error) { return dom.NewText("x"), nil }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root := parse(t, `<tpl-slot-bad></tpl-slot-bad>`)
			scope := registry.NewScope(map[string]registry.Constructor{"bad": tc.ctor})

			_, _, err := r.Resolve(root.FirstChild, scope)
			assert.ErrorIs(t, err, stencilerrors.ErrInvalidComponent("", nil))
		})
	}
}

func TestResolveNotSlot(t *testing.T) {
	r := NewResolver(nil, nil)
	root := parse(t, `<div></div>`)

	got, outcome, err := r.Resolve(root.FirstChild, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotSlot, outcome)
	assert.Same(t, root.FirstChild, got)
}

func TestResolveDetachesAttachedInstance(t *testing.T) {
	r := NewResolver(nil, nil)
	holder := dom.NewElement("div")
	shared := dom.NewElement("shared-el")
	holder.AppendChild(shared)

	root := parse(t, `<tpl-slot-x></tpl-slot-x>`)
	scope := registry.NewScope(map[string]registry.Constructor{
		"x": func(*registry.Scope) (*html.Node, error) { return shared, nil },
	})

	_, _, err := r.Resolve(root.FirstChild, scope)
	require.NoError(t, err)
	assert.Nil(t, holder.FirstChild)
	assert.Same(t, root, shared.Parent)
}
