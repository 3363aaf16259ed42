package registry

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func element(tag string) Constructor {
	return func(*Scope) (*html.Node, error) {
		return &html.Node{Type: html.ElementNode, Data: tag}, nil
	}
}

func TestNewComponentRegistry(t *testing.T) {
	registry := NewComponentRegistry()

	assert.NotNil(t, registry)
	assert.Equal(t, 0, registry.Count())
	assert.Empty(t, registry.Names())
}

func TestComponentRegistry_RegisterAndLookup(t *testing.T) {
	registry := NewComponentRegistry()
	require.NoError(t, registry.Register("Widget", element("widget-card")))

	ctor, ok := registry.Lookup("widget")
	require.True(t, ok)
	require.NotNil(t, ctor)

	node, err := ctor(nil)
	require.NoError(t, err)
	assert.Equal(t, "widget-card", node.Data)

	_, ok = registry.Lookup("missing")
	assert.False(t, ok)
}

func TestComponentRegistry_RegisterRejectsInvalid(t *testing.T) {
	registry := NewComponentRegistry()

	assert.Error(t, registry.Register("widget", nil))
	assert.Error(t, registry.Register("", element("x")))
	assert.Equal(t, 0, registry.Count())
}

func TestComponentRegistry_Native(t *testing.T) {
	registry := NewComponentRegistry()
	require.NoError(t, registry.DefineNative("clock"))

	ctor, ok := registry.Lookup("clock")
	assert.True(t, ok)
	assert.Nil(t, ctor)

	info, ok := registry.Get("CLOCK")
	require.True(t, ok)
	assert.True(t, info.Native)
}

func TestComponentRegistry_Watch(t *testing.T) {
	registry := NewComponentRegistry()
	events := registry.Watch()

	require.NoError(t, registry.Register("a", element("x-a")))
	require.NoError(t, registry.Register("a", element("x-b")))
	registry.Remove("a")
	registry.Remove("a")

	expected := []EventType{EventTypeAdded, EventTypeUpdated, EventTypeRemoved}
	for _, want := range expected {
		select {
		case event := <-events:
			assert.Equal(t, want, event.Type)
			assert.Equal(t, "a", event.Component.Name)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s event", want)
		}
	}

	select {
	case event := <-events:
		t.Fatalf("unexpected event %s", event.Type)
	default:
	}
}

func TestComponentRegistry_UnWatch(t *testing.T) {
	registry := NewComponentRegistry()
	events := registry.Watch()

	registry.UnWatch(events)

	_, open := <-events
	assert.False(t, open)
	assert.NotPanics(t, func() {
		_ = registry.Register("a", element("x-a"))
	})
}

func TestComponentRegistry_ConcurrentAccess(t *testing.T) {
	registry := NewComponentRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("component-%d", i)
			assert.NoError(t, registry.Register(name, element("x")))
			_, ok := registry.Lookup(name)
			assert.True(t, ok)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, registry.Count())
	assert.Len(t, registry.Names(), 10)
}

func TestScope(t *testing.T) {
	scope := NewScope(map[string]Constructor{"Card": element("x-card")})

	ctor, ok := scope.Lookup("card")
	require.True(t, ok)
	assert.NotNil(t, ctor)

	scope.Declare("hole", nil)
	_, ok = scope.Lookup("hole")
	assert.False(t, ok)

	var nilScope *Scope
	_, ok = nilScope.Lookup("card")
	assert.False(t, ok)
	assert.Nil(t, nilScope.Names())
	assert.ElementsMatch(t, []string{"card", "hole"}, scope.Names())
}

func FuzzNormalize(f *testing.F) {
	f.Add("widget")
	f.Add("Straße")
	f.Add("")

	f.Fuzz(func(t *testing.T, name string) {
		folded := Normalize(name)
		if Normalize(folded) != folded {
			t.Errorf("Normalize is not idempotent for %q", name)
		}
	})
}
