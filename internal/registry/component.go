// Package registry holds component declarations: the per-instantiation Scope
// and the process-wide ComponentRegistry consulted as a fallback.
package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// ComponentRegistry is the ambient fallback for component slots. It is safe
// for concurrent use and notifies watchers of every change.
type ComponentRegistry struct {
	components map[string]*ComponentInfo
	mutex      sync.RWMutex
	watchers   []chan ComponentEvent
}

// ComponentInfo describes one registered component.
type ComponentInfo struct {
	Name        string
	Constructor Constructor
	// Native marks a component the host builds itself. Slots naming it are
	// left untouched.
	Native       bool
	RegisteredAt time.Time
}

// ComponentEvent represents a change in the component registry
type ComponentEvent struct {
	Type      EventType
	Component *ComponentInfo
	Timestamp time.Time
}

// EventType represents the type of component event
type EventType int

const (
	EventTypeAdded EventType = iota
	EventTypeUpdated
	EventTypeRemoved
)

// String returns the event name.
func (e EventType) String() string {
	switch e {
	case EventTypeAdded:
		return "added"
	case EventTypeUpdated:
		return "updated"
	case EventTypeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// NewComponentRegistry creates a new component registry
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		components: make(map[string]*ComponentInfo),
		watchers:   make([]chan ComponentEvent, 0),
	}
}

// Register adds or replaces the constructor for name.
func (r *ComponentRegistry) Register(name string, ctor Constructor) error {
	if ctor == nil {
		return fmt.Errorf("registry: constructor for %q is nil", name)
	}
	return r.put(&ComponentInfo{Name: Normalize(name), Constructor: ctor})
}

// DefineNative marks name as built by the host.
func (r *ComponentRegistry) DefineNative(name string) error {
	return r.put(&ComponentInfo{Name: Normalize(name), Native: true})
}

func (r *ComponentRegistry) put(component *ComponentInfo) error {
	if component.Name == "" {
		return fmt.Errorf("registry: component name is required")
	}
	component.RegisteredAt = time.Now()

	r.mutex.Lock()
	defer r.mutex.Unlock()

	eventType := EventTypeAdded
	if _, exists := r.components[component.Name]; exists {
		eventType = EventTypeUpdated
	}
	r.components[component.Name] = component
	r.notify(eventType, component)
	return nil
}

// notify must be called with the write lock held.
func (r *ComponentRegistry) notify(eventType EventType, component *ComponentInfo) {
	event := ComponentEvent{
		Type:      eventType,
		Component: component,
		Timestamp: time.Now(),
	}

	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}

// Get retrieves a component by name
func (r *ComponentRegistry) Get(name string) (*ComponentInfo, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	component, exists := r.components[Normalize(name)]
	return component, exists
}

// Lookup implements Lookup. Native components are found with a nil
// constructor.
func (r *ComponentRegistry) Lookup(name string) (Constructor, bool) {
	component, ok := r.Get(name)
	if !ok {
		return nil, false
	}
	if component.Native {
		return nil, true
	}
	return component.Constructor, true
}

// Names returns the registered names, sorted.
func (r *ComponentRegistry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Remove removes a component from the registry
func (r *ComponentRegistry) Remove(name string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	name = Normalize(name)
	component, exists := r.components[name]
	if !exists {
		return
	}

	delete(r.components, name)
	r.notify(EventTypeRemoved, component)
}

// Watch returns a channel that receives component events
func (r *ComponentRegistry) Watch() <-chan ComponentEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan ComponentEvent, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *ComponentRegistry) UnWatch(ch <-chan ComponentEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// Count returns the number of registered components
func (r *ComponentRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.components)
}
