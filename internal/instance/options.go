package instance

import (
	"github.com/conneroisu/stencil/internal/logging"
	"github.com/conneroisu/stencil/internal/parts"
	"github.com/conneroisu/stencil/internal/registry"
	"golang.org/x/net/html"
)

// Upgrader runs once over the instantiated tree, after every part is bound
// and every component slot is resolved.
type Upgrader interface {
	Upgrade(root *html.Node) error
}

// UpgraderFunc adapts a function to Upgrader.
type UpgraderFunc func(root *html.Node) error

// Upgrade implements Upgrader.
func (f UpgraderFunc) Upgrade(root *html.Node) error { return f(root) }

// TraceFunc observes every node the instantiation pass arrives at.
type TraceFunc func(ordinal, depth int, node *html.Node)

// Option configures an Instance.
type Option func(*Instance)

// WithScope sets the component declarations consulted first.
func WithScope(scope *registry.Scope) Option {
	return func(i *Instance) { i.scope = scope }
}

// WithFallback sets the ambient registry consulted when the scope does not
// declare a slot name.
func WithFallback(fallback registry.Lookup) Option {
	return func(i *Instance) { i.fallback = fallback }
}

// WithUpgrader sets the post-instantiation hook.
func WithUpgrader(upgrader Upgrader) Option {
	return func(i *Instance) { i.upgrader = upgrader }
}

// WithLogger sets the logger for the instance and its slot resolver.
func WithLogger(logger logging.Logger) Option {
	return func(i *Instance) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithPartOptions sets the options handed to the processor.
func WithPartOptions(opts parts.Options) Option {
	return func(i *Instance) { i.partOptions = opts }
}

// WithMarker overrides the component slot marker and separator.
func WithMarker(marker, separator string) Option {
	return func(i *Instance) {
		i.marker = marker
		i.separator = separator
	}
}

// WithTrace registers fn to observe the instantiation pass.
func WithTrace(fn TraceFunc) Option {
	return func(i *Instance) { i.trace = fn }
}
