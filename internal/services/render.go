// Package services holds the operations behind the CLI commands: loading
// template, values and component files, rendering them, and describing a
// compiled template.
package services

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/conneroisu/stencil/internal/config"
	"github.com/conneroisu/stencil/internal/dom"
	"github.com/conneroisu/stencil/internal/instance"
	"github.com/conneroisu/stencil/internal/logging"
	"github.com/conneroisu/stencil/internal/parts"
	"github.com/conneroisu/stencil/internal/registry"
	"github.com/conneroisu/stencil/internal/slots"
	"github.com/conneroisu/stencil/internal/template"
)

// Renderer renders template files. Its component registry is the ambient
// fallback for every render and persists between renders.
type Renderer struct {
	config   *config.Config
	logger   logging.Logger
	registry *registry.ComponentRegistry

	mu sync.Mutex
	// declared holds the global declarations last synced, by normalized name.
	declared map[string]ComponentDecl
}

// RenderOptions names the files of one render.
type RenderOptions struct {
	TemplatePath string
	ValuesPath   string
	// ComponentsPath overrides config.Components.File.
	ComponentsPath string
	// KeepAnchors keeps the empty comments node parts are anchored to.
	KeepAnchors bool
}

// RenderResult contains the result of a render.
type RenderResult struct {
	HTML     string
	Stats    instance.Stats
	Values   int
	Duration time.Duration
}

// Inspection describes a compiled template.
type Inspection struct {
	Template    string                    `json:"template" yaml:"template"`
	Markup      string                    `json:"markup" yaml:"markup"`
	Descriptors []template.PartDescriptor `json:"descriptors" yaml:"descriptors"`
	Values      int                       `json:"values" yaml:"values"`
	Slots       int                       `json:"slots" yaml:"slots"`
}

// NewRenderer creates a renderer.
func NewRenderer(cfg *config.Config, logger logging.Logger) *Renderer {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Renderer{
		config:   cfg,
		logger:   logger.WithComponent("renderer"),
		registry: registry.NewComponentRegistry(),
		declared: make(map[string]ComponentDecl),
	}
	for _, name := range cfg.Components.Native {
		if err := r.registry.DefineNative(name); err != nil {
			r.logger.Warn(context.Background(), err, "Skipping native component", "name", name)
		}
	}
	return r
}

// Registry returns the ambient component registry.
func (r *Renderer) Registry() *registry.ComponentRegistry {
	return r.registry
}

// SyncComponents makes the ambient registry hold exactly the global and
// native entries of file plus the configured native names. Entries whose
// declaration is unchanged since the last sync are left alone, so watchers
// only hear about real changes.
func (r *Renderer) SyncComponents(file *ComponentsFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := make(map[string]bool)
	for _, name := range r.config.Components.Native {
		wanted[registry.Normalize(name)] = true
	}

	if file != nil {
		for name, decl := range file.Global {
			key := registry.Normalize(name)
			wanted[key] = true
			if r.unchanged(key, decl) {
				continue
			}
			if err := r.registry.Register(name, decl.Constructor()); err != nil {
				return err
			}
			r.declared[key] = decl
		}
		for _, name := range file.Native {
			key := registry.Normalize(name)
			wanted[key] = true
			if info, ok := r.registry.Get(key); ok && info.Native {
				continue
			}
			if err := r.registry.DefineNative(name); err != nil {
				return err
			}
			delete(r.declared, key)
		}
	}

	for _, name := range r.registry.Names() {
		if !wanted[name] {
			r.registry.Remove(name)
			delete(r.declared, name)
		}
	}
	return nil
}

func (r *Renderer) unchanged(key string, decl ComponentDecl) bool {
	info, ok := r.registry.Get(key)
	if !ok || info.Native {
		return false
	}
	prev, ok := r.declared[key]
	return ok && prev.Tag == decl.Tag && maps.Equal(prev.Attrs, decl.Attrs)
}

// Render compiles the template, instantiates it with the declared
// components, commits the values and serializes the result.
func (r *Renderer) Render(ctx context.Context, opts RenderOptions) (*RenderResult, error) {
	start := time.Now()

	tmpl, err := LoadTemplate(opts.TemplatePath, r.config.Template.Hole)
	if err != nil {
		return nil, err
	}
	values, err := LoadValues(opts.ValuesPath)
	if err != nil {
		return nil, err
	}

	componentsPath := opts.ComponentsPath
	if componentsPath == "" {
		componentsPath = r.config.Components.File
	}
	components, err := LoadComponents(componentsPath)
	if err != nil {
		return nil, err
	}
	if err := r.SyncComponents(components); err != nil {
		return nil, err
	}

	inst := instance.New(tmpl, parts.DefaultProcessor{},
		instance.WithScope(components.NewScope()),
		instance.WithFallback(r.registry),
		instance.WithLogger(r.logger),
		instance.WithMarker(r.config.Template.Marker, r.config.Template.Separator),
		instance.WithPartOptions(parts.Options{Context: ctx, Logger: r.logger}),
	)

	root, stats, err := inst.InstantiateWithStats()
	if err != nil {
		return nil, err
	}
	if err := inst.Update(values); err != nil {
		return nil, err
	}
	if !opts.KeepAnchors {
		dom.RemoveEmptyComments(root)
	}

	out, err := dom.Render(root)
	if err != nil {
		return nil, err
	}

	result := &RenderResult{
		HTML:     out,
		Stats:    stats,
		Values:   len(values),
		Duration: time.Since(start),
	}
	r.logger.Info(ctx, "Rendered template",
		"template", opts.TemplatePath,
		"parts", stats.Parts,
		"holes", stats.Holes,
		"materialized", stats.Materialized,
		"values", result.Values,
		"duration", result.Duration)
	if expected := tmpl.ValueCount(); len(values) != expected {
		r.logger.Debug(ctx, "value count differs from template",
			"expected", expected,
			"got", len(values))
	}
	return result, nil
}

// Inspect compiles the template at path and describes it.
func (r *Renderer) Inspect(path string) (*Inspection, error) {
	tmpl, err := LoadTemplate(path, r.config.Template.Hole)
	if err != nil {
		return nil, err
	}
	markup, err := tmpl.Markup()
	if err != nil {
		return nil, err
	}

	resolver := &slots.Resolver{
		Marker:    r.config.Template.Marker,
		Separator: r.config.Template.Separator,
		Logger:    r.logger,
	}
	count, err := resolver.Count(tmpl.Clone())
	if err != nil {
		return nil, err
	}

	return &Inspection{
		Template:    path,
		Markup:      markup,
		Descriptors: tmpl.Descriptors(),
		Values:      tmpl.ValueCount(),
		Slots:       count,
	}, nil
}
