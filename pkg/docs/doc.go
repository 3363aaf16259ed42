// Package docs describes stencil, a tool that instantiates HTML templates
// holding dynamic parts and component slots.
//
// A template is markup split by hole tokens (${} by default). Each hole
// becomes a part: a run of child nodes, one attribute value, or a boolean
// attribute written as ?name="${}". Elements whose tag contains the slot
// marker (tpl-slot by default) are component slots: <tpl-slot-card> is
// replaced by the element the "card" component builds, keeping the slot's
// attributes and text.
//
// # Quick Start
//
//	// Render a template with values and components
//	stencil render page.html --values values.yaml --components components.yaml
//
//	// Show the compiled parts of a template
//	stencil inspect page.html -f yaml
//
//	// Render again whenever an input changes
//	stencil watch page.html --values values.yaml -o page.out.html
//
// # Input Files
//
// A values file is a YAML sequence, one entry per hole:
//
//	- Welcome
//	- docs
//	- html: "<em>new</em>"
//	- nothing: true
//
// A components file declares what each slot name builds:
//
//	scope:
//	  card: {tag: article, attrs: {class: card}}
//	global:
//	  badge: {tag: span}
//	native: [clock]
//
// Scope entries apply to one render and win over global ones. Native names
// are left in place for the host page to upgrade.
//
// # Configuration
//
// stencil reads .stencil.yml, STENCIL_* environment variables and flags:
//
//	template:
//	  hole: "${}"
//	  marker: tpl-slot
//	  separator: "-"
//	components:
//	  file: components.yaml
//	  native: [clock]
//	logging:
//	  level: info
//	  format: text
//	watch:
//	  debounce: 300ms
//
// See examples/basic for a complete set of input files.
package docs
