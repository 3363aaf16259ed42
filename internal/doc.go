// Package internal contains the implementation packages of stencil.
//
// # Package Organization
//
//   - dom: helpers over golang.org/x/net/html nodes (clone, text, attributes)
//   - walker: the canonical depth-first traversal cursor, entering template content
//   - template: compiled templates and their part descriptors
//   - registry: component scopes and the ambient component registry
//   - slots: component slot detection and materialization
//   - parts: node and attribute parts with two-phase stage and commit
//   - instance: template instantiation, binding parts in one traversal
//   - services: file loading and rendering behind the CLI
//   - config, logging, errors, watcher, version: ambient support
//
// # Data Flow
//
// template.Compile turns static strings into a Template. instance.New and
// Instantiate clone it, resolve component slots and bind one part per
// descriptor while walking the clone once. Update stages values on every
// part and then commits them to the tree.
package internal
