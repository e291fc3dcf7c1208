// Package normalize turns a loaded spec document tree into the flat,
// emission-ready model: it resolves component references, maps schemas to
// type descriptors, and collects routes. The whole pass is synchronous and
// in-memory; any error aborts it with no partial output.
package normalize

import (
	"github.com/SnideAnteater/openapi-to-axum/internal/document"
	"github.com/SnideAnteater/openapi-to-axum/internal/ir"
)

// Build runs the full normalization pass over a document tree. Top-level
// sections other than info, components.schemas, and paths are ignored.
func Build(tree *document.Node) (*ir.Model, error) {
	model := &ir.Model{}
	if info, ok := tree.Get("info"); ok {
		model.Title, _ = info.GetStr("title")
		model.Version, _ = info.GetStr("version")
	}

	var schemas *document.Node
	if comps, ok := tree.Get("components"); ok {
		schemas, _ = comps.Get("schemas")
	}
	table, err := ResolveComponents(schemas)
	if err != nil {
		return nil, err
	}
	mapper, err := NewMapper(table)
	if err != nil {
		return nil, err
	}
	model.TypeNames, model.Types, err = mapper.MapAll()
	if err != nil {
		return nil, err
	}

	paths, _ := tree.Get("paths")
	model.Routes, err = CollectRoutes(paths, mapper)
	if err != nil {
		return nil, err
	}
	return model, nil
}
