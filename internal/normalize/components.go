package normalize

import (
	"strings"

	"github.com/SnideAnteater/openapi-to-axum/internal/document"
)

const schemaRefPrefix = "#/components/schemas/"

// SchemaKind discriminates resolved schema definitions.
type SchemaKind string

const (
	SchemaPrimitive SchemaKind = "primitive"
	SchemaObject    SchemaKind = "object"
	SchemaArray     SchemaKind = "array"
	SchemaReference SchemaKind = "reference"
)

// SchemaDef is a resolved entry of the component table. References are kept
// as edges by name (arena style) rather than inlined values, so recursive
// shapes stay finite. After ResolveComponents returns, every reference
// target is guaranteed to exist in the table.
type SchemaDef struct {
	Name   string
	Kind   SchemaKind
	Prim   string     // SchemaPrimitive: string|integer|number|boolean
	Fields []FieldDef // SchemaObject, in declaration order
	Elem   *SchemaDef // SchemaArray
	Target string     // SchemaReference: component name
}

// FieldDef is one object member. Type is a primitive, array, or reference
// definition; inline objects are rejected during resolution.
type FieldDef struct {
	Name     string
	Type     *SchemaDef
	Required bool
}

// Table maps component names to resolved definitions. Names preserves
// source declaration order and is the only iteration order used downstream.
type Table struct {
	Names []string
	Defs  map[string]*SchemaDef
}

// ResolveComponents walks the components.schemas mapping and resolves every
// entry. Names are processed in declaration order; references resolve on
// demand with memoization, and a reference back into the in-progress chain
// is kept as a by-name edge instead of descending again, which is how
// recursive data shapes terminate.
func ResolveComponents(schemas *document.Node) (*Table, error) {
	r := &resolver{
		raw:        schemas,
		resolved:   make(map[string]*SchemaDef),
		inProgress: make(map[string]bool),
	}
	names := append([]string(nil), schemas.Keys()...)
	for _, name := range names {
		if _, err := r.resolve(name, ""); err != nil {
			return nil, err
		}
	}
	return &Table{Names: names, Defs: r.resolved}, nil
}

type resolver struct {
	raw        *document.Node
	resolved   map[string]*SchemaDef
	inProgress map[string]bool
}

func (r *resolver) resolve(name, referrer string) (*SchemaDef, error) {
	if def, ok := r.resolved[name]; ok {
		return def, nil
	}
	node, ok := r.raw.Get(name)
	if !ok {
		return nil, &UnresolvedReferenceError{Name: name, Referrer: referrer}
	}
	r.inProgress[name] = true
	defer delete(r.inProgress, name)

	def, err := schemaFromNode(node, name, true, r.lookupRef)
	if err != nil {
		return nil, err
	}
	def.Name = name
	r.resolved[name] = def
	return def, nil
}

// lookupRef validates a reference target during resolution. A target already
// on the current resolution chain is returned as a bare edge; descending
// into it again would recurse forever.
func (r *resolver) lookupRef(target, referrer string) (*SchemaDef, error) {
	if r.inProgress[target] {
		return &SchemaDef{Kind: SchemaReference, Target: target}, nil
	}
	if _, err := r.resolve(target, referrer); err != nil {
		return nil, err
	}
	return &SchemaDef{Kind: SchemaReference, Target: target}, nil
}

// InlineSchema resolves a schema node that appears outside the component
// table (request and response bodies). References must name an entry the
// table already resolved.
func (t *Table) InlineSchema(node *document.Node) (*SchemaDef, error) {
	return schemaFromNode(node, "", false, func(target, referrer string) (*SchemaDef, error) {
		if _, ok := t.Defs[target]; !ok {
			return nil, &UnresolvedReferenceError{Name: target, Referrer: referrer}
		}
		return &SchemaDef{Kind: SchemaReference, Target: target}, nil
	})
}

type refLookup func(target, referrer string) (*SchemaDef, error)

// schemaFromNode converts a raw schema node into a SchemaDef. owner names
// the component being resolved, for diagnostics. topLevel permits object
// schemas; nested objects have no stable emitted identity and are rejected.
func schemaFromNode(node *document.Node, owner string, topLevel bool, lookup refLookup) (*SchemaDef, error) {
	if node == nil || node.Kind != document.Mapping {
		return nil, &UnsupportedSchemaError{Construct: "non-mapping schema", Schema: owner}
	}

	if ref, ok := node.GetStr("$ref"); ok {
		target, ok := strings.CutPrefix(ref, schemaRefPrefix)
		if !ok || target == "" {
			return nil, &UnsupportedSchemaError{Construct: "$ref " + ref, Schema: owner, Line: node.Line}
		}
		return lookup(target, owner)
	}

	for _, kw := range []string{"allOf", "oneOf", "anyOf", "not", "enum", "additionalProperties"} {
		if node.Has(kw) {
			return nil, &UnsupportedSchemaError{Construct: kw, Schema: owner, Line: node.Line}
		}
	}

	typ, _ := node.GetStr("type")
	if typ == "" {
		if node.Has("properties") {
			typ = "object"
		} else {
			return nil, &UnsupportedSchemaError{Construct: "untyped schema", Schema: owner, Line: node.Line}
		}
	}

	switch typ {
	case "string", "integer", "number", "boolean":
		return &SchemaDef{Kind: SchemaPrimitive, Prim: typ}, nil

	case "array":
		items, ok := node.Get("items")
		if !ok {
			return nil, &UnsupportedSchemaError{Construct: "array without items", Schema: owner, Line: node.Line}
		}
		elem, err := schemaFromNode(items, owner, false, lookup)
		if err != nil {
			return nil, err
		}
		return &SchemaDef{Kind: SchemaArray, Elem: elem}, nil

	case "object":
		if !topLevel {
			return nil, &UnsupportedSchemaError{Construct: "inline object", Schema: owner, Line: node.Line}
		}
		required := make(map[string]bool)
		if req, ok := node.Get("required"); ok && req.Kind == document.Sequence {
			for _, item := range req.Items {
				if s, ok := item.Str(); ok {
					required[s] = true
				}
			}
		}
		def := &SchemaDef{Kind: SchemaObject}
		if props, ok := node.Get("properties"); ok {
			for _, fieldName := range props.Keys() {
				propNode, _ := props.Get(fieldName)
				fieldType, err := schemaFromNode(propNode, owner, false, lookup)
				if err != nil {
					return nil, err
				}
				def.Fields = append(def.Fields, FieldDef{
					Name:     fieldName,
					Type:     fieldType,
					Required: required[fieldName],
				})
			}
		}
		return def, nil

	default:
		return nil, &UnsupportedSchemaError{Construct: "type " + typ, Schema: owner, Line: node.Line}
	}
}
