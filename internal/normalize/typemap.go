package normalize

import (
	"strings"
	"unicode"

	"github.com/SnideAnteater/openapi-to-axum/internal/ir"
)

// Mapper converts resolved schema definitions into emission-ready type
// descriptors. Construction fails when two distinct source names collapse
// onto the same emitted identifier; silent renaming would make generation
// unreproducible.
type Mapper struct {
	table *Table
	ident map[string]string // source name -> emitted identifier
}

// NewMapper validates identifier uniqueness across the table, in source
// declaration order, and returns a mapper bound to it.
func NewMapper(table *Table) (*Mapper, error) {
	ident := make(map[string]string, len(table.Names))
	byNorm := make(map[string]string, len(table.Names))
	for _, name := range table.Names {
		n := NormalizeIdentifier(name)
		if first, dup := byNorm[n]; dup {
			return nil, &NameCollisionError{First: first, Second: name, Normalized: n}
		}
		byNorm[n] = name
		ident[name] = n
	}
	return &Mapper{table: table, ident: ident}, nil
}

// MapAll maps every table entry, returning emitted names in source
// declaration order alongside the descriptor table.
func (m *Mapper) MapAll() ([]string, map[string]*ir.Descriptor, error) {
	names := make([]string, 0, len(m.table.Names))
	types := make(map[string]*ir.Descriptor, len(m.table.Names))
	for _, src := range m.table.Names {
		d, err := m.MapSchema(m.table.Defs[src])
		if err != nil {
			return nil, nil, err
		}
		emitted := m.ident[src]
		names = append(names, emitted)
		types[emitted] = d
	}
	return names, types, nil
}

// MapSchema converts one resolved definition. References become Named
// edges, never inlined structs, so the output stays finite for recursive
// shapes.
func (m *Mapper) MapSchema(def *SchemaDef) (*ir.Descriptor, error) {
	switch def.Kind {
	case SchemaPrimitive:
		p, err := primitiveKind(def.Prim)
		if err != nil {
			return nil, err
		}
		return ir.Primitive(p), nil

	case SchemaReference:
		return ir.Named(m.ident[def.Target]), nil

	case SchemaArray:
		elem, err := m.MapSchema(def.Elem)
		if err != nil {
			return nil, err
		}
		return ir.Sequence(elem), nil

	case SchemaObject:
		fields := make([]ir.Field, 0, len(def.Fields))
		for _, f := range def.Fields {
			t, err := m.MapSchema(f.Type)
			if err != nil {
				return nil, err
			}
			if !f.Required {
				t = ir.Optional(t)
			}
			fields = append(fields, ir.Field{Name: f.Name, Type: t, Required: f.Required})
		}
		return ir.Struct(m.ident[def.Name], fields), nil

	default:
		return nil, &UnsupportedSchemaError{Construct: string(def.Kind), Schema: def.Name}
	}
}

func primitiveKind(prim string) (ir.PrimitiveKind, error) {
	switch prim {
	case "string":
		return ir.String, nil
	case "integer":
		return ir.Integer, nil
	case "number":
		return ir.Number, nil
	case "boolean":
		return ir.Boolean, nil
	default:
		return "", &UnsupportedSchemaError{Construct: "type " + prim}
	}
}

// NormalizeIdentifier folds a source schema name into an emitted type
// identifier: split on non-alphanumeric runes, capitalize each part. The
// fold is intentionally lossy; NewMapper turns any resulting collision into
// a hard error rather than renaming.
func NormalizeIdentifier(name string) string {
	var b strings.Builder
	capitalize := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			capitalize = true
			continue
		}
		if capitalize {
			b.WriteRune(unicode.ToUpper(r))
			capitalize = false
		} else {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" {
		return "X"
	}
	if unicode.IsDigit(rune(out[0])) {
		out = "N" + out
	}
	return out
}
