package ir

// Emission-ready model shared by all emitters. Values are built once per
// generation pass and never mutated afterwards.

import (
	"fmt"
	"strings"
)

// Kind discriminates type descriptors.
type Kind string

const (
	KindPrimitive Kind = "primitive"
	KindOptional  Kind = "optional"
	KindSequence  Kind = "sequence"
	KindStruct    Kind = "struct"
	KindNamed     Kind = "named"
)

// PrimitiveKind enumerates the fixed scalar types of the source format.
type PrimitiveKind string

const (
	String  PrimitiveKind = "string"
	Integer PrimitiveKind = "integer"
	Number  PrimitiveKind = "number"
	Boolean PrimitiveKind = "boolean"
)

// Descriptor is a normalized type. Exactly the fields relevant to Kind are
// set. A struct's fields never embed the struct itself; self-reference goes
// through a KindNamed edge, which emitters render as a lookup by name rather
// than an ownership edge.
type Descriptor struct {
	Kind Kind

	Prim   PrimitiveKind // KindPrimitive
	Elem   *Descriptor   // KindOptional, KindSequence
	Name   string        // KindStruct, KindNamed
	Fields []Field       // KindStruct, in declaration order
}

// Field is a single struct member. Order within Descriptor.Fields follows
// the source declaration and is part of the output stability contract.
type Field struct {
	Name     string
	Type     *Descriptor
	Required bool
}

// Primitive returns a scalar descriptor.
func Primitive(p PrimitiveKind) *Descriptor {
	return &Descriptor{Kind: KindPrimitive, Prim: p}
}

// Optional wraps inner in an optional edge. Wrapping an optional is a no-op
// so callers cannot stack Optional(Optional(T)).
func Optional(inner *Descriptor) *Descriptor {
	if inner != nil && inner.Kind == KindOptional {
		return inner
	}
	return &Descriptor{Kind: KindOptional, Elem: inner}
}

// Sequence returns an array descriptor over elem.
func Sequence(elem *Descriptor) *Descriptor {
	return &Descriptor{Kind: KindSequence, Elem: elem}
}

// Named returns a lazy back-reference to the struct registered under name.
func Named(name string) *Descriptor {
	return &Descriptor{Kind: KindNamed, Name: name}
}

// Struct returns an object descriptor with fields in the given order.
func Struct(name string, fields []Field) *Descriptor {
	return &Descriptor{Kind: KindStruct, Name: name, Fields: fields}
}

// String renders a stable textual form, e.g.
// Struct("Pet"){id: Primitive(integer), tag: Optional(Primitive(string))}.
// Tests and determinism checks compare these strings.
func (d *Descriptor) String() string {
	if d == nil {
		return "<nil>"
	}
	switch d.Kind {
	case KindPrimitive:
		return fmt.Sprintf("Primitive(%s)", d.Prim)
	case KindOptional:
		return fmt.Sprintf("Optional(%s)", d.Elem.String())
	case KindSequence:
		return fmt.Sprintf("Sequence(%s)", d.Elem.String())
	case KindNamed:
		return fmt.Sprintf("Named(%q)", d.Name)
	case KindStruct:
		var b strings.Builder
		fmt.Fprintf(&b, "Struct(%q){", d.Name)
		for i, f := range d.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s: %s", f.Name, f.Type.String())
		}
		b.WriteString("}")
		return b.String()
	default:
		return fmt.Sprintf("descriptor(%s)", d.Kind)
	}
}

// Method is an HTTP method a route may bind.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

// Route binds one method and path to a handler stub. RequestType and
// ResponseType are nil when the operation declares no body for that side.
type Route struct {
	Path         string
	Method       Method
	OperationID  string
	RequestType  *Descriptor
	ResponseType *Descriptor
}

// Model is the full output contract consumed by emitters: the flat type
// table plus the ordered route list, with enough service metadata to name
// the generated project.
type Model struct {
	Title   string
	Version string

	// TypeNames lists emitted identifiers in source declaration order.
	// Emitters iterate this, never the map.
	TypeNames []string
	Types     map[string]*Descriptor

	Routes []Route
}
