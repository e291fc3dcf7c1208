package normalize

import "fmt"

// UnresolvedReferenceError reports a reference naming a schema that is
// absent from the component table. Generation aborts for the whole
// document; there is no partial output.
type UnresolvedReferenceError struct {
	// Name is the missing component.
	Name string
	// Referrer is the schema that held the reference, when known.
	Referrer string
	// Path and Method locate the operation that held the reference, when
	// the error surfaced while collecting routes.
	Path   string
	Method string
}

func (e *UnresolvedReferenceError) Error() string {
	switch {
	case e.Path != "" && e.Method != "":
		return fmt.Sprintf("unresolved reference %q in %s %s", e.Name, e.Method, e.Path)
	case e.Referrer != "":
		return fmt.Sprintf("unresolved reference %q referenced by schema %q", e.Name, e.Referrer)
	default:
		return fmt.Sprintf("unresolved reference %q", e.Name)
	}
}

// NameCollisionError reports two distinct source schemas that normalize to
// the same emitted identifier. Renaming silently would break reproducible
// generation, so this is always fatal.
type NameCollisionError struct {
	First      string // source name seen first, in declaration order
	Second     string
	Normalized string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("schemas %q and %q both normalize to identifier %q", e.First, e.Second, e.Normalized)
}

// UnsupportedSchemaError reports a construct outside the fixed
// primitive/object/array/reference shapes (composition keywords, enums,
// inline object fields). These have no defined mapping, so generation
// refuses the document.
type UnsupportedSchemaError struct {
	Construct string
	// Schema names the component the construct appeared in, when known.
	Schema string
	Line   int
}

func (e *UnsupportedSchemaError) Error() string {
	if e.Schema != "" {
		return fmt.Sprintf("unsupported schema construct %q in %q", e.Construct, e.Schema)
	}
	return fmt.Sprintf("unsupported schema construct %q", e.Construct)
}
