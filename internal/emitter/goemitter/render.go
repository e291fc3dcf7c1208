package goemitter

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/SnideAnteater/openapi-to-axum/internal/ir"
)

func renderGoMod(moduleName string) string {
	return fmt.Sprintf("module %s\n\ngo 1.22\n", moduleName)
}

func renderMainGo(moduleName string) string {
	var b strings.Builder
	b.WriteString("package main\n\n")
	b.WriteString("import (\n\t\"log\"\n\t\"net/http\"\n\n")
	fmt.Fprintf(&b, "\t%q\n)\n\n", moduleName+"/internal/api")
	b.WriteString("func main() {\n")
	b.WriteString("\taddr := \":8080\"\n")
	b.WriteString("\tlog.Printf(\"listening on %s\", addr)\n")
	b.WriteString("\tlog.Fatal(http.ListenAndServe(addr, api.NewMux()))\n")
	b.WriteString("}\n")
	return b.String()
}

func renderTypesGo(m *ir.Model) string {
	var b strings.Builder
	b.WriteString("// Code generated from an OpenAPI document. Edit with care.\n\n")
	b.WriteString("package api\n\n")
	for _, name := range m.TypeNames {
		d := m.Types[name]
		if d.Kind == ir.KindStruct {
			fmt.Fprintf(&b, "type %s struct {\n", name)
			for _, f := range d.Fields {
				tag := f.Name
				if !f.Required {
					tag += ",omitempty"
				}
				fmt.Fprintf(&b, "\t%s %s `json:%q`\n", exportName(f.Name), goType(f.Type), tag)
			}
			b.WriteString("}\n\n")
			continue
		}
		fmt.Fprintf(&b, "type %s = %s\n\n", name, goType(d))
	}
	return b.String()
}

func renderRoutesGo(m *ir.Model) string {
	var b strings.Builder
	b.WriteString("// Code generated from an OpenAPI document. Edit with care.\n\n")
	b.WriteString("package api\n\n")
	b.WriteString("import \"net/http\"\n\n")
	b.WriteString("// NewMux registers every generated route. Handlers are stubs that\n")
	b.WriteString("// report 501 until implemented.\n")
	b.WriteString("func NewMux() *http.ServeMux {\n")
	b.WriteString("\tmux := http.NewServeMux()\n")
	for _, r := range m.Routes {
		fmt.Fprintf(&b, "\tmux.HandleFunc(%q, %s)\n", string(r.Method)+" "+muxPattern(r.Path), handlerName(r.OperationID))
	}
	b.WriteString("\treturn mux\n}\n\n")
	for _, r := range m.Routes {
		fmt.Fprintf(&b, "// %s handles %s %s.\n", handlerName(r.OperationID), r.Method, r.Path)
		fmt.Fprintf(&b, "func %s(w http.ResponseWriter, r *http.Request) {\n", handlerName(r.OperationID))
		b.WriteString("\tw.WriteHeader(http.StatusNotImplemented)\n")
		b.WriteString("}\n\n")
	}
	return b.String()
}

// muxPattern keeps OpenAPI {param} segments as-is; net/http 1.22 patterns
// use the same brace syntax.
func muxPattern(path string) string { return path }

func goType(d *ir.Descriptor) string {
	switch d.Kind {
	case ir.KindPrimitive:
		switch d.Prim {
		case ir.String:
			return "string"
		case ir.Integer:
			return "int64"
		case ir.Number:
			return "float64"
		case ir.Boolean:
			return "bool"
		}
	case ir.KindOptional:
		return "*" + goType(d.Elem)
	case ir.KindSequence:
		return "[]" + goType(d.Elem)
	case ir.KindNamed, ir.KindStruct:
		return d.Name
	}
	return "any"
}

func exportName(name string) string {
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
	if b.Len() == 0 {
		return "Field"
	}
	return b.String()
}

// handlerName folds an operation id into a lowerCamel Go identifier.
func handlerName(id string) string {
	var b strings.Builder
	capitalize := false
	for _, r := range id {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			capitalize = true
			continue
		}
		if capitalize && b.Len() > 0 {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(r)
		}
		capitalize = false
	}
	out := b.String()
	if out == "" {
		return "handler"
	}
	return strings.ToLower(out[:1]) + out[1:]
}
