package axumemitter

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/SnideAnteater/openapi-to-axum/internal/ir"
)

func renderCargoToml(project string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[package]\nname = %q\nversion = \"0.1.0\"\nedition = \"2021\"\n\n", project)
	b.WriteString("[dependencies]\n")
	b.WriteString("axum = \"0.8\"\n")
	b.WriteString("tokio = { version = \"1\", features = [\"full\"] }\n")
	b.WriteString("serde = { version = \"1\", features = [\"derive\"] }\n")
	b.WriteString("serde_json = \"1\"\n")
	return b.String()
}

func renderReadme(project string, m *ir.Model) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", project)
	if m.Title != "" {
		fmt.Fprintf(&b, "Server skeleton generated from %q", m.Title)
		if m.Version != "" {
			fmt.Fprintf(&b, " (version %s)", m.Version)
		}
		b.WriteString(".\n\n")
	}
	b.WriteString("Handlers are stubs; fill in the business logic.\n\n")
	b.WriteString("```sh\ncargo run\n```\n")
	return b.String()
}

// renderMainRs builds src/main.rs: imports, serde structs in declaration
// order, handler stubs, the router, and main.
func renderMainRs(m *ir.Model) string {
	var b strings.Builder

	methods := usedRoutingMethods(m.Routes)
	if len(methods) > 0 {
		fmt.Fprintf(&b, "use axum::{routing::{%s}, Router};\n", strings.Join(methods, ", "))
	} else {
		b.WriteString("use axum::Router;\n")
	}
	b.WriteString("use serde::{Deserialize, Serialize};\n\n")

	for _, name := range m.TypeNames {
		renderTypeDecl(&b, name, m.Types[name])
	}

	for _, r := range m.Routes {
		renderHandler(&b, r)
	}

	renderCreateApp(&b, m.Routes)

	b.WriteString("#[tokio::main]\n")
	b.WriteString("async fn main() {\n")
	b.WriteString("    let app = create_app();\n")
	b.WriteString("    let listener = tokio::net::TcpListener::bind(\"0.0.0.0:3000\").await.unwrap();\n")
	b.WriteString("    axum::serve(listener, app).await.unwrap();\n")
	b.WriteString("}\n")
	return b.String()
}

func renderTypeDecl(b *strings.Builder, name string, d *ir.Descriptor) {
	if d.Kind == ir.KindStruct {
		b.WriteString("#[derive(Debug, Serialize, Deserialize)]\n")
		b.WriteString("#[allow(dead_code)]\n")
		fmt.Fprintf(b, "pub struct %s {\n", name)
		for _, f := range d.Fields {
			fmt.Fprintf(b, "    pub %s: %s,\n", sanitizeFieldName(f.Name), rustType(f.Type))
		}
		b.WriteString("}\n\n")
		return
	}
	// Non-object component schemas become type aliases.
	fmt.Fprintf(b, "#[allow(dead_code)]\npub type %s = %s;\n\n", name, rustType(d))
}

func renderHandler(b *strings.Builder, r ir.Route) {
	fmt.Fprintf(b, "pub async fn %s() -> &'static str {\n", handlerName(r.OperationID))
	fmt.Fprintf(b, "    %q\n", r.OperationID)
	b.WriteString("}\n\n")
}

func renderCreateApp(b *strings.Builder, routes []ir.Route) {
	b.WriteString("pub fn create_app() -> Router {\n")
	b.WriteString("    Router::new()\n")
	// axum registers one .route per path with chained method routers.
	for _, path := range routePaths(routes) {
		var parts []string
		for _, r := range routes {
			if r.Path == path {
				parts = append(parts, fmt.Sprintf("%s(%s)", strings.ToLower(string(r.Method)), handlerName(r.OperationID)))
			}
		}
		fmt.Fprintf(b, "        .route(%q, %s)\n", path, strings.Join(parts, "."))
	}
	b.WriteString("}\n\n")
}

// routePaths returns distinct paths in first-encounter order.
func routePaths(routes []ir.Route) []string {
	seen := make(map[string]bool)
	var paths []string
	for _, r := range routes {
		if !seen[r.Path] {
			seen[r.Path] = true
			paths = append(paths, r.Path)
		}
	}
	return paths
}

func usedRoutingMethods(routes []ir.Route) []string {
	set := make(map[string]bool)
	for _, r := range routes {
		set[strings.ToLower(string(r.Method))] = true
	}
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// rustType maps a descriptor to Rust syntax. Struct descriptors never
// appear nested, so only their name is needed here.
func rustType(d *ir.Descriptor) string {
	switch d.Kind {
	case ir.KindPrimitive:
		switch d.Prim {
		case ir.String:
			return "String"
		case ir.Integer:
			return "i64"
		case ir.Number:
			return "f64"
		case ir.Boolean:
			return "bool"
		}
	case ir.KindOptional:
		return "Option<" + rustType(d.Elem) + ">"
	case ir.KindSequence:
		return "Vec<" + rustType(d.Elem) + ">"
	case ir.KindNamed, ir.KindStruct:
		return d.Name
	}
	return "serde_json::Value"
}

func sanitizeFieldName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" {
		out = "field"
	}
	// Rust raw identifier for the keywords that plausibly appear as fields.
	switch out {
	case "type", "ref", "self", "match", "move", "use", "mod", "fn", "struct", "enum", "impl", "trait":
		return "r#" + out
	}
	return out
}

// handlerName converts an operation id to snake_case for a Rust fn name.
func handlerName(id string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range id {
		switch {
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		default:
			b.WriteRune('_')
			prevLower = false
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "handler"
	}
	return out
}
