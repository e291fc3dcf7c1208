package goemitter

import (
	"context"
	"go/format"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SnideAnteater/openapi-to-axum/internal/ir"
)

func sampleModel() *ir.Model {
	pet := ir.Struct("Pet", []ir.Field{
		{Name: "id", Type: ir.Primitive(ir.Integer), Required: true},
		{Name: "name", Type: ir.Primitive(ir.String), Required: true},
		{Name: "tag", Type: ir.Optional(ir.Primitive(ir.String))},
	})
	return &ir.Model{
		Title:     "Petstore",
		Version:   "1.0.0",
		TypeNames: []string{"Pet"},
		Types:     map[string]*ir.Descriptor{"Pet": pet},
		Routes: []ir.Route{
			{Path: "/pets", Method: ir.MethodGet, OperationID: "listPets", ResponseType: ir.Sequence(ir.Named("Pet"))},
			{Path: "/pets/{petId}", Method: ir.MethodGet, OperationID: "getPetsPetId", ResponseType: ir.Named("Pet")},
		},
	}
}

func TestEmit_WritesProject(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	res, err := Emit(context.Background(), sampleModel(), Options{OutDir: dir, ModuleName: "example.com/petstore"})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if res.ModuleName != "example.com/petstore" {
		t.Fatalf("module name: got %q", res.ModuleName)
	}

	gomod, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		t.Fatalf("read go.mod: %v", err)
	}
	if !strings.Contains(string(gomod), "module example.com/petstore") {
		t.Fatalf("go.mod missing module line:\n%s", gomod)
	}

	types, err := os.ReadFile(filepath.Join(dir, "internal", "api", "types.go"))
	if err != nil {
		t.Fatalf("read types.go: %v", err)
	}
	// go/format column-aligns struct fields, so the name padding depends on
	// the longest name in the block (Name).
	for _, want := range []string{
		"type Pet struct {",
		"Id   int64",
		"Name string",
		"Tag  *string",
		"`json:\"tag,omitempty\"`",
	} {
		if !strings.Contains(string(types), want) {
			t.Fatalf("types.go missing %q:\n%s", want, types)
		}
	}

	routes, err := os.ReadFile(filepath.Join(dir, "internal", "api", "routes.go"))
	if err != nil {
		t.Fatalf("read routes.go: %v", err)
	}
	for _, want := range []string{
		`mux.HandleFunc("GET /pets", listPets)`,
		`mux.HandleFunc("GET /pets/{petId}", getPetsPetId)`,
		"func listPets(w http.ResponseWriter, r *http.Request) {",
		"http.StatusNotImplemented",
	} {
		if !strings.Contains(string(routes), want) {
			t.Fatalf("routes.go missing %q:\n%s", want, routes)
		}
	}
}

func TestEmit_OutputIsGofmtClean(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	if _, err := Emit(context.Background(), sampleModel(), Options{OutDir: dir}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	for _, rel := range []string{
		filepath.Join("cmd", "server", "main.go"),
		filepath.Join("internal", "api", "types.go"),
		filepath.Join("internal", "api", "routes.go"),
	} {
		content, err := os.ReadFile(filepath.Join(dir, rel))
		if err != nil {
			t.Fatalf("read %s: %v", rel, err)
		}
		formatted, err := format.Source(content)
		if err != nil {
			t.Fatalf("format %s: %v", rel, err)
		}
		if string(formatted) != string(content) {
			t.Fatalf("%s is not gofmt clean", rel)
		}
	}
}

func TestEmit_DerivesModuleNameFromTitle(t *testing.T) {
	t.Parallel()

	res, err := Emit(context.Background(), sampleModel(), Options{OutDir: t.TempDir(), DryRun: true})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if res.ModuleName != "petstore" {
		t.Fatalf("derived module name: got %q", res.ModuleName)
	}
}

func TestEmit_DryRunPlansWithoutWriting(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	res, err := Emit(context.Background(), sampleModel(), Options{OutDir: dir, DryRun: true})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	wantPlan := []string{"cmd/server/main.go", "go.mod", "internal/api/routes.go", "internal/api/types.go"}
	if len(res.Planned) != len(wantPlan) {
		t.Fatalf("planned: got %d files: %+v", len(res.Planned), res.Planned)
	}
	for i, want := range wantPlan {
		if res.Planned[i].RelPath != want {
			t.Fatalf("plan[%d] = %q, want %q", i, res.Planned[i].RelPath, want)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("dry-run wrote files: %v", entries)
	}
}

func TestEmit_RefusesNonEmptyDirWithoutForce(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "existing.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := Emit(context.Background(), sampleModel(), Options{OutDir: dir})
	if err == nil || !strings.Contains(err.Error(), "not empty") {
		t.Fatalf("expected non-empty dir error, got %v", err)
	}
}

func TestExportName(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"id":        "Id",
		"petName":   "PetName",
		"pet_name":  "PetName",
		"pet-name":  "PetName",
		"":          "Field",
	}
	for in, want := range cases {
		if got := exportName(in); got != want {
			t.Errorf("exportName(%q) = %q, want %q", in, got, want)
		}
	}
}
