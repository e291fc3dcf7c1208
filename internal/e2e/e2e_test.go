package e2e

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	cli "github.com/SnideAnteater/openapi-to-axum/internal/cli"
)

// minimal OpenAPI v3 spec with one schema and two routes on the same path
const minimalSpec = "" +
	"openapi: 3.0.0\n" +
	"info:\n" +
	"  title: E2E Sample\n" +
	"  version: '1.0.0'\n" +
	"paths:\n" +
	"  /pets:\n" +
	"    get:\n" +
	"      operationId: listPets\n" +
	"      responses:\n" +
	"        '200':\n" +
	"          description: ok\n" +
	"          content:\n" +
	"            application/json:\n" +
	"              schema:\n" +
	"                type: array\n" +
	"                items:\n" +
	"                  $ref: '#/components/schemas/Pet'\n" +
	"    post:\n" +
	"      operationId: createPet\n" +
	"      requestBody:\n" +
	"        content:\n" +
	"          application/json:\n" +
	"            schema:\n" +
	"              $ref: '#/components/schemas/Pet'\n" +
	"      responses:\n" +
	"        '201':\n" +
	"          description: created\n" +
	"components:\n" +
	"  schemas:\n" +
	"    Pet:\n" +
	"      type: object\n" +
	"      required: [id, name]\n" +
	"      properties:\n" +
	"        id:\n" +
	"          type: integer\n" +
	"        name:\n" +
	"          type: string\n" +
	"        tag:\n" +
	"          type: string\n"

func writeTempSpec(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "spec.yaml")
	if err := os.WriteFile(p, []byte(minimalSpec), 0o600); err != nil {
		t.Fatalf("write spec: %v", err)
	}
	return p
}

func runCLI(t *testing.T, args ...string) {
	t.Helper()
	root := cli.NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("cli execute %v: %v", args, err)
	}
}

func digestDir(t *testing.T, dir string) (files []string, sum string) {
	t.Helper()
	var list []string
	h := sha256.New()
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, rerr := filepath.Rel(dir, path)
		if rerr != nil {
			return rerr
		}
		rel = filepath.ToSlash(rel)
		list = append(list, rel)
		// hash path + contents to be robust
		_, _ = h.Write([]byte(rel))
		b, rerr := os.ReadFile(path)
		if rerr != nil {
			return rerr
		}
		_, _ = h.Write(b)
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", dir, err)
	}
	sort.Strings(list)
	return list, hex.EncodeToString(h.Sum(nil))
}

func TestE2E_Generate_Axum_Deterministic(t *testing.T) {
	t.Parallel()
	spec := writeTempSpec(t)
	dir1 := t.TempDir()
	dir2 := t.TempDir()

	runCLI(t, "generate", "--input", spec, "--target", "axum", "--out", dir1, "--force")
	runCLI(t, "generate", "--input", spec, "--target", "axum", "--out", dir2, "--force")

	files1, sum1 := digestDir(t, dir1)
	files2, sum2 := digestDir(t, dir2)
	if !slicesEqual(files1, files2) || sum1 != sum2 {
		t.Fatalf("generated outputs differ between runs\nfiles1=%v\nfiles2=%v\nsum1=%s\nsum2=%s", files1, files2, sum1, sum2)
	}

	wantFiles := []string{".gitignore", "Cargo.toml", "README.md", "src/main.rs"}
	if !slicesEqual(files1, wantFiles) {
		t.Fatalf("unexpected file set: %v", files1)
	}

	mainRs, err := os.ReadFile(filepath.Join(dir1, "src", "main.rs"))
	if err != nil {
		t.Fatalf("read main.rs: %v", err)
	}
	s := string(mainRs)
	for _, want := range []string{
		"pub struct Pet {",
		"pub async fn list_pets()",
		`.route("/pets", get(list_pets).post(create_pet))`,
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("main.rs missing %q", want)
		}
	}
}

func TestE2E_Generate_Go_Deterministic(t *testing.T) {
	t.Parallel()
	spec := writeTempSpec(t)
	dir1 := t.TempDir()
	dir2 := t.TempDir()

	runCLI(t, "generate", "--input", spec, "--target", "go", "--out", dir1, "--force")
	runCLI(t, "generate", "--input", spec, "--target", "go", "--out", dir2, "--force")

	files1, sum1 := digestDir(t, dir1)
	files2, sum2 := digestDir(t, dir2)
	if !slicesEqual(files1, files2) || sum1 != sum2 {
		t.Fatalf("generated outputs differ between runs\nfiles1=%v\nfiles2=%v\nsum1=%s\nsum2=%s", files1, files2, sum1, sum2)
	}

	wantFiles := []string{"cmd/server/main.go", "go.mod", "internal/api/routes.go", "internal/api/types.go"}
	if !slicesEqual(files1, wantFiles) {
		t.Fatalf("unexpected file set: %v", files1)
	}

	routes, err := os.ReadFile(filepath.Join(dir1, "internal", "api", "routes.go"))
	if err != nil {
		t.Fatalf("read routes.go: %v", err)
	}
	if !strings.Contains(string(routes), `mux.HandleFunc("GET /pets", listPets)`) {
		t.Fatalf("routes.go missing route registration")
	}
}

func TestE2E_V2Spec_ConvertsAndGenerates(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	spec := filepath.Join(dir, "swagger.yaml")
	v2 := "" +
		"swagger: '2.0'\n" +
		"info:\n" +
		"  title: Legacy\n" +
		"  version: '1.0.0'\n" +
		"paths:\n" +
		"  /hello:\n" +
		"    get:\n" +
		"      operationId: sayHello\n" +
		"      responses:\n" +
		"        '200':\n" +
		"          description: ok\n"
	if err := os.WriteFile(spec, []byte(v2), 0o600); err != nil {
		t.Fatalf("write spec: %v", err)
	}

	out := filepath.Join(dir, "out")
	runCLI(t, "generate", "--input", spec, "--out", out, "--force")

	mainRs, err := os.ReadFile(filepath.Join(out, "src", "main.rs"))
	if err != nil {
		t.Fatalf("read main.rs: %v", err)
	}
	if !strings.Contains(string(mainRs), "pub async fn say_hello()") {
		t.Fatalf("main.rs missing converted route handler")
	}
}

func slicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
