package goemitter

import (
	"context"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/SnideAnteater/openapi-to-axum/internal/ir"
)

// Options controls how the Go emitter renders a project.
type Options struct {
	OutDir     string // required; target directory to write the project
	ModuleName string // go module name; derived from the spec title when empty
	Force      bool   // overwrite existing files
	DryRun     bool   // don't write, only plan
	Verbose    bool
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Result returns the planned files and the final resolved module name.
type Result struct {
	ModuleName string
	Planned    []PlannedFile
}

// Emit renders a Go net/http server skeleton from the model. Go sources are
// passed through go/format so the output matches gofmt exactly.
func Emit(ctx context.Context, m *ir.Model, opts Options) (*Result, error) {
	_ = ctx
	if m == nil {
		return nil, fmt.Errorf("goemitter: nil model")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("goemitter: OutDir is required")
	}
	moduleName := strings.TrimSpace(opts.ModuleName)
	if moduleName == "" {
		moduleName = deriveModuleName(m.Title)
		if moduleName == "" {
			moduleName = "generated-server"
		}
	}

	files := map[string][]byte{}
	files["go.mod"] = []byte(renderGoMod(moduleName))
	files[filepath.Join("cmd", "server", "main.go")] = []byte(renderMainGo(moduleName))
	files[filepath.Join("internal", "api", "types.go")] = []byte(renderTypesGo(m))
	files[filepath.Join("internal", "api", "routes.go")] = []byte(renderRoutesGo(m))

	for rel, content := range files {
		if filepath.Ext(rel) != ".go" {
			continue
		}
		formatted, err := format.Source(content)
		if err != nil {
			return nil, fmt.Errorf("goemitter: format %s: %w", rel, err)
		}
		files[rel] = formatted
	}

	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, filepath.ToSlash(p))
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[rel]), Mode: 0o644})
	}

	if !opts.DryRun {
		if err := writeFiles(opts.OutDir, files, opts.Force); err != nil {
			return nil, err
		}
	}

	return &Result{ModuleName: moduleName, Planned: planned}, nil
}

func writeFiles(outDir string, files map[string][]byte, force bool) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	if st, err := os.Stat(abs); err == nil && st.IsDir() && !force {
		entries, rerr := os.ReadDir(abs)
		if rerr == nil && len(entries) > 0 {
			return fmt.Errorf("goemitter: output directory %q is not empty (use --force to overwrite)", abs)
		}
	}
	for rel, content := range files {
		p := filepath.Join(abs, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		// atomic write via temp file + rename
		tmp := p + ".tmp-" + time.Now().Format("20060102150405")
		if err := os.WriteFile(tmp, content, 0o644); err != nil {
			return fmt.Errorf("write temp %s: %w", rel, err)
		}
		if err := os.Rename(tmp, p); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename %s: %w", rel, err)
		}
	}
	return nil
}

func deriveModuleName(title string) string {
	t := strings.TrimSpace(strings.ToLower(title))
	if t == "" {
		return ""
	}
	repl := strings.NewReplacer("/", " ", "_", " ", ".", " ", ",", " ", ":", " ")
	t = repl.Replace(t)
	parts := strings.Fields(t)
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "-")
}
