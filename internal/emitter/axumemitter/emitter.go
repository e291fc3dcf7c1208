package axumemitter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/SnideAnteater/openapi-to-axum/internal/ir"
)

// Options controls how the axum emitter renders a project.
type Options struct {
	OutDir      string // required; target directory to write the project
	ProjectName string // crate name; derived from the spec title when empty
	Force       bool   // overwrite existing files
	DryRun      bool   // don't write, only plan
	Verbose     bool
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Result returns the planned files and the final resolved project name.
type Result struct {
	ProjectName string
	Planned     []PlannedFile
}

// Emit renders a Rust axum server skeleton from the model: one serde struct
// per schema, a router binding every route to an async handler stub, and a
// main that starts the server.
func Emit(ctx context.Context, m *ir.Model, opts Options) (*Result, error) {
	_ = ctx
	if m == nil {
		return nil, fmt.Errorf("axumemitter: nil model")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("axumemitter: OutDir is required")
	}
	project := sanitizeProjectName(opts.ProjectName)
	if project == "" {
		project = deriveProjectName(m.Title)
		if project == "" {
			project = "generated-server"
		}
	}

	files := map[string][]byte{}
	files["Cargo.toml"] = []byte(renderCargoToml(project))
	files[".gitignore"] = []byte("/target\n")
	files["README.md"] = []byte(renderReadme(project, m))
	files[filepath.Join("src", "main.rs")] = []byte(renderMainRs(m))

	// Plan in deterministic order
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

	return &Result{ProjectName: project, Planned: planned}, nil
}

func writeFiles(outDir string, files map[string][]byte, force bool) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	if st, err := os.Stat(abs); err == nil && st.IsDir() && !force {
		entries, rerr := os.ReadDir(abs)
		if rerr == nil && len(entries) > 0 {
			return fmt.Errorf("axumemitter: output directory %q is not empty (use --force to overwrite)", abs)
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

func sanitizeProjectName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ToLower(name)
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-")
}

func deriveProjectName(title string) string {
	t := strings.TrimSpace(title)
	if t == "" {
		return ""
	}
	t = strings.ToLower(t)
	repl := strings.NewReplacer("/", " ", "_", " ", ".", " ", ",", " ", ":", " ")
	t = repl.Replace(t)
	parts := strings.Fields(t)
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "-")
}
