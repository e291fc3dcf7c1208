package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestInit_WritesSampleConfig(t *testing.T) {
	out := filepath.Join(t.TempDir(), "config.yaml")

	if err := runCLI(t, "init", "--out", out); err != nil {
		t.Fatalf("init: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	content := string(data)
	for _, want := range []string{"# input:", "# target:", "# out:", "# force:"} {
		if !strings.Contains(content, want) {
			t.Fatalf("sample config missing %q:\n%s", want, content)
		}
	}

	// The sample is all comments; it must still parse as YAML.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("sample config is not valid YAML: %v", err)
	}
	if len(raw) != 0 {
		t.Fatalf("sample config should only contain comments, got %v", raw)
	}
}

func TestInit_RefusesOverwriteWithoutForce(t *testing.T) {
	out := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(out, []byte("existing: true\n"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := runCLI(t, "init", "--out", out)
	if err == nil {
		t.Fatalf("expected overwrite refusal")
	}
	if !errors.Is(err, ErrUsage) || !strings.Contains(err.Error(), "--force") {
		t.Fatalf("expected usage error mentioning --force, got %v", err)
	}
}

func TestInit_ForceOverwrites(t *testing.T) {
	out := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(out, []byte("existing: true\n"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := runCLI(t, "init", "--out", out, "--force"); err != nil {
		t.Fatalf("init --force: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Contains(string(data), "existing:") {
		t.Fatalf("file was not overwritten")
	}
}
