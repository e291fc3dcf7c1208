package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/SnideAnteater/openapi-to-axum/internal/emitter/axumemitter"
	"github.com/SnideAnteater/openapi-to-axum/internal/emitter/goemitter"
	"github.com/SnideAnteater/openapi-to-axum/internal/normalize"
	genspec "github.com/SnideAnteater/openapi-to-axum/internal/spec"
)

// GenerateConfig captures all inputs that influence the generate command
// after merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input       string
	Target      string
	Out         string
	ProjectName string
	ModuleName  string
	ConfigPath  string
	DryRun      bool
	Force       bool
	Verbose     bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{Target: "axum"}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a server skeleton from an OpenAPI/Swagger document",
		Long: "Generate a server skeleton from an OpenAPI/Swagger document: one struct " +
			"per schema, a routing table with handler stubs, and startup boilerplate.",
		Example: strings.TrimSpace(`  openapi-to-axum generate --input spec.yaml --out ./out
  openapi-to-axum --config config.yaml generate --target go --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the Swagger/OpenAPI document")
	flags.String("target", "", "Target to emit (axum|go); defaults to axum")
	flags.String("out", "", "Output directory (derived from spec when omitted)")
	flags.String("project-name", "", "Override the generated project/crate name")
	flags.String("module-name", "", "Go target: override the generated module name")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output when set")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	if flags.Changed("input") {
		value, err := flags.GetString("input")
		if err != nil {
			return err
		}
		cfg.Input = strings.TrimSpace(value)
	}
	if flags.Changed("target") {
		value, err := flags.GetString("target")
		if err != nil {
			return err
		}
		cfg.Target = strings.TrimSpace(value)
	}
	if flags.Changed("out") {
		value, err := flags.GetString("out")
		if err != nil {
			return err
		}
		cfg.Out = strings.TrimSpace(value)
	}
	if flags.Changed("project-name") {
		value, err := flags.GetString("project-name")
		if err != nil {
			return err
		}
		cfg.ProjectName = strings.TrimSpace(value)
	}
	if flags.Changed("module-name") {
		value, err := flags.GetString("module-name")
		if err != nil {
			return err
		}
		cfg.ModuleName = strings.TrimSpace(value)
	}
	if flags.Changed("dry-run") {
		value, err := flags.GetBool("dry-run")
		if err != nil {
			return err
		}
		cfg.DryRun = value
	}
	if flags.Changed("force") {
		value, err := flags.GetBool("force")
		if err != nil {
			return err
		}
		cfg.Force = value
	}
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Target = strings.ToLower(strings.TrimSpace(c.Target))
	c.Out = strings.TrimSpace(c.Out)
	c.ProjectName = strings.TrimSpace(c.ProjectName)
	c.ModuleName = strings.TrimSpace(c.ModuleName)
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag or config file)")
	}

	switch c.Target {
	case "":
		c.Target = "axum"
	case "axum", "go":
	default:
		return newUsageError(fmt.Sprintf("generate: unsupported --target %q (allowed: axum, go)", c.Target))
	}

	return nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	// 1) Load the spec (file or http/https URL) with validation and conversion.
	tree, err := genspec.Load(ctx, cfg.Input)
	if err != nil {
		return friendlySpecError(err)
	}

	// 2) Normalize: resolve references, map types, collect routes. Any
	// error aborts with no output written.
	model, err := normalize.Build(tree)
	if err != nil {
		return friendlyBuildError(err)
	}

	// 3) Derive sensible defaults for names and out dir when omitted.
	outDir := cfg.Out
	if outDir == "" {
		if cfg.ProjectName != "" {
			outDir = cfg.ProjectName
		} else {
			outDir = "generated-server"
		}
	}
	absOut := outDir
	if ap, err := filepath.Abs(outDir); err == nil {
		absOut = ap
	}

	// 4) Emit for the chosen target.
	var planned []string
	switch cfg.Target {
	case "axum":
		res, err := axumemitter.Emit(ctx, model, axumemitter.Options{
			OutDir:      outDir,
			ProjectName: cfg.ProjectName,
			Force:       cfg.Force,
			DryRun:      cfg.DryRun,
			Verbose:     cfg.Verbose,
		})
		if err != nil {
			return wrapOutputError(err, absOut)
		}
		for _, p := range res.Planned {
			planned = append(planned, p.RelPath)
		}
	case "go":
		res, err := goemitter.Emit(ctx, model, goemitter.Options{
			OutDir:     outDir,
			ModuleName: cfg.ModuleName,
			Force:      cfg.Force,
			DryRun:     cfg.DryRun,
			Verbose:    cfg.Verbose,
		})
		if err != nil {
			return wrapOutputError(err, absOut)
		}
		for _, p := range res.Planned {
			planned = append(planned, p.RelPath)
		}
	default:
		// validate() has already rejected anything else.
		return newUsageError(fmt.Sprintf("generate: unsupported --target %q (allowed: axum, go)", cfg.Target))
	}

	if cfg.DryRun {
		printPlan(absOut, planned)
		return nil
	}
	if cfg.Verbose {
		fmt.Fprintf(os.Stdout, "Generated %d types and %d routes to %s\n", len(model.TypeNames), len(model.Routes), absOut)
	}
	return nil
}

func printPlan(outDir string, relPaths []string) {
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, len(relPaths))
	for _, p := range relPaths {
		fmt.Fprintf(os.Stdout, "- %s\n", p)
	}
}

// friendlySpecError maps structured loader errors into usage messages that
// point at the offending location.
func friendlySpecError(err error) error {
	var se *genspec.SpecError
	if errors.As(err, &se) {
		msg := fmt.Sprintf("spec: %s", se.Message)
		if se.Location != "" {
			msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
		}
		if se.JSONPointer != "" {
			msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
		}
		return newUsageError(msg)
	}
	return err
}

// friendlyBuildError surfaces normalization failures with the source names
// they carry, so the offending spec fragment can be found without digging.
func friendlyBuildError(err error) error {
	var ure *normalize.UnresolvedReferenceError
	if errors.As(err, &ure) {
		return newUsageError("generate: " + ure.Error())
	}
	var nce *normalize.NameCollisionError
	if errors.As(err, &nce) {
		return newUsageError("generate: " + nce.Error())
	}
	var use *normalize.UnsupportedSchemaError
	if errors.As(err, &use) {
		return newUsageError("generate: " + use.Error())
	}
	return fmt.Errorf("build model: %w", err)
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "output directory") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg))
	}
	return err
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		normalized := normalizeKey(key)
		switch normalized {
		case "input":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Input = str
		case "target":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Target = str
		case "out":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Out = str
		case "projectname":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.ProjectName = str
		case "modulename":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.ModuleName = str
		case "dryrun":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.DryRun = val
		case "force":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Force = val
		case "verbose":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Verbose = val
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}
