package spec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	openapi2 "github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/SnideAnteater/openapi-to-axum/internal/document"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	NetworkError    ErrorCode = "NetworkError"
	ParseError      ErrorCode = "ParseError"
	ValidationError ErrorCode = "ValidationError"
	ConversionError ErrorCode = "ConversionError"
)

// SpecError is a structured error with optional location and JSON Pointer.
type SpecError struct {
	Code        ErrorCode
	Message     string
	Location    string // file path or URL
	JSONPointer string // e.g. "#/paths/~1pets/get"
	Cause       error
}

func (e *SpecError) Error() string { return e.Message }
func (e *SpecError) Unwrap() error { return e.Cause }

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient HTTP failures (>=500, 429, or network errors).
	MaxRetries int
	// BackoffBase is the base delay for exponential backoff.
	BackoffBase time.Duration
	// SkipValidate disables the OpenAPI v3 validation pre-flight.
	SkipValidate bool
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout: 10 * time.Second,
		MaxRetries:  3,
		BackoffBase: 200 * time.Millisecond,
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option            { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option { return func(s *Settings) { s.BackoffBase = d } }
func WithSkipValidate(skip bool) Option      { return func(s *Settings) { s.SkipValidate = skip } }

// Load reads an OpenAPI document and returns its generic tree. Swagger v2.0
// input is converted to v3 via kin-openapi first; v3 input is validated
// (permissively) before the tree is built, so generation never starts from
// a document the parser itself rejects.
//
// input may be a filesystem path or an http/https URL. Mapping order in the
// returned tree follows the source text, except on the v2 conversion path
// where declaration order is lost and keys are canonicalized instead.
func Load(ctx context.Context, input string, opts ...Option) (*document.Node, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &SpecError{Code: InputError, Message: "spec: input is empty"}
	}

	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	// Classify input as URL or file path.
	u, uerr := url.Parse(input)
	isURL := uerr == nil && u.Scheme != "" && u.Host != ""

	var raw []byte
	location := input
	if isURL {
		scheme := strings.ToLower(u.Scheme)
		if scheme == "file" {
			return nil, &SpecError{Code: InputError, Message: "spec: file:// URLs are not supported", Location: input}
		}
		if scheme != "http" && scheme != "https" {
			return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
		}
		fetched, fetchErr := fetchWithRetry(ctx, input, settings)
		if fetchErr != nil {
			return nil, &SpecError{Code: NetworkError, Message: fmt.Sprintf("fetch %s: %v", input, fetchErr), Location: input, Cause: fetchErr}
		}
		raw = fetched
	} else {
		abs, err := filepath.Abs(input)
		if err != nil {
			return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
		}
		location = abs
		data, rerr := os.ReadFile(abs)
		if rerr != nil {
			return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, rerr), Location: abs, Cause: rerr}
		}
		raw = data
	}

	version, derr := detectSpecVersion(raw)
	if derr != nil {
		return nil, &SpecError{Code: ParseError, Message: derr.Error(), Location: location, Cause: derr}
	}

	switch version {
	case 3:
		if !settings.SkipValidate {
			if err := validateV3(ctx, raw); err != nil {
				return nil, mapValidateOrParseErr(err, location)
			}
		}
		tree, err := document.FromYAML(raw)
		if err != nil {
			return nil, &SpecError{Code: ParseError, Message: err.Error(), Location: location, Cause: err}
		}
		return tree, nil
	case 2:
		v3doc, err := convertV2ToV3(raw)
		if err != nil {
			return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert v2->v3: %v", err), Location: location, Cause: err}
		}
		if !settings.SkipValidate {
			if err := v3doc.Validate(ctx); err != nil && !canProceedDespiteValidation(err) {
				return nil, mapValidateOrParseErr(err, location)
			}
		}
		converted, err := json.Marshal(v3doc)
		if err != nil {
			return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("serialize converted document: %v", err), Location: location, Cause: err}
		}
		tree, err := document.FromYAML(converted)
		if err != nil {
			return nil, &SpecError{Code: ParseError, Message: err.Error(), Location: location, Cause: err}
		}
		// The converted document round-trips through Go maps, so source
		// order is gone; canonicalize for repeatable output.
		tree.Canonicalize()
		return tree, nil
	default:
		return nil, &SpecError{Code: ParseError, Message: "spec: unknown or unsupported OpenAPI/Swagger version", Location: location}
	}
}

// validateV3 runs kin-openapi validation over the raw document. Unresolved
// refs do not block loading; the resolver reports internal dangling
// references itself with better context.
func validateV3(ctx context.Context, raw []byte) error {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		if canProceedDespiteValidation(err) {
			return nil
		}
		return err
	}
	if err := doc.Validate(ctx); err != nil && !canProceedDespiteValidation(err) {
		return err
	}
	return nil
}

// detectSpecVersion returns 3 for OpenAPI v3, 2 for Swagger v2, else error.
func detectSpecVersion(data []byte) (int, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return 0, fmt.Errorf("parse spec: %w", err)
	}
	if v, ok := root["openapi"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "3.") {
			return 3, nil
		}
	}
	if v, ok := root["swagger"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "2.") {
			return 2, nil
		}
	}
	return 0, fmt.Errorf("spec: missing or unknown version (expected 'openapi: 3.x' or 'swagger: 2.0')")
}

func convertV2ToV3(data []byte) (*openapi3.T, error) {
	var v2 openapi2.T
	if err := yaml.Unmarshal(data, &v2); err != nil {
		return nil, err
	}
	return openapi2conv.ToV3(&v2)
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := &http.Client{Timeout: settings.HTTPTimeout}
	var lastErr error
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
		} else {
			// Close per attempt; a deferred close would pin every retry's
			// body until the function returns.
			body, rerr := io.ReadAll(resp.Body)
			resp.Body.Close()
			switch {
			case resp.StatusCode < 300:
				if rerr != nil {
					lastErr = rerr
				} else {
					return body, nil
				}
			case resp.StatusCode >= 500 || resp.StatusCode == 429:
				lastErr = fmt.Errorf("transient http error %d", resp.StatusCode)
			default:
				if len(body) > 1024 {
					body = body[:1024]
				}
				return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return nil, lastErr
}

func mapValidateOrParseErr(err error, location string) error {
	pointer := extractJSONPointer(err)
	code := ValidationError
	// Heuristics: some loader errors are parse errors.
	if strings.Contains(strings.ToLower(err.Error()), "parse") || strings.Contains(strings.ToLower(err.Error()), "invalid character") {
		code = ParseError
	}
	return &SpecError{Code: code, Message: err.Error(), Location: location, JSONPointer: pointer, Cause: err}
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'"]+`)

func extractJSONPointer(err error) string {
	if err == nil {
		return ""
	}
	if me, ok := err.(openapi3.MultiError); ok {
		if len(me) > 0 {
			return extractJSONPointer(me[0])
		}
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if parts := se.JSONPointer(); len(parts) > 0 {
			return "#/" + strings.Join(parts, "/")
		}
		if se.SchemaField != "" {
			return se.SchemaField
		}
	}
	msg := err.Error()
	if m := jsonPtrRe.FindString(msg); m != "" {
		return m
	}
	return ""
}

// canProceedDespiteValidation returns true for validation errors where a
// best-effort build can still proceed (e.g., unresolved $ref entries, which
// the resolver re-checks with route context).
func canProceedDespiteValidation(err error) bool {
	if err == nil {
		return true
	}
	s := strings.ToLower(err.Error())
	// kin-openapi v0.116 wording: `failed to resolve "X" in fragment in URI:
	// "#/components/schemas/X": map key "X" not found` (or "... not a map,
	// slice nor struct" when the components table is absent entirely).
	return strings.Contains(s, "unresolved ref") ||
		strings.Contains(s, "failed to resolve") ||
		strings.Contains(s, "resolve reference") ||
		strings.Contains(s, "resolving reference")
}
