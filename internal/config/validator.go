package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/config.schema.json
var schemaBytes []byte

const schemaURL = "config.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error

	issuePrinter = message.NewPrinter(language.English)
)

// ValidationResult is the outcome of checking a config file. Valid is false
// exactly when Issues is non-empty.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// ValidationIssue is one violated rule, located by JSON pointer.
type ValidationIssue struct {
	Path    string // e.g. "/probe_timeout"
	Message string
	Keyword string // failing schema keyword, e.g. "pattern"
}

// configSchema compiles the embedded schema on first use. The schema ships
// inside the binary, so a failure here is a build defect, not a user error.
func configSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			schemaErr = fmt.Errorf("decoding embedded schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("registering embedded schema: %w", err)
			return
		}
		if schema, err = c.Compile(schemaURL); err != nil {
			schemaErr = fmt.Errorf("compiling embedded schema: %w", err)
		}
	})
	return schema, schemaErr
}

// Validate checks YAML config content. Rule violations land in the result;
// the error is reserved for content that is not YAML at all.
func Validate(data []byte) (*ValidationResult, error) {
	s, err := configSchema()
	if err != nil {
		return nil, err
	}

	var settings map[string]any
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("config is not a YAML mapping: %w", err)
	}
	if settings == nil {
		settings = map[string]any{}
	}

	// The validator wants JSON-typed values (float64 numbers, []any lists),
	// which a JSON round trip produces from the YAML decoding.
	encoded, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("encoding config for validation: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("decoding config for validation: %w", err)
	}

	var ve *jsonschema.ValidationError
	switch err := s.Validate(inst); {
	case err == nil:
		return &ValidationResult{Valid: true}, nil
	case errors.As(err, &ve):
		return &ValidationResult{Issues: extractIssues(ve)}, nil
	default:
		return nil, fmt.Errorf("validating config: %w", err)
	}
}

// ValidateFile is Validate on the content of path.
func ValidateFile(path string) (*ValidationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Validate(data)
}

// extractIssues flattens ve into leaf issues, falling back to ve's own text
// when the tree carries no detail.
func extractIssues(ve *jsonschema.ValidationError) []ValidationIssue {
	var issues []ValidationIssue
	collectIssues(ve, &issues)
	if len(issues) == 0 {
		return []ValidationIssue{{Message: ve.Error()}}
	}
	return issues
}

// collectIssues appends the leaves of the cause tree.
func collectIssues(ve *jsonschema.ValidationError, issues *[]ValidationIssue) {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			collectIssues(cause, issues)
		}
		return
	}

	var issue ValidationIssue
	if len(ve.InstanceLocation) > 0 {
		issue.Path = "/" + strings.Join(ve.InstanceLocation, "/")
	}
	if ve.ErrorKind != nil {
		if kw := ve.ErrorKind.KeywordPath(); len(kw) > 0 {
			issue.Keyword = kw[len(kw)-1]
		}
		issue.Message = ve.ErrorKind.LocalizedString(issuePrinter)
	}
	*issues = append(*issues, issue)
}
