// Package validation checks card manifests against a JSON schema before they
// are indexed.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

var ErrManifestInvalid = errors.New("card manifest invalid")

// Issue captures a single validation failure.
type Issue struct {
	Location string
	Message  string
}

// ManifestError surfaces validation issues with their instance locations.
type ManifestError struct {
	Issues []Issue
	Cause  error
}

func (e *ManifestError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrManifestInvalid.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *ManifestError) Unwrap() error {
	return ErrManifestInvalid
}

// Issues extracts validation issues from an error.
func Issues(err error) []Issue {
	if err == nil {
		return nil
	}
	var manifestErr *ManifestError
	if errors.As(err, &manifestErr) && manifestErr != nil {
		return manifestErr.Issues
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return collectIssues(validationErr)
	}
	return []Issue{{Message: err.Error()}}
}

// CardManifestSchema describes the YAML accepted by `lore suggest --cards`.
var CardManifestSchema = map[string]any{
	"type":     "object",
	"required": []any{"cards"},
	"properties": map[string]any{
		"cards": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id", "title"},
				"properties": map[string]any{
					"id":       map[string]any{"type": "string", "minLength": 1},
					"title":    map[string]any{"type": "string", "minLength": 1},
					"scope_id": map[string]any{"type": "string"},
				},
				"additionalProperties": false,
			},
		},
	},
	"additionalProperties": false,
}

var manifestSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return compileSchema(CardManifestSchema)
})

// ValidateCardManifest validates YAML manifest bytes.
func ValidateCardManifest(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return &ManifestError{Issues: []Issue{{Message: err.Error()}}, Cause: err}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	// Round-trip through JSON so the validator only sees JSON value types.
	encoded, err := json.Marshal(raw)
	if err != nil {
		return &ManifestError{Issues: []Issue{{Message: err.Error()}}, Cause: err}
	}
	var payload any
	if err := json.Unmarshal(encoded, &payload); err != nil {
		return &ManifestError{Issues: []Issue{{Message: err.Error()}}, Cause: err}
	}

	schema, err := manifestSchema()
	if err != nil {
		return fmt.Errorf("compile manifest schema: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return &ManifestError{Issues: Issues(err), Cause: err}
	}
	return nil
}

func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

func collectIssues(err *jsonschema.ValidationError) []Issue {
	if err == nil {
		return nil
	}
	issues := []Issue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
