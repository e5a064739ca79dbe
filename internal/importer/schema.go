package importer

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed import_bundle.schema.json
var bundleSchemaJSON string

// Bundle is a validated JSON import payload.
type Bundle struct {
	BundleVersion string       `json:"bundle_version"`
	Items         []BundleItem `json:"items"`
}

// BundleItem is one item inside a bundle.
type BundleItem struct {
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Content   string         `json:"content,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt *string        `json:"created_at,omitempty"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// ValidateBundle checks a raw JSON payload against the embedded schema and
// returns the decoded bundle. Validation failures are user-correctable input
// errors, not system errors.
func ValidateBundle(payload json.RawMessage) (*Bundle, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode bundle JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load bundle schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("bundle validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize bundle JSON: %w", err)
	}

	var bundle Bundle
	if err := json.Unmarshal(normalized, &bundle); err != nil {
		return nil, fmt.Errorf("unmarshal bundle: %w", err)
	}

	if err := validateSemantics(&bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		if err := compiler.AddResource("import_bundle.schema.json", strings.NewReader(bundleSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("import_bundle.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}

func validateSemantics(bundle *Bundle) error {
	if bundle == nil {
		return fmt.Errorf("bundle is nil")
	}
	if strings.TrimSpace(bundle.BundleVersion) != "v1" {
		return fmt.Errorf("bundle_version must be v1")
	}

	for i, item := range bundle.Items {
		if strings.TrimSpace(item.Title) == "" {
			return fmt.Errorf("items[%d].title must not be blank", i)
		}
		if item.CreatedAt != nil {
			if _, err := time.Parse(time.RFC3339, strings.TrimSpace(*item.CreatedAt)); err != nil {
				return fmt.Errorf("items[%d].created_at must be RFC3339: %w", i, err)
			}
		}
	}
	return nil
}
