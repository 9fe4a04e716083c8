// Package schema validates structured report artifacts against the embedded
// JSON schema.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const reportSchemaName = "report.schema.json"

//go:embed report.schema.json
var reportSchemaData []byte

var (
	reportSchema *jsonschema.Schema
	compileOnce  sync.Once
	compileErr   error
)

// compileSchema compiles the embedded schema once.
func compileSchema() error {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(reportSchemaData))
		if err != nil {
			compileErr = fmt.Errorf("unmarshal report schema: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(reportSchemaName, doc); err != nil {
			compileErr = fmt.Errorf("add report schema resource: %w", err)
			return
		}

		reportSchema, err = compiler.Compile(reportSchemaName)
		if err != nil {
			compileErr = fmt.Errorf("compile report schema: %w", err)
		}
	})

	return compileErr
}

// Raw returns the embedded schema document.
func Raw() []byte {
	return bytes.Clone(reportSchemaData)
}

// ValidateReport validates JSON data against the report schema.
func ValidateReport(data []byte) error {
	if err := compileSchema(); err != nil {
		return err
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := reportSchema.Validate(v); err != nil {
		return fmt.Errorf("report validation failed: %w", err)
	}

	return nil
}
