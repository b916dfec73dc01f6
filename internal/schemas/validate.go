// Package schemas provides JSON Schema validation for the relay envelope sent
// to the companion application.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed job_detected.schema.json
var jobDetectedSchema []byte

// ValidationError represents a schema validation failure with field paths.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:")
	for _, fe := range ve.Errors {
		sb.WriteString(fmt.Sprintf(" %s: %s;", fe.Field, fe.Message))
	}
	return strings.TrimSuffix(sb.String(), ";")
}

// ValidateRelayMessage checks a marshaled JOB_DETECTED envelope against the
// embedded schema. A nil return means the payload conforms.
func ValidateRelayMessage(payload []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(jobDetectedSchema)
	documentLoader := gojsonschema.NewBytesLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{}
	for _, desc := range result.Errors() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return ve
}
