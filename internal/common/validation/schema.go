// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// JSONSchema defines the structure for input/output schemas
type JSONSchema struct {
	Type                 string              `json:"type"`
	Properties           map[string]Property `json:"properties"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties bool                `json:"additionalProperties"`
}

type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Pattern     *string  `json:"pattern,omitempty"`
	MinLength   *int     `json:"minLength,omitempty"`
	MaxLength   *int     `json:"maxLength,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (e ValidationError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateDocument validates a document against a JSONSchema and returns all
// violations at once rather than stopping at the first.
func ValidateDocument(document map[string]interface{}, schema JSONSchema) (*ValidationResult, error) {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	if result.Valid() {
		return &ValidationResult{Valid: true}, nil
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, resErr := range result.Errors() {
		errs = append(errs, ValidationError{
			Field:   fieldName(resErr),
			Message: resErr.Description(),
			Code:    errorCode(resErr.Type()),
		})
	}

	return &ValidationResult{Valid: false, Errors: errs}, nil
}

// fieldName resolves the offending field; "required" violations report the
// parent object as the field, the missing property sits in the details.
func fieldName(resErr gojsonschema.ResultError) string {
	if resErr.Type() == "required" {
		if prop, ok := resErr.Details()["property"].(string); ok {
			return prop
		}
	}
	return resErr.Field()
}

func errorCode(errType string) string {
	switch errType {
	case "required":
		return "REQUIRED_FIELD_MISSING"
	case "pattern":
		return "PATTERN_MISMATCH"
	case "string_gte", "string_lte":
		return "LENGTH_VIOLATION"
	case "enum":
		return "INVALID_ENUM_VALUE"
	case "invalid_type":
		return "INVALID_TYPE"
	case "additional_property_not_allowed":
		return "EXTRA_FIELD"
	default:
		return strings.ToUpper(errType)
	}
}

func IntPtr(i int) *int {
	return &i
}

func StrPtr(s string) *string {
	return &s
}
