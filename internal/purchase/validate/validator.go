// Package validate sanitizes raw purchase request fields into a typed,
// constrained value. Validation is a pure function: it never fails with an
// error, every problem is accumulated into the result.
package validate

import (
	"strings"

	"numshop/internal/common/ids"
	"numshop/internal/common/validation"
)

// Validate trims and constrains the raw input. serviceCode is lower-cased,
// countryCode keeps its case. Validating already-sanitized output yields the
// same output.
func Validate(raw RawInput) *Result {
	sanitized := Sanitized{
		CountryCode:    strings.TrimSpace(raw.CountryCode),
		ServiceCode:    strings.ToLower(strings.TrimSpace(raw.ServiceCode)),
		OperatorID:     strings.TrimSpace(raw.OperatorID),
		Provider:       strings.TrimSpace(raw.Provider),
		IdempotencyKey: strings.TrimSpace(raw.IdempotencyKey),
	}

	result, err := validation.ValidateDocument(toDocument(sanitized), GetInputSchema())
	if err != nil {
		return &Result{
			Valid: false,
			Errors: []validation.ValidationError{{
				Field:   "input",
				Message: err.Error(),
				Code:    "SCHEMA_ERROR",
			}},
		}
	}

	errs := result.Errors
	if sanitized.IdempotencyKey != "" && !ids.IsUUID(sanitized.IdempotencyKey) {
		errs = append(errs, validation.ValidationError{
			Field:   "idempotencyKey",
			Message: "must be a valid UUID",
			Code:    "INVALID_UUID",
		})
	}

	if len(errs) > 0 {
		return &Result{Valid: false, Errors: errs}
	}

	return &Result{Valid: true, Sanitized: &sanitized}
}

// toDocument builds the schema document. Empty fields are omitted so the
// required check reports them as missing rather than as pattern mismatches.
func toDocument(s Sanitized) map[string]interface{} {
	doc := map[string]interface{}{}
	if s.CountryCode != "" {
		doc["countryCode"] = s.CountryCode
	}
	if s.ServiceCode != "" {
		doc["serviceCode"] = s.ServiceCode
	}
	if s.OperatorID != "" {
		doc["operatorId"] = s.OperatorID
	}
	if s.Provider != "" {
		doc["provider"] = s.Provider
	}
	if s.IdempotencyKey != "" {
		doc["idempotencyKey"] = s.IdempotencyKey
	}
	return doc
}
