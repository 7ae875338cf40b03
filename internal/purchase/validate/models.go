package validate

import (
	"numshop/internal/common/validation"
)

// RawInput carries the untrusted purchase request fields exactly as the
// checkout handler received them.
type RawInput struct {
	CountryCode    string `json:"countryCode"`
	ServiceCode    string `json:"serviceCode"`
	OperatorID     string `json:"operatorId,omitempty"`
	Provider       string `json:"provider,omitempty"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

// Sanitized is the only representation passed downstream. Immutable after
// validation, discarded at request end.
type Sanitized struct {
	CountryCode    string `json:"countryCode"`
	ServiceCode    string `json:"serviceCode"`
	OperatorID     string `json:"operatorId,omitempty"`
	Provider       string `json:"provider,omitempty"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

// Result accumulates every validation problem so the caller can report them
// all at once.
type Result struct {
	Valid     bool                         `json:"valid"`
	Errors    []validation.ValidationError `json:"errors,omitempty"`
	Sanitized *Sanitized                   `json:"sanitized,omitempty"`
}
