package validate

import "numshop/internal/common/validation"

// tokenPattern is the restrictive character class every field must match.
// Country codes may be ISO codes, numeric provider IDs, or plain names;
// all are treated as opaque tokens, never parsed.
const tokenPattern = "^[A-Za-z0-9_-]{1,50}$"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"countryCode", "serviceCode"},
		Properties: map[string]validation.Property{
			"countryCode": {
				Type:        "string",
				Description: "Country selector, case preserved",
				Pattern:     validation.StrPtr(tokenPattern),
			},
			"serviceCode": {
				Type:        "string",
				Description: "Service selector, lower-cased during sanitization",
				Pattern:     validation.StrPtr(tokenPattern),
			},
			"operatorId": {
				Type:        "string",
				Description: "Optional operator selector",
				Pattern:     validation.StrPtr(tokenPattern),
			},
			"provider": {
				Type:        "string",
				Description: "Optional upstream provider override",
				Pattern:     validation.StrPtr(tokenPattern),
			},
			"idempotencyKey": {
				Type:        "string",
				Description: "Optional client-supplied UUID for safe retries",
				MaxLength:   validation.IntPtr(50),
			},
		},
		AdditionalProperties: false,
	}
}
