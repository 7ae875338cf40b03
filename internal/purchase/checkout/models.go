package checkout

import (
	"numshop/internal/common/validation"
	"numshop/internal/purchase/validate"
)

// Status is the terminal disposition of one checkout attempt.
type Status string

const (
	// StatusCompleted: the number was purchased, the wallet debited, and
	// the order recorded.
	StatusCompleted Status = "completed"
	// StatusDenied: a safety gate rejected the attempt before any money
	// moved. Denials are expected outcomes, not errors.
	StatusDenied Status = "denied"
	// StatusFailed: an infrastructure fault interrupted the attempt.
	StatusFailed Status = "failed"
)

// Request is one purchase attempt as received from the caller. Fields pass
// through input validation before anything downstream sees them.
type Request struct {
	UserID       string            `json:"userId"`
	ClaimedPrice float64           `json:"claimedPrice"`
	Input        validate.RawInput `json:"input"`
}

// Order describes the committed purchase returned to the caller.
type Order struct {
	OrderID      string  `json:"orderId"`
	ActivationID string  `json:"activationId"`
	PhoneNumber  string  `json:"phoneNumber"`
	Price        float64 `json:"price"`
}

// Result reports the outcome of a checkout attempt. CorrelationID joins
// the result to its audit trail.
type Result struct {
	Status        Status                       `json:"status"`
	Reason        string                       `json:"reason,omitempty"`
	Errors        []validation.ValidationError `json:"errors,omitempty"`
	CorrelationID string                       `json:"correlationId"`
	Order         *Order                       `json:"order,omitempty"`
}
