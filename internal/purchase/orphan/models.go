package orphan

// Outcome is a terminal state of the recovery procedure.
type Outcome string

const (
	// OutcomeCancelled: the provider-side resource was released, no money
	// was actually spent, nothing further to reconcile.
	OutcomeCancelled Outcome = "cancelled"
	// OutcomeClaimed: the user already derived value from the number; the
	// purchase is queued for manual billing reconciliation, never silently
	// discarded.
	OutcomeClaimed Outcome = "claimed"
	// OutcomeManualReview: ground truth is unknown, fail safe toward human
	// inspection rather than guessing.
	OutcomeManualReview Outcome = "manual_review"
	// OutcomeError: an unexpected failure inside recovery itself, escalated
	// identically to manual review.
	OutcomeError Outcome = "error"
)

// Request describes a purchase whose provider and ledger state may have
// diverged.
type Request struct {
	UserID          string   `json:"userId"`
	CorrelationID   string   `json:"correlationId"`
	ActivationID    string   `json:"activationId"`
	PurchaseOrderID string   `json:"purchaseOrderId,omitempty"`
	Amount          *float64 `json:"amount,omitempty"`
	// Cause records why recovery was invoked, for the audit trail.
	Cause string `json:"cause,omitempty"`
}
