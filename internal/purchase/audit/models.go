package audit

import "time"

// EventType enumerates the purchase lifecycle transitions.
type EventType string

const (
	EventPurchaseInitiated  EventType = "PURCHASE_INITIATED"
	EventValidationFailed   EventType = "VALIDATION_FAILED"
	EventEligibilityDenied  EventType = "ELIGIBILITY_DENIED"
	EventLockRejected       EventType = "LOCK_REJECTED"
	EventPriceRejected      EventType = "PRICE_REJECTED"
	EventProviderFailed     EventType = "PROVIDER_FAILED"
	EventProviderPurchased  EventType = "PROVIDER_PURCHASED"
	EventPurchaseCommitted  EventType = "PURCHASE_COMMITTED"
	EventOrphanDetected     EventType = "ORPHAN_DETECTED"
	EventOrphanCancelled    EventType = "ORPHAN_CANCELLED"
	EventOrphanClaimed      EventType = "ORPHAN_CLAIMED"
	EventOrphanManualReview EventType = "ORPHAN_MANUAL_REVIEW"
	EventOrphanError        EventType = "ORPHAN_ERROR"
)

// Event is one append-only row of the purchase audit trail. CorrelationID
// is the join key across all events of one purchase attempt.
type Event struct {
	EventType       EventType              `json:"eventType"`
	UserID          string                 `json:"userId"`
	CorrelationID   string                 `json:"correlationId"`
	ActivationID    string                 `json:"activationId,omitempty"`
	PurchaseOrderID string                 `json:"purchaseOrderId,omitempty"`
	ProviderID      string                 `json:"providerId,omitempty"`
	Amount          *float64               `json:"amount,omitempty"`
	ErrorMessage    string                 `json:"errorMessage,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}

// StoredEvent is an audit row read back from the persistent store.
type StoredEvent struct {
	ID        int64     `json:"id"`
	Event     Event     `json:"event"`
	CreatedAt time.Time `json:"createdAt"`
}

// Amount wraps a dollar value for the optional Amount field.
func Amount(v float64) *float64 {
	return &v
}
