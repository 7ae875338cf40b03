package eligibility

// Details carries the per-stage diagnostic context. All stages populate
// their fields even when an earlier stage caused the denial.
type Details struct {
	IsBanned             bool    `json:"isBanned"`
	HasSufficientBalance bool    `json:"hasSufficientBalance"`
	DailySpendRemaining  float64 `json:"dailySpendRemaining"`
	PurchaseVelocityOK   bool    `json:"purchaseVelocityOk"`
}

// Result is the composite admit/deny decision. Computed fresh per request,
// never persisted.
type Result struct {
	Eligible bool    `json:"eligible"`
	Reason   string  `json:"reason,omitempty"`
	Details  Details `json:"details"`
}

// VelocityResult reports the sliding-window attempt check.
type VelocityResult struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}
