package provider

import "time"

// PurchaseRequest selects the number to provision upstream. Fields arrive
// already sanitized.
type PurchaseRequest struct {
	CountryCode string  `json:"countryCode"`
	ServiceCode string  `json:"serviceCode"`
	OperatorID  string  `json:"operatorId,omitempty"`
	MaxPrice    float64 `json:"maxPrice,omitempty"`
}

// Activation is the provider-side resource created by a purchase.
type Activation struct {
	ActivationID string  `json:"activationId"`
	PhoneNumber  string  `json:"phoneNumber"`
	Cost         float64 `json:"cost"`
	ProviderID   string  `json:"providerId,omitempty"`
}

// Message is an SMS received on an activation.
type Message struct {
	Sender     string    `json:"sender"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Status reports the upstream state of an activation.
type Status struct {
	ActivationID string    `json:"activationId"`
	State        string    `json:"state"`
	Messages     []Message `json:"messages"`
}
