package orphan

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numshop/internal/common/logger"
	"numshop/internal/provider"
	"numshop/internal/purchase/audit"
)

// ==========================
// Test Fakes
// ==========================

type fakeProvider struct {
	cancelErr   error
	cancelPanic bool
	status      *provider.Status
	statusErr   error

	cancelCalls int
	statusCalls int
}

func (f *fakeProvider) CancelNumber(ctx context.Context, activationID string) error {
	f.cancelCalls++
	if f.cancelPanic {
		panic("provider client blew up")
	}
	return f.cancelErr
}

func (f *fakeProvider) GetStatus(ctx context.Context, activationID string) (*provider.Status, error) {
	f.statusCalls++
	return f.status, f.statusErr
}

type fakeAuditor struct {
	events []audit.Event
}

func (f *fakeAuditor) Record(ctx context.Context, event audit.Event) {
	f.events = append(f.events, event)
}

type fakeNotifier struct {
	subjects []string
	messages []string
	err      error
}

func (f *fakeNotifier) PublishAlert(ctx context.Context, subject, message string) error {
	f.subjects = append(f.subjects, subject)
	f.messages = append(f.messages, message)
	return f.err
}

func testRequest() Request {
	return Request{
		UserID:          "user-123",
		CorrelationID:   "8a6e0804-2bd0-4672-b79d-d97027f9071a",
		ActivationID:    "act-777",
		PurchaseOrderID: "order-42",
		Amount:          audit.Amount(1.50),
		Cause:           "wallet debit failed after provider purchase",
	}
}

// ==========================
// Recover Tests
// ==========================

func TestRecover_CancelSucceeds(t *testing.T) {
	prov := &fakeProvider{}
	sink := &fakeAuditor{}
	notif := &fakeNotifier{}
	h := NewHandler(prov, sink, notif, logger.NewNoOpLogger())

	outcome := h.Recover(context.Background(), testRequest())

	assert.Equal(t, OutcomeCancelled, outcome)
	assert.Equal(t, 1, prov.cancelCalls)
	assert.Equal(t, 0, prov.statusCalls, "status is not consulted when cancellation worked")
	assert.Empty(t, notif.subjects, "successful cancellation needs no operator")

	require.Len(t, sink.events, 1)
	assert.Equal(t, audit.EventOrphanCancelled, sink.events[0].EventType)
	assert.Equal(t, "8a6e0804-2bd0-4672-b79d-d97027f9071a", sink.events[0].CorrelationID)
}

func TestRecover_CancelFails_NumberWasUsed(t *testing.T) {
	prov := &fakeProvider{
		cancelErr: errors.New("activation already finished"),
		status: &provider.Status{
			ActivationID: "act-777",
			State:        "finished",
			Messages: []provider.Message{
				{Text: "Your code is 482913"},
			},
		},
	}
	sink := &fakeAuditor{}
	notif := &fakeNotifier{}
	h := NewHandler(prov, sink, notif, logger.NewNoOpLogger())

	outcome := h.Recover(context.Background(), testRequest())

	assert.Equal(t, OutcomeClaimed, outcome)
	require.Len(t, sink.events, 1)
	assert.Equal(t, audit.EventOrphanClaimed, sink.events[0].EventType)
	assert.Equal(t, "8a6e0804-2bd0-4672-b79d-d97027f9071a", sink.events[0].CorrelationID)

	// Claimed purchases go to billing reconciliation, so an alert fires.
	require.Len(t, notif.subjects, 1)
	assert.Contains(t, notif.subjects[0], "claimed")
	assert.Contains(t, notif.messages[0], "act-777")
}

func TestRecover_CancelFails_StatusUnknown(t *testing.T) {
	tests := []struct {
		name      string
		status    *provider.Status
		statusErr error
	}{
		{
			name:      "status lookup fails",
			statusErr: errors.New("provider timeout"),
		},
		{
			name:   "no messages received",
			status: &provider.Status{ActivationID: "act-777", State: "active"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prov := &fakeProvider{
				cancelErr: errors.New("cancel rejected"),
				status:    tt.status,
				statusErr: tt.statusErr,
			}
			sink := &fakeAuditor{}
			notif := &fakeNotifier{}
			h := NewHandler(prov, sink, notif, logger.NewNoOpLogger())

			outcome := h.Recover(context.Background(), testRequest())

			assert.Equal(t, OutcomeManualReview, outcome)
			require.Len(t, sink.events, 1)
			assert.Equal(t, audit.EventOrphanManualReview, sink.events[0].EventType)
			assert.Equal(t, "cancel rejected", sink.events[0].Metadata["cancelError"])
			require.Len(t, notif.subjects, 1)
			assert.Contains(t, notif.subjects[0], "manual_review")
		})
	}
}

func TestRecover_SinglePass_NoRetries(t *testing.T) {
	prov := &fakeProvider{
		cancelErr: errors.New("cancel rejected"),
		statusErr: errors.New("provider timeout"),
	}
	sink := &fakeAuditor{}
	h := NewHandler(prov, sink, nil, logger.NewNoOpLogger())

	h.Recover(context.Background(), testRequest())

	assert.Equal(t, 1, prov.cancelCalls)
	assert.Equal(t, 1, prov.statusCalls)
}

func TestRecover_PanicBecomesErrorOutcome(t *testing.T) {
	prov := &fakeProvider{cancelPanic: true}
	sink := &fakeAuditor{}
	notif := &fakeNotifier{}
	h := NewHandler(prov, sink, notif, logger.NewNoOpLogger())

	outcome := h.Recover(context.Background(), testRequest())

	assert.Equal(t, OutcomeError, outcome)
	require.Len(t, sink.events, 1)
	assert.Equal(t, audit.EventOrphanError, sink.events[0].EventType)
	assert.Contains(t, sink.events[0].Metadata["panic"], "blew up")
	require.Len(t, notif.subjects, 1)
	assert.Contains(t, notif.subjects[0], "error")
}

func TestRecover_NilNotifierIsTolerated(t *testing.T) {
	prov := &fakeProvider{
		cancelErr: errors.New("cancel rejected"),
		statusErr: errors.New("provider timeout"),
	}
	sink := &fakeAuditor{}
	h := NewHandler(prov, sink, nil, logger.NewNoOpLogger())

	assert.NotPanics(t, func() {
		outcome := h.Recover(context.Background(), testRequest())
		assert.Equal(t, OutcomeManualReview, outcome)
	})
}

func TestRecover_NotifierFailureDoesNotChangeOutcome(t *testing.T) {
	prov := &fakeProvider{
		cancelErr: errors.New("cancel rejected"),
		statusErr: errors.New("provider timeout"),
	}
	sink := &fakeAuditor{}
	notif := &fakeNotifier{err: errors.New("sns unavailable")}
	h := NewHandler(prov, sink, notif, logger.NewNoOpLogger())

	outcome := h.Recover(context.Background(), testRequest())

	assert.Equal(t, OutcomeManualReview, outcome)
	require.Len(t, sink.events, 1)
}
