// Package orphan reconciles purchases where the provider granted a phone
// number but the local commit did not complete. Recovery is a single-pass
// state machine with four terminal outcomes; it never retries and never
// silently drops a divergent purchase.
package orphan

import (
	"context"
	"encoding/json"
	"fmt"

	"numshop/internal/common/logger"
	"numshop/internal/common/metrics"
	"numshop/internal/provider"
	"numshop/internal/purchase/audit"
)

// Provider is the subset of the number-provider API recovery needs.
type Provider interface {
	CancelNumber(ctx context.Context, activationID string) error
	GetStatus(ctx context.Context, activationID string) (*provider.Status, error)
}

// Auditor records audit events. Satisfied by *audit.Recorder.
type Auditor interface {
	Record(ctx context.Context, event audit.Event)
}

// Notifier pushes operator alerts. Satisfied by *aws.SNSPublisher.
type Notifier interface {
	PublishAlert(ctx context.Context, subject, message string) error
}

// Handler drives orphan recovery to a terminal outcome.
type Handler struct {
	provider Provider
	audit    Auditor
	notifier Notifier
	logger   logger.Logger
}

// NewHandler creates a recovery handler. notifier may be nil, in which
// case escalation is logged only.
func NewHandler(p Provider, a Auditor, n Notifier, log logger.Logger) *Handler {
	return &Handler{
		provider: p,
		audit:    a,
		notifier: n,
		logger:   log,
	}
}

// Recover resolves a divergent purchase. It attempts to cancel the
// provider-side activation; if that fails it inspects the activation to
// decide whether the user already consumed value from it. Exactly one
// audit event is written, carrying the originating correlation ID, and
// manual_review / error outcomes are escalated to operators.
func (h *Handler) Recover(ctx context.Context, req Request) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = OutcomeError
			h.logger.Error("orphan recovery panicked", map[string]interface{}{
				"userId":        req.UserID,
				"correlationId": req.CorrelationID,
				"activationId":  req.ActivationID,
				"panic":         fmt.Sprintf("%v", r),
			})
			h.finish(ctx, req, OutcomeError, audit.EventOrphanError, map[string]interface{}{
				"panic": fmt.Sprintf("%v", r),
			})
		}
	}()

	h.logger.Warn("recovering orphaned purchase", map[string]interface{}{
		"userId":        req.UserID,
		"correlationId": req.CorrelationID,
		"activationId":  req.ActivationID,
		"cause":         req.Cause,
	})

	cancelErr := h.provider.CancelNumber(ctx, req.ActivationID)
	if cancelErr == nil {
		h.finish(ctx, req, OutcomeCancelled, audit.EventOrphanCancelled, nil)
		return OutcomeCancelled
	}

	status, statusErr := h.provider.GetStatus(ctx, req.ActivationID)
	if statusErr == nil && status != nil && len(status.Messages) > 0 {
		h.finish(ctx, req, OutcomeClaimed, audit.EventOrphanClaimed, map[string]interface{}{
			"cancelError":  cancelErr.Error(),
			"messageCount": len(status.Messages),
		})
		return OutcomeClaimed
	}

	meta := map[string]interface{}{
		"cancelError": cancelErr.Error(),
	}
	if statusErr != nil {
		meta["statusError"] = statusErr.Error()
	}
	h.finish(ctx, req, OutcomeManualReview, audit.EventOrphanManualReview, meta)
	return OutcomeManualReview
}

// finish records the terminal outcome: one audit event, the outcome
// metric, and an operator alert for the outcomes that need a human.
func (h *Handler) finish(ctx context.Context, req Request, outcome Outcome, eventType audit.EventType, meta map[string]interface{}) {
	metrics.OrphanOutcomes.WithLabelValues(string(outcome)).Inc()

	h.audit.Record(ctx, audit.Event{
		EventType:       eventType,
		UserID:          req.UserID,
		CorrelationID:   req.CorrelationID,
		ActivationID:    req.ActivationID,
		PurchaseOrderID: req.PurchaseOrderID,
		Amount:          req.Amount,
		Metadata:        meta,
	})

	if outcome == OutcomeCancelled {
		return
	}
	h.escalate(ctx, req, outcome)
}

func (h *Handler) escalate(ctx context.Context, req Request, outcome Outcome) {
	if h.notifier == nil {
		h.logger.Warn("no notifier configured, escalation logged only", map[string]interface{}{
			"correlationId": req.CorrelationID,
			"outcome":       string(outcome),
		})
		return
	}

	payload, _ := json.Marshal(struct {
		Outcome Outcome `json:"outcome"`
		Request Request `json:"request"`
	}{Outcome: outcome, Request: req})

	subject := fmt.Sprintf("Orphaned purchase: %s", outcome)
	if err := h.notifier.PublishAlert(ctx, subject, string(payload)); err != nil {
		h.logger.Error("failed to publish orphan alert", map[string]interface{}{
			"correlationId": req.CorrelationID,
			"outcome":       string(outcome),
			"error":         err.Error(),
		})
	}
}
