// Package checkout orchestrates the purchase pipeline: input validation,
// eligibility, the per-user purchase lock, price re-verification, the
// provider buy, and the local commit. Money only moves after every gate has
// passed, and a provider purchase that cannot be committed locally is
// handed to orphan recovery instead of being dropped.
package checkout

import (
	"context"
	"time"

	commonerrors "numshop/internal/common/errors"
	"numshop/internal/common/ids"
	"numshop/internal/common/logger"
	"numshop/internal/common/metrics"
	"numshop/internal/common/observability"
	"numshop/internal/provider"
	"numshop/internal/purchase/audit"
	"numshop/internal/purchase/eligibility"
	"numshop/internal/purchase/lock"
	"numshop/internal/purchase/orphan"
	"numshop/internal/purchase/priceverify"
	"numshop/internal/purchase/validate"
)

// Offers resolves the current authoritative price of a number offer. The
// lookup must be fresh per checkout; cached prices defeat re-verification.
type Offers interface {
	CurrentPrice(ctx context.Context, countryCode, serviceCode, operatorID string) (float64, error)
}

// Wallet is the prepaid balance service. Debit must be idempotent on
// idempotencyKey so a retried commit cannot charge twice.
type Wallet interface {
	eligibility.Wallet
	Debit(ctx context.Context, userID string, amount float64, idempotencyKey string) error
}

// Orders persists committed purchases.
type Orders interface {
	Create(ctx context.Context, userID string, activation *provider.Activation) (orderID string, err error)
}

// NumberProvider executes the upstream purchase. Satisfied by
// *provider.Client.
type NumberProvider interface {
	PurchaseNumber(ctx context.Context, req provider.PurchaseRequest) (*provider.Activation, error)
}

// Auditor records audit events. Satisfied by *audit.Recorder.
type Auditor interface {
	Record(ctx context.Context, event audit.Event)
}

// Recoverer resolves purchases whose provider and ledger state diverged.
// Satisfied by *orphan.Handler.
type Recoverer interface {
	Recover(ctx context.Context, req orphan.Request) orphan.Outcome
}

// Service drives one checkout attempt end to end.
type Service struct {
	eligibility *eligibility.Checker
	locks       *lock.Manager
	prices      *priceverify.Verifier
	offers      Offers
	wallet      Wallet
	orders      Orders
	provider    NumberProvider
	audit       Auditor
	recovery    Recoverer
	obs         *observability.Observability
	logger      logger.Logger
}

func NewService(
	elig *eligibility.Checker,
	locks *lock.Manager,
	prices *priceverify.Verifier,
	offers Offers,
	wallet Wallet,
	orders Orders,
	prov NumberProvider,
	auditor Auditor,
	recovery Recoverer,
	obs *observability.Observability,
	log logger.Logger,
) *Service {
	return &Service{
		eligibility: elig,
		locks:       locks,
		prices:      prices,
		offers:      offers,
		wallet:      wallet,
		orders:      orders,
		provider:    prov,
		audit:       auditor,
		recovery:    recovery,
		obs:         obs,
		logger:      log.WithFields(map[string]interface{}{"component": "checkout"}),
	}
}

// Checkout runs the purchase pipeline. Gates run in fixed order and each
// denial short-circuits before any state outside its own counters changes.
// The returned Result always carries the correlation ID of the attempt's
// audit trail.
func (s *Service) Checkout(ctx context.Context, req Request) *Result {
	start := time.Now()
	correlationID := ids.NewCorrelationID()

	result := s.run(ctx, correlationID, req)
	result.CorrelationID = correlationID

	elapsed := time.Since(start)
	metrics.CheckoutDuration.WithLabelValues(string(result.Status)).Observe(elapsed.Seconds())
	if s.obs != nil {
		s.obs.RecordPurchase(ctx, string(result.Status))
		s.obs.RecordPurchaseDuration(ctx, elapsed, string(result.Status))
	}

	s.logger.Info("checkout finished", map[string]interface{}{
		"userId":        req.UserID,
		"correlationId": correlationID,
		"status":        string(result.Status),
		"reason":        result.Reason,
		"durationMs":    elapsed.Milliseconds(),
	})
	return result
}

func (s *Service) run(ctx context.Context, correlationID string, req Request) *Result {
	vres := validate.Validate(req.Input)
	if !vres.Valid {
		s.audit.Record(ctx, audit.Event{
			EventType:     audit.EventValidationFailed,
			UserID:        req.UserID,
			CorrelationID: correlationID,
			Metadata:      map[string]interface{}{"errorCount": len(vres.Errors)},
		})
		return s.deny("validation", &Result{
			Status: StatusDenied,
			Reason: "Invalid input",
			Errors: vres.Errors,
		})
	}
	input := vres.Sanitized

	s.audit.Record(ctx, audit.Event{
		EventType:     audit.EventPurchaseInitiated,
		UserID:        req.UserID,
		CorrelationID: correlationID,
		Amount:        audit.Amount(req.ClaimedPrice),
		Metadata: map[string]interface{}{
			"countryCode": input.CountryCode,
			"serviceCode": input.ServiceCode,
		},
	})

	elig, err := s.eligibility.Check(ctx, req.UserID, req.ClaimedPrice)
	if err != nil {
		return s.fail(ctx, correlationID, req, err)
	}
	if !elig.Eligible {
		s.audit.Record(ctx, audit.Event{
			EventType:     audit.EventEligibilityDenied,
			UserID:        req.UserID,
			CorrelationID: correlationID,
			ErrorMessage:  elig.Reason,
		})
		return s.deny("eligibility", &Result{Status: StatusDenied, Reason: elig.Reason})
	}

	held, err := s.locks.Acquire(ctx, req.UserID)
	if err != nil {
		return s.fail(ctx, correlationID, req, err)
	}
	if !held.Acquired {
		metrics.LockContention.Inc()
		s.audit.Record(ctx, audit.Event{
			EventType:     audit.EventLockRejected,
			UserID:        req.UserID,
			CorrelationID: correlationID,
		})
		return s.deny("lock", &Result{Status: StatusDenied, Reason: lock.ReasonInProgress})
	}
	defer func() {
		released, relErr := s.locks.Release(ctx, req.UserID, held.Token)
		if relErr != nil {
			s.logger.Error("failed to release purchase lock", map[string]interface{}{
				"userId": req.UserID,
				"error":  relErr.Error(),
			})
			return
		}
		if !released {
			// The lock expired while the pipeline ran. Whatever completed
			// under it stands; a concurrent attempt may have started.
			s.logger.Warn("purchase lock expired mid-flight", map[string]interface{}{
				"userId":        req.UserID,
				"correlationId": correlationID,
			})
		}
	}()

	freshPrice, err := s.offers.CurrentPrice(ctx, input.CountryCode, input.ServiceCode, input.OperatorID)
	if err != nil {
		return s.fail(ctx, correlationID, req, commonerrors.NewProviderUnavailableError(err))
	}
	pv := s.prices.Verify(req.ClaimedPrice, freshPrice)
	if !pv.Valid {
		s.audit.Record(ctx, audit.Event{
			EventType:     audit.EventPriceRejected,
			UserID:        req.UserID,
			CorrelationID: correlationID,
			Amount:        audit.Amount(req.ClaimedPrice),
			ErrorMessage:  pv.Reason,
			Metadata: map[string]interface{}{
				"freshPrice": pv.FreshPrice,
				"priceDiff":  pv.PriceDiff,
			},
		})
		return s.deny("price", &Result{Status: StatusDenied, Reason: pv.Reason})
	}

	activation, err := s.provider.PurchaseNumber(ctx, provider.PurchaseRequest{
		CountryCode: input.CountryCode,
		ServiceCode: input.ServiceCode,
		OperatorID:  input.OperatorID,
		MaxPrice:    freshPrice,
	})
	if err != nil {
		s.audit.Record(ctx, audit.Event{
			EventType:     audit.EventProviderFailed,
			UserID:        req.UserID,
			CorrelationID: correlationID,
			ErrorMessage:  err.Error(),
		})
		return s.fail(ctx, correlationID, req, commonerrors.NewProviderUnavailableError(err))
	}

	s.audit.Record(ctx, audit.Event{
		EventType:     audit.EventProviderPurchased,
		UserID:        req.UserID,
		CorrelationID: correlationID,
		ActivationID:  activation.ActivationID,
		ProviderID:    activation.ProviderID,
		Amount:        audit.Amount(activation.Cost),
	})

	return s.commit(ctx, correlationID, req, input, activation)
}

// commit debits the wallet and records the order. From here on a failure
// means provider state and local state have diverged, so every error path
// runs orphan recovery instead of returning the number to limbo.
func (s *Service) commit(ctx context.Context, correlationID string, req Request, input *validate.Sanitized, activation *provider.Activation) *Result {
	if err := s.wallet.Debit(ctx, req.UserID, activation.Cost, input.IdempotencyKey); err != nil {
		return s.orphaned(ctx, correlationID, req, activation, "", "wallet debit failed", err)
	}

	orderID, err := s.orders.Create(ctx, req.UserID, activation)
	if err != nil {
		return s.orphaned(ctx, correlationID, req, activation, "", "order record failed", err)
	}

	if err := s.eligibility.RecordSpend(ctx, req.UserID, activation.Cost); err != nil {
		// The purchase stands; only cap accounting for later attempts is
		// affected.
		s.logger.Warn("failed to record daily spend", map[string]interface{}{
			"userId": req.UserID,
			"error":  err.Error(),
		})
	}

	s.audit.Record(ctx, audit.Event{
		EventType:       audit.EventPurchaseCommitted,
		UserID:          req.UserID,
		CorrelationID:   correlationID,
		ActivationID:    activation.ActivationID,
		PurchaseOrderID: orderID,
		Amount:          audit.Amount(activation.Cost),
	})
	metrics.PurchasesCompleted.Inc()

	return &Result{
		Status: StatusCompleted,
		Order: &Order{
			OrderID:      orderID,
			ActivationID: activation.ActivationID,
			PhoneNumber:  activation.PhoneNumber,
			Price:        activation.Cost,
		},
	}
}

func (s *Service) orphaned(ctx context.Context, correlationID string, req Request, activation *provider.Activation, orderID, cause string, err error) *Result {
	s.audit.Record(ctx, audit.Event{
		EventType:       audit.EventOrphanDetected,
		UserID:          req.UserID,
		CorrelationID:   correlationID,
		ActivationID:    activation.ActivationID,
		PurchaseOrderID: orderID,
		Amount:          audit.Amount(activation.Cost),
		ErrorMessage:    err.Error(),
	})

	outcome := s.recovery.Recover(ctx, orphan.Request{
		UserID:          req.UserID,
		CorrelationID:   correlationID,
		ActivationID:    activation.ActivationID,
		PurchaseOrderID: orderID,
		Amount:          audit.Amount(activation.Cost),
		Cause:           cause,
	})

	commitErr := commonerrors.NewCommitFailedError(err)
	metrics.PurchasesFailed.WithLabelValues(string(commitErr.Code)).Inc()
	return &Result{
		Status: StatusFailed,
		Reason: "Purchase could not be completed, resolution: " + string(outcome),
	}
}

func (s *Service) deny(reason string, result *Result) *Result {
	metrics.PurchasesDenied.WithLabelValues(reason).Inc()
	return result
}

func (s *Service) fail(ctx context.Context, correlationID string, req Request, err error) *Result {
	code := commonerrors.CodeOf(err)
	metrics.PurchasesFailed.WithLabelValues(string(code)).Inc()
	s.logger.Error("checkout failed", map[string]interface{}{
		"userId":        req.UserID,
		"correlationId": correlationID,
		"errorCode":     string(code),
		"error":         err.Error(),
	})
	return &Result{
		Status: StatusFailed,
		Reason: "Service temporarily unavailable, please try again",
	}
}
