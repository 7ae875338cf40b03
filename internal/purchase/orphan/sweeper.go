package orphan

import (
	"context"
	"database/sql"
	"time"

	"numshop/internal/common/logger"
)

// A provider purchase without any of these follow-up events is stranded:
// the number exists upstream but this side never finished deciding what
// happened to it.
const findStrandedQuery = `
	SELECT p.user_id, p.correlation_id, p.activation_id, p.amount
	FROM purchase_audit_events p
	WHERE p.event_type = 'PROVIDER_PURCHASED'
	  AND p.created_at > NOW() - make_interval(secs => $1)
	  AND p.created_at < NOW() - make_interval(secs => $2)
	  AND NOT EXISTS (
		SELECT 1 FROM purchase_audit_events t
		WHERE t.correlation_id = p.correlation_id
		  AND t.event_type IN (
			'PURCHASE_COMMITTED', 'ORPHAN_CANCELLED', 'ORPHAN_CLAIMED',
			'ORPHAN_MANUAL_REVIEW', 'ORPHAN_ERROR')
	  )
	ORDER BY p.id`

// Recoverer resolves one stranded purchase. Satisfied by *Handler.
type Recoverer interface {
	Recover(ctx context.Context, req Request) Outcome
}

// SweepReport summarizes one sweep pass.
type SweepReport struct {
	Found    int             `json:"found"`
	Outcomes map[Outcome]int `json:"outcomes,omitempty"`
	DryRun   bool            `json:"dryRun"`
}

// Sweeper scans the audit trail for purchases the in-request recovery
// never resolved, typically because the process died between the provider
// call and the commit.
type Sweeper struct {
	db       *sql.DB
	recovery Recoverer
	logger   logger.Logger
}

func NewSweeper(db *sql.DB, recovery Recoverer, log logger.Logger) *Sweeper {
	return &Sweeper{
		db:       db,
		recovery: recovery,
		logger:   log.WithFields(map[string]interface{}{"component": "orphan-sweeper"}),
	}
}

// FindStranded returns provider purchases older than grace but within
// lookback that have no terminal event. The grace period keeps the sweeper
// from racing checkouts that are still in flight.
func (s *Sweeper) FindStranded(ctx context.Context, lookback, grace time.Duration) ([]Request, error) {
	rows, err := s.db.QueryContext(ctx, findStrandedQuery, lookback.Seconds(), grace.Seconds())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stranded []Request
	for rows.Next() {
		var (
			req    Request
			amount sql.NullFloat64
		)
		if err := rows.Scan(&req.UserID, &req.CorrelationID, &req.ActivationID, &amount); err != nil {
			return nil, err
		}
		if amount.Valid {
			req.Amount = &amount.Float64
		}
		req.Cause = "stranded provider purchase found by sweep"
		stranded = append(stranded, req)
	}
	return stranded, rows.Err()
}

// Sweep finds stranded purchases and replays recovery for each. With
// dryRun set it only reports what it would have recovered.
func (s *Sweeper) Sweep(ctx context.Context, lookback, grace time.Duration, dryRun bool) (*SweepReport, error) {
	stranded, err := s.FindStranded(ctx, lookback, grace)
	if err != nil {
		return nil, err
	}

	report := &SweepReport{
		Found:    len(stranded),
		Outcomes: make(map[Outcome]int),
		DryRun:   dryRun,
	}

	for _, req := range stranded {
		if dryRun {
			s.logger.Info("would recover stranded purchase", map[string]interface{}{
				"userId":        req.UserID,
				"correlationId": req.CorrelationID,
				"activationId":  req.ActivationID,
			})
			continue
		}
		outcome := s.recovery.Recover(ctx, req)
		report.Outcomes[outcome]++
	}
	return report, nil
}
