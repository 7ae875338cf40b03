// Package audit appends an immutable, queryable event for every purchase
// lifecycle transition. Writes are fire-and-forget with local fallback
// logging: audit is diagnostic, not part of the correctness-critical path,
// and must never itself abort a purchase. That non-propagation is the
// contract, not an implementation detail.
package audit

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"

	"github.com/elastic/go-elasticsearch/v8"

	"numshop/internal/common/logger"
	"numshop/internal/common/metrics"
)

const insertEventQuery = `
	INSERT INTO purchase_audit_events
		(event_type, user_id, correlation_id, activation_id, purchase_order_id,
		 provider_id, amount, error_message, metadata, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())`

const selectByCorrelationQuery = `
	SELECT id, event_type, user_id, correlation_id, activation_id,
	       purchase_order_id, provider_id, amount, error_message, metadata, created_at
	FROM purchase_audit_events
	WHERE correlation_id = $1
	ORDER BY id`

type Recorder struct {
	db     *sql.DB
	es     *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewRecorder(db *sql.DB, log logger.Logger) *Recorder {
	return &Recorder{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "purchase-audit"}),
	}
}

// WithSearchMirror enables best-effort indexing of every event into
// Elasticsearch for operator queries.
func (r *Recorder) WithSearchMirror(es *elasticsearch.Client, index string) *Recorder {
	r.es = es
	r.index = index
	return r
}

// Record appends one lifecycle event. Best-effort: a failed write is
// counted, logged locally, and swallowed.
func (r *Recorder) Record(ctx context.Context, event Event) {
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		metadata = []byte("{}")
	}

	_, err = r.db.ExecContext(ctx, insertEventQuery,
		string(event.EventType),
		event.UserID,
		event.CorrelationID,
		event.ActivationID,
		event.PurchaseOrderID,
		event.ProviderID,
		event.Amount,
		event.ErrorMessage,
		metadata,
	)
	if err != nil {
		metrics.AuditWriteFailures.WithLabelValues("postgres").Inc()
		r.logger.Error("audit write failed, event logged locally only", map[string]interface{}{
			"eventType":     string(event.EventType),
			"userId":        event.UserID,
			"correlationId": event.CorrelationID,
			"error":         err.Error(),
		})
	}

	r.mirror(ctx, event)
}

// mirror indexes the event into the search store when configured.
func (r *Recorder) mirror(ctx context.Context, event Event) {
	if r.es == nil {
		return
	}

	doc, err := json.Marshal(event)
	if err != nil {
		return
	}

	res, err := r.es.Index(r.index, bytes.NewReader(doc), r.es.Index.WithContext(ctx))
	if err != nil {
		metrics.AuditWriteFailures.WithLabelValues("elasticsearch").Inc()
		r.logger.Warn("audit search mirror failed", map[string]interface{}{
			"correlationId": event.CorrelationID,
			"error":         err.Error(),
		})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		metrics.AuditWriteFailures.WithLabelValues("elasticsearch").Inc()
		r.logger.Warn("audit search mirror rejected event", map[string]interface{}{
			"correlationId": event.CorrelationID,
			"status":        res.Status(),
		})
	}
}

// FindByCorrelation reconstructs a purchase attempt from its audit trail.
func (r *Recorder) FindByCorrelation(ctx context.Context, correlationID string) ([]StoredEvent, error) {
	rows, err := r.db.QueryContext(ctx, selectByCorrelationQuery, correlationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []StoredEvent
	for rows.Next() {
		var (
			stored   StoredEvent
			amount   sql.NullFloat64
			metadata []byte
		)
		if err := rows.Scan(
			&stored.ID,
			&stored.Event.EventType,
			&stored.Event.UserID,
			&stored.Event.CorrelationID,
			&stored.Event.ActivationID,
			&stored.Event.PurchaseOrderID,
			&stored.Event.ProviderID,
			&amount,
			&stored.Event.ErrorMessage,
			&metadata,
			&stored.CreatedAt,
		); err != nil {
			return nil, err
		}
		if amount.Valid {
			stored.Event.Amount = Amount(amount.Float64)
		}
		if len(metadata) > 0 {
			_ = json.Unmarshal(metadata, &stored.Event.Metadata)
		}
		events = append(events, stored)
	}

	return events, rows.Err()
}
