package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObservability_RecordAndShutdown(t *testing.T) {
	obs := New("numshop-test")

	ctx := context.Background()
	assert.NotPanics(t, func() {
		obs.RecordPurchase(ctx, "completed")
		obs.RecordPurchase(ctx, "denied")
		obs.RecordPurchaseDuration(ctx, 42*time.Millisecond, "completed")
		obs.Shutdown()
	})
}

func TestObservability_ZeroValueIsSafe(t *testing.T) {
	// Exporter construction can fail at startup; the zero value must still
	// accept recordings without panicking.
	obs := &Observability{}

	assert.NotPanics(t, func() {
		obs.RecordPurchase(context.Background(), "completed")
		obs.RecordPurchaseDuration(context.Background(), time.Millisecond, "completed")
		obs.Shutdown()
	})
}
