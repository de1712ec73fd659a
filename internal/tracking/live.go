package tracking

import (
	"context"

	"shipment-sync/internal/model"
)

// eventsFetcher is the carrier query surface the live source needs.
type eventsFetcher interface {
	TrackingEvents(ctx context.Context, trackingNumber string) ([]model.TrackingEvent, error)
}

// Live queries the real carrier API, one call per order per run.
type Live struct {
	carrier eventsFetcher
	resolve Resolver
}

// NewLive returns a live source over the given carrier client. A nil
// resolver defaults to FromFulfillment. It panics if carrier is nil.
func NewLive(carrier eventsFetcher, resolve Resolver) *Live {
	if carrier == nil {
		panic("tracking.NewLive: nil carrier")
	}
	if resolve == nil {
		resolve = FromFulfillment
	}
	return &Live{carrier: carrier, resolve: resolve}
}

// ResolveTrackingNumber applies the injected resolver strategy.
func (l *Live) ResolveTrackingNumber(order model.Order) (string, bool) {
	return l.resolve(order)
}

// Events queries the carrier once. Transient carrier failures come
// back as classified errors for the batch layer to record.
func (l *Live) Events(ctx context.Context, _ model.Order, trackingNumber string) ([]model.TrackingEvent, error) {
	return l.carrier.TrackingEvents(ctx, trackingNumber)
}
