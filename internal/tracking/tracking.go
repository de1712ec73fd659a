// Package tracking abstracts where carrier events come from: the live
// carrier API or a deterministic simulator for one designated order.
package tracking

import (
	"context"

	"shipment-sync/internal/model"
)

// Source yields the tracking number and carrier events for an order.
// Events returns a finite, chronologically ordered sequence; the last
// element is the latest.
type Source interface {
	ResolveTrackingNumber(order model.Order) (string, bool)
	Events(ctx context.Context, order model.Order, trackingNumber string) ([]model.TrackingEvent, error)
}

// Resolver extracts a tracking number from an order record. Stores
// stash the carrier consignment number in different places, so the
// strategy is injected rather than hardcoded.
type Resolver func(order model.Order) (string, bool)

// FromFulfillment resolves the first fulfillment carrying a non-empty
// tracking number.
func FromFulfillment(order model.Order) (string, bool) {
	for _, f := range order.Fulfillments {
		if f.TrackingNumber != "" {
			return f.TrackingNumber, true
		}
	}
	return "", false
}

// FromNoteAttribute resolves the named order note attribute.
func FromNoteAttribute(name string) Resolver {
	return func(order model.Order) (string, bool) {
		for _, attr := range order.NoteAttributes {
			if attr.Name == name && attr.Value != "" {
				return attr.Value, true
			}
		}
		return "", false
	}
}
