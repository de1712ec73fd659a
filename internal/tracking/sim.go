package tracking

import (
	"context"
	"fmt"

	"shipment-sync/internal/model"
	"shipment-sync/internal/status"
	"shipment-sync/internal/tags"
)

// Simulator deterministically advances exactly one designated order
// through the shipment progression without touching the network. The
// next synthetic event is derived from the order's current status tag:
//
//	no tag / processing -> ARRH (in transit)
//	in transit          -> POD  (delivered)
//	delivered           -> no further events (terminal)
//
// Every other order resolves to no tracking number, so the simulator
// cannot generate events outside the order under test.
type Simulator struct {
	orderID int64
}

// NewSimulator returns a simulator bound to the designated order.
func NewSimulator(orderID int64) *Simulator {
	return &Simulator{orderID: orderID}
}

// ResolveTrackingNumber yields a synthetic consignment number for the
// designated order and a miss for everything else.
func (s *Simulator) ResolveTrackingNumber(order model.Order) (string, bool) {
	if order.ID != s.orderID {
		return "", false
	}
	return fmt.Sprintf("SIM-%d", order.ID), true
}

// Events generates the next synthetic event from the order's current
// status tag. It never calls the network and never fails.
func (s *Simulator) Events(_ context.Context, order model.Order, trackingNumber string) ([]model.TrackingEvent, error) {
	if order.ID != s.orderID {
		return nil, nil
	}

	current, ok := tags.Decode(order.Tags).Current()
	var code string
	switch {
	case ok && current == status.Delivered:
		return nil, nil
	case ok && current == status.InTransit:
		code = "POD"
	default:
		code = "ARRH"
	}

	return []model.TrackingEvent{{EventCode: code, TrackingNumber: trackingNumber}}, nil
}
