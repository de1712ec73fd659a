// Package fulfillment attaches carrier tracking records to orders,
// guarding against duplicate writes.
package fulfillment

import (
	"context"

	"github.com/rs/zerolog"

	"shipment-sync/internal/model"
)

// Result names the disposition of an attach attempt. Guard exits are
// outcomes, not errors.
type Result string

const (
	ResultAttached          Result = "attached"
	ResultAlreadyAttached   Result = "already_attached"
	ResultNoOpenFulfillment Result = "no_open_fulfillment"
)

// api is the fulfillment surface of the order source.
type api interface {
	FulfillmentOrders(ctx context.Context, orderID int64) ([]model.FulfillmentOrder, error)
	CreateFulfillment(ctx context.Context, req model.CreateFulfillment) error
}

// Config fixes the attach policy: carrier identity, the tracking URL
// prefix the number is appended to, and whether the customer is
// notified. Policy lives here, not at call sites.
type Config struct {
	CarrierName     string
	TrackingURLBase string
	NotifyCustomer  bool
}

// Writer performs the guarded, idempotent tracking attach.
type Writer struct {
	api api
	cfg Config
	log zerolog.Logger
}

// NewWriter returns a Writer over the given fulfillment API. It panics
// if api is nil.
func NewWriter(api api, cfg Config, log zerolog.Logger) *Writer {
	if api == nil {
		panic("fulfillment.NewWriter: nil api")
	}
	return &Writer{api: api, cfg: cfg, log: log}
}

// Attach binds trackingNumber to the order's open fulfillment order.
// Guards, in order, each a no-error early exit:
//
//  1. any existing fulfillment already carries a tracking number,
//     whether or not it matches -> ResultAlreadyAttached
//  2. no fulfillment order is open -> ResultNoOpenFulfillment
//
// Otherwise exactly one creation call is issued. A failed create is a
// transient error for the batch layer; the next run passes the same
// guards and retries safely.
func (w *Writer) Attach(ctx context.Context, order model.Order, trackingNumber string) (Result, error) {
	for _, f := range order.Fulfillments {
		if f.TrackingNumber != "" {
			return ResultAlreadyAttached, nil
		}
	}

	fulfillmentOrders, err := w.api.FulfillmentOrders(ctx, order.ID)
	if err != nil {
		return "", err
	}

	var open *model.FulfillmentOrder
	for i := range fulfillmentOrders {
		if fulfillmentOrders[i].Status == model.FulfillmentOrderOpen {
			open = &fulfillmentOrders[i]
			break
		}
	}
	if open == nil {
		return ResultNoOpenFulfillment, nil
	}

	err = w.api.CreateFulfillment(ctx, model.CreateFulfillment{
		FulfillmentOrderID: open.ID,
		TrackingNumber:     trackingNumber,
		CarrierName:        w.cfg.CarrierName,
		TrackingURL:        w.cfg.TrackingURLBase + trackingNumber,
		NotifyCustomer:     w.cfg.NotifyCustomer,
	})
	if err != nil {
		return "", err
	}

	w.log.Info().
		Int64("order_id", order.ID).
		Str("tracking_number", trackingNumber).
		Int64("fulfillment_order_id", open.ID).
		Msg("tracking attached")

	return ResultAttached, nil
}
