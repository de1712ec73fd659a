// Package reconcile applies one idempotent shipment-status transition
// to a single order: classify the latest carrier event, rewrite the
// status tag, and attach tracking when the new status warrants it.
package reconcile

import (
	"context"

	"github.com/rs/zerolog"

	"shipment-sync/internal/fulfillment"
	"shipment-sync/internal/model"
	"shipment-sync/internal/status"
	"shipment-sync/internal/tags"
	"shipment-sync/internal/tracking"
)

// OutcomeKind is the top-level disposition of one reconciliation.
type OutcomeKind string

const (
	OutcomeUpdated OutcomeKind = "updated"
	OutcomeSkipped OutcomeKind = "skipped"
	OutcomeFailed  OutcomeKind = "failed"
)

// SkipReason names a no-op outcome. Skips are expected states, logged
// low and never counted against the batch.
type SkipReason string

const (
	SkipAlreadyDelivered  SkipReason = "already_delivered"
	SkipNoTrackingNumber  SkipReason = "no_tracking_number"
	SkipNoEvents          SkipReason = "no_events"
	SkipUnrecognizedEvent SkipReason = "unrecognized_event"
	SkipAlreadyCurrent    SkipReason = "already_current"
)

// Outcome reports the transition taken for one order.
type Outcome struct {
	Kind   OutcomeKind
	Status status.Status      // set when Kind == OutcomeUpdated
	Skip   SkipReason         // set when Kind == OutcomeSkipped
	Attach fulfillment.Result // attach disposition, "" when not attempted
	Err    error              // set when Kind == OutcomeFailed
}

func skipped(reason SkipReason) Outcome {
	return Outcome{Kind: OutcomeSkipped, Skip: reason}
}

func failed(err error) Outcome {
	return Outcome{Kind: OutcomeFailed, Err: err}
}

// tagWriter is the order-source surface the reconciler mutates through.
type tagWriter interface {
	UpdateTags(ctx context.Context, orderID int64, tags string) error
}

// attacher binds a tracking number to an order's fulfillment.
type attacher interface {
	Attach(ctx context.Context, order model.Order, trackingNumber string) (fulfillment.Result, error)
}

// Reconciler derives the canonical status from the latest carrier
// event and applies it to the order exactly once.
type Reconciler struct {
	source   tracking.Source
	tags     tagWriter
	writer   attacher
	classify *status.Classifier
	attachOn map[status.Status]bool
	log      zerolog.Logger
}

// New returns a Reconciler. attachOn lists the statuses that trigger a
// fulfillment attach after a tag write. It panics on nil collaborators.
func New(source tracking.Source, tagWriter tagWriter, writer attacher, classifier *status.Classifier, attachOn []status.Status, log zerolog.Logger) *Reconciler {
	if source == nil {
		panic("reconcile.New: nil tracking source")
	}
	if tagWriter == nil {
		panic("reconcile.New: nil tag writer")
	}
	if writer == nil {
		panic("reconcile.New: nil fulfillment writer")
	}
	if classifier == nil {
		classifier = status.NewClassifier(status.DefaultCodeMap())
	}
	on := make(map[status.Status]bool, len(attachOn))
	for _, st := range attachOn {
		on[st] = true
	}
	return &Reconciler{
		source:   source,
		tags:     tagWriter,
		writer:   writer,
		classify: classifier,
		attachOn: on,
		log:      log,
	}
}

// Reconcile runs one idempotent state transition for the order. It
// recomputes everything from the order's current external state, so
// repeated or concurrent runs converge on the same result.
func (r *Reconciler) Reconcile(ctx context.Context, order model.Order) Outcome {
	set := tags.Decode(order.Tags)
	current, hasCurrent := set.Current()

	// Delivered is terminal; nothing past it is reconciled.
	if hasCurrent && current == status.Delivered {
		return skipped(SkipAlreadyDelivered)
	}

	trackingNumber, ok := r.source.ResolveTrackingNumber(order)
	if !ok {
		return skipped(SkipNoTrackingNumber)
	}

	events, err := r.source.Events(ctx, order, trackingNumber)
	if err != nil {
		return failed(err)
	}
	if len(events) == 0 {
		return skipped(SkipNoEvents)
	}

	// The carrier guarantees chronological order; only the last event
	// matters for the current status.
	latest := events[len(events)-1]
	next, ok := r.classify.Classify(latest.EventCode)
	if !ok {
		r.log.Debug().
			Int64("order_id", order.ID).
			Str("event_code", latest.EventCode).
			Msg("unrecognized carrier event code")
		return skipped(SkipUnrecognizedEvent)
	}

	if hasCurrent && current == next {
		return skipped(SkipAlreadyCurrent)
	}
	if hasCurrent && next.Before(current) {
		// The carrier is trusted as ground truth, so the transition is
		// still applied, but a regression is a data anomaly worth noise.
		r.log.Warn().
			Int64("order_id", order.ID).
			Stringer("from", current).
			Stringer("to", next).
			Str("event_code", latest.EventCode).
			Msg("backward status transition reported by carrier")
	}

	if err := r.tags.UpdateTags(ctx, order.ID, set.Apply(next).Encode()); err != nil {
		return failed(err)
	}

	out := Outcome{Kind: OutcomeUpdated, Status: next}
	if r.attachOn[next] {
		result, err := r.writer.Attach(ctx, order, trackingNumber)
		if err != nil {
			// The tag write is committed; the attach is guarded and
			// idempotent, so the next run retries it safely.
			out.Kind = OutcomeFailed
			out.Err = err
			return out
		}
		out.Attach = result
	}

	r.log.Info().
		Int64("order_id", order.ID).
		Stringer("status", next).
		Str("attach", string(out.Attach)).
		Msg("order status updated")

	return out
}
