// Package batch iterates eligible orders, reconciles each one with
// failure isolation, and reports a run summary.
package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"shipment-sync/internal/apperr"
	"shipment-sync/internal/fulfillment"
	"shipment-sync/internal/metrics"
	"shipment-sync/internal/model"
	"shipment-sync/internal/reconcile"
)

const maxWorkers = 16

// orderLister is the order-source surface the orchestrator reads from.
type orderLister interface {
	ListOrders(ctx context.Context) ([]model.Order, error)
}

// reconciler applies one status transition to one order.
type reconciler interface {
	Reconcile(ctx context.Context, order model.Order) reconcile.Outcome
}

// Filter restricts a run to one order, for manual or simulated
// invocations. The zero value matches every order.
type Filter struct {
	OrderID int64
}

func (f Filter) matches(order model.Order) bool {
	return f.OrderID == 0 || order.ID == f.OrderID
}

// Summary aggregates one run's outcomes.
type Summary struct {
	Processed int
	Updated   int
	Skipped   int
	Failed    int
	SkipBy    map[reconcile.SkipReason]int
}

// Orchestrator runs the reconciler over every eligible order. One
// order's failure never aborts the batch; only listing and
// configuration failures stop a run.
type Orchestrator struct {
	orders  orderLister
	rec     reconciler
	workers int
	log     zerolog.Logger
}

// New returns an Orchestrator. workers caps concurrent order
// reconciliations; values below 1 run sequentially, the safe default.
// It panics on nil collaborators.
func New(orders orderLister, rec reconciler, workers int, log zerolog.Logger) *Orchestrator {
	if orders == nil {
		panic("batch.New: nil order lister")
	}
	if rec == nil {
		panic("batch.New: nil reconciler")
	}
	if workers < 1 {
		workers = 1
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}
	return &Orchestrator{orders: orders, rec: rec, workers: workers, log: log}
}

// Run lists eligible orders and reconciles each. Per-order work
// touches disjoint external state and every write downstream is
// idempotent or guarded, so bounded parallelism is safe; the known
// tolerance is a redundant no-op when runs race. Cancellation stops
// new orders from starting; in-flight orders run to completion.
func (o *Orchestrator) Run(ctx context.Context, filter Filter) (Summary, error) {
	orders, err := o.orders.ListOrders(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list orders: %w", err)
	}

	summary := Summary{SkipBy: make(map[reconcile.SkipReason]int)}
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(o.workers)

	for _, order := range orders {
		if !filter.matches(order) {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		order := order
		g.Go(func() error {
			out := o.reconcileOne(ctx, order)

			mu.Lock()
			defer mu.Unlock()
			summary.Processed++
			switch out.Kind {
			case reconcile.OutcomeUpdated:
				summary.Updated++
			case reconcile.OutcomeSkipped:
				summary.Skipped++
				summary.SkipBy[out.Skip]++
			case reconcile.OutcomeFailed:
				summary.Failed++
			}
			return nil
		})
	}
	_ = g.Wait()

	o.log.Info().
		Int("processed", summary.Processed).
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("run finished")

	return summary, nil
}

// reconcileOne isolates a single order: panics and errors are
// converted to a failed outcome and recorded, never propagated.
func (o *Orchestrator) reconcileOne(ctx context.Context, order model.Order) (out reconcile.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = reconcile.Outcome{
				Kind: reconcile.OutcomeFailed,
				Err:  fmt.Errorf("panic: %v", r),
			}
			o.record(order, out)
		}
	}()

	out = o.rec.Reconcile(ctx, order)
	o.record(order, out)
	return out
}

func (o *Orchestrator) record(order model.Order, out reconcile.Outcome) {
	metrics.OrdersProcessed.Inc()

	switch out.Kind {
	case reconcile.OutcomeUpdated:
		metrics.OrdersUpdated.WithLabelValues(out.Status.String()).Inc()
		if out.Attach == fulfillment.ResultAttached {
			metrics.FulfillmentsCreated.Inc()
		}

	case reconcile.OutcomeSkipped:
		metrics.OrdersSkipped.WithLabelValues(string(out.Skip)).Inc()
		o.log.Debug().
			Int64("order_id", order.ID).
			Str("reason", string(out.Skip)).
			Msg("order skipped")

	case reconcile.OutcomeFailed:
		metrics.OrdersFailed.WithLabelValues(apperr.Kind(out.Err)).Inc()
		o.log.Error().
			Err(out.Err).
			Int64("order_id", order.ID).
			Bool("transient", apperr.Transient(out.Err)).
			Msg("order failed, will retry next run")
	}
}
