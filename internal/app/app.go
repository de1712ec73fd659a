// Package app wires configuration into a runnable sync engine:
// clients, tracking source, reconciler, and batch orchestrator.
package app

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"shipment-sync/internal/batch"
	"shipment-sync/internal/carrier"
	"shipment-sync/internal/config"
	"shipment-sync/internal/fulfillment"
	"shipment-sync/internal/reconcile"
	"shipment-sync/internal/shopify"
	"shipment-sync/internal/status"
	"shipment-sync/internal/tracking"
)

// App is the assembled engine for one run.
type App struct {
	Orchestrator *batch.Orchestrator
	Filter       batch.Filter
	MetricsAddr  string
}

// New builds the engine from validated configuration. The simulated
// tracking source is selected once, here, when a test order is
// configured; the reconciliation path never branches on test mode.
func New(cfg config.Config, log zerolog.Logger) (*App, error) {
	store := shopify.New(shopify.Config{
		Store:      cfg.Shopify.Store,
		Token:      cfg.Shopify.Token,
		APIVersion: cfg.Shopify.APIVersion,
		PageLimit:  cfg.Shopify.PageLimit,
	})

	resolver, err := resolverFor(cfg.Sync.NumberSource)
	if err != nil {
		return nil, err
	}

	var (
		source tracking.Source
		filter batch.Filter
	)
	if cfg.Sync.TestOrderID > 0 {
		source = tracking.NewSimulator(cfg.Sync.TestOrderID)
		filter.OrderID = cfg.Sync.TestOrderID
		log.Info().Int64("order_id", cfg.Sync.TestOrderID).Msg("simulated tracking source selected")
	} else {
		source = tracking.NewLive(carrier.New(carrier.Config{
			URL:       cfg.Carrier.URL,
			AccessKey: cfg.Carrier.AccessKey,
		}), resolver)
	}

	writer := fulfillment.NewWriter(store, fulfillment.Config{
		CarrierName:     cfg.Carrier.Name,
		TrackingURLBase: cfg.Carrier.TrackingURLBase,
		NotifyCustomer:  cfg.Sync.NotifyCustomer,
	}, log)

	attachOn, err := cfg.AttachOn()
	if err != nil {
		return nil, err
	}

	rec := reconcile.New(
		source,
		store,
		writer,
		status.NewClassifier(status.DefaultCodeMap()),
		attachOn,
		log,
	)

	return &App{
		Orchestrator: batch.New(store, rec, cfg.Sync.Workers, log),
		Filter:       filter,
		MetricsAddr:  cfg.Sync.MetricsAddr,
	}, nil
}

// resolverFor maps the configured tracking-number source to a
// resolver strategy.
func resolverFor(source string) (tracking.Resolver, error) {
	switch {
	case source == "fulfillment":
		return tracking.FromFulfillment, nil
	case strings.HasPrefix(source, "note_attribute:"):
		name := strings.TrimPrefix(source, "note_attribute:")
		if name == "" {
			return nil, fmt.Errorf("config: note_attribute source needs a name")
		}
		return tracking.FromNoteAttribute(name), nil
	default:
		return nil, fmt.Errorf("config: unknown number source %q", source)
	}
}
