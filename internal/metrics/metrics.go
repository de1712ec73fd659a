// Package metrics exposes prometheus counters for run outcomes so a
// scraping supervisor can watch the sync.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	OrdersProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shipsync",
			Name:      "orders_processed_total",
			Help:      "Orders examined by the reconciler.",
		},
	)

	OrdersUpdated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shipsync",
			Name:      "orders_updated_total",
			Help:      "Orders whose status tag was rewritten, by new status.",
		},
		[]string{"status"},
	)

	OrdersSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shipsync",
			Name:      "orders_skipped_total",
			Help:      "Orders skipped without any write, by reason.",
		},
		[]string{"reason"},
	)

	OrdersFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shipsync",
			Name:      "orders_failed_total",
			Help:      "Orders that hit a transient error this run, by kind.",
		},
		[]string{"kind"},
	)

	FulfillmentsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shipsync",
			Name:      "fulfillments_created_total",
			Help:      "Tracking records attached to fulfillment orders.",
		},
	)
)

// MustRegister installs every collector on the registry. Call once at
// startup.
func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		OrdersProcessed,
		OrdersUpdated,
		OrdersSkipped,
		OrdersFailed,
		FulfillmentsCreated,
	)
}

// Serve exposes /metrics on addr until ctx is done. Intended for
// supervised runs that want a scrape window while the batch executes.
func Serve(ctx context.Context, addr string, log zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("metrics listener started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("metrics listener failed")
	}
}
