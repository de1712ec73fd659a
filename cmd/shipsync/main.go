package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"shipment-sync/internal/app"
	"shipment-sync/internal/batch"
	"shipment-sync/internal/config"
	"shipment-sync/internal/metrics"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes one reconciliation pass over all eligible orders.
// Configuration failures abort before any order is touched and exit
// non-zero; per-order failures land in the summary and are retried by
// the next scheduled run.
func run() error {
	configPath := flag.String("config", "", "path to TOML config (optional, env vars override)")
	orderID := flag.Int64("order", 0, "restrict the run to one order id")
	debug := flag.Bool("debug", false, "log at debug level")
	flag.Parse()

	log := newLogger(*debug)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

	engine, err := app.New(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if engine.MetricsAddr != "" {
		go metrics.Serve(ctx, engine.MetricsAddr, log)
	}

	filter := engine.Filter
	if *orderID > 0 {
		filter = batch.Filter{OrderID: *orderID}
	}

	log.Info().Msg("sync started")
	summary, err := engine.Orchestrator.Run(ctx, filter)
	if err != nil {
		return err
	}

	log.Info().
		Int("processed", summary.Processed).
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("sync finished")

	return nil
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(level).With().Timestamp().Str("app", "shipsync").Logger()
}
