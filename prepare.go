package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ttpr0/go-transit/store"
	"golang.org/x/exp/slog"
)

// Computes the region transit-time table for the configured network
// and writes it to the configured sqlite file.
func PrepareTransitTimes(ctx context.Context, config Config) error {
	sources := config.Sources
	if sources.TransitTimes == "" {
		return errors.New("sources.transit-times is not set")
	}
	net, _, err := LoadNetwork(ctx, sources)
	if err != nil {
		return err
	}

	start := time.Now()
	table := store.ComputeTransitTimeTable(net, sources.CellSize)
	slog.Info("transit time table computed", "entries", table.Length(), "cell-size", sources.CellSize, "took", time.Since(start))

	db, err := store.Open(ctx, sources.TransitTimes)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := store.SaveTransitTimeTable(ctx, db, table); err != nil {
		return fmt.Errorf("save transit times: %w", err)
	}
	slog.Info("transit time table written", "path", sources.TransitTimes)
	return nil
}
