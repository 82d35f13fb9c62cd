package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ttpr0/go-transit/graph"
	"github.com/ttpr0/go-transit/network"
	"github.com/ttpr0/go-transit/parser"
	"github.com/ttpr0/go-transit/raptor"
	"github.com/ttpr0/go-transit/store"
	"golang.org/x/exp/slog"
)

//**********************************************************
// network snapshot
//**********************************************************

// Everything a query reads. Never mutated once published.
type Snapshot struct {
	Version int
	Loaded  time.Time
	Planner *raptor.Planner
	// nil if no table is configured
	TransitTimes raptor.ITransitTimeTable
}

func (self *Snapshot) Network() *network.Network {
	return self.Planner.Network()
}

// Parses the street graph and transit network named in sources.
func LoadNetwork(ctx context.Context, sources SourceOptions) (*network.Network, graph.IGraph, error) {
	start := time.Now()
	base, err := parser.ParseWalkGraph(ctx, sources.OSM, &parser.WalkingDecoder{})
	if err != nil {
		return nil, nil, fmt.Errorf("load street graph: %w", err)
	}
	g := graph.BuildGraph(base, graph.NewWalkingWeighting(base, sources.WalkSpeed))
	slog.Info("street graph loaded", "nodes", g.NodeCount(), "edges", g.EdgeCount(), "took", time.Since(start))

	start = time.Now()
	net, err := parser.ParseGtfs(sources.GTFS, g, sources.MaxSnap)
	if err != nil {
		return nil, nil, fmt.Errorf("load transit network: %w", err)
	}
	slog.Info("transit network loaded", "stops", net.StopCount(), "routes", net.RouteCount(), "services", net.ServiceCount(), "took", time.Since(start))
	return net, g, nil
}

func LoadTransitTimes(ctx context.Context, path string) (*store.TransitTimeTable, error) {
	db, err := store.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	table, err := store.LoadTransitTimeTable(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("load transit times: %w", err)
	}
	slog.Info("transit time table loaded", "entries", table.Length(), "cell-size", table.CellSize())
	return table, nil
}

//**********************************************************
// network manager
//**********************************************************

// Holds the current snapshot. Reloads swap it as a whole,
// queries keep the snapshot they started with.
type NetworkManager struct {
	mu      sync.RWMutex
	config  Config
	current *Snapshot
	version int
}

func NewNetworkManager(config Config) *NetworkManager {
	return &NetworkManager{
		config: config,
	}
}

func (self *NetworkManager) Config() Config {
	return self.config
}

// Current snapshot, nil before the first successful load.
func (self *NetworkManager) Current() *Snapshot {
	self.mu.RLock()
	defer self.mu.RUnlock()
	return self.current
}

// Builds a new snapshot from the configured sources and publishes it.
// On failure the previous snapshot stays in place.
func (self *NetworkManager) Load(ctx context.Context) error {
	sources := self.config.Sources
	net, g, err := LoadNetwork(ctx, sources)
	if err != nil {
		return err
	}
	var table raptor.ITransitTimeTable
	if sources.TransitTimes != "" {
		t, err := LoadTransitTimes(ctx, sources.TransitTimes)
		if err != nil {
			return err
		}
		table = t
	}
	self.Swap(net, g, table)
	return nil
}

// Publishes a snapshot for net and g with a fresh service day cache.
func (self *NetworkManager) Swap(net *network.Network, g graph.IGraph, table raptor.ITransitTimeTable) *Snapshot {
	days := network.NewServiceDayCache(net, 0)
	self.mu.Lock()
	defer self.mu.Unlock()
	self.version += 1
	snapshot := &Snapshot{
		Version:      self.version,
		Loaded:       time.Now(),
		Planner:      raptor.NewPlanner(net, g, days),
		TransitTimes: table,
	}
	self.current = snapshot
	slog.Info("network snapshot published", "version", snapshot.Version)
	return snapshot
}
