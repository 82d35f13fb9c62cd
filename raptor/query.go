package raptor

import (
	"context"
	"time"

	"github.com/ttpr0/go-transit/graph"
	"github.com/ttpr0/go-transit/network"
	. "github.com/ttpr0/go-transit/util"
)

//*******************************************
// query state
//*******************************************

// Mutable state of a single plan request. Never shared between goroutines.
type _Query struct {
	id       string
	net      *network.Network
	g        graph.IGraph
	opts     *Options
	dir      graph.Direction
	days     *network.ServiceDays
	relation DominanceRelation
	base     time.Time

	// seconds since midnight at the search start
	start int32
	// street node the search starts at and the node it looks for
	source int32
	target int32

	arena     *Arena
	frontiers Array[Frontier]
	targets   Frontier
	bound     *TargetBound
	builder   *ItineraryBuilder

	marked       Flags[bool]
	visited      List[int32]
	prev_marked  Flags[bool]
	prev_visited List[int32]
	route_marked Flags[bool]
	routes       List[int32]
	boarded      List[_Boarded]

	max_walk   float64
	reluctance float64
	attempts   int
	rounds     int
	candidates List[_Candidate]
}

func _NewQuery(id string, net *network.Network, g graph.IGraph, days *network.ServiceDays, req *Request) *_Query {
	opts := &req.Options
	base := _ServiceDate(req.Time)
	source, target := req.From, req.To
	if opts.Direction == graph.BACKWARD {
		source, target = req.To, req.From
	}
	stop_count := int32(net.StopCount())
	query := &_Query{
		id:       id,
		net:      net,
		g:        g,
		opts:     opts,
		dir:      opts.Direction,
		days:     days,
		relation: NewDominanceRelation(opts.Direction, opts.Epsilon),
		base:     base,
		start:    int32(req.Time.Sub(base) / time.Second),
		source:   source,
		target:   target,

		arena:     NewArena(1000),
		frontiers: NewArray[Frontier](int(stop_count)),

		marked:       NewFlags[bool](stop_count, false),
		visited:      NewList[int32](100),
		prev_marked:  NewFlags[bool](stop_count, false),
		prev_visited: NewList[int32](100),
		route_marked: NewFlags[bool](int32(net.RouteCount()), false),
		routes:       NewList[int32](100),
		boarded:      NewList[_Boarded](10),

		candidates: NewList[_Candidate](opts.NumItineraries),
	}
	query.builder = NewItineraryBuilder(net, g, query.arena, query.dir, base)
	return query
}

func _ServiceDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Seconds between the search start and t, positive in search direction.
func (self *_Query) _Elapsed(t int32) int32 {
	if self.dir == graph.FORWARD {
		return t - self.start
	}
	return self.start - t
}

// Moves t by d seconds in search direction.
func (self *_Query) _Shift(t int32, d int32) int32 {
	if self.dir == graph.FORWARD {
		return t + d
	}
	return t - d
}

func (self *_Query) _Mark(stop int32) {
	flag := self.marked.Get(stop)
	if !*flag {
		*flag = true
		self.visited.Add(stop)
	}
}

// Stops marked in the finished round become the boarding candidates of the next one.
func (self *_Query) _NextRound() {
	for _, stop := range self.prev_visited {
		*self.prev_marked.Get(stop) = false
	}
	self.prev_marked, self.marked = self.marked, self.prev_marked
	self.prev_visited, self.visited = self.visited, self.prev_visited
	self.visited.Clear()
}

func (self *_Query) _Reset(max_walk, reluctance float64) {
	self.max_walk = max_walk
	self.reluctance = reluctance
	self.arena.Reset()
	for i := range self.frontiers {
		self.frontiers[i].Clear()
	}
	self.targets.Clear()
	for _, stop := range self.visited {
		*self.marked.Get(stop) = false
	}
	for _, stop := range self.prev_visited {
		*self.prev_marked.Get(stop) = false
	}
	self.visited.Clear()
	self.prev_visited.Clear()

	self.bound = NewTargetBound(self.g, self.target, self.opts, max_walk)
	if best, ok := self._BestElapsed(); ok {
		self.bound.ReportTarget(best)
	}
}

// Runs all rounds once for the given walk limits.
//
// Targets found before an error stay in the target frontier.
func (self *_Query) _RunAttempt(ctx context.Context, max_walk, reluctance float64) error {
	self._Reset(max_walk, reluctance)
	if err := self.bound.ComputeEgress(ctx, self.net, self.dir, self.opts.CheckEvery); err != nil {
		return err
	}

	origin := self.arena.Add(SearchState{
		Time:   self.start,
		Stop:   -1,
		Node:   self.source,
		Round:  0,
		Phase:  TRANSIT_PHASE,
		Parent: NO_STATE,
	})
	sources := NewList[Handle](1)
	sources.Add(origin)
	if err := self._WalkPhase(ctx, 0, sources, false); err != nil {
		return err
	}

	last := int32(self.opts.MaxTransfers + 1)
	for round := int32(1); round <= last; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		self._NextRound()
		if self.prev_visited.Length() == 0 {
			break
		}
		created := self._TransitPhase(round)
		self.rounds += 1
		_RoundCounter.Inc()
		if err := self._WalkPhase(ctx, round, created, round == last); err != nil {
			return err
		}
	}
	return nil
}
