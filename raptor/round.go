package raptor

import (
	"github.com/ttpr0/go-transit/graph"
	"github.com/ttpr0/go-transit/network"
	. "github.com/ttpr0/go-transit/util"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

//*******************************************
// round engine
//*******************************************

// Trip currently ridden while scanning a route.
type _Boarded struct {
	pattern    int32
	trip       int32
	from_index int32
	parent     Handle
	wait       int32
	walk       float64
	// time of the trip at the stop index it was compared at
	time int32
}

// Transition used to get on a trip in search direction.
func (self *_Query) _EnterTransition(route *network.Route, stop_index, pattern int32) network.Transition {
	if self.dir == graph.FORWARD {
		return route.GetBoard(stop_index, pattern)
	}
	return route.GetAlight(stop_index, pattern)
}

// Transition used to get off a trip in search direction.
func (self *_Query) _ExitTransition(route *network.Route, stop_index, pattern int32) network.Transition {
	if self.dir == graph.FORWARD {
		return route.GetAlight(stop_index, pattern)
	}
	return route.GetBoard(stop_index, pattern)
}

// Routes serving a stop marked in the previous round, in ascending order.
func (self *_Query) _CollectRoutes() List[int32] {
	for _, route := range self.routes {
		*self.route_marked.Get(route) = false
	}
	self.routes.Clear()
	for _, stop := range self.prev_visited {
		for _, rs := range self.net.GetRoutesAtStop(stop) {
			flag := self.route_marked.Get(rs.Route)
			if !*flag {
				*flag = true
				self.routes.Add(rs.Route)
			}
		}
	}
	slices.Sort(self.routes)
	return self.routes
}

// Rides every route touched in the previous round once, returns the created states.
func (self *_Query) _TransitPhase(round int32) List[Handle] {
	created := NewList[Handle](100)
	for _, route := range self._CollectRoutes() {
		self._ScanRoute(route, round, &created)
	}
	return created
}

func (self *_Query) _ScanRoute(r int32, round int32, created *List[Handle]) {
	route := self.net.GetRoute(r)
	n := int32(route.StopCount())
	exit_slack := self.opts.ExitSlack()
	enter_slack := self.opts.EnterSlack(round)
	self.boarded.Clear()

	for step := int32(0); step < n; step++ {
		stop_index := step
		if self.dir == graph.BACKWARD {
			stop_index = n - 1 - step
		}
		stop := route.GetStop(stop_index)

		for i := range self.boarded {
			cand := self.boarded[i]
			exit := self._ExitTransition(route, stop_index, cand.pattern)
			if !exit.Allowed() {
				continue
			}
			t, ok := exit.TimeOf(cand.trip)
			if !ok {
				_MalformedCounter.Inc()
				slog.Warn("skipping transition without stop time", "query", self.id, "route", route.ID, "trip", cand.trip, "stop_index", stop_index)
				continue
			}
			state := SearchState{
				Time:         self._Shift(t, exit_slack),
				WalkDistance: cand.walk,
				WaitTime:     cand.wait,
				Boardings:    round,
				Stop:         stop,
				Node:         self.net.GetStop(stop).Node,
				Round:        round,
				Phase:        TRANSIT_PHASE,
				Parent:       cand.parent,
				Ride: Some(Ride{
					Route:     r,
					Pattern:   cand.pattern,
					Trip:      cand.trip,
					FromIndex: cand.from_index,
					ToIndex:   stop_index,
				}),
			}
			if h, ok := self.frontiers[stop].Insert(self.arena, self.relation, state); ok {
				created.Add(h)
				self._Mark(stop)
			}
		}

		if step == n-1 || !*self.prev_marked.Get(stop) {
			continue
		}
		if round > 1 && self.net.GetStop(stop).LocalOnly {
			continue
		}
		for _, h := range self.frontiers[stop].States() {
			state := *self.arena.Get(h)
			if state.Round != round-1 || state.Evicted {
				continue
			}
			if state.Ride.HasValue() && state.Ride.Value.Route == r {
				continue
			}
			ready := self._Shift(state.Time, enter_slack)
			for p := int32(0); p < int32(route.PatternCount()); p++ {
				caught := self._EnterTransition(route, stop_index, p).Catch(ready, self.days, self.dir)
				if !caught.HasValue() {
					continue
				}
				wait := self._Elapsed(caught.Value.Time) - self._Elapsed(state.Time)
				self._AddBoarded(route, stop_index, _Boarded{
					pattern:    p,
					trip:       caught.Value.Trip,
					from_index: stop_index,
					parent:     h,
					wait:       state.WaitTime + wait,
					walk:       state.WalkDistance,
					time:       caught.Value.Time,
				})
			}
		}
	}
}

// Adds a boarded trip unless a trip of the same pattern is at least as good at this stop.
func (self *_Query) _AddBoarded(route *network.Route, stop_index int32, cand _Boarded) {
	enter := self._EnterTransition(route, stop_index, cand.pattern)
	a := SearchState{Time: cand.time, WalkDistance: cand.walk, WaitTime: cand.wait}
	for _, other := range self.boarded {
		if other.pattern != cand.pattern {
			continue
		}
		t, ok := enter.TimeOf(other.trip)
		if !ok {
			continue
		}
		b := SearchState{Time: t, WalkDistance: other.walk, WaitTime: other.wait}
		if self.relation.Dominates(&b, &a) {
			return
		}
	}
	keep := self.boarded[:0]
	for _, other := range self.boarded {
		if other.pattern == cand.pattern {
			if t, ok := enter.TimeOf(other.trip); ok {
				b := SearchState{Time: t, WalkDistance: other.walk, WaitTime: other.wait}
				if self.relation.Dominates(&a, &b) {
					continue
				}
			}
		}
		keep = append(keep, other)
	}
	self.boarded = append(keep, cand)
}
