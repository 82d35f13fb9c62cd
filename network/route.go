package network

import (
	"github.com/ttpr0/go-transit/graph"
	. "github.com/ttpr0/go-transit/util"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

//*******************************************
// trips and patterns
//*******************************************

// Seconds since midnight of the service day, may exceed 24h for trips past midnight.
type StopTime struct {
	Arrival   int32
	Departure int32
}

type Trip struct {
	ID string
	// index into the network services, -1 runs every day
	Service   int32
	StopTimes Array[StopTime]
}

// One parallel schedule of a route. Trips never overtake each other,
// so they are sorted by their times at every stop index.
type TripPattern struct {
	trips      Array[Trip]
	can_board  Array[bool]
	can_alight Array[bool]
}

// can_board and can_alight may be nil, meaning every stop allows both.
//
// Every trip needs a stop time per pattern stop. The stop count is taken from
// can_board or can_alight if given, else from the longest trip. Other trips are dropped.
func NewTripPattern(trips Array[Trip], can_board, can_alight Array[bool]) TripPattern {
	stop_count := 0
	switch {
	case can_board != nil:
		stop_count = can_board.Length()
	case can_alight != nil:
		stop_count = can_alight.Length()
	default:
		for _, trip := range trips {
			stop_count = max(stop_count, trip.StopTimes.Length())
		}
	}
	trips = _DropMalformed(trips, stop_count)
	slices.SortStableFunc(trips, func(a, b Trip) int {
		return int(_FirstDeparture(a) - _FirstDeparture(b))
	})
	return TripPattern{
		trips:      trips,
		can_board:  can_board,
		can_alight: can_alight,
	}
}

// Copy of trips without those whose stop time count differs from stop_count.
func _DropMalformed(trips Array[Trip], stop_count int) Array[Trip] {
	kept := NewArray[Trip](0)
	for _, trip := range trips {
		if trip.StopTimes.Length() != stop_count {
			slog.Warn("dropping trip with wrong stop time count", "trip", trip.ID, "stop-times", trip.StopTimes.Length(), "stops", stop_count)
			continue
		}
		kept = append(kept, trip)
	}
	return kept
}

func _FirstDeparture(trip Trip) int32 {
	if trip.StopTimes.Length() == 0 {
		return 0
	}
	return trip.StopTimes[0].Departure
}

func (self *TripPattern) TripCount() int {
	return self.trips.Length()
}
func (self *TripPattern) GetTrip(trip int32) Trip {
	return self.trips[trip]
}
func (self *TripPattern) CanBoard(stop_index int32) bool {
	if self.can_board == nil {
		return true
	}
	return int(stop_index) < self.can_board.Length() && self.can_board[stop_index]
}
func (self *TripPattern) CanAlight(stop_index int32) bool {
	if self.can_alight == nil {
		return true
	}
	return int(stop_index) < self.can_alight.Length() && self.can_alight[stop_index]
}

func (self *TripPattern) _HasStopTime(trip int32, stop_index int32) bool {
	return stop_index >= 0 && int(stop_index) < self.trips[trip].StopTimes.Length()
}

// Returns false if the trip has no stop time for the index.
func (self *TripPattern) GetArrival(trip int32, stop_index int32) (int32, bool) {
	if !self._HasStopTime(trip, stop_index) {
		return 0, false
	}
	return self.trips[trip].StopTimes[stop_index].Arrival, true
}

// Returns false if the trip has no stop time for the index.
func (self *TripPattern) GetDeparture(trip int32, stop_index int32) (int32, bool) {
	if !self._HasStopTime(trip, stop_index) {
		return 0, false
	}
	return self.trips[trip].StopTimes[stop_index].Departure, true
}

// First trip running on days that departs at stop_index no earlier than t.
func (self *TripPattern) NextDeparture(stop_index int32, t int32, days *ServiceDays) (int32, int32, bool) {
	start, _ := slices.BinarySearchFunc(self.trips, t, func(trip Trip, t int32) int {
		if int(stop_index) >= trip.StopTimes.Length() {
			return 1
		}
		return int(trip.StopTimes[stop_index].Departure - t)
	})
	for i := start; i < self.trips.Length(); i++ {
		trip := self.trips[i]
		if int(stop_index) >= trip.StopTimes.Length() || trip.StopTimes[stop_index].Departure < t {
			continue
		}
		if days.IsActive(trip.Service) {
			return int32(i), trip.StopTimes[stop_index].Departure, true
		}
	}
	return -1, 0, false
}

// Last trip running on days that arrives at stop_index no later than t.
func (self *TripPattern) PrevArrival(stop_index int32, t int32, days *ServiceDays) (int32, int32, bool) {
	end, _ := slices.BinarySearchFunc(self.trips, t, func(trip Trip, t int32) int {
		if int(stop_index) >= trip.StopTimes.Length() || trip.StopTimes[stop_index].Arrival > t {
			return 1
		}
		return -1
	})
	for i := end - 1; i >= 0; i-- {
		trip := self.trips[i]
		if int(stop_index) >= trip.StopTimes.Length() || trip.StopTimes[stop_index].Arrival > t {
			continue
		}
		if days.IsActive(trip.Service) {
			return int32(i), trip.StopTimes[stop_index].Arrival, true
		}
	}
	return -1, 0, false
}

//*******************************************
// route
//*******************************************

// Ordered stop sequence shared by one or more trip patterns.
type Route struct {
	ID       string
	Name     string
	stops    Array[int32]
	patterns Array[TripPattern]
}

// Trips of patterns that do not cover every stop of the route are dropped.
func NewRoute(id, name string, stops Array[int32], patterns Array[TripPattern]) *Route {
	patterns = slices.Clone(patterns)
	for i := range patterns {
		patterns[i].trips = _DropMalformed(patterns[i].trips, stops.Length())
	}
	return &Route{
		ID:       id,
		Name:     name,
		stops:    stops,
		patterns: patterns,
	}
}

func (self *Route) StopCount() int {
	return self.stops.Length()
}
func (self *Route) GetStop(stop_index int32) int32 {
	return self.stops[stop_index]
}
func (self *Route) PatternCount() int {
	return self.patterns.Length()
}
func (self *Route) GetPattern(pattern int32) *TripPattern {
	return &self.patterns[pattern]
}

func (self *Route) GetBoard(stop_index int32, pattern int32) Transition {
	return Transition{Route: self, Pattern: pattern, StopIndex: stop_index, Kind: BOARD}
}
func (self *Route) GetAlight(stop_index int32, pattern int32) Transition {
	return Transition{Route: self, Pattern: pattern, StopIndex: stop_index, Kind: ALIGHT}
}

//*******************************************
// board and alight transitions
//*******************************************

type TransitionKind byte

const (
	BOARD  TransitionKind = 0
	ALIGHT TransitionKind = 1
)

// The point where a trip of a pattern can be entered or left at a stop index.
type Transition struct {
	Route     *Route
	Pattern   int32
	StopIndex int32
	Kind      TransitionKind
}

type TripTime struct {
	Trip int32
	Time int32
}

// Checks the stop index against the route and the pickup/drop-off restrictions.
func (self Transition) Allowed() bool {
	if self.StopIndex < 0 || int(self.StopIndex) >= self.Route.StopCount() {
		return false
	}
	if self.Pattern < 0 || int(self.Pattern) >= self.Route.PatternCount() {
		return false
	}
	pattern := self.Route.GetPattern(self.Pattern)
	if self.Kind == BOARD {
		return pattern.CanBoard(self.StopIndex)
	}
	return pattern.CanAlight(self.StopIndex)
}

// Finds the trip caught at this transition when searching in direction dir.
//
// A forward search boards at the first departure no earlier than t,
// a backward search enters the trip at its alight point with the last arrival no later than t.
func (self Transition) Catch(t int32, days *ServiceDays, dir graph.Direction) Optional[TripTime] {
	if !self.Allowed() {
		return None[TripTime]()
	}
	pattern := self.Route.GetPattern(self.Pattern)
	var trip, time int32
	var ok bool
	if dir == graph.FORWARD {
		trip, time, ok = pattern.NextDeparture(self.StopIndex, t, days)
	} else {
		trip, time, ok = pattern.PrevArrival(self.StopIndex, t, days)
	}
	if !ok {
		return None[TripTime]()
	}
	return Some(TripTime{Trip: trip, Time: time})
}

// Time at which trip passes this transition, departure for boards and arrival for alights.
func (self Transition) TimeOf(trip int32) (int32, bool) {
	pattern := self.Route.GetPattern(self.Pattern)
	if self.Kind == BOARD {
		return pattern.GetDeparture(trip, self.StopIndex)
	}
	return pattern.GetArrival(trip, self.StopIndex)
}
