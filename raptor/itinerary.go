package raptor

import (
	"errors"
	"fmt"
	"time"

	"github.com/ttpr0/go-transit/geo"
	"github.com/ttpr0/go-transit/graph"
	"github.com/ttpr0/go-transit/network"
	. "github.com/ttpr0/go-transit/util"
)

var ErrMalformedPath = errors.New("malformed path")

//*******************************************
// itinerary types
//*******************************************

type LegMode string

const (
	WALK_LEG    LegMode = "WALK"
	TRANSIT_LEG LegMode = "TRANSIT"
)

type LegPlace struct {
	StopID string    `json:"stop_id,omitempty"`
	Name   string    `json:"name,omitempty"`
	Loc    geo.Coord `json:"loc"`
}

type StopCall struct {
	StopID    string    `json:"stop_id"`
	Name      string    `json:"name"`
	Arrival   time.Time `json:"arrival"`
	Departure time.Time `json:"departure"`
}

type Leg struct {
	Mode     LegMode        `json:"mode"`
	From     LegPlace       `json:"from"`
	To       LegPlace       `json:"to"`
	Start    time.Time      `json:"start"`
	End      time.Time      `json:"end"`
	Distance float64        `json:"distance,omitempty"`
	RouteID  string         `json:"route_id,omitempty"`
	Route    string         `json:"route,omitempty"`
	TripID   string         `json:"trip_id,omitempty"`
	Stops    []StopCall     `json:"stops,omitempty"`
	Geometry geo.CoordArray `json:"geometry"`
}

type Itinerary struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Duration     int32     `json:"duration"`
	Boardings    int32     `json:"boardings"`
	WalkDistance float64   `json:"walk_distance"`
	WaitTime     int32     `json:"wait_time"`
	Legs         []Leg     `json:"legs"`
}

//*******************************************
// steps
//*******************************************

type StepKind byte

const (
	BOARD_STEP  StepKind = 0
	HOP_STEP    StepKind = 1
	DWELL_STEP  StepKind = 2
	ALIGHT_STEP StepKind = 3
	WALK_STEP   StepKind = 4
)

func (self StepKind) String() string {
	switch self {
	case BOARD_STEP:
		return "BOARD"
	case HOP_STEP:
		return "HOP"
	case DWELL_STEP:
		return "DWELL"
	case ALIGHT_STEP:
		return "ALIGHT"
	case WALK_STEP:
		return "WALK"
	default:
		return "UNKNOWN"
	}
}

// One elementary transition of a path in chronological order.
//
// Board, hop, dwell and alight steps refer to Stop, walk steps to Edge.
// Start and End are seconds since midnight of the service date.
type Step struct {
	Kind  StepKind
	Stop  int32
	Edge  int32
	Route int32
	Trip  int32
	// pattern the trip belongs to
	Pattern int32
	Start   int32
	End     int32
}

//*******************************************
// itinerary builder
//*******************************************

// Reconstructs itineraries from target states of one search attempt.
//
// A forward search stores parent chains against time, a backward search along it.
type ItineraryBuilder struct {
	net   *network.Network
	g     graph.IGraph
	arena *Arena
	dir   graph.Direction
	base  time.Time
}

func NewItineraryBuilder(net *network.Network, g graph.IGraph, arena *Arena, dir graph.Direction, base time.Time) *ItineraryBuilder {
	return &ItineraryBuilder{
		net:   net,
		g:     g,
		arena: arena,
		dir:   dir,
		base:  base,
	}
}

// States from the start of travel to its end.
func (self *ItineraryBuilder) _Chain(target Handle) List[Handle] {
	chain := NewList[Handle](10)
	for h := target; h.IsValid(); h = self.arena.Get(h).Parent {
		chain.Add(h)
	}
	if self.dir == graph.FORWARD {
		for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
			chain[i], chain[j] = chain[j], chain[i]
		}
	}
	return chain
}

func (self *ItineraryBuilder) Steps(target Handle) (List[Step], error) {
	steps := NewList[Step](32)
	for _, h := range self._Chain(target) {
		state := *self.arena.Get(h)
		if !state.Parent.IsValid() {
			continue
		}
		parent := *self.arena.Get(state.Parent)
		switch {
		case state.Walk.HasValue():
			self._WalkSteps(&steps, &state, &parent)
		case state.Ride.HasValue():
			if err := self._RideSteps(&steps, state.Ride.Value); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: state without ride or walk", ErrMalformedPath)
		}
	}
	return steps, nil
}

func (self *ItineraryBuilder) _WalkSteps(steps *List[Step], state, parent *SearchState) {
	ref := state.Walk.Value
	edges := ref.Tree.GetPath(ref.Label)
	start, end := parent.Time, state.Time
	if self.dir == graph.BACKWARD {
		start, end = state.Time, parent.Time
		for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
			edges[i], edges[j] = edges[j], edges[i]
		}
	}
	for _, edge := range edges {
		steps.Add(Step{Kind: WALK_STEP, Stop: -1, Edge: edge, Route: -1, Trip: -1, Pattern: -1, Start: start, End: end})
	}
}

// The alight point is found by stop identity scanning from the board point.
func (self *ItineraryBuilder) _RideSteps(steps *List[Step], ride Ride) error {
	route := self.net.GetRoute(ride.Route)
	pattern := route.GetPattern(ride.Pattern)
	board, alight := ride.FromIndex, ride.ToIndex
	if self.dir == graph.BACKWARD {
		board, alight = alight, board
	}
	alight_stop := route.GetStop(alight)

	dep, ok := pattern.GetDeparture(ride.Trip, board)
	if !ok {
		return fmt.Errorf("%w: trip %d has no departure at index %d", ErrMalformedPath, ride.Trip, board)
	}
	step := Step{Route: ride.Route, Trip: ride.Trip, Pattern: ride.Pattern, Edge: -1}
	step.Kind, step.Stop, step.Start, step.End = BOARD_STEP, route.GetStop(board), dep, dep
	steps.Add(step)
	for i := board + 1; i < int32(route.StopCount()); i++ {
		stop := route.GetStop(i)
		arr, ok := pattern.GetArrival(ride.Trip, i)
		if !ok {
			return fmt.Errorf("%w: trip %d has no arrival at index %d", ErrMalformedPath, ride.Trip, i)
		}
		step.Kind, step.Stop, step.Start, step.End = HOP_STEP, stop, dep, arr
		steps.Add(step)
		if stop == alight_stop && pattern.CanAlight(i) {
			step.Kind, step.Start, step.End = ALIGHT_STEP, arr, arr
			steps.Add(step)
			return nil
		}
		dep, ok = pattern.GetDeparture(ride.Trip, i)
		if !ok {
			return fmt.Errorf("%w: trip %d has no departure at index %d", ErrMalformedPath, ride.Trip, i)
		}
		step.Kind, step.Start, step.End = DWELL_STEP, arr, dep
		steps.Add(step)
	}
	return fmt.Errorf("%w: trip %d never reaches stop %d", ErrMalformedPath, ride.Trip, alight_stop)
}

func (self *ItineraryBuilder) _Time(secs int32) time.Time {
	return self.base.Add(time.Duration(secs) * time.Second)
}

func (self *ItineraryBuilder) _StopPlace(stop int32) LegPlace {
	s := self.net.GetStop(stop)
	return LegPlace{StopID: s.ID, Name: s.Name, Loc: s.Loc}
}

func (self *ItineraryBuilder) Build(target Handle) (Itinerary, error) {
	steps, err := self.Steps(target)
	if err != nil {
		return Itinerary{}, err
	}
	legs := make([]Leg, 0, 8)
	for _, step := range steps {
		switch step.Kind {
		case WALK_STEP:
			if len(legs) == 0 || legs[len(legs)-1].Mode != WALK_LEG {
				edge := self.g.GetEdge(step.Edge)
				legs = append(legs, Leg{
					Mode:     WALK_LEG,
					From:     LegPlace{Loc: self.g.GetNodeGeom(edge.NodeA)},
					Start:    self._Time(step.Start),
					End:      self._Time(step.End),
					Geometry: geo.CoordArray{},
				})
			}
			leg := &legs[len(legs)-1]
			edge := self.g.GetEdge(step.Edge)
			leg.To = LegPlace{Loc: self.g.GetNodeGeom(edge.NodeB)}
			leg.Distance += float64(edge.Length)
			geom := self.g.GetEdgeGeom(step.Edge)
			if len(leg.Geometry) > 0 && len(geom) > 0 {
				geom = geom[1:]
			}
			leg.Geometry = append(leg.Geometry, geom...)
		case BOARD_STEP:
			route := self.net.GetRoute(step.Route)
			trip := route.GetPattern(step.Pattern).GetTrip(step.Trip)
			from := self._StopPlace(step.Stop)
			legs = append(legs, Leg{
				Mode:     TRANSIT_LEG,
				From:     from,
				Start:    self._Time(step.Start),
				RouteID:  route.ID,
				Route:    route.Name,
				TripID:   trip.ID,
				Geometry: geo.CoordArray{from.Loc},
			})
		case HOP_STEP:
			leg := &legs[len(legs)-1]
			leg.Geometry = append(leg.Geometry, self.net.GetStop(step.Stop).Loc)
		case DWELL_STEP:
			leg := &legs[len(legs)-1]
			place := self._StopPlace(step.Stop)
			leg.Stops = append(leg.Stops, StopCall{
				StopID:    place.StopID,
				Name:      place.Name,
				Arrival:   self._Time(step.Start),
				Departure: self._Time(step.End),
			})
		case ALIGHT_STEP:
			leg := &legs[len(legs)-1]
			leg.To = self._StopPlace(step.Stop)
			leg.End = self._Time(step.End)
		default:
			return Itinerary{}, fmt.Errorf("%w: unknown step %s", ErrMalformedPath, step.Kind)
		}
	}
	// walks between stops take the stop names of the adjacent transit legs
	for i := range legs {
		if legs[i].Mode != WALK_LEG {
			continue
		}
		if i > 0 {
			legs[i].From = legs[i-1].To
		}
		if i < len(legs)-1 {
			legs[i].To = legs[i+1].From
		}
	}

	state := self.arena.Get(target)
	itinerary := Itinerary{
		Boardings:    state.Boardings,
		WalkDistance: state.WalkDistance,
		WaitTime:     state.WaitTime,
		Legs:         legs,
	}
	if len(legs) == 0 {
		itinerary.Start = self._Time(state.Time)
		itinerary.End = itinerary.Start
	} else {
		itinerary.Start = legs[0].Start
		itinerary.End = legs[len(legs)-1].End
	}
	itinerary.Duration = int32(itinerary.End.Sub(itinerary.Start) / time.Second)
	return itinerary, nil
}
