package raptor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ttpr0/go-transit/geo"
	"github.com/ttpr0/go-transit/graph"
	"github.com/ttpr0/go-transit/network"
	. "github.com/ttpr0/go-transit/util"
)

// 2024-03-04 is a monday
var _Monday = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func _At(secs int32) time.Time {
	return _Monday.Add(time.Duration(secs) * time.Second)
}

func _Times(times ...int32) Array[network.StopTime] {
	stop_times := NewArray[network.StopTime](len(times))
	for i, t := range times {
		stop_times[i] = network.StopTime{Arrival: t, Departure: t}
	}
	return stop_times
}

func _TestOptions() Options {
	opts := DefaultOptions()
	opts.NumItineraries = 1
	opts.TransferSlack = 0
	opts.Epsilon = NoEpsilon()
	return opts
}

// Street nodes of the line fixture.
const (
	_NODE_A int32 = 0
	_NODE_B int32 = 1
	_NODE_C int32 = 2
	_NODE_D int32 = 3
	_NODE_O int32 = 4
)

// Stops A, B, C on one route with trips at 0/10/20 and 1200/1210/1220.
// D is a 5m walk from B, O a 1000m walk from A. Walking at 1 m/s.
func _BuildLine(t *testing.T) *Planner {
	builder := graph.NewGraphBuilder()
	builder.AddNode(geo.Coord{7.00, 50.0})
	builder.AddNode(geo.Coord{7.01, 50.0})
	builder.AddNode(geo.Coord{7.02, 50.0})
	builder.AddNode(geo.Coord{7.01004, 50.0})
	builder.AddNode(geo.Coord{6.99, 50.0})
	builder.AddBidirectional(_NODE_B, _NODE_D, 5, nil)
	builder.AddBidirectional(_NODE_O, _NODE_A, 1000, nil)
	base := builder.Build()
	g := graph.BuildGraph(base, graph.NewWalkingWeighting(base, 1.0))

	stops := Array[network.Stop]{
		{ID: "A", Name: "Stop A", Loc: geo.Coord{7.00, 50.0}, Node: _NODE_A},
		{ID: "B", Name: "Stop B", Loc: geo.Coord{7.01, 50.0}, Node: _NODE_B},
		{ID: "C", Name: "Stop C", Loc: geo.Coord{7.02, 50.0}, Node: _NODE_C},
	}
	pattern := network.NewTripPattern(Array[network.Trip]{
		{ID: "early", Service: -1, StopTimes: _Times(0, 10, 20)},
		{ID: "late", Service: -1, StopTimes: _Times(1200, 1210, 1220)},
	}, nil, nil)
	route := network.NewRoute("R", "Line R", Array[int32]{0, 1, 2}, Array[network.TripPattern]{pattern})
	net, err := network.NewNetwork(stops, Array[*network.Route]{route}, nil)
	require.NoError(t, err)
	return NewPlanner(net, g, nil)
}

// Route 1 runs A -> M arriving at 10, route 2 runs M -> Z departing at departure.
// No street edges, every stop has its own node.
func _BuildTransfer(t *testing.T, departure int32, local_only bool) *Planner {
	builder := graph.NewGraphBuilder()
	builder.AddNode(geo.Coord{7.00, 50.0})
	builder.AddNode(geo.Coord{7.01, 50.0})
	builder.AddNode(geo.Coord{7.02, 50.0})
	base := builder.Build()
	g := graph.BuildGraph(base, graph.NewWalkingWeighting(base, 1.0))

	stops := Array[network.Stop]{
		{ID: "A", Loc: geo.Coord{7.00, 50.0}, Node: 0},
		{ID: "M", Loc: geo.Coord{7.01, 50.0}, Node: 1, LocalOnly: local_only},
		{ID: "Z", Loc: geo.Coord{7.02, 50.0}, Node: 2},
	}
	route1 := network.NewRoute("R1", "Route 1", Array[int32]{0, 1}, Array[network.TripPattern]{
		network.NewTripPattern(Array[network.Trip]{{ID: "r1", Service: -1, StopTimes: _Times(0, 10)}}, nil, nil),
	})
	route2 := network.NewRoute("R2", "Route 2", Array[int32]{1, 2}, Array[network.TripPattern]{
		network.NewTripPattern(Array[network.Trip]{{ID: "r2", Service: -1, StopTimes: _Times(departure, 20)}}, nil, nil),
	})
	net, err := network.NewNetwork(stops, Array[*network.Route]{route1, route2}, nil)
	require.NoError(t, err)
	return NewPlanner(net, g, nil)
}

// One route A -> B -> C with a local pattern at 0/100/200 and an express
// at 50/80/120 that only picks up at A and only drops off at C.
func _BuildExpress(t *testing.T) *Planner {
	builder := graph.NewGraphBuilder()
	builder.AddNode(geo.Coord{7.00, 50.0})
	builder.AddNode(geo.Coord{7.01, 50.0})
	builder.AddNode(geo.Coord{7.02, 50.0})
	base := builder.Build()
	g := graph.BuildGraph(base, graph.NewWalkingWeighting(base, 1.0))

	stops := Array[network.Stop]{
		{ID: "A", Loc: geo.Coord{7.00, 50.0}, Node: 0},
		{ID: "B", Loc: geo.Coord{7.01, 50.0}, Node: 1},
		{ID: "C", Loc: geo.Coord{7.02, 50.0}, Node: 2},
	}
	local := network.NewTripPattern(Array[network.Trip]{
		{ID: "local", Service: -1, StopTimes: _Times(0, 100, 200)},
	}, nil, nil)
	express := network.NewTripPattern(Array[network.Trip]{
		{ID: "express", Service: -1, StopTimes: _Times(50, 80, 120)},
	}, Array[bool]{true, false, false}, Array[bool]{false, false, true})
	route := network.NewRoute("R", "Line R", Array[int32]{0, 1, 2}, Array[network.TripPattern]{local, express})
	net, err := network.NewNetwork(stops, Array[*network.Route]{route}, nil)
	require.NoError(t, err)
	return NewPlanner(net, g, nil)
}

// Stops A and C joined by a 1500m street and a bus leaving A at 0 and
// reaching C at arrival. Walking at 1 m/s.
func _BuildWalkable(t *testing.T, arrival int32) *Planner {
	builder := graph.NewGraphBuilder()
	builder.AddNode(geo.Coord{7.00, 50.0})
	builder.AddNode(geo.Coord{7.02, 50.0})
	builder.AddBidirectional(0, 1, 1500, nil)
	base := builder.Build()
	g := graph.BuildGraph(base, graph.NewWalkingWeighting(base, 1.0))

	stops := Array[network.Stop]{
		{ID: "A", Loc: geo.Coord{7.00, 50.0}, Node: 0},
		{ID: "C", Loc: geo.Coord{7.02, 50.0}, Node: 1},
	}
	route := network.NewRoute("R", "Bus R", Array[int32]{0, 1}, Array[network.TripPattern]{
		network.NewTripPattern(Array[network.Trip]{{ID: "bus", Service: -1, StopTimes: _Times(0, arrival)}}, nil, nil),
	})
	net, err := network.NewNetwork(stops, Array[*network.Route]{route}, nil)
	require.NoError(t, err)
	return NewPlanner(net, g, nil)
}
