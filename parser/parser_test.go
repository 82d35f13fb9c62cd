package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ttpr0/go-transit/geo"
	"github.com/ttpr0/go-transit/graph"
	. "github.com/ttpr0/go-transit/util"
)

func _StreetGraph() *graph.Graph {
	builder := graph.NewGraphBuilder()
	builder.AddNode(geo.Coord{7.0, 50.0})
	builder.AddNode(geo.Coord{7.02, 50.0})
	builder.AddBidirectional(0, 1, 0, nil)
	base := builder.Build()
	return graph.BuildGraph(base, graph.NewWalkingWeighting(base, 1.33))
}

func TestParseGtfs(t *testing.T) {
	net, err := ParseGtfs("./testdata/gtfs", _StreetGraph(), 50)
	require.NoError(t, err)

	// the station row is dropped
	require.Equal(t, 3, net.StopCount())
	a, ok := net.GetStopByID("A")
	require.True(t, ok)
	assert.Equal(t, int32(0), net.GetStop(a).Node)
	b, _ := net.GetStopByID("B")
	assert.Equal(t, int32(-1), net.GetStop(b).Node)
	c, _ := net.GetStopByID("C")
	assert.Equal(t, int32(1), net.GetStop(c).Node)
	assert.Equal(t, "Stop B", net.GetStop(b).Name)

	require.Equal(t, 2, net.RouteCount())
	r1 := net.GetRoute(0)
	assert.Equal(t, "R1", r1.ID)
	assert.Equal(t, "1", r1.Name)
	assert.Equal(t, 3, r1.StopCount())
	// t2 overtakes t3 between A and B
	require.Equal(t, 2, r1.PatternCount())
	p0 := r1.GetPattern(0)
	require.Equal(t, 2, p0.TripCount())
	assert.Equal(t, "t1", p0.GetTrip(0).ID)
	assert.Equal(t, "t3", p0.GetTrip(1).ID)
	assert.Equal(t, "t2", r1.GetPattern(1).GetTrip(0).ID)
	dep, ok := p0.GetDeparture(0, 1)
	assert.True(t, ok)
	assert.Equal(t, int32(8*3600+11*60), dep)
	assert.False(t, p0.CanAlight(0))
	assert.False(t, p0.CanBoard(2))
	assert.True(t, p0.CanBoard(1))

	r2 := net.GetRoute(1)
	assert.Equal(t, "Express Two", r2.Name)
	assert.Equal(t, int32(2), r2.GetStop(1))
	arr, _ := r2.GetPattern(0).GetArrival(0, 1)
	assert.Equal(t, int32(25*3600), arr)

	// t4 refers to an unknown service
	assert.Equal(t, 2, net.ServiceCount())

	monday := net.GetServiceDays(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))
	assert.False(t, monday.IsActive(0))
	tuesday := net.GetServiceDays(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	assert.True(t, tuesday.IsActive(0))
	assert.False(t, tuesday.IsActive(1))
	sunday := net.GetServiceDays(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	assert.True(t, sunday.IsActive(1))
	assert.False(t, sunday.IsActive(0))

	// only the self transfer of type 3 forbids transfers
	assert.True(t, net.GetStop(b).LocalOnly)
	assert.False(t, net.GetStop(a).LocalOnly)
	assert.False(t, net.GetStop(c).LocalOnly)
}

func TestParseGtfsWithoutGraph(t *testing.T) {
	net, err := ParseGtfs("./testdata/gtfs", nil, 50)
	require.NoError(t, err)
	for i := 0; i < net.StopCount(); i++ {
		assert.Equal(t, int32(-1), net.GetStop(int32(i)).Node)
	}
}

func TestParseGtfsMissing(t *testing.T) {
	_, err := ParseGtfs("./testdata/missing", nil, 50)
	assert.Error(t, err)
}

func TestParseGTFSTime(t *testing.T) {
	secs, err := _ParseGTFSTime("7:05:09")
	require.NoError(t, err)
	assert.Equal(t, int32(7*3600+5*60+9), secs)

	secs, err = _ParseGTFSTime("26:00:00")
	require.NoError(t, err)
	assert.Equal(t, int32(26*3600), secs)

	_, err = _ParseGTFSTime("8:00")
	assert.Error(t, err)
	_, err = _ParseGTFSTime("aa:00:00")
	assert.Error(t, err)
}

func TestWalkingDecoder(t *testing.T) {
	decoder := &WalkingDecoder{}
	assert.True(t, decoder.IsValidHighway(Dict[string, string]{"highway": "footway"}))
	assert.True(t, decoder.IsValidHighway(Dict[string, string]{"highway": "residential", "oneway": "yes"}))
	assert.False(t, decoder.IsValidHighway(Dict[string, string]{"highway": "motorway"}))
	assert.True(t, decoder.IsValidHighway(Dict[string, string]{"highway": "trunk", "foot": "yes"}))
	assert.False(t, decoder.IsValidHighway(Dict[string, string]{"highway": "path", "access": "private"}))
	assert.False(t, decoder.IsValidHighway(Dict[string, string]{"building": "yes"}))

	assert.False(t, decoder.IsOneway(Dict[string, string]{"oneway": "yes"}))
	assert.True(t, decoder.IsOneway(Dict[string, string]{"oneway:foot": "yes"}))
}

func TestCreateGraphBase(t *testing.T) {
	nodes := List[OSMNode]{{Point: geo.Coord{7.0, 50.0}}, {Point: geo.Coord{7.01, 50.0}}}
	edges := List[OSMEdge]{
		{NodeA: 0, NodeB: 1, Nodes: List[geo.Coord]{{7.0, 50.0}, {7.005, 50.001}, {7.01, 50.0}}},
		{NodeA: 1, NodeB: 0, Oneway: true, Nodes: List[geo.Coord]{{7.01, 50.0}, {7.0, 50.0}}},
	}
	base := _CreateGraphBase(nodes, edges)
	assert.Equal(t, 2, base.NodeCount())
	assert.Equal(t, 3, base.EdgeCount())
	// the reverse edge carries the reversed geometry
	geom := base.GetEdgeGeom(1)
	assert.Equal(t, geo.Coord{7.01, 50.0}, geom[0])
	assert.Greater(t, base.GetEdge(0).Length, base.GetEdge(2).Length)
}
