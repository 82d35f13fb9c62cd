package raptor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ttpr0/go-transit/graph"
	. "github.com/ttpr0/go-transit/util"
)

func TestSingleRoute(t *testing.T) {
	planner := _BuildLine(t)
	req := Request{From: _NODE_A, To: _NODE_D, Time: _At(0), Options: _TestOptions()}
	result, err := planner.Plan(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Itineraries, 1)

	itinerary := result.Itineraries[0]
	assert.Equal(t, int32(1), itinerary.Boardings)
	assert.Equal(t, _At(0), itinerary.Start)
	assert.Equal(t, _At(15), itinerary.End)
	assert.Equal(t, int32(15), itinerary.Duration)
	assert.Equal(t, 5.0, itinerary.WalkDistance)

	require.Len(t, itinerary.Legs, 2)
	ride := itinerary.Legs[0]
	assert.Equal(t, TRANSIT_LEG, ride.Mode)
	assert.Equal(t, "A", ride.From.StopID)
	assert.Equal(t, "B", ride.To.StopID)
	assert.Equal(t, "early", ride.TripID)
	assert.Equal(t, "R", ride.RouteID)
	assert.Equal(t, _At(0), ride.Start)
	assert.Equal(t, _At(10), ride.End)
	assert.Empty(t, ride.Stops)

	walk := itinerary.Legs[1]
	assert.Equal(t, WALK_LEG, walk.Mode)
	assert.Equal(t, "B", walk.From.StopID)
	assert.Equal(t, planner.Graph().GetNodeGeom(_NODE_D), walk.To.Loc)
	assert.Equal(t, _At(10), walk.Start)
	assert.Equal(t, _At(15), walk.End)
	assert.Equal(t, 5.0, walk.Distance)
	assert.Len(t, walk.Geometry, 2)
}

func TestTransferSlack(t *testing.T) {
	opts := _TestOptions()
	opts.TransferSlack = 2

	planner := _BuildTransfer(t, 12, false)
	result, err := planner.Plan(context.Background(), Request{From: 0, To: 2, Time: _At(0), Options: opts})
	require.NoError(t, err)
	require.Len(t, result.Itineraries, 1)
	assert.Equal(t, int32(2), result.Itineraries[0].Boardings)
	assert.Equal(t, _At(20), result.Itineraries[0].End)
	assert.Equal(t, int32(2), result.Itineraries[0].WaitTime)
	require.Len(t, result.Itineraries[0].Legs, 2)
	assert.Equal(t, "M", result.Itineraries[0].Legs[0].To.StopID)
	assert.Equal(t, "M", result.Itineraries[0].Legs[1].From.StopID)

	// one second short of the transfer slack
	planner = _BuildTransfer(t, 11, false)
	result, err = planner.Plan(context.Background(), Request{From: 0, To: 2, Time: _At(0), Options: opts})
	require.NoError(t, err)
	assert.Empty(t, result.Itineraries)
	assert.Equal(t, NOTE_NO_PATH, result.Note)
}

func TestLocalOnlyStop(t *testing.T) {
	opts := _TestOptions()
	opts.TransferSlack = 2

	planner := _BuildTransfer(t, 12, true)
	result, err := planner.Plan(context.Background(), Request{From: 0, To: 2, Time: _At(0), Options: opts})
	require.NoError(t, err)
	assert.Empty(t, result.Itineraries)
}

func TestMaxTransfers(t *testing.T) {
	opts := _TestOptions()
	opts.TransferSlack = 2
	opts.MaxTransfers = 0

	planner := _BuildTransfer(t, 12, false)
	result, err := planner.Plan(context.Background(), Request{From: 0, To: 2, Time: _At(0), Options: opts})
	require.NoError(t, err)
	assert.Empty(t, result.Itineraries)
}

func TestWidening(t *testing.T) {
	planner := _BuildLine(t)
	opts := _TestOptions()
	opts.MaxWalkDistance = 300

	// the 1000m walk to A fits after two doublings, the late trip is caught
	result, err := planner.Plan(context.Background(), Request{From: _NODE_O, To: _NODE_D, Time: _At(0), Options: opts})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Attempts)
	require.Len(t, result.Itineraries, 1)
	itinerary := result.Itineraries[0]
	assert.Equal(t, _At(1215), itinerary.End)
	assert.Equal(t, int32(200), itinerary.WaitTime)
	assert.Equal(t, 1005.0, itinerary.WalkDistance)
	require.Len(t, itinerary.Legs, 3)
	assert.Equal(t, WALK_LEG, itinerary.Legs[0].Mode)
	assert.Equal(t, "A", itinerary.Legs[0].To.StopID)
	assert.Equal(t, "late", itinerary.Legs[1].TripID)
}

func TestWideningCeiling(t *testing.T) {
	planner := _BuildLine(t)
	opts := _TestOptions()
	opts.MaxWalkDistance = 300
	opts.MaxWalkMultiple = 2

	result, err := planner.Plan(context.Background(), Request{From: _NODE_O, To: _NODE_D, Time: _At(0), Options: opts})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Attempts)
	assert.NotNil(t, result.Itineraries)
	assert.Empty(t, result.Itineraries)
	assert.Equal(t, NOTE_NO_PATH, result.Note)
}

func TestDirectionSymmetry(t *testing.T) {
	planner := _BuildLine(t)
	fwd_opts := _TestOptions()
	fwd, err := planner.Plan(context.Background(), Request{From: _NODE_A, To: _NODE_D, Time: _At(0), Options: fwd_opts})
	require.NoError(t, err)

	bwd_opts := _TestOptions()
	bwd_opts.Direction = graph.BACKWARD
	bwd, err := planner.Plan(context.Background(), Request{From: _NODE_A, To: _NODE_D, Time: _At(15), Options: bwd_opts})
	require.NoError(t, err)

	require.Len(t, bwd.Itineraries, 1)
	assert.Equal(t, fwd.Itineraries, bwd.Itineraries)
}

func TestBackwardWalkFirst(t *testing.T) {
	planner := _BuildLine(t)
	opts := _TestOptions()
	opts.Direction = graph.BACKWARD

	// arrive at C by 1300 starting from O, the late trip must be taken
	result, err := planner.Plan(context.Background(), Request{From: _NODE_O, To: _NODE_C, Time: _At(1300), Options: opts})
	require.NoError(t, err)
	require.Len(t, result.Itineraries, 1)
	itinerary := result.Itineraries[0]
	require.Len(t, itinerary.Legs, 2)
	assert.Equal(t, WALK_LEG, itinerary.Legs[0].Mode)
	assert.Equal(t, planner.Graph().GetNodeGeom(_NODE_O), itinerary.Legs[0].From.Loc)
	assert.Equal(t, "A", itinerary.Legs[0].To.StopID)
	assert.Equal(t, _At(200), itinerary.Legs[0].Start)
	assert.Equal(t, _At(1200), itinerary.Legs[0].End)
	assert.Equal(t, "late", itinerary.Legs[1].TripID)
	assert.Equal(t, _At(1220), itinerary.End)
	require.Len(t, itinerary.Legs[1].Stops, 1)
	assert.Equal(t, "B", itinerary.Legs[1].Stops[0].StopID)
}

func TestIdempotence(t *testing.T) {
	planner := _BuildLine(t)
	opts := _TestOptions()
	opts.NumItineraries = 3
	req := Request{From: _NODE_O, To: _NODE_D, Time: _At(0), Options: opts}

	first, err := planner.Plan(context.Background(), req)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := planner.Plan(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, first.Itineraries, again.Itineraries)
	}
}

func _CheckInvariants(t *testing.T, planner *Planner, req Request) *_Query {
	query := _NewQuery("test", planner.net, planner.g, planner.days.Get(req.Time), &req)
	require.NoError(t, query._RunAttempt(context.Background(), 2000, 2))

	for i := 0; i < query.arena.Length(); i++ {
		state := query.arena.states[i]
		if state.Round > 0 {
			assert.Equal(t, state.Round, state.Boardings)
		}
		if !state.Parent.IsValid() {
			continue
		}
		parent := query.arena.Get(state.Parent)
		assert.Less(t, parent._Order(), state._Order())
	}
	for _, frontier := range append(query.frontiers, query.targets) {
		states := frontier.States()
		for i := range states {
			for j := range states {
				if i == j {
					continue
				}
				assert.False(t, query.relation.Dominates(query.arena.Get(states[i]), query.arena.Get(states[j])))
			}
		}
	}
	return query
}

func TestSearchInvariants(t *testing.T) {
	opts := _TestOptions()
	opts.Epsilon = Epsilon{Distance: 1.1, Wait: 1.1, Time: 2}
	opts.TransferSlack = 2

	query := _CheckInvariants(t, _BuildLine(t), Request{From: _NODE_O, To: _NODE_D, Time: _At(0), Options: opts})
	assert.Equal(t, 1, query.targets.Length())

	query = _CheckInvariants(t, _BuildTransfer(t, 12, false), Request{From: 0, To: 2, Time: _At(0), Options: opts})
	require.Equal(t, 1, query.targets.Length())
	assert.Equal(t, int32(2), query.arena.Get(query.targets.States()[0]).Boardings)

	query = _CheckInvariants(t, _BuildExpress(t), Request{From: 0, To: 2, Time: _At(0), Options: opts})
	assert.Equal(t, 1, query.targets.Length())
}

func TestExpressPattern(t *testing.T) {
	planner := _BuildExpress(t)

	// the express leaves later but reaches C first
	result, err := planner.Plan(context.Background(), Request{From: 0, To: 2, Time: _At(0), Options: _TestOptions()})
	require.NoError(t, err)
	require.Len(t, result.Itineraries, 1)
	itinerary := result.Itineraries[0]
	assert.Equal(t, _At(120), itinerary.End)
	assert.Equal(t, int32(50), itinerary.WaitTime)
	require.Len(t, itinerary.Legs, 1)
	ride := itinerary.Legs[0]
	assert.Equal(t, "express", ride.TripID)
	assert.Equal(t, "A", ride.From.StopID)
	assert.Equal(t, "C", ride.To.StopID)
	assert.Equal(t, _At(50), ride.Start)
	require.Len(t, ride.Stops, 1)
	assert.Equal(t, "B", ride.Stops[0].StopID)

	// no drop-off at B
	result, err = planner.Plan(context.Background(), Request{From: 0, To: 1, Time: _At(0), Options: _TestOptions()})
	require.NoError(t, err)
	require.Len(t, result.Itineraries, 1)
	assert.Equal(t, "local", result.Itineraries[0].Legs[0].TripID)
	assert.Equal(t, _At(100), result.Itineraries[0].End)

	// no pickup at B
	result, err = planner.Plan(context.Background(), Request{From: 1, To: 2, Time: _At(60), Options: _TestOptions()})
	require.NoError(t, err)
	require.Len(t, result.Itineraries, 1)
	assert.Equal(t, "local", result.Itineraries[0].Legs[0].TripID)
	assert.Equal(t, _At(200), result.Itineraries[0].End)
}

func TestWalkAndRideResults(t *testing.T) {
	planner := _BuildWalkable(t, 600)
	opts := _TestOptions()
	opts.MaxWalkDistance = 2000
	opts.NumItineraries = 2

	result, err := planner.Plan(context.Background(), Request{From: 0, To: 1, Time: _At(0), Options: opts})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Attempts)
	require.Len(t, result.Itineraries, 2)

	ride := result.Itineraries[0]
	assert.Equal(t, _At(600), ride.End)
	assert.Equal(t, int32(1), ride.Boardings)
	assert.Equal(t, 0.0, ride.WalkDistance)

	walk := result.Itineraries[1]
	assert.Equal(t, _At(1500), walk.End)
	assert.Equal(t, int32(0), walk.Boardings)
	assert.Equal(t, 1500.0, walk.WalkDistance)
	require.Len(t, walk.Legs, 1)
	assert.Equal(t, WALK_LEG, walk.Legs[0].Mode)
	assert.Equal(t, 1500.0, walk.Legs[0].Distance)
}

func TestResultsMergedAcrossAttempts(t *testing.T) {
	planner := _BuildWalkable(t, 600)
	opts := _TestOptions()
	opts.MaxWalkDistance = 1000
	opts.NumItineraries = 2
	opts.BoundSlack = 3

	// the first attempt only rides, the walk fits after widening to 2000m
	result, err := planner.Plan(context.Background(), Request{From: 0, To: 1, Time: _At(0), Options: opts})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Attempts)
	require.Len(t, result.Itineraries, 2)
	assert.Equal(t, int32(1), result.Itineraries[0].Boardings)
	assert.Equal(t, _At(600), result.Itineraries[0].End)
	assert.Equal(t, int32(0), result.Itineraries[1].Boardings)
	assert.Equal(t, _At(1500), result.Itineraries[1].End)
}

func TestNoWorseThanWalking(t *testing.T) {
	planner := _BuildWalkable(t, 3000)
	opts := _TestOptions()
	opts.MaxWalkDistance = 2000

	result, err := planner.Plan(context.Background(), Request{From: 0, To: 1, Time: _At(0), Options: opts})
	require.NoError(t, err)
	require.Len(t, result.Itineraries, 1)
	assert.Equal(t, int32(0), result.Itineraries[0].Boardings)
	assert.LessOrEqual(t, result.Itineraries[0].End, _At(1500))
}

func TestArriveBySlack(t *testing.T) {
	planner := _BuildLine(t)
	opts := _TestOptions()
	opts.BoardSlack = 30
	opts.AlightSlack = 20
	opts.Direction = graph.BACKWARD

	result, err := planner.Plan(context.Background(), Request{From: _NODE_A, To: _NODE_C, Time: _At(1240), Options: opts})
	require.NoError(t, err)
	require.Len(t, result.Itineraries, 1)
	backward := result.Itineraries[0]
	require.Len(t, backward.Legs, 1)
	assert.Equal(t, "late", backward.Legs[0].TripID)
	assert.Equal(t, _At(1200), backward.Legs[0].Start)
	assert.Equal(t, _At(1220), backward.Legs[0].End)

	// the search state includes both slacks
	req := Request{From: _NODE_A, To: _NODE_C, Time: _At(1240), Options: opts}
	query := _NewQuery("test", planner.net, planner.g, planner.days.Get(req.Time), &req)
	require.NoError(t, query._RunAttempt(context.Background(), opts.MaxWalkDistance, opts.WalkReluctance))
	require.Equal(t, 1, query.targets.Length())
	target := query.arena.Get(query.targets.States()[0])
	assert.Equal(t, int32(1170), target.Time)
	assert.Equal(t, int32(20), target.WaitTime)

	// departing at 1170 rides the same trip
	opts.Direction = graph.FORWARD
	result, err = planner.Plan(context.Background(), Request{From: _NODE_A, To: _NODE_C, Time: _At(1170), Options: opts})
	require.NoError(t, err)
	require.Len(t, result.Itineraries, 1)
	assert.Equal(t, backward.Legs, result.Itineraries[0].Legs)

	// one second less leaves no room for the alight slack
	opts.Direction = graph.BACKWARD
	result, err = planner.Plan(context.Background(), Request{From: _NODE_A, To: _NODE_C, Time: _At(1239), Options: opts})
	require.NoError(t, err)
	require.Len(t, result.Itineraries, 1)
	assert.Equal(t, "early", result.Itineraries[0].Legs[0].TripID)
	assert.Equal(t, _At(20), result.Itineraries[0].End)
}

func TestCancelled(t *testing.T) {
	planner := _BuildLine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := planner.Plan(ctx, Request{From: _NODE_A, To: _NODE_D, Time: _At(0), Options: _TestOptions()})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, NOTE_CANCELLED, result.Note)
	assert.NotEmpty(t, result.ID)
}

func TestTimeout(t *testing.T) {
	planner := _BuildLine(t)
	opts := _TestOptions()
	opts.NumItineraries = 5
	opts.MinImprovement = 0
	opts.Timeout = time.Nanosecond

	// the first attempt finds a target, after that the budget is already spent
	result, err := planner.Plan(context.Background(), Request{From: _NODE_A, To: _NODE_D, Time: _At(0), Options: opts})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, NOTE_TIMEOUT, result.Note)
	assert.Len(t, result.Itineraries, 1)
}

func TestNoImprovement(t *testing.T) {
	planner := _BuildLine(t)
	opts := _TestOptions()
	opts.NumItineraries = 5

	// widening cannot improve on the first attempt
	result, err := planner.Plan(context.Background(), Request{From: _NODE_A, To: _NODE_D, Time: _At(0), Options: opts})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Attempts)
	assert.Len(t, result.Itineraries, 1)
}

func TestInvalidRequest(t *testing.T) {
	planner := _BuildLine(t)
	opts := _TestOptions()
	opts.NumItineraries = 0
	_, err := planner.Plan(context.Background(), Request{From: _NODE_A, To: _NODE_D, Time: _At(0), Options: opts})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = planner.Plan(context.Background(), Request{From: _NODE_A, To: 99, Time: _At(0), Options: _TestOptions()})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestPlanMany(t *testing.T) {
	planner := _BuildLine(t)
	reqs := NewList[Request](8)
	for i := 0; i < 8; i++ {
		reqs.Add(Request{From: _NODE_A, To: _NODE_D, Time: _At(0), Options: _TestOptions()})
	}
	results, err := planner.PlanMany(context.Background(), reqs, 3)
	require.NoError(t, err)
	require.Len(t, results, 8)
	for _, result := range results {
		require.Len(t, result.Itineraries, 1)
		assert.Equal(t, _At(15), result.Itineraries[0].End)
	}
	assert.NotEqual(t, results[0].ID, results[1].ID)
}

func TestResolve(t *testing.T) {
	planner := _BuildLine(t)
	node, ok := planner.ResolveStop("B")
	assert.True(t, ok)
	assert.Equal(t, _NODE_B, node)
	_, ok = planner.ResolveStop("X")
	assert.False(t, ok)

	node, ok = planner.ResolveLocation(planner.Graph().GetNodeGeom(_NODE_C))
	assert.True(t, ok)
	assert.Equal(t, _NODE_C, node)
}
