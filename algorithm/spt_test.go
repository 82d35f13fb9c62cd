package algorithm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ttpr0/go-transit/geo"
	"github.com/ttpr0/go-transit/graph"
)

type _RecordHandler struct {
	prune   func(label *Label) bool
	visited map[int32][]Label
}

func (self *_RecordHandler) Prune(label *Label) bool {
	if self.prune == nil {
		return false
	}
	return self.prune(label)
}
func (self *_RecordHandler) Visit(id int32, label *Label) bool {
	self.visited[label.Node] = append(self.visited[label.Node], *label)
	return true
}

// 0 -100m- 1 -100m- 2 -100m- 3, walking at 1 m/s
func _BuildChain() *graph.Graph {
	builder := graph.NewGraphBuilder()
	for i := 0; i < 4; i++ {
		builder.AddNode(geo.Coord{7.0 + float32(i)*0.001, 50.0})
	}
	for i := int32(0); i < 3; i++ {
		builder.AddBidirectional(i, i+1, 100, nil)
	}
	base := builder.Build()
	return graph.BuildGraph(base, graph.NewWalkingWeighting(base, 1.0))
}

func TestSPTForward(t *testing.T) {
	g := _BuildChain()
	spt := NewSPT(g, SPTOptions{Direction: graph.FORWARD, MaxDist: 250})
	handler := &_RecordHandler{visited: map[int32][]Label{}}
	require.NoError(t, spt.Run(context.Background(), []Source{{Node: 0, Time: 1000}}, handler))

	require.Len(t, handler.visited[2], 1)
	assert.Equal(t, int32(1200), handler.visited[2][0].Time)
	assert.Equal(t, 200.0, handler.visited[2][0].Dist)
	// node 3 is beyond the walk limit
	assert.Empty(t, handler.visited[3])
}

func TestSPTBackward(t *testing.T) {
	g := _BuildChain()
	spt := NewSPT(g, SPTOptions{Direction: graph.BACKWARD, MaxDist: 1000})
	handler := &_RecordHandler{visited: map[int32][]Label{}}
	require.NoError(t, spt.Run(context.Background(), []Source{{Node: 3, Time: 1000}}, handler))

	require.Len(t, handler.visited[0], 1)
	label := handler.visited[0][0]
	assert.Equal(t, int32(700), label.Time)
}

func TestSPTParetoSources(t *testing.T) {
	g := _BuildChain()
	spt := NewSPT(g, SPTOptions{Direction: graph.FORWARD, MaxDist: 1000})
	handler := &_RecordHandler{visited: map[int32][]Label{}}
	sources := []Source{
		// early but already walked a lot
		{Node: 0, Time: 0, Dist: 500, Weight: 0},
		// later with no walking
		{Node: 1, Time: 500, Dist: 0, Weight: 500},
	}
	require.NoError(t, spt.Run(context.Background(), sources, handler))

	// both labels at node 3 are pareto optimal
	assert.Len(t, handler.visited[3], 2)
}

func TestSPTPathAndPrune(t *testing.T) {
	g := _BuildChain()
	spt := NewSPT(g, SPTOptions{Direction: graph.FORWARD, MaxDist: 1000})
	var last int32 = -1
	handler := &_RecordHandler{
		visited: map[int32][]Label{},
		prune:   func(label *Label) bool { return label.Node == 2 },
	}
	require.NoError(t, spt.Run(context.Background(), []Source{{Node: 0, Time: 0}}, handler))
	assert.Empty(t, handler.visited[2])
	assert.Empty(t, handler.visited[3])

	spt = NewSPT(g, SPTOptions{Direction: graph.FORWARD, MaxDist: 1000})
	handler = &_RecordHandler{visited: map[int32][]Label{}}
	require.NoError(t, spt.Run(context.Background(), []Source{{Node: 0, Time: 0}}, handler))
	for id := int32(0); id < int32(spt.labels.Length()); id++ {
		if spt.GetLabel(id).Node == 3 {
			last = id
		}
	}
	require.NotEqual(t, int32(-1), last)
	assert.Equal(t, []int32{0, 1, 2, 3}, []int32(spt.GetPathNodes(last)))
	assert.Len(t, spt.GetPath(last), 3)
}

func TestSPTCancel(t *testing.T) {
	g := _BuildChain()
	spt := NewSPT(g, SPTOptions{Direction: graph.FORWARD, MaxDist: 1000, CheckEvery: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	handler := &_RecordHandler{visited: map[int32][]Label{}}
	err := spt.Run(ctx, []Source{{Node: 0, Time: 0}}, handler)
	assert.ErrorIs(t, err, context.Canceled)
}
