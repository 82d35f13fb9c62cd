package graph

import (
	"math"

	. "github.com/ttpr0/go-transit/util"
)

//*******************************************
// weighting interface
//*******************************************

// Opaque walk-cost function. Weights are traversal times in seconds,
// a negative weight marks an edge that may not be walked.
type IWeighting interface {
	GetEdgeWeight(edge int32) int32
}

//*******************************************
// walking weighting
//*******************************************

type WalkingWeighting struct {
	edge_weights Array[int32]
}

// speed in meters per second.
func NewWalkingWeighting(base *GraphBase, speed float64) *WalkingWeighting {
	weights := NewArray[int32](base.EdgeCount())
	for i := 0; i < base.EdgeCount(); i++ {
		edge := base.GetEdge(int32(i))
		weights[i] = int32(math.Ceil(float64(edge.Length) / speed))
	}
	return &WalkingWeighting{
		edge_weights: weights,
	}
}

func (self *WalkingWeighting) GetEdgeWeight(edge int32) int32 {
	return self.edge_weights[edge]
}

// Marks an edge as not walkable.
func (self *WalkingWeighting) Forbid(edge int32) {
	self.edge_weights[edge] = -1
}

//*******************************************
// dynamic weighting
//*******************************************

type DynamicWeighting struct {
	weight_func func(int32) int32
}

func NewDynamicWeighting(f func(int32) int32) *DynamicWeighting {
	return &DynamicWeighting{
		weight_func: f,
	}
}

func (self *DynamicWeighting) GetEdgeWeight(edge int32) int32 {
	return self.weight_func(edge)
}
