package graph

import (
	"github.com/ttpr0/go-transit/geo"
	. "github.com/ttpr0/go-transit/util"
)

//*******************************************
// graph interfaces
//******************************************

type IGraph interface {
	GetGraphExplorer() IGraphExplorer
	NodeCount() int
	EdgeCount() int
	IsNode(node int32) bool
	GetNode(node int32) Node
	GetEdge(edge int32) Edge
	GetNodeGeom(node int32) geo.Coord
	GetEdgeGeom(edge int32) geo.CoordArray
	GetClosestNode(point geo.Coord) (int32, bool)
}

// Explorers are cheap and stateless, one can be shared by all queries.
type IGraphExplorer interface {
	// Iterates through the adjacency of a node calling the callback for every edge.
	//
	// direction tells the traversal direction (FORWARD means outgoing edges, BACKWARD incoming edges)
	ForAdjacentEdges(node int32, dir Direction, callback func(EdgeRef))
	GetEdgeWeight(edge EdgeRef) int32
	GetEdgeLength(edge EdgeRef) float64
	GetOtherNode(edge EdgeRef, node int32) int32
}

//*******************************************
// base-graph
//******************************************

type Graph struct {
	base   *GraphBase
	weight IWeighting
	index  *geo.Index
}

// The closest-node index is built eagerly, the graph is never mutated afterwards.
func BuildGraph(base *GraphBase, weight IWeighting) *Graph {
	coords := make([]geo.Coord, base.NodeCount())
	for i := 0; i < base.NodeCount(); i++ {
		coords[i] = base.GetNode(int32(i)).Loc
	}
	return &Graph{
		base:   base,
		weight: weight,
		index:  geo.NewIndex(coords),
	}
}

func (self *Graph) GetGraphExplorer() IGraphExplorer {
	return &BaseGraphExplorer{
		graph:  self,
		weight: self.weight,
	}
}
func (self *Graph) NodeCount() int {
	return self.base.NodeCount()
}
func (self *Graph) EdgeCount() int {
	return self.base.EdgeCount()
}
func (self *Graph) IsNode(node int32) bool {
	return self.base.IsNode(node)
}
func (self *Graph) GetNode(node int32) Node {
	return self.base.GetNode(node)
}
func (self *Graph) GetEdge(edge int32) Edge {
	return self.base.GetEdge(edge)
}
func (self *Graph) GetNodeGeom(node int32) geo.Coord {
	return self.base.GetNode(node).Loc
}
func (self *Graph) GetEdgeGeom(edge int32) geo.CoordArray {
	return self.base.GetEdgeGeom(edge)
}
func (self *Graph) GetClosestNode(point geo.Coord) (int32, bool) {
	node, _, ok := self.index.GetClosest(point)
	return node, ok
}

// Node ids within max_dist meters (straight line) of point.
func (self *Graph) GetNodesWithin(point geo.Coord, max_dist float64) Array[int32] {
	return Array[int32](self.index.GetWithin(point, max_dist))
}

//*******************************************
// base-graph explorer
//******************************************

type BaseGraphExplorer struct {
	graph  *Graph
	weight IWeighting
}

func (self *BaseGraphExplorer) ForAdjacentEdges(node int32, direction Direction, callback func(EdgeRef)) {
	for _, ref := range self.graph.base.topology.GetAdjacency(node, direction) {
		callback(ref)
	}
}
func (self *BaseGraphExplorer) GetEdgeWeight(edge EdgeRef) int32 {
	return self.weight.GetEdgeWeight(edge.EdgeID)
}
func (self *BaseGraphExplorer) GetEdgeLength(edge EdgeRef) float64 {
	return float64(self.graph.GetEdge(edge.EdgeID).Length)
}
func (self *BaseGraphExplorer) GetOtherNode(edge EdgeRef, node int32) int32 {
	e := self.graph.GetEdge(edge.EdgeID)
	if node == e.NodeA {
		return e.NodeB
	}
	if node == e.NodeB {
		return e.NodeA
	}
	return -1
}
