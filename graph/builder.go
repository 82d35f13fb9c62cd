package graph

import (
	"github.com/ttpr0/go-transit/geo"
	. "github.com/ttpr0/go-transit/util"
)

//*******************************************
// graph builder
//*******************************************

// Incrementally collects nodes and edges, used by the parsers and in tests.
type GraphBuilder struct {
	nodes      List[Node]
	edges      List[Edge]
	edge_geoms List[geo.CoordArray]
}

func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{
		nodes:      NewList[Node](100),
		edges:      NewList[Edge](100),
		edge_geoms: NewList[geo.CoordArray](100),
	}
}

func (self *GraphBuilder) AddNode(loc geo.Coord) int32 {
	self.nodes.Add(Node{Loc: loc})
	return int32(self.nodes.Length() - 1)
}

// Adds a directed edge. A length <= 0 is replaced by the straight-line distance.
func (self *GraphBuilder) AddEdge(node_a, node_b int32, length float32, geom geo.CoordArray) int32 {
	if length <= 0 {
		if geom != nil {
			length = float32(geo.Length(geom))
		} else {
			length = float32(geo.Distance(self.nodes[node_a].Loc, self.nodes[node_b].Loc))
		}
	}
	self.edges.Add(Edge{NodeA: node_a, NodeB: node_b, Length: length})
	self.edge_geoms.Add(geom)
	return int32(self.edges.Length() - 1)
}

// Adds the edge in both directions, the reverse edge gets the reversed geometry.
func (self *GraphBuilder) AddBidirectional(node_a, node_b int32, length float32, geom geo.CoordArray) {
	self.AddEdge(node_a, node_b, length, geom)
	var reversed geo.CoordArray
	if geom != nil {
		reversed = make(geo.CoordArray, len(geom))
		for i, c := range geom {
			reversed[len(geom)-1-i] = c
		}
	}
	self.AddEdge(node_b, node_a, length, reversed)
}

func (self *GraphBuilder) NodeCount() int {
	return self.nodes.Length()
}

func (self *GraphBuilder) Build() *GraphBase {
	return NewGraphBase(Array[Node](self.nodes), Array[Edge](self.edges), Array[geo.CoordArray](self.edge_geoms))
}
