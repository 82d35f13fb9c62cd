package graph

import (
	"github.com/ttpr0/go-transit/geo"
	. "github.com/ttpr0/go-transit/util"
)

//*******************************************
// graph base
//*******************************************

type GraphBase struct {
	nodes      Array[Node]
	edges      Array[Edge]
	edge_geoms Array[geo.CoordArray]
	topology   _AdjacencyArray
}

// Edge geometries are optional, a nil entry falls back to the straight line between the end nodes.
func NewGraphBase(nodes Array[Node], edges Array[Edge], edge_geoms Array[geo.CoordArray]) *GraphBase {
	if edge_geoms == nil {
		edge_geoms = NewArray[geo.CoordArray](edges.Length())
	}
	return &GraphBase{
		nodes:      nodes,
		edges:      edges,
		edge_geoms: edge_geoms,
		topology:   _BuildTopology(nodes, edges),
	}
}

func (self *GraphBase) NodeCount() int {
	return len(self.nodes)
}
func (self *GraphBase) EdgeCount() int {
	return len(self.edges)
}
func (self *GraphBase) IsNode(node int32) bool {
	return node >= 0 && node < int32(len(self.nodes))
}
func (self *GraphBase) GetNode(node int32) Node {
	return self.nodes[node]
}
func (self *GraphBase) GetEdge(edge int32) Edge {
	return self.edges[edge]
}
func (self *GraphBase) GetEdgeGeom(edge int32) geo.CoordArray {
	geom := self.edge_geoms[edge]
	if geom == nil {
		e := self.GetEdge(edge)
		geom = geo.CoordArray{self.nodes[e.NodeA].Loc, self.nodes[e.NodeB].Loc}
	}
	return geom
}

//*******************************************
// adjacency array
//*******************************************

// Compressed adjacency, edges of node n are entries[start[n]:start[n+1]].
type _AdjacencyArray struct {
	fwd_start   Array[int32]
	fwd_entries Array[EdgeRef]
	bwd_start   Array[int32]
	bwd_entries Array[EdgeRef]
}

func _BuildTopology(nodes Array[Node], edges Array[Edge]) _AdjacencyArray {
	node_count := nodes.Length()
	fwd_start := NewArray[int32](node_count + 1)
	bwd_start := NewArray[int32](node_count + 1)
	for _, edge := range edges {
		fwd_start[edge.NodeA+1] += 1
		bwd_start[edge.NodeB+1] += 1
	}
	for i := 1; i <= node_count; i++ {
		fwd_start[i] += fwd_start[i-1]
		bwd_start[i] += bwd_start[i-1]
	}
	fwd_entries := NewArray[EdgeRef](edges.Length())
	bwd_entries := NewArray[EdgeRef](edges.Length())
	fwd_fill := NewArray[int32](node_count)
	bwd_fill := NewArray[int32](node_count)
	for id, edge := range edges {
		fwd_entries[fwd_start[edge.NodeA]+fwd_fill[edge.NodeA]] = EdgeRef{EdgeID: int32(id), OtherID: edge.NodeB}
		fwd_fill[edge.NodeA] += 1
		bwd_entries[bwd_start[edge.NodeB]+bwd_fill[edge.NodeB]] = EdgeRef{EdgeID: int32(id), OtherID: edge.NodeA}
		bwd_fill[edge.NodeB] += 1
	}
	return _AdjacencyArray{
		fwd_start:   fwd_start,
		fwd_entries: fwd_entries,
		bwd_start:   bwd_start,
		bwd_entries: bwd_entries,
	}
}

func (self *_AdjacencyArray) GetAdjacency(node int32, dir Direction) []EdgeRef {
	if dir == FORWARD {
		return self.fwd_entries[self.fwd_start[node]:self.fwd_start[node+1]]
	}
	return self.bwd_entries[self.bwd_start[node]:self.bwd_start[node+1]]
}

func (self *_AdjacencyArray) GetDegree(node int32, dir Direction) int {
	if dir == FORWARD {
		return int(self.fwd_start[node+1] - self.fwd_start[node])
	}
	return int(self.bwd_start[node+1] - self.bwd_start[node])
}
