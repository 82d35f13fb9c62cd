package algorithm

import (
	"context"

	"github.com/ttpr0/go-transit/graph"
	. "github.com/ttpr0/go-transit/util"
)

//*******************************************
// labels and sources
//*******************************************

type Label struct {
	Node int32
	// absolute time, arrival when searching forward, departure when searching backward
	Time int32
	// accumulated walk distance in meters including the source's initial distance
	Dist float64
	// priority key, never decreases along a path
	Weight float64
	Source int32
	Pred   int32
	Edge   int32
}

// Start of the search with its initial cost.
type Source struct {
	Node   int32
	Time   int32
	Dist   float64
	Weight float64
}

type SPTOptions struct {
	Direction graph.Direction
	// labels with a larger walk distance are not created
	MaxDist float64
	// multiplies walk seconds when computing the priority key
	Reluctance float64
	// ctx is polled every CheckEvery settled labels, 0 disables polling
	CheckEvery int
}

type ISPTHandler interface {
	// Returns true if the label should be dropped before it is queued.
	Prune(label *Label) bool
	// Called once for every settled label, returning false stops the search.
	Visit(id int32, label *Label) bool
}

//*******************************************
// multi-source shortest path tree
//*******************************************

// Multi-criteria label setting search over the street graph.
//
// Every node keeps the settled labels that are not dominated on (time, distance),
// so sources with different start times and walk distances can coexist.
// An SPT is owned by a single query and kept alive while its paths are needed.
type SPT struct {
	g           graph.IGraph
	opts        SPTOptions
	labels      List[Label]
	node_labels Dict[int32, List[int32]]
	sources     List[Source]
	settled     int
}

func NewSPT(g graph.IGraph, opts SPTOptions) *SPT {
	if opts.Reluctance <= 0 {
		opts.Reluctance = 1
	}
	return &SPT{
		g:           g,
		opts:        opts,
		labels:      NewList[Label](100),
		node_labels: NewDict[int32, List[int32]](100),
	}
}

func (self *SPT) _Better(a, b *Label) bool {
	if self.opts.Direction == graph.FORWARD {
		return a.Time <= b.Time && a.Dist <= b.Dist
	}
	return a.Time >= b.Time && a.Dist <= b.Dist
}

func (self *SPT) _IsDominated(label *Label) bool {
	settled, ok := self.node_labels[label.Node]
	if !ok {
		return false
	}
	for _, id := range settled {
		if self._Better(&self.labels[id], label) {
			return true
		}
	}
	return false
}

func (self *SPT) Run(ctx context.Context, sources []Source, handler ISPTHandler) error {
	heap := NewPriorityQueue[int32, float64](100)
	explorer := self.g.GetGraphExplorer()

	for _, source := range sources {
		self.sources.Add(source)
		label := Label{
			Node:   source.Node,
			Time:   source.Time,
			Dist:   source.Dist,
			Weight: source.Weight,
			Source: int32(len(self.sources) - 1),
			Pred:   -1,
			Edge:   -1,
		}
		if label.Dist > self.opts.MaxDist || handler.Prune(&label) {
			continue
		}
		self.labels.Add(label)
		heap.Enqueue(int32(self.labels.Length()-1), label.Weight)
	}

	for {
		curr_id, ok := heap.Dequeue()
		if !ok {
			break
		}
		curr := self.labels[curr_id]
		if self._IsDominated(&curr) {
			continue
		}
		settled := self.node_labels[curr.Node]
		settled.Add(curr_id)
		self.node_labels[curr.Node] = settled
		self.settled += 1
		if !handler.Visit(curr_id, &curr) {
			break
		}
		if self.opts.CheckEvery > 0 && self.settled%self.opts.CheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		explorer.ForAdjacentEdges(curr.Node, self.opts.Direction, func(ref graph.EdgeRef) {
			weight := explorer.GetEdgeWeight(ref)
			if weight < 0 {
				return
			}
			new_dist := curr.Dist + explorer.GetEdgeLength(ref)
			if new_dist > self.opts.MaxDist {
				return
			}
			new_time := curr.Time + weight
			if self.opts.Direction == graph.BACKWARD {
				new_time = curr.Time - weight
			}
			label := Label{
				Node:   ref.OtherID,
				Time:   new_time,
				Dist:   new_dist,
				Weight: curr.Weight + float64(weight)*self.opts.Reluctance,
				Source: curr.Source,
				Pred:   curr_id,
				Edge:   ref.EdgeID,
			}
			if self._IsDominated(&label) || handler.Prune(&label) {
				return
			}
			self.labels.Add(label)
			heap.Enqueue(int32(self.labels.Length()-1), label.Weight)
		})
	}
	return nil
}

func (self *SPT) GetLabel(id int32) Label {
	return self.labels[id]
}

func (self *SPT) GetSource(id int32) Source {
	return self.sources[id]
}

func (self *SPT) SettledCount() int {
	return self.settled
}

func (self *SPT) GetDirection() graph.Direction {
	return self.opts.Direction
}

// Edges from the label's source to the label, in search order.
func (self *SPT) GetPath(id int32) Array[int32] {
	edges := NewList[int32](10)
	for curr := id; curr != -1; curr = self.labels[curr].Pred {
		if edge := self.labels[curr].Edge; edge != -1 {
			edges.Add(edge)
		}
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}
	return Array[int32](edges)
}

// Nodes from the label's source to the label, in search order.
func (self *SPT) GetPathNodes(id int32) Array[int32] {
	nodes := NewList[int32](10)
	for curr := id; curr != -1; curr = self.labels[curr].Pred {
		nodes.Add(self.labels[curr].Node)
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	return Array[int32](nodes)
}
