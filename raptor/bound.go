package raptor

import (
	"context"
	"math"

	"github.com/ttpr0/go-transit/algorithm"
	"github.com/ttpr0/go-transit/geo"
	"github.com/ttpr0/go-transit/graph"
	"github.com/ttpr0/go-transit/network"
	. "github.com/ttpr0/go-transit/util"
)

// Precomputed lower bounds on transit travel time between regions.
type ITransitTimeTable interface {
	Region(loc geo.Coord) int64
	// every region with a point closer than radius meters to loc
	Regions(loc geo.Coord, radius float64) []int64
	// false if the table has no entry for the pair
	MinTransitTime(from, to int64) (int32, bool)
}

//*******************************************
// target bound
//*******************************************

// Lower bounds on the remaining cost from a street node to the search target.
//
// Walk bounds use the great circle distance and the shortest walk from any stop
// to the target. Time bounds compare against the best target found so far.
type TargetBound struct {
	g          graph.IGraph
	target     int32
	target_loc geo.Coord
	max_walk   float64
	min_egress float64
	walk_speed float64
	max_speed  float64
	slack      float64

	best_elapsed int32
	has_best     bool

	dir            graph.Direction
	table          ITransitTimeTable
	target_regions []int64
	// min table value from a region to any of target_regions
	region_bounds Dict[int64, int32]
	ride_bounds   Dict[int32, int32]
}

func NewTargetBound(g graph.IGraph, target int32, opts *Options, max_walk float64) *TargetBound {
	bound := &TargetBound{
		g:          g,
		target:     target,
		target_loc: g.GetNodeGeom(target),
		max_walk:   max_walk,
		min_egress: math.Inf(1),
		walk_speed: opts.WalkSpeed,
		max_speed:  math.Max(opts.MaxTransitSpeed, opts.WalkSpeed),
		slack:      opts.BoundSlack,
		dir:        opts.Direction,
		table:      opts.TransitTimes,
	}
	if bound.table != nil {
		bound.target_regions = bound.table.Regions(bound.target_loc, max_walk)
		bound.region_bounds = NewDict[int64, int32](100)
		bound.ride_bounds = NewDict[int32, int32](100)
	}
	return bound
}

type _EgressHandler struct {
	network    *network.Network
	min_egress float64
}

func (self *_EgressHandler) Prune(label *algorithm.Label) bool {
	return label.Dist >= self.min_egress
}
func (self *_EgressHandler) Visit(id int32, label *algorithm.Label) bool {
	if self.network.GetStopsAtNode(label.Node).Length() > 0 && label.Dist < self.min_egress {
		self.min_egress = label.Dist
	}
	return true
}

// Walks away from the target against the search direction to find the closest stop.
func (self *TargetBound) ComputeEgress(ctx context.Context, net *network.Network, dir graph.Direction, check_every int) error {
	spt := algorithm.NewSPT(self.g, algorithm.SPTOptions{
		Direction:  dir.Reverse(),
		MaxDist:    self.max_walk,
		Reluctance: 1,
		CheckEvery: check_every,
	})
	handler := &_EgressHandler{network: net, min_egress: math.Inf(1)}
	err := spt.Run(ctx, []algorithm.Source{{Node: self.target}}, handler)
	self.min_egress = handler.min_egress
	return err
}

func (self *TargetBound) MinEgress() float64 {
	return self.min_egress
}

// Lower bound on the walk distance still needed from node.
// In the final round no further trip can be taken, so the whole rest is walked.
func (self *TargetBound) RemainingWalk(node int32, final bool) float64 {
	dist := geo.Distance(self.g.GetNodeGeom(node), self.target_loc)
	if final {
		return dist
	}
	return math.Min(dist, self.min_egress)
}

// Lower bound on the seconds still needed from node with rides_left trips allowed.
//
// The region table only bounds a single remaining ride. Boarding and alighting
// may happen in any region within walking range, and walking straight to the
// target is always an alternative.
func (self *TargetBound) RemainingTime(node int32, rides_left int32) int32 {
	loc := self.g.GetNodeGeom(node)
	dist := geo.Distance(loc, self.target_loc)
	walk := int32(dist / self.walk_speed)
	if rides_left <= 0 {
		return walk
	}
	lower := int32(dist / self.max_speed)
	if self.table != nil && rides_left == 1 {
		lower = max(lower, min(walk, self._RideBound(node, loc)))
	}
	return lower
}

// Min table value between the regions around node and the target regions, max int32 if none.
func (self *TargetBound) _RideBound(node int32, loc geo.Coord) int32 {
	if t, ok := self.ride_bounds[node]; ok {
		return t
	}
	t := int32(math.MaxInt32)
	for _, region := range self.table.Regions(loc, self.max_walk) {
		t = min(t, self._RegionBound(region))
	}
	self.ride_bounds[node] = t
	return t
}

func (self *TargetBound) _RegionBound(region int64) int32 {
	if t, ok := self.region_bounds[region]; ok {
		return t
	}
	t := int32(math.MaxInt32)
	for _, target := range self.target_regions {
		from, to := region, target
		if self.dir == graph.BACKWARD {
			from, to = target, region
		}
		if seconds, ok := self.table.MinTransitTime(from, to); ok {
			t = min(t, seconds)
		}
	}
	self.region_bounds[region] = t
	return t
}

func (self *TargetBound) PruneWalk(dist float64, node int32, final bool) bool {
	return dist+self.RemainingWalk(node, final) > self.max_walk
}

// True if a state this far from the search start cannot beat the best target within the slack.
func (self *TargetBound) PruneTime(elapsed int32, node int32, rides_left int32) bool {
	if !self.has_best {
		return false
	}
	return float64(elapsed+self.RemainingTime(node, rides_left)) > float64(self.best_elapsed)*self.slack
}

func (self *TargetBound) ReportTarget(elapsed int32) {
	if !self.has_best || elapsed < self.best_elapsed {
		self.best_elapsed = elapsed
		self.has_best = true
	}
}

func (self *TargetBound) BestElapsed() (int32, bool) {
	return self.best_elapsed, self.has_best
}
