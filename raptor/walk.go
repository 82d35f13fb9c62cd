package raptor

import (
	"context"

	"github.com/ttpr0/go-transit/algorithm"
	. "github.com/ttpr0/go-transit/util"
)

//*******************************************
// walk subsearch
//*******************************************

// Turns settled street labels into states at stops and at the target.
type _WalkHandler struct {
	query *_Query
	round int32
	final bool
	// trips that may still be taken after this round
	rides_left int32
	spt        *algorithm.SPT
	sources    List[Handle]

	pruned_walk int
	pruned_time int
}

func (self *_WalkHandler) Prune(label *algorithm.Label) bool {
	q := self.query
	if q.bound.PruneWalk(label.Dist, label.Node, self.final) {
		self.pruned_walk += 1
		return true
	}
	if q.bound.PruneTime(q._Elapsed(label.Time), label.Node, self.rides_left) {
		self.pruned_time += 1
		return true
	}
	return false
}

func (self *_WalkHandler) Visit(id int32, label *algorithm.Label) bool {
	q := self.query
	parent_handle := self.sources[label.Source]
	parent := *q.arena.Get(parent_handle)
	walk := Some(WalkRef{Tree: self.spt, Label: id})

	if label.Node == q.target {
		state := SearchState{
			Time:         label.Time,
			WalkDistance: label.Dist,
			WaitTime:     parent.WaitTime,
			Boardings:    parent.Boardings,
			Stop:         -1,
			Node:         label.Node,
			Round:        self.round,
			Phase:        WALK_PHASE,
			Parent:       parent_handle,
			Walk:         walk,
		}
		if _, ok := q.targets.Insert(q.arena, q.relation, state); ok {
			q.bound.ReportTarget(q._Elapsed(label.Time))
		}
	}
	if self.final {
		return true
	}
	for _, stop := range q.net.GetStopsAtNode(label.Node) {
		if stop == parent.Stop {
			continue
		}
		state := SearchState{
			Time:         label.Time,
			WalkDistance: label.Dist,
			WaitTime:     parent.WaitTime,
			Boardings:    parent.Boardings,
			Stop:         stop,
			Node:         label.Node,
			Round:        self.round,
			Phase:        WALK_PHASE,
			Parent:       parent_handle,
			Walk:         walk,
		}
		if _, ok := q.frontiers[stop].Insert(q.arena, q.relation, state); ok {
			q._Mark(stop)
		}
	}
	return true
}

// Walks from all sources at once. In the final round only the target is of interest.
func (self *_Query) _WalkPhase(ctx context.Context, round int32, sources List[Handle], final bool) error {
	handler := &_WalkHandler{
		query:   self,
		round:   round,
		final:   final,
		sources: NewList[Handle](sources.Length()),

		rides_left: int32(self.opts.MaxTransfers+1) - round,
	}
	if final {
		handler.rides_left = 0
	}
	spt_sources := make([]algorithm.Source, 0, sources.Length())
	rejected := 0
	for _, h := range sources {
		state := self.arena.Get(h)
		if state.Evicted || state.Node < 0 {
			continue
		}
		if self.bound.PruneWalk(state.WalkDistance, state.Node, final) {
			rejected += 1
			continue
		}
		// no transfers at local-only stops, riders can only walk to the target from there
		if state.Stop >= 0 && self.net.GetStop(state.Stop).LocalOnly && self.bound.PruneWalk(state.WalkDistance, state.Node, true) {
			rejected += 1
			continue
		}
		handler.sources.Add(h)
		spt_sources = append(spt_sources, algorithm.Source{
			Node:   state.Node,
			Time:   state.Time,
			Dist:   state.WalkDistance,
			Weight: float64(self._Elapsed(state.Time)),
		})
	}
	if rejected > 0 {
		_PrunedCounter.WithLabelValues("source").Add(float64(rejected))
	}
	if len(spt_sources) == 0 {
		return nil
	}

	spt := algorithm.NewSPT(self.g, algorithm.SPTOptions{
		Direction:  self.dir,
		MaxDist:    self.max_walk,
		Reluctance: self.reluctance,
		CheckEvery: self.opts.CheckEvery,
	})
	handler.spt = spt
	err := spt.Run(ctx, spt_sources, handler)
	if handler.pruned_walk > 0 {
		_PrunedCounter.WithLabelValues("walk").Add(float64(handler.pruned_walk))
	}
	if handler.pruned_time > 0 {
		_PrunedCounter.WithLabelValues("time").Add(float64(handler.pruned_time))
	}
	return err
}
