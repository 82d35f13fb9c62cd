package raptor

import (
	"github.com/ttpr0/go-transit/graph"
	. "github.com/ttpr0/go-transit/util"
)

//*******************************************
// dominance relation
//*******************************************

type DominanceRelation struct {
	dir graph.Direction
	eps Epsilon
}

func NewDominanceRelation(dir graph.Direction, eps Epsilon) DominanceRelation {
	if eps.Distance < 1 {
		eps.Distance = 1
	}
	if eps.Wait < 1 {
		eps.Wait = 1
	}
	if eps.Time < 0 {
		eps.Time = 0
	}
	return DominanceRelation{dir: dir, eps: eps}
}

// True if a is at least as good as b on boardings, waiting, walking and time.
// States at different stops are never comparable.
func (self DominanceRelation) Dominates(a, b *SearchState) bool {
	if a.Stop != b.Stop {
		return false
	}
	if a.Boardings > b.Boardings {
		return false
	}
	if float64(a.WaitTime) > float64(b.WaitTime)*self.eps.Wait {
		return false
	}
	if a.WalkDistance > b.WalkDistance*self.eps.Distance {
		return false
	}
	if self.dir == graph.FORWARD {
		return a.Time <= b.Time+self.eps.Time
	}
	return a.Time >= b.Time-self.eps.Time
}

//*******************************************
// frontier
//*******************************************

// Mutually non-dominated states at one stop (or at the target).
type Frontier struct {
	states List[Handle]
}

// Adds state unless a member dominates it, evicting members it dominates.
func (self *Frontier) Insert(arena *Arena, relation DominanceRelation, state SearchState) (Handle, bool) {
	for _, h := range self.states {
		if relation.Dominates(arena.Get(h), &state) {
			return NO_STATE, false
		}
	}
	handle := arena.Add(state)
	added := arena.Get(handle)
	keep := self.states[:0]
	for _, h := range self.states {
		other := arena.Get(h)
		if relation.Dominates(added, other) {
			other.Evicted = true
			continue
		}
		keep = append(keep, h)
	}
	self.states = append(keep, handle)
	return handle, true
}

func (self *Frontier) States() List[Handle] {
	return self.states
}

func (self *Frontier) Length() int {
	return self.states.Length()
}

func (self *Frontier) Clear() {
	self.states.Clear()
}
