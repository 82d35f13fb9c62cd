package raptor

import (
	"fmt"

	"github.com/ttpr0/go-transit/algorithm"
	. "github.com/ttpr0/go-transit/util"
)

//*******************************************
// search states
//*******************************************

// Phase within a round, states of the transit phase precede those of the walk phase.
type Phase byte

const (
	TRANSIT_PHASE Phase = 0
	WALK_PHASE    Phase = 1
)

// Trip taken to reach a state. Indices are in search order,
// FromIndex is where the search entered the trip.
type Ride struct {
	Route     int32
	Pattern   int32
	Trip      int32
	FromIndex int32
	ToIndex   int32
}

// Street path that led to a state.
type WalkRef struct {
	Tree  *algorithm.SPT
	Label int32
}

type SearchState struct {
	// arrival time for depart-after, departure time for arrive-by
	Time         int32
	WalkDistance float64
	WaitTime     int32
	Boardings    int32
	// -1 for states off the transit network (origin, target)
	Stop  int32
	Node  int32
	Round int32
	Phase Phase

	Parent  Handle
	Ride    Optional[Ride]
	Walk    Optional[WalkRef]
	Evicted bool
}

func (self *SearchState) _Order() int32 {
	return 2*self.Round + int32(self.Phase)
}

//*******************************************
// arena
//*******************************************

// Handle into an Arena, only valid for the generation it was created in.
type Handle struct {
	Index int32
	Gen   int32
}

var NO_STATE = Handle{Index: -1}

func (self Handle) IsValid() bool {
	return self.Index >= 0
}

// Owns all states of one widening attempt. Parents always precede their children,
// so parent chains can never form a cycle.
type Arena struct {
	states List[SearchState]
	gen    int32
}

func NewArena(capacity int) *Arena {
	return &Arena{
		states: NewList[SearchState](capacity),
	}
}

func (self *Arena) Add(state SearchState) Handle {
	if state.Parent.IsValid() {
		parent := self.Get(state.Parent)
		if parent._Order() >= state._Order() {
			panic(fmt.Sprintf("parent of round %d/%d is not older than child of round %d/%d", parent.Round, parent.Phase, state.Round, state.Phase))
		}
	}
	self.states.Add(state)
	return Handle{Index: int32(self.states.Length() - 1), Gen: self.gen}
}

func (self *Arena) Get(handle Handle) *SearchState {
	if handle.Gen != self.gen || handle.Index < 0 || int(handle.Index) >= self.states.Length() {
		panic(fmt.Sprintf("stale or invalid state handle %+v (generation %d)", handle, self.gen))
	}
	return &self.states[handle.Index]
}

func (self *Arena) Length() int {
	return self.states.Length()
}

// Drops all states and invalidates outstanding handles, keeping the memory.
func (self *Arena) Reset() {
	self.states.Clear()
	self.gen += 1
}

func (self *Arena) Generation() int32 {
	return self.gen
}
