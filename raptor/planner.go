package raptor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ttpr0/go-transit/geo"
	"github.com/ttpr0/go-transit/graph"
	"github.com/ttpr0/go-transit/network"
	. "github.com/ttpr0/go-transit/util"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

const (
	NOTE_NO_PATH   = "no itinerary found"
	NOTE_TIMEOUT   = "search time budget exceeded"
	NOTE_CANCELLED = "search cancelled"
)

// From and To are street nodes, Time is the departure (FORWARD) or arrival (BACKWARD) time.
type Request struct {
	From int32
	To   int32
	Time time.Time
	Options
}

type Result struct {
	ID          string      `json:"id"`
	Itineraries []Itinerary `json:"itineraries"`
	Note        string      `json:"note,omitempty"`
	Attempts    int         `json:"attempts"`
	Rounds      int         `json:"rounds"`
}

// Target state of a finished attempt, kept across widening attempts.
type _Candidate struct {
	state     SearchState
	itinerary Itinerary
}

//*******************************************
// planner
//*******************************************

// Plans journeys on one immutable network snapshot. Safe for concurrent use.
type Planner struct {
	net  *network.Network
	g    graph.IGraph
	days *network.ServiceDayCache
}

func NewPlanner(net *network.Network, g graph.IGraph, days *network.ServiceDayCache) *Planner {
	if days == nil {
		days = network.NewServiceDayCache(net, 0)
	}
	return &Planner{
		net:  net,
		g:    g,
		days: days,
	}
}

func (self *Planner) Network() *network.Network {
	return self.net
}

func (self *Planner) Graph() graph.IGraph {
	return self.g
}

// Closest street node to a location.
func (self *Planner) ResolveLocation(loc geo.Coord) (int32, bool) {
	return self.g.GetClosestNode(loc)
}

// Street node a stop is connected to.
func (self *Planner) ResolveStop(id string) (int32, bool) {
	stop, ok := self.net.GetStopByID(id)
	if !ok {
		return -1, false
	}
	node := self.net.GetStop(stop).Node
	return node, node >= 0
}

// Searches itineraries for req.
//
// Finding no itinerary is not an error, the result then carries a note.
// If ctx ends during the search the itineraries found so far are returned with ctx.Err().
func (self *Planner) Plan(ctx context.Context, req Request) (Result, error) {
	begin := time.Now()
	result := Result{ID: uuid.NewString(), Itineraries: []Itinerary{}}
	if err := req.Options.Validate(); err != nil {
		_QueryCounter.WithLabelValues("invalid").Inc()
		return result, err
	}
	if !self.g.IsNode(req.From) || !self.g.IsNode(req.To) {
		_QueryCounter.WithLabelValues("invalid").Inc()
		return result, fmt.Errorf("%w: unknown street node", ErrInvalidRequest)
	}

	query := _NewQuery(result.ID, self.net, self.g, self.days.Get(req.Time), &req)
	note, err := query._Search(ctx)
	result.Itineraries = query._Itineraries()
	result.Attempts = query.attempts
	result.Rounds = query.rounds
	result.Note = note
	if len(result.Itineraries) == 0 && note == "" {
		result.Note = NOTE_NO_PATH
	}

	_QueryDuration.Observe(time.Since(begin).Seconds())
	switch {
	case err != nil:
		_QueryCounter.WithLabelValues("cancelled").Inc()
	case len(result.Itineraries) == 0:
		_QueryCounter.WithLabelValues("empty").Inc()
	default:
		_QueryCounter.WithLabelValues("found").Inc()
	}
	slog.Debug("plan finished", "query", result.ID, "itineraries", len(result.Itineraries), "attempts", result.Attempts, "rounds", result.Rounds, "took", time.Since(begin))
	return result, err
}

// Runs requests concurrently with at most limit in flight, limit <= 0 is unlimited.
//
// The first failing request cancels the others.
func (self *Planner) PlanMany(ctx context.Context, reqs []Request, limit int) ([]Result, error) {
	results := make([]Result, len(reqs))
	group, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		group.SetLimit(limit)
	}
	for i, req := range reqs {
		group.Go(func() error {
			result, err := self.Plan(ctx, req)
			results[i] = result
			return err
		})
	}
	err := group.Wait()
	return results, err
}

//*******************************************
// search controller
//*******************************************

// Repeats the search with doubled walk limits until enough itineraries are found,
// the best one stops improving, the time budget runs out or the walk ceiling is hit.
func (self *_Query) _Search(ctx context.Context) (string, error) {
	begin := time.Now()
	max_walk := self.opts.MaxWalkDistance
	reluctance := self.opts.WalkReluctance
	ceiling := max_walk * self.opts.MaxWalkMultiple

	var prev_best int32
	has_prev := false
	for {
		self.attempts += 1
		err := self._RunAttempt(ctx, max_walk, reluctance)
		self._CollectTargets()
		if err != nil {
			return NOTE_CANCELLED, err
		}

		if self.candidates.Length() >= self.opts.NumItineraries {
			return "", nil
		}
		best, has_best := self._BestElapsed()
		if has_prev && has_best && prev_best-best < self.opts.MinImprovement {
			return "", nil
		}
		if self.opts.Timeout > 0 && has_best && time.Since(begin) > self.opts.Timeout {
			return NOTE_TIMEOUT, nil
		}
		if max_walk*2 > ceiling {
			return "", nil
		}
		prev_best, has_prev = best, has_best
		max_walk *= 2
		reluctance *= 2
		_WideningCounter.Inc()
		slog.Debug("widening search", "query", self.id, "max_walk", max_walk, "found", self.candidates.Length())
	}
}

// Moves the targets of the current attempt into the candidate set.
func (self *_Query) _CollectTargets() {
	for _, h := range self.targets.States() {
		state := *self.arena.Get(h)
		dominated := false
		for i := range self.candidates {
			if self.relation.Dominates(&self.candidates[i].state, &state) {
				dominated = true
				break
			}
		}
		if dominated {
			continue
		}
		itinerary, err := self.builder.Build(h)
		if err != nil {
			_MalformedCounter.Inc()
			slog.Warn("dropping itinerary", "query", self.id, "err", err.Error())
			continue
		}
		state.Parent = NO_STATE
		state.Ride = None[Ride]()
		state.Walk = None[WalkRef]()
		keep := self.candidates[:0]
		for _, c := range self.candidates {
			if !self.relation.Dominates(&state, &c.state) {
				keep = append(keep, c)
			}
		}
		self.candidates = append(keep, _Candidate{state: state, itinerary: itinerary})
	}
}

func (self *_Query) _BestElapsed() (int32, bool) {
	if self.candidates.Length() == 0 {
		return 0, false
	}
	best := self._Elapsed(self.candidates[0].state.Time)
	for _, c := range self.candidates[1:] {
		if elapsed := self._Elapsed(c.state.Time); elapsed < best {
			best = elapsed
		}
	}
	return best, true
}

// Sorted by arrival (forward) or latest departure (backward), then boardings and walking.
func (self *_Query) _Itineraries() []Itinerary {
	candidates := slices.Clone(self.candidates)
	slices.SortStableFunc(candidates, func(a, b _Candidate) int {
		if a.state.Time != b.state.Time {
			if self.dir == graph.FORWARD {
				return int(a.state.Time - b.state.Time)
			}
			return int(b.state.Time - a.state.Time)
		}
		if a.state.Boardings != b.state.Boardings {
			return int(a.state.Boardings - b.state.Boardings)
		}
		if a.state.WalkDistance < b.state.WalkDistance {
			return -1
		}
		if a.state.WalkDistance > b.state.WalkDistance {
			return 1
		}
		return int(a.state.WaitTime - b.state.WaitTime)
	})
	count := min(len(candidates), self.opts.NumItineraries)
	itineraries := make([]Itinerary, 0, count)
	for _, c := range candidates[:count] {
		itineraries = append(itineraries, c.itinerary)
	}
	return itineraries
}
