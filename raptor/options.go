package raptor

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ttpr0/go-transit/graph"
)

var ErrInvalidRequest = errors.New("invalid request")

// Slack applied before a state is considered dominated.
// Factors below 1 are treated as 1, i.e. no slack.
type Epsilon struct {
	Distance float64 `yaml:"distance" json:"distance"`
	Wait     float64 `yaml:"wait" json:"wait"`
	Time     int32   `yaml:"time" json:"time"`
}

func NoEpsilon() Epsilon {
	return Epsilon{Distance: 1, Wait: 1, Time: 0}
}

// Per-query search parameters, times in seconds and distances in meters.
type Options struct {
	// FORWARD searches depart-after, BACKWARD arrive-by
	Direction      graph.Direction `json:"-"`
	NumItineraries int             `yaml:"num-itineraries" json:"num_itineraries" validate:"gte=1,lte=50"`
	MaxTransfers   int             `yaml:"max-transfers" json:"max_transfers" validate:"gte=0,lte=10"`

	MaxWalkDistance float64 `yaml:"max-walk-distance" json:"max_walk_distance" validate:"gt=0"`
	WalkReluctance  float64 `yaml:"walk-reluctance" json:"walk_reluctance" validate:"gte=1"`
	// used for lower bounds on remaining walk time
	WalkSpeed float64 `yaml:"walk-speed" json:"walk_speed" validate:"gt=0"`
	// upper bound on any vehicle speed, used for lower bounds on remaining travel time
	MaxTransitSpeed float64 `yaml:"max-transit-speed" json:"max_transit_speed" validate:"gt=0"`

	BoardSlack    int32 `yaml:"board-slack" json:"board_slack" validate:"gte=0"`
	AlightSlack   int32 `yaml:"alight-slack" json:"alight_slack" validate:"gte=0"`
	TransferSlack int32 `yaml:"transfer-slack" json:"transfer_slack" validate:"gte=0"`

	// overall budget across widening attempts, <= 0 is unbounded
	Timeout time.Duration `yaml:"timeout" json:"-"`
	// ceiling on the widened walk distance relative to MaxWalkDistance
	MaxWalkMultiple float64 `yaml:"max-walk-multiple" json:"max_walk_multiple" validate:"gte=1"`
	// widening stops once the best elapsed time improves by less than this
	MinImprovement int32 `yaml:"min-improvement" json:"min_improvement" validate:"gte=0"`

	Epsilon Epsilon `yaml:"epsilon" json:"epsilon"`
	// states slower than BoundSlack times the best known target are pruned
	BoundSlack float64 `yaml:"bound-slack" json:"bound_slack" validate:"gte=1"`
	// optional per-region lower bounds, nil disables that pruning
	TransitTimes ITransitTimeTable `yaml:"-" json:"-"`

	// settled walk labels between cancellation checks
	CheckEvery int `yaml:"check-every" json:"check_every" validate:"gte=0"`
}

func DefaultOptions() Options {
	return Options{
		Direction:       graph.FORWARD,
		NumItineraries:  3,
		MaxTransfers:    4,
		MaxWalkDistance: 800,
		WalkReluctance:  2,
		WalkSpeed:       1.33,
		MaxTransitSpeed: 40,
		BoardSlack:      0,
		AlightSlack:     0,
		TransferSlack:   120,
		Timeout:         0,
		MaxWalkMultiple: 8,
		MinImprovement:  60,
		Epsilon:         Epsilon{Distance: 1.1, Wait: 1, Time: 0},
		BoundSlack:      1.5,
		CheckEvery:      1000,
	}
}

var _validate = validator.New()

func (self *Options) Validate() error {
	if err := _validate.Struct(self); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, err.Error())
	}
	return nil
}

// Slack between arriving at a stop and the trip caught there in the given round.
//
// Later rounds already paid the exit slack when leaving the previous trip.
func (self *Options) EnterSlack(round int32) int32 {
	var slack int32
	if self.Direction == graph.FORWARD {
		slack = self.BoardSlack
		if round > 1 {
			slack = self.TransferSlack - self.AlightSlack
		}
	} else {
		slack = self.AlightSlack
		if round > 1 {
			slack = self.TransferSlack - self.BoardSlack
		}
	}
	if slack < 0 {
		return 0
	}
	return slack
}

// Slack added when leaving a trip.
func (self *Options) ExitSlack() int32 {
	if self.Direction == graph.FORWARD {
		return self.AlightSlack
	}
	return self.BoardSlack
}
