package network

import (
	"errors"
	"fmt"
	"time"

	"github.com/ttpr0/go-transit/geo"
	. "github.com/ttpr0/go-transit/util"
)

var ErrInvalidNetwork = errors.New("invalid network")

//*******************************************
// stops
//*******************************************

type Stop struct {
	ID   string
	Name string
	Loc  geo.Coord
	// street graph node used to enter and leave the stop, -1 if unconnected
	Node int32
	// riders may not transfer here
	LocalOnly bool
}

// A route serving a stop at one position of its stop sequence.
type RouteStop struct {
	Route     int32
	StopIndex int32
}

//*******************************************
// network
//*******************************************

// Immutable, query-independent transit network.
//
// Nothing is mutated after NewNetwork returns, so one instance can be read
// by any number of concurrent queries.
type Network struct {
	stops       Array[Stop]
	routes      Array[*Route]
	services    Array[Service]
	stop_routes Array[Array[RouteStop]]
	stop_ids    Dict[string, int32]
	node_stops  Dict[int32, List[int32]]
}

func NewNetwork(stops Array[Stop], routes Array[*Route], services Array[Service]) (*Network, error) {
	stop_ids := NewDict[string, int32](stops.Length())
	node_stops := NewDict[int32, List[int32]](stops.Length())
	for i, stop := range stops {
		if stop.ID != "" {
			if stop_ids.ContainsKey(stop.ID) {
				return nil, fmt.Errorf("%w: duplicate stop id %q", ErrInvalidNetwork, stop.ID)
			}
			stop_ids[stop.ID] = int32(i)
		}
		if stop.Node >= 0 {
			list := node_stops[stop.Node]
			list.Add(int32(i))
			node_stops[stop.Node] = list
		}
	}

	stop_routes := NewArray[List[RouteStop]](stops.Length())
	for r, route := range routes {
		if route == nil {
			return nil, fmt.Errorf("%w: route %d is nil", ErrInvalidNetwork, r)
		}
		for i := 0; i < route.StopCount(); i++ {
			stop := route.GetStop(int32(i))
			if stop < 0 || int(stop) >= stops.Length() {
				return nil, fmt.Errorf("%w: route %q references unknown stop %d", ErrInvalidNetwork, route.ID, stop)
			}
			stop_routes[stop].Add(RouteStop{Route: int32(r), StopIndex: int32(i)})
		}
	}
	index := NewArray[Array[RouteStop]](stops.Length())
	for i := range stop_routes {
		index[i] = Array[RouteStop](stop_routes[i])
	}

	return &Network{
		stops:       stops,
		routes:      routes,
		services:    services,
		stop_routes: index,
		stop_ids:    stop_ids,
		node_stops:  node_stops,
	}, nil
}

func (self *Network) StopCount() int {
	return self.stops.Length()
}
func (self *Network) GetStop(stop int32) Stop {
	return self.stops[stop]
}
func (self *Network) IsStop(stop int32) bool {
	return stop >= 0 && int(stop) < self.stops.Length()
}
func (self *Network) GetStopByID(id string) (int32, bool) {
	stop, ok := self.stop_ids[id]
	return stop, ok
}

// Stops attached to a street node.
func (self *Network) GetStopsAtNode(node int32) List[int32] {
	return self.node_stops[node]
}

func (self *Network) RouteCount() int {
	return self.routes.Length()
}
func (self *Network) GetRoute(route int32) *Route {
	return self.routes[route]
}
func (self *Network) GetRoutesAtStop(stop int32) Array[RouteStop] {
	return self.stop_routes[stop]
}

func (self *Network) ServiceCount() int {
	return self.services.Length()
}
func (self *Network) GetService(service int32) Service {
	return self.services[service]
}

// Builds a fresh query-scoped set of services active on date.
func (self *Network) GetServiceDays(date time.Time) *ServiceDays {
	return NewServiceDays(self.services, date)
}
