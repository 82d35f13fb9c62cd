package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ttpr0/go-transit/geo"
	"github.com/ttpr0/go-transit/graph"
	"github.com/ttpr0/go-transit/network"
	. "github.com/ttpr0/go-transit/util"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

//*******************************************
// gtfs parser
//*******************************************

type _TripBuild struct {
	trip       network.Trip
	stops      Array[int32]
	can_board  Array[bool]
	can_alight Array[bool]
}

// Builds a network from a gtfs feed directory.
//
// Stops are attached to the closest street node of g within max_snap meters,
// g may be nil to leave all stops unconnected. Trips with the same route, stop sequence
// and pickup/drop-off rules form one route, overtaking trips are split into separate patterns.
func ParseGtfs(gtfs_path string, g graph.IGraph, max_snap float64) (*network.Network, error) {
	stops, stop_ids, err := _ReadStops(gtfs_path, g, max_snap)
	if err != nil {
		return nil, err
	}
	if err := _ReadLocalOnly(gtfs_path, stops, stop_ids); err != nil {
		return nil, err
	}
	services, service_ids, err := _ReadServices(gtfs_path)
	if err != nil {
		return nil, err
	}
	route_names := NewDict[string, string](100)
	routes_iter, err := ReadCSVFromFile[GTFSRoute](filepath.Join(gtfs_path, "routes.txt"), ',')
	if err != nil {
		return nil, err
	}
	for route := range routes_iter {
		name := route.ShortName
		if name == "" {
			name = route.LongName
		}
		route_names[route.RouteID] = name
	}

	trips, err := _ReadTrips(gtfs_path, stop_ids, service_ids)
	if err != nil {
		return nil, err
	}

	// group into routes by sequence, keeping feed order of first appearance
	groups := NewDict[string, int](100)
	grouped := NewList[List[*_TripBuild]](100)
	route_ids := NewList[string](100)
	for _, trip_id := range trips.order {
		build := trips.builds[trip_id]
		if build.stops.Length() < 2 {
			slog.Warn("skipping trip with less than two stops", "trip", trip_id)
			continue
		}
		key := _SequenceKey(trips.routes[trip_id], build.stops, build.can_board, build.can_alight)
		index, ok := groups[key]
		if !ok {
			index = grouped.Length()
			groups[key] = index
			grouped.Add(NewList[*_TripBuild](10))
			route_ids.Add(trips.routes[trip_id])
		}
		grouped[index].Add(build)
	}

	routes := NewArray[*network.Route](grouped.Length())
	for i, group := range grouped {
		first := group[0]
		patterns := _SplitPatterns(group)
		route_patterns := NewArray[network.TripPattern](patterns.Length())
		for j, pattern := range patterns {
			route_patterns[j] = network.NewTripPattern(pattern, first.can_board, first.can_alight)
		}
		routes[i] = network.NewRoute(route_ids[i], route_names[route_ids[i]], first.stops, route_patterns)
	}
	slog.Info(fmt.Sprintf("parsed gtfs feed with %v stops, %v routes and %v trips", stops.Length(), routes.Length(), len(trips.order)))
	return network.NewNetwork(stops, routes, services)
}

func _ReadStops(gtfs_path string, g graph.IGraph, max_snap float64) (Array[network.Stop], Dict[string, int32], error) {
	iter, err := ReadCSVFromFile[GTFSStop](filepath.Join(gtfs_path, "stops.txt"), ',')
	if err != nil {
		return nil, nil, err
	}
	stops := NewList[network.Stop](1000)
	stop_ids := NewDict[string, int32](1000)
	for row := range iter {
		// stations and entrances are not served by trips
		if row.LocationType != 0 {
			continue
		}
		loc := geo.Coord{float32(row.Lon), float32(row.Lat)}
		node := int32(-1)
		if g != nil {
			if closest, ok := g.GetClosestNode(loc); ok && geo.Distance(loc, g.GetNodeGeom(closest)) <= max_snap {
				node = closest
			}
		}
		if node == -1 {
			slog.Debug("stop not connected to street graph", "stop", row.StopID)
		}
		stop_ids[row.StopID] = int32(stops.Length())
		stops.Add(network.Stop{ID: row.StopID, Name: row.Name, Loc: loc, Node: node})
	}
	return Array[network.Stop](stops), stop_ids, nil
}

// transfer_type 3 means no transfers are possible, a row with the same
// from and to stop marks that stop as local-only. transfers.txt is optional.
func _ReadLocalOnly(gtfs_path string, stops Array[network.Stop], stop_ids Dict[string, int32]) error {
	iter, err := ReadCSVFromFile[GTFSTransfer](filepath.Join(gtfs_path, "transfers.txt"), ',')
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for row := range iter {
		if row.TransferType != 3 || row.FromStopID != row.ToStopID {
			continue
		}
		stop, ok := stop_ids[row.FromStopID]
		if !ok {
			slog.Debug("transfer refers to unknown stop", "stop", row.FromStopID)
			continue
		}
		stops[stop].LocalOnly = true
	}
	return nil
}

// calendar.txt and calendar_dates.txt are each optional, but one of them must exist.
func _ReadServices(gtfs_path string) (Array[network.Service], Dict[string, int32], error) {
	services := NewList[network.Service](100)
	service_ids := NewDict[string, int32](100)
	get_service := func(id string) *network.Service {
		index, ok := service_ids[id]
		if !ok {
			index = int32(services.Length())
			service_ids[id] = index
			services.Add(network.Service{ID: id})
		}
		return &services[index]
	}

	found := false
	calendar, err := ReadCSVFromFile[GTFSCalendar](filepath.Join(gtfs_path, "calendar.txt"), ',')
	if err == nil {
		found = true
		for row := range calendar {
			start, err := _ParseGTFSDate(row.StartDate)
			if err != nil {
				return nil, nil, fmt.Errorf("calendar of service %s: %w", row.ServiceID, err)
			}
			end, err := _ParseGTFSDate(row.EndDate)
			if err != nil {
				return nil, nil, fmt.Errorf("calendar of service %s: %w", row.ServiceID, err)
			}
			service := get_service(row.ServiceID)
			service.Weekdays = _WeekdayMask(row)
			service.Start = start
			service.End = end
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, nil, err
	}

	dates, err := ReadCSVFromFile[GTFSCalendarDate](filepath.Join(gtfs_path, "calendar_dates.txt"), ',')
	if err == nil {
		found = true
		for row := range dates {
			date, err := _ParseGTFSDate(row.Date)
			if err != nil {
				return nil, nil, fmt.Errorf("calendar date of service %s: %w", row.ServiceID, err)
			}
			service := get_service(row.ServiceID)
			switch row.ExceptionType {
			case 1:
				service.Added.Add(date)
			case 2:
				service.Removed.Add(date)
			}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, nil, err
	}

	if !found {
		return nil, nil, fmt.Errorf("%w: neither calendar.txt nor calendar_dates.txt found", network.ErrInvalidNetwork)
	}
	return Array[network.Service](services), service_ids, nil
}

type _Trips struct {
	order  List[string]
	routes Dict[string, string]
	builds Dict[string, *_TripBuild]
}

func _ReadTrips(gtfs_path string, stop_ids Dict[string, int32], service_ids Dict[string, int32]) (_Trips, error) {
	trips := _Trips{
		order:  NewList[string](1000),
		routes: NewDict[string, string](1000),
		builds: NewDict[string, *_TripBuild](1000),
	}
	trip_iter, err := ReadCSVFromFile[GTFSTrip](filepath.Join(gtfs_path, "trips.txt"), ',')
	if err != nil {
		return trips, err
	}
	for row := range trip_iter {
		service, ok := service_ids[row.ServiceID]
		if !ok {
			slog.Warn("skipping trip with unknown service", "trip", row.TripID, "service", row.ServiceID)
			continue
		}
		trips.order.Add(row.TripID)
		trips.routes[row.TripID] = row.RouteID
		trips.builds[row.TripID] = &_TripBuild{trip: network.Trip{ID: row.TripID, Service: service}}
	}

	stop_time_iter, err := ReadCSVFromFile[GTFSStopTime](filepath.Join(gtfs_path, "stop_times.txt"), ',')
	if err != nil {
		return trips, err
	}
	rows := NewDict[string, List[GTFSStopTime]](1000)
	for row := range stop_time_iter {
		if !trips.builds.ContainsKey(row.TripID) {
			continue
		}
		list := rows[row.TripID]
		list.Add(row)
		rows[row.TripID] = list
	}

	for trip_id, list := range rows {
		slices.SortStableFunc(list, func(a, b GTFSStopTime) int {
			return a.Sequence - b.Sequence
		})
		build := trips.builds[trip_id]
		stop_times := NewList[network.StopTime](list.Length())
		stops := NewList[int32](list.Length())
		can_board := NewList[bool](list.Length())
		can_alight := NewList[bool](list.Length())
		valid := true
		for _, row := range list {
			stop, ok := stop_ids[row.StopID]
			if !ok {
				slog.Warn("skipping trip with unknown stop", "trip", trip_id, "stop", row.StopID)
				valid = false
				break
			}
			arrival, err := _ParseGTFSTime(row.ArrivalTime)
			if err != nil {
				valid = false
				break
			}
			departure, err := _ParseGTFSTime(row.DepartureTime)
			if err != nil {
				departure = arrival
			}
			stops.Add(stop)
			stop_times.Add(network.StopTime{Arrival: arrival, Departure: departure})
			can_board.Add(row.PickupType != 1)
			can_alight.Add(row.DropOffType != 1)
		}
		if !valid {
			build.stops = nil
			continue
		}
		build.trip.StopTimes = Array[network.StopTime](stop_times)
		build.stops = Array[int32](stops)
		build.can_board = Array[bool](can_board)
		build.can_alight = Array[bool](can_alight)
	}
	return trips, nil
}

// Splits trips into patterns where no trip overtakes another.
func _SplitPatterns(group List[*_TripBuild]) List[Array[network.Trip]] {
	sorted := slices.Clone(group)
	slices.SortStableFunc(sorted, func(a, b *_TripBuild) int {
		return int(a.trip.StopTimes[0].Departure - b.trip.StopTimes[0].Departure)
	})
	patterns := NewList[List[network.Trip]](1)
	for _, build := range sorted {
		placed := false
		for i := range patterns {
			last := patterns[i][patterns[i].Length()-1]
			if _FollowsTrip(last, build.trip) {
				patterns[i].Add(build.trip)
				placed = true
				break
			}
		}
		if !placed {
			pattern := NewList[network.Trip](10)
			pattern.Add(build.trip)
			patterns.Add(pattern)
		}
	}
	result := NewList[Array[network.Trip]](patterns.Length())
	for _, pattern := range patterns {
		result.Add(Array[network.Trip](pattern))
	}
	return result
}

func _FollowsTrip(prev, next network.Trip) bool {
	for i := range next.StopTimes {
		if next.StopTimes[i].Arrival < prev.StopTimes[i].Arrival || next.StopTimes[i].Departure < prev.StopTimes[i].Departure {
			return false
		}
	}
	return true
}
