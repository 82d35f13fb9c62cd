package parser

import (
	"github.com/ttpr0/go-transit/geo"
	. "github.com/ttpr0/go-transit/util"
)

//*******************************************
// osm parser structs
//*******************************************

type TempNode struct {
	Point geo.Coord
	Count int32
}
type OSMNode struct {
	Point geo.Coord
}
type OSMEdge struct {
	NodeA  int
	NodeB  int
	Oneway bool
	Nodes  List[geo.Coord]
}

//*******************************************
// gtfs rows
//*******************************************

type GTFSStop struct {
	StopID       string  `csv:"stop_id"`
	Name         string  `csv:"stop_name"`
	Lat          float64 `csv:"stop_lat"`
	Lon          float64 `csv:"stop_lon"`
	LocationType int     `csv:"location_type"`
}

type GTFSRoute struct {
	RouteID   string `csv:"route_id"`
	ShortName string `csv:"route_short_name"`
	LongName  string `csv:"route_long_name"`
}

type GTFSTrip struct {
	RouteID   string `csv:"route_id"`
	ServiceID string `csv:"service_id"`
	TripID    string `csv:"trip_id"`
}

type GTFSStopTime struct {
	TripID        string `csv:"trip_id"`
	ArrivalTime   string `csv:"arrival_time"`
	DepartureTime string `csv:"departure_time"`
	StopID        string `csv:"stop_id"`
	Sequence      int    `csv:"stop_sequence"`
	PickupType    int    `csv:"pickup_type"`
	DropOffType   int    `csv:"drop_off_type"`
}

type GTFSTransfer struct {
	FromStopID   string `csv:"from_stop_id"`
	ToStopID     string `csv:"to_stop_id"`
	TransferType int    `csv:"transfer_type"`
}

type GTFSCalendar struct {
	ServiceID string `csv:"service_id"`
	Monday    int    `csv:"monday"`
	Tuesday   int    `csv:"tuesday"`
	Wednesday int    `csv:"wednesday"`
	Thursday  int    `csv:"thursday"`
	Friday    int    `csv:"friday"`
	Saturday  int    `csv:"saturday"`
	Sunday    int    `csv:"sunday"`
	StartDate string `csv:"start_date"`
	EndDate   string `csv:"end_date"`
}

type GTFSCalendarDate struct {
	ServiceID     string `csv:"service_id"`
	Date          string `csv:"date"`
	ExceptionType int    `csv:"exception_type"`
}
