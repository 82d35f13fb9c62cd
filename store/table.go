package store

import (
	"math"

	"github.com/ttpr0/go-transit/geo"
	"github.com/ttpr0/go-transit/network"
	. "github.com/ttpr0/go-transit/util"
)

// Minimum transit travel time between cells of a lon/lat grid.
type TransitTimeTable struct {
	cell_size float64
	times     Dict[[2]int64, int32]
}

func NewTransitTimeTable(cell_size float64) *TransitTimeTable {
	return &TransitTimeTable{
		cell_size: cell_size,
		times:     NewDict[[2]int64, int32](1000),
	}
}

func (self *TransitTimeTable) CellSize() float64 {
	return self.cell_size
}

func (self *TransitTimeTable) Length() int {
	return self.times.Length()
}

// Packs the grid cell containing loc.
func (self *TransitTimeTable) Region(loc geo.Coord) int64 {
	x := int32(math.Floor(float64(loc.Lon()) / self.cell_size))
	y := int32(math.Floor(float64(loc.Lat()) / self.cell_size))
	return _PackCell(x, y)
}

func _PackCell(x, y int32) int64 {
	return int64(x)<<32 | int64(uint32(y))
}

// meters per degree latitude, rounded down
const _METERS_PER_DEGREE = 111000

// Cells overlapping the lon/lat box around the circle of radius meters.
func (self *TransitTimeTable) Regions(loc geo.Coord, radius float64) []int64 {
	lon, lat := float64(loc.Lon()), float64(loc.Lat())
	d_lat := radius / _METERS_PER_DEGREE
	d_lon := d_lat / math.Max(math.Cos(lat*math.Pi/180), 0.01)
	x_min := int32(math.Floor((lon - d_lon) / self.cell_size))
	x_max := int32(math.Floor((lon + d_lon) / self.cell_size))
	y_min := int32(math.Floor((lat - d_lat) / self.cell_size))
	y_max := int32(math.Floor((lat + d_lat) / self.cell_size))
	regions := make([]int64, 0, int(x_max-x_min+1)*int(y_max-y_min+1))
	for x := x_min; x <= x_max; x++ {
		for y := y_min; y <= y_max; y++ {
			regions = append(regions, _PackCell(x, y))
		}
	}
	return regions
}

func (self *TransitTimeTable) MinTransitTime(from, to int64) (int32, bool) {
	seconds, ok := self.times[[2]int64{from, to}]
	return seconds, ok
}

// Keeps the smaller value if the pair is already set.
func (self *TransitTimeTable) Set(from, to int64, seconds int32) {
	key := [2]int64{from, to}
	if curr, ok := self.times[key]; ok && curr <= seconds {
		return
	}
	self.times[key] = seconds
}

//*******************************************
// table computation
//*******************************************

// Computes in-vehicle lower bounds between regions from the schedules of net.
//
// Direct rides give the edges of a region graph, a dijkstra from every region then
// yields the shortest chains of rides. Walking between regions is not accounted for,
// so the planner only uses the table to bound a single remaining ride.
func ComputeTransitTimeTable(net *network.Network, cell_size float64) *TransitTimeTable {
	table := NewTransitTimeTable(cell_size)
	regions := NewArray[int64](net.StopCount())
	for i := range regions {
		regions[i] = table.Region(net.GetStop(int32(i)).Loc)
	}

	direct := NewDict[int64, Dict[int64, int32]](100)
	add_direct := func(from, to int64, seconds int32) {
		adj, ok := direct[from]
		if !ok {
			adj = NewDict[int64, int32](10)
			direct[from] = adj
		}
		// rides within a region still give it a zero entry
		if from == to {
			return
		}
		if curr, ok := adj[to]; !ok || seconds < curr {
			adj[to] = seconds
		}
	}
	for r := 0; r < net.RouteCount(); r++ {
		route := net.GetRoute(int32(r))
		n := int32(route.StopCount())
		for p := int32(0); p < int32(route.PatternCount()); p++ {
			pattern := route.GetPattern(p)
			for t := int32(0); t < int32(pattern.TripCount()); t++ {
				for i := int32(0); i < n-1; i++ {
					dep, ok := pattern.GetDeparture(t, i)
					if !ok {
						continue
					}
					arr, ok := pattern.GetArrival(t, i+1)
					if !ok || arr < dep {
						continue
					}
					add_direct(regions[route.GetStop(i)], regions[route.GetStop(i+1)], arr-dep)
				}
			}
		}
	}

	for start := range direct {
		table.Set(start, start, 0)
		dist := NewDict[int64, int32](len(direct))
		dist[start] = 0
		heap := NewPriorityQueue[int64, int32](10)
		heap.Enqueue(start, 0)
		for {
			curr, ok := heap.Dequeue()
			if !ok {
				break
			}
			curr_dist := dist[curr]
			for next, seconds := range direct[curr] {
				new_dist := curr_dist + seconds
				if old, ok := dist[next]; ok && old <= new_dist {
					continue
				}
				dist[next] = new_dist
				heap.Enqueue(next, new_dist)
			}
		}
		for region, seconds := range dist {
			table.Set(start, region, seconds)
		}
	}
	return table
}
