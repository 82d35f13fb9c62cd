package geo

import (
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

//*******************************************
// coordinates
//*******************************************

// Coord is a lon/lat pair in degrees.
type Coord [2]float32

func (self Coord) Lon() float32 {
	return self[0]
}
func (self Coord) Lat() float32 {
	return self[1]
}
func (self Coord) Point() orb.Point {
	return orb.Point{float64(self[0]), float64(self[1])}
}

func CoordFromPoint(p orb.Point) Coord {
	return Coord{float32(p[0]), float32(p[1])}
}

type CoordArray []Coord

func (self CoordArray) LineString() orb.LineString {
	line := make(orb.LineString, len(self))
	for i, c := range self {
		line[i] = c.Point()
	}
	return line
}

// Great-circle distance in meters.
func Distance(a, b Coord) float64 {
	return orbgeo.DistanceHaversine(a.Point(), b.Point())
}

// Length of the polyline in meters.
func Length(coords CoordArray) float64 {
	return orbgeo.LengthHaversine(coords.LineString())
}
