package geo

import (
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/quadtree"
)

//*******************************************
// closest point index
//*******************************************

type _IndexPoint struct {
	id    int32
	point orb.Point
}

func (self _IndexPoint) Point() orb.Point {
	return self.point
}

// Index answers closest-point queries over a fixed point set.
//
// It is built once and only read afterwards, so it can be shared between goroutines.
type Index struct {
	tree  *quadtree.Quadtree
	count int
}

func NewIndex(coords []Coord) *Index {
	bound := orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}
	if len(coords) > 0 {
		bound = orb.Bound{Min: coords[0].Point(), Max: coords[0].Point()}
		for _, c := range coords {
			bound = bound.Extend(c.Point())
		}
		bound = bound.Pad(0.001)
	}
	tree := quadtree.New(bound)
	count := 0
	// the quadtree does not handle coincident points, the first id wins
	seen := make(map[Coord]bool, len(coords))
	for i, c := range coords {
		if seen[c] {
			continue
		}
		seen[c] = true
		if err := tree.Add(_IndexPoint{int32(i), c.Point()}); err == nil {
			count += 1
		}
	}
	return &Index{tree: tree, count: count}
}

// Returns the id of the closest point and its distance in meters.
func (self *Index) GetClosest(point Coord) (int32, float64, bool) {
	if self.count == 0 {
		return -1, 0, false
	}
	found := self.tree.Find(point.Point())
	if found == nil {
		return -1, 0, false
	}
	p := found.(_IndexPoint)
	return p.id, Distance(point, CoordFromPoint(p.point)), true
}

// Returns ids of all points within max_dist meters, unordered.
func (self *Index) GetWithin(point Coord, max_dist float64) []int32 {
	if self.count == 0 {
		return nil
	}
	bound := orbgeo.NewBoundAroundPoint(point.Point(), max_dist)
	found := self.tree.InBound(nil, bound)
	ids := make([]int32, 0, len(found))
	for _, f := range found {
		p := f.(_IndexPoint)
		if Distance(point, CoordFromPoint(p.point)) <= max_dist {
			ids = append(ids, p.id)
		}
	}
	return ids
}
