package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	a := Coord{7.0, 50.0}
	b := Coord{7.0, 50.01}
	// one hundredth of a degree latitude is roughly 1112 m
	assert.InDelta(t, 1112.0, Distance(a, b), 5.0)
	assert.Equal(t, 0.0, Distance(a, a))
	assert.InDelta(t, Distance(a, b), Length(CoordArray{a, b}), 0.001)
}

func TestIndexClosest(t *testing.T) {
	coords := []Coord{{7.0, 50.0}, {7.01, 50.0}, {7.02, 50.0}, {7.01, 50.0}}
	index := NewIndex(coords)

	id, dist, ok := index.GetClosest(Coord{7.011, 50.0})
	assert.True(t, ok)
	assert.Equal(t, int32(1), id)
	assert.Less(t, dist, 100.0)

	within := index.GetWithin(Coord{7.0, 50.0}, 800)
	assert.ElementsMatch(t, []int32{0, 1}, within)
}

func TestIndexEmpty(t *testing.T) {
	index := NewIndex(nil)
	_, _, ok := index.GetClosest(Coord{0, 0})
	assert.False(t, ok)
}
