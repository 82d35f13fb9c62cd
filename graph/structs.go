package graph

import (
	"github.com/ttpr0/go-transit/geo"
)

//*******************************************
// graph structs
//*******************************************

// Directed street segment, Length in meters.
type Edge struct {
	NodeA  int32
	NodeB  int32
	Length float32
}

type Node struct {
	Loc geo.Coord
}

//*******************************************
// edgeref struct
//*******************************************

type EdgeRef struct {
	EdgeID  int32
	OtherID int32
}

func CreateEdgeRef(edge int32) EdgeRef {
	return EdgeRef{
		EdgeID:  edge,
		OtherID: -1,
	}
}
