package graph

//*******************************************
// enums
//*******************************************

type Direction byte

const (
	BACKWARD Direction = 0
	FORWARD  Direction = 1
)

func (self Direction) Reverse() Direction {
	if self == FORWARD {
		return BACKWARD
	}
	return FORWARD
}

func (self Direction) String() string {
	if self == FORWARD {
		return "forward"
	}
	return "backward"
}
