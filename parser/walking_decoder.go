package parser

import (
	. "github.com/ttpr0/go-transit/util"
)

type WalkingDecoder struct {
}

var walking_types = Dict[string, bool]{"primary": true, "primary_link": true, "secondary": true, "secondary_link": true,
	"tertiary": true, "tertiary_link": true, "residential": true, "living_street": true, "service": true, "track": true,
	"unclassified": true, "road": true, "pedestrian": true, "footway": true, "path": true, "steps": true,
	"cycleway": true, "bridleway": true, "platform": true, "corridor": true}

func (self *WalkingDecoder) IsValidHighway(tags Dict[string, string]) bool {
	if !tags.ContainsKey("highway") {
		return false
	}
	if _IsYes(tags.Get("foot")) {
		return true
	}
	if _IsNo(tags.Get("foot")) || _IsNo(tags.Get("access")) {
		return false
	}
	return walking_types.ContainsKey(tags.Get("highway"))
}

// Oneway streets can be walked both ways unless tagged for pedestrians.
func (self *WalkingDecoder) IsOneway(tags Dict[string, string]) bool {
	return _IsYes(tags.Get("oneway:foot"))
}
