package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	. "github.com/ttpr0/go-transit/util"
)

//*******************************************
// utility methods
//*******************************************

func _IsYes(value string) bool {
	return value == "yes" || value == "true" || value == "1" || value == "designated"
}

func _IsNo(value string) bool {
	return value == "no" || value == "private"
}

// Parses H:MM:SS, hours may exceed 24 for trips running past midnight.
func _ParseGTFSTime(value string) (int32, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid gtfs time %q", value)
	}
	var secs int32
	for _, part := range parts {
		num, err := strconv.Atoi(part)
		if err != nil || num < 0 {
			return 0, fmt.Errorf("invalid gtfs time %q", value)
		}
		secs = secs*60 + int32(num)
	}
	return secs, nil
}

func _ParseGTFSDate(value string) (time.Time, error) {
	return time.Parse("20060102", strings.TrimSpace(value))
}

func _WeekdayMask(cal GTFSCalendar) uint8 {
	days := [7]int{cal.Monday, cal.Tuesday, cal.Wednesday, cal.Thursday, cal.Friday, cal.Saturday, cal.Sunday}
	var mask uint8
	for i, d := range days {
		if d == 1 {
			mask |= 1 << i
		}
	}
	return mask
}

// Key identifying trips that share stops and pickup/drop-off rules.
func _SequenceKey(route_id string, stops Array[int32], can_board, can_alight Array[bool]) string {
	var b strings.Builder
	b.WriteString(route_id)
	for i, stop := range stops {
		fmt.Fprintf(&b, "|%d:%t:%t", stop, can_board[i], can_alight[i])
	}
	return b.String()
}
