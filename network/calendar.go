package network

import (
	"sync"
	"time"

	. "github.com/ttpr0/go-transit/util"
)

//*******************************************
// service calendar
//*******************************************

// Weekdays is a bitfield, 1 << 0 = monday, 1 << 6 = sunday.
// Start and End are inclusive dates, a zero value leaves that side open.
type Service struct {
	ID       string
	Weekdays uint8
	Start    time.Time
	End      time.Time
	Added    List[time.Time]
	Removed  List[time.Time]
}

func _SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func _DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func _WeekdayBit(date time.Time) uint8 {
	// time.Weekday starts at sunday
	return 1 << ((uint8(date.Weekday()) + 6) % 7)
}

func (self *Service) IsActive(date time.Time) bool {
	for _, d := range self.Removed {
		if _SameDate(d, date) {
			return false
		}
	}
	for _, d := range self.Added {
		if _SameDate(d, date) {
			return true
		}
	}
	day := _DateOnly(date)
	if !self.Start.IsZero() && day.Before(_DateOnly(self.Start)) {
		return false
	}
	if !self.End.IsZero() && day.After(_DateOnly(self.End)) {
		return false
	}
	return self.Weekdays&_WeekdayBit(date) != 0
}

//*******************************************
// service days
//*******************************************

// Services running on a single date. Immutable after construction.
type ServiceDays struct {
	date   time.Time
	active Array[bool]
}

func NewServiceDays(services Array[Service], date time.Time) *ServiceDays {
	active := NewArray[bool](services.Length())
	for i := range services {
		active[i] = services[i].IsActive(date)
	}
	return &ServiceDays{
		date:   _DateOnly(date),
		active: active,
	}
}

func (self *ServiceDays) Date() time.Time {
	return self.date
}

func (self *ServiceDays) IsActive(service int32) bool {
	if service < 0 {
		return true
	}
	if self == nil || int(service) >= self.active.Length() {
		return false
	}
	return self.active[service]
}

//*******************************************
// service day cache
//*******************************************

// Memoizes ServiceDays per date for one network snapshot.
//
// Safe for concurrent use. A new snapshot needs a new cache.
type ServiceDayCache struct {
	mu       sync.RWMutex
	network  *Network
	days     Dict[time.Time, *ServiceDays]
	capacity int
}

func NewServiceDayCache(network *Network, capacity int) *ServiceDayCache {
	if capacity <= 0 {
		capacity = 32
	}
	return &ServiceDayCache{
		network:  network,
		days:     NewDict[time.Time, *ServiceDays](capacity),
		capacity: capacity,
	}
}

func (self *ServiceDayCache) Get(date time.Time) *ServiceDays {
	key := _DateOnly(date)
	self.mu.RLock()
	days, ok := self.days[key]
	self.mu.RUnlock()
	if ok {
		return days
	}

	days = self.network.GetServiceDays(date)
	self.mu.Lock()
	defer self.mu.Unlock()
	if existing, ok := self.days[key]; ok {
		return existing
	}
	if self.days.Length() >= self.capacity {
		// dates are rarely reused far apart, dropping everything keeps this simple
		self.days = NewDict[time.Time, *ServiceDays](self.capacity)
	}
	self.days[key] = days
	return days
}

func (self *ServiceDayCache) Network() *Network {
	return self.network
}
