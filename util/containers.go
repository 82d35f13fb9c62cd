package util

import (
	"golang.org/x/exp/constraints"
)

//*******************************************
// array
//*******************************************

type Array[T any] []T

func NewArray[T any](size int) Array[T] {
	return make([]T, size)
}

func (self Array[T]) Length() int {
	return len(self)
}
func (self Array[T]) Get(index int) T {
	return self[index]
}
func (self Array[T]) Set(index int, value T) {
	self[index] = value
}

//*******************************************
// list
//*******************************************

type List[T any] []T

func NewList[T any](capacity int) List[T] {
	return make([]T, 0, capacity)
}

func (self *List[T]) Add(value T) {
	*self = append(*self, value)
}
func (self List[T]) Length() int {
	return len(self)
}
func (self List[T]) Get(index int) T {
	return self[index]
}
func (self List[T]) Set(index int, value T) {
	self[index] = value
}

// Removes the element at index by swapping in the last element.
//
// Order of the list is not preserved.
func (self *List[T]) SwapRemove(index int) {
	last := len(*self) - 1
	(*self)[index] = (*self)[last]
	var zero T
	(*self)[last] = zero
	*self = (*self)[:last]
}

// Keeps the backing array.
func (self *List[T]) Clear() {
	var zero T
	for i := range *self {
		(*self)[i] = zero
	}
	*self = (*self)[:0]
}

//*******************************************
// dict
//*******************************************

type Dict[K comparable, V any] map[K]V

func NewDict[K comparable, V any](capacity int) Dict[K, V] {
	return make(map[K]V, capacity)
}

func (self Dict[K, V]) ContainsKey(key K) bool {
	_, ok := self[key]
	return ok
}
func (self Dict[K, V]) Get(key K) V {
	return self[key]
}
func (self Dict[K, V]) Set(key K, value V) {
	self[key] = value
}
func (self Dict[K, V]) Delete(key K) {
	delete(self, key)
}
func (self Dict[K, V]) Length() int {
	return len(self)
}

//*******************************************
// optional
//*******************************************

type Optional[T any] struct {
	Value T
	ok    bool
}

func Some[T any](value T) Optional[T] {
	return Optional[T]{Value: value, ok: true}
}
func None[T any]() Optional[T] {
	return Optional[T]{}
}

func (self Optional[T]) HasValue() bool {
	return self.ok
}

//*******************************************
// tuples
//*******************************************

type Tuple[A any, B any] struct {
	A A
	B B
}

func MakeTuple[A any, B any](a A, b B) Tuple[A, B] {
	return Tuple[A, B]{A: a, B: b}
}

type Triple[A any, B any, C any] struct {
	A A
	B B
	C C
}

func MakeTriple[A any, B any, C any](a A, b B, c C) Triple[A, B, C] {
	return Triple[A, B, C]{A: a, B: b, C: c}
}

//*******************************************
// priority queue
//*******************************************

type _PQEntry[T any, P constraints.Ordered] struct {
	item T
	prio P
	seq  int64
}

// Binary min-heap. Items with equal priority are dequeued in insertion order.
type PriorityQueue[T any, P constraints.Ordered] struct {
	entries []_PQEntry[T, P]
	seq     int64
}

func NewPriorityQueue[T any, P constraints.Ordered](capacity int) PriorityQueue[T, P] {
	return PriorityQueue[T, P]{
		entries: make([]_PQEntry[T, P], 0, capacity),
	}
}

func (self *PriorityQueue[T, P]) Length() int {
	return len(self.entries)
}

func (self *PriorityQueue[T, P]) Enqueue(item T, prio P) {
	self.entries = append(self.entries, _PQEntry[T, P]{item, prio, self.seq})
	self.seq += 1
	self._Up(len(self.entries) - 1)
}

func (self *PriorityQueue[T, P]) Dequeue() (T, bool) {
	if len(self.entries) == 0 {
		var t T
		return t, false
	}
	top := self.entries[0]
	last := len(self.entries) - 1
	self.entries[0] = self.entries[last]
	self.entries = self.entries[:last]
	if last > 0 {
		self._Down(0)
	}
	return top.item, true
}

func (self *PriorityQueue[T, P]) Peek() (T, P, bool) {
	if len(self.entries) == 0 {
		var t T
		var p P
		return t, p, false
	}
	return self.entries[0].item, self.entries[0].prio, true
}

func (self *PriorityQueue[T, P]) Clear() {
	self.entries = self.entries[:0]
	self.seq = 0
}

func (self *PriorityQueue[T, P]) _Less(i, j int) bool {
	a := self.entries[i]
	b := self.entries[j]
	if a.prio == b.prio {
		return a.seq < b.seq
	}
	return a.prio < b.prio
}

func (self *PriorityQueue[T, P]) _Up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !self._Less(i, parent) {
			break
		}
		self.entries[i], self.entries[parent] = self.entries[parent], self.entries[i]
		i = parent
	}
}

func (self *PriorityQueue[T, P]) _Down(i int) {
	n := len(self.entries)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		smallest := left
		if right := left + 1; right < n && self._Less(right, left) {
			smallest = right
		}
		if !self._Less(smallest, i) {
			break
		}
		self.entries[i], self.entries[smallest] = self.entries[smallest], self.entries[i]
		i = smallest
	}
}

//*******************************************
// flags
//*******************************************

// Per-element scratch values that can be reset to a default in one call.
type Flags[T any] struct {
	flags    Array[T]
	_default T
}

func NewFlags[T any](count int32, _default T) Flags[T] {
	flags := NewArray[T](int(count))
	for i := range flags {
		flags[i] = _default
	}
	return Flags[T]{
		flags:    flags,
		_default: _default,
	}
}

func (self Flags[T]) Get(index int32) *T {
	return &self.flags[index]
}
func (self Flags[T]) Length() int {
	return len(self.flags)
}
func (self Flags[T]) Reset() {
	for i := range self.flags {
		self.flags[i] = self._default
	}
}
