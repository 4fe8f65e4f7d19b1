package session

import (
	"sync"
)

const (
	numSlot = 16
)

type TimedKey interface {
	comparable
	Timed
}

type slot[K TimedKey, V any] struct {
	mut   sync.RWMutex
	t     int64
	store map[K]V
}

// MemStore is an in memory session Store that automatically expires keys.
//
// Keys are spread over numSlot slots according to their pseudo time.
// A slot is recycled when a key with a more recent pseudo time maps to it,
// hence a key lives until numSlot ticks have elapsed.
type MemStore[K TimedKey, V any] struct {
	slots [numSlot]slot[K, V]
}

// NewMemStore instantiates a new MemStore.
func NewMemStore[K TimedKey, V any]() *MemStore[K, V] {
	return &MemStore[K, V]{}
}

func (self *MemStore[K, V]) slotOf(ts int64) *slot[K, V] {
	idx := ts % numSlot
	if idx < 0 {
		idx += numSlot
	}
	return &(self.slots[idx])
}

// Get returns the value indexed by key.
// The bool flag is true if the key exists in the MemStore.
func (self *MemStore[K, V]) Get(key K) (V, bool) {
	var v V
	var present bool

	ts := key.T()
	slot := self.slotOf(ts)
	slot.mut.RLock()
	defer slot.mut.RUnlock()

	if ts == slot.t {
		v, present = slot.store[key]
	}

	return v, present
}

// Pop removes the key from the MemStore and returns the associated value.
// The bool flag is true if the key was found in the MemStore.
func (self *MemStore[K, V]) Pop(key K) (V, bool) {
	var v V
	var present bool

	ts := key.T()
	slot := self.slotOf(ts)
	slot.mut.Lock()
	defer slot.mut.Unlock()

	if ts == slot.t {
		v, present = slot.store[key]
		delete(slot.store, key)
	}

	return v, present
}

// Set registers key, data in the MemStore.
// It errors if key belongs to a pseudo time older than the one of its slot.
func (self *MemStore[K, V]) Set(key K, data V) error {
	ts := key.T()
	slot := self.slotOf(ts)
	slot.mut.Lock()
	defer slot.mut.Unlock()

	if !slot.prepare(ts) {
		return newError("key pseudo time %d is expired", ts)
	}
	slot.store[key] = data

	return nil
}

// Add registers key, data in the MemStore if key is not present.
// It returns false if key was already present or if key is expired.
func (self *MemStore[K, V]) Add(key K, data V) bool {
	ts := key.T()
	slot := self.slotOf(ts)
	slot.mut.Lock()
	defer slot.mut.Unlock()

	if !slot.prepare(ts) {
		return false
	}
	if _, found := slot.store[key]; found {
		return false
	}
	slot.store[key] = data

	return true
}

// prepare recycles the slot if it holds data older than ts.
// It returns false if ts is older than the slot data.
func (self *slot[K, V]) prepare(ts int64) bool {
	switch {
	case nil == self.store || ts > self.t:
		// slot contains expired data
		self.t = ts
		self.store = make(map[K]V)
	case ts < self.t:
		return false
	}
	return true
}

var _ Store[Stamp, int] = &MemStore[Stamp, int]{}
