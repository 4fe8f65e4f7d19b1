// Package session provides short lived in memory storage indexed by "pseudo time".
package session

// Store is a key value storage whose entries expire.
type Store[K comparable, V any] interface {
	Get(key K) (V, bool)
	Pop(key K) (V, bool)
	Set(key K, data V) error

	// Add registers data under key if key is not yet present.
	// It returns false if key was already present.
	Add(key K, data V) bool
}

// Stamp is a string key tagged with a pseudo time tick.
type Stamp struct {
	Key  string
	Tick int64
}

// T implements Timed.
func (self Stamp) T() int64 {
	return self.Tick
}

var _ Timed = Stamp{}
