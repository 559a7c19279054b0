package study

import "sync"

// Registry hands out one Tracker per user and serializes every operation on
// it, so a user's timers and aggregator only ever see a single caller.
// A tracker with no running timer is dropped once its last caller returns;
// the next call rebuilds it from the store.
type Registry struct {
	mu       sync.Mutex
	entries  map[uint]*registryEntry
	newTrack func(userID uint) *Tracker
}

type registryEntry struct {
	mu      sync.Mutex
	tracker *Tracker
	refs    int // guarded by Registry.mu
}

func NewRegistry(factory func(userID uint) *Tracker) *Registry {
	return &Registry{entries: make(map[uint]*registryEntry), newTrack: factory}
}

// Do runs fn with exclusive access to userID's tracker.
func (r *Registry) Do(userID uint, fn func(t *Tracker) error) error {
	r.mu.Lock()
	e, ok := r.entries[userID]
	if !ok {
		e = &registryEntry{tracker: r.newTrack(userID)}
		r.entries[userID] = e
	}
	e.refs++
	r.mu.Unlock()

	defer r.release(userID, e)

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.tracker)
}

// release drops e when it was the last caller and no timer is running.
// With refs at zero nobody else can reach the tracker, so reading it is safe.
func (r *Registry) release(userID uint, e *registryEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.refs--
	if e.refs == 0 && e.tracker.Idle() && r.entries[userID] == e {
		delete(r.entries, userID)
	}
}

// Len returns the number of trackers currently held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
