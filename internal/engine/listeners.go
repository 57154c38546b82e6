package engine

import (
	"maps"
	"slices"
	"sync"
)

// Listeners is a registry that engine implementations embed to manage their
// listeners. The zero value is ready to use.
type Listeners struct {
	mu   sync.Mutex
	next ListenerID
	set  map[ListenerID]Listener
}

// AddListener registers l and returns its id.
func (ls *Listeners) AddListener(l Listener) ListenerID {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.set == nil {
		ls.set = make(map[ListenerID]Listener)
	}
	ls.next++
	ls.set[ls.next] = l
	return ls.next
}

// RemoveListener unregisters id. Unknown ids are ignored.
func (ls *Listeners) RemoveListener(id ListenerID) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	delete(ls.set, id)
}

// Len returns the number of registered listeners.
func (ls *Listeners) Len() int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return len(ls.set)
}

// Emit delivers events to every listener, in registration order, outside the
// registry lock.
func (ls *Listeners) Emit(events ...Event) {
	ls.mu.Lock()
	ids := slices.Sorted(maps.Keys(ls.set))
	targets := make([]Listener, 0, len(ids))
	for _, id := range ids {
		targets = append(targets, ls.set[id])
	}
	ls.mu.Unlock()

	for _, e := range events {
		for _, l := range targets {
			l(e)
		}
	}
}
