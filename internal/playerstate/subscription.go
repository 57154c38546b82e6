package playerstate

import (
	"sync"

	"github.com/llehouerou/eddy/internal/playback"
)

// Subscription is one live view of the player state.
type Subscription struct {
	// States receives snapshots. Only the newest unread snapshot is kept,
	// so a slow reader sees fewer states but never stalls the aggregator.
	// Closed when the subscription ends.
	States <-chan playback.PlayerState
	// Done is closed once the subscription goroutines have exited.
	Done <-chan struct{}

	statesCh chan playback.PlayerState
	doneCh   chan struct{}

	mu  sync.Mutex
	err error
}

func newSubscription() *Subscription {
	s := &Subscription{
		statesCh: make(chan playback.PlayerState, 1),
		doneCh:   make(chan struct{}),
	}
	s.States = s.statesCh
	s.Done = s.doneCh
	return s
}

// Err returns why the subscription ended, or nil while it is running.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// send publishes st, replacing an unread older snapshot.
// Only the actor goroutine sends, so the loop always terminates.
func (s *Subscription) send(st playback.PlayerState) {
	for {
		select {
		case s.statesCh <- st:
			return
		default:
		}
		select {
		case <-s.statesCh:
		default:
		}
	}
}

func (s *Subscription) finish(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	close(s.statesCh)
	close(s.doneCh)
}
