package session

import (
	"sync"

	"github.com/llehouerou/eddy/internal/playback"
)

// Stream is one subscriber's view of the session state.
type Stream struct {
	// States receives the newest snapshot; older unread ones are replaced.
	// Closed when the stream ends.
	States <-chan playback.PlayerState
	// Done is closed when the stream ends.
	Done <-chan struct{}

	statesCh chan playback.PlayerState
	doneCh   chan struct{}
	once     sync.Once
	err      error
}

func newStream() *Stream {
	st := &Stream{
		statesCh: make(chan playback.PlayerState, 1),
		doneCh:   make(chan struct{}),
	}
	st.States = st.statesCh
	st.Done = st.doneCh
	return st
}

// Err returns why the stream ended. Valid once Done is closed.
func (st *Stream) Err() error {
	select {
	case <-st.doneCh:
		return st.err
	default:
		return nil
	}
}

// offer publishes s. Callers hold the session lock, which makes them the
// only sender.
func (st *Stream) offer(s playback.PlayerState) {
	for {
		select {
		case st.statesCh <- s:
			return
		default:
		}
		select {
		case <-st.statesCh:
		default:
		}
	}
}

// finish ends the stream. Callers hold the session lock.
func (st *Stream) finish(err error) {
	st.once.Do(func() {
		st.err = err
		close(st.statesCh)
		close(st.doneCh)
	})
}
