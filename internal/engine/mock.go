// internal/engine/mock.go
package engine

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/llehouerou/eddy/internal/playback"
)

// Mock is a test double for Engine. Commands are recorded and update a small
// amount of queue state; events are only delivered when tests call Emit.
type Mock struct {
	Listeners

	mu     sync.Mutex
	state  playback.PlayerState
	queue  []playback.Song
	index  int
	calls  []string
	queues [][]playback.Song
	errs   map[string]error
	closed bool

	onListen func()
}

// NewMock creates a new mock engine with an empty queue.
func NewMock() *Mock {
	return &Mock{index: -1}
}

func (m *Mock) record(name string, format string, args ...any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := name
	if format != "" {
		call += "(" + fmt.Sprintf(format, args...) + ")"
	}
	m.calls = append(m.calls, call)
	return m.errs[name]
}

func (m *Mock) SetQueue(songs []playback.Song) error {
	err := m.record("SetQueue", "%d", len(songs))
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = slices.Clone(songs)
	m.queues = append(m.queues, slices.Clone(songs))
	m.index = -1
	if len(songs) > 0 {
		m.index = 0
	}
	return err
}

func (m *Mock) SeekToIndex(index int, position time.Duration) error {
	err := m.record("SeekToIndex", "%d,%v", index, position)
	m.mu.Lock()
	defer m.mu.Unlock()
	if index >= 0 && index < len(m.queue) {
		m.index = index
	}
	return err
}

func (m *Mock) SetPlayWhenReady(play bool) error {
	return m.record("SetPlayWhenReady", "%v", play)
}

func (m *Mock) Prepare() error { return m.record("Prepare", "") }

func (m *Mock) Play() error { return m.record("Play", "") }

func (m *Mock) Pause() error { return m.record("Pause", "") }

func (m *Mock) Resume() error { return m.record("Resume", "") }

func (m *Mock) Stop() error { return m.record("Stop", "") }

func (m *Mock) Seek(position time.Duration) error {
	return m.record("Seek", "%v", position)
}

func (m *Mock) Next() error {
	err := m.record("Next", "")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index < len(m.queue)-1 {
		m.index++
	}
	return err
}

func (m *Mock) Previous() error {
	err := m.record("Previous", "")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index > 0 {
		m.index--
	}
	return err
}

func (m *Mock) SetRepeatMode(mode playback.RepeatMode) error {
	return m.record("SetRepeatMode", "%v", mode)
}

func (m *Mock) SetShuffle(enabled bool) error {
	return m.record("SetShuffle", "%v", enabled)
}

func (m *Mock) HasNext() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index >= 0 && m.index < len(m.queue)-1
}

func (m *Mock) HasPrevious() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index > 0
}

// AddListener registers l, then runs the OnListen hook if one is set.
func (m *Mock) AddListener(l Listener) ListenerID {
	id := m.Listeners.AddListener(l)
	m.mu.Lock()
	hook := m.onListen
	m.mu.Unlock()
	if hook != nil {
		hook()
	}
	return id
}

func (m *Mock) Snapshot() playback.PlayerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Close marks the mock closed.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

// SetSnapshot sets the values returned by Snapshot.
func (m *Mock) SetSnapshot(s playback.PlayerState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

// OnListen sets a hook run right after each listener is registered.
func (m *Mock) OnListen(f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onListen = f
}

// SetError makes the named command return err.
func (m *Mock) SetError(command string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errs == nil {
		m.errs = make(map[string]error)
	}
	m.errs[command] = err
}

// Calls returns the recorded commands, e.g. "Seek(30s)".
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// Queues returns every queue passed to SetQueue.
func (m *Mock) Queues() [][]playback.Song {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.queues)
}

// SetIndex moves the mock's queue cursor.
func (m *Mock) SetIndex(i int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.index = i
}

// IsClosed reports whether Close was called.
func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Engine at compile time.
var _ Engine = (*Mock)(nil)
