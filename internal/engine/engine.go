// Package engine defines the boundary to the media-playback engine: the
// commands it accepts, the events it emits, and the handle through which the
// rest of the session acquires it.
package engine

import (
	"errors"
	"time"

	"github.com/llehouerou/eddy/internal/playback"
)

var (
	// ErrClosed is returned by engines and handles used after Close.
	ErrClosed = errors.New("engine closed")
	// ErrNotBound is returned by a handle closed before binding completed.
	ErrNotBound = errors.New("engine not bound")
)

// Engine is an opaque, stateful playback engine.
//
// Commands are asynchronous from the session's point of view: their effect is
// observed through events delivered to registered listeners. Implementations
// must be safe for concurrent use and must not call listeners while holding
// locks that a command could need.
type Engine interface {
	SetQueue(songs []playback.Song) error
	SeekToIndex(index int, position time.Duration) error
	SetPlayWhenReady(play bool) error
	Prepare() error
	Play() error
	Pause() error
	Resume() error
	Stop() error
	Seek(position time.Duration) error
	Next() error
	Previous() error
	SetRepeatMode(mode playback.RepeatMode) error
	SetShuffle(enabled bool) error

	HasNext() bool
	HasPrevious() bool

	// Snapshot returns the engine's current values.
	Snapshot() playback.PlayerState

	AddListener(l Listener) ListenerID
	RemoveListener(id ListenerID)
}

// Listener receives engine events. It is called from an engine-owned
// goroutine and must return quickly.
type Listener func(Event)

// ListenerID identifies a registered listener.
type ListenerID uint64
