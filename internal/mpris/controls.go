// Package mpris exposes the playback session over the D-Bus MPRIS
// interface on Linux.
package mpris

import (
	"context"
	"sync"
	"time"

	"github.com/llehouerou/eddy/internal/playback"
	"github.com/llehouerou/eddy/internal/session"
)

// Controls is the session surface driven by media keys and desktop widgets.
type Controls interface {
	Pause()
	Resume()
	Stop()
	Next()
	Previous()
	Seek(position time.Duration)
	SeekBy(delta time.Duration)
	TogglePlayPause(st playback.PlayerState)
	SetRepeatMode(mode playback.RepeatMode)
	SetShuffle(enabled bool)
	Subscribe(ctx context.Context) *session.Stream
}

// snapshot holds the latest state seen on a session stream.
type snapshot struct {
	mu    sync.RWMutex
	state playback.PlayerState
}

func (s *snapshot) get() playback.PlayerState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *snapshot) set(st playback.PlayerState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

// follow copies states into s until the stream ends.
func (s *snapshot) follow(states <-chan playback.PlayerState) {
	for st := range states {
		s.set(st)
	}
}
