package mpris

import (
	"testing"
	"time"

	"github.com/llehouerou/eddy/internal/playback"
)

func TestSnapshot_Follow(t *testing.T) {
	states := make(chan playback.PlayerState, 2)
	states <- playback.PlayerState{Position: time.Second}
	states <- playback.PlayerState{Position: 2 * time.Second, IsPlaying: true}
	close(states)

	var s snapshot
	s.follow(states)

	got := s.get()
	if got.Position != 2*time.Second || !got.IsPlaying {
		t.Errorf("get() = %+v, want the last state", got)
	}
}
