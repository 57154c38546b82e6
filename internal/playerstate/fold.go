package playerstate

import (
	"github.com/llehouerou/eddy/internal/engine"
	"github.com/llehouerou/eddy/internal/playback"
)

// Fold applies one engine event to s and returns the updated snapshot.
// Only the fields carried by the event change.
func Fold(s playback.PlayerState, ev engine.Event) playback.PlayerState {
	switch e := ev.(type) {
	case engine.EventsBatch:
		s.CurrentSong = e.Song.Clone()
		s.HasNext = e.HasNext
		s.Position = e.Position
	case engine.PlayWhenReadyChanged:
		s.PlayWhenReady = e.PlayWhenReady
	case engine.PlaybackStateChanged:
		s.IsLoading = e.State == engine.StateBuffering
	case engine.TracksChanged:
		if !playback.SameSong(s.CurrentSong, e.Song) {
			s.Position = 0
		}
		s.CurrentSong = e.Song.Clone()
		s.HasNext = e.HasNext
	case engine.IsPlayingChanged:
		s.IsPlaying = e.Playing
	case engine.IsLoadingChanged:
		s.IsLoading = e.Loading
	case engine.PositionDiscontinuity:
		// Automatic transitions and skips are followed by TracksChanged,
		// which resets the position itself.
		if e.Reason == engine.DiscontinuitySeek {
			s.Position = e.Position
		}
	case engine.RepeatModeChanged:
		s.RepeatMode = e.Mode
	case engine.ShuffleModeChanged:
		s.Shuffle = e.Enabled
	}
	return s
}
