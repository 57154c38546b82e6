package playerstate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/llehouerou/eddy/internal/engine"
	"github.com/llehouerou/eddy/internal/playback"
)

func testSong(id int64, d time.Duration) *playback.Song {
	return &playback.Song{ID: id, Title: "Song", Duration: d}
}

func TestFold_ShufflePreservesOtherFields(t *testing.T) {
	before := playback.PlayerState{
		CurrentSong:   testSong(7, 3*time.Minute),
		IsPlaying:     true,
		PlayWhenReady: true,
		HasNext:       true,
		Position:      42 * time.Second,
		RepeatMode:    playback.RepeatAll,
	}

	after := Fold(before, engine.ShuffleModeChanged{Enabled: true})

	want := before
	want.Shuffle = true
	assert.Equal(t, want, after)
}

func TestFold_Events(t *testing.T) {
	song := testSong(1, time.Minute)
	other := testSong(2, time.Minute)
	base := playback.PlayerState{CurrentSong: song, Position: 20 * time.Second}

	tests := []struct {
		name  string
		event engine.Event
		check func(t *testing.T, s playback.PlayerState)
	}{
		{
			name:  "events batch",
			event: engine.EventsBatch{Song: other, HasNext: true, Position: 5 * time.Second},
			check: func(t *testing.T, s playback.PlayerState) {
				assert.Equal(t, int64(2), s.CurrentSong.ID)
				assert.True(t, s.HasNext)
				assert.Equal(t, 5*time.Second, s.Position)
			},
		},
		{
			name:  "play when ready",
			event: engine.PlayWhenReadyChanged{PlayWhenReady: true},
			check: func(t *testing.T, s playback.PlayerState) {
				assert.True(t, s.PlayWhenReady)
			},
		},
		{
			name:  "buffering sets loading",
			event: engine.PlaybackStateChanged{State: engine.StateBuffering},
			check: func(t *testing.T, s playback.PlayerState) {
				assert.True(t, s.IsLoading)
			},
		},
		{
			name:  "ready clears loading",
			event: engine.PlaybackStateChanged{State: engine.StateReady},
			check: func(t *testing.T, s playback.PlayerState) {
				assert.False(t, s.IsLoading)
			},
		},
		{
			name:  "same track keeps position",
			event: engine.TracksChanged{Song: testSong(1, time.Minute), HasNext: true},
			check: func(t *testing.T, s playback.PlayerState) {
				assert.Equal(t, 20*time.Second, s.Position)
				assert.True(t, s.HasNext)
			},
		},
		{
			name:  "new track resets position",
			event: engine.TracksChanged{Song: other},
			check: func(t *testing.T, s playback.PlayerState) {
				assert.Equal(t, int64(2), s.CurrentSong.ID)
				assert.Zero(t, s.Position)
			},
		},
		{
			name:  "tracks cleared",
			event: engine.TracksChanged{},
			check: func(t *testing.T, s playback.PlayerState) {
				assert.Nil(t, s.CurrentSong)
				assert.Zero(t, s.Position)
			},
		},
		{
			name:  "is playing",
			event: engine.IsPlayingChanged{Playing: true},
			check: func(t *testing.T, s playback.PlayerState) {
				assert.True(t, s.IsPlaying)
			},
		},
		{
			name:  "is loading",
			event: engine.IsLoadingChanged{Loading: true},
			check: func(t *testing.T, s playback.PlayerState) {
				assert.True(t, s.IsLoading)
			},
		},
		{
			name:  "seek discontinuity",
			event: engine.PositionDiscontinuity{Reason: engine.DiscontinuitySeek, Position: 50 * time.Second},
			check: func(t *testing.T, s playback.PlayerState) {
				assert.Equal(t, 50*time.Second, s.Position)
			},
		},
		{
			name:  "auto transition discontinuity ignored",
			event: engine.PositionDiscontinuity{Reason: engine.DiscontinuityAutoTransition, Position: 0},
			check: func(t *testing.T, s playback.PlayerState) {
				assert.Equal(t, 20*time.Second, s.Position)
			},
		},
		{
			name:  "repeat mode",
			event: engine.RepeatModeChanged{Mode: playback.RepeatOne},
			check: func(t *testing.T, s playback.PlayerState) {
				assert.Equal(t, playback.RepeatOne, s.RepeatMode)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Fold(base, tt.event))
		})
	}
}

func TestFold_DoesNotShareSongPointer(t *testing.T) {
	song := testSong(1, time.Minute)
	s := Fold(playback.PlayerState{}, engine.TracksChanged{Song: song})

	song.Title = "mutated"

	if s.CurrentSong.Title != "Song" {
		t.Errorf("published song changed to %q", s.CurrentSong.Title)
	}
}
