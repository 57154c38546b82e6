package mpdengine

import (
	"testing"
	"time"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/stretchr/testify/assert"

	"github.com/llehouerou/eddy/internal/engine"
	"github.com/llehouerou/eddy/internal/playback"
)

func resolver(songs ...playback.Song) resolveSong {
	return func(file string) (playback.Song, bool) {
		for _, s := range songs {
			if s.Data == file {
				return s, true
			}
		}
		return playback.Song{}, false
	}
}

func TestObserve_ParsesStatus(t *testing.T) {
	song := playback.Song{ID: 3, Data: "x.mp3", Duration: time.Minute}
	o := observe(
		mpd.Attrs{
			"state": "pause", "song": "2", "songid": "14", "elapsed": "12.500",
			"repeat": "1", "single": "1", "random": "1",
		},
		mpd.Attrs{"file": "x.mp3"},
		resolver(song),
		time.Unix(0, 0),
	)

	assert.Equal(t, "pause", o.state)
	assert.Equal(t, 2, o.pos)
	assert.Equal(t, 12500*time.Millisecond, o.elapsed)
	assert.Equal(t, playback.RepeatOne, o.repeat)
	assert.True(t, o.random)
	assert.False(t, o.hasNext)
	assert.Equal(t, &song, o.song)
}

func TestObserve_UnknownFileGetsSyntheticSong(t *testing.T) {
	o := observe(
		mpd.Attrs{"state": "play", "song": "0", "songid": "7", "duration": "201.5"},
		mpd.Attrs{"file": "radio/stream.mp3", "Id": "7", "Artist": "Someone"},
		resolver(),
		time.Unix(0, 0),
	)

	if assert.NotNil(t, o.song) {
		assert.Equal(t, int64(-8), o.song.ID)
		assert.Equal(t, "radio/stream.mp3", o.song.Title)
		assert.Equal(t, "Someone", o.song.ArtistName)
		assert.Equal(t, 201500*time.Millisecond, o.song.Duration)
	}
}

func TestObserve_StoppedHasNoSong(t *testing.T) {
	o := observe(mpd.Attrs{"state": "stop"}, mpd.Attrs{"file": "x.mp3"}, resolver(), time.Unix(0, 0))
	assert.Nil(t, o.song)
	assert.Equal(t, -1, o.pos)
}

func TestDiff(t *testing.T) {
	t0 := time.Unix(100, 0)
	a := &playback.Song{ID: 1, Duration: 3 * time.Minute}
	b := &playback.Song{ID: 2, Duration: 3 * time.Minute}
	playingA := observation{state: "play", songID: "1", song: a, elapsed: 10 * time.Second, at: t0}

	tests := []struct {
		name string
		prev observation
		next observation
		want []engine.Event
	}{
		{
			name: "steady playback",
			prev: playingA,
			next: observation{state: "play", songID: "1", song: a, elapsed: 15 * time.Second, at: t0.Add(5 * time.Second)},
			want: []engine.Event{
				engine.EventsBatch{Song: a, Position: 15 * time.Second},
			},
		},
		{
			name: "seek",
			prev: playingA,
			next: observation{state: "play", songID: "1", song: a, elapsed: 90 * time.Second, at: t0.Add(time.Second)},
			want: []engine.Event{
				engine.PositionDiscontinuity{Reason: engine.DiscontinuitySeek, Position: 90 * time.Second},
				engine.EventsBatch{Song: a, Position: 90 * time.Second},
			},
		},
		{
			name: "pause",
			prev: playingA,
			next: observation{state: "pause", songID: "1", song: a, elapsed: 10 * time.Second, at: t0},
			want: []engine.Event{
				engine.IsPlayingChanged{Playing: false},
				engine.EventsBatch{Song: a, Position: 10 * time.Second},
			},
		},
		{
			name: "skip",
			prev: playingA,
			next: observation{state: "play", songID: "2", song: b, at: t0.Add(time.Second)},
			want: []engine.Event{
				engine.PositionDiscontinuity{Reason: engine.DiscontinuitySkip},
				engine.TracksChanged{Song: b},
				engine.EventsBatch{Song: b},
			},
		},
		{
			name: "natural end",
			prev: playingA,
			next: observation{state: "play", songID: "2", song: b, at: t0.Add(170 * time.Second)},
			want: []engine.Event{
				engine.PositionDiscontinuity{Reason: engine.DiscontinuityAutoTransition},
				engine.TracksChanged{Song: b},
				engine.EventsBatch{Song: b},
			},
		},
		{
			name: "stop",
			prev: playingA,
			next: observation{state: "stop", pos: -1, at: t0},
			want: []engine.Event{
				engine.TracksChanged{},
				engine.PlaybackStateChanged{State: engine.StateIdle},
				engine.IsPlayingChanged{Playing: false},
				engine.EventsBatch{},
			},
		},
		{
			name: "modes",
			prev: playingA,
			next: observation{
				state: "play", songID: "1", song: a, elapsed: 10 * time.Second, at: t0,
				repeat: playback.RepeatOne, random: true,
			},
			want: []engine.Event{
				engine.RepeatModeChanged{Mode: playback.RepeatOne},
				engine.ShuffleModeChanged{Enabled: true},
				engine.EventsBatch{Song: a, Position: 10 * time.Second},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, diff(tt.prev, tt.next))
		})
	}
}
