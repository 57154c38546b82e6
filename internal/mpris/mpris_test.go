//go:build linux

package mpris

import (
	"context"
	"testing"
	"time"

	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/eddy/internal/playback"
	"github.com/llehouerou/eddy/internal/session"
)

type fakeControls struct {
	calls  []string
	toggle []playback.PlayerState
	seeks  []time.Duration
	repeat []playback.RepeatMode
}

func (f *fakeControls) Pause()    { f.calls = append(f.calls, "Pause") }
func (f *fakeControls) Resume()   { f.calls = append(f.calls, "Resume") }
func (f *fakeControls) Stop()     { f.calls = append(f.calls, "Stop") }
func (f *fakeControls) Next()     { f.calls = append(f.calls, "Next") }
func (f *fakeControls) Previous() { f.calls = append(f.calls, "Previous") }
func (f *fakeControls) Seek(p time.Duration) {
	f.calls = append(f.calls, "Seek")
	f.seeks = append(f.seeks, p)
}
func (f *fakeControls) SeekBy(d time.Duration) {
	f.calls = append(f.calls, "SeekBy")
	f.seeks = append(f.seeks, d)
}
func (f *fakeControls) TogglePlayPause(st playback.PlayerState) {
	f.calls = append(f.calls, "TogglePlayPause")
	f.toggle = append(f.toggle, st)
}
func (f *fakeControls) SetRepeatMode(m playback.RepeatMode) { f.repeat = append(f.repeat, m) }
func (f *fakeControls) SetShuffle(bool)                     { f.calls = append(f.calls, "SetShuffle") }
func (f *fakeControls) Subscribe(context.Context) *session.Stream {
	return nil
}

func newPlayer(st playback.PlayerState) (*playerAdapter, *fakeControls) {
	c := &fakeControls{}
	snap := &snapshot{}
	snap.set(st)
	return &playerAdapter{controls: c, snap: snap}, c
}

var song = &playback.Song{
	ID:          12,
	Title:       "Naima",
	ArtistName:  "John Coltrane",
	AlbumName:   "Giant Steps",
	Duration:    4*time.Minute + 21*time.Second,
	Data:        "/music/giant-steps/06.flac",
	TrackNumber: 6,
}

func TestPlaybackStatus(t *testing.T) {
	tests := []struct {
		name  string
		state playback.PlayerState
		want  types.PlaybackStatus
	}{
		{"no song", playback.PlayerState{}, types.PlaybackStatusStopped},
		{"playing", playback.PlayerState{CurrentSong: song, IsPlaying: true, PlayWhenReady: true}, types.PlaybackStatusPlaying},
		{"paused", playback.PlayerState{CurrentSong: song}, types.PlaybackStatusPaused},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newPlayer(tt.state)
			got, err := p.PlaybackStatus()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMetadata(t *testing.T) {
	p, _ := newPlayer(playback.PlayerState{CurrentSong: song})
	meta, err := p.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "Naima", meta.Title)
	assert.Equal(t, []string{"John Coltrane"}, meta.Artist)
	assert.Equal(t, "Giant Steps", meta.Album)
	assert.Equal(t, 6, meta.TrackNumber)
	assert.Equal(t, types.Microseconds(song.Duration.Microseconds()), meta.Length)
	assert.EqualValues(t, "/org/mpris/MediaPlayer2/Track/12", meta.TrackId)

	empty, _ := newPlayer(playback.PlayerState{})
	meta, err = empty.Metadata()
	require.NoError(t, err)
	assert.Equal(t, types.Metadata{}, meta)
}

func TestPosition_Clamped(t *testing.T) {
	p, _ := newPlayer(playback.PlayerState{CurrentSong: song, Position: 10 * time.Minute})
	pos, err := p.Position()
	require.NoError(t, err)
	assert.Equal(t, song.Duration.Microseconds(), pos)
}

func TestCommands(t *testing.T) {
	st := playback.PlayerState{CurrentSong: song, IsPlaying: true, PlayWhenReady: true}
	p, c := newPlayer(st)

	require.NoError(t, p.Next())
	require.NoError(t, p.Previous())
	require.NoError(t, p.Pause())
	require.NoError(t, p.Stop())
	require.NoError(t, p.PlayPause())
	require.NoError(t, p.Play()) // already playing
	require.NoError(t, p.Seek(types.Microseconds(5_000_000)))

	assert.Equal(t, []string{"Next", "Previous", "Pause", "Stop", "TogglePlayPause", "SeekBy"}, c.calls)
	assert.Equal(t, []playback.PlayerState{st}, c.toggle)
	assert.Equal(t, []time.Duration{5 * time.Second}, c.seeks)
}

func TestPlay_ResumesWhenPaused(t *testing.T) {
	p, c := newPlayer(playback.PlayerState{CurrentSong: song})
	require.NoError(t, p.Play())
	assert.Equal(t, []string{"Resume"}, c.calls)
}

func TestSetPosition(t *testing.T) {
	p, c := newPlayer(playback.PlayerState{CurrentSong: song})

	require.NoError(t, p.SetPosition("/org/mpris/MediaPlayer2/Track/99", 1_000_000))
	assert.Empty(t, c.calls)

	require.NoError(t, p.SetPosition("/org/mpris/MediaPlayer2/Track/12", 30_000_000))
	assert.Equal(t, []string{"Seek"}, c.calls)
	assert.Equal(t, []time.Duration{30 * time.Second}, c.seeks)
}

func TestLoopStatus(t *testing.T) {
	for mode, want := range map[playback.RepeatMode]types.LoopStatus{
		playback.RepeatOff: types.LoopStatusNone,
		playback.RepeatOne: types.LoopStatusTrack,
		playback.RepeatAll: types.LoopStatusPlaylist,
	} {
		p, _ := newPlayer(playback.PlayerState{RepeatMode: mode})
		got, err := p.LoopStatus()
		require.NoError(t, err)
		assert.Equal(t, want, got, mode.String())
	}

	p, c := newPlayer(playback.PlayerState{})
	require.NoError(t, p.SetLoopStatus(types.LoopStatusPlaylist))
	require.NoError(t, p.SetLoopStatus(types.LoopStatusTrack))
	require.NoError(t, p.SetLoopStatus(types.LoopStatusNone))
	assert.Equal(t, []playback.RepeatMode{playback.RepeatAll, playback.RepeatOne, playback.RepeatOff}, c.repeat)
}

func TestFormatTrackID(t *testing.T) {
	assert.Equal(t, "/org/mpris/MediaPlayer2/Track/5", formatTrackID(5))
	assert.Equal(t, "/org/mpris/MediaPlayer2/Track/r3", formatTrackID(-3))
}
