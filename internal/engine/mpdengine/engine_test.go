package mpdengine

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/eddy/internal/engine"
	"github.com/llehouerou/eddy/internal/playback"
)

type fakeConn struct {
	mu      sync.Mutex
	calls   []string
	status  mpd.Attrs
	current mpd.Attrs
	err     error
}

func newFakeConn() *fakeConn {
	return &fakeConn{status: mpd.Attrs{"state": "stop"}, current: mpd.Attrs{}}
}

func (f *fakeConn) record(format string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return f.err
}

func (f *fakeConn) set(status, current mpd.Attrs) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.current = status, current
}

func (f *fakeConn) Status() (mpd.Attrs, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, f.err
}

func (f *fakeConn) CurrentSong() (mpd.Attrs, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, f.err
}

func (f *fakeConn) Play(pos int) error          { return f.record("play %d", pos) }
func (f *fakeConn) Pause(pause bool) error      { return f.record("pause %v", pause) }
func (f *fakeConn) Stop() error                 { return f.record("stop") }
func (f *fakeConn) Next() error                 { return f.record("next") }
func (f *fakeConn) Previous() error             { return f.record("previous") }
func (f *fakeConn) Seek(pos, seconds int) error { return f.record("seek %d %d", pos, seconds) }
func (f *fakeConn) Random(on bool) error        { return f.record("random %v", on) }
func (f *fakeConn) Repeat(on bool) error        { return f.record("repeat %v", on) }
func (f *fakeConn) Single(on bool) error        { return f.record("single %v", on) }
func (f *fakeConn) Clear() error                { return f.record("clear") }
func (f *fakeConn) Add(uri string) error        { return f.record("add %s", uri) }
func (f *fakeConn) Close() error                { return f.record("close") }

func (f *fakeConn) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func queue() []playback.Song {
	return []playback.Song{
		{ID: 1, Title: "One", Data: "a/one.flac", Duration: 3 * time.Minute},
		{ID: 2, Title: "Two", Data: "a/two.flac", Duration: 4 * time.Minute},
	}
}

func TestEngine_SetQueueAndPrepare(t *testing.T) {
	c := newFakeConn()
	e := newEngine(c)

	require.NoError(t, e.SetQueue(queue()))
	require.NoError(t, e.SeekToIndex(1, 30*time.Second))
	require.NoError(t, e.SetPlayWhenReady(true))
	require.NoError(t, e.Prepare())

	assert.Equal(t, []string{
		"clear",
		"add a/one.flac",
		"add a/two.flac",
		"play 1",
		"seek 1 30",
	}, c.Calls())
}

func absQueue() []playback.Song {
	return []playback.Song{
		{ID: 1, Title: "One", Data: "/home/u/Music/a/one.flac", Duration: 3 * time.Minute},
		{ID: 2, Title: "Two", Data: "/home/u/Music/a/two.flac", Duration: 4 * time.Minute},
		{ID: 3, Title: "Three", Data: "/srv/other/three.flac", Duration: 2 * time.Minute},
	}
}

func playing(c *fakeConn, pos int, file string) {
	c.set(
		mpd.Attrs{"state": "play", "song": fmt.Sprint(pos), "songid": fmt.Sprint(pos + 10), "elapsed": "1.000"},
		mpd.Attrs{"file": file, "Id": fmt.Sprint(pos + 10)},
	)
}

func TestEngine_QueuesPathsRelativeToMusicDir(t *testing.T) {
	c := newFakeConn()
	e := newEngine(c)
	e.musicDir = "/home/u/Music"

	require.NoError(t, e.SetQueue(absQueue()))
	assert.Equal(t, []string{
		"clear",
		"add a/one.flac",
		"add a/two.flac",
		"add /srv/other/three.flac",
	}, c.Calls())

	playing(c, 1, "a/two.flac")
	e.refresh()
	snap := e.Snapshot()
	require.NotNil(t, snap.CurrentSong)
	assert.Equal(t, int64(2), snap.CurrentSong.ID)
	assert.Equal(t, "Two", snap.CurrentSong.Title)
}

func TestEngine_MapsDaemonFileWithoutMusicDir(t *testing.T) {
	c := newFakeConn()
	e := newEngine(c)
	require.NoError(t, e.SetQueue(absQueue()))

	playing(c, 0, "a/one.flac")
	e.refresh()
	snap := e.Snapshot()
	require.NotNil(t, snap.CurrentSong)
	assert.Equal(t, int64(1), snap.CurrentSong.ID)

	playing(c, 2, "other/unknown.flac")
	e.refresh()
	assert.Negative(t, e.Snapshot().CurrentSong.ID)
}

func TestEngine_PrepareWithoutPlayWhenReadyPauses(t *testing.T) {
	c := newFakeConn()
	e := newEngine(c)

	require.NoError(t, e.SetQueue(queue()))
	require.NoError(t, e.Prepare())

	assert.Equal(t, []string{"play 0", "pause true"}, c.Calls()[3:])
}

func TestEngine_SeekToIndexOutOfRange(t *testing.T) {
	e := newEngine(newFakeConn())
	assert.Error(t, e.SeekToIndex(0, 0))
}

func TestEngine_RepeatModes(t *testing.T) {
	tests := []struct {
		mode playback.RepeatMode
		want []string
	}{
		{playback.RepeatOff, []string{"repeat false", "single false"}},
		{playback.RepeatAll, []string{"repeat true", "single false"}},
		{playback.RepeatOne, []string{"repeat true", "single true"}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			c := newFakeConn()
			require.NoError(t, newEngine(c).SetRepeatMode(tt.mode))
			assert.Equal(t, tt.want, c.Calls())
		})
	}
}

func TestEngine_SeekNeedsCurrentSong(t *testing.T) {
	c := newFakeConn()
	e := newEngine(c)

	assert.ErrorIs(t, e.Seek(10*time.Second), ErrNoSong)

	c.set(mpd.Attrs{"state": "play", "song": "1", "songid": "8"}, mpd.Attrs{"file": "a/two.flac"})
	e.refresh()
	require.NoError(t, e.Seek(75*time.Second))
	assert.Equal(t, []string{"seek 1 75"}, c.Calls())
}

func TestEngine_ResumeWhenStoppedPlays(t *testing.T) {
	c := newFakeConn()
	e := newEngine(c)

	require.NoError(t, e.Resume())
	c.set(mpd.Attrs{"state": "pause", "song": "0", "songid": "1"}, mpd.Attrs{"file": "x"})
	e.refresh()
	require.NoError(t, e.Resume())

	assert.Equal(t, []string{"play -1", "pause false"}, c.Calls())
}

func TestEngine_RefreshEmitsEvents(t *testing.T) {
	c := newFakeConn()
	e := newEngine(c)
	now := time.Unix(1000, 0)
	e.now = func() time.Time { return now }
	require.NoError(t, e.SetQueue(queue()))

	var got []engine.Event
	e.AddListener(func(ev engine.Event) { got = append(got, ev) })

	c.set(
		mpd.Attrs{"state": "play", "song": "0", "songid": "5", "elapsed": "0.000", "nextsong": "1", "repeat": "1"},
		mpd.Attrs{"file": "a/one.flac", "Id": "5"},
	)
	e.refresh()

	song := queue()[0]
	assert.Equal(t, []engine.Event{
		engine.TracksChanged{Song: &song, HasNext: true},
		engine.PlaybackStateChanged{State: engine.StateReady},
		engine.IsPlayingChanged{Playing: true},
		engine.RepeatModeChanged{Mode: playback.RepeatAll},
		engine.EventsBatch{Song: &song, HasNext: true, Position: 0},
	}, got)

	snap := e.Snapshot()
	assert.True(t, snap.IsPlaying)
	assert.Equal(t, int64(1), snap.CurrentSong.ID)
	assert.True(t, e.HasNext())
	assert.True(t, e.HasPrevious(), "repeat all wraps")
}

func TestEngine_CloseStopsConnection(t *testing.T) {
	c := newFakeConn()
	e := newEngine(c)

	require.NoError(t, e.Close())
	require.NoError(t, e.Close())
	assert.Contains(t, c.Calls(), "close")
}
