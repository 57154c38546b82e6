package library

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bogem/id3v2/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/eddy/internal/playback"
	"github.com/llehouerou/eddy/internal/state"
)

// writeMP3 creates a single-frame MP3 (MPEG1 Layer3, 128kbps, 44100Hz)
// tagged with title, artist and album.
func writeMP3(t *testing.T, path, title, artist, album string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	frame := make([]byte, 417)
	frame[0], frame[1], frame[2] = 0xff, 0xfb, 0x90
	require.NoError(t, os.WriteFile(path, frame, 0o600))

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	tag.SetTitle(title)
	tag.SetArtist(artist)
	tag.SetAlbum(album)
	tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, "2")
	require.NoError(t, tag.Save())
	tag.Close()
}

func songsByPath(t *testing.T, store *state.Mock) map[string]playback.Song {
	t.Helper()
	songs, err := store.ListSongs(context.Background())
	require.NoError(t, err)
	out := make(map[string]playback.Song, len(songs))
	for _, s := range songs {
		out[s.Data] = s
	}
	return out
}

func TestScan_AddsSongs(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "Artist", "Album", "01.mp3")
	b := filepath.Join(dir, "Artist", "Album", "02.mp3")
	writeMP3(t, a, "First", "Artist", "Album")
	writeMP3(t, b, "Second", "Artist", "Album")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cover.jpg"), []byte("x"), 0o600))

	store := state.NewMock()
	stats, err := New(store).Scan(context.Background(), []string{dir})
	require.NoError(t, err)
	assert.Equal(t, Stats{Added: 2}, stats)

	songs := songsByPath(t, store)
	require.Len(t, songs, 2)
	first := songs[a]
	assert.Equal(t, "First", first.Title)
	assert.Equal(t, "Artist", first.ArtistName)
	assert.Equal(t, "Album", first.AlbumName)
	assert.Equal(t, 2, first.TrackNumber)
	assert.NotZero(t, first.ArtistID)
	assert.Equal(t, first.ArtistID, songs[b].ArtistID)
	assert.Equal(t, first.AlbumID, songs[b].AlbumID)
}

func TestScan_Incremental(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.mp3")
	b := filepath.Join(dir, "b.mp3")
	writeMP3(t, a, "A", "X", "Y")
	writeMP3(t, b, "B", "X", "Y")

	store := state.NewMock()
	lib := New(store)
	_, err := lib.Scan(context.Background(), []string{dir})
	require.NoError(t, err)

	stats, err := lib.Scan(context.Background(), []string{dir})
	require.NoError(t, err)
	assert.Equal(t, Stats{Unchanged: 2}, stats)

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(a, later, later))
	require.NoError(t, os.Remove(b))

	stats, err = lib.Scan(context.Background(), []string{dir})
	require.NoError(t, err)
	assert.Equal(t, Stats{Updated: 1, Removed: 1}, stats)

	songs := songsByPath(t, store)
	assert.Len(t, songs, 1)
	assert.Contains(t, songs, a)
}

func TestScan_FullRescan(t *testing.T) {
	dir := t.TempDir()
	writeMP3(t, filepath.Join(dir, "a.mp3"), "A", "X", "Y")

	store := state.NewMock()
	_, err := New(store).Scan(context.Background(), []string{dir})
	require.NoError(t, err)

	stats, err := New(store, WithFullRescan()).Scan(context.Background(), []string{dir})
	require.NoError(t, err)
	assert.Equal(t, Stats{Updated: 1}, stats)
}

func TestScan_KeepsSongsOutsideSources(t *testing.T) {
	dir := t.TempDir()
	writeMP3(t, filepath.Join(dir, "a.mp3"), "A", "X", "Y")

	store := state.NewMock()
	_, err := store.UpsertSongs(context.Background(), []state.SongRecord{
		{Song: playback.Song{Title: "Elsewhere", Data: "/elsewhere/song.mp3"}},
	})
	require.NoError(t, err)

	stats, err := New(store).Scan(context.Background(), []string{dir})
	require.NoError(t, err)
	assert.Zero(t, stats.Removed)
	assert.Len(t, songsByPath(t, store), 2)
}

func TestScan_UnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeMP3(t, filepath.Join(dir, "good.mp3"), "Good", "X", "Y")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.flac"), []byte("not a flac"), 0o600))

	store := state.NewMock()
	stats, err := New(store).Scan(context.Background(), []string{dir})
	require.NoError(t, err)
	assert.Equal(t, Stats{Added: 1, Failed: 1}, stats)
	assert.Len(t, songsByPath(t, store), 1)
}

func TestScan_SkipsHiddenDirs(t *testing.T) {
	dir := t.TempDir()
	writeMP3(t, filepath.Join(dir, ".trash", "a.mp3"), "A", "X", "Y")
	writeMP3(t, filepath.Join(dir, "b.mp3"), "B", "X", "Y")

	store := state.NewMock()
	stats, err := New(store).Scan(context.Background(), []string{dir})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Added)
}

func TestScan_SingleFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.mp3")
	writeMP3(t, path, "A", "X", "Y")

	store := state.NewMock()
	stats, err := New(store).Scan(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Added)
}

func TestScan_Progress(t *testing.T) {
	dir := t.TempDir()
	writeMP3(t, filepath.Join(dir, "a.mp3"), "A", "X", "Y")
	writeMP3(t, filepath.Join(dir, "b.mp3"), "B", "X", "Y")

	var mu sync.Mutex
	var phases []Phase
	lib := New(state.NewMock(), WithWorkers(1), WithProgress(func(p Progress) {
		mu.Lock()
		defer mu.Unlock()
		if len(phases) == 0 || phases[len(phases)-1] != p.Phase {
			phases = append(phases, p.Phase)
		}
	}))

	_, err := lib.Scan(context.Background(), []string{dir})
	require.NoError(t, err)
	assert.Equal(t, []Phase{PhaseScanning, PhaseProcessing, PhaseCleaning, PhaseDone}, phases)
}

func TestScan_Canceled(t *testing.T) {
	dir := t.TempDir()
	writeMP3(t, filepath.Join(dir, "a.mp3"), "A", "X", "Y")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := state.NewMock()
	_, err := New(store).Scan(ctx, []string{dir})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, songsByPath(t, store))
}

func TestScan_StoreError(t *testing.T) {
	dir := t.TempDir()
	writeMP3(t, filepath.Join(dir, "a.mp3"), "A", "X", "Y")

	store := state.NewMock()
	store.SetWriteError(assert.AnError)
	_, err := New(store).Scan(context.Background(), []string{dir})
	require.ErrorIs(t, err, assert.AnError)
}
