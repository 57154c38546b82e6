package state

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/llehouerou/eddy/internal/playback"
)

// Mock is an in-memory test double for Manager.
type Mock struct {
	mu         sync.Mutex
	songs      map[int64]SongRecord
	nextSongID int64
	history    []HistoryEntry
	playCounts map[int64]int
	favorites  map[int64]int
	repeatMode int
	shuffle    bool
	session    *LastfmSession
	pending    []PendingScrobble
	nextPendID int64
	writeErr   error
	closed     bool
}

// NewMock creates a new empty mock store.
func NewMock() *Mock {
	return &Mock{
		songs:      make(map[int64]SongRecord),
		playCounts: make(map[int64]int),
		favorites:  make(map[int64]int),
	}
}

func (m *Mock) InsertHistory(_ context.Context, songID int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.history = append(m.history, HistoryEntry{Song: m.songs[songID].Song, PlayedAt: at})
	m.history[len(m.history)-1].Song.ID = songID
	return nil
}

func (m *Mock) IncrementPlayCount(_ context.Context, songID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.playCounts[songID]++
	return nil
}

func (m *Mock) PlayCount(_ context.Context, songID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCounts[songID], nil
}

func (m *Mock) RecentHistory(_ context.Context, limit int) ([]HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := slices.Clone(m.history)
	slices.Reverse(out)
	return out[:min(limit, len(out))], nil
}

func (m *Mock) TopPlayed(_ context.Context, limit int) ([]PlayCountEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PlayCountEntry, 0, len(m.playCounts))
	for id, n := range m.playCounts {
		s := m.songs[id].Song
		s.ID = id
		out = append(out, PlayCountEntry{Song: s, Count: n})
	}
	slices.SortFunc(out, func(a, b PlayCountEntry) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Song.ID, b.Song.ID))
	})
	return out[:min(limit, len(out))], nil
}

func (m *Mock) AddFavorite(_ context.Context, songID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.favorites[songID]++
	return nil
}

func (m *Mock) RemoveFavorite(_ context.Context, songID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.favorites, songID)
	return nil
}

func (m *Mock) IsFavorite(_ context.Context, songID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.favorites[songID]
	return ok, nil
}

func (m *Mock) RepeatMode(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repeatMode, nil
}

func (m *Mock) SetRepeatMode(_ context.Context, mode int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repeatMode = mode
	return nil
}

func (m *Mock) ShuffleMode(context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shuffle, nil
}

func (m *Mock) SetShuffleMode(_ context.Context, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shuffle = enabled
	return nil
}

func (m *Mock) UpsertSongs(_ context.Context, recs []SongRecord) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	ids := make([]int64, 0, len(recs))
	for _, r := range recs {
		id := m.songIDByPathLocked(r.Data)
		if id == 0 {
			m.nextSongID++
			id = m.nextSongID
		}
		r.ID = id
		m.songs[id] = r
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *Mock) songIDByPathLocked(path string) int64 {
	for id, r := range m.songs {
		if r.Data == path {
			return id
		}
	}
	return 0
}

func (m *Mock) ListSongs(context.Context) ([]playback.Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []playback.Song
	for _, id := range slices.Sorted(maps.Keys(m.songs)) {
		s := m.songs[id].Song
		_, s.Favorite = m.favorites[id]
		out = append(out, s)
	}
	return out, nil
}

func (m *Mock) GetSong(_ context.Context, id int64) (playback.Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.songs[id]
	if !ok {
		return playback.Song{}, fmt.Errorf("%w: %d", ErrSongNotFound, id)
	}
	s := r.Song
	_, s.Favorite = m.favorites[id]
	return s, nil
}

func (m *Mock) DeleteSong(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.songs, id)
	delete(m.playCounts, id)
	delete(m.favorites, id)
	return nil
}

func (m *Mock) SongModTimes(context.Context) (map[string]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]time.Time, len(m.songs))
	for _, r := range m.songs {
		out[r.Data] = r.ModTime
	}
	return out, nil
}

func (m *Mock) LastfmSession(context.Context) (*LastfmSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, nil //nolint:nilnil // nil session means not linked
	}
	s := *m.session
	return &s, nil
}

func (m *Mock) SaveLastfmSession(_ context.Context, username, sessionKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = &LastfmSession{Username: username, SessionKey: sessionKey, LinkedAt: time.Now()}
	return nil
}

func (m *Mock) DeleteLastfmSession(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

func (m *Mock) AddPendingScrobble(_ context.Context, s PendingScrobble) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.nextPendID++
	s.ID = m.nextPendID
	s.Attempts = 0
	s.CreatedAt = time.Now()
	m.pending = append(m.pending, s)
	return nil
}

func (m *Mock) PendingScrobbles(context.Context) ([]PendingScrobble, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.pending), nil
}

func (m *Mock) DeletePendingScrobble(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = slices.DeleteFunc(m.pending, func(p PendingScrobble) bool { return p.ID == id })
	return nil
}

func (m *Mock) RecordScrobbleAttempt(_ context.Context, id int64, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.pending {
		if m.pending[i].ID == id {
			m.pending[i].Attempts++
			m.pending[i].LastError = errMsg
		}
	}
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

// SetWriteError makes history, play count, favorite, song and scrobble
// writes fail with err.
func (m *Mock) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// History returns the recorded history, oldest first.
func (m *Mock) History() []HistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.history)
}

// SetPendingAttempts overrides the attempt counter of a pending scrobble.
func (m *Mock) SetPendingAttempts(id int64, attempts int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.pending {
		if m.pending[i].ID == id {
			m.pending[i].Attempts = attempts
		}
	}
}

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
