// Package songlist is the scrollable library list the session plays from.
package songlist

import (
	"strings"

	"github.com/samber/lo"

	"github.com/llehouerou/eddy/internal/playback"
)

// ScrollMargin is the number of rows kept visible around the cursor.
const ScrollMargin = 3

// overhead is the border plus the header and its separator.
const overhead = 4

// Model is a cursor over a fixed list of songs, optionally narrowed by a
// filter query.
type Model struct {
	all       []playback.Song
	listed    map[int64]bool
	query     string
	songs     []playback.Song
	index     map[int64]int
	favorites map[int64]bool
	playingID int64
	playing   bool

	pos, offset   int
	width, height int
}

// New creates a list over songs. Favorite flags seed the favorite marks.
func New(songs []playback.Song) Model {
	listed := make(map[int64]bool, len(songs))
	favs := make(map[int64]bool)
	for _, s := range songs {
		listed[s.ID] = true
		if s.Favorite {
			favs[s.ID] = true
		}
	}
	m := Model{all: songs, listed: listed, favorites: favs}
	m.setVisible(songs)
	return m
}

func (m *Model) setVisible(songs []playback.Song) {
	m.songs = songs
	m.index = make(map[int64]int, len(songs))
	for i, s := range songs {
		m.index[s.ID] = i
	}
}

// Query returns the active filter query.
func (m Model) Query() string { return m.query }

// Total returns the number of songs regardless of the filter.
func (m Model) Total() int { return len(m.all) }

// SetFilter narrows the list to songs whose title, artist or album contain
// every word of query, ignoring case. An empty query shows everything.
// The cursor stays on the selected song when it still matches.
func (m *Model) SetFilter(query string) {
	query = strings.TrimSpace(query)
	if query == m.query {
		return
	}
	selected, hadSelection := m.Selected()
	m.query = query

	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		m.setVisible(m.all)
	} else {
		m.setVisible(lo.Filter(m.all, func(s playback.Song, _ int) bool {
			return matches(s, words)
		}))
	}

	m.pos, m.offset = 0, 0
	if hadSelection {
		if i, ok := m.index[selected.ID]; ok {
			m.pos = i
		}
	}
	m.ensureVisible()
}

func matches(s playback.Song, words []string) bool {
	hay := strings.ToLower(s.Title + "\x00" + s.ArtistName + "\x00" + s.AlbumName)
	return lo.EveryBy(words, func(w string) bool {
		return strings.Contains(hay, w)
	})
}

// Songs returns the visible songs with current favorite flags applied.
func (m Model) Songs() []playback.Song {
	out := make([]playback.Song, len(m.songs))
	for i, s := range m.songs {
		s.Favorite = m.favorites[s.ID]
		out[i] = s
	}
	return out
}

// Len returns the number of visible songs.
func (m Model) Len() int { return len(m.songs) }

// Cursor returns the cursor index.
func (m Model) Cursor() int { return m.pos }

// Offset returns the first visible index.
func (m Model) Offset() int { return m.offset }

// Selected returns the song under the cursor.
func (m Model) Selected() (playback.Song, bool) {
	if len(m.songs) == 0 {
		return playback.Song{}, false
	}
	s := m.songs[m.pos]
	s.Favorite = m.favorites[s.ID]
	return s, true
}

// Contains reports whether a song id is in the library, filtered or not.
func (m Model) Contains(id int64) bool {
	return m.listed[id]
}

// IsFavorite reports the favorite mark for a song id.
func (m Model) IsFavorite(id int64) bool { return m.favorites[id] }

// SetFavorite updates the favorite mark for a song id.
func (m *Model) SetFavorite(id int64, fav bool) {
	if fav {
		m.favorites[id] = true
		return
	}
	delete(m.favorites, id)
}

// SetPlaying marks the song the session is on. A nil song clears the mark.
func (m *Model) SetPlaying(song *playback.Song) {
	m.playing = song != nil
	if song != nil {
		m.playingID = song.ID
	}
}

// SetSize sets the outer dimensions.
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	m.ensureVisible()
}

func (m Model) rows() int {
	return max(m.height-overhead, 0)
}

// Move moves the cursor by delta, clamped to the list.
func (m *Model) Move(delta int) {
	m.JumpTo(m.pos + delta)
}

// PageDown moves half a page down.
func (m *Model) PageDown() { m.Move(max(m.rows()/2, 1)) }

// PageUp moves half a page up.
func (m *Model) PageUp() { m.Move(-max(m.rows()/2, 1)) }

// JumpTo puts the cursor on index i, clamped to the list.
func (m *Model) JumpTo(i int) {
	if len(m.songs) == 0 {
		return
	}
	m.pos = min(max(i, 0), len(m.songs)-1)
	m.ensureVisible()
}

// JumpToPlaying moves the cursor to the playing song. Returns false when
// nothing is playing or the song is not visible.
func (m *Model) JumpToPlaying() bool {
	if !m.playing {
		return false
	}
	i, ok := m.index[m.playingID]
	if ok {
		m.JumpTo(i)
	}
	return ok
}

func (m *Model) ensureVisible() {
	rows := m.rows()
	if rows <= 0 || len(m.songs) == 0 {
		return
	}
	margin := min(ScrollMargin, (rows-1)/2)
	if m.pos < m.offset+margin {
		m.offset = m.pos - margin
	}
	if m.pos >= m.offset+rows-margin {
		m.offset = m.pos - rows + margin + 1
	}
	m.offset = min(max(m.offset, 0), max(len(m.songs)-rows, 0))
}
