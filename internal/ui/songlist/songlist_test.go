package songlist

import (
	"fmt"
	"testing"
	"time"

	"github.com/llehouerou/eddy/internal/playback"
	"github.com/llehouerou/eddy/internal/ui/testutil"
)

func makeSongs(n int) []playback.Song {
	songs := make([]playback.Song, n)
	for i := range songs {
		songs[i] = playback.Song{
			ID:         int64(i + 1),
			Title:      fmt.Sprintf("Song %02d", i+1),
			ArtistName: "Artist",
			AlbumName:  "Album",
			Duration:   3*time.Minute + time.Duration(i)*time.Second,
		}
	}
	return songs
}

func TestMove_Clamps(t *testing.T) {
	m := New(makeSongs(5))
	m.SetSize(80, 20)

	m.Move(-1)
	if m.Cursor() != 0 {
		t.Errorf("Cursor = %d, want 0", m.Cursor())
	}
	m.Move(10)
	if m.Cursor() != 4 {
		t.Errorf("Cursor = %d, want 4", m.Cursor())
	}
}

func TestMove_EmptyList(t *testing.T) {
	m := New(nil)
	m.SetSize(80, 20)
	m.Move(1)
	if _, ok := m.Selected(); ok {
		t.Error("Selected on empty list returned ok")
	}
	if m.View() == "" {
		t.Error("View of empty list should still render the panel")
	}
}

func TestScrollKeepsCursorVisible(t *testing.T) {
	m := New(makeSongs(100))
	m.SetSize(80, 14) // 10 rows

	m.JumpTo(50)
	if m.Cursor() < m.Offset() || m.Cursor() >= m.Offset()+m.rows() {
		t.Fatalf("cursor %d not in [%d, %d)", m.Cursor(), m.Offset(), m.Offset()+m.rows())
	}
	if m.Cursor()-m.Offset() < ScrollMargin {
		t.Errorf("cursor within margin of top: offset %d", m.Offset())
	}

	m.JumpTo(99)
	if m.Offset() != 90 {
		t.Errorf("Offset at end = %d, want 90", m.Offset())
	}
	m.JumpTo(0)
	if m.Offset() != 0 {
		t.Errorf("Offset at start = %d, want 0", m.Offset())
	}
}

func TestPageMoves(t *testing.T) {
	m := New(makeSongs(100))
	m.SetSize(80, 14)
	m.PageDown()
	if m.Cursor() != 5 {
		t.Errorf("Cursor after PageDown = %d, want 5", m.Cursor())
	}
	m.PageUp()
	if m.Cursor() != 0 {
		t.Errorf("Cursor after PageUp = %d, want 0", m.Cursor())
	}
}

func TestFavorites(t *testing.T) {
	songs := makeSongs(3)
	songs[1].Favorite = true
	m := New(songs)

	if !m.IsFavorite(2) {
		t.Error("seeded favorite lost")
	}
	m.SetFavorite(2, false)
	m.SetFavorite(3, true)

	got := m.Songs()
	if got[1].Favorite || !got[2].Favorite {
		t.Errorf("Songs favorites = %v %v %v", got[0].Favorite, got[1].Favorite, got[2].Favorite)
	}
	if !songs[1].Favorite {
		t.Error("input slice was modified")
	}
}

func TestJumpToPlaying(t *testing.T) {
	songs := makeSongs(10)
	m := New(songs)
	m.SetSize(80, 20)

	if m.JumpToPlaying() {
		t.Error("JumpToPlaying with nothing playing returned true")
	}
	m.SetPlaying(&songs[6])
	if !m.JumpToPlaying() || m.Cursor() != 6 {
		t.Errorf("JumpToPlaying: cursor = %d, want 6", m.Cursor())
	}
	m.SetPlaying(&playback.Song{ID: 999})
	if m.JumpToPlaying() {
		t.Error("JumpToPlaying for unlisted song returned true")
	}
}

func TestView(t *testing.T) {
	songs := makeSongs(3)
	songs[2].Favorite = true
	m := New(songs)
	m.SetSize(90, 10)
	m.SetPlaying(&songs[1])

	out := m.View()
	testutil.Contains(t, out, "Library (1/3)", "Song 01", "3:01")
	if line := testutil.FindLine(out, "Song 02"); line == "" || !containsRune(line, '▶') {
		t.Errorf("playing row not marked: %q", line)
	}
	if line := testutil.FindLine(out, "Song 03"); !containsRune(line, '♥') {
		t.Errorf("favorite row not marked: %q", line)
	}
	lines := testutil.Lines(out)
	if len(lines) != 10 {
		t.Errorf("rendered %d lines, want 10", len(lines))
	}
	for _, l := range lines {
		if w := testutil.Width(l); w != 90 {
			t.Errorf("line width = %d, want 90: %q", w, l)
		}
	}
}

func TestSetFilter(t *testing.T) {
	songs := []playback.Song{
		{ID: 1, Title: "Blue Monday", ArtistName: "New Order", AlbumName: "Power"},
		{ID: 2, Title: "Ceremony", ArtistName: "New Order", AlbumName: "Substance"},
		{ID: 3, Title: "Atmosphere", ArtistName: "Joy Division", AlbumName: "Substance"},
	}
	m := New(songs)
	m.SetSize(80, 20)
	m.JumpTo(1)

	m.SetFilter("new order")
	if m.Len() != 2 || m.Total() != 3 {
		t.Fatalf("Len/Total = %d/%d, want 2/3", m.Len(), m.Total())
	}
	if sel, _ := m.Selected(); sel.ID != 2 {
		t.Errorf("cursor moved off matching song: selected %d", sel.ID)
	}

	m.SetFilter("SUBSTANCE joy")
	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1", m.Len())
	}
	if sel, _ := m.Selected(); sel.ID != 3 {
		t.Errorf("selected %d, want 3", sel.ID)
	}
	if !m.Contains(1) {
		t.Error("Contains should cover filtered-out songs")
	}
	testutil.Contains(t, m.View(), `Library (1/1) of 3 matching "SUBSTANCE joy"`)

	m.SetFilter("nothing")
	if m.Len() != 0 {
		t.Errorf("Len = %d, want 0", m.Len())
	}
	if _, ok := m.Selected(); ok {
		t.Error("Selected on empty result returned ok")
	}

	m.SetFilter("  ")
	if m.Len() != 3 || m.Query() != "" {
		t.Errorf("clearing filter: Len = %d, Query = %q", m.Len(), m.Query())
	}
}

func TestFormatDuration_Unknown(t *testing.T) {
	if got := formatDuration(playback.Song{}); got != "--:--" {
		t.Errorf("formatDuration(0) = %q", got)
	}
}

func containsRune(s string, r rune) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}
