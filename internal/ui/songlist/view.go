package songlist

import (
	"fmt"
	"strings"

	"github.com/llehouerou/eddy/internal/playback"
	"github.com/llehouerou/eddy/internal/ui/render"
	"github.com/llehouerou/eddy/internal/ui/styles"
)

const (
	playingSymbol  = "▶"
	favoriteSymbol = "♥"
)

// View renders the list inside a bordered panel.
func (m Model) View() string {
	if m.width <= 2 || m.height <= overhead {
		return ""
	}
	inner := m.width - 2

	header := fmt.Sprintf("Library (%d/%d)", min(m.pos+1, len(m.songs)), len(m.songs))
	if m.query != "" {
		header += fmt.Sprintf(" of %d matching %q", len(m.all), m.query)
	}
	lines := []string{
		styles.Title.Render(render.Fit(header, inner)),
		styles.Subtle.Render(strings.Repeat("─", inner)),
	}

	for i := range m.rows() {
		idx := m.offset + i
		if idx >= len(m.songs) {
			lines = append(lines, strings.Repeat(" ", inner))
			continue
		}
		lines = append(lines, m.renderRow(idx, inner))
	}

	return styles.Panel.Width(inner).Render(strings.Join(lines, "\n"))
}

// renderRow lays out "▶ title  artist  album  3:45 ♥".
func (m Model) renderRow(idx, width int) string {
	s := m.songs[idx]

	prefix := "  "
	if m.playing && s.ID == m.playingID {
		prefix = playingSymbol + " "
	}
	suffix := "  "
	if m.favorites[s.ID] {
		suffix = " " + favoriteSymbol
	}
	dur := fmt.Sprintf(" %6s", formatDuration(s))

	content := max(width-len([]rune(prefix))-len([]rune(suffix))-len(dur), 0)
	titleW := content * 2 / 5
	artistW := content * 3 / 10
	albumW := content - titleW - artistW

	title := s.Title
	if title == "" {
		title = "Unknown Track"
	}
	line := prefix +
		render.Fit(title, titleW) +
		render.Fit(s.ArtistName, artistW) +
		render.Fit(s.AlbumName, albumW) +
		dur + suffix

	switch {
	case idx == m.pos:
		return styles.Cursor.Render(line)
	case m.playing && s.ID == m.playingID:
		return styles.Playing.Render(line)
	default:
		return styles.Base.Render(line)
	}
}

func formatDuration(s playback.Song) string {
	if s.Duration <= 0 {
		return "--:--"
	}
	secs := int(s.Duration.Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
