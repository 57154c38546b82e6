// Package playerbar renders the one-line now-playing bar.
package playerbar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/eddy/internal/playback"
	"github.com/llehouerou/eddy/internal/ui/render"
	"github.com/llehouerou/eddy/internal/ui/styles"
)

const (
	playSymbol    = "▶"
	pauseSymbol   = "⏸"
	loadingSymbol = "…"
	favoriteMark  = "♥"
	separator     = "   "
	minBarWidth   = 10
)

// Height is the rendered height including the border.
const Height = 3

// State holds everything needed to render the bar.
type State struct {
	Status   playback.Status
	Loading  bool
	Title    string
	Artist   string
	Album    string
	Year     int
	Favorite bool
	Position time.Duration
	Duration time.Duration
	Shuffle  bool
	Repeat   playback.RepeatMode
}

// NewState builds a State from a session snapshot.
func NewState(s playback.PlayerState) State {
	st := State{
		Status:   s.Status(),
		Loading:  s.IsLoading,
		Position: s.ClampedPosition(),
		Duration: s.Duration(),
		Shuffle:  s.Shuffle,
		Repeat:   s.RepeatMode,
	}
	if song := s.CurrentSong; song != nil {
		st.Title = song.Title
		st.Artist = song.ArtistName
		st.Album = song.AlbumName
		st.Year = song.Year
		st.Favorite = song.Favorite
	}
	return st
}

// Render returns the bar for the given width, or "" when stopped.
func Render(s State, width int) string {
	if !s.Status.IsActive() {
		return ""
	}
	inner := max(width-6, 0)

	title := s.Title
	if title == "" {
		title = "Unknown Track"
	}
	if s.Favorite {
		title = favoriteMark + " " + title
	}
	info := infoLine(s)
	status := statusSymbol(s)
	modes := modeFlags(s)
	timeStr := formatDuration(s.Position) + " / " + formatDuration(s.Duration)

	sepW := lipgloss.Width(separator)
	fixed := lipgloss.Width(status+"  ") + lipgloss.Width(timeStr) + sepW*2
	if modes != "" {
		fixed += lipgloss.Width(modes) + sepW
	}
	room := inner - fixed - minBarWidth

	titleW, infoW := lipgloss.Width(title), lipgloss.Width(info)
	var used int
	switch {
	case info != "" && titleW+sepW+infoW <= room:
		used = titleW + sepW + infoW
	case info != "" && titleW+sepW < room:
		info = render.Truncate(info, room-titleW-sepW)
		used = titleW + sepW + lipgloss.Width(info)
	default:
		info = ""
		title = render.Truncate(title, max(room, minBarWidth))
		used = lipgloss.Width(title)
	}
	barW := max(inner-used-fixed, 5)

	var b strings.Builder
	if s.Favorite {
		b.WriteString(styles.Heart.Render(favoriteMark))
		b.WriteString(styles.Title.Render(strings.TrimPrefix(title, favoriteMark)))
	} else {
		b.WriteString(styles.Title.Render(title))
	}
	if info != "" {
		b.WriteString(separator)
		b.WriteString(styles.Muted.Render(info))
	}
	b.WriteString(separator)
	b.WriteString(status)
	b.WriteString("  ")
	b.WriteString(progressBar(s.Position, s.Duration, barW))
	b.WriteString(separator)
	b.WriteString(styles.Muted.Render(timeStr))
	if modes != "" {
		b.WriteString(separator)
		b.WriteString(styles.Playing.Render(modes))
	}

	return styles.Panel.Padding(0, 2).Width(max(width-2, 0)).Render(b.String())
}

func infoLine(s State) string {
	var parts []string
	if s.Artist != "" {
		parts = append(parts, s.Artist)
	}
	if s.Album != "" {
		parts = append(parts, s.Album)
	}
	if s.Year > 0 {
		parts = append(parts, strconv.Itoa(s.Year))
	}
	return strings.Join(parts, " · ")
}

func statusSymbol(s State) string {
	switch {
	case s.Loading:
		return loadingSymbol
	case s.Status == playback.StatusPaused:
		return pauseSymbol
	default:
		return playSymbol
	}
}

// modeFlags renders the shuffle and repeat indicators, e.g. "⤮ ↻1".
func modeFlags(s State) string {
	var flags []string
	if s.Shuffle {
		flags = append(flags, "⤮")
	}
	switch s.Repeat {
	case playback.RepeatAll:
		flags = append(flags, "↻")
	case playback.RepeatOne:
		flags = append(flags, "↻1")
	}
	return strings.Join(flags, " ")
}

func progressBar(pos, dur time.Duration, width int) string {
	var ratio float64
	if dur > 0 {
		ratio = float64(pos) / float64(dur)
	}
	filled := min(max(int(float64(width)*ratio), 0), width)
	return styles.Playing.Render(strings.Repeat("━", filled)) +
		styles.Subtle.Render(strings.Repeat("─", width-filled))
}

func formatDuration(d time.Duration) string {
	d = max(d, 0)
	if d >= time.Hour {
		return fmt.Sprintf("%d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
	}
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
