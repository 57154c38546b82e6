package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/eddy/internal/keymap"
	"github.com/llehouerou/eddy/internal/ui/playerbar"
	"github.com/llehouerou/eddy/internal/ui/render"
	"github.com/llehouerou/eddy/internal/ui/styles"
)

const appName = "eddy"

// chromeHeight is everything around the song list: the header, the player
// bar and the status line, plus the help line when shown.
func (m Model) chromeHeight() int {
	h := 1 + playerbar.Height + 1
	if m.showHelp {
		h++
	}
	return h
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	sections := []string{m.renderHeader(), m.list.View(), m.renderPlayerBar()}
	if m.showHelp {
		sections = append(sections, styles.Muted.Render(render.Fit(m.helpLine(), m.width)))
	}
	sections = append(sections, m.renderStatus())
	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	left := styles.Gradient(appName, styles.P().Accent, styles.P().AccentAlt)
	right := styles.Muted.Render(fmt.Sprintf("%d songs · %s ", m.list.Len(), m.state.Status()))
	return render.Row(" "+left, right, m.width)
}

func (m Model) renderPlayerBar() string {
	st := playerbar.NewState(m.state)
	if cur := m.state.CurrentSong; cur != nil && m.list.Contains(cur.ID) {
		st.Favorite = m.list.IsFavorite(cur.ID)
	}
	bar := playerbar.Render(st, m.width)
	if bar == "" {
		return strings.Repeat("\n", playerbar.Height-1)
	}
	return bar
}

func (m Model) renderStatus() string {
	if m.filtering {
		return lipgloss.NewStyle().Width(m.width).MaxWidth(m.width).Render(" " + m.filter.View())
	}
	if m.status == "" {
		return styles.Subtle.Render(render.Fit(" ? help", m.width))
	}
	text := render.Fit(" "+m.status, m.width)
	if m.statusErr {
		return styles.Error.Render(text)
	}
	return styles.Muted.Render(text)
}

func (m Model) helpLine() string {
	return " " + m.keys.Help(
		keymap.ActionSelect,
		keymap.ActionFilter,
		keymap.ActionPlayPause,
		keymap.ActionNextTrack,
		keymap.ActionPrevTrack,
		keymap.ActionSeekForward,
		keymap.ActionSeekBack,
		keymap.ActionCycleRepeat,
		keymap.ActionToggleShuffle,
		keymap.ActionToggleFavorite,
		keymap.ActionStop,
		keymap.ActionQuit,
	)
}
