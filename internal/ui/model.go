// Package ui is the terminal front end of a playback session.
package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/llehouerou/eddy/internal/errmsg"
	"github.com/llehouerou/eddy/internal/keymap"
	"github.com/llehouerou/eddy/internal/playback"
	"github.com/llehouerou/eddy/internal/session"
	"github.com/llehouerou/eddy/internal/ui/songlist"
)

const (
	seekStep        = 5 * time.Second
	favoriteTimeout = 5 * time.Second
	statusTTL       = 4 * time.Second
)

// Session is the part of a playback session the UI drives.
type Session interface {
	State() playback.PlayerState
	Subscribe(ctx context.Context) *session.Stream
	OnPlay(index int, songs []playback.Song)
	TogglePlayPause(st playback.PlayerState)
	Stop()
	Next()
	Previous()
	SeekBy(delta time.Duration)
	ToggleRepeat() playback.RepeatMode
	ToggleShuffle() bool
	ToggleFavorite(ctx context.Context, song playback.Song) (bool, error)
}

// StateMsg carries a new session snapshot.
type StateMsg struct {
	State playback.PlayerState
}

// StreamEndedMsg reports that the session state stream ended.
type StreamEndedMsg struct {
	Err error
}

// FavoriteMsg reports the outcome of a favorite toggle.
type FavoriteMsg struct {
	SongID   int64
	Favorite bool
	Err      error
}

// ModeMsg reports a repeat or shuffle change, persisted off the update loop.
type ModeMsg struct {
	Status string
}

type clearStatusMsg struct {
	version int
}

// Model is the root bubbletea model.
type Model struct {
	sess   Session
	stream *session.Stream
	keys   *keymap.Resolver

	list      songlist.Model
	state     playback.PlayerState
	filter    textinput.Model
	filtering bool

	status        string
	statusErr     bool
	statusVersion int
	showHelp      bool
	width, height int
}

// New creates the UI for sess over songs. stream must come from
// sess.Subscribe and is drained by the model until it ends.
func New(sess Session, stream *session.Stream, songs []playback.Song) Model {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "title, artist or album"
	ti.CharLimit = 128

	m := Model{
		sess:   sess,
		stream: stream,
		keys:   keymap.NewResolver(keymap.Default),
		list:   songlist.New(songs),
		state:  sess.State(),
		filter: ti,
	}
	m.list.SetPlaying(m.state.CurrentSong)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return WaitForState(m.stream)
}

// WaitForState returns a command that delivers the next snapshot from
// stream, or StreamEndedMsg once it ends.
func WaitForState(stream *session.Stream) tea.Cmd {
	if stream == nil {
		return nil
	}
	return func() tea.Msg {
		st, ok := <-stream.States
		if !ok {
			return StreamEndedMsg{Err: stream.Err()}
		}
		return StateMsg{State: st}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case StateMsg:
		m.state = msg.State
		m.list.SetPlaying(msg.State.CurrentSong)
		return m, WaitForState(m.stream)

	case StreamEndedMsg:
		if msg.Err == nil || errors.Is(msg.Err, context.Canceled) || errors.Is(msg.Err, session.ErrClosed) {
			return m, tea.Quit
		}
		log.Error().Err(msg.Err).Msg("Session stream ended")
		return m, m.setError(errmsg.Format(errmsg.OpSessionEnded, msg.Err))

	case FavoriteMsg:
		if msg.Err != nil {
			return m, m.setError(errmsg.Format(errmsg.OpFavoriteToggle, msg.Err))
		}
		m.list.SetFavorite(msg.SongID, msg.Favorite)
		if msg.Favorite {
			return m, m.setStatus("Added to favorites")
		}
		return m, m.setStatus("Removed from favorites")

	case ModeMsg:
		return m, m.setStatus(msg.Status)

	case clearStatusMsg:
		if msg.version == m.statusVersion {
			m.status, m.statusErr = "", false
		}
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.handleFilterKey(msg)
		}
		return m.handleKey(msg.String())
	}

	if m.filtering {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleFilterKey edits the filter query. Enter keeps the result, escape
// drops it.
func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		return m, nil
	case tea.KeyEsc:
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.list.SetFilter("")
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.list.SetFilter(m.filter.Value())
	return m, cmd
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	if key == "esc" && m.list.Query() != "" {
		m.filter.SetValue("")
		m.list.SetFilter("")
		return m, nil
	}

	switch m.keys.Resolve(key) {
	case keymap.ActionQuit:
		return m, tea.Quit
	case keymap.ActionHelp:
		m.showHelp = !m.showHelp
		m.layout()

	case keymap.ActionMoveUp:
		m.list.Move(-1)
	case keymap.ActionMoveDown:
		m.list.Move(1)
	case keymap.ActionPageUp:
		m.list.PageUp()
	case keymap.ActionPageDown:
		m.list.PageDown()
	case keymap.ActionJumpStart:
		m.list.JumpTo(0)
	case keymap.ActionJumpEnd:
		m.list.JumpTo(m.list.Len() - 1)
	case keymap.ActionJumpToNow:
		m.list.JumpToPlaying()
	case keymap.ActionFilter:
		m.filtering = true
		m.filter.SetValue(m.list.Query())
		m.filter.CursorEnd()
		return m, m.filter.Focus()
	case keymap.ActionSelect:
		if m.list.Len() > 0 {
			m.sess.OnPlay(m.list.Cursor(), m.list.Songs())
		}

	case keymap.ActionPlayPause:
		if m.state.CurrentSong == nil {
			return m, nil
		}
		m.sess.TogglePlayPause(m.state)
	case keymap.ActionStop:
		m.sess.Stop()
	case keymap.ActionNextTrack:
		m.sess.Next()
	case keymap.ActionPrevTrack:
		m.sess.Previous()
	case keymap.ActionSeekForward:
		m.sess.SeekBy(seekStep)
	case keymap.ActionSeekBack:
		m.sess.SeekBy(-seekStep)
	case keymap.ActionCycleRepeat:
		sess := m.sess
		return m, func() tea.Msg {
			return ModeMsg{Status: "Repeat: " + sess.ToggleRepeat().String()}
		}
	case keymap.ActionToggleShuffle:
		sess := m.sess
		return m, func() tea.Msg {
			if sess.ToggleShuffle() {
				return ModeMsg{Status: "Shuffle: On"}
			}
			return ModeMsg{Status: "Shuffle: Off"}
		}
	case keymap.ActionToggleFavorite:
		return m, m.toggleFavorite()
	}
	return m, nil
}

// toggleFavorite targets the playing song, or the selected one when
// nothing is playing.
func (m Model) toggleFavorite() tea.Cmd {
	var song playback.Song
	if cur := m.state.CurrentSong; cur != nil {
		song = *cur
	} else if sel, ok := m.list.Selected(); ok {
		song = sel
	} else {
		return nil
	}
	sess := m.sess
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), favoriteTimeout)
		defer cancel()
		fav, err := sess.ToggleFavorite(ctx, song)
		return FavoriteMsg{SongID: song.ID, Favorite: fav, Err: err}
	}
}

func (m *Model) setStatus(text string) tea.Cmd {
	m.status, m.statusErr = text, false
	return m.expireStatus()
}

func (m *Model) setError(text string) tea.Cmd {
	m.status, m.statusErr = text, true
	return m.expireStatus()
}

func (m *Model) expireStatus() tea.Cmd {
	m.statusVersion++
	v := m.statusVersion
	return tea.Tick(statusTTL, func(time.Time) tea.Msg { return clearStatusMsg{version: v} })
}

func (m *Model) layout() {
	m.list.SetSize(m.width, max(m.height-m.chromeHeight(), 0))
	m.filter.Width = max(m.width-4, 1)
}

// Filtering reports whether the filter query is being edited.
func (m Model) Filtering() bool {
	return m.filtering
}

// Status returns the status line text and whether it is an error.
func (m Model) Status() (string, bool) {
	return m.status, m.statusErr
}

// State returns the last snapshot the model received.
func (m Model) State() playback.PlayerState {
	return m.state
}
