// Package notify shows now-playing desktop notifications.
package notify

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/eddy/internal/playback"
)

// Urgency is the freedesktop notification urgency level.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

const nowPlayingTimeout = 5000 // ms

// Notification is one desktop notification.
type Notification struct {
	Title      string
	Body       string
	Icon       string // image path or icon name
	Timeout    int32  // ms, -1 = server default, 0 = never expire
	ReplacesID uint32 // 0 = new notification
	Urgency    Urgency
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify sends n and returns its id. Unavailable backends return 0, nil.
	Notify(n Notification) (uint32, error)
	Close(id uint32) error
}

// Follow shows a notification each time the playing song changes, replacing
// the previous one, until states is closed. cover maps a song locator to an
// image path and may be nil.
func Follow(n Notifier, states <-chan playback.PlayerState, cover func(string) string) {
	var (
		last *playback.Song
		id   uint32
	)
	for st := range states {
		if st.CurrentSong == nil || playback.SameSong(last, st.CurrentSong) {
			last = st.CurrentSong
			continue
		}
		last = st.CurrentSong

		notif := nowPlaying(*st.CurrentSong)
		notif.ReplacesID = id
		if cover != nil {
			notif.Icon = cover(st.CurrentSong.Data)
		}
		newID, err := n.Notify(notif)
		if err != nil {
			log.Debug().Err(err).Int64("song_id", st.CurrentSong.ID).Msg("Notification failed")
			continue
		}
		id = newID
	}
}

// discard drops notifications.
type discard struct{}

func (discard) Notify(Notification) (uint32, error) { return 0, nil }

func (discard) Close(uint32) error { return nil }

func nowPlaying(s playback.Song) Notification {
	title := s.Title
	if title == "" {
		title = "Unknown Track"
	}
	var parts []string
	for _, p := range []string{s.ArtistName, s.AlbumName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return Notification{
		Title:   title,
		Body:    strings.Join(parts, " · "),
		Icon:    "audio-x-generic",
		Timeout: nowPlayingTimeout,
		Urgency: UrgencyLow,
	}
}
