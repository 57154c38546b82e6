//go:build linux

package mpris

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/rs/zerolog/log"

	"github.com/llehouerou/eddy/internal/playback"
)

const busName = "eddy"

// Adapter connects a session to MPRIS over D-Bus.
type Adapter struct {
	server   *server.Server
	cancel   context.CancelFunc
	followed chan struct{}
}

// New starts serving MPRIS for c until Close or ctx ends.
func New(ctx context.Context, c Controls) (*Adapter, error) {
	ctx, cancel := context.WithCancel(ctx)
	snap := &snapshot{}
	stream := c.Subscribe(ctx)

	a := &Adapter{
		server:   server.NewServer(busName, &rootAdapter{}, &playerAdapter{controls: c, snap: snap}),
		cancel:   cancel,
		followed: make(chan struct{}),
	}

	go func() {
		defer close(a.followed)
		snap.follow(stream.States)
	}()

	go func() {
		if err := a.server.Listen(); err != nil {
			log.Warn().Err(err).Msg("MPRIS server stopped")
		}
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	a.cancel()
	<-a.followed
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Eddy", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter and optional interfaces.
type playerAdapter struct {
	controls Controls
	snap     *snapshot
}

func (p *playerAdapter) Next() error {
	p.controls.Next()
	return nil
}

func (p *playerAdapter) Previous() error {
	p.controls.Previous()
	return nil
}

func (p *playerAdapter) Pause() error {
	p.controls.Pause()
	return nil
}

func (p *playerAdapter) PlayPause() error {
	p.controls.TogglePlayPause(p.snap.get())
	return nil
}

func (p *playerAdapter) Stop() error {
	p.controls.Stop()
	return nil
}

func (p *playerAdapter) Play() error {
	if !p.snap.get().IsPlaying {
		p.controls.Resume()
	}
	return nil
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	p.controls.SeekBy(time.Duration(offset) * time.Microsecond)
	return nil
}

func (p *playerAdapter) SetPosition(trackID string, position types.Microseconds) error {
	song := p.snap.get().CurrentSong
	if song == nil || trackID != formatTrackID(song.ID) {
		return nil // Stale request for another track
	}
	p.controls.Seek(time.Duration(position) * time.Microsecond)
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.snap.get().Status() {
	case playback.StatusPlaying:
		return types.PlaybackStatusPlaying, nil
	case playback.StatusPaused:
		return types.PlaybackStatusPaused, nil
	}
	return types.PlaybackStatusStopped, nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	song := p.snap.get().CurrentSong
	if song == nil {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId:     dbus.ObjectPath(formatTrackID(song.ID)),
		Length:      types.Microseconds(song.Duration.Microseconds()),
		Title:       song.Title,
		Album:       song.AlbumName,
		TrackNumber: song.TrackNumber,
	}
	if song.ArtistName != "" {
		meta.Artist = []string{song.ArtistName}
	}
	if artPath := FindAlbumArt(song.Data); artPath != "" {
		meta.ArtUrl = "file://" + artPath
	}

	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetVolume(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Position() (int64, error) {
	return p.snap.get().ClampedPosition().Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return p.snap.get().HasNext, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return p.snap.get().CurrentSong != nil, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.snap.get().CurrentSong != nil, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return p.snap.get().Duration() > 0, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	switch p.snap.get().RepeatMode {
	case playback.RepeatOne:
		return types.LoopStatusTrack, nil
	case playback.RepeatAll:
		return types.LoopStatusPlaylist, nil
	}
	return types.LoopStatusNone, nil
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	switch status {
	case types.LoopStatusNone:
		p.controls.SetRepeatMode(playback.RepeatOff)
	case types.LoopStatusTrack:
		p.controls.SetRepeatMode(playback.RepeatOne)
	case types.LoopStatusPlaylist:
		p.controls.SetRepeatMode(playback.RepeatAll)
	}
	return nil
}

// Shuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) Shuffle() (bool, error) {
	return p.snap.get().Shuffle, nil
}

// SetShuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) SetShuffle(shuffle bool) error {
	p.controls.SetShuffle(shuffle)
	return nil
}

func formatTrackID(songID int64) string {
	if songID < 0 {
		return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/r%d", -songID)
	}
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%d", songID)
}
