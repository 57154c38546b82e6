package mpdengine

import (
	"strconv"
	"time"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/samber/lo"

	"github.com/llehouerou/eddy/internal/engine"
	"github.com/llehouerou/eddy/internal/playback"
)

// driftTolerance is how far the reported elapsed time may differ from the
// extrapolated one before the change counts as a seek.
const driftTolerance = 2 * time.Second

// observation is one reading of the daemon state.
type observation struct {
	state   string // play, pause or stop
	songID  string // MPD queue id of the current song
	pos     int    // queue position of the current song, -1 if none
	song    *playback.Song
	elapsed time.Duration
	hasNext bool
	repeat  playback.RepeatMode
	random  bool
	at      time.Time
}

func (o observation) playing() bool { return o.state == "play" }

func (o observation) playbackState() engine.PlaybackState {
	if o.state == "play" || o.state == "pause" {
		return engine.StateReady
	}
	return engine.StateIdle
}

// expectedElapsed extrapolates the position at time at.
func (o observation) expectedElapsed(at time.Time) time.Duration {
	if !o.playing() {
		return o.elapsed
	}
	return o.elapsed + at.Sub(o.at)
}

func (o observation) playerState(playWhenReady bool) playback.PlayerState {
	return playback.PlayerState{
		CurrentSong:   o.song,
		IsPlaying:     o.playing(),
		PlayWhenReady: playWhenReady,
		HasNext:       o.hasNext,
		Position:      o.elapsed,
		Shuffle:       o.random,
		RepeatMode:    o.repeat,
	}
}

// resolveSong maps an MPD song to a queued song by file. Unknown files get
// a negative id derived from the MPD song id.
type resolveSong func(file string) (playback.Song, bool)

func observe(status, current mpd.Attrs, resolve resolveSong, at time.Time) observation {
	o := observation{
		state:   status["state"],
		songID:  status["songid"],
		pos:     atoi(status["song"], -1),
		elapsed: seconds(status["elapsed"]),
		hasNext: status["nextsong"] != "",
		random:  status["random"] == "1",
		at:      at,
	}

	switch {
	case status["repeat"] == "1" && status["single"] == "1":
		o.repeat = playback.RepeatOne
	case status["repeat"] == "1":
		o.repeat = playback.RepeatAll
	default:
		o.repeat = playback.RepeatOff
	}

	if file := current["file"]; file != "" && o.state != "stop" {
		s, ok := resolve(file)
		if !ok {
			s = playback.Song{
				ID:         -int64(atoi(current["Id"], 0)) - 1,
				Title:      current["Title"],
				ArtistName: current["Artist"],
				AlbumName:  current["Album"],
				Data:       file,
			}
			if s.Title == "" {
				s.Title = file
			}
		}
		if s.Duration == 0 {
			s.Duration = seconds(lo.CoalesceOrEmpty(current["duration"], status["duration"]))
		}
		o.song = &s
	}
	return o
}

// diff returns the events leading from prev to next. An EventsBatch with
// the volatile values is always last.
func diff(prev, next observation) []engine.Event {
	var events []engine.Event

	if prev.songID != next.songID || !playback.SameSong(prev.song, next.song) {
		if prev.song != nil && next.song != nil {
			reason := engine.DiscontinuitySkip
			if d := prev.song.Duration; prev.playing() && d > 0 &&
				prev.expectedElapsed(next.at) >= d-driftTolerance {
				reason = engine.DiscontinuityAutoTransition
			}
			events = append(events, engine.PositionDiscontinuity{Reason: reason, Position: next.elapsed})
		}
		events = append(events, engine.TracksChanged{Song: next.song, HasNext: next.hasNext})
	} else if next.song != nil {
		drift := next.elapsed - prev.expectedElapsed(next.at)
		if drift > driftTolerance || drift < -driftTolerance {
			events = append(events, engine.PositionDiscontinuity{
				Reason:   engine.DiscontinuitySeek,
				Position: next.elapsed,
			})
		}
	}

	if prev.playbackState() != next.playbackState() {
		events = append(events, engine.PlaybackStateChanged{State: next.playbackState()})
	}
	if prev.playing() != next.playing() {
		events = append(events, engine.IsPlayingChanged{Playing: next.playing()})
	}
	if prev.repeat != next.repeat {
		events = append(events, engine.RepeatModeChanged{Mode: next.repeat})
	}
	if prev.random != next.random {
		events = append(events, engine.ShuffleModeChanged{Enabled: next.random})
	}

	return append(events, engine.EventsBatch{
		Song:     next.song,
		HasNext:  next.hasNext,
		Position: next.elapsed,
	})
}

func atoi(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// seconds parses MPD's fractional seconds.
func seconds(s string) time.Duration {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return time.Duration(f * float64(time.Second))
}
