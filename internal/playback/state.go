// internal/playback/state.go
package playback

import "time"

// Status is the coarse transport status derived from a PlayerState.
type Status int

const (
	StatusStopped Status = iota
	StatusPlaying
	StatusPaused
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "Stopped"
	case StatusPlaying:
		return "Playing"
	case StatusPaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if a song is loaded (playing or paused).
func (s Status) IsActive() bool {
	return s == StatusPlaying || s == StatusPaused
}

// RepeatMode defines the repeat behavior.
// Values are persisted as integers and must stay stable.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatOne
	RepeatAll
)

// String returns the repeat mode name.
func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "Off"
	case RepeatOne:
		return "One"
	case RepeatAll:
		return "All"
	default:
		return "Unknown"
	}
}

// Valid reports whether m is one of the known modes.
func (m RepeatMode) Valid() bool {
	return m >= RepeatOff && m <= RepeatAll
}

// Next returns the mode following m in the Off → All → One → Off cycle.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}

// PlayerState is one snapshot of the playback session.
// Snapshots are values; CurrentSong points to a Song that is never mutated
// once published.
type PlayerState struct {
	CurrentSong   *Song
	IsPlaying     bool
	IsLoading     bool
	PlayWhenReady bool
	HasNext       bool
	Position      time.Duration
	Shuffle       bool
	RepeatMode    RepeatMode
}

// Active reports whether the engine is actually advancing through audio.
func (s PlayerState) Active() bool {
	return !s.IsLoading && s.IsPlaying
}

// ClampedPosition returns Position clamped to [0, CurrentSong.Duration].
// A zero duration means unknown and leaves the upper bound open.
func (s PlayerState) ClampedPosition() time.Duration {
	pos := max(s.Position, 0)
	if s.CurrentSong != nil && s.CurrentSong.Duration > 0 {
		pos = min(pos, s.CurrentSong.Duration)
	}
	return pos
}

// Status derives the coarse transport status.
func (s PlayerState) Status() Status {
	switch {
	case s.CurrentSong == nil:
		return StatusStopped
	case s.IsPlaying, s.PlayWhenReady && s.IsLoading:
		return StatusPlaying
	default:
		return StatusPaused
	}
}

// Duration returns the current song duration, or 0 with no song loaded.
func (s PlayerState) Duration() time.Duration {
	if s.CurrentSong == nil {
		return 0
	}
	return s.CurrentSong.Duration
}
