package engine

import (
	"time"

	"github.com/llehouerou/eddy/internal/playback"
)

// Event is one engine notification. The set of variants is closed.
type Event interface {
	event()
}

// PlaybackState is the engine's media pipeline state.
type PlaybackState int

const (
	StateIdle PlaybackState = iota
	StateBuffering
	StateReady
	StateEnded
)

// String returns the state name.
func (s PlaybackState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateBuffering:
		return "Buffering"
	case StateReady:
		return "Ready"
	case StateEnded:
		return "Ended"
	default:
		return "Unknown"
	}
}

// DiscontinuityReason explains a jump in playback position.
type DiscontinuityReason int

const (
	DiscontinuityAutoTransition DiscontinuityReason = iota
	DiscontinuitySeek
	DiscontinuitySeekAdjustment
	DiscontinuitySkip
	DiscontinuityRemove
	DiscontinuityInternal
)

// String returns the reason name.
func (r DiscontinuityReason) String() string {
	switch r {
	case DiscontinuityAutoTransition:
		return "AutoTransition"
	case DiscontinuitySeek:
		return "Seek"
	case DiscontinuitySeekAdjustment:
		return "SeekAdjustment"
	case DiscontinuitySkip:
		return "Skip"
	case DiscontinuityRemove:
		return "Remove"
	case DiscontinuityInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// EventsBatch is emitted after a group of changes and carries the volatile
// values the engine observed at that point.
type EventsBatch struct {
	Song     *playback.Song
	HasNext  bool
	Position time.Duration
}

// PlayWhenReadyChanged is emitted when the play-when-ready intent changes.
type PlayWhenReadyChanged struct {
	PlayWhenReady bool
}

// PlaybackStateChanged is emitted when the pipeline state changes.
type PlaybackStateChanged struct {
	State PlaybackState
}

// TracksChanged is emitted when the loaded song or the queue changes.
type TracksChanged struct {
	Song    *playback.Song
	HasNext bool
}

// IsPlayingChanged is emitted when audio starts or stops advancing.
type IsPlayingChanged struct {
	Playing bool
}

// IsLoadingChanged is emitted when the engine starts or stops loading media.
type IsLoadingChanged struct {
	Loading bool
}

// PositionDiscontinuity is emitted when the position jumps.
type PositionDiscontinuity struct {
	Reason   DiscontinuityReason
	Position time.Duration
}

// RepeatModeChanged is emitted when the repeat mode changes.
type RepeatModeChanged struct {
	Mode playback.RepeatMode
}

// ShuffleModeChanged is emitted when shuffle is toggled.
type ShuffleModeChanged struct {
	Enabled bool
}

func (EventsBatch) event()           {}
func (PlayWhenReadyChanged) event()  {}
func (PlaybackStateChanged) event()  {}
func (TracksChanged) event()         {}
func (IsPlayingChanged) event()      {}
func (IsLoadingChanged) event()      {}
func (PositionDiscontinuity) event() {}
func (RepeatModeChanged) event()     {}
func (ShuffleModeChanged) event()    {}
