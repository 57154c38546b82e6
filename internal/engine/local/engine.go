// Package local plays files on this machine through the system audio device.
package local

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/eddy/internal/engine"
	"github.com/llehouerou/eddy/internal/playback"
	"github.com/llehouerou/eddy/internal/playlist"
)

// Engine implements engine.Engine with an in-process decoder.
// Operations queue their events under mu; a single flusher delivers them
// afterwards, in order, with mu released.
type Engine struct {
	engine.Listeners

	emitMu sync.Mutex
	outbox []engine.Event

	mu            sync.Mutex
	out           output
	queue         *playlist.Queue
	playWhenReady bool
	loaded        bool
	loading       bool
	state         engine.PlaybackState
	startPos      time.Duration
	gen           uint64
}

// New creates an engine playing through the speaker.
func New() *Engine {
	return newEngine(&speakerOutput{})
}

func newEngine(out output) *Engine {
	return &Engine{out: out, queue: playlist.NewQueue()}
}

// pending collects events while mu is held.
type pending []engine.Event

func (p *pending) add(ev ...engine.Event) { *p = append(*p, ev...) }

func (e *Engine) do(fn func(p *pending) error) error {
	e.mu.Lock()
	var p pending
	err := fn(&p)
	if len(p) > 0 {
		p.add(e.batchLocked())
		e.outbox = append(e.outbox, p...)
	}
	e.mu.Unlock()
	e.flush()
	return err
}

func (e *Engine) batchLocked() engine.EventsBatch {
	b := engine.EventsBatch{Song: e.queue.Current().Clone(), HasNext: e.queue.HasNext()}
	if e.loaded {
		b.Position = e.out.Position()
	}
	return b
}

// flush delivers queued events. Whoever holds emitMu drains for everyone.
func (e *Engine) flush() {
	for {
		if !e.emitMu.TryLock() {
			return
		}
		for {
			e.mu.Lock()
			batch := e.outbox
			e.outbox = nil
			e.mu.Unlock()
			if len(batch) == 0 {
				break
			}
			e.Emit(batch...)
		}
		e.emitMu.Unlock()

		e.mu.Lock()
		empty := len(e.outbox) == 0
		e.mu.Unlock()
		if empty {
			return
		}
	}
}

func (e *Engine) playing() bool {
	return e.loaded && e.playWhenReady && e.state == engine.StateReady
}

// setState changes pipeline state and play status, recording the events.
func (e *Engine) setState(p *pending, state engine.PlaybackState, apply func()) {
	wasPlaying := e.playing()
	prevState := e.state
	apply()
	e.state = state
	if prevState != state {
		p.add(engine.PlaybackStateChanged{State: state})
	}
	if now := e.playing(); now != wasPlaying {
		p.add(engine.IsPlayingChanged{Playing: now})
	}
}

func (e *Engine) tracksChanged(p *pending) {
	p.add(engine.TracksChanged{Song: e.queue.Current().Clone(), HasNext: e.queue.HasNext()})
}

func (e *Engine) unload(p *pending) {
	if !e.loaded {
		return
	}
	e.gen++
	e.out.Unload()
	e.setState(p, engine.StateIdle, func() { e.loaded = false })
}

// load opens the current song and starts it if play-when-ready is set.
func (e *Engine) load(p *pending) error {
	e.unload(p)
	song := e.queue.Current()
	if song == nil {
		return nil
	}

	e.loading = true
	p.add(engine.IsLoadingChanged{Loading: true})
	e.setState(p, engine.StateBuffering, func() {})

	e.gen++
	gen := e.gen
	_, err := e.out.Load(song.Data, func() {
		go e.finished(gen)
	})
	e.loading = false
	p.add(engine.IsLoadingChanged{Loading: false})
	if err != nil {
		e.setState(p, engine.StateIdle, func() {})
		return err
	}

	if e.startPos > 0 {
		if err := e.out.Seek(e.startPos); err != nil {
			log.Warn().Err(err).Dur("position", e.startPos).Msg("Start position seek failed")
		}
		e.startPos = 0
	}
	e.setState(p, engine.StateReady, func() { e.loaded = true })
	e.out.SetPaused(!e.playWhenReady)
	return nil
}

// finished runs when the song reached its end on its own.
func (e *Engine) finished(gen uint64) {
	_ = e.do(func(p *pending) error {
		if gen != e.gen || !e.loaded {
			return nil
		}
		next := e.queue.Advance()
		if next == nil {
			e.gen++
			e.out.Unload()
			e.setState(p, engine.StateEnded, func() { e.loaded = false })
			return nil
		}
		p.add(engine.PositionDiscontinuity{Reason: engine.DiscontinuityAutoTransition})
		e.tracksChanged(p)
		if err := e.load(p); err != nil {
			log.Warn().Err(err).Str("path", next.Data).Msg("Failed to load next song")
		}
		return nil
	})
}

func (e *Engine) SetQueue(songs []playback.Song) error {
	return e.do(func(p *pending) error {
		e.unload(p)
		e.queue.Replace(songs)
		e.startPos = 0
		e.tracksChanged(p)
		return nil
	})
}

func (e *Engine) SeekToIndex(index int, position time.Duration) error {
	return e.do(func(p *pending) error {
		prev := e.queue.Current().Clone()
		if e.queue.JumpTo(index) == nil {
			return nil
		}
		e.startPos = max(position, 0)
		if !playback.SameSong(prev, e.queue.Current()) {
			e.tracksChanged(p)
			if e.loaded {
				return e.load(p)
			}
			return nil
		}
		if e.loaded {
			return e.seekLocked(p, e.startPos)
		}
		return nil
	})
}

func (e *Engine) SetPlayWhenReady(play bool) error {
	return e.do(func(p *pending) error {
		e.setPlayWhenReady(p, play)
		return nil
	})
}

func (e *Engine) setPlayWhenReady(p *pending, play bool) {
	if e.playWhenReady == play {
		return
	}
	p.add(engine.PlayWhenReadyChanged{PlayWhenReady: play})
	e.setState(p, e.state, func() { e.playWhenReady = play })
	if e.loaded {
		e.out.SetPaused(!play)
	}
}

func (e *Engine) Prepare() error {
	return e.do(func(p *pending) error {
		if e.loaded {
			return nil
		}
		return e.load(p)
	})
}

func (e *Engine) Play() error {
	return e.do(func(p *pending) error {
		e.setPlayWhenReady(p, true)
		if !e.loaded {
			return e.load(p)
		}
		return nil
	})
}

func (e *Engine) Pause() error {
	return e.SetPlayWhenReady(false)
}

func (e *Engine) Resume() error {
	return e.Play()
}

func (e *Engine) Stop() error {
	return e.do(func(p *pending) error {
		e.setPlayWhenReady(p, false)
		e.unload(p)
		return nil
	})
}

func (e *Engine) Seek(position time.Duration) error {
	return e.do(func(p *pending) error {
		if !e.loaded {
			e.startPos = max(position, 0)
			return nil
		}
		return e.seekLocked(p, position)
	})
}

func (e *Engine) seekLocked(p *pending, position time.Duration) error {
	position = max(position, 0)
	if err := e.out.Seek(position); err != nil {
		return err
	}
	p.add(engine.PositionDiscontinuity{Reason: engine.DiscontinuitySeek, Position: position})
	return nil
}

func (e *Engine) Next() error {
	return e.move(e.queue.Next)
}

func (e *Engine) Previous() error {
	return e.move(e.queue.Previous)
}

func (e *Engine) move(step func() *playback.Song) error {
	return e.do(func(p *pending) error {
		if step() == nil {
			return nil
		}
		wasLoaded := e.loaded
		p.add(engine.PositionDiscontinuity{Reason: engine.DiscontinuitySkip})
		e.tracksChanged(p)
		e.startPos = 0
		if wasLoaded {
			return e.load(p)
		}
		return nil
	})
}

func (e *Engine) SetRepeatMode(mode playback.RepeatMode) error {
	return e.do(func(p *pending) error {
		if e.queue.RepeatMode() == mode {
			return nil
		}
		e.queue.SetRepeatMode(mode)
		p.add(engine.RepeatModeChanged{Mode: mode})
		e.tracksChanged(p)
		return nil
	})
}

func (e *Engine) SetShuffle(enabled bool) error {
	return e.do(func(p *pending) error {
		if e.queue.Shuffle() == enabled {
			return nil
		}
		e.queue.SetShuffle(enabled)
		p.add(engine.ShuffleModeChanged{Enabled: enabled})
		e.tracksChanged(p)
		return nil
	})
}

func (e *Engine) HasNext() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.HasNext()
}

func (e *Engine) HasPrevious() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.HasPrevious()
}

func (e *Engine) Snapshot() playback.PlayerState {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := playback.PlayerState{
		CurrentSong:   e.queue.Current().Clone(),
		IsPlaying:     e.playing(),
		IsLoading:     e.loading,
		PlayWhenReady: e.playWhenReady,
		HasNext:       e.queue.HasNext(),
		Shuffle:       e.queue.Shuffle(),
		RepeatMode:    e.queue.RepeatMode(),
	}
	if e.loaded {
		s.Position = e.out.Position()
	}
	return s
}

// Close stops playback and releases the current file.
func (e *Engine) Close() error {
	return e.Stop()
}

var _ engine.Engine = (*Engine)(nil)
