// Package mpdengine drives a Music Player Daemon as a playback engine.
package mpdengine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/llehouerou/eddy/internal/engine"
	"github.com/llehouerou/eddy/internal/playback"
)

// ErrNoSong is returned by commands that need a current song.
var ErrNoSong = errors.New("no song playing")

var watchedSubsystems = []string{"player", "options", "playlist"}

// Config holds the daemon address.
type Config struct {
	Host     string
	Port     int
	Password string
	// MusicDir is the daemon's music_directory. Songs below it are queued
	// by their path relative to it, which is how MPD names them.
	MusicDir string
}

// Engine implements engine.Engine on top of MPD. The daemon owns the queue
// and playback; the engine mirrors its state and reports changes as events.
type Engine struct {
	engine.Listeners

	conn     conn
	now      func() time.Time
	musicDir string

	// refreshMu serializes refreshes so events are emitted in order.
	refreshMu sync.Mutex

	mu            sync.Mutex
	queue         []playback.Song
	byFile        map[string]playback.Song
	last          observation
	playWhenReady bool
	startIndex    int
	startPos      time.Duration

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Dial connects to the daemon and starts watching it.
func Dial(ctx context.Context, cfg Config) (*Engine, error) {
	c := NewClient(cfg.Host, cfg.Port, cfg.Password)
	if err := c.Connect(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		c.Close()
		return nil, err
	}

	e := newEngine(c)
	e.musicDir = cfg.MusicDir
	changes, err := c.Watch(e.stop, watchedSubsystems...)
	if err != nil {
		c.Close()
		return nil, err
	}
	e.refresh()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		for subsystem := range changes {
			log.Debug().Str("subsystem", subsystem).Msg("MPD change")
			e.refresh()
		}
	}()
	return e, nil
}

func newEngine(c conn) *Engine {
	return &Engine{
		conn:   c,
		now:    time.Now,
		byFile: make(map[string]playback.Song),
		last:   observation{state: "stop", pos: -1},
		stop:   make(chan struct{}),
	}
}

// refresh reads the daemon state and emits what changed since last time.
func (e *Engine) refresh() {
	e.refreshMu.Lock()
	defer e.refreshMu.Unlock()

	status, err := e.conn.Status()
	if err != nil {
		log.Warn().Err(err).Msg("MPD status failed")
		return
	}
	current, err := e.conn.CurrentSong()
	if err != nil {
		log.Warn().Err(err).Msg("MPD current song failed")
		return
	}

	e.mu.Lock()
	next := observe(status, current, e.lookup, e.now())
	events := diff(e.last, next)
	e.last = next
	e.mu.Unlock()

	e.Emit(events...)
}

// lookup resolves a file reported by MPD against the queue. Without a
// known music directory the queued path ending in "/"+file wins. Callers
// hold e.mu.
func (e *Engine) lookup(file string) (playback.Song, bool) {
	if s, ok := e.byFile[file]; ok {
		return s, true
	}
	suffix := "/" + strings.TrimPrefix(file, "/")
	return lo.Find(e.queue, func(s playback.Song) bool {
		return strings.HasSuffix(filepath.ToSlash(s.Data), suffix)
	})
}

// uri names data the way MPD does: relative to the music directory when
// data lies below it, as is otherwise.
func (e *Engine) uri(data string) string {
	if e.musicDir == "" || !filepath.IsAbs(data) {
		return filepath.ToSlash(data)
	}
	rel, err := filepath.Rel(e.musicDir, data)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(data)
	}
	return filepath.ToSlash(rel)
}

func (e *Engine) SetQueue(songs []playback.Song) error {
	if err := e.conn.Clear(); err != nil {
		return fmt.Errorf("clear queue: %w", err)
	}
	uris := lo.Map(songs, func(s playback.Song, _ int) string { return e.uri(s.Data) })
	for _, uri := range uris {
		if err := e.conn.Add(uri); err != nil {
			return fmt.Errorf("add %s: %w", uri, err)
		}
	}

	e.mu.Lock()
	e.queue = songs
	e.byFile = lo.SliceToMap(songs, func(s playback.Song) (string, playback.Song) { return e.uri(s.Data), s })
	e.startIndex, e.startPos = 0, 0
	e.mu.Unlock()
	return nil
}

// SeekToIndex selects where the next Prepare starts. MPD has no notion of a
// loaded but unstarted song, so while stopped this only records the target.
func (e *Engine) SeekToIndex(index int, position time.Duration) error {
	e.mu.Lock()
	if index < 0 || index >= len(e.queue) {
		e.mu.Unlock()
		return fmt.Errorf("index %d out of range", index)
	}
	e.startIndex, e.startPos = index, position
	stopped := e.last.state == "stop"
	e.mu.Unlock()

	if stopped {
		return nil
	}
	return e.conn.Seek(index, int(position.Seconds()))
}

func (e *Engine) SetPlayWhenReady(play bool) error {
	e.mu.Lock()
	changed := e.playWhenReady != play
	e.playWhenReady = play
	e.mu.Unlock()

	if changed {
		e.Emit(engine.PlayWhenReadyChanged{PlayWhenReady: play})
	}
	return nil
}

// Prepare starts the selected song, then pauses it unless play-when-ready
// is set.
func (e *Engine) Prepare() error {
	e.mu.Lock()
	index, pos, play := e.startIndex, e.startPos, e.playWhenReady
	empty := len(e.queue) == 0
	e.mu.Unlock()
	if empty {
		return nil
	}

	if err := e.conn.Play(index); err != nil {
		return err
	}
	if pos > 0 {
		if err := e.conn.Seek(index, int(pos.Seconds())); err != nil {
			return err
		}
	}
	if !play {
		return e.conn.Pause(true)
	}
	return nil
}

func (e *Engine) Play() error {
	return e.conn.Play(-1)
}

func (e *Engine) Pause() error {
	return e.conn.Pause(true)
}

// Resume unpauses, or restarts the current song when stopped.
func (e *Engine) Resume() error {
	e.mu.Lock()
	stopped := e.last.state == "stop"
	e.mu.Unlock()
	if stopped {
		return e.conn.Play(-1)
	}
	return e.conn.Pause(false)
}

func (e *Engine) Stop() error { return e.conn.Stop() }

func (e *Engine) Next() error { return e.conn.Next() }

func (e *Engine) Previous() error { return e.conn.Previous() }

func (e *Engine) Seek(position time.Duration) error {
	e.mu.Lock()
	pos := e.last.pos
	e.mu.Unlock()
	if pos < 0 {
		return ErrNoSong
	}
	return e.conn.Seek(pos, int(position.Seconds()))
}

func (e *Engine) SetRepeatMode(mode playback.RepeatMode) error {
	if err := e.conn.Repeat(mode != playback.RepeatOff); err != nil {
		return err
	}
	return e.conn.Single(mode == playback.RepeatOne)
}

func (e *Engine) SetShuffle(enabled bool) error {
	return e.conn.Random(enabled)
}

func (e *Engine) HasNext() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last.hasNext
}

func (e *Engine) HasPrevious() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last.pos > 0 || (e.last.pos == 0 && e.last.repeat == playback.RepeatAll)
}

func (e *Engine) Snapshot() playback.PlayerState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last.playerState(e.playWhenReady)
}

// Close stops watching and disconnects.
func (e *Engine) Close() error {
	e.stopOnce.Do(func() { close(e.stop) })
	err := e.conn.Close()
	e.wg.Wait()
	return err
}

var _ engine.Engine = (*Engine)(nil)
