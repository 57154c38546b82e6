// Package session wires the command facade, the state aggregator and the
// bookkeeping tracker into the single surface the UI talks to.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/eddy/internal/bookkeeping"
	"github.com/llehouerou/eddy/internal/engine"
	"github.com/llehouerou/eddy/internal/player"
	"github.com/llehouerou/eddy/internal/playerstate"
	"github.com/llehouerou/eddy/internal/playback"
	"github.com/llehouerou/eddy/internal/playlist"
)

const prefsTimeout = 5 * time.Second

// ErrClosed is returned by streams subscribed after the session ended.
var ErrClosed = errors.New("session closed")

// Preferences stores the repeat and shuffle settings across runs.
// Repeat modes are stored as playback.RepeatMode integers.
type Preferences interface {
	RepeatMode(ctx context.Context) (int, error)
	SetRepeatMode(ctx context.Context, mode int) error
	ShuffleMode(ctx context.Context) (bool, error)
	SetShuffleMode(ctx context.Context, enabled bool) error
}

// Favorites stores favorite songs.
type Favorites interface {
	IsFavorite(ctx context.Context, songID int64) (bool, error)
	AddFavorite(ctx context.Context, songID int64) error
	RemoveFavorite(ctx context.Context, songID int64) error
}

// Option configures a Session.
type Option func(*Session)

// WithFavorites enables ToggleFavorite.
func WithFavorites(f Favorites) Option {
	return func(s *Session) { s.favorites = f }
}

// WithStateOptions configures the state aggregator.
func WithStateOptions(opts ...playerstate.Option) Option {
	return func(s *Session) { s.stateOpts = append(s.stateOpts, opts...) }
}

// WithBookkeepingOptions configures the bookkeeping tracker.
func WithBookkeepingOptions(opts ...bookkeeping.Option) Option {
	return func(s *Session) { s.trackerOpts = append(s.trackerOpts, opts...) }
}

// Session is one playback session.
type Session struct {
	prefs     Preferences
	prefsMu   sync.Mutex
	favorites Favorites

	player     *player.Controller
	aggregator *playerstate.Aggregator
	tracker    *bookkeeping.Tracker

	stateOpts   []playerstate.Option
	trackerOpts []bookkeeping.Option

	startOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}

	mu       sync.Mutex
	last     playback.PlayerState
	hasState bool
	streams  map[*Stream]struct{}
	ended    bool
	err      error
}

// New creates a session driving the engine behind h.
func New(h *engine.Handle, prefs Preferences, rec bookkeeping.Recorder, opts ...Option) *Session {
	s := &Session{
		prefs:   prefs,
		player:  player.New(h),
		done:    make(chan struct{}),
		streams: make(map[*Stream]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.aggregator = playerstate.New(h, s.stateOpts...)
	s.tracker = bookkeeping.New(rec, s.trackerOpts...)
	return s
}

// Start launches the command goroutine and the state pipeline.
func (s *Session) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		ctx, s.cancel = context.WithCancel(ctx)
		s.player.Start(ctx)
		sub := s.aggregator.Subscribe(ctx)
		states := s.tracker.Tap(ctx, sub.States)
		go s.broadcast(sub, states)
	})
}

func (s *Session) broadcast(sub *playerstate.Subscription, states <-chan playback.PlayerState) {
	defer close(s.done)
	for st := range states {
		s.mu.Lock()
		s.last, s.hasState = st, true
		for stream := range s.streams {
			stream.offer(st)
		}
		s.mu.Unlock()
	}

	<-sub.Done
	err := sub.Err()
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("Session state stream ended")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = true
	s.err = err
	for stream := range s.streams {
		stream.finish(err)
	}
	clear(s.streams)
}

// Close stops the session and waits for pending bookkeeping writes.
func (s *Session) Close() {
	s.startOnce.Do(func() { close(s.done) })
	if s.cancel != nil {
		s.cancel()
	}
	<-s.done
	s.player.Close()
	s.tracker.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = true
	for stream := range s.streams {
		stream.finish(ErrClosed)
	}
	clear(s.streams)
}

// Subscribe returns a stream of player states that ends when ctx is done or
// the session ends. A new stream starts with the latest known state.
func (s *Session) Subscribe(ctx context.Context) *Stream {
	stream := newStream()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		err := s.err
		if err == nil {
			err = ErrClosed
		}
		stream.finish(err)
		return stream
	}
	s.streams[stream] = struct{}{}
	if s.hasState {
		stream.offer(s.last)
	}

	go func() {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			delete(s.streams, stream)
			stream.finish(context.Cause(ctx))
			s.mu.Unlock()
		case <-stream.Done:
		}
	}()
	return stream
}

// State returns the latest observed state.
func (s *Session) State() playback.PlayerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// OnPlay starts playing songs from index. The persisted shuffle and repeat
// preferences are applied first, then the queue is rotated so that the
// selected song comes first and played from its head. It returns without
// touching the store; preferences are read on the command goroutine.
func (s *Session) OnPlay(index int, songs []playback.Song) {
	s.player.Do("apply_preferences", s.applyPreferences)
	s.player.SetQueue(playlist.Rearrange(songs, index))
	s.player.PlayFromHead()
}

func (s *Session) applyPreferences(e engine.Engine) error {
	ctx, cancel := prefsContext()
	defer cancel()

	s.prefsMu.Lock()
	shuffle, mode := s.shuffle(ctx), s.repeatMode(ctx)
	s.prefsMu.Unlock()
	return errors.Join(e.SetShuffle(shuffle), e.SetRepeatMode(mode))
}

// Pause pauses playback.
func (s *Session) Pause() { s.player.Pause() }

// Resume resumes playback.
func (s *Session) Resume() { s.player.Resume() }

// Stop stops playback.
func (s *Session) Stop() { s.player.Stop() }

// Next skips to the next song.
func (s *Session) Next() { s.player.Next() }

// Previous goes to the previous song or restarts the current one.
func (s *Session) Previous() { s.player.Previous() }

// Seek moves to position in the current song.
func (s *Session) Seek(position time.Duration) { s.player.Seek(position) }

// TogglePlayPause pauses when st is playing and resumes otherwise.
func (s *Session) TogglePlayPause(st playback.PlayerState) {
	if st.Status() == playback.StatusPlaying {
		s.player.Pause()
		return
	}
	s.player.Resume()
}

// SeekBy moves the position by delta relative to the latest state.
func (s *Session) SeekBy(delta time.Duration) {
	st := s.State()
	if st.CurrentSong == nil {
		return
	}
	pos := max(st.ClampedPosition()+delta, 0)
	if d := st.Duration(); d > 0 {
		pos = min(pos, d)
	}
	s.player.Seek(pos)
}

// ToggleRepeat advances the persisted repeat mode and applies it. It blocks
// on the store, so UIs call it outside their event loop.
func (s *Session) ToggleRepeat() playback.RepeatMode {
	ctx, cancel := prefsContext()
	defer cancel()
	s.prefsMu.Lock()
	defer s.prefsMu.Unlock()
	mode := s.repeatMode(ctx).Next()
	s.setRepeatMode(ctx, mode)
	return mode
}

// SetRepeatMode persists and applies mode.
func (s *Session) SetRepeatMode(mode playback.RepeatMode) {
	ctx, cancel := prefsContext()
	defer cancel()
	s.prefsMu.Lock()
	defer s.prefsMu.Unlock()
	s.setRepeatMode(ctx, mode)
}

func (s *Session) setRepeatMode(ctx context.Context, mode playback.RepeatMode) {
	if err := s.prefs.SetRepeatMode(ctx, int(mode)); err != nil {
		log.Warn().Err(err).Stringer("mode", mode).Msg("Failed to save repeat mode")
	}
	s.player.SetRepeatMode(mode)
}

// ToggleShuffle flips the persisted shuffle preference and applies it. Like
// ToggleRepeat it blocks on the store.
func (s *Session) ToggleShuffle() bool {
	ctx, cancel := prefsContext()
	defer cancel()
	s.prefsMu.Lock()
	defer s.prefsMu.Unlock()
	enabled := !s.shuffle(ctx)
	s.setShuffle(ctx, enabled)
	return enabled
}

// SetShuffle persists and applies the shuffle preference.
func (s *Session) SetShuffle(enabled bool) {
	ctx, cancel := prefsContext()
	defer cancel()
	s.prefsMu.Lock()
	defer s.prefsMu.Unlock()
	s.setShuffle(ctx, enabled)
}

func (s *Session) setShuffle(ctx context.Context, enabled bool) {
	if err := s.prefs.SetShuffleMode(ctx, enabled); err != nil {
		log.Warn().Err(err).Bool("enabled", enabled).Msg("Failed to save shuffle mode")
	}
	s.player.SetShuffle(enabled)
}

func (s *Session) repeatMode(ctx context.Context) playback.RepeatMode {
	v, err := s.prefs.RepeatMode(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load repeat mode")
		return playback.RepeatOff
	}
	mode := playback.RepeatMode(v)
	if !mode.Valid() {
		return playback.RepeatOff
	}
	return mode
}

func (s *Session) shuffle(ctx context.Context) bool {
	v, err := s.prefs.ShuffleMode(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load shuffle mode")
		return false
	}
	return v
}

// ToggleFavorite flips the favorite flag of song and returns the new value.
func (s *Session) ToggleFavorite(ctx context.Context, song playback.Song) (bool, error) {
	if s.favorites == nil {
		return false, errors.New("favorites not configured")
	}
	fav, err := s.favorites.IsFavorite(ctx, song.ID)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	if fav {
		if err := s.favorites.RemoveFavorite(ctx, song.ID); err != nil {
			return true, fmt.Errorf("remove favorite: %w", err)
		}
		return false, nil
	}
	if err := s.favorites.AddFavorite(ctx, song.ID); err != nil {
		return false, fmt.Errorf("add favorite: %w", err)
	}
	return true, nil
}

func prefsContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), prefsTimeout)
}
