// Package bookkeeping derives listening history and play counts from the
// player state stream.
package bookkeeping

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/eddy/internal/mailbox"
	"github.com/llehouerou/eddy/internal/playback"
)

const (
	// DefaultHistoryThreshold is how long a song must play before it is
	// added to the listening history.
	DefaultHistoryThreshold = 30 * time.Second
	// DefaultPlayCountFraction is the share of a song that must play before
	// its play count is incremented.
	DefaultPlayCountFraction = 0.5

	writeTimeout = 30 * time.Second

	minScrobbleDuration = 30 * time.Second
	maxScrobbleWait     = 4 * time.Minute
)

// Recorder persists bookkeeping side effects.
type Recorder interface {
	InsertHistory(ctx context.Context, songID int64, at time.Time) error
	IncrementPlayCount(ctx context.Context, songID int64) error
}

// Scrobbler forwards plays to a scrobbling service.
type Scrobbler interface {
	NowPlaying(ctx context.Context, song playback.Song) error
	Scrobble(ctx context.Context, song playback.Song, startedAt time.Time) error
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithHistoryThreshold sets the position at which history is recorded.
func WithHistoryThreshold(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.historyThreshold = d
		}
	}
}

// WithPlayCountFraction sets the fraction of the duration at which the play
// count is incremented. Values outside (0, 1] are ignored.
func WithPlayCountFraction(f float64) Option {
	return func(t *Tracker) {
		if f > 0 && f <= 1 {
			t.playCountFraction = f
		}
	}
}

// WithClock overrides the time source used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithScrobbler adds a scrobbling sink.
func WithScrobbler(s Scrobbler) Option {
	return func(t *Tracker) {
		t.scrobbler = s
	}
}

type job struct {
	name   string
	songID int64
	run    func(ctx context.Context) error
}

// Tracker watches player states and records each song play at most once per
// threshold. Writes run in order on a single background goroutine and their
// failures are logged, never returned.
type Tracker struct {
	rec               Recorder
	scrobbler         Scrobbler
	historyThreshold  time.Duration
	playCountFraction float64
	now               func() time.Time

	mu     sync.Mutex
	cursor Cursor
	closed bool

	jobs *mailbox.Mailbox[job]
	stop chan struct{}
	done chan struct{}
}

// New creates a tracker writing to rec and starts its writer goroutine.
func New(rec Recorder, opts ...Option) *Tracker {
	t := &Tracker{
		rec:               rec,
		historyThreshold:  DefaultHistoryThreshold,
		playCountFraction: DefaultPlayCountFraction,
		now:               time.Now,
		jobs:              mailbox.New[job](),
		stop:              make(chan struct{}),
		done:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	go t.work()
	return t
}

// Cursor returns a copy of the current cursor.
func (t *Tracker) Cursor() Cursor {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursor
}

// Observe applies one player state.
func (t *Tracker) Observe(s playback.PlayerState) {
	song := s.CurrentSong
	if song == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}

	c := &t.cursor
	if !c.HasSong || c.SongID != song.ID {
		*c = Cursor{SongID: song.ID, HasSong: true, StartedAt: t.now()}
		log.Debug().Int64("song_id", song.ID).Msg("Bookkeeping cursor reset")
	}

	id := song.ID
	if !c.HistoryRecorded && s.Position >= t.historyThreshold {
		c.HistoryRecorded = true
		at := t.now()
		t.enqueue("insert_history", id, func(ctx context.Context) error {
			return t.rec.InsertHistory(ctx, id, at)
		})
	}

	if !c.PlayCountRecorded && song.Duration > 0 &&
		s.Position >= time.Duration(float64(song.Duration)*t.playCountFraction) {
		c.PlayCountRecorded = true
		t.enqueue("increment_play_count", id, func(ctx context.Context) error {
			return t.rec.IncrementPlayCount(ctx, id)
		})
	}

	if t.scrobbler != nil {
		t.observeScrobble(c, s, *song)
	}
}

// observeScrobble applies the Last.fm rules: now playing once the song
// plays, scrobble after min(half the duration, 4 minutes) for songs of at
// least 30 seconds.
func (t *Tracker) observeScrobble(c *Cursor, s playback.PlayerState, song playback.Song) {
	if !c.NowPlayingSent && s.IsPlaying {
		c.NowPlayingSent = true
		t.enqueue("now_playing", song.ID, func(ctx context.Context) error {
			return t.scrobbler.NowPlaying(ctx, song)
		})
	}

	if c.Scrobbled || song.Duration < minScrobbleDuration {
		return
	}
	if s.Position >= min(song.Duration/2, maxScrobbleWait) {
		c.Scrobbled = true
		startedAt := c.StartedAt
		t.enqueue("scrobble", song.ID, func(ctx context.Context) error {
			return t.scrobbler.Scrobble(ctx, song, startedAt)
		})
	}
}

// enqueue schedules a write. Callers hold t.mu.
func (t *Tracker) enqueue(name string, songID int64, run func(ctx context.Context) error) {
	t.jobs.Put(job{name: name, songID: songID, run: run})
}

func (t *Tracker) work() {
	defer close(t.done)
	for {
		t.runJobs()
		select {
		case <-t.jobs.Ready():
		case <-t.stop:
			t.runJobs()
			return
		}
	}
}

func (t *Tracker) runJobs() {
	for _, j := range t.jobs.Drain() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := j.run(ctx)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("op", j.name).Int64("song_id", j.songID).Msg("Bookkeeping write failed")
			continue
		}
		log.Debug().Str("op", j.name).Int64("song_id", j.songID).Msg("Bookkeeping write")
	}
}

// Tap forwards every state from in unchanged, observing each one on the way.
// The returned channel keeps only the newest unread state and is closed when
// in is closed or ctx is done.
func (t *Tracker) Tap(ctx context.Context, in <-chan playback.PlayerState) <-chan playback.PlayerState {
	out := make(chan playback.PlayerState, 1)
	go func() {
		defer close(out)
		for {
			select {
			case s, ok := <-in:
				if !ok {
					return
				}
				t.Observe(s)
				offer(out, s)
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// offer sends s on ch, replacing an unread value. The caller must be the
// only sender.
func offer(ch chan playback.PlayerState, s playback.PlayerState) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Close stops accepting states and waits for pending writes to finish.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		<-t.done
		return
	}
	t.closed = true
	t.mu.Unlock()

	close(t.stop)
	<-t.done
	t.jobs.Close()
}
