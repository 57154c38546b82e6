package lastfm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/eddy/internal/playback"
	"github.com/llehouerou/eddy/internal/state"
)

const (
	// MaxAttempts is the number of submissions after which a pending
	// scrobble is no longer retried.
	MaxAttempts = 10
	// RetryInterval is the delay between retries of pending scrobbles.
	RetryInterval = 5 * time.Minute
)

// Submitter sends tracks to Last.fm. *Client implements it.
type Submitter interface {
	NowPlaying(track Track) error
	Scrobble(track Track) error
}

// PendingStore keeps scrobbles that could not be submitted.
type PendingStore interface {
	AddPendingScrobble(ctx context.Context, s state.PendingScrobble) error
	PendingScrobbles(ctx context.Context) ([]state.PendingScrobble, error)
	DeletePendingScrobble(ctx context.Context, id int64) error
	RecordScrobbleAttempt(ctx context.Context, id int64, errMsg string) error
}

// Scrobbler forwards plays to Last.fm and queues failed scrobbles for retry.
type Scrobbler struct {
	client Submitter
	store  PendingStore
}

// NewScrobbler creates a Scrobbler.
func NewScrobbler(client Submitter, store PendingStore) *Scrobbler {
	return &Scrobbler{client: client, store: store}
}

func toTrack(song playback.Song, startedAt time.Time) Track {
	return Track{
		Artist:    song.ArtistName,
		Track:     song.Title,
		Album:     song.AlbumName,
		Duration:  song.Duration,
		Timestamp: startedAt,
	}
}

// NowPlaying announces song as currently playing. Failures are not retried.
func (s *Scrobbler) NowPlaying(_ context.Context, song playback.Song) error {
	return s.client.NowPlaying(toTrack(song, time.Time{}))
}

// Scrobble submits a completed play. A failed submission is queued and
// only reported if queueing fails too.
func (s *Scrobbler) Scrobble(ctx context.Context, song playback.Song, startedAt time.Time) error {
	track := toTrack(song, startedAt)
	err := s.client.Scrobble(track)
	if err == nil || errors.Is(err, ErrNotAuthenticated) {
		return err
	}

	log.Debug().Err(err).Int64("song_id", song.ID).Msg("Scrobble failed, queued for retry")
	qerr := s.store.AddPendingScrobble(ctx, state.PendingScrobble{
		SongID:       song.ID,
		Artist:       track.Artist,
		Track:        track.Track,
		Album:        track.Album,
		DurationSecs: int(track.Duration.Seconds()),
		Timestamp:    startedAt,
		LastError:    err.Error(),
	})
	if qerr != nil {
		return fmt.Errorf("queue scrobble: %w", errors.Join(err, qerr))
	}
	return nil
}

// RetryResult summarizes a retry pass.
type RetryResult struct {
	Succeeded int
	Failed    int
	Skipped   int
}

// RetryPending resubmits queued scrobbles. Entries that reached MaxAttempts
// are left in place and skipped.
func (s *Scrobbler) RetryPending(ctx context.Context) (RetryResult, error) {
	var res RetryResult
	pending, err := s.store.PendingScrobbles(ctx)
	if err != nil {
		return res, fmt.Errorf("load pending scrobbles: %w", err)
	}

	for i := range pending {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		p := &pending[i]
		if p.Attempts >= MaxAttempts {
			res.Skipped++
			continue
		}

		err := s.client.Scrobble(Track{
			Artist:    p.Artist,
			Track:     p.Track,
			Album:     p.Album,
			Duration:  time.Duration(p.DurationSecs) * time.Second,
			Timestamp: p.Timestamp,
		})
		if err != nil {
			res.Failed++
			if rerr := s.store.RecordScrobbleAttempt(ctx, p.ID, err.Error()); rerr != nil {
				log.Warn().Err(rerr).Int64("pending_id", p.ID).Msg("Failed to record scrobble attempt")
			}
			continue
		}
		res.Succeeded++
		if derr := s.store.DeletePendingScrobble(ctx, p.ID); derr != nil {
			log.Warn().Err(derr).Int64("pending_id", p.ID).Msg("Failed to delete pending scrobble")
		}
	}
	return res, nil
}

// Run retries pending scrobbles immediately and then every RetryInterval
// until ctx is done.
func (s *Scrobbler) Run(ctx context.Context) {
	ticker := time.NewTicker(RetryInterval)
	defer ticker.Stop()

	for {
		res, err := s.RetryPending(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			log.Warn().Err(err).Msg("Retrying pending scrobbles failed")
		case res.Succeeded+res.Failed > 0:
			log.Info().Int("succeeded", res.Succeeded).Int("failed", res.Failed).Msg("Retried pending scrobbles")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
