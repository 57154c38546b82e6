package state

import (
	"context"
	"time"

	"github.com/llehouerou/eddy/internal/playback"
)

// Interface defines the store contract for dependency injection and testing.
type Interface interface {
	InsertHistory(ctx context.Context, songID int64, at time.Time) error
	IncrementPlayCount(ctx context.Context, songID int64) error
	PlayCount(ctx context.Context, songID int64) (int, error)
	RecentHistory(ctx context.Context, limit int) ([]HistoryEntry, error)
	TopPlayed(ctx context.Context, limit int) ([]PlayCountEntry, error)

	AddFavorite(ctx context.Context, songID int64) error
	RemoveFavorite(ctx context.Context, songID int64) error
	IsFavorite(ctx context.Context, songID int64) (bool, error)

	RepeatMode(ctx context.Context) (int, error)
	SetRepeatMode(ctx context.Context, mode int) error
	ShuffleMode(ctx context.Context) (bool, error)
	SetShuffleMode(ctx context.Context, enabled bool) error

	UpsertSongs(ctx context.Context, recs []SongRecord) ([]int64, error)
	ListSongs(ctx context.Context) ([]playback.Song, error)
	GetSong(ctx context.Context, id int64) (playback.Song, error)
	DeleteSong(ctx context.Context, id int64) error
	SongModTimes(ctx context.Context) (map[string]time.Time, error)

	LastfmSession(ctx context.Context) (*LastfmSession, error)
	SaveLastfmSession(ctx context.Context, username, sessionKey string) error
	DeleteLastfmSession(ctx context.Context) error
	AddPendingScrobble(ctx context.Context, s PendingScrobble) error
	PendingScrobbles(ctx context.Context) ([]PendingScrobble, error)
	DeletePendingScrobble(ctx context.Context, id int64) error
	RecordScrobbleAttempt(ctx context.Context, id int64, errMsg string) error

	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
