// Package library scans music folders into the song store.
package library

import (
	"context"
	"time"

	"github.com/llehouerou/eddy/internal/playback"
	"github.com/llehouerou/eddy/internal/state"
)

const defaultWorkers = 8

// Store is the part of the song store the scanner writes to.
type Store interface {
	UpsertSongs(ctx context.Context, recs []state.SongRecord) ([]int64, error)
	ListSongs(ctx context.Context) ([]playback.Song, error)
	DeleteSong(ctx context.Context, id int64) error
	SongModTimes(ctx context.Context) (map[string]time.Time, error)
}

// Phase names a stage of a scan.
type Phase string

const (
	PhaseScanning   Phase = "scanning"
	PhaseProcessing Phase = "processing"
	PhaseCleaning   Phase = "cleaning"
	PhaseDone       Phase = "done"
)

// Progress reports the progress of a library scan.
type Progress struct {
	Phase   Phase
	Current int
	Total   int
}

// Stats summarizes a completed scan.
type Stats struct {
	Added     int
	Updated   int
	Unchanged int
	Removed   int
	Failed    int
}

// Library scans sources into a Store.
type Library struct {
	store    Store
	workers  int
	progress func(Progress)
	force    bool
}

// Option configures a Library.
type Option func(*Library)

// WithWorkers sets the number of files read in parallel.
func WithWorkers(n int) Option {
	return func(l *Library) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithProgress registers a progress callback. It may be called concurrently
// from the scan workers.
func WithProgress(fn func(Progress)) Option {
	return func(l *Library) {
		l.progress = fn
	}
}

// WithFullRescan rereads every file, ignoring modification times.
func WithFullRescan() Option {
	return func(l *Library) {
		l.force = true
	}
}

// New creates a Library writing to store.
func New(store Store, opts ...Option) *Library {
	l := &Library{store: store, workers: defaultWorkers}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Library) report(p Progress) {
	if l.progress != nil {
		l.progress(p)
	}
}
