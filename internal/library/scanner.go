package library

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/eddy/internal/playback"
	"github.com/llehouerou/eddy/internal/state"
	"github.com/llehouerou/eddy/internal/tags"
)

// upsertBatch bounds the number of songs written per transaction.
const upsertBatch = 200

// Scan performs an incremental scan of sources. Files whose modification
// time matches the stored one are skipped, and stored songs under a source
// that no longer exist on disk are removed.
func (l *Library) Scan(ctx context.Context, sources []string) (Stats, error) {
	var stats Stats
	l.report(Progress{Phase: PhaseScanning})

	files, err := l.discoverFiles(ctx, sources)
	if err != nil {
		return stats, fmt.Errorf("discover files: %w", err)
	}

	known, err := l.store.SongModTimes(ctx)
	if err != nil {
		return stats, fmt.Errorf("load library: %w", err)
	}

	toProcess := make([]fileInfo, 0, len(files))
	for _, f := range files {
		stored, ok := known[f.path]
		switch {
		case !ok:
			stats.Added++
		case !l.force && stored.Unix() == f.mtime.Unix():
			stats.Unchanged++
			continue
		default:
			stats.Updated++
		}
		toProcess = append(toProcess, f)
	}

	recs, failed := l.processFiles(ctx, toProcess)
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	stats.Failed = len(failed)
	for _, f := range failed {
		if _, ok := known[f.path]; ok {
			stats.Updated--
		} else {
			stats.Added--
		}
	}

	for batch := range slices.Chunk(recs, upsertBatch) {
		if _, err := l.store.UpsertSongs(ctx, batch); err != nil {
			return stats, fmt.Errorf("store songs: %w", err)
		}
	}

	l.report(Progress{Phase: PhaseCleaning})
	removed, err := l.clean(ctx, sources, files)
	stats.Removed = removed
	if err != nil {
		return stats, fmt.Errorf("remove missing songs: %w", err)
	}

	l.report(Progress{Phase: PhaseDone, Current: len(files), Total: len(files)})
	log.Info().
		Int("added", stats.Added).
		Int("updated", stats.Updated).
		Int("removed", stats.Removed).
		Int("failed", stats.Failed).
		Msg("Library scan complete")
	return stats, nil
}

// processFiles reads files in parallel. Records keep the input order.
func (l *Library) processFiles(ctx context.Context, files []fileInfo) ([]state.SongRecord, []fileInfo) {
	total := len(files)
	results := make([]*state.SongRecord, total)
	var processed atomic.Int64

	work := make(chan int)
	var wg sync.WaitGroup
	for range min(l.workers, max(total, 1)) {
		wg.Go(func() {
			for i := range work {
				f := files[i]
				rec, err := readSong(f)
				if err != nil {
					log.Warn().Err(err).Str("path", f.path).Msg("Skipping unreadable file")
				} else {
					results[i] = rec
				}
				n := processed.Add(1)
				l.report(Progress{Phase: PhaseProcessing, Current: int(n), Total: total})
			}
		})
	}

feed:
	for i := range files {
		select {
		case work <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(work)
	wg.Wait()

	recs := make([]state.SongRecord, 0, total)
	var failed []fileInfo
	for i, r := range results {
		if r == nil {
			failed = append(failed, files[i])
			continue
		}
		recs = append(recs, *r)
	}
	return recs, failed
}

// readSong builds a song record from a file's tags and stream info.
func readSong(f fileInfo) (*state.SongRecord, error) {
	info, err := tags.ReadWithAudio(f.path)
	if err != nil {
		return nil, err
	}

	return &state.SongRecord{
		Song: playback.Song{
			Title:       info.Title,
			ArtistID:    artistID(info.Artist),
			ArtistName:  info.Artist,
			AlbumID:     albumID(info.AlbumArtist, info.Album),
			AlbumName:   info.Album,
			Duration:    info.Duration,
			Data:        f.path,
			TrackNumber: info.TrackNumber,
			Year:        info.Year(),
			Composer:    info.Composer,
		},
		ModTime: f.mtime,
	}, nil
}

// clean deletes stored songs under sources that were not discovered.
func (l *Library) clean(ctx context.Context, sources []string, files []fileInfo) (int, error) {
	present := make(map[string]struct{}, len(files))
	for _, f := range files {
		present[f.path] = struct{}{}
	}

	songs, err := l.store.ListSongs(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, s := range songs {
		if _, ok := present[s.Data]; ok || !underAny(s.Data, sources) {
			continue
		}
		if err := l.store.DeleteSong(ctx, s.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
