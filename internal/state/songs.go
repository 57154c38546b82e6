package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	dbutil "github.com/llehouerou/eddy/internal/db"
	"github.com/llehouerou/eddy/internal/playback"
)

// ErrSongNotFound is returned when a song id is unknown.
var ErrSongNotFound = errors.New("song not found")

// SongRecord is a song as stored in the library.
type SongRecord struct {
	playback.Song
	ModTime time.Time
}

const songColumns = `
	s.id, s.path, s.title, s.artist_id, s.artist, s.album_id, s.album,
	s.duration_ms, s.track_number, s.year, s.composer,
	f.song_id IS NOT NULL`

type scanner interface {
	Scan(dest ...any) error
}

func scanSong(row scanner) (playback.Song, error) {
	var s playback.Song
	var durationMs int64
	var trackNumber, year sql.NullInt64
	var composer sql.NullString

	err := row.Scan(
		&s.ID, &s.Data, &s.Title, &s.ArtistID, &s.ArtistName, &s.AlbumID, &s.AlbumName,
		&durationMs, &trackNumber, &year, &composer,
		&s.Favorite,
	)
	if err != nil {
		return playback.Song{}, err
	}

	s.Duration = time.Duration(durationMs) * time.Millisecond
	s.TrackNumber = int(dbutil.NullInt64Value(trackNumber))
	s.Year = int(dbutil.NullInt64Value(year))
	s.Composer = dbutil.NullStringValue(composer)
	return s, nil
}

// UpsertSongs inserts or updates songs keyed by path and returns their ids
// in input order.
func (m *Manager) UpsertSongs(ctx context.Context, recs []SongRecord) ([]int64, error) {
	ids := make([]int64, 0, len(recs))
	now := time.Now().Unix()

	err := dbutil.WithTx(ctx, m.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO songs
			(path, title, artist_id, artist, album_id, album, duration_ms,
			 track_number, year, composer, mtime, added_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(path) DO UPDATE SET
				title = excluded.title,
				artist_id = excluded.artist_id,
				artist = excluded.artist,
				album_id = excluded.album_id,
				album = excluded.album,
				duration_ms = excluded.duration_ms,
				track_number = excluded.track_number,
				year = excluded.year,
				composer = excluded.composer,
				mtime = excluded.mtime,
				updated_at = excluded.updated_at
			RETURNING id
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, r := range recs {
			var id int64
			err := stmt.QueryRowContext(ctx,
				r.Data, r.Title, r.ArtistID, r.ArtistName, r.AlbumID, r.AlbumName,
				r.Duration.Milliseconds(),
				dbutil.NullInt64(int64(r.TrackNumber)), dbutil.NullInt64(int64(r.Year)),
				dbutil.NullString(r.Composer), r.ModTime.Unix(), now, now,
			).Scan(&id)
			if err != nil {
				return fmt.Errorf("upsert %s: %w", r.Data, err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ListSongs returns every song ordered by artist, album and track.
func (m *Manager) ListSongs(ctx context.Context) ([]playback.Song, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT `+songColumns+`
		FROM songs s
		LEFT JOIN favorites f ON f.song_id = s.id
		ORDER BY s.artist COLLATE NOCASE, s.album COLLATE NOCASE, s.track_number, s.title
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var songs []playback.Song
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, s)
	}
	return songs, rows.Err()
}

// GetSong returns the song with the given id.
func (m *Manager) GetSong(ctx context.Context, id int64) (playback.Song, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT `+songColumns+`
		FROM songs s
		LEFT JOIN favorites f ON f.song_id = s.id
		WHERE s.id = ?
	`, id)
	s, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return playback.Song{}, fmt.Errorf("%w: %d", ErrSongNotFound, id)
	}
	return s, err
}

// DeleteSong removes a song together with its history, play count and
// favorite flag.
func (m *Manager) DeleteSong(ctx context.Context, id int64) error {
	_, err := m.db.ExecContext(ctx, `DELETE FROM songs WHERE id = ?`, id)
	return err
}

// SongModTimes returns the stored modification time of every song by path.
func (m *Manager) SongModTimes(ctx context.Context) (map[string]time.Time, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT path, mtime FROM songs`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mtimes := make(map[string]time.Time)
	for rows.Next() {
		var path string
		var mtime int64
		if err := rows.Scan(&path, &mtime); err != nil {
			return nil, err
		}
		mtimes[path] = time.Unix(mtime, 0)
	}
	return mtimes, rows.Err()
}
