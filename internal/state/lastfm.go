package state

import (
	"context"
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/llehouerou/eddy/internal/db"
)

// LastfmSession is the stored Last.fm authorization.
type LastfmSession struct {
	Username   string
	SessionKey string
	LinkedAt   time.Time
}

// PendingScrobble is a scrobble waiting to be resubmitted.
type PendingScrobble struct {
	ID           int64
	SongID       int64
	Artist       string
	Track        string
	Album        string
	DurationSecs int
	Timestamp    time.Time
	Attempts     int
	LastError    string
	CreatedAt    time.Time
}

// LastfmSession returns the stored session, or nil if not linked.
func (m *Manager) LastfmSession(ctx context.Context) (*LastfmSession, error) {
	var s LastfmSession
	var linkedAt int64

	err := m.db.QueryRowContext(ctx, `
		SELECT username, session_key, linked_at FROM lastfm_session WHERE id = 1
	`).Scan(&s.Username, &s.SessionKey, &linkedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // nil session means not linked
	}
	if err != nil {
		return nil, err
	}

	s.LinkedAt = time.Unix(linkedAt, 0)
	return &s, nil
}

// SaveLastfmSession stores the session obtained after authorization.
func (m *Manager) SaveLastfmSession(ctx context.Context, username, sessionKey string) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO lastfm_session (id, username, session_key, linked_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			session_key = excluded.session_key,
			linked_at = excluded.linked_at
	`, username, sessionKey, time.Now().Unix())
	return err
}

// DeleteLastfmSession unlinks the Last.fm account.
func (m *Manager) DeleteLastfmSession(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `DELETE FROM lastfm_session WHERE id = 1`)
	return err
}

// AddPendingScrobble queues a scrobble for a later attempt.
func (m *Manager) AddPendingScrobble(ctx context.Context, s PendingScrobble) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO lastfm_pending_scrobbles
		(song_id, artist, track, album, duration_seconds, timestamp, attempts, last_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)
	`, dbutil.NullInt64(s.SongID), s.Artist, s.Track, dbutil.NullString(s.Album), s.DurationSecs,
		s.Timestamp.Unix(), dbutil.NullString(s.LastError), time.Now().Unix())
	return err
}

// PendingScrobbles returns queued scrobbles, oldest first.
func (m *Manager) PendingScrobbles(ctx context.Context) ([]PendingScrobble, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, song_id, artist, track, album, duration_seconds, timestamp, attempts, last_error, created_at
		FROM lastfm_pending_scrobbles
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scrobbles []PendingScrobble
	for rows.Next() {
		var s PendingScrobble
		var songID sql.NullInt64
		var album, lastError sql.NullString
		var timestamp, createdAt int64

		err := rows.Scan(
			&s.ID, &songID, &s.Artist, &s.Track, &album, &s.DurationSecs,
			&timestamp, &s.Attempts, &lastError, &createdAt,
		)
		if err != nil {
			return nil, err
		}

		s.SongID = dbutil.NullInt64Value(songID)
		s.Album = dbutil.NullStringValue(album)
		s.LastError = dbutil.NullStringValue(lastError)
		s.Timestamp = time.Unix(timestamp, 0)
		s.CreatedAt = time.Unix(createdAt, 0)
		scrobbles = append(scrobbles, s)
	}
	return scrobbles, rows.Err()
}

// DeletePendingScrobble removes a submitted or abandoned scrobble.
func (m *Manager) DeletePendingScrobble(ctx context.Context, id int64) error {
	_, err := m.db.ExecContext(ctx, `DELETE FROM lastfm_pending_scrobbles WHERE id = ?`, id)
	return err
}

// RecordScrobbleAttempt increments the attempt counter and keeps the error.
func (m *Manager) RecordScrobbleAttempt(ctx context.Context, id int64, errMsg string) error {
	_, err := m.db.ExecContext(ctx, `
		UPDATE lastfm_pending_scrobbles
		SET attempts = attempts + 1, last_error = ?
		WHERE id = ?
	`, errMsg, id)
	return err
}
