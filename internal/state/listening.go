package state

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/llehouerou/eddy/internal/playback"
)

// HistoryEntry is one recorded listen.
type HistoryEntry struct {
	Song     playback.Song
	PlayedAt time.Time
}

// PlayCountEntry is a song with its play count.
type PlayCountEntry struct {
	Song         playback.Song
	Count        int
	LastPlayedAt time.Time
}

// InsertHistory records that songID was listened to at the given time.
func (m *Manager) InsertHistory(ctx context.Context, songID int64, at time.Time) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO history (song_id, played_at) VALUES (?, ?)
	`, songID, at.Unix())
	return err
}

// IncrementPlayCount adds one play to songID, creating its counter if needed.
func (m *Manager) IncrementPlayCount(ctx context.Context, songID int64) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO play_counts (song_id, count, last_played_at)
		VALUES (?, 1, ?)
		ON CONFLICT(song_id) DO UPDATE SET
			count = count + 1,
			last_played_at = excluded.last_played_at
	`, songID, time.Now().Unix())
	return err
}

// PlayCount returns how many times songID was played.
func (m *Manager) PlayCount(ctx context.Context, songID int64) (int, error) {
	var count int
	err := m.db.QueryRowContext(ctx, `
		SELECT count FROM play_counts WHERE song_id = ?
	`, songID).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return count, err
}

// RecentHistory returns the latest listens, newest first.
func (m *Manager) RecentHistory(ctx context.Context, limit int) ([]HistoryEntry, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT `+songColumns+`, h.played_at
		FROM history h
		JOIN songs s ON s.id = h.song_id
		LEFT JOIN favorites f ON f.song_id = s.id
		ORDER BY h.played_at DESC, h.id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var playedAt int64
		s, err := scanSong(rowWithExtra{rows, []any{&playedAt}})
		if err != nil {
			return nil, err
		}
		entries = append(entries, HistoryEntry{Song: s, PlayedAt: time.Unix(playedAt, 0)})
	}
	return entries, rows.Err()
}

// TopPlayed returns the most played songs, most played first.
func (m *Manager) TopPlayed(ctx context.Context, limit int) ([]PlayCountEntry, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT `+songColumns+`, p.count, p.last_played_at
		FROM play_counts p
		JOIN songs s ON s.id = p.song_id
		LEFT JOIN favorites f ON f.song_id = s.id
		ORDER BY p.count DESC, p.last_played_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []PlayCountEntry
	for rows.Next() {
		var e PlayCountEntry
		var lastPlayed int64
		s, err := scanSong(rowWithExtra{rows, []any{&e.Count, &lastPlayed}})
		if err != nil {
			return nil, err
		}
		e.Song = s
		e.LastPlayedAt = time.Unix(lastPlayed, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// rowWithExtra appends destinations for columns selected after the song.
type rowWithExtra struct {
	row   scanner
	extra []any
}

func (r rowWithExtra) Scan(dest ...any) error {
	return r.row.Scan(append(dest, r.extra...)...)
}
