package state

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// AddFavorite marks songID as a favorite. Adding an existing favorite bumps
// its counter.
func (m *Manager) AddFavorite(ctx context.Context, songID int64) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO favorites (song_id, count, added_at)
		VALUES (?, 1, ?)
		ON CONFLICT(song_id) DO UPDATE SET count = count + 1
	`, songID, time.Now().Unix())
	return err
}

// RemoveFavorite clears the favorite flag of songID.
func (m *Manager) RemoveFavorite(ctx context.Context, songID int64) error {
	_, err := m.db.ExecContext(ctx, `DELETE FROM favorites WHERE song_id = ?`, songID)
	return err
}

// IsFavorite reports whether songID is a favorite.
func (m *Manager) IsFavorite(ctx context.Context, songID int64) (bool, error) {
	var one int
	err := m.db.QueryRowContext(ctx, `
		SELECT 1 FROM favorites WHERE song_id = ?
	`, songID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}
