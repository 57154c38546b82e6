package state

import (
	"context"
	"database/sql"
	"errors"
)

// RepeatMode returns the saved repeat mode, 0 when never saved.
func (m *Manager) RepeatMode(ctx context.Context) (int, error) {
	var mode int
	err := m.db.QueryRowContext(ctx, `SELECT repeat_mode FROM player_prefs WHERE id = 1`).Scan(&mode)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return mode, err
}

// SetRepeatMode saves the repeat mode.
func (m *Manager) SetRepeatMode(ctx context.Context, mode int) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO player_prefs (id, repeat_mode) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET repeat_mode = excluded.repeat_mode
	`, mode)
	return err
}

// ShuffleMode returns the saved shuffle flag.
func (m *Manager) ShuffleMode(ctx context.Context) (bool, error) {
	var shuffle bool
	err := m.db.QueryRowContext(ctx, `SELECT shuffle FROM player_prefs WHERE id = 1`).Scan(&shuffle)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return shuffle, err
}

// SetShuffleMode saves the shuffle flag.
func (m *Manager) SetShuffleMode(ctx context.Context, enabled bool) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO player_prefs (id, shuffle) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET shuffle = excluded.shuffle
	`, enabled)
	return err
}
