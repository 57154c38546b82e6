package state

import (
	"database/sql"
)

const currentSchemaVersion = 1

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS songs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			artist_id INTEGER NOT NULL DEFAULT 0,
			artist TEXT NOT NULL DEFAULT '',
			album_id INTEGER NOT NULL DEFAULT 0,
			album TEXT NOT NULL DEFAULT '',
			duration_ms INTEGER NOT NULL DEFAULT 0,
			track_number INTEGER,
			year INTEGER,
			composer TEXT,
			mtime INTEGER NOT NULL DEFAULT 0,
			added_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_songs_artist_album ON songs(artist, album, track_number);

		CREATE TABLE IF NOT EXISTS favorites (
			song_id INTEGER PRIMARY KEY REFERENCES songs(id) ON DELETE CASCADE,
			count INTEGER NOT NULL DEFAULT 1,
			added_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			song_id INTEGER NOT NULL REFERENCES songs(id) ON DELETE CASCADE,
			played_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_history_played_at ON history(played_at DESC);

		CREATE TABLE IF NOT EXISTS play_counts (
			song_id INTEGER PRIMARY KEY REFERENCES songs(id) ON DELETE CASCADE,
			count INTEGER NOT NULL DEFAULT 0,
			last_played_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS player_prefs (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			repeat_mode INTEGER NOT NULL DEFAULT 0,
			shuffle INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS lastfm_session (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			username TEXT NOT NULL,
			session_key TEXT NOT NULL,
			linked_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS lastfm_pending_scrobbles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			song_id INTEGER,
			artist TEXT NOT NULL,
			track TEXT NOT NULL,
			album TEXT,
			duration_seconds INTEGER NOT NULL DEFAULT 0,
			timestamp INTEGER NOT NULL,
			attempts INTEGER NOT NULL DEFAULT 0,
			last_error TEXT,
			created_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	// Set initial version if not exists
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	return err
}
