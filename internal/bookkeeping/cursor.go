package bookkeeping

import "time"

// Cursor tracks which side effects have fired for the song currently
// playing. It is reset whenever the song id changes and is never persisted.
type Cursor struct {
	SongID    int64
	HasSong   bool
	StartedAt time.Time

	HistoryRecorded   bool
	PlayCountRecorded bool
	NowPlayingSent    bool
	Scrobbled         bool
}
