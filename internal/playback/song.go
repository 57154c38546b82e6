package playback

import "time"

// Song is an immutable description of a playable track.
// Identity is ID: two songs with the same ID are the same song even when
// other fields differ.
type Song struct {
	ID          int64
	Title       string
	ArtistID    int64
	ArtistName  string
	AlbumID     int64
	AlbumName   string
	Duration    time.Duration
	Data        string // engine locator: file path or daemon URI
	TrackNumber int
	Year        int
	Composer    string
	Favorite    bool
}

// SameSong reports whether a and b refer to the same song.
// Two nil songs are the same; a nil and a non-nil song are not.
func SameSong(a, b *Song) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}

// Clone returns a pointer to a copy of s, or nil if s is nil.
func (s *Song) Clone() *Song {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
