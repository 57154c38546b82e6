// Package tags reads song metadata, embedded covers and stream durations
// from MP3 and FLAC files.
package tags

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Format is a supported container format.
type Format string

const (
	FormatMP3  Format = "MP3"
	FormatFLAC Format = "FLAC"
)

// FormatOf returns the format matching the extension of path, or "" for
// files that are not supported.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return FormatMP3
	case ".flac":
		return FormatFLAC
	}
	return ""
}

// IsMusicFile reports whether path has a supported extension.
func IsMusicFile(path string) bool {
	return FormatOf(path) != ""
}

const id3Magic = "ID3"

// Tag is the metadata of one music file.
type Tag struct {
	Path        string
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
	Genre       string
	Composer    string

	TrackNumber int
	TotalTracks int
	DiscNumber  int
	TotalDiscs  int

	// Date is whatever the file carries, usually YYYY or YYYY-MM-DD.
	Date string
}

// Year returns the leading four-digit year of Date, or 0.
func (t *Tag) Year() int {
	d := strings.TrimSpace(t.Date)
	if len(d) < 4 {
		return 0
	}
	y, err := strconv.Atoi(d[:4])
	if err != nil {
		return 0
	}
	return y
}

// AudioInfo holds stream properties read from the audio data.
type AudioInfo struct {
	Duration   time.Duration
	Format     Format
	SampleRate int
	BitDepth   int
}

// FileInfo is a Tag with the stream properties of the same file.
type FileInfo struct {
	Tag
	AudioInfo
}
