package library

import (
	"hash/fnv"
	"strings"
)

// nameID derives a stable positive id from names, case-insensitively.
// Empty names map to 0.
func nameID(parts ...string) int64 {
	if strings.TrimSpace(strings.Join(parts, "")) == "" {
		return 0
	}
	h := fnv.New64a()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(strings.ToLower(strings.TrimSpace(p))))
	}
	return int64(h.Sum64() >> 1)
}

// artistID identifies an artist by name.
func artistID(artist string) int64 {
	return nameID(artist)
}

// albumID identifies an album by its album artist and title.
func albumID(albumArtist, album string) int64 {
	if strings.TrimSpace(album) == "" {
		return 0
	}
	return nameID(albumArtist, album)
}
