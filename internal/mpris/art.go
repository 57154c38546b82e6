package mpris

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/nfnt/resize"
	"github.com/rs/zerolog/log"

	"github.com/llehouerou/eddy/internal/tags"
)

// coverNames lists common album art filenames in priority order.
var coverNames = []string{
	"cover.jpg", "cover.png", "cover.jpeg",
	"folder.jpg", "folder.png", "folder.jpeg",
	"front.jpg", "front.png", "front.jpeg",
}

// maxCoverSize bounds the edge of cached covers, in pixels.
const maxCoverSize = 512

// coverCacheDir holds covers extracted from music files.
var coverCacheDir = filepath.Join(xdg.CacheHome, "eddy", "covers")

// FindAlbumArt returns an image path for a local song file: album art next
// to the file first, then the picture embedded in it, extracted once into
// the cover cache. Returns "" for daemon URIs or when nothing is found.
func FindAlbumArt(songPath string) string {
	if !filepath.IsAbs(songPath) {
		return "" // daemon URI
	}
	dir := filepath.Dir(songPath)
	for _, name := range coverNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return embeddedArt(songPath)
}

func embeddedArt(songPath string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(songPath))
	base := filepath.Join(coverCacheDir, fmt.Sprintf("%016x", h.Sum64()))

	for _, ext := range []string{".jpg", ".png"} {
		if _, err := os.Stat(base + ext); err == nil {
			return base + ext
		}
	}

	c, err := tags.ReadCover(songPath)
	if err != nil {
		return ""
	}
	c = shrinkCover(c)
	if err := os.MkdirAll(coverCacheDir, 0o755); err != nil {
		log.Debug().Err(err).Msg("Cannot create cover cache")
		return ""
	}
	path := base + c.Ext()
	if err := os.WriteFile(path, c.Data, 0o600); err != nil {
		log.Debug().Err(err).Str("path", path).Msg("Cannot cache embedded cover")
		return ""
	}
	return path
}

// shrinkCover scales covers larger than maxCoverSize down, keeping the
// source encoding. Data that does not decode is kept as is.
func shrinkCover(c *tags.Cover) *tags.Cover {
	img, format, err := image.Decode(bytes.NewReader(c.Data))
	if err != nil {
		return c
	}
	if b := img.Bounds(); b.Dx() <= maxCoverSize && b.Dy() <= maxCoverSize {
		return c
	}
	small := resize.Thumbnail(maxCoverSize, maxCoverSize, img, resize.Lanczos3)

	var buf bytes.Buffer
	mime := "image/jpeg"
	if format == "png" {
		mime = "image/png"
		err = png.Encode(&buf, small)
	} else {
		err = jpeg.Encode(&buf, small, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		return c
	}
	return &tags.Cover{Data: buf.Bytes(), MIMEType: mime}
}
