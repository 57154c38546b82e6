package tags

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"
)

// fields holds raw values keyed by Vorbis comment names. Every reader maps
// its source onto these names so fallbacks behave alike.
type fields map[string]string

// set keeps the first non-empty value seen for key.
func (f fields) set(key, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if _, ok := f[key]; !ok {
		f[key] = value
	}
}

func (f fields) setInt(key string, n int) {
	if n > 0 {
		f.set(key, strconv.Itoa(n))
	}
}

// tag builds a Tag. Title falls back to the file name and album artist to
// the artist.
func (f fields) tag(path string) *Tag {
	t := &Tag{
		Path:        path,
		Title:       f["TITLE"],
		Artist:      f["ARTIST"],
		AlbumArtist: f["ALBUMARTIST"],
		Album:       f["ALBUM"],
		Genre:       f["GENRE"],
		Composer:    f["COMPOSER"],
		Date:        f["DATE"],
	}
	if t.Title == "" {
		t.Title = filepath.Base(path)
	}
	if t.AlbumArtist == "" {
		t.AlbumArtist = t.Artist
	}
	if t.Date == "" {
		t.Date = f["YEAR"]
	}
	t.TrackNumber, t.TotalTracks = splitCount(f["TRACKNUMBER"], f["TOTALTRACKS"])
	t.DiscNumber, t.TotalDiscs = splitCount(f["DISCNUMBER"], f["TOTALDISCS"])
	return t
}

// splitCount parses "n" or "n/total". A missing total is taken from the
// separate total field.
func splitCount(s, total string) (int, int) {
	numStr, totalStr, found := strings.Cut(s, "/")
	n, _ := strconv.Atoi(strings.TrimSpace(numStr))
	var tot int
	if found {
		tot, _ = strconv.Atoi(strings.TrimSpace(totalStr))
	}
	if tot == 0 {
		tot, _ = strconv.Atoi(strings.TrimSpace(total))
	}
	return n, tot
}

func metadataFields(m tag.Metadata) fields {
	f := fields{}
	f.set("TITLE", m.Title())
	f.set("ARTIST", m.Artist())
	f.set("ALBUMARTIST", m.AlbumArtist())
	f.set("ALBUM", m.Album())
	f.set("GENRE", m.Genre())
	f.set("COMPOSER", m.Composer())
	f.setInt("DATE", m.Year())

	track, totalTracks := m.Track()
	f.setInt("TRACKNUMBER", track)
	f.setInt("TOTALTRACKS", totalTracks)
	disc, totalDiscs := m.Disc()
	f.setInt("DISCNUMBER", disc)
	f.setInt("TOTALDISCS", totalDiscs)
	return f
}

// id3Frames maps ID3v2 text frames onto field names. TYER is the v2.3
// year frame, TDRC the v2.4 recording time.
var id3Frames = map[string]string{
	"TIT2": "TITLE",
	"TPE1": "ARTIST",
	"TPE2": "ALBUMARTIST",
	"TALB": "ALBUM",
	"TCON": "GENRE",
	"TCOM": "COMPOSER",
	"TRCK": "TRACKNUMBER",
	"TPOS": "DISCNUMBER",
	"TDRC": "DATE",
	"TYER": "YEAR",
}

// readID3 reads MP3 tags with id3v2 alone. dhowden/tag rejects some UTF-16
// encoded frames that id3v2 decodes fine.
func readID3(path string) (*Tag, error) {
	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, err
	}
	defer id3tag.Close()

	f := fields{}
	for id, name := range id3Frames {
		for _, frame := range id3tag.GetFrames(id) {
			if tf, ok := frame.(id3v2.TextFrame); ok {
				f.set(name, tf.Text)
			}
		}
	}
	return f.tag(path), nil
}

// readVorbis reads FLAC tags straight from the Vorbis comment block.
func readVorbis(path string) (*Tag, error) {
	file, err := goflac.ParseFile(path)
	if err != nil {
		return nil, err
	}

	for _, meta := range file.Meta {
		if meta.Type != goflac.VorbisComment {
			continue
		}
		cmt, err := flacvorbis.ParseFromMetaDataBlock(*meta)
		if err != nil {
			return nil, err
		}
		f := fields{}
		for _, c := range cmt.Comments {
			if k, v, ok := strings.Cut(c, "="); ok {
				f.set(strings.ToUpper(k), v)
			}
		}
		return f.tag(path), nil
	}
	return nil, errNoVorbisComment
}
