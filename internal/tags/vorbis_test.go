package tags

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"
)

// writeFLAC writes a frameless FLAC file with the given Vorbis comments.
func writeFLAC(t *testing.T, path string, comments map[string]string) {
	t.Helper()
	streamInfo := &goflac.MetaDataBlock{Type: goflac.StreamInfo, Data: make([]byte, 34)}
	f := &goflac.File{Meta: []*goflac.MetaDataBlock{streamInfo}}

	if comments != nil {
		cmt := flacvorbis.New()
		for k, v := range comments {
			if err := cmt.Add(k, v); err != nil {
				t.Fatalf("Add(%s): %v", k, err)
			}
		}
		block := cmt.Marshal()
		f.Meta = append(f.Meta, &block)
	}

	if err := f.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
}

func TestReadVorbis(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.flac")
	writeFLAC(t, path, map[string]string{
		flacvorbis.FIELD_TITLE:       "Decades",
		flacvorbis.FIELD_ARTIST:      "Joy Division",
		flacvorbis.FIELD_ALBUM:       "Closer",
		flacvorbis.FIELD_GENRE:       "Post-Punk",
		flacvorbis.FIELD_DATE:        "1980-07-18",
		flacvorbis.FIELD_TRACKNUMBER: "9",
		"TOTALTRACKS":                "9",
		"DISCNUMBER":                 "1/1",
	})

	tag, err := readVorbis(path)
	if err != nil {
		t.Fatalf("readVorbis: %v", err)
	}
	if tag.Title != "Decades" || tag.Artist != "Joy Division" || tag.Album != "Closer" {
		t.Errorf("got %q / %q / %q", tag.Title, tag.Artist, tag.Album)
	}
	if tag.AlbumArtist != "Joy Division" {
		t.Errorf("AlbumArtist = %q, want artist fallback", tag.AlbumArtist)
	}
	if tag.TrackNumber != 9 || tag.TotalTracks != 9 {
		t.Errorf("track = %d/%d, want 9/9", tag.TrackNumber, tag.TotalTracks)
	}
	if tag.DiscNumber != 1 || tag.TotalDiscs != 1 {
		t.Errorf("disc = %d/%d, want 1/1", tag.DiscNumber, tag.TotalDiscs)
	}
	if tag.Year() != 1980 {
		t.Errorf("Year() = %d, want 1980", tag.Year())
	}
}

func TestReadVorbis_TitleFallsBackToFilename(t *testing.T) {
	path := filepath.Join(t.TempDir(), "untitled.flac")
	writeFLAC(t, path, map[string]string{flacvorbis.FIELD_ARTIST: "Someone"})

	tag, err := readVorbis(path)
	if err != nil {
		t.Fatalf("readVorbis: %v", err)
	}
	if tag.Title != "untitled.flac" {
		t.Errorf("Title = %q, want file name", tag.Title)
	}
}

func TestReadVorbis_NoComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.flac")
	writeFLAC(t, path, nil)

	if _, err := readVorbis(path); !errors.Is(err, errNoVorbisComment) {
		t.Errorf("err = %v, want errNoVorbisComment", err)
	}
}
