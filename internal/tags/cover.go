package tags

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacpicture"
	goflac "github.com/go-flac/go-flac"
)

// ErrNoCover is returned when a file carries no embedded picture.
var ErrNoCover = errors.New("no embedded cover")

// Cover is a picture embedded in a music file.
type Cover struct {
	Data     []byte
	MIMEType string
}

// Ext returns a file extension matching the picture type.
func (c *Cover) Ext() string {
	if c.MIMEType == "image/png" {
		return ".png"
	}
	return ".jpg"
}

// ReadCover returns the embedded front cover of a music file, or the
// first picture when none is marked as front cover.
func ReadCover(path string) (*Cover, error) {
	switch FormatOf(path) {
	case FormatMP3:
		return readMP3Cover(path)
	case FormatFLAC:
		return readFLACCover(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func readMP3Cover(path string) (*Cover, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true, ParseFrames: []string{"Attached picture"}})
	if err != nil {
		return nil, err
	}
	defer tag.Close()

	var found *Cover
	for _, f := range tag.GetFrames(tag.CommonID("Attached picture")) {
		pic, ok := f.(id3v2.PictureFrame)
		if !ok || len(pic.Picture) == 0 {
			continue
		}
		c := &Cover{Data: pic.Picture, MIMEType: pic.MimeType}
		if pic.PictureType == id3v2.PTFrontCover {
			return c, nil
		}
		if found == nil {
			found = c
		}
	}
	if found == nil {
		return nil, ErrNoCover
	}
	return found, nil
}

func readFLACCover(path string) (*Cover, error) {
	f, err := goflac.ParseFile(path)
	if err != nil {
		return nil, err
	}

	var found *Cover
	for _, meta := range f.Meta {
		if meta.Type != goflac.Picture {
			continue
		}
		pic, err := flacpicture.ParseFromMetaDataBlock(*meta)
		if err != nil || len(pic.ImageData) == 0 {
			continue
		}
		c := &Cover{Data: pic.ImageData, MIMEType: pic.MIME}
		if pic.PictureType == flacpicture.PictureTypeFrontCover {
			return c, nil
		}
		if found == nil {
			found = c
		}
	}
	if found == nil {
		return nil, ErrNoCover
	}
	return found, nil
}
