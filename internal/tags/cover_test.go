package tags

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacpicture"
	goflac "github.com/go-flac/go-flac"
)

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestReadCover_MP3(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	createMinimalMP3(t, path)

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTBackCover,
		Picture:     []byte("back"),
	})
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/png",
		PictureType: id3v2.PTFrontCover,
		Description: "Front Cover",
		Picture:     []byte("front"),
	})
	if err := tag.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	tag.Close()

	c, err := ReadCover(path)
	if err != nil {
		t.Fatalf("ReadCover: %v", err)
	}
	if string(c.Data) != "front" || c.Ext() != ".png" {
		t.Errorf("got %q (%s), want front cover png", c.Data, c.MIMEType)
	}
}

func TestReadCover_MP3NoPicture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.mp3")
	createMinimalMP3(t, path)

	if _, err := ReadCover(path); !errors.Is(err, ErrNoCover) {
		t.Errorf("err = %v, want ErrNoCover", err)
	}
}

func TestReadCover_FLAC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.flac")
	writeFLAC(t, path, map[string]string{"TITLE": "x"})

	f, err := goflac.ParseFile(path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	data := tinyPNG(t)
	pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "Front Cover", data, "image/png")
	if err != nil {
		t.Fatalf("picture: %v", err)
	}
	block := pic.Marshal()
	f.Meta = append(f.Meta, &block)
	if err := f.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	c, err := ReadCover(path)
	if err != nil {
		t.Fatalf("ReadCover: %v", err)
	}
	if !bytes.Equal(c.Data, data) || c.MIMEType != "image/png" {
		t.Errorf("got %d bytes of %s", len(c.Data), c.MIMEType)
	}
}

func TestReadCover_FLACNoPicture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.flac")
	writeFLAC(t, path, nil)

	if _, err := ReadCover(path); !errors.Is(err, ErrNoCover) {
		t.Errorf("err = %v, want ErrNoCover", err)
	}
}

func TestReadCover_Unsupported(t *testing.T) {
	if _, err := ReadCover("song.ogg"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}
