package tags

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	goflac "github.com/go-flac/go-flac"
	"github.com/gopxl/beep/v2/flac"
	"github.com/llehouerou/go-mp3"
)

// ErrUnsupportedFormat is returned for files that are neither MP3 nor FLAC.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ReadAudioInfo reads stream properties without decoding audio where the
// container allows it.
func ReadAudioInfo(path string) (*AudioInfo, error) {
	switch FormatOf(path) {
	case FormatMP3:
		return mp3Info(path)
	case FormatFLAC:
		if info, ok := streamInfo(path); ok {
			return info, nil
		}
		return decodeFLACInfo(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func samplesDuration(n int64, rate int) time.Duration {
	if rate <= 0 {
		return 0
	}
	r := int64(rate)
	return time.Duration(n/r)*time.Second + time.Duration(n%r)*time.Second/time.Duration(r)
}

func mp3Info(path string) (*AudioInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, err
	}
	rate := dec.SampleRate()
	if rate == 0 {
		return nil, errors.New("mp3: invalid sample rate")
	}
	return &AudioInfo{
		Duration:   samplesDuration(int64(max(dec.SampleCount(), 0)), rate),
		Format:     FormatMP3,
		SampleRate: rate,
		BitDepth:   16,
	}, nil
}

// streamInfo reads the STREAMINFO block. It fails on files with a
// prepended ID3 tag, which go-flac cannot parse.
func streamInfo(path string) (*AudioInfo, bool) {
	f, err := goflac.ParseFile(path)
	if err != nil {
		return nil, false
	}
	for _, m := range f.Meta {
		if m.Type == goflac.StreamInfo {
			return parseStreamInfo(m.Data)
		}
	}
	return nil, false
}

// parseStreamInfo decodes a STREAMINFO body. Bytes 10 to 17 pack the
// sample rate (20 bits), channels-1 (3), bits per sample-1 (5) and the
// total sample count (36).
func parseStreamInfo(data []byte) (*AudioInfo, bool) {
	if len(data) < 18 {
		return nil, false
	}
	packed := binary.BigEndian.Uint64(data[10:18])
	rate := int(packed >> 44)
	return &AudioInfo{
		Duration:   samplesDuration(int64(packed&(1<<36-1)), rate),
		Format:     FormatFLAC,
		SampleRate: rate,
		BitDepth:   int(packed>>36&0x1f) + 1,
	}, true
}

func decodeFLACInfo(path string) (*AudioInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := skipID3v2(f); err != nil {
		return nil, err
	}
	s, format, err := flac.Decode(f)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	return &AudioInfo{
		Duration:   format.SampleRate.D(s.Len()),
		Format:     FormatFLAC,
		SampleRate: int(format.SampleRate),
		BitDepth:   format.Precision * 8,
	}, nil
}

// skipID3v2 leaves r just past a leading ID3v2 tag, or at the start when
// there is none.
func skipID3v2(r io.ReadSeeker) error {
	var h [10]byte
	if _, err := io.ReadFull(r, h[:]); err != nil || string(h[:3]) != id3Magic {
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return err
		}
		_, err = r.Seek(0, io.SeekStart)
		return err
	}
	// syncsafe: 7 bits per byte
	size := int64(h[6])<<21 | int64(h[7])<<14 | int64(h[8])<<7 | int64(h[9])
	_, err := r.Seek(10+size, io.SeekStart)
	return err
}
