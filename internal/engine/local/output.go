package local

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

// speakerRate is the fixed output rate; songs at other rates are resampled.
const speakerRate = beep.SampleRate(44100)

// ErrUnsupportedFormat is returned for files that cannot be decoded.
var ErrUnsupportedFormat = errors.New("unsupported format")

// output renders one song at a time.
type output interface {
	// Load opens song paused and returns its decoded duration. onEnd is
	// called from the audio goroutine when the song finishes on its own.
	Load(song string, onEnd func()) (time.Duration, error)
	SetPaused(paused bool)
	Position() time.Duration
	Seek(pos time.Duration) error
	Unload()
}

var speakerInit = sync.OnceValue(func() error {
	return speaker.Init(speakerRate, speakerRate.N(time.Second/10))
})

// speakerOutput plays through the system audio device.
type speakerOutput struct {
	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
}

func decode(path string, f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return mp3.Decode(f)
	case ".flac":
		return flac.Decode(f)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func (o *speakerOutput) Load(path string, onEnd func()) (time.Duration, error) {
	o.Unload()

	if err := speakerInit(); err != nil {
		return 0, fmt.Errorf("init speaker: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	streamer, format, err := decode(path, f)
	if err != nil {
		f.Close()
		return 0, err
	}

	var s beep.Streamer = streamer
	if format.SampleRate != speakerRate {
		s = beep.Resample(4, format.SampleRate, speakerRate, streamer)
	}

	o.file, o.streamer, o.format = f, streamer, format
	o.ctrl = &beep.Ctrl{Streamer: s, Paused: true}
	speaker.Play(beep.Seq(o.ctrl, beep.Callback(onEnd)))

	return format.SampleRate.D(streamer.Len()), nil
}

func (o *speakerOutput) SetPaused(paused bool) {
	if o.ctrl == nil {
		return
	}
	speaker.Lock()
	o.ctrl.Paused = paused
	speaker.Unlock()
}

func (o *speakerOutput) Position() time.Duration {
	if o.streamer == nil {
		return 0
	}
	speaker.Lock()
	defer speaker.Unlock()
	return o.format.SampleRate.D(o.streamer.Position())
}

func (o *speakerOutput) Seek(pos time.Duration) error {
	if o.streamer == nil {
		return nil
	}
	speaker.Lock()
	defer speaker.Unlock()
	n := min(max(o.format.SampleRate.N(pos), 0), o.streamer.Len()-1)
	return o.streamer.Seek(max(n, 0))
}

func (o *speakerOutput) Unload() {
	if o.ctrl == nil {
		return
	}
	speaker.Clear()
	o.streamer.Close()
	o.file.Close()
	o.file, o.streamer, o.ctrl = nil, nil, nil
}
